// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package socketmode

import (
	"context"
	"slices"
	"strings"
)

// All matches every envelope.
func All() Predicate {
	return func(Envelope) bool { return true }
}

// EnvelopeType matches envelopes whose outer type is one of types.
func EnvelopeType(types ...string) Predicate {
	return func(envelope Envelope) bool {
		return slices.Contains(types, envelope.Type)
	}
}

// EventType matches envelopes whose event type is one of types.
// EventType("message") reproduces routing keyed by event type.
func EventType(types ...string) Predicate {
	return func(envelope Envelope) bool {
		return slices.Contains(types, envelope.Payload.Event.Type)
	}
}

// FromUser matches events posted by any of the given user ids.
func FromUser(userIDs ...string) Predicate {
	return func(envelope Envelope) bool {
		return slices.Contains(userIDs, envelope.Payload.Event.User)
	}
}

// NotFromUser matches events posted by anyone except the given user
// ids. The usual use is ignoring the bot's own messages.
func NotFromUser(userIDs ...string) Predicate {
	return Not(FromUser(userIDs...))
}

// InChannel matches events in any of the given channel ids.
func InChannel(channelIDs ...string) Predicate {
	return func(envelope Envelope) bool {
		return slices.Contains(channelIDs, envelope.Payload.Event.Channel)
	}
}

// TextContains matches events whose text contains substring.
func TextContains(substring string) Predicate {
	return func(envelope Envelope) bool {
		return strings.Contains(envelope.Payload.Event.Text, substring)
	}
}

// And matches when every predicate matches. And() matches everything.
func And(predicates ...Predicate) Predicate {
	return func(envelope Envelope) bool {
		for _, predicate := range predicates {
			if !predicate(envelope) {
				return false
			}
		}
		return true
	}
}

// Or matches when any predicate matches. Or() matches nothing.
func Or(predicates ...Predicate) Predicate {
	return func(envelope Envelope) bool {
		for _, predicate := range predicates {
			if predicate(envelope) {
				return true
			}
		}
		return false
	}
}

// Not inverts predicate.
func Not(predicate Predicate) Predicate {
	return func(envelope Envelope) bool { return !predicate(envelope) }
}

// HandlerFunc adapts a function that ignores the context.
func HandlerFunc(fn func(Envelope)) Handler {
	return func(_ context.Context, envelope Envelope) { fn(envelope) }
}
