// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package socketmode

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	errNotText     = errors.New("not a text frame")
	errInvalidUTF8 = errors.New("text frame is not valid UTF-8")
)

// wireEnvelope mirrors Envelope with pointer fields so that absent
// (or null) fields can be told apart from empty strings. Every field
// of Envelope is required; unknown fields are ignored.
type wireEnvelope struct {
	EnvelopeID *string `json:"envelope_id"`
	Type       *string `json:"type"`
	Payload    *struct {
		Event *struct {
			Type    *string `json:"type"`
			User    *string `json:"user"`
			Text    *string `json:"text"`
			Channel *string `json:"channel"`
		} `json:"event"`
		EventID *string `json:"event_id"`
	} `json:"payload"`
}

// ParseFrame converts one inbound frame into an Envelope. Binary
// frames, invalid UTF-8, malformed JSON, and JSON missing any envelope
// field all yield a *ParseError.
func ParseFrame(frame Frame) (Envelope, error) {
	if frame.Kind != TextFrame {
		return Envelope{}, &ParseError{Err: errNotText}
	}
	return ParseEnvelope(frame.Data)
}

// ParseEnvelope decodes a text payload into an Envelope.
func ParseEnvelope(data []byte) (Envelope, error) {
	if !utf8.Valid(data) {
		return Envelope{}, &ParseError{Err: errInvalidUTF8}
	}

	var wire wireEnvelope
	if err := json.Unmarshal(data, &wire); err != nil {
		return Envelope{}, &ParseError{Err: err}
	}

	messageType := ""
	if wire.Type != nil {
		messageType = *wire.Type
	}
	missing := func(field string) error {
		return &ParseError{MessageType: messageType, Err: fmt.Errorf("missing field %q", field)}
	}

	switch {
	case wire.EnvelopeID == nil:
		return Envelope{}, missing("envelope_id")
	case wire.Type == nil:
		return Envelope{}, missing("type")
	case wire.Payload == nil:
		return Envelope{}, missing("payload")
	case wire.Payload.EventID == nil:
		return Envelope{}, missing("payload.event_id")
	case wire.Payload.Event == nil:
		return Envelope{}, missing("payload.event")
	}

	event := wire.Payload.Event
	switch {
	case event.Type == nil:
		return Envelope{}, missing("payload.event.type")
	case event.User == nil:
		return Envelope{}, missing("payload.event.user")
	case event.Text == nil:
		return Envelope{}, missing("payload.event.text")
	case event.Channel == nil:
		return Envelope{}, missing("payload.event.channel")
	}

	return Envelope{
		EnvelopeID: *wire.EnvelopeID,
		Type:       *wire.Type,
		Payload: Payload{
			EventID: *wire.Payload.EventID,
			Event: Event{
				Type:    *event.Type,
				User:    *event.User,
				Text:    *event.Text,
				Channel: *event.Channel,
			},
		},
	}, nil
}
