// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/slackr/routing"
	"github.com/bureau-foundation/slackr/socketmode"
)

// messagePoster posts chat messages. *slackapi.Client implements it.
type messagePoster interface {
	PostMessage(ctx context.Context, channel, text string) (string, error)
}

type registrar interface {
	Register(predicate socketmode.Predicate, handler socketmode.Handler)
}

// actions holds what rule handlers close over.
type actions struct {
	printer *printer
	// poster is nil when no bot token was loaded.
	poster messagePoster
	// botUserID, when set, is excluded from every echo rule so the
	// bot never answers itself.
	botUserID string
	logger    *slog.Logger
}

// registerRules registers one handler per rule, in file order.
func registerRules(registry registrar, rules *routing.File, acts actions) error {
	for _, rule := range rules.Rules {
		predicate := rule.Predicate()
		var handler socketmode.Handler

		switch rule.Action {
		case routing.ActionPrint:
			handler = acts.printer.handle
		case routing.ActionEcho:
			if acts.poster == nil {
				return fmt.Errorf("rule %q: echo needs the Web API but no bot token is loaded", rule.Name)
			}
			if acts.botUserID != "" {
				predicate = socketmode.And(predicate, socketmode.NotFromUser(acts.botUserID))
			}
			handler = echoHandler(rule.Name, acts.poster, acts.logger)
		default:
			return fmt.Errorf("rule %q: unknown action %q", rule.Name, rule.Action)
		}

		registry.Register(predicate, handler)
		acts.logger.Debug("registered rule", "rule", rule.Name, "action", rule.Action)
	}
	return nil
}

// echoHandler posts the message text back to the channel it came
// from.
func echoHandler(ruleName string, poster messagePoster, logger *slog.Logger) socketmode.Handler {
	return func(ctx context.Context, envelope socketmode.Envelope) {
		event := envelope.Payload.Event
		ts, err := poster.PostMessage(ctx, event.Channel, event.Text)
		if err != nil {
			logger.Error("echo failed",
				"rule", ruleName,
				"channel", event.Channel,
				"event_id", envelope.Payload.EventID,
				"error", err,
			)
			return
		}
		logger.Debug("echoed message", "rule", ruleName, "channel", event.Channel, "ts", ts)
	}
}
