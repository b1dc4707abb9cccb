// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package routing

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/slackr/socketmode"
)

// Action is what slackr-listen does with a matching envelope.
type Action string

const (
	// ActionPrint writes the message to stdout with names resolved.
	ActionPrint Action = "print"
	// ActionEcho posts the message text back to its channel.
	ActionEcho Action = "echo"
)

// File is the top-level shape of a rules file.
type File struct {
	Rules []Rule `json:"rules"`
}

// Rule selects envelopes and names an action for them.
type Rule struct {
	// Name identifies the rule in logs. Unique within a file.
	Name string `json:"name"`

	// EnvelopeType matches the envelope's outer type, e.g. "events_api".
	EnvelopeType string `json:"envelope_type,omitempty"`

	// EventType matches the event type, e.g. "message".
	EventType string `json:"event_type,omitempty"`

	// Users matches events posted by any of these user ids.
	Users []string `json:"users,omitempty"`

	// ExcludeUsers drops events posted by any of these user ids.
	ExcludeUsers []string `json:"exclude_users,omitempty"`

	// Channels matches events in any of these channel ids.
	Channels []string `json:"channels,omitempty"`

	// TextContains matches events whose text contains this substring.
	TextContains string `json:"text_contains,omitempty"`

	Action Action `json:"action"`
}

// Predicate compiles the rule's constraints into one predicate.
func (r Rule) Predicate() socketmode.Predicate {
	var predicates []socketmode.Predicate
	if r.EnvelopeType != "" {
		predicates = append(predicates, socketmode.EnvelopeType(r.EnvelopeType))
	}
	if r.EventType != "" {
		predicates = append(predicates, socketmode.EventType(r.EventType))
	}
	if len(r.Users) > 0 {
		predicates = append(predicates, socketmode.FromUser(r.Users...))
	}
	if len(r.ExcludeUsers) > 0 {
		predicates = append(predicates, socketmode.NotFromUser(r.ExcludeUsers...))
	}
	if len(r.Channels) > 0 {
		predicates = append(predicates, socketmode.InChannel(r.Channels...))
	}
	if r.TextContains != "" {
		predicates = append(predicates, socketmode.TextContains(r.TextContains))
	}
	return socketmode.And(predicates...)
}

// Default returns the rules used when no file is configured: print
// every message event.
func Default() *File {
	return &File{Rules: []Rule{{
		Name:      "print-messages",
		EventType: socketmode.EventTypeMessage,
		Action:    ActionPrint,
	}}}
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals and validates the result.
func Parse(data []byte) (*File, error) {
	stripped := jsonc.ToJSON(data)

	var file File
	if err := json.Unmarshal(stripped, &file); err != nil {
		return nil, fmt.Errorf("routing: parsing rules: %w", err)
	}
	if err := file.Validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

// Load reads and parses a rules file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("routing: %w", err)
	}
	file, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w (in %s)", err, path)
	}
	return file, nil
}

// Validate reports every problem in the file, joined.
func (f *File) Validate() error {
	var errs []error
	if len(f.Rules) == 0 {
		errs = append(errs, errors.New("routing: no rules"))
	}

	seen := make(map[string]int, len(f.Rules))
	for index, rule := range f.Rules {
		label := fmt.Sprintf("rule %d", index)
		if rule.Name == "" {
			errs = append(errs, fmt.Errorf("routing: %s: name is required", label))
		} else {
			label = fmt.Sprintf("rule %d (%s)", index, rule.Name)
			if previous, duplicate := seen[rule.Name]; duplicate {
				errs = append(errs, fmt.Errorf("routing: %s: name already used by rule %d", label, previous))
			}
			seen[rule.Name] = index
		}

		switch rule.Action {
		case ActionPrint, ActionEcho:
		case "":
			errs = append(errs, fmt.Errorf("routing: %s: action is required", label))
		default:
			errs = append(errs, fmt.Errorf("routing: %s: unknown action %q (want print or echo)", label, rule.Action))
		}
	}
	return errors.Join(errs...)
}
