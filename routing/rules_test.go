// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package routing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/slackr/socketmode"
)

const sampleRules = `{
  // Printed for every message.
  "rules": [
    {"name": "all", "event_type": "message", "action": "print"},
    /* Echo humans in #bots only. */
    {
      "name": "echo",
      "envelope_type": "events_api",
      "event_type": "message",
      "channels": ["C1", "C2"],
      "exclude_users": ["BOT1"],
      "text_contains": "!echo",
      "action": "echo",
    },
  ],
}`

func envelope(user, channel, text string) socketmode.Envelope {
	return socketmode.Envelope{
		EnvelopeID: "E1",
		Type:       socketmode.EnvelopeTypeEventsAPI,
		Payload: socketmode.Payload{
			EventID: "Ev1",
			Event:   socketmode.Event{Type: "message", User: user, Text: text, Channel: channel},
		},
	}
}

func TestParse(t *testing.T) {
	file, err := Parse([]byte(sampleRules))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(file.Rules) != 2 {
		t.Fatalf("rules = %d, want 2", len(file.Rules))
	}
	echo := file.Rules[1]
	if echo.Name != "echo" || echo.Action != ActionEcho || len(echo.Channels) != 2 || echo.TextContains != "!echo" {
		t.Errorf("echo rule = %+v", echo)
	}
}

func TestRulePredicate(t *testing.T) {
	file, err := Parse([]byte(sampleRules))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	echo := file.Rules[1].Predicate()

	tests := []struct {
		name     string
		envelope socketmode.Envelope
		want     bool
	}{
		{"human in channel", envelope("U1", "C1", "!echo hi"), true},
		{"second channel", envelope("U1", "C2", "please !echo"), true},
		{"bot excluded", envelope("BOT1", "C1", "!echo hi"), false},
		{"other channel", envelope("U1", "C9", "!echo hi"), false},
		{"no trigger", envelope("U1", "C1", "hello"), false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := echo(test.envelope); got != test.want {
				t.Errorf("predicate = %v, want %v", got, test.want)
			}
		})
	}

	wrongType := envelope("U1", "C1", "!echo")
	wrongType.Type = "slash_commands"
	if echo(wrongType) {
		t.Error("envelope_type not enforced")
	}
}

func TestEmptyRuleMatchesEverything(t *testing.T) {
	predicate := Rule{Name: "any", Action: ActionPrint}.Predicate()
	if !predicate(socketmode.Envelope{}) {
		t.Error("rule with no constraints should match")
	}
}

func TestDefault(t *testing.T) {
	file := Default()
	if err := file.Validate(); err != nil {
		t.Fatalf("Default() does not validate: %v", err)
	}
	predicate := file.Rules[0].Predicate()
	if !predicate(envelope("U1", "C1", "x")) {
		t.Error("default rule should match messages")
	}
	reaction := envelope("U1", "C1", "")
	reaction.Payload.Event.Type = "reaction_added"
	if predicate(reaction) {
		t.Error("default rule should only match messages")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		fragment string
	}{
		{"no rules", `{"rules": []}`, "no rules"},
		{"missing name", `{"rules": [{"action": "print"}]}`, "name is required"},
		{"duplicate", `{"rules": [{"name": "a", "action": "print"}, {"name": "a", "action": "echo"}]}`, "already used by rule 0"},
		{"unknown action", `{"rules": [{"name": "a", "action": "shout"}]}`, `unknown action "shout"`},
		{"missing action", `{"rules": [{"name": "a"}]}`, "action is required"},
		{"malformed", `{"rules": [}`, "parsing rules"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse([]byte(test.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), test.fragment) {
				t.Errorf("error %q does not contain %q", err, test.fragment)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.jsonc")
	if err := os.WriteFile(path, []byte(sampleRules), 0644); err != nil {
		t.Fatalf("writing rules: %v", err)
	}
	file, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(file.Rules) != 2 {
		t.Errorf("rules = %d, want 2", len(file.Rules))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "absent.jsonc")); err == nil {
		t.Error("expected error for missing file")
	}
}
