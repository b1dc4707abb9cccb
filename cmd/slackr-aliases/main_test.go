// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/slackr/aliasdb"
	"github.com/bureau-foundation/slackr/internal/cli"
	"github.com/bureau-foundation/slackr/lib/clock"
	"github.com/bureau-foundation/slackr/slackapi"
)

type staticDirectory struct {
	members  []slackapi.Member
	channels []slackapi.Channel
}

func (d staticDirectory) ListMembers(context.Context) ([]slackapi.Member, error) {
	return d.members, nil
}

func (d staticDirectory) ListChannels(context.Context) ([]slackapi.Channel, error) {
	return d.channels, nil
}

var refreshedAt = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func populatedStore(t *testing.T) *aliasdb.Store {
	t.Helper()
	store, err := aliasdb.Open(aliasdb.Config{
		Path:  filepath.Join(t.TempDir(), "aliases.db"),
		Clock: clock.Fake(refreshedAt),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	_, err = store.Setup(context.Background(), staticDirectory{
		members: []slackapi.Member{
			{ID: "U1", Name: "ada", RealName: "Ada Lovelace"},
			{ID: "W2", Name: "grace"},
		},
		channels: []slackapi.Channel{{ID: "C1", Name: "general"}},
	})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	return store
}

func TestKindOfID(t *testing.T) {
	tests := []struct {
		id   string
		kind aliasdb.Kind
		ok   bool
	}{
		{"U012AB", aliasdb.KindUser, true},
		{"W012AB", aliasdb.KindUser, true},
		{"C012AB", aliasdb.KindChannel, true},
		{"G012AB", aliasdb.KindChannel, true},
		{"D012AB", "", false},
		{"B012AB", "", false},
		{"", "", false},
	}
	for _, test := range tests {
		kind, ok := kindOfID(test.id)
		if kind != test.kind || ok != test.ok {
			t.Errorf("kindOfID(%q) = (%q, %v), want (%q, %v)", test.id, kind, ok, test.kind, test.ok)
		}
	}
}

func TestResolveIDs(t *testing.T) {
	store := populatedStore(t)
	var out bytes.Buffer

	if err := resolveIDs(context.Background(), &out, store, []string{"U1", "W2", "C1"}); err != nil {
		t.Fatalf("resolveIDs: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	want := [][]string{
		{"U1", "Ada Lovelace"},
		{"W2", "grace"},
		{"C1", "#general"},
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), out.String())
	}
	for i, line := range lines {
		if !strings.HasPrefix(line, want[i][0]) || !strings.HasSuffix(line, want[i][1]) {
			t.Errorf("line %d = %q, want %q ... %q", i, line, want[i][0], want[i][1])
		}
	}
}

func TestResolveIDsMissing(t *testing.T) {
	store := populatedStore(t)
	var out bytes.Buffer

	err := resolveIDs(context.Background(), &out, store, []string{"U1", "U404"})

	var cliErr *cli.Error
	if !errors.As(err, &cliErr) || cliErr.Category != cli.CategoryValidation {
		t.Fatalf("error = %v, want validation error", err)
	}
	if !strings.Contains(out.String(), "U404") {
		t.Errorf("missing id not printed:\n%s", out.String())
	}
}

func TestResolveIDsRejectsUnknownPrefix(t *testing.T) {
	store := populatedStore(t)
	var out bytes.Buffer
	err := resolveIDs(context.Background(), &out, store, []string{"U1", "B1"})
	if err == nil || !strings.Contains(err.Error(), "not a user or channel id") {
		t.Errorf("error = %v, want prefix error", err)
	}
	if out.Len() != 0 {
		t.Errorf("output before rejecting a bad id:\n%s", out.String())
	}
}

func TestPrintStatus(t *testing.T) {
	store := populatedStore(t)

	var out bytes.Buffer
	if err := printStatus(context.Background(), &out, store, time.Hour, refreshedAt.Add(30*time.Minute)); err != nil {
		t.Fatalf("printStatus: %v", err)
	}
	if got, want := out.String(), "refreshed 2026-05-04T09:30:00Z (30m0s ago, fresh)\n"; got != want {
		t.Errorf("status = %q, want %q", got, want)
	}

	out.Reset()
	if err := printStatus(context.Background(), &out, store, time.Hour, refreshedAt.Add(2*time.Hour)); err != nil {
		t.Fatalf("printStatus: %v", err)
	}
	if !strings.Contains(out.String(), "stale") {
		t.Errorf("status = %q, want stale", out.String())
	}
}

func TestPrintStatusNeverRefreshed(t *testing.T) {
	store, err := aliasdb.Open(aliasdb.Config{Path: filepath.Join(t.TempDir(), "empty.db")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	var out bytes.Buffer
	if err := printStatus(context.Background(), &out, store, time.Hour, refreshedAt); err != nil {
		t.Fatalf("printStatus: %v", err)
	}
	if out.String() != "never refreshed\n" {
		t.Errorf("status = %q, want never refreshed", out.String())
	}
}

func TestDumpRecords(t *testing.T) {
	store := populatedStore(t)
	var out bytes.Buffer

	if err := dumpRecords(context.Background(), &out, store, []aliasdb.Kind{aliasdb.KindChannel}); err != nil {
		t.Fatalf("dumpRecords: %v", err)
	}

	text := out.String()
	for _, want := range []string{"channel", "C1", "2026-05-04T09:30:00Z", `"general"`} {
		if !strings.Contains(text, want) {
			t.Errorf("dump missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "Ada Lovelace") {
		t.Errorf("channel dump includes user records:\n%s", text)
	}
}

func TestParseKind(t *testing.T) {
	if kind, err := parseKind("users"); err != nil || kind != aliasdb.KindUser {
		t.Errorf("parseKind(users) = %q, %v", kind, err)
	}
	if kind, err := parseKind("channel"); err != nil || kind != aliasdb.KindChannel {
		t.Errorf("parseKind(channel) = %q, %v", kind, err)
	}
	if _, err := parseKind("bots"); err == nil {
		t.Error("parseKind(bots) succeeded, want error")
	}
}
