// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package socketmode

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/bureau-foundation/slackr/lib/secret"
)

// discardLogger keeps test output quiet.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testBuffer(t *testing.T, value string) *secret.Buffer {
	t.Helper()
	buffer, err := secret.NewFromString(value)
	if err != nil {
		t.Fatalf("creating test buffer: %v", err)
	}
	t.Cleanup(func() { buffer.Close() })
	return buffer
}

// eventLog records the interleaving of acks and handler calls.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(event string) {
	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

// recordingSink is a FrameSink that keeps every frame, or fails every
// write with err.
type recordingSink struct {
	mu     sync.Mutex
	frames [][]byte
	err    error
	log    *eventLog
}

func (s *recordingSink) WriteFrame(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.frames = append(s.frames, append([]byte(nil), data...))
	if s.log != nil {
		s.log.add("write " + string(data))
	}
	return nil
}

func (s *recordingSink) Frames() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.frames...)
}

// step is one scripted ReadFrame result.
type step struct {
	frame Frame
	err   error
}

// scriptedSource replays steps, then reports ErrStreamEnded. If
// blockAtEnd is set it instead blocks until ctx ends.
type scriptedSource struct {
	steps      []step
	blockAtEnd bool
	reads      int
}

func (s *scriptedSource) ReadFrame(ctx context.Context) (Frame, error) {
	if s.reads < len(s.steps) {
		next := s.steps[s.reads]
		s.reads++
		return next.frame, next.err
	}
	s.reads++
	if s.blockAtEnd {
		<-ctx.Done()
		return Frame{}, ctx.Err()
	}
	return Frame{}, ErrStreamEnded
}

func textFrame(data string) step {
	return step{frame: Frame{Kind: TextFrame, Data: []byte(data)}}
}

// messageEnvelope renders a valid events_api message envelope.
func messageEnvelope(envelopeID, user, text, channel string) string {
	return `{"envelope_id":"` + envelopeID + `","type":"events_api","payload":{"event_id":"Ev` + envelopeID +
		`","event":{"type":"message","user":"` + user + `","text":"` + text + `","channel":"` + channel + `"}}}`
}

func newTestClient(t *testing.T, config Config) *Client {
	t.Helper()
	if config.Logger == nil {
		config.Logger = discardLogger()
	}
	client, err := NewClient(config)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}
