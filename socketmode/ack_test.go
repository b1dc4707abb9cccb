// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package socketmode

import (
	"context"
	"errors"
	"testing"
)

func TestEncodeAcknowledgmentExactBytes(t *testing.T) {
	data, err := EncodeAcknowledgment("E1")
	if err != nil {
		t.Fatalf("EncodeAcknowledgment: %v", err)
	}
	if got, want := string(data), `{"envelope_id":"E1","payload":{}}`; got != want {
		t.Errorf("ack = %s, want %s", got, want)
	}
}

func TestEncodeAcknowledgmentEscapes(t *testing.T) {
	data, err := EncodeAcknowledgment(`a"b`)
	if err != nil {
		t.Fatalf("EncodeAcknowledgment: %v", err)
	}
	if got, want := string(data), `{"envelope_id":"a\"b","payload":{}}`; got != want {
		t.Errorf("ack = %s, want %s", got, want)
	}
}

func TestAcknowledgeWritesOneFrame(t *testing.T) {
	sink := &recordingSink{}
	if err := Acknowledge(context.Background(), sink, Envelope{EnvelopeID: "E1"}); err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	frames := sink.Frames()
	if len(frames) != 1 {
		t.Fatalf("wrote %d frames, want 1", len(frames))
	}
	if string(frames[0]) != `{"envelope_id":"E1","payload":{}}` {
		t.Errorf("frame = %s", frames[0])
	}
}

func TestAcknowledgeFailure(t *testing.T) {
	cause := errors.New("broken pipe")
	sink := &recordingSink{err: cause}
	err := Acknowledge(context.Background(), sink, Envelope{EnvelopeID: "E9"})

	var ackErr *AckError
	if !errors.As(err, &ackErr) {
		t.Fatalf("error = %v, want *AckError", err)
	}
	if ackErr.EnvelopeID != "E9" {
		t.Errorf("EnvelopeID = %q, want E9", ackErr.EnvelopeID)
	}
	if !errors.Is(err, cause) {
		t.Errorf("error does not wrap cause: %v", err)
	}
}
