// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package socketmode

import (
	"context"
	"encoding/json"
)

// FrameSink is the outbound half of a connection. Implementations
// serialize concurrent writers; frames go out in submission order.
type FrameSink interface {
	WriteFrame(ctx context.Context, data []byte) error
}

// EncodeAcknowledgment returns the acknowledgment frame for
// envelopeID: {"envelope_id":"<id>","payload":{}}.
func EncodeAcknowledgment(envelopeID string) ([]byte, error) {
	return json.Marshal(Acknowledgment{EnvelopeID: envelopeID})
}

// Acknowledge writes the acknowledgment for envelope to sink. Any
// failure is returned as *AckError.
func Acknowledge(ctx context.Context, sink FrameSink, envelope Envelope) error {
	data, err := EncodeAcknowledgment(envelope.EnvelopeID)
	if err != nil {
		return &AckError{EnvelopeID: envelope.EnvelopeID, Err: err}
	}
	if err := sink.WriteFrame(ctx, data); err != nil {
		return &AckError{EnvelopeID: envelope.EnvelopeID, Err: err}
	}
	return nil
}
