// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package socketmode

import (
	"errors"
	"fmt"
)

var (
	// ErrStreamEnded is returned by Listen (and by Conn.ReadFrame) once
	// the inbound stream is closed. The connection cannot be reused.
	ErrStreamEnded = errors.New("socketmode: inbound stream ended")

	// ErrNotConnected is returned when Listen or a sink write is
	// attempted without an open connection.
	ErrNotConnected = errors.New("socketmode: not connected")

	// ErrAlreadyListening is returned when Listen is called while
	// another Listen on the same client is running.
	ErrAlreadyListening = errors.New("socketmode: listen loop already running")

	// ErrAlreadyConnected is returned when Connect is called on a
	// client whose connection is still open.
	ErrAlreadyConnected = errors.New("socketmode: already connected")

	// ErrMissingAppToken is returned by Handshake when no app token was
	// configured and the environment variable is empty.
	ErrMissingAppToken = errors.New("socketmode: app token not configured")

	// ErrHandlerTimeout is the context cause seen by a handler that
	// outlived Config.HandlerTimeout.
	ErrHandlerTimeout = errors.New("socketmode: handler timeout")
)

// HandshakeError reports a failed apps.connections.open exchange. Code
// is Slack's error string (e.g. "invalid_auth") when the response was
// a well-formed not-ok reply.
type HandshakeError struct {
	Code       string
	StatusCode int
	Err        error
}

func (e *HandshakeError) Error() string {
	switch {
	case e.Code != "":
		return fmt.Sprintf("socketmode: handshake rejected (%d): %s", e.StatusCode, e.Code)
	case e.Err != nil:
		return fmt.Sprintf("socketmode: handshake failed: %v", e.Err)
	default:
		return "socketmode: handshake failed"
	}
}

func (e *HandshakeError) Unwrap() error { return e.Err }

// ConnectionError reports a failure to establish the WebSocket. Host
// is the dialed host; the full URL carries a one-time ticket and is
// not kept.
type ConnectionError struct {
	Host       string
	StatusCode int
	Err        error
}

func (e *ConnectionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("socketmode: connecting to %s (HTTP %d): %v", e.Host, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("socketmode: connecting to %s: %v", e.Host, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ParseError reports an inbound frame that is not an envelope.
// MessageType is the frame's top-level "type" when it could be read,
// which identifies control messages such as "hello".
type ParseError struct {
	MessageType string
	Err         error
}

func (e *ParseError) Error() string {
	if e.MessageType != "" {
		return fmt.Sprintf("socketmode: dropping %q frame: %v", e.MessageType, e.Err)
	}
	return fmt.Sprintf("socketmode: dropping frame: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// AckError reports a failed acknowledgment write. It terminates
// Listen.
type AckError struct {
	EnvelopeID string
	Err        error
}

func (e *AckError) Error() string {
	return fmt.Sprintf("socketmode: acknowledging envelope %s: %v", e.EnvelopeID, e.Err)
}

func (e *AckError) Unwrap() error { return e.Err }

// TransportReadError reports a fault while reading the next frame.
// Listen logs it and keeps reading.
type TransportReadError struct {
	Err error
}

func (e *TransportReadError) Error() string {
	return fmt.Sprintf("socketmode: reading frame: %v", e.Err)
}

func (e *TransportReadError) Unwrap() error { return e.Err }
