// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides I/O helpers shared by the Slack Web API
// client and the Socket Mode transport.
//
// Response helpers bound every Web API body read at MaxResponseSize so
// a misbehaving endpoint cannot exhaust memory. [IsExpectedCloseError]
// classifies errors that mean "the peer went away" rather than "the
// transport is broken".
package netutil

import (
	"encoding/json"
	"fmt"
	"io"
)

// MaxResponseSize bounds Web API response body reads: 32 MB. A
// users.list page for a large workspace is a few hundred kilobytes.
const MaxResponseSize int64 = 32 << 20

// ReadResponse reads a Web API response body up to MaxResponseSize
// bytes. Use instead of io.ReadAll on HTTP response bodies.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// DecodeResponse reads a response body (bounded) and JSON-decodes it
// into v.
func DecodeResponse(body io.Reader, v any) error {
	data, err := ReadResponse(body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	return json.Unmarshal(data, v)
}
