// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package slackapi

import (
	"errors"
	"fmt"
)

// Error is a Web API failure reported by Slack. Use errors.As to
// inspect it:
//
//	var apiErr *slackapi.Error
//	if errors.As(err, &apiErr) && apiErr.Code == slackapi.ErrCodeChannelNotFound { ... }
type Error struct {
	// Method is the Web API method, e.g. "chat.postMessage".
	Method string
	// Code is Slack's error string, e.g. "invalid_auth".
	Code string
	// StatusCode is the HTTP status of the response.
	StatusCode int
}

func (e *Error) Error() string {
	return fmt.Sprintf("slackapi: %s: %s (%d)", e.Method, e.Code, e.StatusCode)
}

// Error codes callers commonly branch on.
const (
	ErrCodeInvalidAuth     = "invalid_auth"
	ErrCodeNotAuthed       = "not_authed"
	ErrCodeMissingScope    = "missing_scope"
	ErrCodeChannelNotFound = "channel_not_found"
	ErrCodeNotInChannel    = "not_in_channel"
	ErrCodeRateLimited     = "ratelimited"
)

// IsError reports whether err is an *Error with the given code.
func IsError(err error, code string) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}
