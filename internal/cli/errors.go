// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"io"
)

// Category classifies a command failure for its exit code.
type Category string

const (
	// CategoryValidation: bad flags, config, or missing credentials.
	// The user should fix the input and rerun. Exit code 2.
	CategoryValidation Category = "validation"

	// CategoryTransient: the network or Slack failed. Rerunning may
	// succeed. Exit code 1.
	CategoryTransient Category = "transient"
)

// Error is a categorized command failure with an optional hint.
type Error struct {
	Category Category
	Err      error
	Hint     string
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// WithHint attaches a one-line suggestion printed after the error.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// ExitCode returns 2 for validation failures and 1 otherwise.
func (e *Error) ExitCode() int {
	if e.Category == CategoryValidation {
		return 2
	}
	return 1
}

// Validation creates a validation error.
func Validation(format string, args ...any) *Error {
	return &Error{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// Transient creates a transient error.
func Transient(format string, args ...any) *Error {
	return &Error{Category: CategoryTransient, Err: fmt.Errorf(format, args...)}
}

// Report prints err (and its hint, if any) to w and returns the exit
// code main should use.
func Report(w io.Writer, err error) int {
	fmt.Fprintf(w, "error: %v\n", err)

	var cliErr *Error
	if errors.As(err, &cliErr) {
		if cliErr.Hint != "" {
			fmt.Fprintf(w, "hint: %s\n", cliErr.Hint)
		}
		return cliErr.ExitCode()
	}
	return 1
}
