// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/bureau-foundation/slackr/lib/config"
)

// NewLogger creates the process logger writing to stderr. With format
// auto, a terminal gets slog.TextHandler for human-readable output and
// anything else (journald, pipes, CI) gets slog.JSONHandler.
func NewLogger(level slog.Level, format string) *slog.Logger {
	return newLogger(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), level, format)
}

func newLogger(w io.Writer, isTerminal bool, level slog.Level, format string) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}

	useText := isTerminal
	switch format {
	case config.FormatText:
		useText = true
	case config.FormatJSON:
		useText = false
	}

	if useText {
		return slog.New(slog.NewTextHandler(w, options))
	}
	return slog.New(slog.NewJSONHandler(w, options))
}

// IsTerminal reports whether f is a terminal. Binaries use it to
// decide whether stdout gets styled output.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
