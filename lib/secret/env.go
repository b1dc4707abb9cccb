// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrUnset is returned by FromEnv when the variable is unset or blank.
var ErrUnset = errors.New("secret: environment variable not set")

// FromEnv copies the value of the named environment variable into a
// protected buffer. Surrounding whitespace is trimmed, which matters
// for tokens pasted into .env files with trailing newlines.
func FromEnv(name string) (*Buffer, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnset, name)
	}
	return NewFromString(value)
}
