// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"os"

	"github.com/bureau-foundation/slackr/lib/config"
	"github.com/bureau-foundation/slackr/lib/secret"
)

// LoadConfig loads the config named by flagPath, else by
// SLACKR_CONFIG, else returns the defaults. The result is validated.
func LoadConfig(flagPath string) (*config.Config, error) {
	path := flagPath
	if path == "" {
		path = os.Getenv(config.EnvVar)
	}

	var cfg *config.Config
	if path == "" {
		cfg = config.Default()
		cfg.ExpandVariables()
	} else {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, Validation("%w", err)
		}
		cfg = loaded
	}

	if err := cfg.Validate(); err != nil {
		return nil, Validation("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadToken copies the credential in environment variable name into a
// protected buffer. purpose appears in the hint, e.g. "app-level
// token (xapp-…)".
func LoadToken(name, purpose string) (*secret.Buffer, error) {
	token, err := secret.FromEnv(name)
	if err != nil {
		if errors.Is(err, secret.ErrUnset) {
			return nil, Validation("%s is not set", name).
				WithHint("export " + name + " with the Slack " + purpose)
		}
		return nil, err
	}
	return token, nil
}
