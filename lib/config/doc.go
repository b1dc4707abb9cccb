// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for slackr
// binaries.
//
// Configuration is loaded from a single file specified by either the
// SLACKR_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no ~/.config discovery and no automatic
// file search. A binary given neither runs on [Default].
//
// The file holds no credentials. It names the environment variables
// that do (app_token_env, bot_token_env), and binaries copy those
// values into lib/secret buffers.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No other
// environment variables override config values.
//
// This package depends on no other slackr packages.
package config
