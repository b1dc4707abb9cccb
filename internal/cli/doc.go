// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli holds the plumbing shared by slackr binaries: logger
// construction, config and credential loading, and the categorized
// errors main functions turn into exit codes and hints.
package cli
