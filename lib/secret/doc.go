// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds Slack credentials (the app-level token used for
// the Socket Mode handshake and the bot token used for Web API calls)
// in memory that the Go runtime never sees.
//
// [Buffer] is backed by an anonymous mmap region that is locked into
// RAM (mlock) and excluded from core dumps (MADV_DONTDUMP). Close
// zeroes, unlocks, and unmaps the region. After Close every accessor
// panics; Close itself is idempotent.
//
// Constructors:
//
//   - [New] allocates a zero-filled buffer of a given size
//   - [NewFromBytes] copies into protected memory and zeroes the source
//   - [NewFromString] copies a string (the heap original remains until GC)
//   - [FromEnv] reads a token from an environment variable
//
// Use [Buffer.String] only at API boundaries that need a string, such as
// building an Authorization header.
package secret
