// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec is slackr's CBOR configuration.
//
// Slack traffic (Web API responses, Socket Mode envelopes) is JSON and
// stays JSON. CBOR is used only for values slackr stores for itself:
// the alias cache keeps one CBOR record per user or channel in its
// key-value table. The encoder uses Core Deterministic Encoding
// (RFC 8949 §4.2) so that re-storing an unchanged record writes
// identical bytes.
//
// Struct tags: types that only ever live in the store use `cbor` tags.
// Types that are also Slack JSON rely on fxamacker's fallback to `json`
// tags. Never put both on one field.
package codec
