// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package aliasdb caches the workspace directory (user ids and
// channel ids to human-readable names) in a local SQLite database so
// that message handlers can print "Ada Lovelace in #general" instead
// of "U07DL8C7VSQ in C07R5Q3SGG1" without a Web API call per message.
//
// [Store.Setup] pulls the members and channels directories through a
// [Directory] (normally a *slackapi.Client) and upserts them in one
// transaction. Deleted members are skipped, and any row left over from
// before their deletion is removed. [Store.RefreshIfStale] repeats the
// pull only when the last one is older than a given age.
//
// Each row keeps its lookup columns in plain SQL and the full record
// CBOR-encoded (lib/codec) in a blob, which is what the slackr-aliases
// dump command prints.
package aliasdb
