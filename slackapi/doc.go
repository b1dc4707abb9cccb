// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package slackapi is a small client for the Slack Web API methods
// slackr needs: the members directory (users.list), the channels
// directory (conversations.list), posting a message
// (chat.postMessage), and token identity (auth.test).
//
// A [Client] authenticates with a bot token (xoxb-…), which is a
// different credential from the app-level token socketmode uses for
// its handshake. The token lives in a [secret.Buffer] owned by the
// caller.
//
// Every method is a form-encoded POST. Slack reports most failures
// with HTTP 200 and {"ok":false,"error":"<code>"}; those come back as
// [*Error], and [IsError] tests for a specific code. List methods
// follow response_metadata.next_cursor until it is empty.
package slackapi
