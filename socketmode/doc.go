// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package socketmode is a Slack Socket Mode client: it obtains a
// one-time WebSocket URL from apps.connections.open, holds the
// connection, acknowledges every event envelope by its envelope_id,
// and routes each envelope to the handlers whose predicates match.
//
// The pieces, leaf first:
//
//   - [Client.Handshake] exchanges the app-level token for a
//     connection URL. A not-ok response or a missing URL is a
//     [*HandshakeError]; nothing is dialed.
//   - [Dial] opens the WebSocket and returns a [*Conn], which owns the
//     inbound frame source (single reader, delivery order) and the
//     outbound sink (mutex-serialized writes). A dial failure is a
//     [*ConnectionError].
//   - [Acknowledge] writes {"envelope_id":"…","payload":{}} for one
//     envelope.
//   - [Registry] holds (predicate, handler) pairs in registration
//     order and runs every matching handler, one at a time, to
//     completion.
//   - [Client.Listen] drives the loop: read a frame, parse it,
//     acknowledge it, dispatch it, repeat.
//
// # Ordering
//
// Frames are processed strictly in delivery order. For one envelope
// the acknowledgment is written before any handler runs, and every
// matched handler returns before the next frame is read. A slow
// handler therefore delays everything behind it; set
// Config.HandlerTimeout to give handlers a deadline through their
// context.
//
// # Failure policy
//
// Frames that are not text or do not parse as an envelope are dropped
// without an acknowledgment ([*ParseError], logged at debug). A read
// fault is logged and the loop keeps reading ([*TransportReadError]).
// The end of the inbound stream terminates Listen with
// [ErrStreamEnded]. A failed acknowledgment write terminates Listen
// with [*AckError]. Reconnecting is the caller's decision: call
// Connect and Listen again.
//
// # Handlers that write
//
// Handlers that need to put frames on the same socket use
// [Client.Sink], which shares the acknowledgment path's write lock.
// Handlers that post chat messages use the Web API (package slackapi)
// with the bot token, which is a different credential from the app
// token used here.
package socketmode
