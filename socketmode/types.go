// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package socketmode

// Envelope types carried in the top-level "type" field.
const (
	EnvelopeTypeEventsAPI = "events_api"
)

// Control message types Slack sends without an envelope_id. They are
// never acknowledged or dispatched.
const (
	MessageTypeHello      = "hello"
	MessageTypeDisconnect = "disconnect"
)

// EventTypeMessage is the event type of a message posted to a channel.
const EventTypeMessage = "message"

// Envelope is one delivered unit of Socket Mode traffic. EnvelopeID
// is used only to correlate the acknowledgment; it is unique per
// delivery and never reused.
type Envelope struct {
	EnvelopeID string  `json:"envelope_id"`
	Type       string  `json:"type"`
	Payload    Payload `json:"payload"`
}

// Payload wraps the business event. EventID identifies the event
// independently of delivery, so a redelivered event keeps its EventID
// under a new EnvelopeID.
type Payload struct {
	Event   Event  `json:"event"`
	EventID string `json:"event_id"`
}

// Event is the business payload. User and Channel are opaque Slack
// ids; resolving them to names is the alias cache's job.
type Event struct {
	Type    string `json:"type"`
	User    string `json:"user"`
	Text    string `json:"text"`
	Channel string `json:"channel"`
}

// Acknowledgment is the reply written for each envelope. Payload is
// always the empty object.
type Acknowledgment struct {
	EnvelopeID string   `json:"envelope_id"`
	Payload    struct{} `json:"payload"`
}
