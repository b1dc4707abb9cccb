// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package socketmodetest provides an in-process Slack control plane
// and Socket Mode server for tests. The server answers
// apps.connections.open with a one-time link to itself, accepts one
// WebSocket at a time, and lets the test push envelopes and observe
// every frame the client writes back.
//
// The package speaks the wire format directly and does not import
// socketmode, so socketmode's own tests can use it.
package socketmodetest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ErrNoConnection is returned by the Send methods when no client is
// connected.
var ErrNoConnection = errors.New("socketmodetest: no client connected")

// Config configures a Server.
type Config struct {
	// AppToken is the bearer token the handshake endpoint accepts.
	// Requests with any other token get {"ok":false,"error":"invalid_auth"}.
	AppToken string
}

// Server is a fake Slack endpoint. Create with NewServer; Close when
// done.
type Server struct {
	httpServer *httptest.Server
	upgrader   websocket.Upgrader
	appToken   string

	// received carries every text frame the client sent, in order.
	received chan []byte

	mu                sync.Mutex
	handshakeOverride []byte
	handshakes        int
	dials             int
	tickets           map[string]bool
	conn              *websocket.Conn
	connReady         chan struct{}
	connGone          chan struct{}
	writeMu           sync.Mutex
}

// NewServer starts a Server on a loopback port.
func NewServer(config Config) *Server {
	server := &Server{
		appToken:  config.AppToken,
		received:  make(chan []byte, 256),
		tickets:   make(map[string]bool),
		connReady: make(chan struct{}),
		connGone:  make(chan struct{}),
	}
	close(server.connGone)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/apps.connections.open", server.handleOpen)
	mux.HandleFunc("GET /link/", server.handleLink)
	server.httpServer = httptest.NewServer(mux)
	return server
}

// APIURL returns the Web API base URL, with trailing slash.
func (s *Server) APIURL() string {
	return s.httpServer.URL + "/api/"
}

// SetHandshakeResponse replaces the handshake reply body with a fixed
// JSON document. No link is issued while an override is set. Pass nil
// to restore the default.
func (s *Server) SetHandshakeResponse(body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handshakeOverride = body
}

// Handshakes returns how many handshake requests were served.
func (s *Server) Handshakes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handshakes
}

// Dials returns how many WebSocket upgrades were attempted.
func (s *Server) Dials() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dials
}

// Received returns the channel of frames written by the client.
func (s *Server) Received() <-chan []byte {
	return s.received
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.handshakes++
	override := s.handshakeOverride
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if override != nil {
		w.Write(override)
		return
	}

	if r.Header.Get("Authorization") != "Bearer "+s.appToken {
		json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "invalid_auth"})
		return
	}

	ticket := uuid.NewString()
	s.mu.Lock()
	s.tickets[ticket] = true
	s.mu.Unlock()

	link := "ws" + strings.TrimPrefix(s.httpServer.URL, "http") + "/link/?ticket=" + ticket
	json.NewEncoder(w).Encode(map[string]any{"ok": true, "url": link})
}

func (s *Server) handleLink(w http.ResponseWriter, r *http.Request) {
	ticket := r.URL.Query().Get("ticket")

	s.mu.Lock()
	s.dials++
	valid := s.tickets[ticket]
	delete(s.tickets, ticket)
	busy := s.conn != nil
	s.mu.Unlock()

	if !valid {
		http.Error(w, "unknown or reused ticket", http.StatusUnauthorized)
		return
	}
	if busy {
		http.Error(w, "a client is already connected", http.StatusConflict)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	if s.conn != nil {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.conn = conn
	s.connGone = make(chan struct{})
	close(s.connReady)
	s.mu.Unlock()

	go s.readLoop(conn)
}

func (s *Server) readLoop(conn *websocket.Conn) {
	defer s.dropConn(conn)
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		select {
		case s.received <- data:
		default:
			// A test that never drains Received must not wedge the
			// client's writes.
		}
	}
}

func (s *Server) dropConn(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == conn {
		s.conn = nil
		s.connReady = make(chan struct{})
		close(s.connGone)
	}
	conn.Close()
}

// WaitConnected blocks until a client is connected or ctx ends.
func (s *Server) WaitConnected(ctx context.Context) error {
	s.mu.Lock()
	ready := s.connReady
	s.mu.Unlock()
	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitDisconnected blocks until no client is connected or ctx ends.
func (s *Server) WaitDisconnected(ctx context.Context) error {
	s.mu.Lock()
	gone := s.connGone
	s.mu.Unlock()
	select {
	case <-gone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SendRaw writes data to the client as one text frame.
func (s *Server) SendRaw(data []byte) error {
	return s.write(websocket.TextMessage, data)
}

// SendBinary writes data to the client as one binary frame.
func (s *Server) SendBinary(data []byte) error {
	return s.write(websocket.BinaryMessage, data)
}

// Event is the message event carried by SendEvent.
type Event struct {
	Type    string
	User    string
	Text    string
	Channel string
}

// SendEvent wraps event in an events_api envelope with fresh envelope
// and event ids and sends it. It returns the envelope id.
func (s *Server) SendEvent(event Event) (string, error) {
	envelopeID := uuid.NewString()
	frame := map[string]any{
		"envelope_id": envelopeID,
		"type":        "events_api",
		"payload": map[string]any{
			"event_id": "Ev" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10]),
			"event": map[string]any{
				"type":    event.Type,
				"user":    event.User,
				"text":    event.Text,
				"channel": event.Channel,
			},
		},
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return "", fmt.Errorf("socketmodetest: encoding envelope: %w", err)
	}
	return envelopeID, s.SendRaw(data)
}

// SendHello sends the hello message Slack emits after connecting.
func (s *Server) SendHello() error {
	return s.SendRaw([]byte(`{"type":"hello","num_connections":1,"debug_info":{"host":"socketmodetest"}}`))
}

// CloseConnection sends a normal-closure frame and closes the
// connection. The client observes the end of the stream.
func (s *Server) CloseConnection() error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return ErrNoConnection
	}

	s.writeMu.Lock()
	err := conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "socketmodetest closing"),
		time.Now().Add(time.Second))
	s.writeMu.Unlock()

	s.dropConn(conn)
	return err
}

func (s *Server) write(kind int, data []byte) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return ErrNoConnection
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return conn.WriteMessage(kind, data)
}

// Close drops any connection and shuts the server down.
func (s *Server) Close() {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn != nil {
		s.dropConn(conn)
	}
	s.httpServer.Close()
}
