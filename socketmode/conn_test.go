// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package socketmode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// serveWebSocket starts a server that upgrades every request and hands
// the server side of the connection to handle.
func serveWebSocket(t *testing.T, handle func(ws *websocket.Conn)) string {
	t.Helper()
	var upgrader websocket.Upgrader
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ws, err := upgrader.Upgrade(writer, request, nil)
		if err != nil {
			return
		}
		handle(ws)
	}))
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func dialTest(t *testing.T, url string) *Conn {
	t.Helper()
	conn, err := Dial(context.Background(), url, DialConfig{Logger: discardLogger()})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestDialFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/link/?ticket=secret"
	_, err := Dial(context.Background(), url, DialConfig{Logger: discardLogger()})

	var connectionErr *ConnectionError
	if !errors.As(err, &connectionErr) {
		t.Fatalf("error = %v, want *ConnectionError", err)
	}
	if connectionErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", connectionErr.StatusCode)
	}
	if strings.Contains(err.Error(), "secret") {
		t.Errorf("error leaks the ticket: %v", err)
	}
}

func TestConnReadFrames(t *testing.T) {
	url := serveWebSocket(t, func(ws *websocket.Conn) {
		ws.WriteMessage(websocket.TextMessage, []byte("one"))
		ws.WriteMessage(websocket.BinaryMessage, []byte{0x01, 0x02})
		ws.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		ws.Close()
	})
	conn := dialTest(t, url)
	ctx := context.Background()

	frame, err := conn.ReadFrame(ctx)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if frame.Kind != TextFrame || string(frame.Data) != "one" {
		t.Errorf("frame = %s %q, want text \"one\"", frame.Kind, frame.Data)
	}

	frame, err = conn.ReadFrame(ctx)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if frame.Kind != BinaryFrame {
		t.Errorf("kind = %s, want binary", frame.Kind)
	}

	for range 2 {
		if _, err := conn.ReadFrame(ctx); !errors.Is(err, ErrStreamEnded) {
			t.Fatalf("error = %v, want ErrStreamEnded", err)
		}
	}
}

func TestConnTransportFaultThenStreamEnded(t *testing.T) {
	url := serveWebSocket(t, func(ws *websocket.Conn) {
		// A text frame with all reserved bits set is a protocol
		// violation when no extension is negotiated.
		ws.UnderlyingConn().Write([]byte{0xF1, 0x00})
		time.Sleep(100 * time.Millisecond)
		ws.Close()
	})
	conn := dialTest(t, url)

	_, err := conn.ReadFrame(context.Background())
	var readErr *TransportReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("first error = %v, want *TransportReadError", err)
	}
	if _, err := conn.ReadFrame(context.Background()); !errors.Is(err, ErrStreamEnded) {
		t.Fatalf("second error = %v, want ErrStreamEnded", err)
	}
}

func TestConnReadFrameCancelled(t *testing.T) {
	release := make(chan struct{})
	url := serveWebSocket(t, func(ws *websocket.Conn) {
		<-release
		ws.Close()
	})
	defer close(release)
	conn := dialTest(t, url)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	if _, err := conn.ReadFrame(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestConnWriteFrame(t *testing.T) {
	received := make(chan string, 1)
	url := serveWebSocket(t, func(ws *websocket.Conn) {
		kind, data, err := ws.ReadMessage()
		if err == nil && kind == websocket.TextMessage {
			received <- string(data)
		}
		ws.Close()
	})
	conn := dialTest(t, url)

	if err := conn.WriteFrame(context.Background(), []byte(`{"envelope_id":"E1","payload":{}}`)); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	select {
	case got := <-received:
		if got != `{"envelope_id":"E1","payload":{}}` {
			t.Errorf("server received %s", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not receive frame")
	}
}

func TestConnWriteAfterClose(t *testing.T) {
	url := serveWebSocket(t, func(ws *websocket.Conn) {
		ws.ReadMessage()
		ws.Close()
	})
	conn := dialTest(t, url)

	if err := conn.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := conn.WriteFrame(context.Background(), []byte("{}")); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("error = %v, want ErrNotConnected", err)
	}
}
