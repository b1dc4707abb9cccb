// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package socketmode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bureau-foundation/slackr/lib/netutil"
)

// FrameKind distinguishes text from binary frames. The values match
// the WebSocket opcodes.
type FrameKind int

const (
	TextFrame   FrameKind = websocket.TextMessage
	BinaryFrame FrameKind = websocket.BinaryMessage
)

func (k FrameKind) String() string {
	switch k {
	case TextFrame:
		return "text"
	case BinaryFrame:
		return "binary"
	default:
		return fmt.Sprintf("opcode(%d)", int(k))
	}
}

// Frame is one inbound data frame.
type Frame struct {
	Kind FrameKind
	Data []byte
}

// FrameSource is the inbound half of a connection. There is exactly
// one reader.
type FrameSource interface {
	ReadFrame(ctx context.Context) (Frame, error)
}

// DialConfig configures Dial.
type DialConfig struct {
	// Dialer opens the WebSocket. Nil uses websocket.DefaultDialer.
	Dialer *websocket.Dialer

	// WriteTimeout bounds each outbound write when the caller's
	// context has no deadline. Zero means no bound.
	WriteTimeout time.Duration

	// Logger is used for connection lifecycle messages. Nil uses
	// slog.Default().
	Logger *slog.Logger
}

// Conn is an open Socket Mode connection. It owns the inbound source
// and the outbound sink. ReadFrame must only be called from one
// goroutine; WriteFrame and Close are safe for concurrent use.
type Conn struct {
	ws           *websocket.Conn
	host         string
	logger       *slog.Logger
	writeTimeout time.Duration

	// readErr is the first read failure. Gorilla connections cannot be
	// read again after an error, so every later read reports the end
	// of the stream. Only the reader touches it.
	readErr error

	writeMu sync.Mutex
	closed  bool

	closeOnce sync.Once
	closeErr  error
}

// Dial opens the WebSocket at rawURL. Any failure is a
// *ConnectionError; there is no retry.
func Dial(ctx context.Context, rawURL string, config DialConfig) (*Conn, error) {
	host := rawURL
	if parsed, err := url.Parse(rawURL); err == nil {
		host = parsed.Host
	}

	dialer := config.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ws, response, err := dialer.DialContext(ctx, rawURL, nil)
	if err != nil {
		connectionErr := &ConnectionError{Host: host, Err: err}
		if response != nil {
			connectionErr.StatusCode = response.StatusCode
			response.Body.Close()
		}
		return nil, connectionErr
	}

	logger.Info("socket mode connection established", "host", host)

	return &Conn{
		ws:           ws,
		host:         host,
		logger:       logger,
		writeTimeout: config.WriteTimeout,
	}, nil
}

// ReadFrame blocks until the next data frame arrives. Control frames
// (ping, pong, close) are handled by the transport and never returned.
//
// Errors: ErrStreamEnded (wrapped with the cause) once the peer has
// closed the stream or the connection was closed locally;
// *TransportReadError for the first other read fault; ctx.Err() if ctx
// ends while waiting. After any error the connection is unreadable.
func (c *Conn) ReadFrame(ctx context.Context) (Frame, error) {
	if c.readErr != nil {
		return Frame{}, fmt.Errorf("%w: %w", ErrStreamEnded, c.readErr)
	}
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	// Unblock the read if ctx ends first.
	stop := context.AfterFunc(ctx, func() {
		c.ws.SetReadDeadline(time.Unix(1, 0))
	})
	kind, data, err := c.ws.ReadMessage()
	stop()

	if err != nil {
		c.readErr = err
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Frame{}, ctxErr
		}
		if isStreamEnd(err) {
			return Frame{}, fmt.Errorf("%w: %w", ErrStreamEnded, err)
		}
		return Frame{}, &TransportReadError{Err: err}
	}
	return Frame{Kind: FrameKind(kind), Data: data}, nil
}

func isStreamEnd(err error) bool {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return true
	}
	return netutil.IsExpectedCloseError(err)
}

// WriteFrame writes data as one text frame. Concurrent callers are
// serialized.
func (c *Conn) WriteFrame(ctx context.Context, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.closed {
		return ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var deadline time.Time
	if ctxDeadline, ok := ctx.Deadline(); ok {
		deadline = ctxDeadline
	} else if c.writeTimeout > 0 {
		deadline = time.Now().Add(c.writeTimeout)
	}
	if err := c.ws.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("socketmode: setting write deadline: %w", err)
	}

	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// WriteJSON encodes v and writes it as one text frame.
func (c *Conn) WriteJSON(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("socketmode: encoding frame: %w", err)
	}
	return c.WriteFrame(ctx, data)
}

// Close sends a normal-closure frame and closes the socket. Safe to
// call more than once and concurrently with a blocked ReadFrame, which
// then returns ErrStreamEnded.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		c.closed = true
		c.writeMu.Unlock()

		message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := c.ws.WriteControl(websocket.CloseMessage, message, time.Now().Add(time.Second)); err != nil &&
			!errors.Is(err, websocket.ErrCloseSent) && !netutil.IsExpectedCloseError(err) {
			c.logger.Debug("socket mode close frame not sent", "host", c.host, "error", err)
		}
		if err := c.ws.Close(); err != nil && !netutil.IsExpectedCloseError(err) {
			c.closeErr = fmt.Errorf("socketmode: closing connection: %w", err)
		}
		c.logger.Info("socket mode connection closed", "host", c.host)
	})
	return c.closeErr
}

// Host returns the host the connection was dialed to.
func (c *Conn) Host() string { return c.host }

var _ interface {
	FrameSource
	FrameSink
} = (*Conn)(nil)
