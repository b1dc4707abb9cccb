// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package socketmode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bureau-foundation/slackr/lib/clock"
	"github.com/bureau-foundation/slackr/lib/secret"
)

// DefaultAPIURL is the Slack Web API base URL.
const DefaultAPIURL = "https://slack.com/api/"

// DefaultAppTokenEnv names the environment variable consulted when no
// app token is configured.
const DefaultAppTokenEnv = "SLACK_APP_TOKEN"

// Config holds configuration for creating a Client.
type Config struct {
	// APIURL is the Web API base URL. Defaults to DefaultAPIURL.
	APIURL string

	// AppToken is the app-level token (xapp-…) for the handshake. The
	// caller keeps ownership. If nil, the token is read from the
	// AppTokenEnv environment variable on each Handshake.
	AppToken *secret.Buffer

	// AppTokenEnv defaults to DefaultAppTokenEnv.
	AppTokenEnv string

	// HTTPClient is used for the handshake. Nil uses http.DefaultClient.
	HTTPClient *http.Client

	// Dialer opens the WebSocket. Nil uses websocket.DefaultDialer.
	Dialer *websocket.Dialer

	// WriteTimeout bounds acknowledgment writes. Zero means none.
	WriteTimeout time.Duration

	// HandlerTimeout is passed to the Registry.
	HandlerTimeout time.Duration

	// Clock is passed to the Registry.
	Clock clock.Clock

	// Logger is used for structured logging. Nil uses slog.Default().
	Logger *slog.Logger
}

// State is the client's position in the connection lifecycle.
type State int32

const (
	// StateIdle: no connection has been opened yet.
	StateIdle State = iota
	// StateConnected: a connection is open and Listen may run.
	StateConnected
	// StateTerminated: the last Listen has exited and its connection
	// is closed. Connect may be called again.
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnected:
		return "connected"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Client is a Socket Mode client. Register handlers, Connect, then
// Listen. One Listen runs at a time per client.
type Client struct {
	apiURL       string
	appToken     *secret.Buffer
	appTokenEnv  string
	httpClient   *http.Client
	dialer       *websocket.Dialer
	writeTimeout time.Duration
	logger       *slog.Logger
	registry     *Registry

	mu    sync.Mutex
	conn  *Conn
	state State

	listening atomic.Bool
}

// NewClient creates a Client. It performs no I/O.
func NewClient(config Config) (*Client, error) {
	apiURL := config.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if _, err := url.Parse(apiURL); err != nil {
		return nil, fmt.Errorf("socketmode: invalid APIURL %q: %w", apiURL, err)
	}
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}

	appTokenEnv := config.AppTokenEnv
	if appTokenEnv == "" {
		appTokenEnv = DefaultAppTokenEnv
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		apiURL:       apiURL,
		appToken:     config.AppToken,
		appTokenEnv:  appTokenEnv,
		httpClient:   httpClient,
		dialer:       config.Dialer,
		writeTimeout: config.WriteTimeout,
		logger:       logger,
		registry: NewRegistry(RegistryConfig{
			HandlerTimeout: config.HandlerTimeout,
			Clock:          config.Clock,
			Logger:         logger,
		}),
	}, nil
}

// Register adds a (predicate, handler) pair to the client's registry.
func (c *Client) Register(predicate Predicate, handler Handler) {
	c.registry.Register(predicate, handler)
}

// Registry returns the client's dispatch registry.
func (c *Client) Registry() *Registry { return c.registry }

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect performs the handshake and opens the WebSocket. A handshake
// failure means no dial is attempted.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateConnected {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.mu.Unlock()

	socketURL, err := c.Handshake(ctx)
	if err != nil {
		return err
	}

	conn, err := Dial(ctx, socketURL, DialConfig{
		Dialer:       c.dialer,
		WriteTimeout: c.writeTimeout,
		Logger:       c.logger,
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateConnected {
		conn.Close()
		return ErrAlreadyConnected
	}
	c.conn = conn
	c.state = StateConnected
	return nil
}

// Sink returns a FrameSink that writes to the current connection,
// sharing the acknowledgment write lock. Writes fail with
// ErrNotConnected while no connection is open.
func (c *Client) Sink() FrameSink { return clientSink{c} }

type clientSink struct{ client *Client }

func (s clientSink) WriteFrame(ctx context.Context, data []byte) error {
	s.client.mu.Lock()
	conn := s.client.conn
	s.client.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	return conn.WriteFrame(ctx, data)
}

// Listen runs the listen loop on the open connection until it
// terminates, then closes the connection. It returns:
//
//   - ErrStreamEnded when the server closes the stream;
//   - *AckError when an acknowledgment cannot be written;
//   - ctx.Err() when ctx ends.
//
// Parse failures and transport read faults are logged and do not end
// the loop.
func (c *Client) Listen(ctx context.Context) error {
	if !c.listening.CompareAndSwap(false, true) {
		return ErrAlreadyListening
	}
	defer c.listening.Store(false)

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	err := c.serve(ctx, conn, conn)

	conn.Close()
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
		c.state = StateTerminated
	}
	c.mu.Unlock()
	return err
}

// Close closes the open connection, if any, and moves the client to
// StateTerminated so that Connect may be called again. A running
// Listen returns ErrStreamEnded.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	if conn != nil {
		c.conn = nil
		c.state = StateTerminated
	}
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

// serve is the listen loop over an arbitrary source and sink.
func (c *Client) serve(ctx context.Context, source FrameSource, sink FrameSink) error {
	c.logger.Info("socket mode listen loop started", "routes", c.registry.Len())

	for {
		frame, err := source.ReadFrame(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				c.logger.Info("socket mode listen loop cancelled")
				return ctxErr
			}
			if errors.Is(err, ErrStreamEnded) {
				c.logger.Info("socket mode stream ended", "error", err)
				return err
			}
			c.logger.Error("socket mode read failed, continuing", "error", err)
			continue
		}

		envelope, err := ParseFrame(frame)
		if err != nil {
			c.logDropped(frame, err)
			continue
		}

		if err := Acknowledge(ctx, sink, envelope); err != nil {
			c.logger.Error("socket mode acknowledgment failed, stopping",
				"envelope_id", envelope.EnvelopeID,
				"error", err,
			)
			return err
		}

		invoked := c.registry.Dispatch(ctx, envelope)
		c.logger.Debug("envelope dispatched",
			"envelope_id", envelope.EnvelopeID,
			"event_id", envelope.Payload.EventID,
			"event_type", envelope.Payload.Event.Type,
			"handlers", invoked,
		)
	}
}

func (c *Client) logDropped(frame Frame, err error) {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		switch parseErr.MessageType {
		case MessageTypeHello:
			c.logger.Info("socket mode server ready")
			return
		case MessageTypeDisconnect:
			c.logger.Info("socket mode server announced disconnect")
			return
		}
	}
	c.logger.Debug("dropping unparseable frame",
		"kind", frame.Kind,
		"bytes", len(frame.Data),
		"error", err,
	)
}
