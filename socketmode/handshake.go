// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package socketmode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bureau-foundation/slackr/lib/netutil"
	"github.com/bureau-foundation/slackr/lib/secret"
)

// openConnectionMethod is the Web API method that issues Socket Mode
// URLs. It accepts only app-level tokens (xapp-…).
const openConnectionMethod = "apps.connections.open"

var errMissingURL = errors.New("response is ok but has no url")

// HandshakeConfig configures Handshake.
type HandshakeConfig struct {
	// APIURL is the Web API base URL. Defaults to DefaultAPIURL.
	APIURL string

	// AppToken is presented as the bearer credential. If nil the
	// token is read from AppTokenEnv for the duration of the call.
	AppToken *secret.Buffer

	// AppTokenEnv defaults to DefaultAppTokenEnv.
	AppTokenEnv string

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

type openConnectionResponse struct {
	OK    bool    `json:"ok"`
	URL   *string `json:"url"`
	Error string  `json:"error"`
}

// Handshake calls apps.connections.open and returns the one-time
// WebSocket URL. A missing token fails before any request is made.
// There is no retry; ctx bounds the exchange.
func Handshake(ctx context.Context, config HandshakeConfig) (string, error) {
	apiURL := config.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	token, release, err := resolveAppToken(config.AppToken, config.AppTokenEnv)
	if err != nil {
		return "", err
	}
	defer release()

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+openConnectionMethod, nil)
	if err != nil {
		return "", &HandshakeError{Err: fmt.Errorf("creating request: %w", err)}
	}
	request.Header.Set("Authorization", "Bearer "+token.String())
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := httpClient.Do(request)
	if err != nil {
		return "", &HandshakeError{Err: err}
	}
	defer response.Body.Close()

	body, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return "", &HandshakeError{StatusCode: response.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}

	var decoded openConnectionResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", &HandshakeError{
			StatusCode: response.StatusCode,
			Err:        fmt.Errorf("decoding response: %w", err),
		}
	}
	if !decoded.OK {
		code := decoded.Error
		if code == "" {
			code = "unknown_error"
		}
		return "", &HandshakeError{Code: code, StatusCode: response.StatusCode}
	}
	if decoded.URL == nil || *decoded.URL == "" {
		return "", &HandshakeError{StatusCode: response.StatusCode, Err: errMissingURL}
	}

	logger.Debug("socket mode handshake complete", "status", response.StatusCode)
	return *decoded.URL, nil
}

// Handshake runs Handshake with the client's configuration.
func (c *Client) Handshake(ctx context.Context) (string, error) {
	return Handshake(ctx, HandshakeConfig{
		APIURL:      c.apiURL,
		AppToken:    c.appToken,
		AppTokenEnv: c.appTokenEnv,
		HTTPClient:  c.httpClient,
		Logger:      c.logger,
	})
}

// resolveAppToken returns the token to present and a release func that
// frees it if it was loaded from the environment for this call.
func resolveAppToken(explicit *secret.Buffer, envName string) (*secret.Buffer, func(), error) {
	if explicit != nil && explicit.Len() > 0 {
		return explicit, func() {}, nil
	}
	if envName == "" {
		envName = DefaultAppTokenEnv
	}
	token, err := secret.FromEnv(envName)
	if err != nil {
		if errors.Is(err, secret.ErrUnset) {
			return nil, nil, fmt.Errorf("%w: set %s or pass an explicit token", ErrMissingAppToken, envName)
		}
		return nil, nil, fmt.Errorf("socketmode: loading app token: %w", err)
	}
	return token, func() { token.Close() }, nil
}
