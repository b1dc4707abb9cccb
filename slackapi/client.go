// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package slackapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/bureau-foundation/slackr/lib/netutil"
	"github.com/bureau-foundation/slackr/lib/secret"
)

// DefaultAPIURL is the Slack Web API base URL.
const DefaultAPIURL = "https://slack.com/api/"

// DefaultPageSize is the page size requested from list methods.
// Slack recommends no more than 200.
const DefaultPageSize = 200

// Config holds configuration for creating a Client.
type Config struct {
	// APIURL is the Web API base URL. Defaults to DefaultAPIURL.
	APIURL string
	// Token is the bot token. Required. The caller keeps ownership
	// and must not close it while the Client is in use.
	Token *secret.Buffer
	// PageSize for list methods. Defaults to DefaultPageSize.
	PageSize int
	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Client calls the Slack Web API with a bot token. It is safe for
// concurrent use.
type Client struct {
	baseURL    string
	token      *secret.Buffer
	pageSize   int
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client. It performs no I/O.
func NewClient(config Config) (*Client, error) {
	if config.Token == nil {
		return nil, errors.New("slackapi: Token is required")
	}
	baseURL := config.APIURL
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("slackapi: invalid APIURL %q: %w", baseURL, err)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	pageSize := config.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
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
		baseURL:    baseURL,
		token:      config.Token,
		pageSize:   pageSize,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// call POSTs form to method. On an ok response it decodes the body
// into result (if non-nil) and returns the fields shared by every
// response.
func (c *Client) call(ctx context.Context, method string, form url.Values, result any) (*envelope, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+method, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("slackapi: creating %s request: %w", method, err)
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.Header.Set("Authorization", "Bearer "+c.token.String())

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("slackapi: %s request failed: %w", method, err)
	}
	defer response.Body.Close()

	body, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("slackapi: reading %s response: %w", method, err)
	}

	var common envelope
	if err := json.Unmarshal(body, &common); err != nil {
		// Slack answers non-JSON only from proxies and outages.
		return nil, fmt.Errorf("slackapi: unexpected %d response from %s: %.200s",
			response.StatusCode, method, string(body))
	}
	if !common.OK {
		code := common.Error
		if code == "" {
			code = "unknown_error"
		}
		return nil, &Error{Method: method, Code: code, StatusCode: response.StatusCode}
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return nil, fmt.Errorf("slackapi: decoding %s response: %w", method, err)
		}
	}
	return &common, nil
}

// AuthTest reports the identity behind the token.
func (c *Client) AuthTest(ctx context.Context) (*Identity, error) {
	var identity Identity
	if _, err := c.call(ctx, "auth.test", url.Values{}, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}
