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

	"github.com/bureau-foundation/slackr/socketmode/socketmodetest"
)

func TestHandshake(t *testing.T) {
	var gotAuth, gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		gotAuth = request.Header.Get("Authorization")
		gotMethod = request.Method
		gotPath = request.URL.Path
		writer.Header().Set("Content-Type", "application/json")
		writer.Write([]byte(`{"ok":true,"url":"wss://wss-primary.slack.com/link/?ticket=abc"}`))
	}))
	defer server.Close()

	socketURL, err := Handshake(context.Background(), HandshakeConfig{
		APIURL:   server.URL + "/api",
		AppToken: testBuffer(t, "xapp-1-test"),
		Logger:   discardLogger(),
	})
	if err != nil {
		t.Fatalf("Handshake: %v", err)
	}
	if socketURL != "wss://wss-primary.slack.com/link/?ticket=abc" {
		t.Errorf("url = %q", socketURL)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("method = %s, want POST", gotMethod)
	}
	if gotPath != "/api/apps.connections.open" {
		t.Errorf("path = %s", gotPath)
	}
	if gotAuth != "Bearer xapp-1-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestHandshakeFromEnvironment(t *testing.T) {
	t.Setenv("SLACKR_TEST_APP_TOKEN", "  xapp-from-env\n")
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		gotAuth = request.Header.Get("Authorization")
		writer.Write([]byte(`{"ok":true,"url":"wss://example/link"}`))
	}))
	defer server.Close()

	_, err := Handshake(context.Background(), HandshakeConfig{
		APIURL:      server.URL + "/",
		AppTokenEnv: "SLACKR_TEST_APP_TOKEN",
		Logger:      discardLogger(),
	})
	if err != nil {
		t.Fatalf("Handshake: %v", err)
	}
	if gotAuth != "Bearer xapp-from-env" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestHandshakeMissingToken(t *testing.T) {
	t.Setenv("SLACKR_TEST_APP_TOKEN", "")
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { requests++ }))
	defer server.Close()

	_, err := Handshake(context.Background(), HandshakeConfig{
		APIURL:      server.URL + "/",
		AppTokenEnv: "SLACKR_TEST_APP_TOKEN",
		Logger:      discardLogger(),
	})
	if !errors.Is(err, ErrMissingAppToken) {
		t.Fatalf("error = %v, want ErrMissingAppToken", err)
	}
	if requests != 0 {
		t.Errorf("made %d requests without a token", requests)
	}
}

func TestHandshakeFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
	}{
		{name: "not ok", status: http.StatusOK, body: `{"ok":false,"error":"invalid_auth"}`, wantCode: "invalid_auth"},
		{name: "not ok without code", status: http.StatusOK, body: `{"ok":false}`, wantCode: "unknown_error"},
		{name: "null url", status: http.StatusOK, body: `{"ok":true,"url":null}`},
		{name: "missing url", status: http.StatusOK, body: `{"ok":true}`},
		{name: "empty url", status: http.StatusOK, body: `{"ok":true,"url":""}`},
		{name: "not json", status: http.StatusBadGateway, body: `<html>bad gateway</html>`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
				writer.WriteHeader(test.status)
				writer.Write([]byte(test.body))
			}))
			defer server.Close()

			_, err := Handshake(context.Background(), HandshakeConfig{
				APIURL:   server.URL + "/",
				AppToken: testBuffer(t, "xapp-1-test"),
				Logger:   discardLogger(),
			})
			var handshakeErr *HandshakeError
			if !errors.As(err, &handshakeErr) {
				t.Fatalf("error = %v, want *HandshakeError", err)
			}
			if handshakeErr.Code != test.wantCode {
				t.Errorf("Code = %q, want %q", handshakeErr.Code, test.wantCode)
			}
			if handshakeErr.StatusCode != test.status {
				t.Errorf("StatusCode = %d, want %d", handshakeErr.StatusCode, test.status)
			}
		})
	}
}

func TestConnectHandshakeRejectedDoesNotDial(t *testing.T) {
	server := socketmodetest.NewServer(socketmodetest.Config{AppToken: "xapp-right"})
	defer server.Close()

	client := newTestClient(t, Config{
		APIURL:   server.APIURL(),
		AppToken: testBuffer(t, "xapp-wrong"),
	})
	err := client.Connect(context.Background())

	var handshakeErr *HandshakeError
	if !errors.As(err, &handshakeErr) || handshakeErr.Code != "invalid_auth" {
		t.Fatalf("error = %v, want HandshakeError invalid_auth", err)
	}
	if server.Dials() != 0 {
		t.Errorf("dials = %d, want 0", server.Dials())
	}
	if client.State() != StateIdle {
		t.Errorf("state = %s, want idle", client.State())
	}
}

func TestConnectNullURLDoesNotDial(t *testing.T) {
	server := socketmodetest.NewServer(socketmodetest.Config{AppToken: "xapp-1"})
	defer server.Close()
	server.SetHandshakeResponse([]byte(`{"ok":true,"url":null}`))

	client := newTestClient(t, Config{APIURL: server.APIURL(), AppToken: testBuffer(t, "xapp-1")})
	err := client.Connect(context.Background())

	var handshakeErr *HandshakeError
	if !errors.As(err, &handshakeErr) {
		t.Fatalf("error = %v, want *HandshakeError", err)
	}
	if !strings.Contains(err.Error(), "no url") {
		t.Errorf("error %q does not mention the url", err)
	}
	if server.Dials() != 0 {
		t.Errorf("dials = %d, want 0", server.Dials())
	}
}
