// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package slackapi

import (
	"context"
	"errors"
	"net/url"
)

// PostMessage posts text to channel and returns the message
// timestamp, which identifies the message within the channel.
func (c *Client) PostMessage(ctx context.Context, channel, text string) (string, error) {
	if channel == "" {
		return "", errors.New("slackapi: PostMessage requires a channel")
	}

	var response struct {
		Channel string `json:"channel"`
		TS      string `json:"ts"`
	}
	form := url.Values{"channel": {channel}, "text": {text}}
	if _, err := c.call(ctx, "chat.postMessage", form, &response); err != nil {
		return "", err
	}

	c.logger.Debug("posted message", "channel", response.Channel, "ts", response.TS)
	return response.TS, nil
}
