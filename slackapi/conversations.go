// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package slackapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// channelTypes selects which conversations ListChannels returns. Direct
// messages are not part of the channels directory.
const channelTypes = "public_channel,private_channel"

// ListChannels returns the public channels and the private channels
// the bot belongs to, archived ones included.
func (c *Client) ListChannels(ctx context.Context) ([]Channel, error) {
	var channels []Channel
	cursor := ""
	for page := 1; ; page++ {
		form := url.Values{
			"limit": {strconv.Itoa(c.pageSize)},
			"types": {channelTypes},
		}
		if cursor != "" {
			form.Set("cursor", cursor)
		}

		var response struct {
			Channels []Channel `json:"channels"`
		}
		common, err := c.call(ctx, "conversations.list", form, &response)
		if err != nil {
			return nil, err
		}
		channels = append(channels, response.Channels...)

		next := common.ResponseMetadata.NextCursor
		if next == "" {
			c.logger.Debug("listed channels", "count", len(channels), "pages", page)
			return channels, nil
		}
		if next == cursor {
			return nil, fmt.Errorf("slackapi: conversations.list: next_cursor %q repeated on page %d", next, page)
		}
		cursor = next
	}
}
