// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package slackapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// ListMembers returns every member of the workspace, including
// deleted accounts and bots. Callers filter.
func (c *Client) ListMembers(ctx context.Context) ([]Member, error) {
	var members []Member
	cursor := ""
	for page := 1; ; page++ {
		form := url.Values{"limit": {strconv.Itoa(c.pageSize)}}
		if cursor != "" {
			form.Set("cursor", cursor)
		}

		var response struct {
			Members []Member `json:"members"`
		}
		common, err := c.call(ctx, "users.list", form, &response)
		if err != nil {
			return nil, err
		}
		members = append(members, response.Members...)

		next := common.ResponseMetadata.NextCursor
		if next == "" {
			c.logger.Debug("listed members", "count", len(members), "pages", page)
			return members, nil
		}
		if next == cursor {
			return nil, fmt.Errorf("slackapi: users.list: next_cursor %q repeated on page %d", next, page)
		}
		cursor = next
	}
}
