// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package slackapi

// Member is one entry of the workspace members directory.
type Member struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	RealName string `json:"real_name,omitempty"`
	Deleted  bool   `json:"deleted"`
	IsBot    bool   `json:"is_bot"`
}

// DisplayName returns RealName, or Name when no real name is set.
func (m Member) DisplayName() string {
	if m.RealName != "" {
		return m.RealName
	}
	return m.Name
}

// Channel is one entry of the channels directory.
type Channel struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsPrivate  bool   `json:"is_private"`
	IsArchived bool   `json:"is_archived"`
}

// Identity is the result of auth.test: who the token belongs to.
type Identity struct {
	UserID string `json:"user_id"`
	User   string `json:"user"`
	TeamID string `json:"team_id"`
	Team   string `json:"team"`
	BotID  string `json:"bot_id,omitempty"`
}

// envelope holds the fields every Web API response shares.
type envelope struct {
	OK               bool   `json:"ok"`
	Error            string `json:"error"`
	ResponseMetadata struct {
		NextCursor string `json:"next_cursor"`
	} `json:"response_metadata"`
}
