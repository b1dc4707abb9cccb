// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/slackr/aliasdb"
	"github.com/bureau-foundation/slackr/socketmode"
)

// nameResolver turns ids into names. *aliasdb.Store implements it.
type nameResolver interface {
	ResolveUserName(ctx context.Context, userID string) (string, error)
	ResolveChannelName(ctx context.Context, channelID string) (string, error)
}

type lineStyles struct {
	channel lipgloss.Style
	user    lipgloss.Style
}

func defaultStyles() *lineStyles {
	return &lineStyles{
		channel: lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
		user:    lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	}
}

// printer writes one line per message: "#channel user: text". Names
// come from the alias cache when there is one; unknown ids print as
// themselves.
type printer struct {
	out    io.Writer
	names  nameResolver
	styles *lineStyles
	logger *slog.Logger
}

func (p *printer) handle(ctx context.Context, envelope socketmode.Envelope) {
	fmt.Fprintln(p.out, p.line(ctx, envelope.Payload.Event))
}

func (p *printer) line(ctx context.Context, event socketmode.Event) string {
	channel := "#" + p.resolve(ctx, "channel", event.Channel, p.channelName)
	user := p.resolve(ctx, "user", event.User, p.userName)
	if p.styles != nil {
		channel = p.styles.channel.Render(channel)
		user = p.styles.user.Render(user)
	}
	return channel + " " + user + ": " + event.Text
}

func (p *printer) userName(ctx context.Context, id string) (string, error) {
	return p.names.ResolveUserName(ctx, id)
}

func (p *printer) channelName(ctx context.Context, id string) (string, error) {
	return p.names.ResolveChannelName(ctx, id)
}

func (p *printer) resolve(ctx context.Context, kind, id string, lookup func(context.Context, string) (string, error)) string {
	if p.names == nil || id == "" {
		return id
	}
	name, err := lookup(ctx, id)
	if err != nil {
		if errors.Is(err, aliasdb.ErrNotFound) {
			p.logger.Debug("no alias cached", "kind", kind, "id", id)
		} else {
			p.logger.Warn("alias lookup failed", "kind", kind, "id", id, "error", err)
		}
		return id
	}
	return name
}
