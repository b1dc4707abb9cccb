// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package aliasdb

import (
	"context"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/slackr/lib/codec"
	"github.com/bureau-foundation/slackr/slackapi"
)

// Directory supplies the workspace directories. *slackapi.Client
// implements it.
type Directory interface {
	ListMembers(ctx context.Context) ([]slackapi.Member, error)
	ListChannels(ctx context.Context) ([]slackapi.Channel, error)
}

var _ Directory = (*slackapi.Client)(nil)

// SetupStats summarizes one Setup.
type SetupStats struct {
	Users          int
	Channels       int
	DeletedMembers int
}

// Setup pulls both directories and upserts them. Both lists are
// fetched before anything is written, and the writes happen in one
// transaction, so a failed pull leaves the cache as it was.
func (s *Store) Setup(ctx context.Context, directory Directory) (SetupStats, error) {
	members, err := directory.ListMembers(ctx)
	if err != nil {
		return SetupStats{}, fmt.Errorf("aliasdb: listing members: %w", err)
	}
	channels, err := directory.ListChannels(ctx)
	if err != nil {
		return SetupStats{}, fmt.Errorf("aliasdb: listing channels: %w", err)
	}

	now := s.clock.Now()
	var stats SetupStats
	err = s.pool.With(ctx, func(conn *sqlite.Conn) error {
		var writeErr error
		stats, writeErr = s.write(conn, members, channels, now)
		return writeErr
	})
	if err != nil {
		return SetupStats{}, err
	}

	s.logger.Info("alias cache refreshed",
		"users", stats.Users,
		"channels", stats.Channels,
		"deleted_members", stats.DeletedMembers,
	)
	return stats, nil
}

func (s *Store) write(conn *sqlite.Conn, members []slackapi.Member, channels []slackapi.Channel, now time.Time) (stats SetupStats, err error) {
	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return SetupStats{}, fmt.Errorf("aliasdb: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	stamp := now.UnixNano()

	for _, member := range members {
		if member.Deleted {
			stats.DeletedMembers++
			if err := sqlitex.Execute(conn, "DELETE FROM users WHERE id = ?",
				&sqlitex.ExecOptions{Args: []any{member.ID}}); err != nil {
				return SetupStats{}, fmt.Errorf("aliasdb: removing deleted member %s: %w", member.ID, err)
			}
			continue
		}

		record, err := codec.Marshal(User{
			ID:       member.ID,
			Name:     member.Name,
			RealName: member.RealName,
			IsBot:    member.IsBot,
		})
		if err != nil {
			return SetupStats{}, fmt.Errorf("aliasdb: encoding member %s: %w", member.ID, err)
		}

		var realName any
		if member.RealName != "" {
			realName = member.RealName
		}
		if err := sqlitex.Execute(conn,
			`INSERT INTO users (id, name, real_name, record, updated_at) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   name = excluded.name, real_name = excluded.real_name,
			   record = excluded.record, updated_at = excluded.updated_at`,
			&sqlitex.ExecOptions{Args: []any{member.ID, member.Name, realName, record, stamp}}); err != nil {
			return SetupStats{}, fmt.Errorf("aliasdb: writing member %s: %w", member.ID, err)
		}
		stats.Users++
	}

	for _, channel := range channels {
		record, err := codec.Marshal(Channel{
			ID:         channel.ID,
			Name:       channel.Name,
			IsPrivate:  channel.IsPrivate,
			IsArchived: channel.IsArchived,
		})
		if err != nil {
			return SetupStats{}, fmt.Errorf("aliasdb: encoding channel %s: %w", channel.ID, err)
		}
		if err := sqlitex.Execute(conn,
			`INSERT INTO channels (id, name, is_private, record, updated_at) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   name = excluded.name, is_private = excluded.is_private,
			   record = excluded.record, updated_at = excluded.updated_at`,
			&sqlitex.ExecOptions{Args: []any{channel.ID, channel.Name, channel.IsPrivate, record, stamp}}); err != nil {
			return SetupStats{}, fmt.Errorf("aliasdb: writing channel %s: %w", channel.ID, err)
		}
		stats.Channels++
	}

	if err := sqlitex.Execute(conn,
		"INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		&sqlitex.ExecOptions{Args: []any{metaRefreshedAt, stamp}}); err != nil {
		return SetupStats{}, fmt.Errorf("aliasdb: recording refresh time: %w", err)
	}

	return stats, nil
}

// RefreshIfStale runs Setup when the last refresh is older than maxAge
// (or has never happened). It reports whether a refresh ran. A
// non-positive maxAge always refreshes.
func (s *Store) RefreshIfStale(ctx context.Context, directory Directory, maxAge time.Duration) (bool, error) {
	last, err := s.LastRefresh(ctx)
	if err != nil {
		return false, err
	}
	if maxAge > 0 && !last.IsZero() && s.clock.Now().Sub(last) < maxAge {
		s.logger.Debug("alias cache is fresh", "refreshed_at", last, "max_age", maxAge)
		return false, nil
	}
	if _, err := s.Setup(ctx, directory); err != nil {
		return false, err
	}
	return true, nil
}
