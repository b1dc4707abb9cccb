// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package aliasdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/slackr/lib/clock"
	"github.com/bureau-foundation/slackr/lib/sqlitepool"
)

// ErrNotFound is returned when an id has no cached alias.
var ErrNotFound = errors.New("aliasdb: not found")

// Kind names one of the two cached directories.
type Kind string

const (
	KindUser    Kind = "user"
	KindChannel Kind = "channel"
)

// table returns the SQL table holding kind. Only the two constants are
// valid; anything else is a programming error.
func (k Kind) table() string {
	switch k {
	case KindUser:
		return "users"
	case KindChannel:
		return "channels"
	default:
		panic(fmt.Sprintf("aliasdb: unknown kind %q", string(k)))
	}
}

// User is the cached record for one member.
type User struct {
	ID       string `cbor:"id"`
	Name     string `cbor:"name"`
	RealName string `cbor:"real_name,omitempty"`
	IsBot    bool   `cbor:"is_bot,omitempty"`
}

// Channel is the cached record for one channel.
type Channel struct {
	ID         string `cbor:"id"`
	Name       string `cbor:"name"`
	IsPrivate  bool   `cbor:"is_private,omitempty"`
	IsArchived bool   `cbor:"is_archived,omitempty"`
}

// Record is one raw row: the CBOR-encoded User or Channel and when it
// was last written.
type Record struct {
	Kind      Kind
	ID        string
	Data      []byte
	UpdatedAt time.Time
}

// Config holds the parameters for opening a Store.
type Config struct {
	// Path is the database file. Its parent directory must exist.
	Path string

	// Clock stamps rows and decides staleness. Nil uses clock.Real().
	Clock clock.Clock

	// Logger receives operational messages. Nil discards them.
	Logger *slog.Logger
}

// Store is the alias cache. It is safe for concurrent use.
type Store struct {
	pool   *sqlitepool.Pool
	clock  clock.Clock
	logger *slog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	real_name  TEXT,
	record     BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS channels (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	is_private INTEGER NOT NULL DEFAULT 0,
	record     BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_channels_name ON channels(name);
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);
`

// metaRefreshedAt holds the unix-nanosecond time of the last
// successful Setup.
const metaRefreshedAt = "refreshed_at"

// Open opens (creating if needed) the database at cfg.Path.
func Open(cfg Config) (*Store, error) {
	storeClock := cfg.Clock
	if storeClock == nil {
		storeClock = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:   cfg.Path,
		Logger: logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("aliasdb: %w", err)
	}

	return &Store{pool: pool, clock: storeClock, logger: logger}, nil
}

// Close closes the database. Blocks until borrowed connections are
// returned.
func (s *Store) Close() error {
	return s.pool.Close()
}

// ResolveUserName returns the member's real name, or their handle when
// no real name is cached.
func (s *Store) ResolveUserName(ctx context.Context, userID string) (string, error) {
	var name string
	found := false
	err := s.pool.With(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			"SELECT COALESCE(NULLIF(real_name, ''), name) FROM users WHERE id = ?",
			&sqlitex.ExecOptions{
				Args: []any{userID},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					name = stmt.ColumnText(0)
					found = true
					return nil
				},
			})
	})
	if err != nil {
		return "", fmt.Errorf("aliasdb: resolving user %s: %w", userID, err)
	}
	if !found {
		return "", fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	return name, nil
}

// ResolveChannelName returns the channel's name without the leading #.
func (s *Store) ResolveChannelName(ctx context.Context, channelID string) (string, error) {
	var name string
	found := false
	err := s.pool.With(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			"SELECT name FROM channels WHERE id = ?",
			&sqlitex.ExecOptions{
				Args: []any{channelID},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					name = stmt.ColumnText(0)
					found = true
					return nil
				},
			})
	})
	if err != nil {
		return "", fmt.Errorf("aliasdb: resolving channel %s: %w", channelID, err)
	}
	if !found {
		return "", fmt.Errorf("%w: channel %s", ErrNotFound, channelID)
	}
	return name, nil
}

// LastRefresh returns when Setup last completed, or the zero time if
// it never has.
func (s *Store) LastRefresh(ctx context.Context) (time.Time, error) {
	var refreshed time.Time
	err := s.pool.With(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			"SELECT value FROM meta WHERE key = ?",
			&sqlitex.ExecOptions{
				Args: []any{metaRefreshedAt},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					refreshed = time.Unix(0, stmt.ColumnInt64(0))
					return nil
				},
			})
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("aliasdb: reading last refresh: %w", err)
	}
	return refreshed, nil
}

// Records returns every cached row of kind, ordered by id.
func (s *Store) Records(ctx context.Context, kind Kind) ([]Record, error) {
	query := fmt.Sprintf("SELECT id, record, updated_at FROM %s ORDER BY id", kind.table())

	var records []Record
	err := s.pool.With(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				data := make([]byte, stmt.ColumnLen(1))
				stmt.ColumnBytes(1, data)
				records = append(records, Record{
					Kind:      kind,
					ID:        stmt.ColumnText(0),
					Data:      data,
					UpdatedAt: time.Unix(0, stmt.ColumnInt64(2)),
				})
				return nil
			},
		})
	})
	if err != nil {
		return nil, fmt.Errorf("aliasdb: listing %s records: %w", kind, err)
	}
	return records, nil
}
