// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool opens the SQLite database behind slackr's alias
// cache.
//
// It wraps zombiezen.com/go/sqlite's sqlitex.Pool and applies one set
// of pragmas to every connection: WAL journaling, NORMAL synchronous
// (durable across process crashes, which is all a rebuildable cache
// needs), a busy timeout so a refresh and a lookup do not collide with
// SQLITE_BUSY, and an in-memory temp store. Callers Take a connection,
// use it from one goroutine, and Put it back, or use [Pool.With] to do
// both.
//
//	pool, err := sqlitepool.Open(sqlitepool.Config{
//	    Path:      "/var/lib/slackr/aliases.db",
//	    Logger:    logger,
//	    OnConnect: func(conn *sqlite.Conn) error {
//	        return sqlitex.ExecuteScript(conn, schema, nil)
//	    },
//	})
//
// The package does not wrap SQL: callers use sqlitex.Execute and
// sqlitex.ImmediateTransaction directly.
package sqlitepool
