// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// The dispatch registry arms a per-handler deadline with AfterFunc,
// the alias cache stamps rows and decides when a refresh is due with
// Now, and slackr-listen re-checks the cache on a NewTicker. Production
// code passes Real(); tests pass Fake() and move time with Advance.
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	registry := socketmode.NewRegistry(socketmode.RegistryConfig{
//	    Clock:          c,
//	    HandlerTimeout: time.Second,
//	})
//	// ... dispatch in a goroutine ...
//	c.WaitForTimers(1)
//	c.Advance(time.Second)
package clock
