// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for slackr packages.
//
// [RequireReceive], [RequireNoReceive], and [RequireClosed] wrap the
// select-with-timeout pattern so that tests waiting on a handler or a
// listen loop never hang the whole suite. They are the only place that
// uses real wall-clock timeouts; production logic under test takes a
// clock.Clock instead.
//
// All helpers call t.Fatalf on failure.
package testutil
