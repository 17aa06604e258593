// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for rpds packages.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so that tests waiting on a goroutine, a server's readiness,
// or a concurrent extractor never hang the suite when the code under
// test deadlocks. They are the only place in the test suite that uses
// real wall-clock timeouts.
//
// Both helpers call t.Fatalf on failure rather than returning errors,
// since a test that cannot make progress is not recoverable.
//
// This package has no rpds-internal dependencies.
package testutil
