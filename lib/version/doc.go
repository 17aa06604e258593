// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for the rpds
// binary.
//
// Four package-level variables are injected at build time via
// -ldflags -X:
//
//	go build -ldflags "-X github.com/bureau-foundation/rpds/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
//   - [GitCommit] -- short git SHA of the build
//   - [GitDirty] -- "true" if there were uncommitted changes
//   - [BuildTime] -- UTC timestamp of the build
//   - [Version] -- semantic version string (set manually for releases)
//
// When GitCommit is not injected, the VCS stamp recorded by the go
// command is used instead.
//
// [Info] and [Full] format --version output; [Short] is the bare
// version reported by the health route.
package version
