// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package service provides the TCP serving lifecycle for the rpds
// binary.
//
// [HTTPServer] binds its listener before signalling [HTTPServer.Ready],
// so a caller can distinguish a bind failure (Serve returns before
// Ready closes) from a running server. Cancelling the context passed to
// [HTTPServer.Serve] stops accepting connections and drains in-flight
// requests for at most the configured shutdown timeout.
//
// A per-connection context hook ([HTTPServerConfig].ConnContext) lets
// the caller attach connection facts, such as the TCP peer address, to
// every request served on that connection.
package service
