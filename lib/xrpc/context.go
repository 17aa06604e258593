// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package xrpc

import (
	"context"
	"log/slog"
	"net"
	"net/netip"
)

type contextKey int

const (
	loggerKey contextKey = iota
	peerAddrKey
	requestIDKey
	bodyLimitKey
)

// WithLogger returns a context carrying logger. Router attaches a
// request-scoped logger (request_id, nsid) before dispatch.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// Logger returns the logger attached to ctx, or slog.Default when there
// is none.
func Logger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithPeerAddr returns a context carrying the TCP peer address of the
// connection. Servers attach it once per connection (see
// http.Server.ConnContext).
func WithPeerAddr(ctx context.Context, addr netip.AddrPort) context.Context {
	return context.WithValue(ctx, peerAddrKey, addr)
}

// ConnContext attaches the TCP peer address of conn. It has the
// signature of http.Server.ConnContext. Non-TCP connections leave ctx
// unchanged.
func ConnContext(ctx context.Context, conn net.Conn) context.Context {
	tcp, ok := conn.RemoteAddr().(*net.TCPAddr)
	if !ok {
		return ctx
	}
	addr := tcp.AddrPort()
	return WithPeerAddr(ctx, netip.AddrPortFrom(addr.Addr().Unmap(), addr.Port()))
}

func peerAddrFromContext(ctx context.Context) (netip.AddrPort, bool) {
	addr, ok := ctx.Value(peerAddrKey).(netip.AddrPort)
	return addr, ok && addr.IsValid()
}

// RequestID returns the identifier Router assigned to the request, or
// "" outside a routed request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func withBodyLimit(ctx context.Context, limit int64) context.Context {
	return context.WithValue(ctx, bodyLimitKey, limit)
}

func bodyLimit(ctx context.Context) int64 {
	if limit, ok := ctx.Value(bodyLimitKey).(int64); ok && limit > 0 {
		return limit
	}
	return DefaultMaxBodySize
}
