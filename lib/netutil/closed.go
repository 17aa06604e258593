// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil classifies network errors.
package netutil

import (
	"errors"
	"io"
	"net"
	"syscall"
)

// IsExpectedCloseError reports whether err from writing an XRPC response
// means the client hung up: a closed or reset connection, a broken pipe,
// or EOF. The xrpc package logs those at debug, since nothing is wrong
// with the server, and any other write failure at warn.
func IsExpectedCloseError(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, net.ErrClosed):
		return true
	}
	var errno syscall.Errno
	return errors.As(err, &errno) && (errno == syscall.EPIPE || errno == syscall.ECONNRESET)
}
