// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"testing"
)

func TestIsExpectedCloseError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "eof", err: io.EOF, want: true},
		{name: "unexpected_eof", err: io.ErrUnexpectedEOF, want: true},
		{name: "closed", err: net.ErrClosed, want: true},
		{name: "wrapped_closed", err: fmt.Errorf("writing response: %w", net.ErrClosed), want: true},
		{name: "broken_pipe", err: &net.OpError{Op: "write", Err: os.NewSyscallError("write", syscall.EPIPE)}, want: true},
		{name: "reset", err: &net.OpError{Op: "read", Err: os.NewSyscallError("read", syscall.ECONNRESET)}, want: true},
		{name: "refused", err: &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}, want: false},
		{name: "other", err: errors.New("encoding failed"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsExpectedCloseError(tt.err); got != tt.want {
				t.Errorf("IsExpectedCloseError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
