// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package xrpc

import (
	"bytes"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recover contains panics to the request that raised them. The wrapped
// handler writes into a buffer; if it panics, the buffer is discarded
// and the client receives a bare 500 with an empty body, and the
// connection stays open for the next request. The panic value and
// stack are logged.
//
// A panic with http.ErrAbortHandler is re-raised so that net/http
// aborts the response as that sentinel requests.
func Recover(logger *slog.Logger, next http.Handler) http.Handler {
	if logger == nil {
		panic("xrpc.Recover: logger is required")
	}
	return http.HandlerFunc(func(w http.ResponseWriter, request *http.Request) {
		buffered := &bufferedResponse{header: make(http.Header)}
		completed := false
		defer func() {
			if completed {
				return
			}
			recovered := recover()
			if recovered == http.ErrAbortHandler {
				panic(recovered)
			}
			logger.Error("panic while handling request",
				"panic", recovered,
				"method", request.Method,
				"path", request.URL.Path,
				"stack", string(debug.Stack()),
			)
			// Deliberately no Content-Type and no body.
			w.Header().Set("Content-Length", "0")
			w.WriteHeader(http.StatusInternalServerError)
		}()

		next.ServeHTTP(buffered, request.WithContext(WithLogger(request.Context(), logger)))
		completed = true
		buffered.flush(w)
	})
}

// bufferedResponse collects a complete response so that nothing
// reaches the client until the handler returns normally.
type bufferedResponse struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

func (b *bufferedResponse) Write(data []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(data)
}

func (b *bufferedResponse) flush(w http.ResponseWriter) {
	header := w.Header()
	for key, values := range b.header {
		header[key] = values
	}
	status := b.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	// A write error here means the client disconnected; there is
	// nothing left to report to it.
	_, _ = b.body.WriteTo(w)
}
