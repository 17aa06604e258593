// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pds

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/bureau-foundation/rpds/lib/xrpc"
)

const xrpcPrefix = "/xrpc"

// accessLog emits one record per request once the response is
// complete. Client errors log at warn, server errors at error.
func accessLog(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, request *http.Request) {
		start := time.Now()
		wrapped := middleware.NewWrapResponseWriter(w, request.ProtoMajor)
		next.ServeHTTP(wrapped, request)

		status := responseStatus(wrapped)
		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		attrs := []slog.Attr{
			slog.String("method", request.Method),
			slog.String("path", request.URL.Path),
			slog.Int("status", status),
			slog.Int("bytes", wrapped.BytesWritten()),
			slog.Duration("duration", time.Since(start)),
			slog.String("remote", request.RemoteAddr),
		}
		if requestID := wrapped.Header().Get("X-Request-Id"); requestID != "" {
			attrs = append(attrs, slog.String("request_id", requestID))
		}
		logger.LogAttrs(request.Context(), level, "http request", attrs...)
	})
}

// recordMetrics observes every request under /xrpc. The NSID label is
// the routed method name, or "unknown" when the router has no handler
// for it.
func recordMetrics(metrics *Metrics, router *xrpc.Router, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, request *http.Request) {
		rest, isXRPC := cutXRPCPrefix(request.URL.Path)
		if !isXRPC {
			next.ServeHTTP(w, request)
			return
		}

		nsid := xrpc.NSIDFromPath(rest)
		if !router.Has(nsid) {
			nsid = unknownNSID
		}

		start := time.Now()
		wrapped := middleware.NewWrapResponseWriter(w, request.ProtoMajor)
		next.ServeHTTP(wrapped, request)
		metrics.Record(nsid, responseStatus(wrapped), time.Since(start))
	})
}

// cutXRPCPrefix reports whether path is /xrpc or below it, and returns
// the remainder.
func cutXRPCPrefix(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, xrpcPrefix)
	if !ok || (rest != "" && rest[0] != '/') {
		return "", false
	}
	return rest, true
}

// responseStatus is the status the handler wrote, or 200 when it
// returned without writing anything.
func responseStatus(w middleware.WrapResponseWriter) int {
	if status := w.Status(); status != 0 {
		return status
	}
	return http.StatusOK
}
