// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package xrpc

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Router dispatches XRPC requests by NSID. It serves the path that
// remains after the routing prefix has been removed (for example by
// http.StripPrefix("/xrpc", router)): the first segment of that path
// is the NSID, and any further segments are ignored.
//
// The route table is built before serving and never changes while
// requests are in flight. Register is not safe for concurrent use with
// ServeHTTP.
type Router struct {
	routes      map[string]http.Handler
	logger      *slog.Logger
	maxBodySize int64
}

// RouterConfig configures a Router.
type RouterConfig struct {
	// Logger is the base logger. Each request gets a child logger
	// with request_id and nsid attributes, available to handlers
	// through Logger(ctx). Required.
	Logger *slog.Logger

	// MaxBodySize bounds request bodies read by body extractors.
	// Defaults to DefaultMaxBodySize if zero.
	MaxBodySize int64
}

// NewRouter creates an empty router.
func NewRouter(config RouterConfig) *Router {
	if config.Logger == nil {
		panic("xrpc.Router: Logger is required")
	}
	maxBodySize := config.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}
	return &Router{
		routes:      make(map[string]http.Handler),
		logger:      config.Logger,
		maxBodySize: maxBodySize,
	}
}

// Register adds the handler for nsid. Panics on an empty NSID, one
// containing '/', or a duplicate registration: all are programming
// errors in the route table.
func (r *Router) Register(nsid string, handler http.Handler) {
	if nsid == "" || strings.Contains(nsid, "/") {
		panic(fmt.Sprintf("xrpc.Router: invalid NSID %q", nsid))
	}
	if handler == nil {
		panic(fmt.Sprintf("xrpc.Router: nil handler for %s", nsid))
	}
	if _, exists := r.routes[nsid]; exists {
		panic(fmt.Sprintf("xrpc.Router: duplicate registration for %s", nsid))
	}
	r.routes[nsid] = handler
}

// Has reports whether nsid has a registered handler.
func (r *Router) Has(nsid string) bool {
	_, ok := r.routes[nsid]
	return ok
}

// Methods returns the registered NSIDs in sorted order.
func (r *Router) Methods() []string {
	methods := make([]string, 0, len(r.routes))
	for nsid := range r.routes {
		methods = append(methods, nsid)
	}
	sort.Strings(methods)
	return methods
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, request *http.Request) {
	nsid := NSIDFromPath(request.URL.Path)
	requestID := uuid.NewString()
	w.Header().Set("X-Request-Id", requestID)

	ctx := request.Context()
	ctx = WithLogger(ctx, r.logger.With("request_id", requestID, "nsid", nsid))
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	ctx = withBodyLimit(ctx, r.maxBodySize)
	request = request.WithContext(ctx)

	handler, ok := r.routes[nsid]
	if !ok {
		writeError(w, request, NotFound())
		return
	}
	handler.ServeHTTP(w, request)
}

// NSIDFromPath returns the first segment of path, without the leading
// separator: "/com.atproto.admin.getAccountInfo/extra" yields
// "com.atproto.admin.getAccountInfo", and "" or "/" yield "".
func NSIDFromPath(path string) string {
	path = strings.TrimPrefix(path, "/")
	if end := strings.IndexByte(path, '/'); end >= 0 {
		return path[:end]
	}
	return path
}
