// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pds

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bureau-foundation/rpds/lib/xrpc"
)

// ServerConfig configures a Server.
type ServerConfig struct {
	// State holds the configuration, database, and password hasher.
	// Required.
	State *State

	// Backend carries out the com.atproto methods. Defaults to
	// Unimplemented, which answers every method with 501.
	Backend Backend

	// Logger is the base logger for access logs, the XRPC router,
	// and the panic boundary. Required.
	Logger *slog.Logger
}

// Server is the complete HTTP surface: the landing page, robots.txt,
// Prometheus metrics, and the XRPC methods under /xrpc.
type Server struct {
	handler http.Handler
	router  *xrpc.Router
}

// NewServer builds the route table. Every XRPC method is registered
// before the server is returned, and the table never changes after.
func NewServer(config ServerConfig) (*Server, error) {
	if config.State == nil {
		panic("pds.Server: State is required")
	}
	if config.Logger == nil {
		panic("pds.Server: Logger is required")
	}
	backend := config.Backend
	if backend == nil {
		backend = Unimplemented{}
	}

	router := xrpc.NewRouter(xrpc.RouterConfig{
		Logger:      config.Logger,
		MaxBodySize: config.State.Config.MaxBodySize,
	})
	(&methods{
		backend:  backend,
		hasher:   config.State.Hasher,
		database: config.State.Database,
	}).register(router)

	index, robots, err := loadStaticPages()
	if err != nil {
		return nil, err
	}
	metrics := NewMetrics()

	mux := chi.NewRouter()
	mux.Handle("/", index)
	mux.Handle("/robots.txt", robots)
	mux.Handle("/robots.txt/*", robots)
	mux.Handle("/metrics", metrics.Handler())
	xrpcHandler := http.StripPrefix(xrpcPrefix, router)
	mux.Handle(xrpcPrefix, xrpcHandler)
	mux.Handle(xrpcPrefix+"/*", xrpcHandler)
	mux.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	return &Server{
		handler: accessLog(config.Logger, recordMetrics(metrics, router, xrpc.Recover(config.Logger, mux))),
		router:  router,
	}, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, request *http.Request) {
	s.handler.ServeHTTP(w, request)
}

// Methods returns the registered XRPC NSIDs in sorted order.
func (s *Server) Methods() []string {
	return s.router.Methods()
}
