// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// DefaultShutdownTimeout bounds the drain when HTTPServerConfig leaves
// ShutdownTimeout zero.
const DefaultShutdownTimeout = 30 * time.Second

// HTTPServer runs the rpds handler stack on one TCP listener and
// drains it when its context ends.
type HTTPServer struct {
	address         string
	handler         http.Handler
	connContext     func(context.Context, net.Conn) context.Context
	logger          *slog.Logger
	shutdownTimeout time.Duration

	ready chan struct{} // closed once the listener is bound
	addr  net.Addr      // set before ready closes
}

// HTTPServerConfig configures an HTTPServer.
type HTTPServerConfig struct {
	// Address is the TCP listen address (e.g., "127.0.0.1:2583",
	// "[::]:443"). Required.
	Address string

	// Handler is the HTTP handler for incoming requests. Required.
	Handler http.Handler

	// ConnContext, if set, derives the context for each accepted
	// connection. Requests on that connection inherit it.
	ConnContext func(ctx context.Context, conn net.Conn) context.Context

	// ShutdownTimeout is the maximum time to wait for in-flight
	// requests to complete during graceful shutdown. Defaults to
	// DefaultShutdownTimeout if zero.
	ShutdownTimeout time.Duration

	// Logger is the structured logger. Required.
	Logger *slog.Logger
}

// NewHTTPServer creates a server that will listen on the configured
// TCP address. Call Serve to start accepting connections.
func NewHTTPServer(config HTTPServerConfig) *HTTPServer {
	if config.Address == "" {
		panic("service.HTTPServer: Address is required")
	}
	if config.Handler == nil {
		panic("service.HTTPServer: Handler is required")
	}
	if config.Logger == nil {
		panic("service.HTTPServer: Logger is required")
	}

	timeout := config.ShutdownTimeout
	if timeout == 0 {
		timeout = DefaultShutdownTimeout
	}

	return &HTTPServer{
		address:         config.Address,
		handler:         config.Handler,
		connContext:     config.ConnContext,
		logger:          config.Logger,
		shutdownTimeout: timeout,
		ready:           make(chan struct{}),
	}
}

// Ready is closed once the listener is bound. It stays open when Serve
// fails to bind.
func (s *HTTPServer) Ready() <-chan struct{} {
	return s.ready
}

// Addr is the bound address, with the kernel-chosen port when the
// configured port is 0. Valid once Ready is closed.
func (s *HTTPServer) Addr() net.Addr {
	return s.addr
}

// Serve binds the listener and serves until ctx is cancelled. It then
// stops accepting connections and lets in-flight XRPC calls finish
// within the shutdown timeout. A bind failure is returned before Ready
// closes; a drain that overruns the timeout is returned as an error.
func (s *HTTPServer) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.address, err)
	}
	s.addr = listener.Addr()
	close(s.ready)

	server := s.newServer()
	s.logger.Info("http server listening", "address", s.addr.String())

	failed := make(chan error, 1)
	go func() {
		if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
	}()

	select {
	case err := <-failed:
		return fmt.Errorf("serving on %s: %w", s.addr, err)
	case <-ctx.Done():
	}
	return s.drain(server)
}

// newServer applies the per-connection hook and the slow-client limits.
// Request bodies are capped by the router well below what ReadTimeout
// lets a client send.
func (s *HTTPServer) newServer() *http.Server {
	return &http.Server{
		Handler:           s.handler,
		ConnContext:       s.connContext,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func (s *HTTPServer) drain(server *http.Server) error {
	s.logger.Info("http server draining", "timeout", s.shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("http server drain incomplete", "error", err)
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}
