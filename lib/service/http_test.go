// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/rpds/lib/testutil"
)

type connKey struct{}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startServer runs Serve in the background and waits for readiness.
// The returned channel yields Serve's result.
func startServer(t *testing.T, ctx context.Context, server *HTTPServer) <-chan error {
	t.Helper()
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- server.Serve(ctx)
	}()
	testutil.RequireClosed(t, server.Ready(), 5*time.Second, "server ready")
	return serveDone
}

func TestHTTPServerLifecycle(t *testing.T) {
	handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
		fmt.Fprintf(writer, "ok")
	})

	server := NewHTTPServer(HTTPServerConfig{
		Address:         "127.0.0.1:0", // OS-assigned port
		Handler:         handler,
		ShutdownTimeout: 2 * time.Second,
		Logger:          discardLogger(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serveDone := startServer(t, ctx, server)

	// Verify we can reach the server.
	address := server.Addr().String()
	response, err := http.Get("http://" + address + "/test")
	if err != nil {
		t.Fatalf("GET /test: %v", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		t.Errorf("GET /test status = %d, want 200", response.StatusCode)
	}
	responseBody, _ := io.ReadAll(response.Body)
	if string(responseBody) != "ok" {
		t.Errorf("GET /test body = %q, want %q", responseBody, "ok")
	}

	// Cancel the context to trigger shutdown.
	cancel()

	if err := testutil.RequireReceive(t, serveDone, 5*time.Second, "waiting for Serve to return"); err != nil {
		t.Errorf("Serve() = %v, want nil", err)
	}
}

func TestHTTPServerConnContext(t *testing.T) {
	handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		remote, _ := request.Context().Value(connKey{}).(string)
		fmt.Fprint(writer, remote)
	})

	server := NewHTTPServer(HTTPServerConfig{
		Address: "127.0.0.1:0",
		Handler: handler,
		ConnContext: func(ctx context.Context, conn net.Conn) context.Context {
			return context.WithValue(ctx, connKey{}, conn.RemoteAddr().String())
		},
		Logger: discardLogger(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serveDone := startServer(t, ctx, server)

	// Dial explicitly so the client's local address is known.
	conn, err := net.Dial("tcp", server.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	fmt.Fprintf(conn, "GET / HTTP/1.1\r\nHost: test\r\nConnection: close\r\n\r\n")
	raw, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("reading response: %v", err)
	}
	if want := conn.LocalAddr().String(); !strings.HasSuffix(string(raw), want) {
		t.Errorf("response %q does not end with the client address %s", raw, want)
	}

	cancel()
	if err := testutil.RequireReceive(t, serveDone, 5*time.Second, "waiting for Serve to return"); err != nil {
		t.Errorf("Serve() = %v, want nil", err)
	}
}

func TestHTTPServerDrainsInFlightRequests(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		close(started)
		<-release
		fmt.Fprint(writer, "drained")
	})

	server := NewHTTPServer(HTTPServerConfig{
		Address:         "127.0.0.1:0",
		Handler:         handler,
		ShutdownTimeout: 5 * time.Second,
		Logger:          discardLogger(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serveDone := startServer(t, ctx, server)

	type result struct {
		body string
		err  error
	}
	responses := make(chan result, 1)
	go func() {
		response, err := http.Get("http://" + server.Addr().String() + "/")
		if err != nil {
			responses <- result{err: err}
			return
		}
		defer response.Body.Close()
		body, err := io.ReadAll(response.Body)
		responses <- result{body: string(body), err: err}
	}()

	testutil.RequireClosed(t, started, 5*time.Second, "request reached the handler")
	cancel()
	close(release)

	got := testutil.RequireReceive(t, responses, 5*time.Second, "in-flight response")
	if got.err != nil || got.body != "drained" {
		t.Errorf("in-flight request = %q, %v; want drained", got.body, got.err)
	}
	if err := testutil.RequireReceive(t, serveDone, 5*time.Second, "waiting for Serve to return"); err != nil {
		t.Errorf("Serve() = %v, want nil", err)
	}
}

func TestHTTPServerDrainTimeout(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		close(started)
		<-release
	})

	server := NewHTTPServer(HTTPServerConfig{
		Address:         "127.0.0.1:0",
		Handler:         handler,
		ShutdownTimeout: 50 * time.Millisecond,
		Logger:          discardLogger(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serveDone := startServer(t, ctx, server)

	clientDone := make(chan struct{})
	go func() {
		defer close(clientDone)
		response, err := http.Get("http://" + server.Addr().String() + "/")
		if err == nil {
			response.Body.Close()
		}
	}()

	testutil.RequireClosed(t, started, 5*time.Second, "request reached the handler")
	cancel()

	err := testutil.RequireReceive(t, serveDone, 5*time.Second, "waiting for Serve to return")
	close(release)
	if err == nil || !strings.Contains(err.Error(), "shutdown") {
		t.Errorf("Serve() = %v, want a shutdown error", err)
	}
	testutil.RequireClosed(t, clientDone, 5*time.Second, "client finished")
}

func TestHTTPServerBindFailure(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer occupied.Close()

	server := NewHTTPServer(HTTPServerConfig{
		Address: occupied.Addr().String(),
		Handler: http.NotFoundHandler(),
		Logger:  discardLogger(),
	})

	if err := server.Serve(context.Background()); err == nil {
		t.Fatal("Serve on an occupied address returned nil")
	}
	select {
	case <-server.Ready():
		t.Error("Ready closed although binding failed")
	default:
	}
}

func TestHTTPServerDefaultShutdownTimeout(t *testing.T) {
	server := NewHTTPServer(HTTPServerConfig{
		Address: "127.0.0.1:0",
		Handler: http.NotFoundHandler(),
		Logger:  discardLogger(),
	})
	if server.shutdownTimeout != DefaultShutdownTimeout {
		t.Errorf("shutdownTimeout = %s, want %s", server.shutdownTimeout, DefaultShutdownTimeout)
	}
}

func TestHTTPServerPanicsOnMissingConfig(t *testing.T) {
	logger := discardLogger()
	handler := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	tests := []struct {
		name   string
		config HTTPServerConfig
	}{
		{
			name:   "missing_address",
			config: HTTPServerConfig{Handler: handler, Logger: logger},
		},
		{
			name:   "missing_handler",
			config: HTTPServerConfig{Address: ":0", Logger: logger},
		},
		{
			name:   "missing_logger",
			config: HTTPServerConfig{Address: ":0", Handler: handler},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Error("NewHTTPServer did not panic")
				}
			}()
			NewHTTPServer(tt.config)
		})
	}
}
