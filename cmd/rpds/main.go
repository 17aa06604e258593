// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// rpds is an AT Protocol personal data server. It serves a landing
// page, robots.txt, Prometheus metrics, and the com.atproto XRPC
// methods on one TCP listener.
//
// Configuration is a YAML file named by --config or RPDS_CONFIG. A .env
// file in the working directory, if present, is loaded into the
// environment first, so RPDS_CONFIG and any ${VAR} referenced by the
// configuration may come from it. SIGINT or SIGTERM starts a graceful
// shutdown that drains in-flight requests for at most shutdown_timeout.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/rpds/lib/config"
	"github.com/bureau-foundation/rpds/lib/service"
	"github.com/bureau-foundation/rpds/lib/version"
	"github.com/bureau-foundation/rpds/lib/xrpc"
	"github.com/bureau-foundation/rpds/pds"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		configPath  string
		listen      string
		dotenvPath  string
		showVersion bool
	)

	flagSet := pflag.NewFlagSet("rpds", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to the YAML configuration (default: $"+config.ConfigEnvVar+")")
	flagSet.StringVar(&listen, "listen", "", "override the configured listen address")
	flagSet.StringVar(&dotenvPath, "env-file", ".env", "dotenv file loaded into the environment if present")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if showVersion {
		fmt.Printf("rpds %s\n", version.Full())
		return nil
	}

	cfg, err := loadConfig(configPath, dotenvPath, listen)
	if err != nil {
		return err
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, level)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, logger)
}

// loadConfig applies the dotenv file, loads the configuration from
// path (or RPDS_CONFIG when path is empty), applies the --listen
// override, and validates the result.
func loadConfig(path, dotenvPath, listen string) (*config.Config, error) {
	if err := config.LoadDotenv(dotenvPath); err != nil {
		return nil, err
	}

	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if listen != "" {
		cfg.Listen = listen
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger writes human-readable text to a terminal and JSON
// everywhere else.
func newLogger(output *os.File, level slog.Level) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if term.IsTerminal(int(output.Fd())) {
		handler = slog.NewTextHandler(output, options)
	} else {
		handler = slog.NewJSONHandler(output, options)
	}
	return slog.New(handler)
}

// serve builds the server state and runs the listener until ctx is
// cancelled. A bind failure returns immediately.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	state, err := pds.NewState(cfg, logger)
	if err != nil {
		return err
	}
	defer state.Close()

	server, err := pds.NewServer(pds.ServerConfig{
		State:  state,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	logger.Info("starting rpds",
		"version", version.Info(),
		"environment", string(cfg.Environment),
		"methods", len(server.Methods()),
	)

	httpServer := service.NewHTTPServer(service.HTTPServerConfig{
		Address:         cfg.Listen,
		Handler:         server,
		ConnContext:     xrpc.ConnContext,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Logger:          logger,
	})
	return httpServer.Serve(ctx)
}
