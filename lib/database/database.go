// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package database

import (
	"context"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// DefaultPoolSize is used when Config.PoolSize is zero or negative.
const DefaultPoolSize = 4

// Config holds the parameters for opening the database.
type Config struct {
	// Path is the filesystem path to the SQLite database file. The
	// parent directory must exist. The file is created if it does not
	// exist.
	Path string

	// PoolSize is the number of pooled connections. SQLite serializes
	// writes regardless; extra connections serve concurrent reads.
	PoolSize int

	// Logger receives open/close messages. If nil, a no-op logger is
	// used.
	Logger *slog.Logger

	// OnConnect is called once per connection after the standard
	// pragmas. A Backend uses it to create its tables or register SQL
	// functions. If it returns an error, the connection is discarded and
	// the error is returned from Take.
	OnConnect func(conn *sqlite.Conn) error
}

// Database is the process-wide SQLite handle. It is created once at
// startup, shared by every request, and closed at shutdown.
//
// Database is safe for concurrent use. Individual connections are not:
// each goroutine must Take its own and Put it back.
type Database struct {
	pool   *sqlitex.Pool
	logger *slog.Logger
	path   string
}

// Open creates the connection pool. Connections are initialized
// lazily on first Take, so most problems with the file surface from
// the first Take or Ping.
func Open(cfg Config) (*Database, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database: Path is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}

	pool, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize: poolSize,
		PrepareConn: func(conn *sqlite.Conn) error {
			return prepareConnection(conn, cfg.OnConnect)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("database: opening %s: %w", cfg.Path, err)
	}

	logger.Info("database opened",
		"path", cfg.Path,
		"pool_size", poolSize,
	)

	return &Database{
		pool:   pool,
		logger: logger,
		path:   cfg.Path,
	}, nil
}

// Take borrows a connection. Blocks until one is available or ctx is
// cancelled. The caller must Put it back, typically via defer:
//
//	conn, err := db.Take(ctx)
//	if err != nil {
//	    return err
//	}
//	defer db.Put(conn)
func (d *Database) Take(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := d.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("database: take: %w", err)
	}
	return conn, nil
}

// Put returns a connection to the pool. Safe to call with nil.
func (d *Database) Put(conn *sqlite.Conn) {
	d.pool.Put(conn)
}

// Ping takes a connection and runs a trivial query on it.
func (d *Database) Ping(ctx context.Context) error {
	conn, err := d.Take(ctx)
	if err != nil {
		return err
	}
	defer d.Put(conn)

	var one int
	err = sqlitex.ExecuteTransient(conn, "SELECT 1", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			one = stmt.ColumnInt(0)
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("database: ping: %w", err)
	}
	if one != 1 {
		return fmt.Errorf("database: ping: SELECT 1 returned %d", one)
	}
	return nil
}

// Close closes every connection. Blocks until borrowed connections
// are returned. After Close, Take and Ping fail.
func (d *Database) Close() error {
	if err := d.pool.Close(); err != nil {
		d.logger.Error("database close error",
			"path", d.path,
			"error", err,
		)
		return fmt.Errorf("database: closing %s: %w", d.path, err)
	}
	d.logger.Info("database closed", "path", d.path)
	return nil
}

func prepareConnection(conn *sqlite.Conn, onConnect func(*sqlite.Conn) error) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("database: %s: %w", pragma, err)
		}
	}

	if onConnect != nil {
		if err := onConnect(conn); err != nil {
			return fmt.Errorf("database: OnConnect: %w", err)
		}
	}

	return nil
}
