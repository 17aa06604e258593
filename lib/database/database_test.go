// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package database_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/rpds/lib/database"
)

func TestOpenAppliesPragmas(t *testing.T) {
	db := openTestDatabase(t, nil)

	conn, err := db.Take(context.Background())
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	defer db.Put(conn)

	pragmas := []struct {
		name string
		want string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"},
		{"foreign_keys", "1"},
		{"busy_timeout", "5000"},
	}
	for _, pragma := range pragmas {
		var got string
		err := sqlitex.ExecuteTransient(conn, "PRAGMA "+pragma.name, &sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				got = stmt.ColumnText(0)
				return nil
			},
		})
		if err != nil {
			t.Fatalf("PRAGMA %s: %v", pragma.name, err)
		}
		if got != pragma.want {
			t.Errorf("%s = %q, want %q", pragma.name, got, pragma.want)
		}
	}
}

func TestOnConnect(t *testing.T) {
	var called bool
	db := openTestDatabase(t, func(conn *sqlite.Conn) error {
		called = true
		return sqlitex.ExecuteScript(conn, `
			CREATE TABLE IF NOT EXISTS accounts (
				did TEXT PRIMARY KEY,
				handle TEXT NOT NULL
			);
		`, nil)
	})

	conn, err := db.Take(context.Background())
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	defer db.Put(conn)

	if !called {
		t.Error("OnConnect was not called")
	}

	err = sqlitex.Execute(conn, "INSERT INTO accounts (did, handle) VALUES (?, ?)", &sqlitex.ExecOptions{
		Args: []any{"did:plc:abc123", "alice.example.com"},
	})
	if err != nil {
		t.Fatalf("INSERT: %v", err)
	}
}

func TestOnConnectError(t *testing.T) {
	db := openTestDatabase(t, func(*sqlite.Conn) error {
		return fmt.Errorf("schema unavailable")
	})

	if err := db.Ping(context.Background()); err == nil {
		t.Fatal("Ping succeeded although OnConnect failed")
	}
}

func TestPing(t *testing.T) {
	db := openTestDatabase(t, nil)
	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestPingAfterClose(t *testing.T) {
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "closed.db")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := db.Ping(context.Background()); err == nil {
		t.Fatal("Ping succeeded on a closed database")
	}
}

func TestConcurrentPings(t *testing.T) {
	db := openTestDatabase(t, nil)

	const goroutineCount = 8
	var waitGroup sync.WaitGroup
	errs := make(chan error, goroutineCount)

	for range goroutineCount {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			if err := db.Ping(context.Background()); err != nil {
				errs <- err
			}
		}()
	}

	waitGroup.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestEmptyPathRejected(t *testing.T) {
	_, err := database.Open(database.Config{})
	if err == nil {
		t.Fatal("expected error for empty Path")
	}
}

func TestContextCancellation(t *testing.T) {
	db, err := database.Open(database.Config{
		Path:     filepath.Join(t.TempDir(), "cancel.db"),
		PoolSize: 1,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	conn, err := db.Take(context.Background())
	if err != nil {
		t.Fatalf("Take: %v", err)
	}

	// The pool has size 1, so a second Take with a cancelled context
	// must fail.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := db.Ping(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}

	db.Put(conn)
}

// openTestDatabase creates a database backed by a temporary file. It
// is closed automatically when the test completes.
func openTestDatabase(t *testing.T, onConnect func(*sqlite.Conn) error) *database.Database {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:      filepath.Join(t.TempDir(), "test.db"),
		PoolSize:  4,
		OnConnect: onConnect,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return db
}
