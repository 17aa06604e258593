// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package database provides the server's SQLite handle.
//
// [Open] builds a fixed-size zombiezen.com/go/sqlite pool. Every
// connection gets the same pragmas on first use:
//
//   - journal_mode=WAL: readers never block the single writer.
//   - synchronous=NORMAL: transactions survive process crashes.
//   - busy_timeout=5000: wait up to 5 seconds for the write lock.
//   - foreign_keys=ON: account data relies on referential integrity.
//   - temp_store=MEMORY.
//
// Callers [Database.Take] a connection, write SQL with sqlitex, and
// [Database.Put] it back. [Database.Ping] backs the health route.
package database
