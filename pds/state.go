// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pds

import (
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/rpds/lib/config"
	"github.com/bureau-foundation/rpds/lib/database"
	"github.com/bureau-foundation/rpds/lib/password"
)

// State is everything the server builds once at startup and shares
// across requests. It is constructed explicitly and passed to
// NewServer; nothing in this package reads process-wide globals.
type State struct {
	Config   *config.Config
	Database *database.Database
	Hasher   *password.Hasher
}

// NewState opens the database and builds the password hasher from a
// validated configuration. Invalid hasher parameters are a startup
// error, reported before any request is served.
func NewState(cfg *config.Config, logger *slog.Logger) (*State, error) {
	if logger == nil {
		panic("pds.NewState: logger is required")
	}

	hasher, err := password.NewHasher(password.Config{
		Params: password.Params{
			MemoryCost:  cfg.Password.MemoryCost,
			TimeCost:    cfg.Password.TimeCost,
			Parallelism: cfg.Password.Parallelism,
		},
		Secret: []byte(cfg.Password.Secret),
	})
	if err != nil {
		return nil, fmt.Errorf("password hasher: %w", err)
	}

	db, err := database.Open(database.Config{
		Path:     cfg.Database.Path,
		PoolSize: cfg.Database.PoolSize,
		Logger:   logger.With("component", "database"),
	})
	if err != nil {
		return nil, err
	}

	return &State{
		Config:   cfg,
		Database: db,
		Hasher:   hasher,
	}, nil
}

// Close releases the database.
func (s *State) Close() error {
	if s.Database == nil {
		return nil
	}
	return s.Database.Close()
}
