// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package store

import (
	"fmt"
	"time"
)

// Supported backends.
const (
	BackendMemory   = "memory"
	BackendBadger   = "badger"
	BackendPostgres = "postgres"
)

// Config selects and tunes the history and profile backend.
type Config struct {
	Backend string

	// Retention bounds how long history rows are kept. Zero keeps them forever.
	Retention time.Duration

	Badger   BadgerConfig
	Postgres PostgresConfig
}

// BadgerConfig configures the embedded store.
type BadgerConfig struct {
	Path        string
	InMemory    bool
	SyncWrites  bool
	Compression bool
	GCInterval  time.Duration
	GCRatio     float64
}

// PostgresConfig configures the Postgres store.
type PostgresConfig struct {
	DSN        string
	MaxConns   int32
	Dimensions int
}

// DefaultConfig returns an embedded Badger store with 30 days of retention.
func DefaultConfig() Config {
	return Config{
		Backend:   BackendBadger,
		Retention: 30 * 24 * time.Hour,
		Badger: BadgerConfig{
			Path:        "/data/cuecard",
			SyncWrites:  true,
			Compression: true,
			GCInterval:  10 * time.Minute,
			GCRatio:     0.5,
		},
		Postgres: PostgresConfig{
			MaxConns:   10,
			Dimensions: 1536,
		},
	}
}

// Validate checks the configuration of the selected backend.
func (c *Config) Validate() error {
	if c.Retention < 0 {
		return fmt.Errorf("store: retention must not be negative")
	}
	switch c.Backend {
	case BackendMemory:
		return nil
	case BackendBadger:
		if c.Badger.Path == "" && !c.Badger.InMemory {
			return fmt.Errorf("store: badger path is required")
		}
		if c.Badger.GCRatio <= 0 || c.Badger.GCRatio >= 1 {
			return fmt.Errorf("store: badger gc ratio must be within (0,1), got %v", c.Badger.GCRatio)
		}
		if c.Badger.GCInterval <= 0 {
			return fmt.Errorf("store: badger gc interval must be positive")
		}
		return nil
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("store: postgres dsn is required")
		}
		if c.Postgres.Dimensions <= 0 {
			return fmt.Errorf("store: embedding dimensions must be positive")
		}
		return nil
	default:
		return fmt.Errorf("store: unknown backend %q", c.Backend)
	}
}
