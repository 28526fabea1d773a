// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package store

import (
	"context"

	"github.com/rs/zerolog"
)

// Open creates the configured backend.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Open(ctx context.Context, cfg *Config, logger zerolog.Logger) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case BackendPostgres:
		return OpenPostgres(ctx, cfg.Postgres, cfg.Retention, logger)
	case BackendBadger:
		return OpenBadger(cfg.Badger, cfg.Retention, logger)
	default:
		return NewMemoryStore(), nil
	}
}
