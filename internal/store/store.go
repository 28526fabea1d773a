// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package store

import (
	"context"
	"errors"

	"github.com/tomtom215/cuecard/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("store: not found")

// HistoryStore is the append-only question history used by context memory.
type HistoryStore interface {
	// AppendHistory writes items and returns their assigned IDs in input order.
	AppendHistory(ctx context.Context, items []models.HistoryItem) ([]string, error)

	// RecentHistory returns at most limit items for a show, newest first.
	RecentHistory(ctx context.Context, showID string, limit int) ([]models.HistoryItem, error)

	// MarkHistoryUsed sets the used flag of a persisted item.
	MarkHistoryUsed(ctx context.Context, id string) error
}

// ProfileStore keeps one host profile per host ID.
type ProfileStore interface {
	// LoadProfile returns ErrNotFound for unknown hosts.
	LoadProfile(ctx context.Context, hostID string) (*models.HostProfile, error)
	SaveProfile(ctx context.Context, profile *models.HostProfile) error
}

// Store is a backend providing both contracts.
type Store interface {
	HistoryStore
	ProfileStore
	Ping(ctx context.Context) error
	Close() error
}
