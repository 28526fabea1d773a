// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/tomtom215/cuecard/internal/models"
)

// MemoryStore keeps history and profiles in process. Used for tests and
// for running without durable storage.
type MemoryStore struct {
	mu       sync.RWMutex
	history  map[string]*models.HistoryItem
	profiles map[string]*models.HostProfile
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		history:  make(map[string]*models.HistoryItem),
		profiles: make(map[string]*models.HostProfile),
	}
}

// AppendHistory stores copies of items under new IDs.
func (s *MemoryStore) AppendHistory(_ context.Context, items []models.HistoryItem) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, len(items))
	for i := range items {
		item := items[i].Clone()
		item.ID = uuid.New().String()
		s.history[item.ID] = &item
		ids[i] = item.ID
	}
	return ids, nil
}

// RecentHistory returns the newest items of a show first.
func (s *MemoryStore) RecentHistory(_ context.Context, showID string, limit int) ([]models.HistoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.HistoryItem
	for _, item := range s.history {
		if item.ShowID == showID {
			out = append(out, item.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MarkHistoryUsed sets the used flag.
func (s *MemoryStore) MarkHistoryUsed(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.history[id]
	if !ok {
		return ErrNotFound
	}
	item.WasUsed = true
	return nil
}

// LoadProfile returns a copy of the stored profile.
func (s *MemoryStore) LoadProfile(_ context.Context, hostID string) (*models.HostProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[hostID]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

// SaveProfile stores a copy of the profile.
func (s *MemoryStore) SaveProfile(_ context.Context, profile *models.HostProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.HostID] = profile.Clone()
	return nil
}

// HistoryLen returns the number of stored history items.
func (s *MemoryStore) HistoryLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
