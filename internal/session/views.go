// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package session

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/cuecard/internal/hostprofile"
	"github.com/tomtom215/cuecard/internal/memory"
	"github.com/tomtom215/cuecard/internal/models"
	"github.com/tomtom215/cuecard/internal/store"
)

// MemoryStats returns the show's context memory statistics.
func (m *Manager) MemoryStats(showID string) (memory.Stats, error) {
	show, err := m.lookup(showID)
	if err != nil {
		return memory.Stats{}, err
	}
	defer show.mu.Unlock()
	return show.memory.GetCacheStats(), nil
}

// RecentQuestions returns the show's questions from the last d.
func (m *Manager) RecentQuestions(showID string, d time.Duration) ([]models.HistoryItem, error) {
	show, err := m.lookup(showID)
	if err != nil {
		return nil, err
	}
	defer show.mu.Unlock()
	return show.memory.GetRecentQuestions(d), nil
}

// History returns every question in the show's memory, oldest first.
func (m *Manager) History(showID string) ([]models.HistoryItem, error) {
	show, err := m.lookup(showID)
	if err != nil {
		return nil, err
	}
	defer show.mu.Unlock()
	return show.memory.GetShowHistory(), nil
}

// ProfileView is a host profile with its summary. Stats is only set while
// the host has an active show.
type ProfileView struct {
	Profile *models.HostProfile `json:"profile"`
	Stats   *hostprofile.Stats  `json:"stats,omitempty"`
	Active  bool                `json:"active"`
}

// HostProfile returns the live profile of a host with an active show, or the
// stored profile otherwise. store.ErrNotFound is returned for unknown hosts.
func (m *Manager) HostProfile(ctx context.Context, hostID string) (*ProfileView, error) {
	m.mu.RLock()
	showID, active := m.hosts[hostID]
	m.mu.RUnlock()

	if active {
		if show, err := m.lookup(showID); err == nil {
			defer show.mu.Unlock()
			view := &ProfileView{Profile: show.profile.Profile(), Active: true}
			if stats, ok := show.profile.GetProfileStats(); ok {
				view.Stats = &stats
			}
			return view, nil
		}
	}

	if m.profiles == nil {
		return nil, fmt.Errorf("%w: host %s", store.ErrNotFound, hostID)
	}
	profile, err := m.profiles.LoadProfile(ctx, hostID)
	if err != nil {
		return nil, err
	}
	profile.EnsureMaps()
	return &ProfileView{Profile: profile}, nil
}
