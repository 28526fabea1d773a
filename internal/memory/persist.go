// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/cuecard/internal/metrics"
	"github.com/tomtom215/cuecard/internal/models"
)

// Flush writes items that have no ID yet to the history store and assigns
// the returned IDs. The cache is not locked while the store is written, so
// ranking calls never wait on a flush. Returns the number of items written.
func (m *ContextMemory) Flush(ctx context.Context) (int, error) {
	if !m.persistenceEnabled() {
		return 0, nil
	}

	m.flushMu.Lock()
	defer m.flushMu.Unlock()

	m.mu.RLock()
	var pending []*models.HistoryItem
	var rows []models.HistoryItem
	for _, item := range m.items {
		if !item.Persisted() {
			pending = append(pending, item)
			rows = append(rows, item.Clone())
		}
	}
	showID := m.showID
	m.mu.RUnlock()

	if len(rows) == 0 {
		return 0, nil
	}

	ids, err := m.history.AppendHistory(ctx, rows)
	metrics.RecordMemoryFlush(len(rows), err)
	if err != nil {
		return 0, fmt.Errorf("persist %d questions: %w", len(rows), err)
	}

	// Items marked used while the write was in flight still carry the old flag in the store.
	var usedSince []string
	m.mu.Lock()
	for i := 0; i < len(pending) && i < len(ids); i++ {
		pending[i].ID = ids[i]
		if pending[i].WasUsed && !rows[i].WasUsed {
			usedSince = append(usedSince, ids[i])
		}
	}
	m.mu.Unlock()

	for _, id := range usedSince {
		if err := m.history.MarkHistoryUsed(ctx, id); err != nil {
			m.logger.Warn().Err(err).Str("id", id).Msg("Failed to sync used flag after flush")
		}
	}

	m.logger.Info().Str("show_id", showID).Int("questions", len(rows)).Msg("Persisted questions to history store")
	return len(rows), nil
}

// PersistenceInterval is how often the background flush should run.
func (m *ContextMemory) PersistenceInterval() time.Duration {
	return m.cfg.PersistenceInterval
}

// Stopped is closed once StopAndFlush has been called.
func (m *ContextMemory) Stopped() <-chan struct{} {
	return m.stopped
}

// StopAndFlush signals the background flush to stop and runs a final
// synchronous flush.
func (m *ContextMemory) StopAndFlush(ctx context.Context) error {
	m.stopOnce.Do(func() { close(m.stopped) })

	n, err := m.Flush(ctx)
	if err != nil {
		return fmt.Errorf("final flush: %w", err)
	}
	m.logger.Info().Str("show_id", m.ShowID()).Int("questions", n).Msg("Final persistence complete")
	return nil
}
