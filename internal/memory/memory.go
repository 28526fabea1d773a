// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cuecard/internal/embedding"
	"github.com/tomtom215/cuecard/internal/metrics"
	"github.com/tomtom215/cuecard/internal/models"
	"github.com/tomtom215/cuecard/internal/store"
)

// ErrNotInitialized is returned by operations that need a show.
var ErrNotInitialized = errors.New("memory: not initialized for a show")

// ContextMemory is the bounded, time ordered history of questions surfaced
// during one show. It is safe for concurrent use.
type ContextMemory struct {
	cfg     Config
	gateway embedding.Gateway
	history store.HistoryStore
	logger  zerolog.Logger
	now     func() time.Time

	mu        sync.RWMutex
	showID    string
	items     []*models.HistoryItem // ascending by Timestamp
	createdAt time.Time

	// flushMu serializes flushes so an item is never written twice.
	flushMu sync.Mutex

	stopOnce sync.Once
	stopped  chan struct{}
}

// Option customizes a ContextMemory.
type Option func(*ContextMemory)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(m *ContextMemory) { m.now = now }
}

// New creates an empty context memory. history may be nil, in which case
// nothing is loaded or persisted.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(cfg Config, gateway embedding.Gateway, history store.HistoryStore, logger zerolog.Logger, opts ...Option) (*ContextMemory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if gateway == nil {
		return nil, fmt.Errorf("memory: embedding gateway is required")
	}

	m := &ContextMemory{
		cfg:     cfg,
		gateway: gateway,
		history: history,
		logger:  logger.With().Str("component", "context_memory").Logger(),
		now:     time.Now,
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.createdAt = m.now()
	return m, nil
}

// Config returns the memory configuration.
func (m *ContextMemory) Config() Config {
	return m.cfg
}

// Enabled reports whether the memory takes part in ranking.
func (m *ContextMemory) Enabled() bool {
	return m.cfg.Enabled
}

// ShowID returns the show the memory is initialized for.
func (m *ContextMemory) ShowID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.showID
}

// Initialize resets the memory for showID and loads the most recent history
// from the store. Load failures are logged and leave the memory empty.
func (m *ContextMemory) Initialize(ctx context.Context, showID string) error {
	if showID == "" {
		return fmt.Errorf("memory: show id is required")
	}

	m.mu.Lock()
	m.showID = showID
	m.items = make([]*models.HistoryItem, 0, m.cfg.MaxCacheSize)
	m.createdAt = m.now()
	m.mu.Unlock()

	if m.persistenceEnabled() {
		if err := m.load(ctx, showID); err != nil {
			m.logger.Error().Err(err).Str("show_id", showID).Msg("Failed to load question history")
		}
	}

	count := m.Len()
	metrics.MemoryCachedQuestions.WithLabelValues(showID).Set(float64(count))
	m.logger.Info().Str("show_id", showID).Int("historical_questions", count).Msg("Context memory initialized")
	return nil
}

func (m *ContextMemory) load(ctx context.Context, showID string) error {
	rows, err := m.history.RecentHistory(ctx, showID, m.cfg.MaxCacheSize)
	if err != nil {
		return fmt.Errorf("load recent history: %w", err)
	}

	items := make([]*models.HistoryItem, 0, len(rows))
	// rows arrive newest first
	for i := len(rows) - 1; i >= 0; i-- {
		item := rows[i]
		items = append(items, &item)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.showID != showID {
		return nil
	}
	m.items = items
	return nil
}

// AddQuestion embeds the candidate and appends it to the memory, evicting the
// oldest item when the cache is full. generatorID overrides the candidate's
// source model when non-empty.
func (m *ContextMemory) AddQuestion(ctx context.Context, c *models.Candidate, generatorID string) error {
	if !m.cfg.Enabled {
		return nil
	}
	vec, err := m.gateway.Embed(ctx, c.Text)
	if err != nil {
		return fmt.Errorf("embed question: %w", err)
	}
	return m.AddEmbedded(c, generatorID, vec)
}

// AddQuestions commits several candidates with one batched embedding call.
func (m *ContextMemory) AddQuestions(ctx context.Context, candidates []models.Candidate) error {
	if !m.cfg.Enabled || len(candidates) == 0 {
		return nil
	}
	texts := make([]string, len(candidates))
	for i := range candidates {
		texts[i] = candidates[i].Text
	}
	vecs, err := m.gateway.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed questions: %w", err)
	}
	for i := range candidates {
		if err := m.AddEmbedded(&candidates[i], "", vecs[i]); err != nil {
			return err
		}
	}
	return nil
}

// AddEmbedded appends a candidate whose embedding is already known.
func (m *ContextMemory) AddEmbedded(c *models.Candidate, generatorID string, vec []float32) error {
	if !m.cfg.Enabled {
		return nil
	}
	source := generatorID
	if source == "" {
		source = c.SourceModel
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.showID == "" {
		return ErrNotInitialized
	}

	item := &models.HistoryItem{
		ShowID:      m.showID,
		Text:        c.Text,
		Embedding:   vec,
		Timestamp:   m.now(),
		Confidence:  c.ConfidenceOrDefault(),
		SourceModel: source,
	}
	if c.Topic != "" {
		item.TopicTags = []string{c.Topic}
	}
	m.items = append(m.items, item)

	// FIFO eviction
	for len(m.items) > m.cfg.MaxCacheSize {
		m.items[0] = nil
		m.items = m.items[1:]
		m.logger.Debug().Str("show_id", m.showID).Msg("Evicted oldest question")
	}

	metrics.MemoryCachedQuestions.WithLabelValues(m.showID).Set(float64(len(m.items)))
	return nil
}

// MarkUsed flips the used flag of the first item with the given text and
// updates the store when the item is already persisted. It reports whether
// an item matched.
func (m *ContextMemory) MarkUsed(ctx context.Context, text string) (bool, error) {
	m.mu.Lock()
	var id string
	found := false
	for _, item := range m.items {
		if item.Text == text {
			item.WasUsed = true
			id = item.ID
			found = true
			break
		}
	}
	m.mu.Unlock()

	if !found {
		return false, nil
	}
	if id != "" && m.persistenceEnabled() {
		if err := m.history.MarkHistoryUsed(ctx, id); err != nil {
			return true, fmt.Errorf("mark history used: %w", err)
		}
	}
	m.logger.Debug().Str("text", truncate(text, 50)).Msg("Marked question as used")
	return true, nil
}

// GetShowHistory returns a copy of every item, oldest first.
func (m *ContextMemory) GetShowHistory() []models.HistoryItem {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.HistoryItem, len(m.items))
	for i, item := range m.items {
		out[i] = item.Clone()
	}
	return out
}

// GetRecentQuestions returns items created in the last d, oldest first.
func (m *ContextMemory) GetRecentQuestions(d time.Duration) []models.HistoryItem {
	cutoff := m.now().Add(-d)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.HistoryItem
	for _, item := range m.items {
		if !item.Timestamp.Before(cutoff) {
			out = append(out, item.Clone())
		}
	}
	return out
}

// ClearCache drops every item. The show ID is kept.
func (m *ContextMemory) ClearCache() {
	m.mu.Lock()
	n := len(m.items)
	m.items = nil
	showID := m.showID
	m.mu.Unlock()

	if showID != "" {
		metrics.MemoryCachedQuestions.DeleteLabelValues(showID)
	}
	m.logger.Info().Str("show_id", showID).Int("questions", n).Msg("Context memory cleared")
}

// Len returns the number of cached items.
func (m *ContextMemory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Stats summarizes the cache.
type Stats struct {
	TotalQuestions   int        `json:"total_questions"`
	RecentQuestions  int        `json:"recent_questions"`
	UsedQuestions    int        `json:"used_questions"`
	PendingPersist   int        `json:"pending_persist"`
	ShowID           string     `json:"show_id"`
	CacheAgeMinutes  float64    `json:"cache_age_minutes"`
	OldestQuestionAt *time.Time `json:"oldest_question_at,omitempty"`
	NewestQuestionAt *time.Time `json:"newest_question_at,omitempty"`
}

// GetCacheStats returns cache statistics. Recent means within RecentWindow.
func (m *ContextMemory) GetCacheStats() Stats {
	now := m.now()

	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Stats{
		TotalQuestions:  len(m.items),
		ShowID:          m.showID,
		CacheAgeMinutes: now.Sub(m.createdAt).Minutes(),
	}
	for _, item := range m.items {
		if item.AgeMinutes(now) < m.cfg.RecentWindow.Minutes() {
			s.RecentQuestions++
		}
		if item.WasUsed {
			s.UsedQuestions++
		}
		if !item.Persisted() {
			s.PendingPersist++
		}
	}
	if n := len(m.items); n > 0 {
		oldest, newest := m.items[0].Timestamp, m.items[n-1].Timestamp
		s.OldestQuestionAt = &oldest
		s.NewestQuestionAt = &newest
	}
	return s
}

func (m *ContextMemory) persistenceEnabled() bool {
	return m.cfg.PersistToStore && m.history != nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
