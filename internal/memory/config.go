// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package memory

import (
	"fmt"
	"time"
)

// Config tunes a show's context memory.
type Config struct {
	Enabled      bool
	MaxCacheSize int

	// Effective similarity at or above SimilarityThreshold filters a candidate,
	// at or above PenaltyThreshold penalizes it, below NoveltyBoostThreshold boosts it.
	SimilarityThreshold   float64
	PenaltyThreshold      float64
	NoveltyBoostThreshold float64

	TemporalDecayHalfLife time.Duration

	// RecentWindow bounds the items considered for the exploration bonus.
	RecentWindow         time.Duration
	ExplorationBonus     float64
	ExplorationThreshold float64

	PersistToStore      bool
	PersistenceInterval time.Duration
	RetentionDays       int
}

// DefaultConfig returns the standard memory settings.
func DefaultConfig() Config {
	return Config{
		Enabled:               true,
		MaxCacheSize:          100,
		SimilarityThreshold:   0.80,
		PenaltyThreshold:      0.70,
		NoveltyBoostThreshold: 0.60,
		TemporalDecayHalfLife: 30 * time.Minute,
		RecentWindow:          30 * time.Minute,
		ExplorationBonus:      0.1,
		ExplorationThreshold:  0.4,
		PersistToStore:        true,
		PersistenceInterval:   5 * time.Minute,
		RetentionDays:         30,
	}
}

// Validate checks ranges and the threshold ordering the filter, penalize and
// boost classification relies on.
func (c *Config) Validate() error {
	if c.MaxCacheSize <= 0 {
		return fmt.Errorf("memory: max cache size must be positive, got %d", c.MaxCacheSize)
	}
	for name, v := range map[string]float64{
		"similarity threshold":    c.SimilarityThreshold,
		"penalty threshold":       c.PenaltyThreshold,
		"novelty boost threshold": c.NoveltyBoostThreshold,
		"exploration threshold":   c.ExplorationThreshold,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("memory: %s must be within [0,1], got %v", name, v)
		}
	}
	if c.SimilarityThreshold < c.PenaltyThreshold || c.PenaltyThreshold < c.NoveltyBoostThreshold {
		return fmt.Errorf("memory: thresholds must satisfy similarity (%v) >= penalty (%v) >= novelty boost (%v)",
			c.SimilarityThreshold, c.PenaltyThreshold, c.NoveltyBoostThreshold)
	}
	if c.TemporalDecayHalfLife <= 0 {
		return fmt.Errorf("memory: temporal decay half-life must be positive")
	}
	if c.RecentWindow <= 0 {
		return fmt.Errorf("memory: recent window must be positive")
	}
	if c.ExplorationBonus < 0 || c.ExplorationBonus > 1 {
		return fmt.Errorf("memory: exploration bonus must be within [0,1], got %v", c.ExplorationBonus)
	}
	if c.PersistToStore && c.PersistenceInterval <= 0 {
		return fmt.Errorf("memory: persistence interval must be positive when persistence is enabled")
	}
	if c.RetentionDays < 0 {
		return fmt.Errorf("memory: retention days must not be negative")
	}
	return nil
}

func (c *Config) halfLifeMinutes() float64 {
	return c.TemporalDecayHalfLife.Minutes()
}
