// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package ranking

import (
	"fmt"
	"math"
)

// Weights combine the four ranking signals. They must sum to 1.
type Weights struct {
	Quality   float64 `json:"quality"`
	Diversity float64 `json:"diversity"`
	Novelty   float64 `json:"novelty"`
	HostFit   float64 `json:"host_fit"`
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.Quality + w.Diversity + w.Novelty + w.HostFit
}

// Validate checks the weights are non-negative and sum to 1.
func (w Weights) Validate() error {
	if w.Quality < 0 || w.Diversity < 0 || w.Novelty < 0 || w.HostFit < 0 {
		return fmt.Errorf("ranking: weights must not be negative: %+v", w)
	}
	if math.Abs(w.Sum()-1) > 1e-9 {
		return fmt.Errorf("ranking: weights must sum to 1, got %v", w.Sum())
	}
	return nil
}

// Config tunes the ranking engine.
type Config struct {
	// SimilarityThreshold marks two candidates in a batch as duplicates.
	SimilarityThreshold float64

	TopK int

	// BaseWeights apply without an active host profile, HostWeights with one.
	BaseWeights Weights
	HostWeights Weights

	// DefaultNovelty is used when context memory is unavailable.
	DefaultNovelty float64
	// DefaultHostFit is used when no host profile is active.
	DefaultHostFit float64

	// Simulated voters draw noise in [-Variance/2, Variance/2) from a seeded source.
	QualitySeed     int64
	QualityVariance float64
	Voters          []string

	// MaxCandidates bounds the batch embedded in one call.
	MaxCandidates int
}

// DefaultConfig returns the standard ranking settings.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.8,
		TopK:                5,
		BaseWeights:         Weights{Quality: 0.6, Diversity: 0.2, Novelty: 0.2, HostFit: 0},
		HostWeights:         Weights{Quality: 0.5, Diversity: 0.15, Novelty: 0.15, HostFit: 0.2},
		DefaultNovelty:      0.5,
		DefaultHostFit:      0.5,
		QualitySeed:         42,
		QualityVariance:     0.1,
		Voters:              []string{"gpt-4o", "claude", "gemini"},
		MaxCandidates:       100,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("ranking: similarity threshold must be within (0,1], got %v", c.SimilarityThreshold)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("ranking: top k must be positive, got %d", c.TopK)
	}
	if err := c.BaseWeights.Validate(); err != nil {
		return fmt.Errorf("base weights: %w", err)
	}
	if c.BaseWeights.HostFit != 0 {
		return fmt.Errorf("ranking: base weights must not weight host fit")
	}
	if err := c.HostWeights.Validate(); err != nil {
		return fmt.Errorf("host weights: %w", err)
	}
	if c.QualityVariance < 0 || c.QualityVariance > 1 {
		return fmt.Errorf("ranking: quality variance must be within [0,1], got %v", c.QualityVariance)
	}
	if len(c.Voters) == 0 {
		return fmt.Errorf("ranking: at least one voter is required")
	}
	if c.MaxCandidates <= 0 {
		return fmt.Errorf("ranking: max candidates must be positive, got %d", c.MaxCandidates)
	}
	return nil
}
