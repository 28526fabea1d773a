// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package ranking

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cuecard/internal/embedding"
	"github.com/tomtom215/cuecard/internal/models"
)

// Embedded is a candidate with its embedding.
type Embedded struct {
	Candidate models.Candidate
	Vector    []float32
}

// Deduplicator removes near identical candidates from a batch.
type Deduplicator struct {
	gateway   embedding.Gateway
	threshold float64
	logger    zerolog.Logger
}

// NewDeduplicator creates a deduplicator with the given similarity threshold.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewDeduplicator(gateway embedding.Gateway, threshold float64, logger zerolog.Logger) *Deduplicator {
	return &Deduplicator{gateway: gateway, threshold: threshold, logger: logger}
}

// Deduplicate embeds the batch in one call and keeps each candidate unless it
// is at least threshold similar to an already kept one. The result depends
// on input order: the first occurrence wins. Any embedding failure fails the
// whole batch.
func (d *Deduplicator) Deduplicate(ctx context.Context, candidates []models.Candidate) ([]Embedded, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	texts := make([]string, len(candidates))
	for i := range candidates {
		texts[i] = candidates[i].Text
	}
	vecs, err := d.gateway.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed batch: %w", err)
	}
	if len(vecs) != len(candidates) {
		return nil, fmt.Errorf("embed batch: got %d vectors for %d candidates", len(vecs), len(candidates))
	}

	unique := make([]Embedded, 0, len(candidates))
	for i := range candidates {
		dup, err := d.duplicateOf(vecs[i], unique)
		if err != nil {
			return nil, err
		}
		if dup >= 0 {
			d.logger.Debug().
				Str("text", candidates[i].Text).
				Str("kept", unique[dup].Candidate.Text).
				Msg("Deduplicated question")
			continue
		}
		unique = append(unique, Embedded{Candidate: candidates[i], Vector: vecs[i]})
	}
	return unique, nil
}

// duplicateOf returns the index of the first kept entry vec duplicates, or -1.
func (d *Deduplicator) duplicateOf(vec []float32, kept []Embedded) (int, error) {
	for j := range kept {
		sim, err := d.gateway.Similarity(vec, kept[j].Vector)
		if err != nil {
			return -1, fmt.Errorf("compare candidates: %w", err)
		}
		if sim >= d.threshold {
			return j, nil
		}
	}
	return -1, nil
}
