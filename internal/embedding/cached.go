// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cuecard/internal/metrics"
)

const (
	layerLocal  = "local"
	layerRemote = "redis"
)

// CachedGateway implements Gateway on top of a Provider with a local LRU
// and an optional RemoteCache.
type CachedGateway struct {
	provider Provider
	local    *LRU
	remote   RemoteCache
	logger   zerolog.Logger
}

var _ Gateway = (*CachedGateway)(nil)

// NewCachedGateway wraps provider. remote may be nil.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewCachedGateway(provider Provider, cacheSize int, remote RemoteCache, logger zerolog.Logger) *CachedGateway {
	return &CachedGateway{
		provider: provider,
		local:    NewLRU(cacheSize),
		remote:   remote,
		logger:   logger.With().Str("component", "embedding").Str("provider", provider.Name()).Logger(),
	}
}

// Embed returns the vector for a single text.
func (g *CachedGateway) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := g.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch returns one vector per text in input order. Only texts missing
// from both cache layers reach the provider, in a single call.
func (g *CachedGateway) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	if len(texts) == 0 {
		return results, nil
	}

	var missIdx []int
	for i, t := range texts {
		if vec, ok := g.local.Get(t); ok {
			results[i] = vec
			metrics.RecordEmbeddingCache(layerLocal, true)
			continue
		}
		metrics.RecordEmbeddingCache(layerLocal, false)
		missIdx = append(missIdx, i)
	}
	if len(missIdx) == 0 {
		return results, nil
	}

	if g.remote != nil {
		missIdx = g.fillFromRemote(ctx, texts, results, missIdx)
		if len(missIdx) == 0 {
			return results, nil
		}
	}

	// Duplicate texts inside one batch are fetched once.
	uniq := make([]string, 0, len(missIdx))
	pos := make(map[string]int, len(missIdx))
	for _, i := range missIdx {
		if _, seen := pos[texts[i]]; !seen {
			pos[texts[i]] = len(uniq)
			uniq = append(uniq, texts[i])
		}
	}

	start := time.Now()
	fetched, err := g.provider.EmbedBatch(ctx, uniq)
	metrics.RecordEmbeddingRequest(g.provider.Name(), len(uniq), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("embed %d texts: %w", len(uniq), err)
	}
	if len(fetched) != len(uniq) {
		return nil, fmt.Errorf("embed %d texts: got %d vectors: %w", len(uniq), len(fetched), ErrEmptyResponse)
	}

	for j, t := range uniq {
		g.local.Add(t, fetched[j])
	}
	for _, i := range missIdx {
		results[i] = fetched[pos[texts[i]]]
	}

	if g.remote != nil {
		if err := g.remote.SetMany(ctx, uniq, fetched); err != nil {
			g.logger.Warn().Err(err).Int("count", len(uniq)).Msg("Failed to write embeddings to shared cache")
		}
	}

	g.logger.Debug().
		Int("requested", len(texts)).
		Int("fetched", len(uniq)).
		Dur("duration", time.Since(start)).
		Msg("Embedded batch")

	return results, nil
}

// fillFromRemote resolves what it can from the shared cache and returns the
// indexes still missing. Remote failures degrade to misses.
func (g *CachedGateway) fillFromRemote(ctx context.Context, texts []string, results [][]float32, missIdx []int) []int {
	lookup := make([]string, len(missIdx))
	for j, i := range missIdx {
		lookup[j] = texts[i]
	}

	found, err := g.remote.GetMany(ctx, lookup)
	if err != nil {
		g.logger.Warn().Err(err).Msg("Shared embedding cache unavailable")
		return missIdx
	}

	remaining := missIdx[:0:0]
	for j, i := range missIdx {
		if found[j] != nil {
			results[i] = found[j]
			g.local.Add(texts[i], found[j])
			metrics.RecordEmbeddingCache(layerRemote, true)
			continue
		}
		metrics.RecordEmbeddingCache(layerRemote, false)
		remaining = append(remaining, i)
	}
	return remaining
}

// Similarity returns the cosine similarity of two vectors.
func (g *CachedGateway) Similarity(a, b []float32) (float64, error) {
	return Cosine(a, b)
}

// CacheStats reports the in-process cache statistics.
func (g *CachedGateway) CacheStats() CacheStats {
	return g.local.Stats()
}

// ClearCache empties the in-process cache.
func (g *CachedGateway) ClearCache() {
	g.local.Clear()
}
