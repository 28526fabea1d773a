// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package memory

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/cuecard/internal/embedding"
	"github.com/tomtom215/cuecard/internal/metrics"
)

// SimilarityResult classifies a candidate against the show history.
type SimilarityResult struct {
	IsSimilar           bool    `json:"is_similar"`
	MostSimilarQuestion string  `json:"most_similar_question,omitempty"`
	Similarity          float64 `json:"similarity"`
	MinutesAgo          float64 `json:"minutes_ago"`
	ShouldFilter        bool    `json:"should_filter"`
	ShouldPenalize      bool    `json:"should_penalize"`
	ShouldBoost         bool    `json:"should_boost"`
}

// NoveltyScore rates how far a candidate sits from the show history.
type NoveltyScore struct {
	Score               float64 `json:"score"`
	MaxSimilarity       float64 `json:"max_similarity"`
	AvgRecentSimilarity float64 `json:"avg_recent_similarity"`
	ExplorationBonus    float64 `json:"exploration_bonus"`
	TemporalDecayFactor float64 `json:"temporal_decay_factor"`
}

// Decay returns the temporal decay factor exp(-age/halfLife).
func Decay(age, halfLife time.Duration) float64 {
	return math.Exp(-age.Minutes() / halfLife.Minutes())
}

type scoredItem struct {
	raw       float64
	effective float64
	ageMin    float64
	text      string
}

// scan compares vec against every item under the read lock.
func (m *ContextMemory) scan(vec []float32) ([]scoredItem, error) {
	now := m.now()
	halfLife := m.cfg.halfLifeMinutes()

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]scoredItem, 0, len(m.items))
	for _, item := range m.items {
		raw, err := embedding.Cosine(vec, item.Embedding)
		if err != nil {
			return nil, fmt.Errorf("compare with history: %w", err)
		}
		age := item.AgeMinutes(now)
		out = append(out, scoredItem{
			raw:       raw,
			effective: raw * math.Exp(-age/halfLife),
			ageMin:    age,
			text:      item.Text,
		})
	}
	return out, nil
}

func (m *ContextMemory) vectorFor(ctx context.Context, text string, vec []float32) ([]float32, error) {
	if vec != nil {
		return vec, nil
	}
	v, err := m.gateway.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed candidate: %w", err)
	}
	return v, nil
}

// CheckSimilarity finds the highest decayed similarity between text and the
// history. vec may be nil, in which case text is embedded. An empty or
// disabled memory reports nothing similar.
func (m *ContextMemory) CheckSimilarity(ctx context.Context, text string, vec []float32) (SimilarityResult, error) {
	if !m.cfg.Enabled || m.Len() == 0 {
		return SimilarityResult{}, nil
	}

	v, err := m.vectorFor(ctx, text, vec)
	if err != nil {
		return SimilarityResult{}, err
	}
	scored, err := m.scan(v)
	if err != nil {
		return SimilarityResult{}, err
	}

	var res SimilarityResult
	for _, s := range scored {
		if s.effective > res.Similarity {
			res.Similarity = s.effective
			res.MostSimilarQuestion = s.text
			res.MinutesAgo = s.ageMin
		}
	}

	res.ShouldFilter = res.Similarity >= m.cfg.SimilarityThreshold
	res.ShouldPenalize = !res.ShouldFilter && res.Similarity >= m.cfg.PenaltyThreshold
	res.ShouldBoost = res.Similarity < m.cfg.NoveltyBoostThreshold
	res.IsSimilar = res.Similarity >= m.cfg.PenaltyThreshold

	metrics.RecordMemoryDecision(res.ShouldFilter, res.ShouldPenalize, res.ShouldBoost)

	ev := m.logger.Debug().Float64("similarity", res.Similarity).Str("text", truncate(text, 50))
	switch {
	case res.ShouldFilter:
		ev.Msg("Question too similar to history, filtering")
	case res.ShouldPenalize:
		ev.Msg("Question somewhat similar to history, penalizing")
	case res.ShouldBoost:
		ev.Msg("Novel question, boosting")
	default:
		ev.Discard()
	}
	return res, nil
}

// CalculateNoveltyScore returns min(1, 1-maxDecayedSimilarity+bonus), where the
// exploration bonus applies when the average raw similarity to items from the
// recent window is below the exploration threshold. An empty or disabled
// memory scores 1.
func (m *ContextMemory) CalculateNoveltyScore(ctx context.Context, text string, vec []float32) (NoveltyScore, error) {
	if !m.cfg.Enabled || m.Len() == 0 {
		return NoveltyScore{Score: 1}, nil
	}

	v, err := m.vectorFor(ctx, text, vec)
	if err != nil {
		return NoveltyScore{}, err
	}
	scored, err := m.scan(v)
	if err != nil {
		return NoveltyScore{}, err
	}

	var maxSim, recentSum float64
	recentCount := 0
	window := m.cfg.RecentWindow.Minutes()
	for _, s := range scored {
		maxSim = math.Max(maxSim, s.effective)
		if s.ageMin < window {
			recentSum += s.raw
			recentCount++
		}
	}

	var avgRecent float64
	if recentCount > 0 {
		avgRecent = recentSum / float64(recentCount)
	}

	var bonus float64
	if avgRecent < m.cfg.ExplorationThreshold {
		bonus = m.cfg.ExplorationBonus
	}

	return NoveltyScore{
		Score:               math.Min(1-maxSim+bonus, 1),
		MaxSimilarity:       maxSim,
		AvgRecentSimilarity: avgRecent,
		ExplorationBonus:    bonus,
		TemporalDecayFactor: Decay(time.Minute, m.cfg.TemporalDecayHalfLife),
	}, nil
}
