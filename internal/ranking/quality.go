// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package ranking

import (
	"math/rand"
	"sync"

	"github.com/tomtom215/cuecard/internal/models"
)

// Vote is one model's quality score for a candidate.
type Vote struct {
	Model string  `json:"model"`
	Score float64 `json:"score"`
}

// Votes holds every voter's score and their mean.
type Votes struct {
	Scores  []Vote  `json:"scores"`
	Average float64 `json:"average"`
}

// QualityScorer rates candidates in [0,1].
type QualityScorer interface {
	Score(c *models.Candidate) Votes
}

// SimulatedVoters perturbs the generator's confidence once per voter.
// The random source is seeded so a given batch always scores the same way
// for a freshly built scorer.
type SimulatedVoters struct {
	mu       sync.Mutex
	rng      *rand.Rand
	voters   []string
	variance float64
}

// NewSimulatedVoters creates a scorer with one vote per named voter.
func NewSimulatedVoters(seed int64, variance float64, voters []string) *SimulatedVoters {
	return &SimulatedVoters{
		rng:      rand.New(rand.NewSource(seed)), //nolint:gosec // scoring noise, not security sensitive
		voters:   append([]string(nil), voters...),
		variance: variance,
	}
}

// Score returns clamp(confidence + noise) per voter and the average.
func (s *SimulatedVoters) Score(c *models.Candidate) Votes {
	base := c.ConfidenceOrDefault()

	s.mu.Lock()
	defer s.mu.Unlock()

	votes := Votes{Scores: make([]Vote, 0, len(s.voters))}
	var sum float64
	for _, name := range s.voters {
		v := clamp01(base + (s.rng.Float64()-0.5)*s.variance)
		votes.Scores = append(votes.Scores, Vote{Model: name, Score: v})
		sum += v
	}
	if len(s.voters) > 0 {
		votes.Average = sum / float64(len(s.voters))
	}
	return votes
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
