// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package ranking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cuecard/internal/embedding"
	"github.com/tomtom215/cuecard/internal/memory"
	"github.com/tomtom215/cuecard/internal/metrics"
	"github.com/tomtom215/cuecard/internal/models"
)

// ErrTooManyCandidates is returned when a batch exceeds Config.MaxCandidates.
var ErrTooManyCandidates = errors.New("ranking: too many candidates")

// ContextMemory is the part of a show's memory the engine reads.
// *memory.ContextMemory satisfies it.
type ContextMemory interface {
	Enabled() bool
	CheckSimilarity(ctx context.Context, text string, vec []float32) (memory.SimilarityResult, error)
	CalculateNoveltyScore(ctx context.Context, text string, vec []float32) (memory.NoveltyScore, error)
}

// HostFitScorer rates candidates against a host profile.
// *hostprofile.Manager satisfies it.
type HostFitScorer interface {
	Active() bool
	HostFitScore(c *models.Candidate) float64
}

// VotedQuestion is one scored candidate.
type VotedQuestion struct {
	Candidate      models.Candidate         `json:"question"`
	SourceModel    string                   `json:"source_model"`
	Votes          Votes                    `json:"votes"`
	DiversityScore float64                  `json:"diversity_score"`
	NoveltyScore   float64                  `json:"novelty_score"`
	HostFitScore   float64                  `json:"host_fit_score"`
	FinalScore     float64                  `json:"final_score"`
	MemoryCheck    *memory.SimilarityResult `json:"memory_check,omitempty"`

	// Embedding is kept so callers can commit the question to memory
	// without embedding it again.
	Embedding []float32 `json:"-"`
}

// Quality returns the averaged vote.
func (v *VotedQuestion) Quality() float64 {
	return v.Votes.Average
}

// Metadata summarizes one ranking call.
type Metadata struct {
	TotalGenerated      int     `json:"total_generated"`
	AfterDedup          int     `json:"after_dedup"`
	AfterMemoryFilter   int     `json:"after_memory_filter"`
	Returned            int     `json:"returned"`
	ModelsUsed          int     `json:"models_used"`
	AvgQuality          float64 `json:"avg_quality"`
	AvgDiversity        float64 `json:"avg_diversity"`
	AvgHostFit          float64 `json:"avg_host_fit"`
	ContextMemoryActive bool    `json:"context_memory_active"`
	HostProfileActive   bool    `json:"host_profile_active"`
	Weights             Weights `json:"weights"`
	DurationMS          int64   `json:"duration_ms"`
}

// Result is the ranked top-K and its metadata.
type Result struct {
	Questions []VotedQuestion `json:"questions"`
	Metadata  Metadata        `json:"metadata"`
}

// Engine ranks candidate batches. It holds no state of its own beyond its
// collaborators, which are optional.
type Engine struct {
	cfg     Config
	dedup   *Deduplicator
	quality QualityScorer
	memory  ContextMemory
	hostFit HostFitScorer
	logger  zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithContextMemory attaches a show's context memory.
func WithContextMemory(m ContextMemory) Option {
	return func(e *Engine) { e.memory = m }
}

// WithHostFitScorer attaches a host profile scorer.
func WithHostFitScorer(h HostFitScorer) Option {
	return func(e *Engine) { e.hostFit = h }
}

// WithQualityScorer replaces the simulated voters.
func WithQualityScorer(q QualityScorer) Option {
	return func(e *Engine) { e.quality = q }
}

// NewEngine creates a ranking engine.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEngine(cfg Config, gateway embedding.Gateway, logger zerolog.Logger, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if gateway == nil {
		return nil, fmt.Errorf("ranking: embedding gateway is required")
	}
	logger = logger.With().Str("component", "ranking").Logger()

	e := &Engine{
		cfg:    cfg,
		dedup:  NewDeduplicator(gateway, cfg.SimilarityThreshold, logger),
		logger: logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.quality == nil {
		e.quality = NewSimulatedVoters(cfg.QualitySeed, cfg.QualityVariance, cfg.Voters)
	}
	return e, nil
}

// HasContextMemory reports whether novelty and memory filtering are applied.
func (e *Engine) HasContextMemory() bool {
	return e.memory != nil && e.memory.Enabled()
}

// HasHostProfile reports whether host fit is scored and weighted.
func (e *Engine) HasHostProfile() bool {
	return e.hostFit != nil && e.hostFit.Active()
}

// Weights returns the weight set for the current scoring mode.
func (e *Engine) Weights() Weights {
	if e.HasHostProfile() {
		return e.cfg.HostWeights
	}
	return e.cfg.BaseWeights
}

// RankQuestions deduplicates, filters against memory, scores and returns the
// top K candidates sorted by final score. An empty batch returns an empty
// result without touching any collaborator. A batch fully filtered by memory
// is not an error.
func (e *Engine) RankQuestions(ctx context.Context, candidates []models.Candidate) (*Result, error) {
	start := time.Now()
	if len(candidates) == 0 {
		return &Result{Questions: []VotedQuestion{}, Metadata: Metadata{Weights: e.Weights()}}, nil
	}

	res, err := e.rank(ctx, candidates)
	duration := time.Since(start)
	if err != nil {
		metrics.RecordRanking(duration, len(candidates), 0, 0, 0, err)
		e.logger.Error().Err(err).Int("candidates", len(candidates)).Msg("Ranking failed")
		return nil, err
	}
	res.Metadata.DurationMS = duration.Milliseconds()

	metrics.RecordRanking(duration, res.Metadata.TotalGenerated, res.Metadata.AfterDedup,
		res.Metadata.AfterMemoryFilter, res.Metadata.Returned, nil)
	if len(res.Questions) > 0 {
		metrics.RankingFinalScore.Observe(res.Questions[0].FinalScore)
	}

	e.logger.Info().
		Int("input", res.Metadata.TotalGenerated).
		Int("unique", res.Metadata.AfterDedup).
		Int("kept", res.Metadata.AfterMemoryFilter).
		Int("returned", res.Metadata.Returned).
		Bool("host_profile", res.Metadata.HostProfileActive).
		Dur("duration", duration).
		Msg("Ranked questions")
	return res, nil
}

func (e *Engine) rank(ctx context.Context, candidates []models.Candidate) (*Result, error) {
	if len(candidates) > e.cfg.MaxCandidates {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyCandidates, len(candidates), e.cfg.MaxCandidates)
	}

	unique, err := e.dedup.Deduplicate(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("deduplicate: %w", err)
	}

	voted, err := e.filterByMemory(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("memory filter: %w", err)
	}

	hasProfile := e.HasHostProfile()
	weights := e.cfg.BaseWeights
	if hasProfile {
		weights = e.cfg.HostWeights
	}

	texts := make([]string, len(voted))
	for i := range voted {
		texts[i] = voted[i].Candidate.Text
	}
	diversity := DiversityScores(texts)

	sources := make(map[string]struct{})
	var sumQuality, sumDiversity, sumHostFit float64
	for i := range voted {
		v := &voted[i]
		v.Votes = e.quality.Score(&v.Candidate)
		v.DiversityScore = diversity[i]
		v.HostFitScore = e.cfg.DefaultHostFit
		if hasProfile {
			v.HostFitScore = e.hostFit.HostFitScore(&v.Candidate)
		}
		v.FinalScore = v.Quality()*weights.Quality +
			v.DiversityScore*weights.Diversity +
			v.NoveltyScore*weights.Novelty +
			v.HostFitScore*weights.HostFit

		sources[v.SourceModel] = struct{}{}
		sumQuality += v.Quality()
		sumDiversity += v.DiversityScore
		sumHostFit += v.HostFitScore
	}

	sort.SliceStable(voted, func(i, j int) bool {
		return voted[i].FinalScore > voted[j].FinalScore
	})

	top := voted
	if len(top) > e.cfg.TopK {
		top = top[:e.cfg.TopK]
	}

	meta := Metadata{
		TotalGenerated:      len(candidates),
		AfterDedup:          len(unique),
		AfterMemoryFilter:   len(voted),
		Returned:            len(top),
		ModelsUsed:          len(sources),
		ContextMemoryActive: e.HasContextMemory(),
		HostProfileActive:   hasProfile,
		Weights:             weights,
	}
	if n := float64(len(voted)); n > 0 {
		meta.AvgQuality = sumQuality / n
		meta.AvgDiversity = sumDiversity / n
		meta.AvgHostFit = sumHostFit / n
	}

	return &Result{Questions: append([]VotedQuestion{}, top...), Metadata: meta}, nil
}

// filterByMemory drops candidates memory marks for filtering and attaches
// novelty to the rest. Without memory every candidate survives with the
// default novelty.
func (e *Engine) filterByMemory(ctx context.Context, unique []Embedded) ([]VotedQuestion, error) {
	voted := make([]VotedQuestion, 0, len(unique))
	useMemory := e.HasContextMemory()

	for i := range unique {
		u := &unique[i]
		v := VotedQuestion{
			Candidate:    u.Candidate,
			SourceModel:  sourceModel(&u.Candidate),
			NoveltyScore: e.cfg.DefaultNovelty,
			Embedding:    u.Vector,
		}

		if useMemory {
			check, err := e.memory.CheckSimilarity(ctx, u.Candidate.Text, u.Vector)
			if err != nil {
				return nil, err
			}
			if check.ShouldFilter {
				e.logger.Debug().
					Str("text", u.Candidate.Text).
					Str("similar_to", check.MostSimilarQuestion).
					Float64("similarity", check.Similarity).
					Msg("Filtered by context memory")
				continue
			}
			novelty, err := e.memory.CalculateNoveltyScore(ctx, u.Candidate.Text, u.Vector)
			if err != nil {
				return nil, err
			}
			v.NoveltyScore = novelty.Score
			v.MemoryCheck = &check
		}
		voted = append(voted, v)
	}
	return voted, nil
}

func sourceModel(c *models.Candidate) string {
	if c.SourceModel == "" {
		return "gpt-4o"
	}
	return c.SourceModel
}
