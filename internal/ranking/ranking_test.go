// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package ranking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cuecard/internal/embedding"
	"github.com/tomtom215/cuecard/internal/memory"
	"github.com/tomtom215/cuecard/internal/models"
)

const dims = 64

func unit(i int) []float32 {
	v := make([]float32, dims)
	v[i] = 1
	return v
}

// blend returns a unit vector with cosine sim to unit(i).
func blend(i, j int, sim float64) []float32 {
	v := make([]float32, dims)
	v[i] = float32(sim)
	v[j] = float32(math.Sqrt(1 - sim*sim))
	return v
}

// fakeGateway returns fixed vectors for known texts and a fresh orthogonal
// axis for every unknown text.
type fakeGateway struct {
	mu      sync.Mutex
	vectors map[string][]float32
	next    int
	calls   int
	err     error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{vectors: make(map[string][]float32), next: 32}
}

func (g *fakeGateway) set(text string, v []float32) { g.vectors[text] = v }

func (g *fakeGateway) Embed(ctx context.Context, text string) ([]float32, error) {
	v, err := g.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return v[0], nil
}

func (g *fakeGateway) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := g.vectors[t]
		if !ok {
			v = unit(g.next % dims)
			g.next++
			g.vectors[t] = v
		}
		out[i] = v
	}
	return out, nil
}

func (g *fakeGateway) Similarity(a, b []float32) (float64, error) {
	return embedding.Cosine(a, b)
}

type fixedHostFit struct {
	active bool
	score  float64
}

func (f fixedHostFit) Active() bool                         { return f.active }
func (f fixedHostFit) HostFitScore(*models.Candidate) float64 { return f.score }

func candidates(texts ...string) []models.Candidate {
	out := make([]models.Candidate, len(texts))
	for i, t := range texts {
		out[i] = models.Candidate{Text: t, Confidence: models.Float(0.6 + 0.05*float64(i%5)), SourceModel: "gpt-4o"}
	}
	return out
}

func newTestEngine(t *testing.T, gw embedding.Gateway, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultConfig(), gw, zerolog.Nop(), opts...)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func TestRankQuestions_EmptyBatch(t *testing.T) {
	gw := newFakeGateway()
	e := newTestEngine(t, gw)

	res, err := e.RankQuestions(context.Background(), nil)
	if err != nil {
		t.Fatalf("RankQuestions() error = %v", err)
	}
	if len(res.Questions) != 0 {
		t.Errorf("RankQuestions() returned %d questions, want 0", len(res.Questions))
	}
	if gw.calls != 0 {
		t.Errorf("embedding calls = %d, want 0", gw.calls)
	}
}

func TestRankQuestions_TopKSorted(t *testing.T) {
	gw := newFakeGateway()
	e := newTestEngine(t, gw)

	batch := make([]string, 8)
	for i := range batch {
		batch[i] = fmt.Sprintf("question number %d about topic %c", i, 'a'+i)
	}
	res, err := e.RankQuestions(context.Background(), candidates(batch...))
	if err != nil {
		t.Fatalf("RankQuestions() error = %v", err)
	}
	if len(res.Questions) != 5 {
		t.Fatalf("RankQuestions() returned %d questions, want 5", len(res.Questions))
	}
	for i := 1; i < len(res.Questions); i++ {
		if res.Questions[i].FinalScore > res.Questions[i-1].FinalScore {
			t.Errorf("questions not sorted: [%d]=%v > [%d]=%v",
				i, res.Questions[i].FinalScore, i-1, res.Questions[i-1].FinalScore)
		}
	}
	if gw.calls != 1 {
		t.Errorf("embedding calls = %d, want 1", gw.calls)
	}
	if res.Metadata.TotalGenerated != 8 || res.Metadata.AfterDedup != 8 || res.Metadata.Returned != 5 {
		t.Errorf("Metadata = %+v", res.Metadata)
	}
	if res.Metadata.ModelsUsed != 1 {
		t.Errorf("ModelsUsed = %d, want 1", res.Metadata.ModelsUsed)
	}
}

func TestRankQuestions_FinalScoreReconstructable(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		weights Weights
		hostFit float64
	}{
		{
			name:    "without host profile",
			weights: DefaultConfig().BaseWeights,
			hostFit: 0.5,
		},
		{
			name:    "inactive host profile",
			opts:    []Option{WithHostFitScorer(fixedHostFit{active: false, score: 0.9})},
			weights: DefaultConfig().BaseWeights,
			hostFit: 0.5,
		},
		{
			name:    "active host profile",
			opts:    []Option{WithHostFitScorer(fixedHostFit{active: true, score: 0.9})},
			weights: DefaultConfig().HostWeights,
			hostFit: 0.9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, newFakeGateway(), tt.opts...)
			res, err := e.RankQuestions(context.Background(),
				candidates("why did the tour end early", "what inspired the new record", "who would you collaborate with"))
			if err != nil {
				t.Fatalf("RankQuestions() error = %v", err)
			}
			if res.Metadata.Weights != tt.weights {
				t.Errorf("Weights = %+v, want %+v", res.Metadata.Weights, tt.weights)
			}
			for _, q := range res.Questions {
				if q.HostFitScore != tt.hostFit {
					t.Errorf("HostFitScore = %v, want %v", q.HostFitScore, tt.hostFit)
				}
				if q.NoveltyScore != 0.5 {
					t.Errorf("NoveltyScore = %v, want 0.5 without memory", q.NoveltyScore)
				}
				want := q.Quality()*tt.weights.Quality + q.DiversityScore*tt.weights.Diversity +
					q.NoveltyScore*tt.weights.Novelty + q.HostFitScore*tt.weights.HostFit
				if math.Abs(q.FinalScore-want) > 1e-9 {
					t.Errorf("FinalScore = %v, want %v", q.FinalScore, want)
				}
			}
		})
	}
}

func TestRankQuestions_NearDuplicateKeepsFirst(t *testing.T) {
	gw := newFakeGateway()
	gw.set("what is the next single", unit(0))
	gw.set("what will the next single be", blend(0, 1, 0.9))
	e := newTestEngine(t, gw)

	res, err := e.RankQuestions(context.Background(),
		candidates("what is the next single", "what will the next single be"))
	if err != nil {
		t.Fatalf("RankQuestions() error = %v", err)
	}
	if len(res.Questions) != 1 {
		t.Fatalf("RankQuestions() returned %d questions, want 1", len(res.Questions))
	}
	if got := res.Questions[0].Candidate.Text; got != "what is the next single" {
		t.Errorf("kept %q, want the first occurrence", got)
	}
	if res.Questions[0].DiversityScore != 1 {
		t.Errorf("DiversityScore = %v, want 1 for a single survivor", res.Questions[0].DiversityScore)
	}
}

func TestRankQuestions_AllFilteredByMemory(t *testing.T) {
	gw := newFakeGateway()
	gw.set("what is the next single", unit(0))

	mem, err := memory.New(memory.DefaultConfig(), gw, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("memory.New() error = %v", err)
	}
	if err := mem.Initialize(context.Background(), "show-1"); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	c := models.Candidate{Text: "what is the next single"}
	if err := mem.AddEmbedded(&c, "gpt-4o", unit(0)); err != nil {
		t.Fatalf("AddEmbedded() error = %v", err)
	}

	e := newTestEngine(t, gw, WithContextMemory(mem))
	res, err := e.RankQuestions(context.Background(), []models.Candidate{c})
	if err != nil {
		t.Fatalf("RankQuestions() error = %v", err)
	}
	if len(res.Questions) != 0 {
		t.Errorf("RankQuestions() returned %d questions, want 0", len(res.Questions))
	}
	if res.Metadata.AfterMemoryFilter != 0 || !res.Metadata.ContextMemoryActive {
		t.Errorf("Metadata = %+v", res.Metadata)
	}
}

func TestRankQuestions_NoveltyFromMemory(t *testing.T) {
	gw := newFakeGateway()
	gw.set("what is the next single", unit(0))
	gw.set("who produced the album", unit(1))

	mem, err := memory.New(memory.DefaultConfig(), gw, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("memory.New() error = %v", err)
	}
	if err := mem.Initialize(context.Background(), "show-1"); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := mem.AddEmbedded(&models.Candidate{Text: "what is the next single"}, "gpt-4o", unit(0)); err != nil {
		t.Fatalf("AddEmbedded() error = %v", err)
	}

	e := newTestEngine(t, gw, WithContextMemory(mem))
	res, err := e.RankQuestions(context.Background(), candidates("who produced the album"))
	if err != nil {
		t.Fatalf("RankQuestions() error = %v", err)
	}
	if len(res.Questions) != 1 {
		t.Fatalf("RankQuestions() returned %d questions, want 1", len(res.Questions))
	}
	// orthogonal to history, recent average 0 earns the exploration bonus, capped at 1
	if got := res.Questions[0].NoveltyScore; got != 1 {
		t.Errorf("NoveltyScore = %v, want 1", got)
	}
	if res.Questions[0].MemoryCheck == nil || !res.Questions[0].MemoryCheck.ShouldBoost {
		t.Errorf("MemoryCheck = %+v, want boost", res.Questions[0].MemoryCheck)
	}
}

func TestRankQuestions_EmbeddingFailure(t *testing.T) {
	gw := newFakeGateway()
	gw.err = errors.New("provider down")
	e := newTestEngine(t, gw)

	_, err := e.RankQuestions(context.Background(), candidates("a question", "another question"))
	if err == nil {
		t.Fatal("RankQuestions() error = nil, want error")
	}
	if !errors.Is(err, gw.err) {
		t.Errorf("RankQuestions() error = %v, want wrapped provider error", err)
	}
}

func TestRankQuestions_TooManyCandidates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxCandidates = 2
	e, err := NewEngine(cfg, newFakeGateway(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	_, err = e.RankQuestions(context.Background(), candidates("one", "two", "three"))
	if !errors.Is(err, ErrTooManyCandidates) {
		t.Errorf("RankQuestions() error = %v, want ErrTooManyCandidates", err)
	}
}

func TestDeduplicate_Idempotent(t *testing.T) {
	gw := newFakeGateway()
	gw.set("q1", unit(0))
	gw.set("q2", blend(0, 1, 0.85))
	gw.set("q3", unit(2))
	gw.set("q4", blend(2, 3, 0.95))
	gw.set("q5", blend(0, 4, 0.5))
	d := NewDeduplicator(gw, 0.8, zerolog.Nop())

	first, err := d.Deduplicate(context.Background(), candidates("q1", "q2", "q3", "q4", "q5"))
	if err != nil {
		t.Fatalf("Deduplicate() error = %v", err)
	}
	want := []string{"q1", "q3", "q5"}
	if len(first) != len(want) {
		t.Fatalf("Deduplicate() kept %d, want %d", len(first), len(want))
	}
	for i := range want {
		if first[i].Candidate.Text != want[i] {
			t.Errorf("Deduplicate()[%d] = %q, want %q", i, first[i].Candidate.Text, want[i])
		}
	}

	again := make([]models.Candidate, len(first))
	for i := range first {
		again[i] = first[i].Candidate
	}
	second, err := d.Deduplicate(context.Background(), again)
	if err != nil {
		t.Fatalf("Deduplicate() error = %v", err)
	}
	if len(second) != len(first) {
		t.Errorf("second Deduplicate() kept %d, want %d", len(second), len(first))
	}
}

func TestDeduplicate_SingleCandidate(t *testing.T) {
	d := NewDeduplicator(newFakeGateway(), 0.8, zerolog.Nop())
	got, err := d.Deduplicate(context.Background(), candidates("only one"))
	if err != nil {
		t.Fatalf("Deduplicate() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Deduplicate() kept %d, want 1", len(got))
	}
}
