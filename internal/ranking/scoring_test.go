// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package ranking

import (
	"math"
	"testing"

	"github.com/tomtom215/cuecard/internal/models"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"What's NEXT?", []string{"whats", "next"}},
		{"  spaced   out\twords ", []string{"spaced", "out", "words"}},
		{"snake_case 2026!", []string{"snake_case", "2026"}},
		{"", nil},
		{"!!!", nil},
	}
	for _, tt := range tests {
		got := Tokenize(tt.text)
		if len(got) != len(tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			continue
		}
		for _, w := range tt.want {
			if _, ok := got[w]; !ok {
				t.Errorf("Tokenize(%q) missing %q", tt.text, w)
			}
		}
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"the new album", "the new album", 1},
		{"the new album", "a different tour", 0},
		{"the new album", "the old album", 0.5},
		{"", "", 0},
	}
	for _, tt := range tests {
		if got := Jaccard(Tokenize(tt.a), Tokenize(tt.b)); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Jaccard(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestDiversityScores(t *testing.T) {
	if got := DiversityScores([]string{"alone"}); got[0] != 1 {
		t.Errorf("DiversityScores(single) = %v, want 1", got[0])
	}

	got := DiversityScores([]string{"the new album", "the old album", "a different tour"})
	want := []float64{
		((1 - 0.5) + 1) / 2,
		((1 - 0.5) + 1) / 2,
		1,
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("DiversityScores()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSimulatedVoters(t *testing.T) {
	cfg := DefaultConfig()
	c := models.Candidate{Text: "q", Confidence: models.Float(0.8)}

	a := NewSimulatedVoters(cfg.QualitySeed, cfg.QualityVariance, cfg.Voters).Score(&c)
	b := NewSimulatedVoters(cfg.QualitySeed, cfg.QualityVariance, cfg.Voters).Score(&c)
	if a.Average != b.Average {
		t.Errorf("same seed Average = %v and %v, want equal", a.Average, b.Average)
	}
	if len(a.Scores) != 3 {
		t.Fatalf("len(Scores) = %d, want 3", len(a.Scores))
	}
	for _, v := range a.Scores {
		if math.Abs(v.Score-0.8) > cfg.QualityVariance/2 {
			t.Errorf("vote %s = %v, want within %v of 0.8", v.Model, v.Score, cfg.QualityVariance/2)
		}
	}
}

func TestSimulatedVoters_DefaultsAndClamp(t *testing.T) {
	voters := NewSimulatedVoters(1, 0.1, []string{"gpt-4o", "claude", "gemini"})

	missing := voters.Score(&models.Candidate{Text: "no confidence"})
	if math.Abs(missing.Average-models.DefaultConfidence) > 0.05 {
		t.Errorf("Average = %v, want near %v", missing.Average, models.DefaultConfidence)
	}

	high := voters.Score(&models.Candidate{Text: "sure", Confidence: models.Float(1)})
	for _, v := range high.Scores {
		if v.Score > 1 {
			t.Errorf("vote %s = %v, want <= 1", v.Model, v.Score)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"weights do not sum to one", func(c *Config) { c.BaseWeights.Quality = 0.7 }, true},
		{"base weights use host fit", func(c *Config) {
			c.BaseWeights = Weights{Quality: 0.5, Diversity: 0.2, Novelty: 0.2, HostFit: 0.1}
		}, true},
		{"negative weight", func(c *Config) {
			c.HostWeights = Weights{Quality: 0.7, Diversity: 0.15, Novelty: 0.35, HostFit: -0.2}
		}, true},
		{"zero top k", func(c *Config) { c.TopK = 0 }, true},
		{"threshold above one", func(c *Config) { c.SimilarityThreshold = 1.2 }, true},
		{"no voters", func(c *Config) { c.Voters = nil }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
