// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package embedding

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func testConfig(provider, baseURL string) *Config {
	cfg := DefaultConfig()
	cfg.Provider = provider
	cfg.BaseURL = baseURL
	cfg.APIKey = "test-key"
	cfg.Timeout = 5 * time.Second
	cfg.RequestsPerSecond = 0
	return &cfg
}

func TestOpenAIProvider_EmbedBatch(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/embeddings" {
			t.Errorf("path = %s, want /embeddings", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want Bearer test-key", got)
		}

		var req openAIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}

		// answer out of order to check index sorting
		type item struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}
		data := make([]item, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, item{Index: i, Embedding: []float32{float32(i), 1}})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
	defer srv.Close()

	cfg := testConfig(ProviderOpenAI, srv.URL)
	cfg.MaxBatchSize = 2
	p := NewOpenAIProvider(cfg, zerolog.Nop())

	vecs, err := p.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("EmbedBatch() returned %d vectors, want 3", len(vecs))
	}
	// chunk [a b] -> 0,1 and chunk [c] -> 0
	if vecs[0][0] != 0 || vecs[1][0] != 1 || vecs[2][0] != 0 {
		t.Errorf("EmbedBatch() = %v, want chunk-local indexes in order", vecs)
	}
	if requests.Load() != 2 {
		t.Errorf("requests = %d, want 2", requests.Load())
	}
}

func TestOpenAIProvider_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(testConfig(ProviderOpenAI, srv.URL), zerolog.Nop())
	_, err := p.EmbedBatch(context.Background(), []string{"a"})
	if err == nil || !strings.Contains(err.Error(), "bad key") {
		t.Errorf("EmbedBatch() error = %v, want message from body", err)
	}
}

func TestOllamaProvider_EmbedBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/embed":
			var req ollamaRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			out := make([][]float32, len(req.Input))
			for i := range req.Input {
				out[i] = []float32{1, float32(i)}
			}
			_ = json.NewEncoder(w).Encode(ollamaResponse{Embeddings: out})
		case "/api/tags":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := NewOllamaProvider(testConfig(ProviderOllama, srv.URL), zerolog.Nop())
	vecs, err := p.EmbedBatch(context.Background(), []string{"x", "y"})
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}
	if len(vecs) != 2 || vecs[1][1] != 1 {
		t.Errorf("EmbedBatch() = %v", vecs)
	}
	if err := p.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestOllamaProvider_ShortResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaResponse{Embeddings: [][]float32{{1}}})
	}))
	defer srv.Close()

	p := NewOllamaProvider(testConfig(ProviderOllama, srv.URL), zerolog.Nop())
	if _, err := p.EmbedBatch(context.Background(), []string{"x", "y"}); err == nil {
		t.Error("EmbedBatch() error = nil, want count mismatch error")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"openai with key", func(c *Config) { c.APIKey = "k" }, false},
		{"openai without key", func(c *Config) {}, true},
		{"ollama without key", func(c *Config) { c.Provider = ProviderOllama; c.BaseURL = "http://localhost:11434" }, false},
		{"unknown provider", func(c *Config) { c.Provider = "bogus"; c.APIKey = "k" }, true},
		{"zero batch", func(c *Config) { c.APIKey = "k"; c.MaxBatchSize = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOpenAIProvider_OutageIsUnavailable(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		unavailable bool
	}{
		{"unauthorized", http.StatusUnauthorized, false},
		{"bad request", http.StatusBadRequest, false},
		{"rate limited", http.StatusTooManyRequests, true},
		{"internal error", http.StatusInternalServerError, true},
		{"bad gateway", http.StatusBadGateway, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"message":"upstream says no"}}`))
			}))
			defer srv.Close()

			p := NewOpenAIProvider(testConfig(ProviderOpenAI, srv.URL), zerolog.Nop())
			_, err := p.EmbedBatch(context.Background(), []string{"a"})
			if err == nil {
				t.Fatal("EmbedBatch() error = nil, want error")
			}
			if got := errors.Is(err, ErrProviderUnavailable); got != tt.unavailable {
				t.Errorf("errors.Is(%v, ErrProviderUnavailable) = %v, want %v", err, got, tt.unavailable)
			}
			if !strings.Contains(err.Error(), "upstream says no") {
				t.Errorf("EmbedBatch() error = %v, want body message", err)
			}
		})
	}
}

func TestOllamaProvider_ConnectionRefusedIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := NewOllamaProvider(testConfig(ProviderOllama, url), zerolog.Nop())
	_, err := p.EmbedBatch(context.Background(), []string{"a"})
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("EmbedBatch() error = %v, want ErrProviderUnavailable", err)
	}
}

func TestOpenAIProvider_CanceledIsNotUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewOpenAIProvider(testConfig(ProviderOpenAI, srv.URL), zerolog.Nop())
	_, err := p.EmbedBatch(ctx, []string{"a"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("EmbedBatch() error = %v, want context.Canceled", err)
	}
	if errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("EmbedBatch() error = %v, canceled request reported as outage", err)
	}
}
