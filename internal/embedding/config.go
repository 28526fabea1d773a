// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package embedding

import (
	"fmt"
	"time"
)

// Supported providers.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// Config selects and tunes the embedding provider.
type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration

	// MaxBatchSize caps the texts sent in one provider request.
	MaxBatchSize int

	// RequestsPerSecond and Burst bound outbound provider traffic.
	RequestsPerSecond float64
	Burst             int

	CacheSize int
	// RemoteCacheTTL applies to the shared Redis layer when enabled.
	RemoteCacheTTL time.Duration
}

// DefaultConfig returns OpenAI text-embedding-3-small settings.
func DefaultConfig() Config {
	return Config{
		Provider:          ProviderOpenAI,
		Model:             "text-embedding-3-small",
		BaseURL:           "https://api.openai.com/v1",
		Timeout:           30 * time.Second,
		MaxBatchSize:      100,
		RequestsPerSecond: 5,
		Burst:             10,
		CacheSize:         DefaultCacheSize,
		RemoteCacheTTL:    7 * 24 * time.Hour,
	}
}

// Validate checks the configuration for the selected provider.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderGemini:
		if c.APIKey == "" {
			return fmt.Errorf("embedding: api key is required for provider %q", c.Provider)
		}
	case ProviderOllama:
		if c.BaseURL == "" {
			return fmt.Errorf("embedding: base url is required for provider %q", c.Provider)
		}
	default:
		return fmt.Errorf("embedding: unknown provider %q (want openai, ollama or gemini)", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("embedding: model is required")
	}
	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("embedding: max batch size must be positive, got %d", c.MaxBatchSize)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("embedding: cache size must be positive, got %d", c.CacheSize)
	}
	if c.RequestsPerSecond < 0 || c.Burst < 0 {
		return fmt.Errorf("embedding: rate limit must not be negative")
	}
	return nil
}
