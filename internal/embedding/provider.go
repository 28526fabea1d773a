// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package embedding

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// NewProvider builds the provider selected by cfg.Provider.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewProvider(ctx context.Context, cfg *Config, logger zerolog.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg, logger), nil
	case ProviderOllama:
		return NewOllamaProvider(cfg, logger), nil
	case ProviderGemini:
		return NewGeminiProvider(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("embedding: unknown provider %q", cfg.Provider)
	}
}
