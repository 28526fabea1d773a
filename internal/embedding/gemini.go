// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// GeminiProvider embeds text with the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
	guard  *guard
}

// NewGeminiProvider creates a Gemini embedding provider.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewGeminiProvider(ctx context.Context, cfg *Config, logger zerolog.Logger) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiProvider{
		client: client,
		model:  cfg.Model,
		guard:  newGuard(ProviderGemini, cfg, logger),
	}, nil
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string { return ProviderGemini }

// EmbedBatch embeds all texts of a chunk in one EmbedContent call.
func (p *GeminiProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return p.guard.run(ctx, texts, p.embed)
}

func (p *GeminiProvider) embed(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = &genai.Content{Parts: []*genai.Part{{Text: t}}}
	}

	res, err := p.client.Models.EmbedContent(ctx, p.model, contents, &genai.EmbedContentConfig{
		TaskType: "SEMANTIC_SIMILARITY",
	})
	if err != nil {
		return nil, geminiError(ctx, err)
	}
	if len(res.Embeddings) == 0 {
		return nil, ErrEmptyResponse
	}

	out := make([][]float32, len(res.Embeddings))
	for i, e := range res.Embeddings {
		out[i] = e.Values
	}
	return out, nil
}

// geminiError maps API replies through statusError; anything without a
// reply code is a transport failure.
func geminiError(ctx context.Context, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %w", statusError("gemini", apiErr.Code, apiErr.Message), err)
	}
	return transportError(ctx, "gemini", err)
}
