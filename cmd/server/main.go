// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

// Package main is the entry point for the cuecard server.
//
// Cuecard ranks AI generated interview questions for live shows. Each batch
// of candidates is deduplicated, checked against what the show already
// covered, scored for the host's style and returned best first.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Store: history and host profiles in memory, BadgerDB or PostgreSQL with pgvector
//  3. Insights (optional): DuckDB analytics of how hosts use questions
//  4. Embeddings: OpenAI, Ollama or Gemini behind an LRU and optional Redis cache
//  5. Events: Watermill on an in-process channel or NATS
//  6. Sessions: one context memory, host profile and ranking engine per live show
//  7. HTTP Server: REST API, websocket feed and Prometheus metrics
//
// Long running parts run under a suture supervisor tree. Per show flush and
// profile update loops are added when a show starts and removed when it ends.
//
// # Signal Handling
//
// On SIGINT or SIGTERM every active show is ended (memory flushed, profile
// saved) before the supervisor tree is stopped.
//
// # Example Usage
//
//	export EMBEDDING_PROVIDER=openai
//	export OPENAI_API_KEY=sk-...
//	export STORE_BACKEND=badger
//	export BADGER_PATH=/var/lib/cuecard
//	./cuecard
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/cuecard/internal/config"
	"github.com/tomtom215/cuecard/internal/logging"
	"github.com/tomtom215/cuecard/internal/supervisor"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.LoggingSettings())

	logging.Info().
		Str("embedding_provider", cfg.Embedding.Provider).
		Str("store_backend", cfg.Store.Backend).
		Str("events_backend", cfg.Events.Backend).
		Bool("insights_enabled", cfg.Insights.Enabled).
		Msg("Configuration loaded")

	if cfg.HasWildcardCORS() {
		logging.Warn().Msg("CORS allows any origin; set CORS_ORIGINS in production")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	app, err := build(ctx, cfg, tree)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer app.close()

	// Setup signal handling. Shows are ended while the tree still runs so
	// their final flush and profile save complete.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()
		if err := app.sessions.Shutdown(shutdownCtx); err != nil {
			logging.Error().Err(err).Msg("Failed to end active shows")
		}
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
