// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

/*
Package config loads and validates the Cuecard server configuration.

# Configuration Sources

Values are layered with Koanf v2, later sources overriding earlier ones:
  - Built-in defaults, taken from each component's DefaultConfig
  - An optional YAML file (CONFIG_PATH, ./config.yaml or /etc/cuecard/config.yaml)
  - Environment variables with an explicit name mapping (see envMappings)

# Sections

  - server: HTTP listen address and timeouts
  - logging: zerolog level and format
  - embedding: provider (openai, ollama, gemini), model, rate limit, cache
  - memory: per-show context memory thresholds, decay and persistence
  - voting: ranking weights, voters and candidate limits
  - host_profile: preference learning rate and update interval
  - store: history and profile backend (memory, badger, postgres)
  - insights: DuckDB question insight database
  - events: watermill transport (memory, nats) and retry policy
  - redis: optional shared embedding cache
  - security: CORS origins and rate limiting

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	mgr, err := session.NewManager(cfg.SessionSettings(), gateway, st, logger)

Each *Settings method converts a section into the owning package's Config.
*/
package config
