// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/cuecard/internal/embedding"
	"github.com/tomtom215/cuecard/internal/events"
	"github.com/tomtom215/cuecard/internal/hostprofile"
	"github.com/tomtom215/cuecard/internal/insights"
	"github.com/tomtom215/cuecard/internal/memory"
	"github.com/tomtom215/cuecard/internal/ranking"
	"github.com/tomtom215/cuecard/internal/store"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cuecard/config.yaml",
	"/etc/cuecard/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig mirrors the DefaultConfig of every component so a config
// file only needs to name what it changes.
func defaultConfig() *Config {
	emb := embedding.DefaultConfig()
	mem := memory.DefaultConfig()
	rank := ranking.DefaultConfig()
	prof := hostprofile.DefaultConfig()
	st := store.DefaultConfig()
	ins := insights.DefaultConfig()
	ev := events.DefaultConfig()

	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Embedding: EmbeddingConfig{
			Provider:          emb.Provider,
			Model:             emb.Model,
			BaseURL:           emb.BaseURL,
			Timeout:           emb.Timeout,
			MaxBatchSize:      emb.MaxBatchSize,
			RequestsPerSecond: emb.RequestsPerSecond,
			Burst:             emb.Burst,
			CacheSize:         emb.CacheSize,
			RemoteCacheTTL:    emb.RemoteCacheTTL,
		},
		Memory: MemoryConfig{
			Enabled:               mem.Enabled,
			MaxCacheSize:          mem.MaxCacheSize,
			SimilarityThreshold:   mem.SimilarityThreshold,
			PenaltyThreshold:      mem.PenaltyThreshold,
			NoveltyBoostThreshold: mem.NoveltyBoostThreshold,
			TemporalDecayHalfLife: mem.TemporalDecayHalfLife,
			RecentWindow:          mem.RecentWindow,
			ExplorationBonus:      mem.ExplorationBonus,
			ExplorationThreshold:  mem.ExplorationThreshold,
			PersistToStore:        mem.PersistToStore,
			PersistenceInterval:   mem.PersistenceInterval,
			RetentionDays:         mem.RetentionDays,
		},
		Voting: VotingConfig{
			SimilarityThreshold: rank.SimilarityThreshold,
			TopK:                rank.TopK,
			BaseWeights:         weightsConfig(rank.BaseWeights),
			HostWeights:         weightsConfig(rank.HostWeights),
			DefaultNovelty:      rank.DefaultNovelty,
			DefaultHostFit:      rank.DefaultHostFit,
			QualitySeed:         rank.QualitySeed,
			QualityVariance:     rank.QualityVariance,
			Voters:              rank.Voters,
			MaxCandidates:       rank.MaxCandidates,
		},
		HostProfile: HostProfileConfig{
			Enabled:                prof.Enabled,
			MinQuestionsForProfile: prof.MinQuestionsForProfile,
			LowDataThreshold:       prof.LowDataThreshold,
			LearningRate:           prof.LearningRate,
			UpdateInterval:         prof.UpdateInterval,
		},
		Store: StoreConfig{
			Backend:            st.Backend,
			Retention:          st.Retention,
			BadgerPath:         st.Badger.Path,
			BadgerSyncWrites:   st.Badger.SyncWrites,
			BadgerCompression:  st.Badger.Compression,
			BadgerGCInterval:   st.Badger.GCInterval,
			BadgerGCRatio:      st.Badger.GCRatio,
			PostgresMaxConns:   st.Postgres.MaxConns,
			PostgresDimensions: st.Postgres.Dimensions,
		},
		Insights: InsightsConfig{
			Enabled:   ins.Enabled,
			Path:      ins.Path,
			MaxMemory: ins.MaxMemory,
		},
		Events: EventsConfig{
			Backend:              ev.Backend,
			NATSURL:              ev.NATSURL,
			QueueGroup:           ev.QueueGroup,
			MaxReconnects:        ev.MaxReconnects,
			ReconnectWait:        ev.ReconnectWait,
			BufferSize:           ev.BufferSize,
			CloseTimeout:         ev.CloseTimeout,
			RetryMaxRetries:      ev.RetryMaxRetries,
			RetryInitialInterval: ev.RetryInitialInterval,
			RetryMaxInterval:     ev.RetryMaxInterval,
			RetryMultiplier:      ev.RetryMultiplier,
			PoisonQueueTopic:     ev.PoisonQueueTopic,
		},
		Redis: RedisConfig{
			Addr: "127.0.0.1:6379",
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   300,
			RateLimitWindow: time.Minute,
		},
	}
}

func weightsConfig(w ranking.Weights) WeightsConfig {
	return WeightsConfig{Quality: w.Quality, Diversity: w.Diversity, Novelty: w.Novelty, HostFit: w.HostFit}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in values
//  2. Config File: optional YAML file
//  3. Environment Variables: override any mapped setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file, or "" if none.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
	"voting.voters",
}

// processSliceFields converts comma-separated env strings to slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	"http_host":               "server.host",
	"http_port":               "server.port",
	"http_read_timeout":       "server.read_timeout",
	"http_write_timeout":      "server.write_timeout",
	"http_idle_timeout":       "server.idle_timeout",
	"http_request_timeout":    "server.request_timeout",
	"http_shutdown_timeout":   "server.shutdown_timeout",
	"log_level":               "logging.level",
	"log_format":              "logging.format",
	"log_caller":              "logging.caller",
	"embedding_provider":      "embedding.provider",
	"embedding_model":         "embedding.model",
	"embedding_api_key":       "embedding.api_key",
	"openai_api_key":          "embedding.api_key",
	"embedding_base_url":      "embedding.base_url",
	"embedding_timeout":       "embedding.timeout",
	"embedding_batch_size":    "embedding.max_batch_size",
	"embedding_rps":           "embedding.requests_per_second",
	"embedding_burst":         "embedding.burst",
	"embedding_cache_size":    "embedding.cache_size",
	"embedding_redis_ttl":     "embedding.remote_cache_ttl",
	"memory_enabled":          "memory.enabled",
	"memory_max_cache_size":   "memory.max_cache_size",
	"memory_similarity":       "memory.similarity_threshold",
	"memory_penalty":          "memory.penalty_threshold",
	"memory_novelty_boost":    "memory.novelty_boost_threshold",
	"memory_decay_half_life":  "memory.temporal_decay_half_life",
	"memory_recent_window":    "memory.recent_window",
	"memory_exploration":      "memory.exploration_bonus",
	"memory_persist":          "memory.persist_to_store",
	"memory_persist_interval": "memory.persistence_interval",
	"memory_retention_days":   "memory.retention_days",
	"voting_similarity":       "voting.similarity_threshold",
	"voting_top_k":            "voting.top_k",
	"voting_seed":             "voting.quality_seed",
	"voting_variance":         "voting.quality_variance",
	"voting_voters":           "voting.voters",
	"voting_max_candidates":   "voting.max_candidates",
	"host_profile_enabled":    "host_profile.enabled",
	"host_profile_min_qs":     "host_profile.min_questions_for_profile",
	"host_profile_low_data":   "host_profile.low_data_threshold",
	"host_profile_lr":         "host_profile.learning_rate",
	"host_profile_interval":   "host_profile.update_interval",
	"store_backend":           "store.backend",
	"store_retention":         "store.retention",
	"badger_path":             "store.badger_path",
	"badger_in_memory":        "store.badger_in_memory",
	"badger_gc_interval":      "store.badger_gc_interval",
	"postgres_dsn":            "store.postgres_dsn",
	"postgres_max_conns":      "store.postgres_max_conns",
	"postgres_dimensions":     "store.postgres_dimensions",
	"insights_enabled":        "insights.enabled",
	"insights_path":           "insights.path",
	"insights_threads":        "insights.threads",
	"insights_max_memory":     "insights.max_memory",
	"events_backend":          "events.backend",
	"nats_url":                "events.nats_url",
	"nats_queue_group":        "events.queue_group",
	"events_retry_max":        "events.retry_max_retries",
	"events_poison_topic":     "events.poison_queue_topic",
	"redis_enabled":           "redis.enabled",
	"redis_addr":              "redis.addr",
	"redis_password":          "redis.password",
	"redis_db":                "redis.db",
	"cors_origins":            "security.cors_origins",
	"rate_limit_requests":     "security.rate_limit_requests",
	"rate_limit_window":       "security.rate_limit_window",
	"disable_rate_limit":      "security.rate_limit_disabled",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Returns "" for unmapped names so unrelated variables never reach the config.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
