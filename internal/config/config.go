// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package config

import (
	"net"
	"strconv"
	"time"

	"github.com/tomtom215/cuecard/internal/embedding"
	"github.com/tomtom215/cuecard/internal/events"
	"github.com/tomtom215/cuecard/internal/hostprofile"
	"github.com/tomtom215/cuecard/internal/insights"
	"github.com/tomtom215/cuecard/internal/logging"
	"github.com/tomtom215/cuecard/internal/memory"
	"github.com/tomtom215/cuecard/internal/ranking"
	"github.com/tomtom215/cuecard/internal/session"
	"github.com/tomtom215/cuecard/internal/store"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values matching each component's DefaultConfig
//  2. Config File: optional YAML file (config.yaml, or CONFIG_PATH)
//  3. Environment Variables: override any mapped setting
//
// Config is immutable after Load() and safe for concurrent reads.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Logging     LoggingConfig     `koanf:"logging"`
	Embedding   EmbeddingConfig   `koanf:"embedding"`
	Memory      MemoryConfig      `koanf:"memory"`
	Voting      VotingConfig      `koanf:"voting"`
	HostProfile HostProfileConfig `koanf:"host_profile"`
	Store       StoreConfig       `koanf:"store"`
	Insights    InsightsConfig    `koanf:"insights"`
	Events      EventsConfig      `koanf:"events"`
	Redis       RedisConfig       `koanf:"redis"`
	Security    SecurityConfig    `koanf:"security"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // trace, debug, info, warn, error
	Format string `koanf:"format"` // json, console
	Caller bool   `koanf:"caller"`
}

// EmbeddingConfig selects and tunes the embedding provider.
type EmbeddingConfig struct {
	Provider          string        `koanf:"provider"` // openai, ollama, gemini
	Model             string        `koanf:"model"`
	APIKey            string        `koanf:"api_key"`
	BaseURL           string        `koanf:"base_url"`
	Timeout           time.Duration `koanf:"timeout"`
	MaxBatchSize      int           `koanf:"max_batch_size"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
	CacheSize         int           `koanf:"cache_size"`
	RemoteCacheTTL    time.Duration `koanf:"remote_cache_ttl"`
}

// MemoryConfig tunes the per-show context memory.
type MemoryConfig struct {
	Enabled               bool          `koanf:"enabled"`
	MaxCacheSize          int           `koanf:"max_cache_size"`
	SimilarityThreshold   float64       `koanf:"similarity_threshold"`
	PenaltyThreshold      float64       `koanf:"penalty_threshold"`
	NoveltyBoostThreshold float64       `koanf:"novelty_boost_threshold"`
	TemporalDecayHalfLife time.Duration `koanf:"temporal_decay_half_life"`
	RecentWindow          time.Duration `koanf:"recent_window"`
	ExplorationBonus      float64       `koanf:"exploration_bonus"`
	ExplorationThreshold  float64       `koanf:"exploration_threshold"`
	PersistToStore        bool          `koanf:"persist_to_store"`
	PersistenceInterval   time.Duration `koanf:"persistence_interval"`
	RetentionDays         int           `koanf:"retention_days"`
}

// WeightsConfig is one set of score weights.
type WeightsConfig struct {
	Quality   float64 `koanf:"quality"`
	Diversity float64 `koanf:"diversity"`
	Novelty   float64 `koanf:"novelty"`
	HostFit   float64 `koanf:"host_fit"`
}

// VotingConfig tunes the ranking engine.
type VotingConfig struct {
	SimilarityThreshold float64       `koanf:"similarity_threshold"`
	TopK                int           `koanf:"top_k"`
	BaseWeights         WeightsConfig `koanf:"base_weights"`
	HostWeights         WeightsConfig `koanf:"host_weights"`
	DefaultNovelty      float64       `koanf:"default_novelty"`
	DefaultHostFit      float64       `koanf:"default_host_fit"`
	QualitySeed         int64         `koanf:"quality_seed"`
	QualityVariance     float64       `koanf:"quality_variance"`
	Voters              []string      `koanf:"voters"`
	MaxCandidates       int           `koanf:"max_candidates"`
}

// HostProfileConfig tunes host preference learning.
type HostProfileConfig struct {
	Enabled                bool          `koanf:"enabled"`
	MinQuestionsForProfile int           `koanf:"min_questions_for_profile"`
	LowDataThreshold       float64       `koanf:"low_data_threshold"`
	LearningRate           float64       `koanf:"learning_rate"`
	UpdateInterval         time.Duration `koanf:"update_interval"`
}

// StoreConfig selects the history and profile store.
type StoreConfig struct {
	Backend   string        `koanf:"backend"` // memory, badger, postgres
	Retention time.Duration `koanf:"retention"`

	BadgerPath        string        `koanf:"badger_path"`
	BadgerInMemory    bool          `koanf:"badger_in_memory"`
	BadgerSyncWrites  bool          `koanf:"badger_sync_writes"`
	BadgerCompression bool          `koanf:"badger_compression"`
	BadgerGCInterval  time.Duration `koanf:"badger_gc_interval"`
	BadgerGCRatio     float64       `koanf:"badger_gc_ratio"`

	PostgresDSN        string `koanf:"postgres_dsn"`
	PostgresMaxConns   int32  `koanf:"postgres_max_conns"`
	PostgresDimensions int    `koanf:"postgres_dimensions"`
}

// InsightsConfig configures the DuckDB question insight store.
type InsightsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Path      string `koanf:"path"`
	Threads   int    `koanf:"threads"`
	MaxMemory string `koanf:"max_memory"`
}

// EventsConfig selects the event transport and router retry policy.
type EventsConfig struct {
	Backend              string        `koanf:"backend"` // memory, nats
	NATSURL              string        `koanf:"nats_url"`
	QueueGroup           string        `koanf:"queue_group"`
	MaxReconnects        int           `koanf:"max_reconnects"`
	ReconnectWait        time.Duration `koanf:"reconnect_wait"`
	BufferSize           int64         `koanf:"buffer_size"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`
	RetryMaxRetries      int           `koanf:"retry_max_retries"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	RetryMaxInterval     time.Duration `koanf:"retry_max_interval"`
	RetryMultiplier      float64       `koanf:"retry_multiplier"`
	PoisonQueueTopic     string        `koanf:"poison_queue_topic"`
}

// RedisConfig configures the shared embedding cache. Optional.
type RedisConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// Load reads configuration from defaults, an optional config file and
// environment variables, in that order. See LoadWithKoanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// LoggingSettings converts the section for logging.Init.
func (c *Config) LoggingSettings() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = c.Logging.Level
	lc.Format = c.Logging.Format
	lc.Caller = c.Logging.Caller
	return lc
}

// EmbeddingSettings converts the section for the embedding package.
func (c *Config) EmbeddingSettings() embedding.Config {
	e := c.Embedding
	return embedding.Config{
		Provider:          e.Provider,
		Model:             e.Model,
		APIKey:            e.APIKey,
		BaseURL:           e.BaseURL,
		Timeout:           e.Timeout,
		MaxBatchSize:      e.MaxBatchSize,
		RequestsPerSecond: e.RequestsPerSecond,
		Burst:             e.Burst,
		CacheSize:         e.CacheSize,
		RemoteCacheTTL:    e.RemoteCacheTTL,
	}
}

// MemorySettings converts the section for the memory package.
func (c *Config) MemorySettings() memory.Config {
	m := c.Memory
	return memory.Config{
		Enabled:               m.Enabled,
		MaxCacheSize:          m.MaxCacheSize,
		SimilarityThreshold:   m.SimilarityThreshold,
		PenaltyThreshold:      m.PenaltyThreshold,
		NoveltyBoostThreshold: m.NoveltyBoostThreshold,
		TemporalDecayHalfLife: m.TemporalDecayHalfLife,
		RecentWindow:          m.RecentWindow,
		ExplorationBonus:      m.ExplorationBonus,
		ExplorationThreshold:  m.ExplorationThreshold,
		PersistToStore:        m.PersistToStore,
		PersistenceInterval:   m.PersistenceInterval,
		RetentionDays:         m.RetentionDays,
	}
}

func (w WeightsConfig) weights() ranking.Weights {
	return ranking.Weights{Quality: w.Quality, Diversity: w.Diversity, Novelty: w.Novelty, HostFit: w.HostFit}
}

// RankingSettings converts the voting section for the ranking package.
func (c *Config) RankingSettings() ranking.Config {
	v := c.Voting
	return ranking.Config{
		SimilarityThreshold: v.SimilarityThreshold,
		TopK:                v.TopK,
		BaseWeights:         v.BaseWeights.weights(),
		HostWeights:         v.HostWeights.weights(),
		DefaultNovelty:      v.DefaultNovelty,
		DefaultHostFit:      v.DefaultHostFit,
		QualitySeed:         v.QualitySeed,
		QualityVariance:     v.QualityVariance,
		Voters:              append([]string(nil), v.Voters...),
		MaxCandidates:       v.MaxCandidates,
	}
}

// HostProfileSettings converts the section for the hostprofile package.
func (c *Config) HostProfileSettings() hostprofile.Config {
	h := c.HostProfile
	return hostprofile.Config{
		Enabled:                h.Enabled,
		MinQuestionsForProfile: h.MinQuestionsForProfile,
		LowDataThreshold:       h.LowDataThreshold,
		LearningRate:           h.LearningRate,
		UpdateInterval:         h.UpdateInterval,
	}
}

// SessionSettings bundles the per-show component settings.
func (c *Config) SessionSettings() session.Config {
	return session.Config{
		Memory:      c.MemorySettings(),
		HostProfile: c.HostProfileSettings(),
		Ranking:     c.RankingSettings(),
	}
}

// StoreSettings converts the section for store.Open.
func (c *Config) StoreSettings() store.Config {
	s := c.Store
	return store.Config{
		Backend:   s.Backend,
		Retention: s.Retention,
		Badger: store.BadgerConfig{
			Path:        s.BadgerPath,
			InMemory:    s.BadgerInMemory,
			SyncWrites:  s.BadgerSyncWrites,
			Compression: s.BadgerCompression,
			GCInterval:  s.BadgerGCInterval,
			GCRatio:     s.BadgerGCRatio,
		},
		Postgres: store.PostgresConfig{
			DSN:        s.PostgresDSN,
			MaxConns:   s.PostgresMaxConns,
			Dimensions: s.PostgresDimensions,
		},
	}
}

// InsightsSettings converts the section for insights.Open.
func (c *Config) InsightsSettings() insights.Config {
	return insights.Config{
		Enabled:   c.Insights.Enabled,
		Path:      c.Insights.Path,
		Threads:   c.Insights.Threads,
		MaxMemory: c.Insights.MaxMemory,
	}
}

// EventsSettings converts the section for the events package.
func (c *Config) EventsSettings() events.Config {
	e := c.Events
	return events.Config{
		Backend:              e.Backend,
		NATSURL:              e.NATSURL,
		QueueGroup:           e.QueueGroup,
		MaxReconnects:        e.MaxReconnects,
		ReconnectWait:        e.ReconnectWait,
		BufferSize:           e.BufferSize,
		CloseTimeout:         e.CloseTimeout,
		RetryMaxRetries:      e.RetryMaxRetries,
		RetryInitialInterval: e.RetryInitialInterval,
		RetryMaxInterval:     e.RetryMaxInterval,
		RetryMultiplier:      e.RetryMultiplier,
		PoisonQueueTopic:     e.PoisonQueueTopic,
	}
}

// Addr returns the HTTP listen address.
func (s *ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
