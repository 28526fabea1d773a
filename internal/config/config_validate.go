// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/cuecard/internal/embedding"
	"github.com/tomtom215/cuecard/internal/events"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateLogging,
		c.validateEmbedding,
		c.validateMemory,
		c.validateVoting,
		c.validateHostProfile,
		c.validateStore,
		c.validateEvents,
		c.validateRedis,
		c.validateSecurity,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// validateEmbedding validates the provider settings; the base URL format
// is only checked for HTTP providers.
func (c *Config) validateEmbedding() error {
	ec := c.EmbeddingSettings()
	if err := ec.Validate(); err != nil {
		return err
	}
	if c.Embedding.Provider == embedding.ProviderGemini || c.Embedding.BaseURL == "" {
		return nil
	}
	return validateURL(c.Embedding.BaseURL, "EMBEDDING_BASE_URL", httpSchemes)
}

// validateMemory covers ranges and the threshold ordering
// similarity >= penalty >= novelty boost.
func (c *Config) validateMemory() error {
	mc := c.MemorySettings()
	return mc.Validate()
}

func (c *Config) validateVoting() error {
	rc := c.RankingSettings()
	return rc.Validate()
}

func (c *Config) validateHostProfile() error {
	hc := c.HostProfileSettings()
	return hc.Validate()
}

func (c *Config) validateStore() error {
	sc := c.StoreSettings()
	return sc.Validate()
}

func (c *Config) validateEvents() error {
	ec := c.EventsSettings()
	if err := ec.Validate(); err != nil {
		return err
	}
	if ec.Backend != events.BackendNATS {
		return nil
	}
	return validateURL(ec.NATSURL, "NATS_URL", natsSchemes)
}

func (c *Config) validateRedis() error {
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is required when REDIS_ENABLED=true")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("REDIS_DB must not be negative")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// HasWildcardCORS reports whether any origin is allowed.
func (c *Config) HasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
