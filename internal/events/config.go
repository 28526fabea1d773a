// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package events

import (
	"fmt"
	"time"
)

// Supported transports.
const (
	BackendMemory = "memory"
	BackendNATS   = "nats"
)

// Config selects the transport and tunes the router.
type Config struct {
	Backend string

	// NATS transport
	NATSURL       string
	QueueGroup    string
	MaxReconnects int
	ReconnectWait time.Duration

	// In-process transport
	BufferSize int64

	// Router
	CloseTimeout         time.Duration
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64
	PoisonQueueTopic     string
}

// DefaultConfig uses the in-process transport.
func DefaultConfig() Config {
	return Config{
		Backend:              BackendMemory,
		NATSURL:              "nats://127.0.0.1:4222",
		QueueGroup:           "cuecard",
		MaxReconnects:        -1,
		ReconnectWait:        2 * time.Second,
		BufferSize:           256,
		CloseTimeout:         30 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
		RetryMaxInterval:     5 * time.Second,
		RetryMultiplier:      2.0,
		PoisonQueueTopic:     "cuecard.dlq",
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory:
	case BackendNATS:
		if c.NATSURL == "" {
			return fmt.Errorf("events: nats url is required")
		}
	default:
		return fmt.Errorf("events: unknown backend %q", c.Backend)
	}
	if c.RetryMaxRetries < 0 {
		return fmt.Errorf("events: retry max retries must not be negative")
	}
	if c.CloseTimeout <= 0 {
		return fmt.Errorf("events: close timeout must be positive")
	}
	return nil
}
