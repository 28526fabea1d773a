// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package session

import (
	"github.com/tomtom215/cuecard/internal/hostprofile"
	"github.com/tomtom215/cuecard/internal/memory"
	"github.com/tomtom215/cuecard/internal/ranking"
)

// Config bundles the per-show component settings.
type Config struct {
	Memory      memory.Config
	HostProfile hostprofile.Config
	Ranking     ranking.Config
}

// DefaultConfig returns the default settings of every component.
func DefaultConfig() Config {
	return Config{
		Memory:      memory.DefaultConfig(),
		HostProfile: hostprofile.DefaultConfig(),
		Ranking:     ranking.DefaultConfig(),
	}
}

// Validate checks every component configuration.
func (c *Config) Validate() error {
	if err := c.Memory.Validate(); err != nil {
		return err
	}
	if err := c.HostProfile.Validate(); err != nil {
		return err
	}
	return c.Ranking.Validate()
}
