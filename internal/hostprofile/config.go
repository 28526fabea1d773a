// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package hostprofile

import (
	"fmt"
	"time"
)

// Config tunes host profile learning.
type Config struct {
	Enabled bool

	// MinQuestionsForProfile is the used-question count at which confidence reaches 0.5.
	MinQuestionsForProfile int

	// LowDataThreshold is the confidence below which fit scoring stays neutral.
	LowDataThreshold float64

	LearningRate   float64
	UpdateInterval time.Duration
}

// DefaultConfig returns the standard learning settings.
func DefaultConfig() Config {
	return Config{
		Enabled:                true,
		MinQuestionsForProfile: 20,
		LowDataThreshold:       0.3,
		LearningRate:           0.1,
		UpdateInterval:         5 * time.Minute,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.MinQuestionsForProfile < 0 {
		return fmt.Errorf("hostprofile: min questions must not be negative, got %d", c.MinQuestionsForProfile)
	}
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		return fmt.Errorf("hostprofile: learning rate must be within (0,1], got %v", c.LearningRate)
	}
	if c.LowDataThreshold < 0 || c.LowDataThreshold > 1 {
		return fmt.Errorf("hostprofile: low data threshold must be within [0,1], got %v", c.LowDataThreshold)
	}
	if c.UpdateInterval <= 0 {
		return fmt.Errorf("hostprofile: update interval must be positive")
	}
	return nil
}
