// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package models

import "strings"

const (
	// DefaultConfidence is used when a generator did not report a confidence.
	DefaultConfidence = 0.7

	// DefaultComplexity is used when a generator did not report a complexity.
	DefaultComplexity = 0.5
)

// Candidate is one generated question awaiting ranking.
// Candidates are immutable once generated.
type Candidate struct {
	Text              string   `json:"question_text" validate:"required,max=2000"`
	Confidence        *float64 `json:"confidence,omitempty" validate:"omitempty,min=0,max=1"`
	Reasoning         string   `json:"reasoning,omitempty"`
	ContextSummary    string   `json:"context_summary,omitempty"`
	ExpectedDirection string   `json:"expected_direction,omitempty"`
	Topic             string   `json:"topic,omitempty" validate:"omitempty,max=100"`
	Complexity        *float64 `json:"complexity,omitempty" validate:"omitempty,min=0,max=1"`
	SourceModel       string   `json:"source_model,omitempty" validate:"omitempty,max=100"`
}

// ConfidenceOrDefault returns the generator confidence, or DefaultConfidence when absent.
//
//nolint:gocritic // value receiver keeps Candidate immutable
func (c Candidate) ConfidenceOrDefault() float64 {
	if c.Confidence == nil {
		return DefaultConfidence
	}
	return *c.Confidence
}

// ComplexityOrDefault returns the reported complexity, or DefaultComplexity when absent.
//
//nolint:gocritic // value receiver keeps Candidate immutable
func (c Candidate) ComplexityOrDefault() float64 {
	if c.Complexity == nil {
		return DefaultComplexity
	}
	return *c.Complexity
}

// WordCount returns the number of whitespace separated words in the question.
//
//nolint:gocritic // value receiver keeps Candidate immutable
func (c Candidate) WordCount() int {
	return len(strings.Fields(c.Text))
}

// Float returns a pointer to v. Handy for optional candidate fields.
func Float(v float64) *float64 {
	return &v
}
