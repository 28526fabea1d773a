// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package hostprofile

import (
	"strings"

	"github.com/tomtom215/cuecard/internal/models"
)

var (
	openEndedMarkers   = []string{"what do you think", "how do you feel", "tell me about", "can you explain"}
	specificPrefixes   = []string{"did you", "will you", "have you"}
	provocativeMarkers = []string{"why would", "isn't it", "controversial", "disagree"}
	analyticalMarkers  = []string{"analyze", "compare", "evaluate", "relationship between"}
)

// ClassifyStyle assigns a question its rhetorical style. Rules are checked
// in order and the first match wins.
func ClassifyStyle(question string) models.QuestionStyle {
	text := strings.ToLower(question)

	switch {
	case containsAny(text, openEndedMarkers):
		return models.StyleOpenEnded
	case hasAnyPrefix(text, specificPrefixes) || strings.ContainsAny(text, "0123456789"):
		return models.StyleSpecific
	case containsAny(text, provocativeMarkers):
		return models.StyleProvocative
	case containsAny(text, analyticalMarkers):
		return models.StyleAnalytical
	default:
		return models.StyleUnknown
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
