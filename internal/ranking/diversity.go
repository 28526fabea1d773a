// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package ranking

import (
	"strings"
	"unicode"
)

// Tokenize lowercases text, drops everything except ASCII word characters
// and whitespace, and returns the set of remaining words.
func Tokenize(text string) map[string]struct{} {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, text)

	words := strings.Fields(cleaned)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Jaccard returns |a∩b| / |a∪b|. Two empty sets have similarity 0.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// DiversityScores returns, per text, the mean Jaccard distance to every other
// text in the batch. A single text scores 1.
func DiversityScores(texts []string) []float64 {
	scores := make([]float64, len(texts))
	if len(texts) == 1 {
		scores[0] = 1
		return scores
	}

	sets := make([]map[string]struct{}, len(texts))
	for i, t := range texts {
		sets[i] = Tokenize(t)
	}
	for i := range sets {
		var total float64
		for j := range sets {
			if i == j {
				continue
			}
			total += 1 - Jaccard(sets[i], sets[j])
		}
		scores[i] = total / float64(len(texts)-1)
	}
	return scores
}
