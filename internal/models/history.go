// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package models

import "time"

// HistoryItem is a question previously surfaced during a show.
// Items are owned by a show's context memory; only WasUsed changes after creation.
// An empty ID means the item has not been written to the history store yet.
type HistoryItem struct {
	ID          string    `json:"id,omitempty"`
	ShowID      string    `json:"show_id,omitempty"`
	Text        string    `json:"question_text"`
	Embedding   []float32 `json:"embedding"`
	Timestamp   time.Time `json:"timestamp"`
	Confidence  float64   `json:"confidence"`
	SourceModel string    `json:"source_model"`
	WasUsed     bool      `json:"was_used"`
	TopicTags   []string  `json:"topic_tags,omitempty"`
}

// Persisted reports whether the item has been written to the history store.
func (h *HistoryItem) Persisted() bool {
	return h.ID != ""
}

// AgeMinutes returns the item's age relative to now in fractional minutes.
func (h *HistoryItem) AgeMinutes(now time.Time) float64 {
	return now.Sub(h.Timestamp).Minutes()
}

// Clone returns a deep copy of the item.
func (h *HistoryItem) Clone() HistoryItem {
	c := *h
	if h.Embedding != nil {
		c.Embedding = make([]float32, len(h.Embedding))
		copy(c.Embedding, h.Embedding)
	}
	if h.TopicTags != nil {
		c.TopicTags = append([]string(nil), h.TopicTags...)
	}
	return c
}
