// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/cuecard/internal/models"
	"github.com/tomtom215/cuecard/internal/validation"
)

// QuestionView is a remembered question without its embedding.
type QuestionView struct {
	ID          string    `json:"id,omitempty"`
	Text        string    `json:"question_text"`
	Timestamp   time.Time `json:"timestamp"`
	Confidence  float64   `json:"confidence"`
	SourceModel string    `json:"source_model"`
	WasUsed     bool      `json:"was_used"`
	TopicTags   []string  `json:"topic_tags,omitempty"`
}

func toQuestionViews(items []models.HistoryItem) []QuestionView {
	views := make([]QuestionView, 0, len(items))
	for i := range items {
		item := &items[i]
		views = append(views, QuestionView{
			ID:          item.ID,
			Text:        item.Text,
			Timestamp:   item.Timestamp,
			Confidence:  item.Confidence,
			SourceModel: item.SourceModel,
			WasUsed:     item.WasUsed,
			TopicTags:   item.TopicTags,
		})
	}
	return views
}

// showIDParam extracts and validates {showID}. It writes a 400 and returns
// false when the id is malformed.
func showIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	showID := chi.URLParam(r, "showID")
	if verr := validation.ValidateIdentifier("show_id", showID); verr != nil {
		apiErr := verr.ToAPIError()
		NewResponseWriter(w, r).ValidationError(apiErr.Message, apiErr.Details)
		return "", false
	}
	return showID, true
}

// StartShow handles POST /api/v1/shows/{showID}/start
func (h *Handler) StartShow(w http.ResponseWriter, r *http.Request) {
	showID, ok := showIDParam(w, r)
	if !ok {
		return
	}
	var req StartShowRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.shows.StartShow(r.Context(), showID, req.HostID, req.HostName)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(result)
}

// RankQuestions handles POST /api/v1/shows/{showID}/rank
func (h *Handler) RankQuestions(w http.ResponseWriter, r *http.Request) {
	showID, ok := showIDParam(w, r)
	if !ok {
		return
	}
	var req RankRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.shows.Rank(r.Context(), showID, req.Candidates)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(result)
}

// MarkUsed handles POST /api/v1/shows/{showID}/used
func (h *Handler) MarkUsed(w http.ResponseWriter, r *http.Request) {
	showID, ok := showIDParam(w, r)
	if !ok {
		return
	}
	var req UsedRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	found, err := h.shows.MarkUsed(r.Context(), showID, req.Text, req.TimeToUseDuration(), req.Engagement)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"show_id": showID,
		"found":   found,
	})
}

// EndShow handles POST /api/v1/shows/{showID}/end
func (h *Handler) EndShow(w http.ResponseWriter, r *http.Request) {
	showID, ok := showIDParam(w, r)
	if !ok {
		return
	}
	if err := h.shows.EndShow(r.Context(), showID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"show_id": showID,
		"ended":   true,
	})
}

// ListShows handles GET /api/v1/shows
func (h *Handler) ListShows(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.shows.ActiveShows())
}

// MemoryStats handles GET /api/v1/shows/{showID}/memory/stats
func (h *Handler) MemoryStats(w http.ResponseWriter, r *http.Request) {
	showID, ok := showIDParam(w, r)
	if !ok {
		return
	}
	stats, err := h.shows.MemoryStats(showID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(stats)
}

// RecentQuestions handles GET /api/v1/shows/{showID}/memory/recent?minutes=N
func (h *Handler) RecentQuestions(w http.ResponseWriter, r *http.Request) {
	showID, ok := showIDParam(w, r)
	if !ok {
		return
	}

	minutes := defaultRecentMinutes
	if raw := r.URL.Query().Get("minutes"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxRecentMinutes {
			NewResponseWriter(w, r).BadRequest("minutes must be an integer between 1 and " + strconv.Itoa(maxRecentMinutes))
			return
		}
		minutes = n
	}

	items, err := h.shows.RecentQuestions(showID, time.Duration(minutes)*time.Minute)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(toQuestionViews(items))
}

// ShowHistory handles GET /api/v1/shows/{showID}/history
func (h *Handler) ShowHistory(w http.ResponseWriter, r *http.Request) {
	showID, ok := showIDParam(w, r)
	if !ok {
		return
	}
	items, err := h.shows.History(showID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(toQuestionViews(items))
}

// ShowFeed handles GET /api/v1/shows/{showID}/feed (websocket upgrade)
func (h *Handler) ShowFeed(w http.ResponseWriter, r *http.Request) {
	showID, ok := showIDParam(w, r)
	if !ok {
		return
	}
	if h.feed == nil {
		NewResponseWriter(w, r).ServiceUnavailable(ErrCodeServiceUnavailable, "Live feed is disabled")
		return
	}
	h.feed.ServeShow(w, r, showID)
}
