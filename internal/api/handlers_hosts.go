// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/cuecard/internal/validation"
)

const (
	defaultInsightTopics = 10
	maxInsightTopics     = 100
)

func hostIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	hostID := chi.URLParam(r, "hostID")
	if verr := validation.ValidateIdentifier("host_id", hostID); verr != nil {
		apiErr := verr.ToAPIError()
		NewResponseWriter(w, r).ValidationError(apiErr.Message, apiErr.Details)
		return "", false
	}
	return hostID, true
}

// HostProfile handles GET /api/v1/hosts/{hostID}/profile
func (h *Handler) HostProfile(w http.ResponseWriter, r *http.Request) {
	hostID, ok := hostIDParam(w, r)
	if !ok {
		return
	}
	view, err := h.shows.HostProfile(r.Context(), hostID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(view)
}

// HostInsights handles GET /api/v1/hosts/{hostID}/insights?topics=N
func (h *Handler) HostInsights(w http.ResponseWriter, r *http.Request) {
	hostID, ok := hostIDParam(w, r)
	if !ok {
		return
	}
	if h.insights == nil {
		NewResponseWriter(w, r).ServiceUnavailable(ErrCodeServiceUnavailable, "Insights are disabled")
		return
	}

	topics := defaultInsightTopics
	if raw := r.URL.Query().Get("topics"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxInsightTopics {
			NewResponseWriter(w, r).BadRequest("topics must be an integer between 1 and " + strconv.Itoa(maxInsightTopics))
			return
		}
		topics = n
	}

	summary, err := h.insights.Summary(r.Context(), hostID, topics)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(summary)
}
