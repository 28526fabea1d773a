// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/cuecard/internal/insights"
	"github.com/tomtom215/cuecard/internal/memory"
	"github.com/tomtom215/cuecard/internal/models"
	"github.com/tomtom215/cuecard/internal/ranking"
	"github.com/tomtom215/cuecard/internal/session"
)

// ShowService runs live shows. Satisfied by *session.Manager.
type ShowService interface {
	StartShow(ctx context.Context, showID, hostID, hostName string) (*session.StartResult, error)
	Rank(ctx context.Context, showID string, candidates []models.Candidate) (*ranking.Result, error)
	MarkUsed(ctx context.Context, showID, text string, timeToUse time.Duration, engagement *models.EngagementSample) (bool, error)
	EndShow(ctx context.Context, showID string) error
	ActiveShows() []session.Summary
	MemoryStats(showID string) (memory.Stats, error)
	RecentQuestions(showID string, d time.Duration) ([]models.HistoryItem, error)
	History(showID string) ([]models.HistoryItem, error)
	HostProfile(ctx context.Context, hostID string) (*session.ProfileView, error)
}

// InsightReader answers host analytics. Satisfied by *insights.Store.
type InsightReader interface {
	Summary(ctx context.Context, hostID string, topicLimit int) (*insights.HostSummary, error)
}

// FeedServer upgrades a request to the show's live feed. Satisfied by *feed.Handler.
type FeedServer interface {
	ServeShow(w http.ResponseWriter, r *http.Request, showID string)
}

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers_shows.go: show lifecycle, ranking, memory views and the live feed
//   - handlers_hosts.go: host profiles and insights
//   - handlers_health.go: liveness and readiness probes
type Handler struct {
	shows     ShowService
	insights  InsightReader
	feed      FeedServer
	checks    map[string]Pinger
	startTime time.Time
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithInsights enables GET /hosts/{hostID}/insights.
func WithInsights(r InsightReader) HandlerOption {
	return func(h *Handler) { h.insights = r }
}

// WithFeed enables the websocket feed.
func WithFeed(f FeedServer) HandlerOption {
	return func(h *Handler) { h.feed = f }
}

// WithReadinessCheck adds a named dependency to the readiness probe.
func WithReadinessCheck(name string, p Pinger) HandlerOption {
	return func(h *Handler) { h.checks[name] = p }
}

// NewHandler creates the API handler.
func NewHandler(shows ShowService, opts ...HandlerOption) *Handler {
	h := &Handler{
		shows:     shows,
		checks:    make(map[string]Pinger),
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}
