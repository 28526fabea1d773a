// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cuecard/internal/insights"
	"github.com/tomtom215/cuecard/internal/memory"
	"github.com/tomtom215/cuecard/internal/models"
	"github.com/tomtom215/cuecard/internal/ranking"
	"github.com/tomtom215/cuecard/internal/session"
)

// fakeShows is an in-memory ShowService.
type fakeShows struct {
	mu        sync.Mutex
	started   map[string]string // showID -> hostID
	ranked    [][]models.Candidate
	used      []string
	timeToUse time.Duration
	rankErr   error
	history   []models.HistoryItem
	recentArg time.Duration
}

func newFakeShows() *fakeShows {
	return &fakeShows{started: make(map[string]string)}
}

func (f *fakeShows) StartShow(_ context.Context, showID, hostID, _ string) (*session.StartResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.started[showID]; ok {
		return nil, session.ErrShowAlreadyStarted
	}
	for _, h := range f.started {
		if h == hostID {
			return nil, session.ErrHostBusy
		}
	}
	f.started[showID] = hostID
	return &session.StartResult{ShowID: showID, HostID: hostID, Profile: models.NewHostProfile(hostID, "", time.Now())}, nil
}

func (f *fakeShows) Rank(_ context.Context, showID string, candidates []models.Candidate) (*ranking.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.started[showID]; !ok {
		return nil, session.ErrShowNotStarted
	}
	if f.rankErr != nil {
		return nil, f.rankErr
	}
	f.ranked = append(f.ranked, candidates)
	result := &ranking.Result{}
	for i := range candidates {
		result.Questions = append(result.Questions, ranking.VotedQuestion{Candidate: candidates[i], FinalScore: 1 - float64(i)*0.1})
	}
	result.Metadata.TotalGenerated = len(candidates)
	return result, nil
}

func (f *fakeShows) MarkUsed(_ context.Context, showID, text string, timeToUse time.Duration, _ *models.EngagementSample) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.started[showID]; !ok {
		return false, session.ErrShowNotStarted
	}
	f.used = append(f.used, text)
	f.timeToUse = timeToUse
	return text == "known", nil
}

func (f *fakeShows) EndShow(_ context.Context, showID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.started[showID]; !ok {
		return session.ErrShowNotStarted
	}
	delete(f.started, showID)
	return nil
}

func (f *fakeShows) ActiveShows() []session.Summary {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]session.Summary, 0, len(f.started))
	for showID, hostID := range f.started {
		out = append(out, session.Summary{ShowID: showID, HostID: hostID})
	}
	return out
}

func (f *fakeShows) MemoryStats(showID string) (memory.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.started[showID]; !ok {
		return memory.Stats{}, session.ErrShowNotStarted
	}
	return memory.Stats{ShowID: showID, TotalQuestions: len(f.history)}, nil
}

func (f *fakeShows) RecentQuestions(showID string, d time.Duration) ([]models.HistoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.started[showID]; !ok {
		return nil, session.ErrShowNotStarted
	}
	f.recentArg = d
	return f.history, nil
}

func (f *fakeShows) History(showID string) ([]models.HistoryItem, error) {
	return f.RecentQuestions(showID, 0)
}

func (f *fakeShows) HostProfile(_ context.Context, hostID string) (*session.ProfileView, error) {
	if hostID == "missing" {
		return nil, errors.New("boom")
	}
	return &session.ProfileView{Profile: models.NewHostProfile(hostID, "", time.Now())}, nil
}

type fakeInsights struct {
	limit int
}

func (f *fakeInsights) Summary(_ context.Context, hostID string, topicLimit int) (*insights.HostSummary, error) {
	f.limit = topicLimit
	return &insights.HostSummary{HostID: hostID, Generated: 3, Used: 1}, nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func testRouter(t *testing.T, shows ShowService, opts ...HandlerOption) http.Handler {
	t.Helper()
	cfg := DefaultRouterConfig()
	cfg.RateLimitDisabled = true
	return NewRouter(NewHandler(shows, opts...), cfg, zerolog.Nop())
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp APIResponse
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to unmarshal response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, resp
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
