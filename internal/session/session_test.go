// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/cuecard/internal/embedding"
	"github.com/tomtom215/cuecard/internal/events"
	"github.com/tomtom215/cuecard/internal/models"
	"github.com/tomtom215/cuecard/internal/store"
)

const dims = 32

// fakeGateway gives every distinct text its own orthogonal axis.
type fakeGateway struct {
	mu      sync.Mutex
	vectors map[string][]float32
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{vectors: make(map[string][]float32)}
}

func (g *fakeGateway) Embed(ctx context.Context, text string) ([]float32, error) {
	v, err := g.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return v[0], nil
}

func (g *fakeGateway) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := g.vectors[t]
		if !ok {
			v = make([]float32, dims)
			v[len(g.vectors)%dims] = 1
			g.vectors[t] = v
		}
		out[i] = v
	}
	return out, nil
}

func (g *fakeGateway) Similarity(a, b []float32) (float64, error) {
	return embedding.Cosine(a, b)
}

type recordingPublisher struct {
	mu     sync.Mutex
	used   []*events.QuestionUsedEvent
	ranked []*events.QuestionsRankedEvent
	err    error
}

func (p *recordingPublisher) PublishQuestionUsed(_ context.Context, e *events.QuestionUsedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.used = append(p.used, e)
	return nil
}

func (p *recordingPublisher) PublishQuestionsRanked(_ context.Context, e *events.QuestionsRankedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.ranked = append(p.ranked, e)
	return nil
}

type fakeSupervisor struct {
	mu      sync.Mutex
	added   map[string][]string
	removed []string
}

func (s *fakeSupervisor) AddShow(showID, _ string, svcs ...suture.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.added == nil {
		s.added = make(map[string][]string)
	}
	for _, svc := range svcs {
		s.added[showID] = append(s.added[showID], fmt.Sprint(svc))
	}
	return nil
}

func (s *fakeSupervisor) RemoveShow(showID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, showID)
	return nil
}

type endRecorder struct{ ended []string }

func (r *endRecorder) NotifyShowEnded(showID string) { r.ended = append(r.ended, showID) }

var testNow = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T, st store.Store, opts ...Option) *Manager {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	m, err := NewManager(DefaultConfig(), newFakeGateway(), st, zerolog.Nop(), opts...)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return m
}

func start(t *testing.T, m *Manager, showID, hostID string) *StartResult {
	t.Helper()
	res, err := m.StartShow(context.Background(), showID, hostID, "Host "+hostID)
	if err != nil {
		t.Fatalf("StartShow(%s) error = %v", showID, err)
	}
	return res
}

func batch(texts ...string) []models.Candidate {
	out := make([]models.Candidate, len(texts))
	for i, text := range texts {
		out[i] = models.Candidate{Text: text, Confidence: models.Float(0.8), SourceModel: "claude", Topic: "tech"}
	}
	return out
}

func TestStartShow_Conflicts(t *testing.T) {
	st := store.NewMemoryStore()
	m := newTestManager(t, st)
	res := start(t, m, "show-1", "host-1")

	if res.Profile == nil || res.Profile.HostID != "host-1" {
		t.Fatalf("StartShow() profile = %+v, want host-1", res.Profile)
	}
	if _, err := st.LoadProfile(context.Background(), "host-1"); err != nil {
		t.Errorf("LoadProfile() after start error = %v, want saved profile", err)
	}

	if _, err := m.StartShow(context.Background(), "show-1", "host-2", ""); !errors.Is(err, ErrShowAlreadyStarted) {
		t.Errorf("StartShow(same show) error = %v, want ErrShowAlreadyStarted", err)
	}
	if _, err := m.StartShow(context.Background(), "show-2", "host-1", ""); !errors.Is(err, ErrHostBusy) {
		t.Errorf("StartShow(same host) error = %v, want ErrHostBusy", err)
	}
	if _, err := m.StartShow(context.Background(), "", "host-3", ""); err == nil {
		t.Error("StartShow(empty show id) error = nil")
	}
}

func TestRank_CommitsToMemoryAndPublishes(t *testing.T) {
	pub := &recordingPublisher{}
	m := newTestManager(t, store.NewMemoryStore(), WithPublisher(pub))
	start(t, m, "show-1", "host-1")
	ctx := context.Background()

	first, err := m.Rank(ctx, "show-1", batch("What changed your mind?", "Did you ship it?", "Why would anyone disagree?"))
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(first.Questions) != 3 {
		t.Fatalf("Rank() returned %d questions, want 3", len(first.Questions))
	}

	history, err := m.History("show-1")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 3 {
		t.Errorf("History() len = %d, want 3", len(history))
	}

	// The same batch again is entirely filtered by memory.
	second, err := m.Rank(ctx, "show-1", batch("What changed your mind?", "Did you ship it?", "Why would anyone disagree?"))
	if err != nil {
		t.Fatalf("Rank() again error = %v", err)
	}
	if len(second.Questions) != 0 || second.Metadata.AfterMemoryFilter != 0 {
		t.Errorf("Rank() again = %d questions (%d kept), want 0", len(second.Questions), second.Metadata.AfterMemoryFilter)
	}

	if len(pub.ranked) != 2 {
		t.Fatalf("published ranked events = %d, want 2", len(pub.ranked))
	}
	if pub.ranked[0].ShowID != "show-1" || pub.ranked[0].HostID != "host-1" {
		t.Errorf("ranked event = %s/%s, want show-1/host-1", pub.ranked[0].ShowID, pub.ranked[0].HostID)
	}

	view, err := m.HostProfile(ctx, "host-1")
	if err != nil {
		t.Fatalf("HostProfile() error = %v", err)
	}
	if !view.Active || view.Profile.TotalQuestionsGenerated != 3 {
		t.Errorf("HostProfile() active=%v generated=%d, want true/3", view.Active, view.Profile.TotalQuestionsGenerated)
	}
}

func TestRank_PublishFailureKeepsResult(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	m := newTestManager(t, nil, WithPublisher(pub))
	start(t, m, "show-1", "host-1")

	res, err := m.Rank(context.Background(), "show-1", batch("Tell me about the launch"))
	if err != nil {
		t.Fatalf("Rank() error = %v, want nil when only publishing fails", err)
	}
	if len(res.Questions) != 1 {
		t.Errorf("Rank() returned %d questions, want 1", len(res.Questions))
	}
}

func TestRank_UnknownShow(t *testing.T) {
	m := newTestManager(t, nil)
	if _, err := m.Rank(context.Background(), "nope", batch("a question")); !errors.Is(err, ErrShowNotStarted) {
		t.Errorf("Rank() error = %v, want ErrShowNotStarted", err)
	}
	if _, err := m.MarkUsed(context.Background(), "nope", "a question", 0, nil); !errors.Is(err, ErrShowNotStarted) {
		t.Errorf("MarkUsed() error = %v, want ErrShowNotStarted", err)
	}
	if _, err := m.MemoryStats("nope"); !errors.Is(err, ErrShowNotStarted) {
		t.Errorf("MemoryStats() error = %v, want ErrShowNotStarted", err)
	}
}

func TestRank_ConcurrentBatchesAreSerialized(t *testing.T) {
	m := newTestManager(t, nil)
	start(t, m, "show-1", "host-1")
	texts := []string{"What do you think about remote work?", "Have you tried the beta?", "Compare the two releases"}

	var wg sync.WaitGroup
	returned := make([]int, 4)
	for i := range returned {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := m.Rank(context.Background(), "show-1", batch(texts...))
			if err != nil {
				t.Errorf("Rank() error = %v", err)
				return
			}
			returned[i] = len(res.Questions)
		}(i)
	}
	wg.Wait()

	total := 0
	for _, n := range returned {
		total += n
	}
	if total != len(texts) {
		t.Errorf("questions returned across batches = %d, want %d", total, len(texts))
	}
	stats, _ := m.MemoryStats("show-1")
	if stats.TotalQuestions != len(texts) {
		t.Errorf("MemoryStats().TotalQuestions = %d, want %d", stats.TotalQuestions, len(texts))
	}
}

func TestMarkUsed_DirectProfileUpdate(t *testing.T) {
	m := newTestManager(t, nil)
	start(t, m, "show-1", "host-1")
	ctx := context.Background()

	if _, err := m.Rank(ctx, "show-1", batch("Can you explain the pricing?")); err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	found, err := m.MarkUsed(ctx, "show-1", "Can you explain the pricing?", 12*time.Second, nil)
	if err != nil || !found {
		t.Fatalf("MarkUsed() = %v, %v, want true, nil", found, err)
	}

	view, _ := m.HostProfile(ctx, "host-1")
	if view.Profile.TotalQuestionsAsked != 1 {
		t.Errorf("TotalQuestionsAsked = %d, want 1", view.Profile.TotalQuestionsAsked)
	}
	stats, _ := m.MemoryStats("show-1")
	if stats.UsedQuestions != 1 {
		t.Errorf("UsedQuestions = %d, want 1", stats.UsedQuestions)
	}

	found, err = m.MarkUsed(ctx, "show-1", "never ranked", 0, nil)
	if err != nil || found {
		t.Errorf("MarkUsed(unknown text) = %v, %v, want false, nil", found, err)
	}
}

func TestMarkUsed_ThroughEvents(t *testing.T) {
	pub := &recordingPublisher{}
	m := newTestManager(t, nil, WithPublisher(pub))
	start(t, m, "show-1", "host-1")
	ctx := context.Background()

	if _, err := m.Rank(ctx, "show-1", batch("Why would you change the roadmap?")); err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	sample := &models.EngagementSample{ChatActivityBefore: 10, ChatActivityAfter: 20, ViewersBefore: 100, ViewersAfter: 100}
	if _, err := m.MarkUsed(ctx, "show-1", "Why would you change the roadmap?", 5*time.Second, sample); err != nil {
		t.Fatalf("MarkUsed() error = %v", err)
	}

	view, _ := m.HostProfile(ctx, "host-1")
	if view.Profile.TotalQuestionsAsked != 0 {
		t.Fatalf("TotalQuestionsAsked before event applied = %d, want 0", view.Profile.TotalQuestionsAsked)
	}
	if len(pub.used) != 1 {
		t.Fatalf("published used events = %d, want 1", len(pub.used))
	}
	if pub.used[0].TimeToUse() != 5*time.Second || pub.used[0].Engagement != sample {
		t.Errorf("used event = %+v", pub.used[0])
	}

	if err := m.ApplyQuestionUsed(ctx, pub.used[0]); err != nil {
		t.Fatalf("ApplyQuestionUsed() error = %v", err)
	}
	view, _ = m.HostProfile(ctx, "host-1")
	if view.Profile.TotalQuestionsAsked != 1 {
		t.Errorf("TotalQuestionsAsked = %d, want 1", view.Profile.TotalQuestionsAsked)
	}
	if view.Stats == nil || view.Stats.Session.QuestionsUsed != 1 {
		t.Errorf("Stats.Session = %+v, want 1 used", view.Stats)
	}
}

func TestApplyQuestionUsed_InactiveShowIsDropped(t *testing.T) {
	m := newTestManager(t, nil)
	event := events.NewQuestionUsedEvent("gone", "host-1", "text", time.Second, nil)
	if err := m.ApplyQuestionUsed(context.Background(), event); err != nil {
		t.Errorf("ApplyQuestionUsed() error = %v, want nil", err)
	}
}

func TestEndShow_PersistsAndStops(t *testing.T) {
	st := store.NewMemoryStore()
	sup := &fakeSupervisor{}
	ends := &endRecorder{}
	m := newTestManager(t, st, WithSupervisor(sup), WithShowEndNotifier(ends))
	ctx := context.Background()

	start(t, m, "show-1", "host-1")
	if got := sup.added["show-1"]; len(got) != 2 || got[0] != "memory-flush:show-1" || got[1] != "profile-update:host-1" {
		t.Errorf("supervised services = %v", got)
	}

	if _, err := m.Rank(ctx, "show-1", batch("Tell me about the tour", "Did you sign the deal?")); err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if err := m.EndShow(ctx, "show-1"); err != nil {
		t.Fatalf("EndShow() error = %v", err)
	}

	if got := st.HistoryLen(); got != 2 {
		t.Errorf("HistoryLen() = %d, want 2 after final flush", got)
	}
	profile, err := st.LoadProfile(ctx, "host-1")
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if profile.TotalQuestionsGenerated != 2 {
		t.Errorf("stored TotalQuestionsGenerated = %d, want 2", profile.TotalQuestionsGenerated)
	}
	if len(sup.removed) != 1 || sup.removed[0] != "show-1" {
		t.Errorf("RemoveShow calls = %v, want [show-1]", sup.removed)
	}
	if len(ends.ended) != 1 {
		t.Errorf("NotifyShowEnded calls = %v, want one", ends.ended)
	}
	if _, err := m.Rank(ctx, "show-1", batch("x")); !errors.Is(err, ErrShowNotStarted) {
		t.Errorf("Rank() after end error = %v, want ErrShowNotStarted", err)
	}
	if err := m.EndShow(ctx, "show-1"); !errors.Is(err, ErrShowNotStarted) {
		t.Errorf("EndShow() twice error = %v, want ErrShowNotStarted", err)
	}

	view, err := m.HostProfile(ctx, "host-1")
	if err != nil {
		t.Fatalf("HostProfile() after end error = %v", err)
	}
	if view.Active || view.Stats != nil {
		t.Errorf("HostProfile() after end = %+v, want stored profile only", view)
	}
}

func TestStartShow_ReloadsHistory(t *testing.T) {
	st := store.NewMemoryStore()
	m := newTestManager(t, st)
	ctx := context.Background()

	start(t, m, "show-1", "host-1")
	if _, err := m.Rank(ctx, "show-1", batch("How do you feel about the finale?")); err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if err := m.EndShow(ctx, "show-1"); err != nil {
		t.Fatalf("EndShow() error = %v", err)
	}

	res := start(t, m, "show-1", "host-1")
	if res.HistoricalQuestions != 1 {
		t.Errorf("HistoricalQuestions = %d, want 1", res.HistoricalQuestions)
	}
	if res.Profile.TotalShows != 2 {
		t.Errorf("TotalShows = %d, want 2", res.Profile.TotalShows)
	}
	again, err := m.Rank(ctx, "show-1", batch("How do you feel about the finale?"))
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(again.Questions) != 0 {
		t.Errorf("Rank() of a question from the previous session returned %d, want 0", len(again.Questions))
	}
}

func TestShutdown_EndsEveryShow(t *testing.T) {
	m := newTestManager(t, store.NewMemoryStore())
	start(t, m, "show-b", "host-2")
	start(t, m, "show-a", "host-1")

	shows := m.ActiveShows()
	if len(shows) != 2 || shows[0].ShowID != "show-a" {
		t.Errorf("ActiveShows() = %+v, want show-a and show-b", shows)
	}

	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if got := len(m.ActiveShows()); got != 0 {
		t.Errorf("ActiveShows() after shutdown = %d, want 0", got)
	}
	if _, err := m.StartShow(context.Background(), "show-c", "host-3", ""); !errors.Is(err, ErrShuttingDown) {
		t.Errorf("StartShow() after shutdown error = %v, want ErrShuttingDown", err)
	}
}

func TestHostProfile_Unknown(t *testing.T) {
	m := newTestManager(t, store.NewMemoryStore())
	if _, err := m.HostProfile(context.Background(), "stranger"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("HostProfile() error = %v, want store.ErrNotFound", err)
	}
	bare := newTestManager(t, nil)
	if _, err := bare.HostProfile(context.Background(), "stranger"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("HostProfile() without store error = %v, want store.ErrNotFound", err)
	}
}
