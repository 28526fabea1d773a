// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package hostprofile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cuecard/internal/metrics"
	"github.com/tomtom215/cuecard/internal/models"
	"github.com/tomtom215/cuecard/internal/store"
)

type recordingSink struct {
	mu    sync.Mutex
	calls [][]models.QuestionInsight
	err   error
}

func (s *recordingSink) UpsertInsights(_ context.Context, insights []models.QuestionInsight) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.calls = append(s.calls, insights)
	return nil
}

func newTestManager(t *testing.T, ps store.ProfileStore, opts ...Option) *Manager {
	t.Helper()
	m, err := NewManager(DefaultConfig(), ps, zerolog.Nop(), opts...)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return m
}

func TestInitializeForHost_CreatesAndReloads(t *testing.T) {
	ps := store.NewMemoryStore()
	ctx := context.Background()

	m := newTestManager(t, ps)
	p, err := m.InitializeForHost(ctx, "host-1", "Alex")
	if err != nil {
		t.Fatalf("InitializeForHost() error = %v", err)
	}
	if p.AvgComplexity != 0.5 || p.AvgLength != 15 || p.ConfidenceScore != 0 {
		t.Errorf("new profile = %+v, want neutral defaults", p)
	}
	if len(p.StylePreferences) != len(models.AllStyles) {
		t.Errorf("style preferences = %v, want all styles", p.StylePreferences)
	}

	stored, err := ps.LoadProfile(ctx, "host-1")
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if stored.TotalShows != 1 {
		t.Errorf("TotalShows = %d, want 1", stored.TotalShows)
	}

	again := newTestManager(t, ps)
	p2, err := again.InitializeForHost(ctx, "host-1", "")
	if err != nil {
		t.Fatalf("InitializeForHost() error = %v", err)
	}
	if p2.TotalShows != 2 || p2.HostName != "Alex" {
		t.Errorf("reloaded profile shows/name = %d/%q, want 2/Alex", p2.TotalShows, p2.HostName)
	}
}

func TestHostFitScore_NeutralUntilConfident(t *testing.T) {
	m := newTestManager(t, nil)
	c := &models.Candidate{Text: "Did you plan the 2020 tour?"}

	if got := m.HostFitScore(c); got != Neutral {
		t.Errorf("HostFitScore() before init = %v, want %v", got, Neutral)
	}
	if m.Active() {
		t.Error("Active() = true before init")
	}

	if _, err := m.InitializeForHost(context.Background(), "h", "H"); err != nil {
		t.Fatal(err)
	}
	if !m.Active() {
		t.Error("Active() = false after init")
	}
	if got := m.HostFitScore(c); got != Neutral {
		t.Errorf("HostFitScore() with zero confidence = %v, want %v", got, Neutral)
	}
}

func TestRecordQuestionUsed_LearnsPreferences(t *testing.T) {
	m := newTestManager(t, nil)
	if _, err := m.InitializeForHost(context.Background(), "h", "H"); err != nil {
		t.Fatal(err)
	}

	provocative := &models.Candidate{Text: "Why would you leave the label?", Topic: "business"}
	other := &models.Candidate{Text: "Where is the studio?"}
	m.RecordQuestionGenerated(provocative, "claude", "show-1")
	m.RecordQuestionGenerated(other, "gpt-4o", "show-1")

	if !m.RecordQuestionUsed(provocative.Text, 30*time.Second, nil) {
		t.Fatal("RecordQuestionUsed() = false, want true")
	}
	if m.RecordQuestionUsed("never generated", time.Second, nil) {
		t.Error("RecordQuestionUsed(unknown) = true, want false")
	}
	// the same question cannot be used twice
	if m.RecordQuestionUsed(provocative.Text, time.Second, nil) {
		t.Error("second RecordQuestionUsed() = true, want false")
	}

	p := m.Profile()
	if p.TotalQuestionsGenerated != 2 || p.TotalQuestionsAsked != 1 || p.TotalQuestionsIgnored != 1 {
		t.Errorf("counters = %d/%d/%d, want 2/1/1", p.TotalQuestionsGenerated, p.TotalQuestionsAsked, p.TotalQuestionsIgnored)
	}
	if p.UsageRate != 0.5 {
		t.Errorf("UsageRate = %v, want 0.5", p.UsageRate)
	}
	if p.PreferredStyle != models.StyleProvocative {
		t.Errorf("PreferredStyle = %v, want provocative", p.PreferredStyle)
	}
	if p.AvgTimeToUse != 3 {
		t.Errorf("AvgTimeToUse = %v, want 3", p.AvgTimeToUse)
	}
	if want := Confidence(1, 20); p.ConfidenceScore != want {
		t.Errorf("ConfidenceScore = %v, want %v", p.ConfidenceScore, want)
	}

	stats, ok := m.GetProfileStats()
	if !ok {
		t.Fatal("GetProfileStats() ok = false")
	}
	if stats.Session.QuestionsGenerated != 2 || stats.Session.QuestionsUsed != 1 || stats.Session.CurrentUsageRate != 0.5 {
		t.Errorf("session stats = %+v", stats.Session)
	}
	if len(stats.TopTopics) != 1 || stats.TopTopics[0].Topic != "business" {
		t.Errorf("TopTopics = %+v, want [business]", stats.TopTopics)
	}
}

func TestUpdateProfile_PersistsInsightsOnce(t *testing.T) {
	ps := store.NewMemoryStore()
	sink := &recordingSink{}
	m := newTestManager(t, ps, WithInsightSink(sink))
	ctx := context.Background()

	if _, err := m.InitializeForHost(ctx, "h", "H"); err != nil {
		t.Fatal(err)
	}
	c := &models.Candidate{Text: "Tell me about the first gig"}
	m.RecordQuestionGenerated(c, "", "show-1")

	if err := m.UpdateProfile(ctx); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if len(sink.calls) != 1 || len(sink.calls[0]) != 1 {
		t.Fatalf("sink calls = %v, want one insight", sink.calls)
	}

	// nothing new, nothing written
	if err := m.UpdateProfile(ctx); err != nil {
		t.Fatal(err)
	}
	if len(sink.calls) != 1 {
		t.Errorf("sink calls = %d, want 1", len(sink.calls))
	}

	// a use makes the insight dirty again
	m.RecordQuestionUsed(c.Text, 10*time.Second, &models.EngagementSample{ChatActivityBefore: 5, ChatActivityAfter: 10, ViewersBefore: 50, ViewersAfter: 50})
	if err := m.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if len(sink.calls) != 2 || !sink.calls[1][0].WasUsed || sink.calls[1][0].EngagementScore == 0 {
		t.Errorf("sink calls = %+v, want used insight with engagement", sink.calls)
	}

	stored, _ := ps.LoadProfile(ctx, "h")
	if stored.TotalQuestionsAsked != 1 {
		t.Errorf("stored TotalQuestionsAsked = %d, want 1", stored.TotalQuestionsAsked)
	}
	select {
	case <-m.Stopped():
	default:
		t.Error("Stopped() not closed after Stop")
	}
}

func TestUpdateProfile_SinkErrorKeepsPending(t *testing.T) {
	sink := &recordingSink{err: errors.New("duckdb locked")}
	m := newTestManager(t, nil, WithInsightSink(sink))
	ctx := context.Background()

	if _, err := m.InitializeForHost(ctx, "h", "H"); err != nil {
		t.Fatal(err)
	}
	m.RecordQuestionGenerated(&models.Candidate{Text: "q"}, "", "s")

	if err := m.UpdateProfile(ctx); err == nil {
		t.Fatal("UpdateProfile() error = nil, want sink error")
	}

	sink.err = nil
	if err := m.UpdateProfile(ctx); err != nil {
		t.Fatalf("UpdateProfile() retry error = %v", err)
	}
	if len(sink.calls) != 1 || len(sink.calls[0]) != 1 {
		t.Errorf("sink calls = %v, want the pending insight", sink.calls)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() default error = %v", err)
	}
	cfg.LearningRate = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() with zero learning rate error = nil")
	}
}

func TestStop_DropsConfidenceGauge(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, store.NewMemoryStore())
	if _, err := m.InitializeForHost(ctx, "host-gauge", "Sam"); err != nil {
		t.Fatalf("InitializeForHost() error = %v", err)
	}

	if err := m.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if metrics.ProfileConfidence.DeleteLabelValues("host-gauge") {
		t.Error("ProfileConfidence still has a series for host-gauge after Stop()")
	}
}
