// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package hostprofile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cuecard/internal/metrics"
	"github.com/tomtom215/cuecard/internal/models"
	"github.com/tomtom215/cuecard/internal/store"
)

// InsightSink receives per-question insights for analytics.
type InsightSink interface {
	UpsertInsights(ctx context.Context, insights []models.QuestionInsight) error
}

// Manager owns one host's profile for the duration of a show. All methods
// are safe for concurrent use; updates are applied one at a time.
type Manager struct {
	cfg      Config
	profiles store.ProfileStore
	insights InsightSink
	logger   zerolog.Logger
	now      func() time.Time

	mu      sync.Mutex
	hostID  string
	profile *models.HostProfile

	// session holds insights for questions generated in this session
	session []*models.QuestionInsight
	used    map[string]struct{}
	dirty   map[string]struct{}

	stopOnce sync.Once
	stopped  chan struct{}
}

// Option customizes a Manager.
type Option func(*Manager)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithInsightSink sets where session insights are persisted.
func WithInsightSink(sink InsightSink) Option {
	return func(m *Manager) { m.insights = sink }
}

// NewManager creates a manager. profiles may be nil to keep profiles in memory only.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewManager(cfg Config, profiles store.ProfileStore, logger zerolog.Logger, opts ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Manager{
		cfg:      cfg,
		profiles: profiles,
		logger:   logger.With().Str("component", "host_profile").Logger(),
		now:      time.Now,
		used:     make(map[string]struct{}),
		dirty:    make(map[string]struct{}),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// InitializeForHost loads the host's profile, creating and saving a neutral
// one for hosts seen for the first time.
func (m *Manager) InitializeForHost(ctx context.Context, hostID, hostName string) (*models.HostProfile, error) {
	if hostID == "" {
		return nil, fmt.Errorf("hostprofile: host id is required")
	}

	var profile *models.HostProfile
	if m.profiles != nil {
		p, err := m.profiles.LoadProfile(ctx, hostID)
		switch {
		case err == nil:
			profile = p
			profile.EnsureMaps()
		case errors.Is(err, store.ErrNotFound):
		default:
			return nil, fmt.Errorf("load profile %s: %w", hostID, err)
		}
	}

	created := profile == nil
	if created {
		profile = models.NewHostProfile(hostID, hostName, m.now())
	} else if hostName != "" {
		profile.HostName = hostName
	}
	profile.TotalShows++

	if m.profiles != nil {
		if err := m.profiles.SaveProfile(ctx, profile); err != nil {
			m.logger.Error().Err(err).Str("host_id", hostID).Msg("Failed to save host profile")
		}
	}

	m.mu.Lock()
	m.hostID = hostID
	m.profile = profile
	m.session = nil
	m.used = make(map[string]struct{})
	m.dirty = make(map[string]struct{})
	snapshot := profile.Clone()
	m.mu.Unlock()

	metrics.ProfileConfidence.WithLabelValues(hostID).Set(profile.ConfidenceScore)
	m.logger.Info().
		Str("host_id", hostID).
		Bool("created", created).
		Int("total_shows", profile.TotalShows).
		Float64("usage_rate", profile.UsageRate).
		Float64("confidence", profile.ConfidenceScore).
		Msg("Host profile initialized")

	return snapshot, nil
}

// HostID returns the host this manager is initialized for.
func (m *Manager) HostID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hostID
}

// Active reports whether fit scoring uses the profile. A disabled manager or
// one without a profile scores every question as Neutral.
func (m *Manager) Active() bool {
	if !m.cfg.Enabled {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile != nil
}

// HostFitScore returns the fit of c to the host's profile in [0,1].
func (m *Manager) HostFitScore(c *models.Candidate) float64 {
	if !m.cfg.Enabled {
		return Neutral
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.profile == nil || m.profile.ConfidenceScore < m.cfg.LowDataThreshold {
		return Neutral
	}
	return FitScore(m.profile, c).Final
}

// RecordQuestionGenerated adds a surfaced question to the session.
func (m *Manager) RecordQuestionGenerated(c *models.Candidate, sourceModel, showID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.profile == nil {
		m.logger.Warn().Msg("No host profile initialized, ignoring generated question")
		return
	}
	if sourceModel == "" {
		sourceModel = c.SourceModel
	}

	insight := &models.QuestionInsight{
		ID:          uuid.New().String(),
		HostID:      m.hostID,
		ShowID:      showID,
		Text:        c.Text,
		Topic:       c.Topic,
		Complexity:  c.ComplexityOrDefault(),
		Length:      c.WordCount(),
		Style:       ClassifyStyle(c.Text),
		SourceModel: sourceModel,
		GeneratedAt: m.now(),
	}
	m.session = append(m.session, insight)
	m.dirty[insight.ID] = struct{}{}
	m.profile.TotalQuestionsGenerated++
}

// RecordQuestionUsed marks the first unused session question with the given
// text as used and learns from it. It reports whether a question matched.
func (m *Manager) RecordQuestionUsed(text string, timeToUse time.Duration, sample *models.EngagementSample) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.profile == nil {
		m.logger.Warn().Msg("No host profile initialized, ignoring used question")
		return false
	}

	var insight *models.QuestionInsight
	for _, q := range m.session {
		if q.Text == text && !q.WasUsed {
			insight = q
			break
		}
	}
	if insight == nil {
		return false
	}

	usedAt := m.now()
	insight.WasUsed = true
	insight.UsedAt = &usedAt
	insight.TimeToUseSeconds = timeToUse.Seconds()
	if sample != nil {
		e := MeasureEngagement(sample)
		insight.ChatActivityDelta = e.ChatActivityChange
		insight.ViewerRetention = e.ViewerRetention
		insight.SentimentDelta = e.SentimentChange
		insight.EngagementScore = e.Score
	}
	m.used[insight.ID] = struct{}{}
	m.dirty[insight.ID] = struct{}{}

	m.profile.TotalQuestionsAsked++
	ApplyUsage(m.profile, insight, m.cfg.LearningRate)
	RefreshUsage(m.profile, m.cfg.MinQuestionsForProfile)
	m.profile.LastUpdated = usedAt

	metrics.RecordProfileUpdate("usage", nil)
	metrics.ProfileConfidence.WithLabelValues(m.hostID).Set(m.profile.ConfidenceScore)

	m.logger.Debug().
		Str("style", string(insight.Style)).
		Float64("time_to_use_s", insight.TimeToUseSeconds).
		Float64("engagement", insight.EngagementScore).
		Msg("Question used")
	return true
}

// UpdateProfile recomputes the derived metrics, writes pending insights to
// the sink and saves the profile. Store failures are returned; the pending
// work is kept for the next call.
func (m *Manager) UpdateProfile(ctx context.Context) error {
	m.mu.Lock()
	if m.profile == nil {
		m.mu.Unlock()
		return nil
	}
	RefreshUsage(m.profile, m.cfg.MinQuestionsForProfile)
	m.profile.LastUpdated = m.now()
	snapshot := m.profile.Clone()

	var pending []models.QuestionInsight
	for _, q := range m.session {
		if _, ok := m.dirty[q.ID]; ok {
			pending = append(pending, *q)
		}
	}
	m.mu.Unlock()

	var errs []error
	if m.insights != nil && len(pending) > 0 {
		if err := m.insights.UpsertInsights(ctx, pending); err != nil {
			errs = append(errs, fmt.Errorf("persist insights: %w", err))
		} else {
			m.clearDirty(pending)
			m.logger.Debug().Int("insights", len(pending)).Msg("Persisted question insights")
		}
	}

	if m.profiles != nil {
		if err := m.profiles.SaveProfile(ctx, snapshot); err != nil {
			errs = append(errs, fmt.Errorf("save profile: %w", err))
		}
	}

	err := errors.Join(errs...)
	metrics.RecordProfileUpdate("periodic", err)
	metrics.ProfileConfidence.WithLabelValues(snapshot.HostID).Set(snapshot.ConfidenceScore)
	if err != nil {
		return err
	}

	m.logger.Info().
		Str("host_id", snapshot.HostID).
		Float64("usage_rate", snapshot.UsageRate).
		Float64("confidence", snapshot.ConfidenceScore).
		Msg("Host profile updated")
	return nil
}

func (m *Manager) clearDirty(written []models.QuestionInsight) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range written {
		// a question used after the snapshot stays dirty
		if cur := m.find(written[i].ID); cur != nil && cur.WasUsed != written[i].WasUsed {
			continue
		}
		delete(m.dirty, written[i].ID)
	}
}

func (m *Manager) find(id string) *models.QuestionInsight {
	for _, q := range m.session {
		if q.ID == id {
			return q
		}
	}
	return nil
}

// Profile returns a copy of the current profile, or nil.
func (m *Manager) Profile() *models.HostProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile.Clone()
}

// UpdateInterval is how often UpdateProfile should run.
func (m *Manager) UpdateInterval() time.Duration {
	return m.cfg.UpdateInterval
}

// Stopped is closed by Stop.
func (m *Manager) Stopped() <-chan struct{} {
	return m.stopped
}

// Stop ends periodic updates, runs a final UpdateProfile and drops the
// host's confidence gauge.
func (m *Manager) Stop(ctx context.Context) error {
	m.stopOnce.Do(func() { close(m.stopped) })
	err := m.UpdateProfile(ctx)
	if hostID := m.HostID(); hostID != "" {
		metrics.ProfileConfidence.DeleteLabelValues(hostID)
	}
	return err
}

// TopicScore is a topic preference entry.
type TopicScore struct {
	Topic string  `json:"topic"`
	Score float64 `json:"score"`
}

// SessionStats counts this session's questions.
type SessionStats struct {
	QuestionsGenerated int     `json:"questions_generated"`
	QuestionsUsed      int     `json:"questions_used"`
	CurrentUsageRate   float64 `json:"current_usage_rate"`
}

// Stats is the profile summary shown to producers.
type Stats struct {
	HostID          string               `json:"host_id"`
	HostName        string               `json:"host_name"`
	TotalShows      int                  `json:"total_shows"`
	UsageRate       float64              `json:"usage_rate"`
	AvgTimeToUse    float64              `json:"avg_time_to_use"`
	PreferredStyle  models.QuestionStyle `json:"preferred_style"`
	ConfidenceScore float64              `json:"confidence_score"`
	TopTopics       []TopicScore         `json:"top_topics"`
	Session         SessionStats         `json:"session"`
}

// GetProfileStats summarizes the profile. ok is false before InitializeForHost.
func (m *Manager) GetProfileStats() (stats Stats, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.profile == nil {
		return Stats{}, false
	}
	p := m.profile

	topics := make([]TopicScore, 0, len(p.TopicPreferences))
	for t, s := range p.TopicPreferences {
		topics = append(topics, TopicScore{Topic: t, Score: s})
	}
	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Score != topics[j].Score {
			return topics[i].Score > topics[j].Score
		}
		return topics[i].Topic < topics[j].Topic
	})
	if len(topics) > 5 {
		topics = topics[:5]
	}

	session := SessionStats{
		QuestionsGenerated: len(m.session),
		QuestionsUsed:      len(m.used),
	}
	if session.QuestionsGenerated > 0 {
		session.CurrentUsageRate = float64(session.QuestionsUsed) / float64(session.QuestionsGenerated)
	}

	return Stats{
		HostID:          p.HostID,
		HostName:        p.HostName,
		TotalShows:      p.TotalShows,
		UsageRate:       p.UsageRate,
		AvgTimeToUse:    p.AvgTimeToUse,
		PreferredStyle:  p.PreferredStyle,
		ConfidenceScore: p.ConfidenceScore,
		TopTopics:       topics,
		Session:         session,
	}, true
}
