// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/cuecard/internal/embedding"
	"github.com/tomtom215/cuecard/internal/events"
	"github.com/tomtom215/cuecard/internal/hostprofile"
	"github.com/tomtom215/cuecard/internal/memory"
	"github.com/tomtom215/cuecard/internal/metrics"
	"github.com/tomtom215/cuecard/internal/models"
	"github.com/tomtom215/cuecard/internal/ranking"
	"github.com/tomtom215/cuecard/internal/store"
	"github.com/tomtom215/cuecard/internal/supervisor/services"
)

var (
	ErrShowNotStarted     = errors.New("session: show not started")
	ErrShowAlreadyStarted = errors.New("session: show already started")
	ErrHostBusy           = errors.New("session: host already has an active show")
	ErrShuttingDown       = errors.New("session: manager is shutting down")
)

// ShowSupervisor runs a show's background services.
// Satisfied by *supervisor.ShowSupervisor.
type ShowSupervisor interface {
	AddShow(showID, hostID string, svcs ...suture.Service) error
	RemoveShow(showID string) error
}

// EventPublisher is satisfied by *events.Publisher.
type EventPublisher interface {
	PublishQuestionUsed(ctx context.Context, event *events.QuestionUsedEvent) error
	PublishQuestionsRanked(ctx context.Context, event *events.QuestionsRankedEvent) error
}

// ShowEndNotifier is told when a show ends. Satisfied by *feed.Hub.
type ShowEndNotifier interface {
	NotifyShowEnded(showID string)
}

// Show is one live show with its memory, host profile and ranking engine.
type Show struct {
	ID        string
	HostID    string
	StartedAt time.Time

	// mu serializes ranking, commits and shutdown for the show.
	mu      sync.Mutex
	ended   bool
	memory  *memory.ContextMemory
	profile *hostprofile.Manager
	engine  *ranking.Engine
}

// Summary describes an active show.
type Summary struct {
	ShowID    string    `json:"show_id"`
	HostID    string    `json:"host_id"`
	StartedAt time.Time `json:"started_at"`
	Questions int       `json:"questions_in_memory"`
}

// StartResult is returned by StartShow.
type StartResult struct {
	ShowID              string              `json:"show_id"`
	HostID              string              `json:"host_id"`
	HistoricalQuestions int                 `json:"historical_questions"`
	Profile             *models.HostProfile `json:"profile"`
}

// Manager owns every active show. All methods are safe for concurrent use.
type Manager struct {
	cfg      Config
	gateway  embedding.Gateway
	history  store.HistoryStore
	profiles store.ProfileStore
	logger   zerolog.Logger

	insights   hostprofile.InsightSink
	publisher  EventPublisher
	supervisor ShowSupervisor
	notifier   ShowEndNotifier
	now        func() time.Time

	mu       sync.RWMutex
	shows    map[string]*Show
	hosts    map[string]string // host id -> show id
	shutdown bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithInsightSink persists host session insights, e.g. to the insights store.
func WithInsightSink(sink hostprofile.InsightSink) Option {
	return func(m *Manager) { m.insights = sink }
}

// WithPublisher publishes question events. Without one, usage is applied to
// the host profile directly.
func WithPublisher(p EventPublisher) Option {
	return func(m *Manager) { m.publisher = p }
}

// WithSupervisor runs each show's flush and profile update loops.
func WithSupervisor(s ShowSupervisor) Option {
	return func(m *Manager) { m.supervisor = s }
}

// WithShowEndNotifier is told about ended shows.
func WithShowEndNotifier(n ShowEndNotifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithClock replaces the time source of the manager and every show.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a session manager. st may be nil to keep history and
// profiles in memory only.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewManager(cfg Config, gateway embedding.Gateway, st store.Store, logger zerolog.Logger, opts ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if gateway == nil {
		return nil, fmt.Errorf("session: embedding gateway is required")
	}
	m := &Manager{
		cfg:     cfg,
		gateway: gateway,
		logger:  logger.With().Str("component", "session").Logger(),
		now:     time.Now,
		shows:   make(map[string]*Show),
		hosts:   make(map[string]string),
	}
	if st != nil {
		m.history = st
		m.profiles = st
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// StartShow creates the show's context memory and loads its history, loads
// the host profile and starts the show's background services.
func (m *Manager) StartShow(ctx context.Context, showID, hostID, hostName string) (*StartResult, error) {
	if showID == "" || hostID == "" {
		return nil, fmt.Errorf("session: show id and host id are required")
	}

	show, err := m.reserve(showID, hostID)
	if err != nil {
		return nil, err
	}

	result, err := m.open(ctx, show, hostName)
	if err != nil {
		m.release(show)
		return nil, err
	}

	metrics.ActiveShows.Inc()
	m.logger.Info().
		Str("show_id", showID).
		Str("host_id", hostID).
		Int("historical_questions", result.HistoricalQuestions).
		Float64("profile_confidence", result.Profile.ConfidenceScore).
		Msg("Show started")
	return result, nil
}

// reserve registers an empty show so concurrent starts for the same show or
// host fail fast. The show is not usable until open completes.
func (m *Manager) reserve(showID, hostID string) (*Show, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shutdown {
		return nil, ErrShuttingDown
	}
	if _, ok := m.shows[showID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrShowAlreadyStarted, showID)
	}
	if other, ok := m.hosts[hostID]; ok {
		return nil, fmt.Errorf("%w: %s is hosting %s", ErrHostBusy, hostID, other)
	}

	show := &Show{ID: showID, HostID: hostID, StartedAt: m.now()}
	show.mu.Lock()
	m.shows[showID] = show
	m.hosts[hostID] = showID
	return show, nil
}

func (m *Manager) release(show *Show) {
	m.mu.Lock()
	delete(m.shows, show.ID)
	delete(m.hosts, show.HostID)
	m.mu.Unlock()
	show.ended = true
	show.mu.Unlock()
}

// open builds the show's components. The caller holds show.mu.
func (m *Manager) open(ctx context.Context, show *Show, hostName string) (*StartResult, error) {
	mem, err := memory.New(m.cfg.Memory, m.gateway, m.history, m.logger, memory.WithClock(m.now))
	if err != nil {
		return nil, fmt.Errorf("create memory: %w", err)
	}
	if err := mem.Initialize(ctx, show.ID); err != nil {
		return nil, fmt.Errorf("initialize memory: %w", err)
	}

	profileOpts := []hostprofile.Option{hostprofile.WithClock(m.now)}
	if m.insights != nil {
		profileOpts = append(profileOpts, hostprofile.WithInsightSink(m.insights))
	}
	profiles, err := hostprofile.NewManager(m.cfg.HostProfile, m.profiles, m.logger, profileOpts...)
	if err != nil {
		return nil, fmt.Errorf("create host profile: %w", err)
	}
	profile, err := profiles.InitializeForHost(ctx, show.HostID, hostName)
	if err != nil {
		return nil, fmt.Errorf("initialize host profile: %w", err)
	}

	engine, err := ranking.NewEngine(m.cfg.Ranking, m.gateway, m.logger,
		ranking.WithContextMemory(mem),
		ranking.WithHostFitScorer(profiles),
	)
	if err != nil {
		return nil, fmt.Errorf("create ranking engine: %w", err)
	}

	if m.supervisor != nil {
		err := m.supervisor.AddShow(show.ID, show.HostID,
			services.NewMemoryFlushService(mem, m.logger),
			services.NewProfileUpdateService(profiles, m.logger),
		)
		if err != nil {
			return nil, fmt.Errorf("supervise show: %w", err)
		}
	}

	show.memory = mem
	show.profile = profiles
	show.engine = engine
	show.mu.Unlock()

	return &StartResult{
		ShowID:              show.ID,
		HostID:              show.HostID,
		HistoricalQuestions: mem.Len(),
		Profile:             profile,
	}, nil
}

// lookup returns the show with its lock held. The caller must unlock it.
func (m *Manager) lookup(showID string) (*Show, error) {
	m.mu.RLock()
	show, ok := m.shows[showID]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrShowNotStarted, showID)
	}

	show.mu.Lock()
	if show.ended {
		show.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrShowNotStarted, showID)
	}
	return show, nil
}

// EndShow stops the show's background services, flushes its memory, runs a
// final profile update and clears the cache. The show is removed even when
// persistence fails; the errors are returned joined.
func (m *Manager) EndShow(ctx context.Context, showID string) error {
	show, err := m.lookup(showID)
	if err != nil {
		return err
	}
	defer show.mu.Unlock()

	m.mu.Lock()
	delete(m.shows, showID)
	delete(m.hosts, show.HostID)
	m.mu.Unlock()
	show.ended = true

	var errs []error
	if m.supervisor != nil {
		if err := m.supervisor.RemoveShow(showID); err != nil {
			errs = append(errs, fmt.Errorf("stop services: %w", err))
		}
	}
	if err := show.memory.StopAndFlush(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := show.profile.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("final profile update: %w", err))
	}
	show.memory.ClearCache()

	if m.notifier != nil {
		m.notifier.NotifyShowEnded(showID)
	}
	metrics.ActiveShows.Dec()

	err = errors.Join(errs...)
	event := m.logger.Info()
	if err != nil {
		event = m.logger.Error().Err(err)
	}
	event.Str("show_id", showID).
		Str("host_id", show.HostID).
		Dur("duration", m.now().Sub(show.StartedAt)).
		Msg("Show ended")
	return err
}

// Shutdown ends every active show and rejects new ones.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.shutdown = true
	ids := make([]string, 0, len(m.shows))
	for id := range m.shows {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	sort.Strings(ids)

	var errs []error
	for _, id := range ids {
		if err := m.EndShow(ctx, id); err != nil && !errors.Is(err, ErrShowNotStarted) {
			errs = append(errs, fmt.Errorf("end show %s: %w", id, err))
		}
	}
	m.logger.Info().Int("shows", len(ids)).Msg("Session manager shut down")
	return errors.Join(errs...)
}

// ActiveShows lists the active shows ordered by show id.
func (m *Manager) ActiveShows() []Summary {
	m.mu.RLock()
	shows := make([]*Show, 0, len(m.shows))
	for _, s := range m.shows {
		shows = append(shows, s)
	}
	m.mu.RUnlock()

	out := make([]Summary, 0, len(shows))
	for _, s := range shows {
		s.mu.Lock()
		if !s.ended {
			out = append(out, Summary{
				ShowID:    s.ID,
				HostID:    s.HostID,
				StartedAt: s.StartedAt,
				Questions: s.memory.Len(),
			})
		}
		s.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ShowID < out[j].ShowID })
	return out
}
