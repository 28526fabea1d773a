// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package supervisor

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

var (
	ErrShowAlreadyRunning = errors.New("show already has supervised services")
	ErrShowNotRunning     = errors.New("show has no supervised services")
	ErrNilSupervisorTree  = errors.New("supervisor tree cannot be nil")
)

// ShowStatus describes the services supervised for one show.
type ShowStatus struct {
	ShowID    string    `json:"show_id"`
	HostID    string    `json:"host_id"`
	Services  []string  `json:"services"`
	StartedAt time.Time `json:"started_at"`
}

type managedShow struct {
	hostID    string
	tokens    []suture.ServiceToken
	names     []string
	startedAt time.Time
}

// ShowSupervisor adds and removes the data layer services that belong to a
// live show, such as its memory flush and host profile updates.
type ShowSupervisor struct {
	tree   *SupervisorTree
	shows  map[string]*managedShow
	mu     sync.RWMutex
	logger zerolog.Logger
}

// NewShowSupervisor creates a ShowSupervisor on tree.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewShowSupervisor(tree *SupervisorTree, logger zerolog.Logger) (*ShowSupervisor, error) {
	if tree == nil {
		return nil, ErrNilSupervisorTree
	}
	return &ShowSupervisor{
		tree:   tree,
		shows:  make(map[string]*managedShow),
		logger: logger.With().Str("component", "show_supervisor").Logger(),
	}, nil
}

// AddShow starts svcs under the data layer on behalf of showID.
func (s *ShowSupervisor) AddShow(showID, hostID string, svcs ...suture.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.shows[showID]; exists {
		return fmt.Errorf("%w: %s", ErrShowAlreadyRunning, showID)
	}

	managed := &managedShow{hostID: hostID, startedAt: time.Now()}
	for _, svc := range svcs {
		managed.tokens = append(managed.tokens, s.tree.AddDataService(svc))
		managed.names = append(managed.names, serviceName(svc))
	}
	s.shows[showID] = managed

	s.logger.Info().
		Str("show_id", showID).
		Str("host_id", hostID).
		Strs("services", managed.names).
		Msg("Show services added to supervisor")
	return nil
}

// RemoveShow stops the show's services and waits for each to return.
// The show is forgotten even when a service does not stop in time.
func (s *ShowSupervisor) RemoveShow(showID string) error {
	s.mu.Lock()
	managed, exists := s.shows[showID]
	delete(s.shows, showID)
	s.mu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrShowNotRunning, showID)
	}

	var errs []error
	for i, token := range managed.tokens {
		if err := s.tree.RemoveDataServiceAndWait(token, 0); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", managed.names[i], err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		s.logger.Warn().Err(err).Str("show_id", showID).Msg("Show services did not stop cleanly")
		return err
	}
	s.logger.Info().Str("show_id", showID).Msg("Show services removed from supervisor")
	return nil
}

// ShowStatus returns the supervised services of one show.
func (s *ShowSupervisor) ShowStatus(showID string) (*ShowStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	managed, exists := s.shows[showID]
	if !exists {
		return nil, ErrShowNotRunning
	}
	status := managed.status(showID)
	return &status, nil
}

// AllShowStatuses returns every supervised show ordered by show id.
func (s *ShowSupervisor) AllShowStatuses() []ShowStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statuses := make([]ShowStatus, 0, len(s.shows))
	for showID, managed := range s.shows {
		statuses = append(statuses, managed.status(showID))
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].ShowID < statuses[j].ShowID
	})
	return statuses
}

// IsShowRunning reports whether showID has supervised services.
func (s *ShowSupervisor) IsShowRunning(showID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.shows[showID]
	return exists
}

// StopAll removes the services of every show.
func (s *ShowSupervisor) StopAll() error {
	s.mu.RLock()
	ids := make([]string, 0, len(s.shows))
	for showID := range s.shows {
		ids = append(ids, showID)
	}
	s.mu.RUnlock()
	sort.Strings(ids)

	var errs []error
	for _, showID := range ids {
		if err := s.RemoveShow(showID); err != nil && !errors.Is(err, ErrShowNotRunning) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *managedShow) status(showID string) ShowStatus {
	return ShowStatus{
		ShowID:    showID,
		HostID:    m.hostID,
		Services:  append([]string(nil), m.names...),
		StartedAt: m.startedAt,
	}
}

func serviceName(svc suture.Service) string {
	if s, ok := svc.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", svc)
}
