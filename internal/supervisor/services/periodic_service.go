// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// Task is one unit of periodic work.
type Task func(ctx context.Context) error

// PeriodicService runs a task on a fixed interval. Task errors are logged and
// retried on the next tick rather than restarting the service.
//
// When stopped is closed the service returns suture.ErrDoNotRestart, which
// lets an owner end the loop (for example on show end) and run its own final
// pass without racing a tick.
type PeriodicService struct {
	name     string
	interval time.Duration
	task     Task
	stopped  <-chan struct{}
	logger   zerolog.Logger
}

// NewPeriodicService creates a PeriodicService. stopped may be nil.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewPeriodicService(name string, interval time.Duration, task Task, stopped <-chan struct{}, logger zerolog.Logger) *PeriodicService {
	return &PeriodicService{
		name:     name,
		interval: interval,
		task:     task,
		stopped:  stopped,
		logger:   logger.With().Str("component", "periodic").Str("service", name).Logger(),
	}
}

// Serve implements suture.Service.
func (p *PeriodicService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stopped:
			return suture.ErrDoNotRestart
		case <-ticker.C:
			if err := p.task(ctx); err != nil {
				p.logger.Warn().Err(err).Msg("Periodic task failed, retrying next interval")
			}
		}
	}
}

// String implements fmt.Stringer for suture logging.
func (p *PeriodicService) String() string {
	return p.name
}

// Flusher is satisfied by *memory.ContextMemory.
type Flusher interface {
	Flush(ctx context.Context) (int, error)
	PersistenceInterval() time.Duration
	Stopped() <-chan struct{}
	ShowID() string
}

// NewMemoryFlushService returns the supervised flush loop for one show.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewMemoryFlushService(f Flusher, logger zerolog.Logger) *PeriodicService {
	task := func(ctx context.Context) error {
		_, err := f.Flush(ctx)
		return err
	}
	return NewPeriodicService("memory-flush:"+f.ShowID(), f.PersistenceInterval(), task, f.Stopped(), logger)
}

// ProfileUpdater is satisfied by *hostprofile.Manager.
type ProfileUpdater interface {
	UpdateProfile(ctx context.Context) error
	UpdateInterval() time.Duration
	Stopped() <-chan struct{}
	HostID() string
}

// NewProfileUpdateService returns the supervised profile update loop for one host.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewProfileUpdateService(u ProfileUpdater, logger zerolog.Logger) *PeriodicService {
	return NewPeriodicService("profile-update:"+u.HostID(), u.UpdateInterval(), u.UpdateProfile, u.Stopped(), logger)
}

// GarbageCollector is satisfied by *store.BadgerStore.
type GarbageCollector interface {
	RunGC() error
}

// NewStoreGCService returns the supervised value log GC loop for the store.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewStoreGCService(gc GarbageCollector, interval time.Duration, logger zerolog.Logger) *PeriodicService {
	task := func(context.Context) error {
		return gc.RunGC()
	}
	return NewPeriodicService("store-gc", interval, task, nil, logger)
}
