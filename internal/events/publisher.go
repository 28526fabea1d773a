// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cuecard/internal/logging"
)

// Publisher publishes domain events behind a circuit breaker.
type Publisher struct {
	publisher message.Publisher
	breaker   *gobreaker.CircuitBreaker[struct{}]
	mu        sync.RWMutex
	closed    bool
	logger    zerolog.Logger
}

// NewPublisher wraps a watermill publisher.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewPublisher(pub message.Publisher, logger zerolog.Logger) *Publisher {
	logger = logger.With().Str("component", "event_publisher").Logger()
	settings := gobreaker.Settings{
		Name:        "event-publisher",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}
	return &Publisher{
		publisher: pub,
		breaker:   gobreaker.NewCircuitBreaker[struct{}](settings),
		logger:    logger,
	}
}

// Publish encodes and sends one event. The message carries the request and
// correlation IDs from ctx as metadata.
func (p *Publisher) Publish(ctx context.Context, topic, eventID string, event validatable) error {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return fmt.Errorf("events: publisher is closed")
	}

	data, err := Marshal(event)
	if err != nil {
		return err
	}
	msg := message.NewMessage(eventID, data)
	if id := logging.RequestIDFromContext(ctx); id != "" {
		msg.Metadata.Set("request_id", id)
	}
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set("correlation_id", id)
	}

	_, err = p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.publisher.Publish(topic, msg)
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// PublishQuestionUsed publishes to TopicQuestionUsed.
func (p *Publisher) PublishQuestionUsed(ctx context.Context, event *QuestionUsedEvent) error {
	return p.Publish(ctx, TopicQuestionUsed, event.EventID, event)
}

// PublishQuestionsRanked publishes to TopicQuestionsRanked.
func (p *Publisher) PublishQuestionsRanked(ctx context.Context, event *QuestionsRankedEvent) error {
	return p.Publish(ctx, TopicQuestionsRanked, event.EventID, event)
}

// Close stops publishing. The underlying publisher is owned by the caller.
func (p *Publisher) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}
