// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cuecard/internal/logging"
	"github.com/tomtom215/cuecard/internal/metrics"
)

// UsageApplier applies a used question to its host profile.
type UsageApplier interface {
	ApplyQuestionUsed(ctx context.Context, event *QuestionUsedEvent) error
}

// RankedListener receives ranking results, e.g. the live feed.
type RankedListener interface {
	OnQuestionsRanked(ctx context.Context, event *QuestionsRankedEvent) error
}

// Router consumes domain events. Each handler processes one message at a
// time, which serializes profile updates per process.
type Router struct {
	router     *message.Router
	subscriber message.Subscriber
	logger     zerolog.Logger
}

// NewRouter creates a router with recovery, retry and poison queue middleware.
// poison may be nil to drop messages that exhaust their retries.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewRouter(cfg *Config, subscriber message.Subscriber, poison message.Publisher, logger zerolog.Logger) (*Router, error) {
	logger = logger.With().Str("component", "event_router").Logger()

	wmRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logging.NewWatermillLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	// The poison queue wraps retry so only exhausted messages reach it.
	wmRouter.AddMiddleware(middleware.Recoverer)
	if poison != nil && cfg.PoisonQueueTopic != "" {
		pq, err := middleware.PoisonQueue(poison, cfg.PoisonQueueTopic)
		if err != nil {
			return nil, fmt.Errorf("create poison queue middleware: %w", err)
		}
		wmRouter.AddMiddleware(pq)
	}
	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      cfg.RetryMultiplier,
		Logger:          logging.NewWatermillLogger(logger),
	}
	wmRouter.AddMiddleware(retry.Middleware)

	return &Router{router: wmRouter, subscriber: subscriber, logger: logger}, nil
}

// HandleQuestionUsed routes TopicQuestionUsed to applier.
func (r *Router) HandleQuestionUsed(applier UsageApplier) {
	r.router.AddConsumerHandler("profile_updater", TopicQuestionUsed, r.subscriber, func(msg *message.Message) error {
		var event QuestionUsedEvent
		err := Unmarshal(msg.Payload, &event)
		if err == nil {
			err = applier.ApplyQuestionUsed(messageContext(msg), &event)
		}
		metrics.RecordEventProcessed(TopicQuestionUsed, err)
		if err != nil {
			r.logger.Warn().Err(err).Str("event_id", msg.UUID).Msg("Failed to apply used question")
		}
		return err
	})
}

// HandleQuestionsRanked routes TopicQuestionsRanked to listener.
func (r *Router) HandleQuestionsRanked(listener RankedListener) {
	r.router.AddConsumerHandler("feed_broadcaster", TopicQuestionsRanked, r.subscriber, func(msg *message.Message) error {
		var event QuestionsRankedEvent
		err := Unmarshal(msg.Payload, &event)
		if err == nil {
			err = listener.OnQuestionsRanked(messageContext(msg), &event)
		}
		metrics.RecordEventProcessed(TopicQuestionsRanked, err)
		return err
	})
}

func messageContext(msg *message.Message) context.Context {
	ctx := msg.Context()
	if id := msg.Metadata.Get("request_id"); id != "" {
		ctx = logging.ContextWithRequestID(ctx, id)
	}
	if id := msg.Metadata.Get("correlation_id"); id != "" {
		ctx = logging.ContextWithCorrelationID(ctx, id)
	}
	return ctx
}

// Serve runs the router until ctx is canceled.
func (r *Router) Serve(ctx context.Context) error {
	r.logger.Info().Msg("Event router starting")
	err := r.router.Run(ctx)
	r.logger.Info().Msg("Event router stopped")
	return err
}

// Running is closed once all handlers are subscribed.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// Close stops the router, waiting for in-flight messages.
func (r *Router) Close() error {
	return r.router.Close()
}

func (r *Router) String() string {
	return "event-router"
}
