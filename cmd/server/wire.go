// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cuecard/internal/api"
	"github.com/tomtom215/cuecard/internal/config"
	"github.com/tomtom215/cuecard/internal/embedding"
	"github.com/tomtom215/cuecard/internal/events"
	"github.com/tomtom215/cuecard/internal/feed"
	"github.com/tomtom215/cuecard/internal/insights"
	"github.com/tomtom215/cuecard/internal/logging"
	"github.com/tomtom215/cuecard/internal/session"
	"github.com/tomtom215/cuecard/internal/store"
	"github.com/tomtom215/cuecard/internal/supervisor"
	"github.com/tomtom215/cuecard/internal/supervisor/services"
)

// slowRequestThreshold is where the access log switches to warn.
const slowRequestThreshold = 2 * time.Second

// application holds what main needs after wiring.
type application struct {
	sessions *session.Manager
	closers  []func() error
}

func (a *application) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.sessions.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("Failed to end active shows")
	}
	// Close in reverse order of creation.
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logging.Error().Err(err).Msg("Error during shutdown")
		}
	}
}

// build wires every component and registers long running services on tree.
// Partially built components are closed on error.
func build(ctx context.Context, cfg *config.Config, tree *supervisor.SupervisorTree) (_ *application, err error) {
	logger := logging.Logger()
	app := &application{}
	defer func() {
		if err != nil {
			for i := len(app.closers) - 1; i >= 0; i-- {
				_ = app.closers[i]()
			}
		}
	}()

	st, err := openStore(ctx, cfg, tree, logger)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, st.Close)

	var insightStore *insights.Store
	if cfg.Insights.Enabled {
		insightStore, err = insights.Open(ctx, cfg.InsightsSettings(), logger)
		if err != nil {
			return nil, fmt.Errorf("open insights: %w", err)
		}
		app.closers = append(app.closers, insightStore.Close)
		logging.Info().Str("path", cfg.Insights.Path).Msg("Insights store opened")
	}

	gateway, redisClient, err := newGateway(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if redisClient != nil {
		app.closers = append(app.closers, redisClient.Close)
	}

	evCfg := cfg.EventsSettings()
	pubsub, err := events.NewPubSub(&evCfg, logging.NewWatermillLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("create event transport: %w", err)
	}
	app.closers = append(app.closers, pubsub.Close)
	publisher := events.NewPublisher(pubsub.Publisher, logger)
	app.closers = append(app.closers, func() error {
		publisher.Close()
		return nil
	})

	hub := feed.NewHub(logger)
	tree.AddMessagingService(services.NewFeedHubService(hub))

	showSupervisor, err := supervisor.NewShowSupervisor(tree, logger)
	if err != nil {
		return nil, err
	}

	opts := []session.Option{
		session.WithPublisher(publisher),
		session.WithSupervisor(showSupervisor),
		session.WithShowEndNotifier(hub),
	}
	if insightStore != nil {
		opts = append(opts, session.WithInsightSink(insightStore))
	}
	sessions, err := session.NewManager(cfg.SessionSettings(), gateway, st, logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("create session manager: %w", err)
	}
	app.sessions = sessions

	router, err := events.NewRouter(&evCfg, pubsub.Subscriber, pubsub.Publisher, logger)
	if err != nil {
		return nil, err
	}
	router.HandleQuestionUsed(sessions)
	router.HandleQuestionsRanked(hub)
	tree.AddMessagingService(router)

	handlerOpts := []api.HandlerOption{
		api.WithFeed(feed.NewHandler(hub, cfg.Security.CORSOrigins)),
		api.WithReadinessCheck("store", st),
	}
	if insightStore != nil {
		handlerOpts = append(handlerOpts,
			api.WithInsights(insightStore),
			api.WithReadinessCheck("insights", insightStore),
		)
	}
	if redisClient != nil {
		handlerOpts = append(handlerOpts, api.WithReadinessCheck("redis", redisPinger{redisClient}))
	}
	handler := api.NewHandler(sessions, handlerOpts...)

	server := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: api.NewRouter(handler, api.RouterConfig{
			CORSAllowedOrigins: cfg.Security.CORSOrigins,
			CORSMaxAge:         86400,
			RateLimitRequests:  cfg.Security.RateLimitReqs,
			RateLimitWindow:    cfg.Security.RateLimitWindow,
			RateLimitDisabled:  cfg.Security.RateLimitDisabled,
			RequestTimeout:     cfg.Server.RequestTimeout,
			SlowRequest:        slowRequestThreshold,
		}, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, cfg.Server.ShutdownTimeout, logger))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	return app, nil
}

// openStore opens the history and profile store. The Badger backend also
// gets a supervised value log GC loop.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func openStore(ctx context.Context, cfg *config.Config, tree *supervisor.SupervisorTree, logger zerolog.Logger) (store.Store, error) {
	sc := cfg.StoreSettings()
	st, err := store.Open(ctx, &sc, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if gc, ok := st.(services.GarbageCollector); ok {
		tree.AddDataService(services.NewStoreGCService(gc, sc.Badger.GCInterval, logger))
	}
	logging.Info().Str("backend", sc.Backend).Msg("Store opened")
	return st, nil
}

// newGateway builds the embedding provider behind the in-process LRU and,
// when enabled, the shared Redis cache.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func newGateway(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*embedding.CachedGateway, *redis.Client, error) {
	ec := cfg.EmbeddingSettings()
	provider, err := embedding.NewProvider(ctx, &ec, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create embedding provider: %w", err)
	}

	var remote embedding.RemoteCache
	var client *redis.Client
	if cfg.Redis.Enabled {
		client = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			// The cache is optional; lookups fall through to the provider.
			logging.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis embedding cache unreachable")
		}
		remote = embedding.NewRedisCache(client, ec.Model, ec.RemoteCacheTTL)
	}

	logging.Info().Str("provider", ec.Provider).Str("model", ec.Model).Msg("Embedding gateway ready")
	return embedding.NewCachedGateway(provider, ec.CacheSize, remote, logger), client, nil
}

// redisPinger adapts a redis client to api.Pinger.
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
