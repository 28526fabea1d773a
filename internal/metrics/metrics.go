// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Ranking pipeline stages and latency
// - Context memory decisions and flushes
// - Embedding provider calls, caches and circuit breakers
// - Host profile learning
// - Event queue and live feed
// - HTTP API

var (
	// Ranking Metrics
	RankingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cuecard_ranking_requests_total",
			Help: "Total number of ranking calls by outcome",
		},
		[]string{"outcome"}, // "success", "empty", "error"
	)

	RankingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cuecard_ranking_duration_seconds",
			Help:    "Duration of ranking calls in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	RankingCandidates = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cuecard_ranking_candidates",
			Help:    "Number of candidates remaining after each pipeline stage",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
		[]string{"stage"}, // "input", "deduplicated", "filtered", "returned"
	)

	RankingFinalScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cuecard_ranking_top_score",
			Help:    "Final score of the top ranked question per call",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	// Context Memory Metrics
	MemoryDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cuecard_memory_decisions_total",
			Help: "Similarity classifications made against context memory",
		},
		[]string{"decision"}, // "filter", "penalize", "boost", "neutral"
	)

	MemoryCachedQuestions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cuecard_memory_cached_questions",
			Help: "Number of history items held in context memory per show",
		},
		[]string{"show_id"},
	)

	MemoryFlushes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cuecard_memory_flushes_total",
			Help: "Context memory flushes by outcome",
		},
		[]string{"outcome"}, // "success", "error", "noop"
	)

	MemoryFlushedItems = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cuecard_memory_flushed_items_total",
			Help: "History items written to the history store",
		},
	)

	ActiveShows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cuecard_active_shows",
			Help: "Number of shows with an active session",
		},
	)

	// Embedding Metrics
	EmbeddingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cuecard_embedding_requests_total",
			Help: "Embedding provider requests by outcome",
		},
		[]string{"provider", "outcome"},
	)

	EmbeddingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cuecard_embedding_duration_seconds",
			Help:    "Embedding provider request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	EmbeddingTexts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cuecard_embedding_texts_total",
			Help: "Texts sent to the embedding provider",
		},
		[]string{"provider"},
	)

	EmbeddingCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cuecard_embedding_cache_hits_total",
			Help: "Embedding cache hits by cache layer",
		},
		[]string{"layer"}, // "lru", "redis"
	)

	EmbeddingCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cuecard_embedding_cache_misses_total",
			Help: "Embedding cache misses by cache layer",
		},
		[]string{"layer"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cuecard_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cuecard_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Host Profile Metrics
	ProfileUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cuecard_profile_updates_total",
			Help: "Host profile updates by kind and outcome",
		},
		[]string{"kind", "outcome"}, // kind: "usage", "persist"
	)

	ProfileConfidence = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cuecard_profile_confidence",
			Help: "Current confidence score of a host profile",
		},
		[]string{"host_id"},
	)

	// Event Queue Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cuecard_events_published_total",
			Help: "Events published by topic",
		},
		[]string{"topic"},
	)

	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cuecard_events_processed_total",
			Help: "Events handled by topic and outcome",
		},
		[]string{"topic", "outcome"},
	)

	// Live Feed Metrics
	FeedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cuecard_feed_clients",
			Help: "Connected live feed clients",
		},
	)

	FeedBroadcasts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cuecard_feed_broadcasts_total",
			Help: "Messages broadcast to the live feed",
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cuecard_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cuecard_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cuecard_api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)
)

// RecordRanking records a completed ranking call.
func RecordRanking(duration time.Duration, input, deduped, filtered, returned int, err error) {
	RankingDuration.Observe(duration.Seconds())
	switch {
	case err != nil:
		RankingRequests.WithLabelValues("error").Inc()
		return
	case returned == 0:
		RankingRequests.WithLabelValues("empty").Inc()
	default:
		RankingRequests.WithLabelValues("success").Inc()
	}
	RankingCandidates.WithLabelValues("input").Observe(float64(input))
	RankingCandidates.WithLabelValues("deduplicated").Observe(float64(deduped))
	RankingCandidates.WithLabelValues("filtered").Observe(float64(filtered))
	RankingCandidates.WithLabelValues("returned").Observe(float64(returned))
}

// RecordMemoryDecision records one similarity classification.
func RecordMemoryDecision(filter, penalize, boost bool) {
	switch {
	case filter:
		MemoryDecisions.WithLabelValues("filter").Inc()
	case penalize:
		MemoryDecisions.WithLabelValues("penalize").Inc()
	case boost:
		MemoryDecisions.WithLabelValues("boost").Inc()
	default:
		MemoryDecisions.WithLabelValues("neutral").Inc()
	}
}

// RecordMemoryFlush records a flush attempt and how many items it wrote.
func RecordMemoryFlush(items int, err error) {
	switch {
	case err != nil:
		MemoryFlushes.WithLabelValues("error").Inc()
	case items == 0:
		MemoryFlushes.WithLabelValues("noop").Inc()
	default:
		MemoryFlushes.WithLabelValues("success").Inc()
		MemoryFlushedItems.Add(float64(items))
	}
}

// RecordEmbeddingRequest records one provider call covering n texts.
func RecordEmbeddingRequest(provider string, n int, duration time.Duration, err error) {
	EmbeddingDuration.WithLabelValues(provider).Observe(duration.Seconds())
	EmbeddingTexts.WithLabelValues(provider).Add(float64(n))
	if err != nil {
		EmbeddingRequests.WithLabelValues(provider, "error").Inc()
		return
	}
	EmbeddingRequests.WithLabelValues(provider, "success").Inc()
}

// RecordEmbeddingCache records a cache lookup result for a cache layer.
func RecordEmbeddingCache(layer string, hit bool) {
	if hit {
		EmbeddingCacheHits.WithLabelValues(layer).Inc()
		return
	}
	EmbeddingCacheMisses.WithLabelValues(layer).Inc()
}

// RecordProfileUpdate records a host profile update.
func RecordProfileUpdate(kind string, err error) {
	if err != nil {
		ProfileUpdates.WithLabelValues(kind, "error").Inc()
		return
	}
	ProfileUpdates.WithLabelValues(kind, "success").Inc()
}

// RecordEventProcessed records the outcome of handling one event.
func RecordEventProcessed(topic string, err error) {
	if err != nil {
		EventsProcessed.WithLabelValues(topic, "error").Inc()
		return
	}
	EventsProcessed.WithLabelValues(topic, "success").Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements active request gauge
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
