// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/cuecard/internal/metrics"
)

// ErrProviderUnavailable is returned while the provider circuit is open and
// for provider outages: transport failures, 429 and 5xx replies.
var ErrProviderUnavailable = errors.New("embedding: provider unavailable")

// unavailableStatus reports whether a reply code means the provider is down
// or overloaded rather than the request being wrong.
func unavailableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func statusError(name string, code int, detail string) error {
	msg := fmt.Sprintf("%s embed: status %d", name, code)
	if detail != "" {
		msg += ": " + detail
	}
	if unavailableStatus(code) {
		return fmt.Errorf("%s: %w", msg, ErrProviderUnavailable)
	}
	return errors.New(msg)
}

// transportError wraps a failed round trip. Cancellation by the caller is
// not an outage and keeps only the context error.
func transportError(ctx context.Context, name string, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%s embed: %w", name, err)
	}
	return fmt.Errorf("%s embed: %w: %w", name, ErrProviderUnavailable, err)
}

// guard applies rate limiting and a circuit breaker to provider calls
// and splits oversized batches into chunks.
type guard struct {
	name     string
	cb       *gobreaker.CircuitBreaker[[][]float32]
	limiter  *rate.Limiter
	maxBatch int
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func newGuard(name string, cfg *Config, logger zerolog.Logger) *guard {
	cbName := "embedding-" + name
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[[][]float32](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		// Opens at >= 60% failures over at least 10 requests.
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= 0.6 {
				logger.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", ratio*100).
					Msg("Opening embedding circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().Str("from", from.String()).Str("to", to.String()).Msg("Embedding circuit state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	limit := rate.Inf
	burst := cfg.Burst
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		if burst <= 0 {
			burst = 1
		}
	}

	maxBatch := cfg.MaxBatchSize
	if maxBatch <= 0 {
		maxBatch = DefaultConfig().MaxBatchSize
	}

	return &guard{
		name:     name,
		cb:       cb,
		limiter:  rate.NewLimiter(limit, burst),
		maxBatch: maxBatch,
	}
}

// run sends texts through fn in chunks of at most maxBatch.
func (g *guard) run(ctx context.Context, texts []string, fn func(context.Context, []string) ([][]float32, error)) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += g.maxBatch {
		end := min(start+g.maxBatch, len(texts))
		chunk := texts[start:end]

		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s rate limit: %w", g.name, err)
		}

		vecs, err := g.cb.Execute(func() ([][]float32, error) {
			return fn(ctx, chunk)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return nil, fmt.Errorf("%s: %w", g.name, ErrProviderUnavailable)
			}
			return nil, err
		}
		if len(vecs) != len(chunk) {
			return nil, fmt.Errorf("%s: %d vectors for %d texts: %w", g.name, len(vecs), len(chunk), ErrEmptyResponse)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
