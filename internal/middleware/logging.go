// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cuecard/internal/logging"
)

// AccessLog logs every request at debug level, and at warn level when it
// took longer than slow. A zero slow disables the warning.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func AccessLog(logger zerolog.Logger, slow time.Duration) func(http.Handler) http.Handler {
	logger = logger.With().Str("component", "http").Logger()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapper := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapper, r)
			duration := time.Since(start)

			event := logger.Debug()
			if slow > 0 && duration > slow {
				event = logger.Warn().Dur("threshold", slow)
			}
			event.
				Str("request_id", logging.RequestIDFromContext(r.Context())).
				Str("method", r.Method).
				Str("route", routePattern(r)).
				Int("status", wrapper.statusCode).
				Dur("duration", duration).
				Msg("HTTP request")
		})
	}
}

// Recoverer turns a handler panic into a 500 error envelope and logs the
// stack. http.ErrAbortHandler is re-panicked so net/http can abort the
// connection as usual.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Recoverer(logger zerolog.Logger) func(http.Handler) http.Handler {
	logger = logger.With().Str("component", "http").Logger()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler { //nolint:errorlint // sentinel compared by identity
					panic(rec)
				}

				requestID := logging.RequestIDFromContext(r.Context())
				logger.Error().
					Interface("panic", rec).
					Str("request_id", requestID).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Bytes("stack", debug.Stack()).
					Msg("Recovered from handler panic")

				if r.Header.Get("Upgrade") != "" {
					return
				}
				writePanicResponse(w, requestID)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// panicBody mirrors the API error envelope.
type panicBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

func writePanicResponse(w http.ResponseWriter, requestID string) {
	var body panicBody
	body.Error.Code = "INTERNAL_ERROR"
	body.Error.Message = "Internal server error"
	body.Error.RequestID = requestID

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(body) // connection may already be gone
}
