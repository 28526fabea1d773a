// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/cuecard/internal/embedding"
	"github.com/tomtom215/cuecard/internal/ranking"
	"github.com/tomtom215/cuecard/internal/session"
	"github.com/tomtom215/cuecard/internal/store"
)

// writeDomainError maps a service error to its HTTP status and error code.
// Unknown errors become a logged 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	rw := NewResponseWriter(w, r)
	switch {
	case errors.Is(err, session.ErrShowNotStarted):
		rw.NotFound(ErrCodeShowNotStarted, "Show has not been started")
	case errors.Is(err, store.ErrNotFound):
		rw.NotFound(ErrCodeNotFound, "Not found")
	case errors.Is(err, session.ErrShowAlreadyStarted):
		rw.Conflict("Show is already running")
	case errors.Is(err, session.ErrHostBusy):
		rw.Conflict("Host already has an active show")
	case errors.Is(err, ranking.ErrTooManyCandidates):
		rw.BadRequest(err.Error())
	case errors.Is(err, session.ErrShuttingDown):
		rw.ServiceUnavailable(ErrCodeServiceUnavailable, "Server is shutting down")
	case errors.Is(err, embedding.ErrProviderUnavailable):
		rw.ServiceUnavailable(ErrCodeEmbeddingFailed, "Embedding provider is unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		rw.Error(http.StatusGatewayTimeout, ErrCodeServiceUnavailable, "Request timed out")
	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads the body.
		rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Request canceled")
	default:
		rw.InternalError(err)
	}
}
