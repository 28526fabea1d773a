// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

/*
Package api provides the HTTP surface of cuecard.

Every JSON endpoint answers with the same envelope:

	{
	  "success": true,
	  "data": {...},
	  "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 3}
	}

Failures set success=false and carry an error object with a machine-readable
code (SHOW_NOT_STARTED, VALIDATION_ERROR, EMBEDDING_UNAVAILABLE, ...).

# Show Lifecycle

	POST /api/v1/shows/{showID}/start   {"host_id": "...", "host_name": "..."}
	POST /api/v1/shows/{showID}/rank    {"candidates": [{"question_text": "..."}]}
	POST /api/v1/shows/{showID}/used    {"text": "...", "time_to_use": 42.5}
	POST /api/v1/shows/{showID}/end

A show must be started before it can rank. Ranked questions are committed to
the show's memory, so asking the same question twice in a batch sequence is
penalised by later ranks. GET /api/v1/shows/{showID}/feed upgrades to a
websocket that receives every ranked batch.

# Middleware

The router runs, in order: request id, real IP, panic recovery, access
logging, CORS (go-chi/cors) and Prometheus metrics. Under /api/v1 requests are
rate limited per IP (go-chi/httprate); JSON routes are also compressed and
bounded by a timeout. Health probes and /metrics skip the rate limiter.
*/
package api
