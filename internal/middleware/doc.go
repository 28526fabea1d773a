// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

/*
Package middleware provides the chi-compatible HTTP middleware used by the API.

Key Components:

  - RequestID: request id header plus request and correlation ids in the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge labelled by route pattern
  - AccessLog: zerolog access line per request, warning above a latency threshold
  - Recoverer: panic recovery with a JSON error envelope

Order

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.AccessLog(logger, time.Second))
	r.Use(middleware.PrometheusMetrics)

Every wrapper passes http.Hijacker through so the websocket feed upgrades
behind the full stack.
*/
package middleware
