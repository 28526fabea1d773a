// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

// Package insights keeps per-question outcomes in DuckDB.
//
// The host profile manager writes every generated question and its usage
// outcome here through UpsertInsights. The API reads per-style and per-topic
// usage summaries back out for a host.
package insights
