// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are registered at package init through promauto and exported on the
/metrics endpoint in Prometheus text format:

	curl http://localhost:8790/metrics

# Available Metrics

Ranking:
  - cuecard_ranking_requests_total{outcome}
  - cuecard_ranking_duration_seconds
  - cuecard_ranking_candidates{stage}
  - cuecard_ranking_top_score

Context memory:
  - cuecard_memory_decisions_total{decision}
  - cuecard_memory_cached_questions{show_id}
  - cuecard_memory_flushes_total{outcome}
  - cuecard_active_shows

Embedding:
  - cuecard_embedding_requests_total{provider,outcome}
  - cuecard_embedding_cache_hits_total{layer}
  - cuecard_circuit_breaker_state{name}

Host profile, events and feed:
  - cuecard_profile_updates_total{kind,outcome}
  - cuecard_profile_confidence{host_id}
  - cuecard_events_processed_total{topic,outcome}
  - cuecard_feed_clients

The Record* helpers keep label values consistent across call sites.
*/
package metrics
