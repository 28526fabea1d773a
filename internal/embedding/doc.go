// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

/*
Package embedding turns question text into vectors and compares them.

A Provider talks to one embedding backend (OpenAI, Ollama or Gemini).
CachedGateway wraps a provider with an in-process LRU and an optional
shared Redis layer, so repeated questions never hit the backend twice:

	provider, err := embedding.NewProvider(cfg, logger)
	gw := embedding.NewCachedGateway(provider, cfg.CacheSize, redisCache, logger)
	vecs, err := gw.EmbedBatch(ctx, texts)
	sim, err := gw.Similarity(vecs[0], vecs[1])

Batch calls only send uncached texts to the provider and return vectors in
input order. Outbound calls pass through a circuit breaker and a rate limiter.
*/
package embedding
