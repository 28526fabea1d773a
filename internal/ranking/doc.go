// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

/*
Package ranking scores batches of generated questions and returns the best few.

A call runs a fixed pipeline:

 1. Deduplicate the batch with one embedding call (first occurrence wins).
 2. Drop candidates the show's context memory marks for filtering and attach novelty.
 3. Score quality with a pluggable QualityScorer.
 4. Score lexical diversity against the rest of the batch.
 5. Score host fit when a host profile is active.
 6. Combine with the weight set for the active mode and keep the top K.

Context memory and host profile are optional. Without them novelty and host
fit fall back to neutral defaults and the base weights apply.

Usage:

	engine, err := ranking.NewEngine(ranking.DefaultConfig(), gateway, logger,
		ranking.WithContextMemory(mem),
		ranking.WithHostFitScorer(profiles),
	)
	result, err := engine.RankQuestions(ctx, candidates)
*/
package ranking
