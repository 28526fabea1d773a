// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

/*
Package memory keeps the per-show context memory: a bounded, FIFO history of
questions already surfaced, compared against new candidates with temporal
decay.

Effective similarity to a history item is its cosine similarity multiplied by
exp(-ageMinutes/halfLife), so an old near duplicate fades back into a novel
question as the show moves on. CheckSimilarity classifies a candidate as
filter, penalize or boost from the highest effective similarity;
CalculateNoveltyScore turns the same scan into a 0..1 score with an
exploration bonus for under-explored territory.

New items are persisted by Flush, which a supervised service calls on
PersistenceInterval. StopAndFlush runs the final flush when a show ends.
*/
package memory
