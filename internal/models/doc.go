// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

/*
Package models defines the data structures shared across Cuecard.

Key Components:

  - Candidate: a generated question awaiting ranking
  - HistoryItem: a question already surfaced during a show, with its embedding
  - HostProfile: learned per-host question preferences
  - QuestionInsight: per-question usage record feeding the insights store
  - EngagementSample: audience measurements around a used question

Candidates are immutable. History items change only their used flag.
Host profiles are mutated exclusively by the host profile manager.
*/
package models
