// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

/*
Package session runs live shows.

A show owns a context memory, a host profile manager and a ranking engine
wired to both. The Manager keeps one Show per show id and allows one active
show per host.

Lifecycle:

	res, err := mgr.StartShow(ctx, "show-42", "host-7", "Sam")   // loads history and profile
	ranked, err := mgr.Rank(ctx, "show-42", candidates)         // ranks, commits, publishes
	found, err := mgr.MarkUsed(ctx, "show-42", text, 8*time.Second, sample)
	err = mgr.EndShow(ctx, "show-42")                           // final flush and profile update

Rank holds the show lock for the whole call: memory checks in a batch never
see that batch's commits, and batches for one show run one at a time.

MarkUsed flips the memory flag synchronously and publishes question.used.
The events router calls ApplyQuestionUsed, so profile learning happens one
event at a time. Without a publisher the profile is updated in place.

When a ShowSupervisor is configured, StartShow registers the show's memory
flush and profile update loops with it and EndShow removes them before the
final flush.
*/
package session
