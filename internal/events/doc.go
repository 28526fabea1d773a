// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

/*
Package events carries show events over watermill.

Two topics exist:

  - question.used: the host asked a surfaced question. The profile updater
    handler applies it to the host profile.
  - questions.ranked: a ranking result for a show. The feed handler forwards
    it to websocket clients.

The transport is either an in-process gochannel or core NATS. Handlers
process one message at a time, so host profile updates are never interleaved.
*/
package events
