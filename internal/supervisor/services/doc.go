// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

/*
Package services adapts long-running components to suture.Service.

  - HTTPServerService: the API server with graceful shutdown
  - FeedHubService: the websocket feed hub
  - PeriodicService: interval work such as memory flushes, host profile
    updates and Badger value log GC

Periodic task failures are logged and retried on the next tick. A
PeriodicService whose stopped channel closes returns suture.ErrDoNotRestart,
so a show's flush loop ends for good when the show ends.

The events router implements suture.Service itself and is added to the tree
directly.
*/
package services
