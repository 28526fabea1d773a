// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

/*
Package supervisor provides the suture supervision tree for the server.

The tree has three layers under a root supervisor:

	cuecard
	├── data-layer       per-show memory flush, per-host profile updates, store GC
	├── messaging-layer  events router, feed hub
	└── api-layer        HTTP server

Each layer restarts its own failing services with backoff, so a crashing
feed hub does not interrupt flushes or the API. Supervisor events are logged
through sutureslog, which writes to zerolog via logging.NewSlogLogger.

ShowSupervisor adds a show's data layer services when the show starts and
removes them, waiting for each to return, when it ends:

	tree, _ := supervisor.NewSupervisorTree(logging.NewSlogLogger(), cfg)
	shows, _ := supervisor.NewShowSupervisor(tree, logger)
	_ = shows.AddShow(showID, hostID,
		services.NewMemoryFlushService(mem, logger),
		services.NewProfileUpdateService(profiles, logger))
	...
	_ = shows.RemoveShow(showID)
*/
package supervisor
