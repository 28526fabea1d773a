// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

/*
Package feed pushes ranked question batches to production dashboards over websockets.

Each connection subscribes to a single show. The Hub implements
events.RankedListener, so the events router forwards every questions.ranked
event to the clients watching that show.

	hub := feed.NewHub(logger)
	tree.AddMessagingService(services.NewFeedHubService(hub))
	router.HandleQuestionsRanked(hub)

	handler := feed.NewHandler(hub, cfg.Security.CORSOrigins)
	r.Get("/api/v1/shows/{showID}/feed", func(w http.ResponseWriter, r *http.Request) {
		handler.ServeShow(w, r, chi.URLParam(r, "showID"))
	})

Clients may send {"type":"ping"} and receive {"type":"pong"}. Slow clients
whose send buffer fills are disconnected rather than blocking the hub.
*/
package feed
