// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

// Package testinfra provides container helpers for integration tests.
//
// Everything here is behind the integration build tag and uses testcontainers-go:
//
//	func TestPostgresStore(t *testing.T) {
//	    testinfra.RequireDocker(t)
//	    ctx := context.Background()
//	    pg, err := testinfra.NewPostgresContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    testinfra.TerminateOnCleanup(t, pg)
//	    // connect with pg.DSN
//	}
//
// Tests are skipped when Docker is unavailable. The first run pulls images.
package testinfra
