// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

// Package logging provides centralized zerolog-based structured logging for Cuecard.
//
// The package provides:
//   - A global zerolog logger configured once from main via Init
//   - JSON output for production, console output for development
//   - Context-aware logging carrying request, correlation, show and host IDs
//   - An slog adapter for Suture v4 event hooks (sutureslog)
//   - A watermill.LoggerAdapter so event routers log through zerolog
//
// # Log Fields
//
// Standard fields added by Ctx(ctx) when present:
//
//	request_id      - HTTP request ID (X-Request-ID)
//	correlation_id  - short ID linking related log lines
//	show_id         - show session the call belongs to
//	host_id         - host whose profile is involved
//
// Always terminate log chains with .Msg() or .Send().
package logging
