// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package services

import "context"

// ContextHub is satisfied by *feed.Hub.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// FeedHubService runs the live feed hub under supervision.
type FeedHubService struct {
	hub ContextHub
}

// NewFeedHubService wraps hub.
func NewFeedHubService(hub ContextHub) *FeedHubService {
	return &FeedHubService{hub: hub}
}

// Serve implements suture.Service.
func (f *FeedHubService) Serve(ctx context.Context) error {
	return f.hub.RunWithContext(ctx)
}

// String implements fmt.Stringer for suture logging.
func (f *FeedHubService) String() string {
	return "feed-hub"
}
