// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/cuecard/internal/events"
	"github.com/tomtom215/cuecard/internal/models"
	"github.com/tomtom215/cuecard/internal/ranking"
)

var _ events.UsageApplier = (*Manager)(nil)

// Rank ranks a candidate batch for the show, commits the returned questions
// to the show's memory and host profile, then publishes the result.
//
// The show lock is held for the whole call, so the memory checks of a batch
// never see that batch's own commits, and concurrent batches for one show
// are ranked one after another.
func (m *Manager) Rank(ctx context.Context, showID string, candidates []models.Candidate) (*ranking.Result, error) {
	show, err := m.lookup(showID)
	if err != nil {
		return nil, err
	}
	defer show.mu.Unlock()

	result, err := show.engine.RankQuestions(ctx, candidates)
	if err != nil {
		return nil, err
	}

	for i := range result.Questions {
		q := &result.Questions[i]
		if err := show.memory.AddEmbedded(&q.Candidate, q.SourceModel, q.Embedding); err != nil {
			return nil, fmt.Errorf("commit to memory: %w", err)
		}
		show.profile.RecordQuestionGenerated(&q.Candidate, q.SourceModel, showID)
	}

	if m.publisher != nil {
		event := events.NewQuestionsRankedEvent(showID, show.HostID, result)
		if err := m.publisher.PublishQuestionsRanked(ctx, event); err != nil {
			// Ranking already succeeded; the feed simply misses this batch.
			m.logger.Warn().Err(err).Str("show_id", showID).Msg("Failed to publish ranked questions")
		}
	}
	return result, nil
}

// MarkUsed records that the host asked a question. The memory flag flips
// immediately; the host profile learns from it through the question.used
// event, or directly when no publisher is configured. found is false when
// no remembered question has the text.
func (m *Manager) MarkUsed(ctx context.Context, showID, text string, timeToUse time.Duration, engagement *models.EngagementSample) (found bool, err error) {
	show, err := m.lookup(showID)
	if err != nil {
		return false, err
	}
	hostID := show.HostID
	found, err = show.memory.MarkUsed(ctx, text)
	if err != nil {
		show.mu.Unlock()
		return found, fmt.Errorf("mark used: %w", err)
	}

	if m.publisher == nil {
		show.profile.RecordQuestionUsed(text, timeToUse, engagement)
		show.mu.Unlock()
		return found, nil
	}
	show.mu.Unlock()

	event := events.NewQuestionUsedEvent(showID, hostID, text, timeToUse, engagement)
	if err := m.publisher.PublishQuestionUsed(ctx, event); err != nil {
		return found, fmt.Errorf("publish question used: %w", err)
	}
	return found, nil
}

// ApplyQuestionUsed applies a question.used event to the show's host
// profile. Events for shows that already ended are dropped.
func (m *Manager) ApplyQuestionUsed(_ context.Context, event *events.QuestionUsedEvent) error {
	show, err := m.lookup(event.ShowID)
	if errors.Is(err, ErrShowNotStarted) {
		m.logger.Warn().Str("show_id", event.ShowID).Msg("Dropping question usage for inactive show")
		return nil
	}
	if err != nil {
		return err
	}
	defer show.mu.Unlock()

	if show.HostID != event.HostID {
		m.logger.Warn().
			Str("show_id", event.ShowID).
			Str("event_host_id", event.HostID).
			Str("host_id", show.HostID).
			Msg("Dropping question usage for a different host")
		return nil
	}

	if !show.profile.RecordQuestionUsed(event.Text, event.TimeToUse(), event.Engagement) {
		m.logger.Debug().Str("show_id", event.ShowID).Msg("Used question was not generated this session")
	}
	return nil
}
