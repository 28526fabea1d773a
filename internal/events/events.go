// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/cuecard/internal/models"
	"github.com/tomtom215/cuecard/internal/ranking"
)

// Topics.
const (
	TopicQuestionUsed    = "question.used"
	TopicQuestionsRanked = "questions.ranked"
)

// Validation errors.
var (
	ErrMissingShowID = errors.New("events: show id is required")
	ErrMissingHostID = errors.New("events: host id is required")
	ErrMissingText   = errors.New("events: question text is required")
)

// QuestionUsedEvent reports that the host asked a surfaced question.
type QuestionUsedEvent struct {
	EventID          string                   `json:"event_id"`
	ShowID           string                   `json:"show_id"`
	HostID           string                   `json:"host_id"`
	Text             string                   `json:"question_text"`
	TimeToUseSeconds float64                  `json:"time_to_use_seconds"`
	Engagement       *models.EngagementSample `json:"engagement,omitempty"`
	OccurredAt       time.Time                `json:"occurred_at"`
}

// NewQuestionUsedEvent fills in the ID and timestamp.
func NewQuestionUsedEvent(showID, hostID, text string, timeToUse time.Duration, engagement *models.EngagementSample) *QuestionUsedEvent {
	return &QuestionUsedEvent{
		EventID:          uuid.New().String(),
		ShowID:           showID,
		HostID:           hostID,
		Text:             text,
		TimeToUseSeconds: timeToUse.Seconds(),
		Engagement:       engagement,
		OccurredAt:       time.Now().UTC(),
	}
}

// TimeToUse returns the delay between surfacing and asking.
func (e *QuestionUsedEvent) TimeToUse() time.Duration {
	return time.Duration(e.TimeToUseSeconds * float64(time.Second))
}

// Validate checks required fields.
func (e *QuestionUsedEvent) Validate() error {
	switch {
	case e.ShowID == "":
		return ErrMissingShowID
	case e.HostID == "":
		return ErrMissingHostID
	case e.Text == "":
		return ErrMissingText
	case e.TimeToUseSeconds < 0:
		return fmt.Errorf("events: time to use must not be negative")
	}
	return nil
}

// QuestionsRankedEvent carries one ranking result for a show.
type QuestionsRankedEvent struct {
	EventID    string          `json:"event_id"`
	ShowID     string          `json:"show_id"`
	HostID     string          `json:"host_id,omitempty"`
	Result     *ranking.Result `json:"result"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewQuestionsRankedEvent fills in the ID and timestamp.
func NewQuestionsRankedEvent(showID, hostID string, result *ranking.Result) *QuestionsRankedEvent {
	return &QuestionsRankedEvent{
		EventID:    uuid.New().String(),
		ShowID:     showID,
		HostID:     hostID,
		Result:     result,
		OccurredAt: time.Now().UTC(),
	}
}

// Validate checks required fields.
func (e *QuestionsRankedEvent) Validate() error {
	if e.ShowID == "" {
		return ErrMissingShowID
	}
	if e.Result == nil {
		return fmt.Errorf("events: ranking result is required")
	}
	return nil
}

type validatable interface {
	Validate() error
}

// Marshal validates and encodes an event.
func Marshal(event validatable) ([]byte, error) {
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// Unmarshal decodes and validates an event.
func Unmarshal(data []byte, event validatable) error {
	if err := json.Unmarshal(data, event); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}
	return event.Validate()
}
