// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package models

import "time"

// QuestionStyle is the coarse rhetorical style of a question.
type QuestionStyle string

const (
	StyleOpenEnded   QuestionStyle = "open-ended"
	StyleSpecific    QuestionStyle = "specific"
	StyleProvocative QuestionStyle = "provocative"
	StyleAnalytical  QuestionStyle = "analytical"
	StyleUnknown     QuestionStyle = "unknown"
)

// AllStyles lists every style in a stable order. Ties in preference
// resolve to the earliest style in this list.
var AllStyles = []QuestionStyle{
	StyleOpenEnded,
	StyleSpecific,
	StyleProvocative,
	StyleAnalytical,
	StyleUnknown,
}

// Profile defaults for a host seen for the first time.
const (
	DefaultProfileComplexity = 0.5
	DefaultProfileLength     = 15
	NeutralPreference        = 0.5
)

// HostProfile holds the learned question preferences of one host.
type HostProfile struct {
	HostID   string `json:"host_id"`
	HostName string `json:"host_name"`

	TotalQuestionsGenerated int     `json:"total_questions_generated"`
	TotalQuestionsAsked     int     `json:"total_questions_asked"`
	TotalQuestionsIgnored   int     `json:"total_questions_ignored"`
	UsageRate               float64 `json:"usage_rate"`
	AvgTimeToUse            float64 `json:"avg_time_to_use"`

	PreferredStyle    QuestionStyle             `json:"preferred_style"`
	StylePreferences  map[QuestionStyle]float64 `json:"style_preferences"`
	TopicPreferences  map[string]float64        `json:"topic_preferences"`
	AvgComplexity     float64                   `json:"avg_complexity"`
	AvgLength         float64                   `json:"avg_length"`
	ConfidenceScore   float64                   `json:"confidence_score"`
	EngagementByStyle map[QuestionStyle]float64 `json:"engagement_by_style,omitempty"`
	TotalShows        int                       `json:"total_shows"`
	LastUpdated       time.Time                 `json:"last_updated"`
	CreatedAt         time.Time                 `json:"created_at"`
}

// NewHostProfile returns a neutral profile for a host seen for the first time.
func NewHostProfile(hostID, hostName string, now time.Time) *HostProfile {
	styles := make(map[QuestionStyle]float64, len(AllStyles))
	for _, s := range AllStyles {
		styles[s] = NeutralPreference
	}
	return &HostProfile{
		HostID:            hostID,
		HostName:          hostName,
		PreferredStyle:    StyleOpenEnded,
		StylePreferences:  styles,
		TopicPreferences:  make(map[string]float64),
		EngagementByStyle: make(map[QuestionStyle]float64),
		AvgComplexity:     DefaultProfileComplexity,
		AvgLength:         DefaultProfileLength,
		LastUpdated:       now,
		CreatedAt:         now,
	}
}

// Clone returns a deep copy of the profile.
func (p *HostProfile) Clone() *HostProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.StylePreferences = make(map[QuestionStyle]float64, len(p.StylePreferences))
	for k, v := range p.StylePreferences {
		c.StylePreferences[k] = v
	}
	c.TopicPreferences = make(map[string]float64, len(p.TopicPreferences))
	for k, v := range p.TopicPreferences {
		c.TopicPreferences[k] = v
	}
	c.EngagementByStyle = make(map[QuestionStyle]float64, len(p.EngagementByStyle))
	for k, v := range p.EngagementByStyle {
		c.EngagementByStyle[k] = v
	}
	return &c
}

// EnsureMaps initializes nil maps, e.g. after decoding an old record.
func (p *HostProfile) EnsureMaps() {
	if p.StylePreferences == nil {
		p.StylePreferences = make(map[QuestionStyle]float64, len(AllStyles))
	}
	if p.TopicPreferences == nil {
		p.TopicPreferences = make(map[string]float64)
	}
	if p.EngagementByStyle == nil {
		p.EngagementByStyle = make(map[QuestionStyle]float64)
	}
}

// QuestionInsight is the per-question record a host profile session keeps
// for generated questions, later written to the insights store.
type QuestionInsight struct {
	ID                string        `json:"id"`
	HostID            string        `json:"host_id"`
	ShowID            string        `json:"show_id"`
	Text              string        `json:"question_text"`
	Topic             string        `json:"topic"`
	Complexity        float64       `json:"complexity"`
	Length            int           `json:"length"`
	Style             QuestionStyle `json:"style"`
	SourceModel       string        `json:"source_model"`
	GeneratedAt       time.Time     `json:"generated_at"`
	WasUsed           bool          `json:"was_used"`
	UsedAt            *time.Time    `json:"used_at,omitempty"`
	TimeToUseSeconds  float64       `json:"time_to_use_seconds"`
	ChatActivityDelta float64       `json:"chat_activity_change"`
	ViewerRetention   float64       `json:"viewer_retention"`
	SentimentDelta    float64       `json:"sentiment_change"`
	EngagementScore   float64       `json:"engagement_score"`
}

// EngagementSample is the audience state observed around a used question.
// Sentiment is only scored when both readings are present.
type EngagementSample struct {
	ChatActivityBefore float64  `json:"chat_activity_before" validate:"min=0"`
	ChatActivityAfter  float64  `json:"chat_activity_after" validate:"min=0"`
	ViewersBefore      float64  `json:"viewer_count_before" validate:"min=0"`
	ViewersAfter       float64  `json:"viewer_count_after" validate:"min=0"`
	SentimentBefore    *float64 `json:"sentiment_before,omitempty" validate:"omitempty,min=-1,max=1"`
	SentimentAfter     *float64 `json:"sentiment_after,omitempty" validate:"omitempty,min=-1,max=1"`
}
