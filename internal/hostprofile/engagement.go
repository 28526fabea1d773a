// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package hostprofile

import "github.com/tomtom215/cuecard/internal/models"

// Engagement is the audience reaction derived from an EngagementSample.
type Engagement struct {
	ChatActivityChange float64 `json:"chat_activity_change"` // percent
	ViewerRetention    float64 `json:"viewer_retention"`     // percent
	SentimentChange    float64 `json:"sentiment_change"`
	Score              float64 `json:"score"`
}

// MeasureEngagement scores a sample as
// 0.5*chat + 0.3*retention + 0.2*sentiment, each normalized to [0,1].
// Sentiment only counts when both readings are present.
func MeasureEngagement(s *models.EngagementSample) Engagement {
	var e Engagement
	e.ChatActivityChange = (s.ChatActivityAfter - s.ChatActivityBefore) / nonZero(s.ChatActivityBefore) * 100
	e.ViewerRetention = s.ViewersAfter / nonZero(s.ViewersBefore) * 100
	if s.SentimentBefore != nil && s.SentimentAfter != nil {
		e.SentimentChange = *s.SentimentAfter - *s.SentimentBefore
	}

	chat := clamp01((e.ChatActivityChange + 100) / 200)
	retention := clamp01(e.ViewerRetention / 100)
	sentiment := clamp01((e.SentimentChange + 1) / 2)
	e.Score = chat*0.5 + retention*0.3 + sentiment*0.2
	return e
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
