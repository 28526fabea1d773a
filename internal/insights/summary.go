// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package insights

import (
	"context"
	"fmt"

	"github.com/tomtom215/cuecard/internal/models"
)

// StyleUsage summarizes how often a host used questions of one style.
type StyleUsage struct {
	Style         models.QuestionStyle `json:"style"`
	Generated     int                  `json:"generated"`
	Used          int                  `json:"used"`
	UsageRate     float64              `json:"usage_rate"`
	AvgEngagement float64              `json:"avg_engagement"`
	AvgTimeToUse  float64              `json:"avg_time_to_use_seconds"`
}

// TopicUsage summarizes usage of one topic.
type TopicUsage struct {
	Topic         string  `json:"topic"`
	Generated     int     `json:"generated"`
	Used          int     `json:"used"`
	UsageRate     float64 `json:"usage_rate"`
	AvgEngagement float64 `json:"avg_engagement"`
}

// HostSummary is the analytics view of one host.
type HostSummary struct {
	HostID    string       `json:"host_id"`
	Generated int          `json:"generated"`
	Used      int          `json:"used"`
	Shows     int          `json:"shows"`
	Styles    []StyleUsage `json:"styles"`
	Topics    []TopicUsage `json:"topics"`
}

// StyleBreakdown groups a host's insights by style, most used first.
// Engagement and time to use average over used questions only.
func (s *Store) StyleBreakdown(ctx context.Context, hostID string) ([]StyleUsage, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT
			style,
			COUNT(*) AS generated,
			COUNT(*) FILTER (WHERE was_used) AS used,
			COALESCE(AVG(engagement_score) FILTER (WHERE was_used), 0) AS avg_engagement,
			COALESCE(AVG(time_to_use_seconds) FILTER (WHERE was_used AND time_to_use_seconds > 0), 0) AS avg_time
		FROM question_insights
		WHERE host_id = ?
		GROUP BY style
		ORDER BY used DESC, generated DESC, style`, hostID)
	if err != nil {
		return nil, fmt.Errorf("query style breakdown: %w", err)
	}
	defer rows.Close()

	var out []StyleUsage
	for rows.Next() {
		var u StyleUsage
		var style string
		if err := rows.Scan(&style, &u.Generated, &u.Used, &u.AvgEngagement, &u.AvgTimeToUse); err != nil {
			return nil, fmt.Errorf("scan style usage: %w", err)
		}
		u.Style = models.QuestionStyle(style)
		u.UsageRate = rate(u.Used, u.Generated)
		out = append(out, u)
	}
	return out, rows.Err()
}

// TopicBreakdown groups a host's insights by topic, most used first.
// Questions without a topic are left out.
func (s *Store) TopicBreakdown(ctx context.Context, hostID string, limit int) ([]TopicUsage, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.conn.QueryContext(ctx, `
		SELECT
			topic,
			COUNT(*) AS generated,
			COUNT(*) FILTER (WHERE was_used) AS used,
			COALESCE(AVG(engagement_score) FILTER (WHERE was_used), 0) AS avg_engagement
		FROM question_insights
		WHERE host_id = ? AND topic <> ''
		GROUP BY topic
		ORDER BY used DESC, generated DESC, topic
		LIMIT ?`, hostID, limit)
	if err != nil {
		return nil, fmt.Errorf("query topic breakdown: %w", err)
	}
	defer rows.Close()

	var out []TopicUsage
	for rows.Next() {
		var u TopicUsage
		if err := rows.Scan(&u.Topic, &u.Generated, &u.Used, &u.AvgEngagement); err != nil {
			return nil, fmt.Errorf("scan topic usage: %w", err)
		}
		u.UsageRate = rate(u.Used, u.Generated)
		out = append(out, u)
	}
	return out, rows.Err()
}

// Summary returns totals and breakdowns for a host.
func (s *Store) Summary(ctx context.Context, hostID string, topicLimit int) (*HostSummary, error) {
	sum := &HostSummary{HostID: hostID}
	err := s.conn.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE was_used), COUNT(DISTINCT show_id)
		FROM question_insights
		WHERE host_id = ?`, hostID).Scan(&sum.Generated, &sum.Used, &sum.Shows)
	if err != nil {
		return nil, fmt.Errorf("query host totals: %w", err)
	}

	if sum.Styles, err = s.StyleBreakdown(ctx, hostID); err != nil {
		return nil, err
	}
	if sum.Topics, err = s.TopicBreakdown(ctx, hostID, topicLimit); err != nil {
		return nil, err
	}
	return sum, nil
}

func rate(used, generated int) float64 {
	if generated == 0 {
		return 0
	}
	return float64(used) / float64(generated)
}
