// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package hostprofile

import (
	"math"

	"github.com/tomtom215/cuecard/internal/models"
)

// Neutral is the fit score used whenever a profile cannot be trusted.
const Neutral = 0.5

// Sub-score weights of the fit score.
const (
	styleWeight      = 0.30
	complexityWeight = 0.25
	lengthWeight     = 0.20
	topicWeight      = 0.25

	// lengthTolerance is the word difference at which length fit reaches 0.
	lengthTolerance = 20.0

	// confidenceSteepness is the slope of the logistic confidence curve.
	confidenceSteepness = 0.1
)

// FitBreakdown holds the sub-scores behind a fit score.
type FitBreakdown struct {
	Style      float64 `json:"style"`
	Complexity float64 `json:"complexity"`
	Length     float64 `json:"length"`
	Topic      float64 `json:"topic"`
	Raw        float64 `json:"raw"`
	Final      float64 `json:"final"`
}

// FitScore rates how well a candidate matches a profile. The weighted raw
// score is pulled toward Neutral by the profile's confidence, so a profile
// built from little data cannot move rankings much.
func FitScore(p *models.HostProfile, c *models.Candidate) FitBreakdown {
	b := FitBreakdown{
		Style:      stylePreference(p, ClassifyStyle(c.Text)),
		Complexity: math.Max(0, 1-math.Abs(c.ComplexityOrDefault()-p.AvgComplexity)),
		Length:     math.Max(0, 1-math.Abs(float64(c.WordCount())-p.AvgLength)/lengthTolerance),
		Topic:      topicPreference(p, c.Topic),
	}
	b.Raw = b.Style*styleWeight + b.Complexity*complexityWeight + b.Length*lengthWeight + b.Topic*topicWeight

	conf := p.ConfidenceScore
	b.Final = clamp01(b.Raw*conf + Neutral*(1-conf))
	return b
}

func stylePreference(p *models.HostProfile, style models.QuestionStyle) float64 {
	if v, ok := p.StylePreferences[style]; ok {
		return v
	}
	return Neutral
}

func topicPreference(p *models.HostProfile, topic string) float64 {
	if topic == "" {
		return Neutral
	}
	if v, ok := p.TopicPreferences[topic]; ok {
		return v
	}
	return Neutral
}

// Confidence maps a used-question count to [0,1] with a logistic curve
// centred on midpoint.
func Confidence(used, midpoint int) float64 {
	return 1 / (1 + math.Exp(-confidenceSteepness*float64(used-midpoint)))
}

// ApplyUsage folds one used question into the profile's running preferences.
func ApplyUsage(p *models.HostProfile, insight *models.QuestionInsight, lr float64) {
	p.EnsureMaps()

	p.AvgComplexity = p.AvgComplexity*(1-lr) + insight.Complexity*lr
	p.AvgLength = math.Round(p.AvgLength*(1-lr) + float64(insight.Length)*lr)
	if insight.TimeToUseSeconds > 0 {
		p.AvgTimeToUse = math.Round(p.AvgTimeToUse*(1-lr) + insight.TimeToUseSeconds*lr)
	}

	if _, ok := p.StylePreferences[insight.Style]; !ok {
		p.StylePreferences[insight.Style] = Neutral
	}
	for s, v := range p.StylePreferences {
		if s == insight.Style {
			p.StylePreferences[s] = math.Min(1, v+lr*0.1)
		} else {
			p.StylePreferences[s] = math.Max(0, v-lr*0.025)
		}
	}

	if insight.Topic != "" {
		v, ok := p.TopicPreferences[insight.Topic]
		if !ok {
			v = Neutral
		}
		p.TopicPreferences[insight.Topic] = math.Min(1, v+lr*0.1)
	}

	if insight.EngagementScore > 0 {
		prev, ok := p.EngagementByStyle[insight.Style]
		if !ok {
			prev = insight.EngagementScore
		}
		p.EngagementByStyle[insight.Style] = prev*(1-lr) + insight.EngagementScore*lr
	}

	p.PreferredStyle = preferredStyle(p.StylePreferences)
}

// preferredStyle returns the style with the highest preference. Ties go to
// the style listed first in models.AllStyles.
func preferredStyle(prefs map[models.QuestionStyle]float64) models.QuestionStyle {
	best := models.StyleUnknown
	bestScore := math.Inf(-1)
	for _, s := range models.AllStyles {
		if v, ok := prefs[s]; ok && v > bestScore {
			best, bestScore = s, v
		}
	}
	return best
}

// RefreshUsage recomputes usage rate, ignored count and confidence from the counters.
func RefreshUsage(p *models.HostProfile, minQuestions int) {
	if p.TotalQuestionsGenerated > 0 {
		p.UsageRate = float64(p.TotalQuestionsAsked) / float64(p.TotalQuestionsGenerated)
		p.TotalQuestionsIgnored = max(0, p.TotalQuestionsGenerated-p.TotalQuestionsAsked)
	}
	p.ConfidenceScore = Confidence(p.TotalQuestionsAsked, minQuestions)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
