// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package hostprofile

import (
	"math"
	"testing"
	"time"

	"github.com/tomtom215/cuecard/internal/models"
)

func TestClassifyStyle(t *testing.T) {
	tests := []struct {
		text string
		want models.QuestionStyle
	}{
		{"What do you think about the new album?", models.StyleOpenEnded},
		{"Can you explain how the tour came together?", models.StyleOpenEnded},
		{"Did you expect the reaction?", models.StyleSpecific},
		{"What happened in 2019?", models.StyleSpecific},
		{"Why would anyone skip the encore?", models.StyleProvocative},
		{"Isn't it strange that nobody noticed?", models.StyleProvocative},
		{"How would you compare the two records?", models.StyleAnalytical},
		{"What is the relationship between fame and art?", models.StyleAnalytical},
		{"Where is the studio?", models.StyleUnknown},
		// first rule wins
		{"What do you think happened in 2019?", models.StyleOpenEnded},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := ClassifyStyle(tt.text); got != tt.want {
				t.Errorf("ClassifyStyle(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestConfidence(t *testing.T) {
	if got := Confidence(20, 20); got != 0.5 {
		t.Errorf("Confidence(20, 20) = %v, want 0.5", got)
	}
	if got := Confidence(0, 20); math.Abs(got-1/(1+math.Exp(2))) > 1e-12 {
		t.Errorf("Confidence(0, 20) = %v", got)
	}
	if got := Confidence(60, 20); got < 0.98 {
		t.Errorf("Confidence(60, 20) = %v, want > 0.98", got)
	}
}

func TestFitScore_ZeroConfidenceIsNeutral(t *testing.T) {
	p := models.NewHostProfile("h", "Host", time.Now())
	p.StylePreferences[models.StyleSpecific] = 1
	p.TopicPreferences["music"] = 1

	for _, text := range []string{"Did you write it in 2010?", "Tell me about the music", ""} {
		c := &models.Candidate{Text: text, Topic: "music", Complexity: models.Float(0.9)}
		if got := FitScore(p, c).Final; got != Neutral {
			t.Errorf("FitScore(%q).Final = %v, want %v", text, got, Neutral)
		}
	}
}

func TestFitScore_Components(t *testing.T) {
	p := models.NewHostProfile("h", "Host", time.Now())
	p.ConfidenceScore = 1
	p.AvgComplexity = 0.4
	p.AvgLength = 5
	p.StylePreferences[models.StyleOpenEnded] = 0.9
	p.TopicPreferences["music"] = 0.8

	c := &models.Candidate{
		Text:       "Tell me about the band", // 5 words, open-ended
		Topic:      "music",
		Complexity: models.Float(0.6),
	}
	b := FitScore(p, c)

	if b.Style != 0.9 {
		t.Errorf("Style = %v, want 0.9", b.Style)
	}
	if math.Abs(b.Complexity-0.8) > 1e-9 {
		t.Errorf("Complexity = %v, want 0.8", b.Complexity)
	}
	if b.Length != 1 {
		t.Errorf("Length = %v, want 1", b.Length)
	}
	if b.Topic != 0.8 {
		t.Errorf("Topic = %v, want 0.8", b.Topic)
	}
	want := 0.9*0.3 + 0.8*0.25 + 1*0.2 + 0.8*0.25
	if math.Abs(b.Final-want) > 1e-9 {
		t.Errorf("Final = %v, want %v", b.Final, want)
	}
}

func TestFitScore_ConfidenceBlend(t *testing.T) {
	p := models.NewHostProfile("h", "Host", time.Now())
	p.ConfidenceScore = 0.5
	p.AvgLength = 45 // 40 words away from a 5 word question

	c := &models.Candidate{Text: "where is the studio located"}
	b := FitScore(p, c)
	if b.Length != 0 {
		t.Errorf("Length = %v, want 0", b.Length)
	}
	want := b.Raw*0.5 + 0.5*0.5
	if math.Abs(b.Final-want) > 1e-9 {
		t.Errorf("Final = %v, want %v", b.Final, want)
	}
}

func TestApplyUsage(t *testing.T) {
	p := models.NewHostProfile("h", "Host", time.Now())
	insight := &models.QuestionInsight{
		Complexity:       0.9,
		Length:           25,
		Style:            models.StyleProvocative,
		Topic:            "politics",
		TimeToUseSeconds: 40,
		EngagementScore:  0.8,
	}

	ApplyUsage(p, insight, 0.1)

	if math.Abs(p.AvgComplexity-0.54) > 1e-9 {
		t.Errorf("AvgComplexity = %v, want 0.54", p.AvgComplexity)
	}
	if p.AvgLength != 16 { // round(15*0.9 + 25*0.1) = round(16.0)
		t.Errorf("AvgLength = %v, want 16", p.AvgLength)
	}
	if p.AvgTimeToUse != 4 {
		t.Errorf("AvgTimeToUse = %v, want 4", p.AvgTimeToUse)
	}
	if math.Abs(p.StylePreferences[models.StyleProvocative]-0.51) > 1e-9 {
		t.Errorf("provocative = %v, want 0.51", p.StylePreferences[models.StyleProvocative])
	}
	if math.Abs(p.StylePreferences[models.StyleOpenEnded]-0.4975) > 1e-9 {
		t.Errorf("open-ended = %v, want 0.4975", p.StylePreferences[models.StyleOpenEnded])
	}
	if math.Abs(p.TopicPreferences["politics"]-0.51) > 1e-9 {
		t.Errorf("topic = %v, want 0.51", p.TopicPreferences["politics"])
	}
	if p.PreferredStyle != models.StyleProvocative {
		t.Errorf("PreferredStyle = %v, want provocative", p.PreferredStyle)
	}
	if math.Abs(p.EngagementByStyle[models.StyleProvocative]-0.8) > 1e-9 {
		t.Errorf("EngagementByStyle = %v, want 0.8", p.EngagementByStyle[models.StyleProvocative])
	}
}

func TestApplyUsage_ZeroTimeKeepsAverage(t *testing.T) {
	p := models.NewHostProfile("h", "Host", time.Now())
	p.AvgTimeToUse = 30
	ApplyUsage(p, &models.QuestionInsight{Style: models.StyleUnknown, Length: 15, Complexity: 0.5}, 0.1)
	if p.AvgTimeToUse != 30 {
		t.Errorf("AvgTimeToUse = %v, want 30", p.AvgTimeToUse)
	}
}

func TestMeasureEngagement(t *testing.T) {
	s := &models.EngagementSample{
		ChatActivityBefore: 10,
		ChatActivityAfter:  15,
		ViewersBefore:      100,
		ViewersAfter:       90,
		SentimentBefore:    models.Float(0.1),
		SentimentAfter:     models.Float(0.5),
	}
	e := MeasureEngagement(s)

	if math.Abs(e.ChatActivityChange-50) > 1e-9 {
		t.Errorf("ChatActivityChange = %v, want 50", e.ChatActivityChange)
	}
	if math.Abs(e.ViewerRetention-90) > 1e-9 {
		t.Errorf("ViewerRetention = %v, want 90", e.ViewerRetention)
	}
	if math.Abs(e.SentimentChange-0.4) > 1e-9 {
		t.Errorf("SentimentChange = %v, want 0.4", e.SentimentChange)
	}
	want := 0.75*0.5 + 0.9*0.3 + 0.7*0.2
	if math.Abs(e.Score-want) > 1e-9 {
		t.Errorf("Score = %v, want %v", e.Score, want)
	}
}

func TestMeasureEngagement_ZeroBaseline(t *testing.T) {
	e := MeasureEngagement(&models.EngagementSample{ChatActivityAfter: 3, ViewersAfter: 2})
	if e.ChatActivityChange != 300 || e.ViewerRetention != 200 {
		t.Errorf("MeasureEngagement() = %+v, want 300%% chat and 200%% retention", e)
	}
	// clamped chat 1, retention 1, neutral sentiment 0.5
	if want := 0.5 + 0.3 + 0.1; math.Abs(e.Score-want) > 1e-9 {
		t.Errorf("Score = %v, want %v", e.Score, want)
	}
}
