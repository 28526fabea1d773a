// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package validation

import (
	"strings"
	"testing"
)

type testCandidate struct {
	Text       string   `json:"question_text" validate:"required,notblank,max=20"`
	Confidence *float64 `json:"confidence,omitempty" validate:"omitempty,min=0,max=1"`
}

type testRequest struct {
	HostID     string          `json:"host_id" validate:"required,identifier"`
	Candidates []testCandidate `json:"candidates" validate:"required,min=1,max=3,dive"`
	Internal   string          `json:"-"`
}

func ptr(v float64) *float64 { return &v }

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()
	if v1 == nil {
		t.Fatal("GetValidator() should not return nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same instance")
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     testRequest
		wantField string
		wantTag   string
	}{
		{
			name: "valid",
			input: testRequest{
				HostID:     "host-1",
				Candidates: []testCandidate{{Text: "Why now?", Confidence: ptr(0.9)}},
			},
		},
		{
			name:      "missing host",
			input:     testRequest{Candidates: []testCandidate{{Text: "q"}}},
			wantField: "host_id",
			wantTag:   "required",
		},
		{
			name:      "bad host id",
			input:     testRequest{HostID: "host 1", Candidates: []testCandidate{{Text: "q"}}},
			wantField: "host_id",
			wantTag:   "identifier",
		},
		{
			name:      "no candidates",
			input:     testRequest{HostID: "h", Candidates: []testCandidate{}},
			wantField: "candidates",
			wantTag:   "min",
		},
		{
			name: "too many candidates",
			input: testRequest{HostID: "h", Candidates: []testCandidate{
				{Text: "a"}, {Text: "b"}, {Text: "c"}, {Text: "d"},
			}},
			wantField: "candidates",
			wantTag:   "max",
		},
		{
			name:      "blank text",
			input:     testRequest{HostID: "h", Candidates: []testCandidate{{Text: "a"}, {Text: "   "}}},
			wantField: "candidates[1].question_text",
			wantTag:   "notblank",
		},
		{
			name:      "confidence out of range",
			input:     testRequest{HostID: "h", Candidates: []testCandidate{{Text: "a", Confidence: ptr(1.5)}}},
			wantField: "candidates[0].confidence",
			wantTag:   "max",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(&tt.input)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			if len(verr.Fields) != 1 {
				t.Fatalf("len(Fields) = %d, want 1 (%v)", len(verr.Fields), verr)
			}
			if got := verr.Fields[0].Field; got != tt.wantField {
				t.Errorf("Field = %q, want %q", got, tt.wantField)
			}
			if got := verr.Fields[0].Tag; got != tt.wantTag {
				t.Errorf("Tag = %q, want %q", got, tt.wantTag)
			}
		})
	}
}

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		value string
		valid bool
	}{
		{"show-42", true},
		{"2026.10.17:late", true},
		{"a_b", true},
		{"", false},
		{"-leading", false},
		{"has space", false},
		{"semi;colon", false},
		{strings.Repeat("x", 129), false},
	}
	for _, tt := range tests {
		verr := ValidateIdentifier("show_id", tt.value)
		if (verr == nil) != tt.valid {
			t.Errorf("ValidateIdentifier(%q) = %v, want valid=%v", tt.value, verr, tt.valid)
		}
		if verr != nil && verr.Fields[0].Field != "show_id" {
			t.Errorf("Field = %q, want show_id", verr.Fields[0].Field)
		}
	}
}

func TestToAPIError(t *testing.T) {
	single := ValidateStruct(&testRequest{Candidates: []testCandidate{{Text: "q"}}})
	apiErr := single.ToAPIError()
	if apiErr.Code != CodeValidation {
		t.Errorf("Code = %q, want %q", apiErr.Code, CodeValidation)
	}
	if apiErr.Message != "host_id is required" {
		t.Errorf("Message = %q, want %q", apiErr.Message, "host_id is required")
	}
	if apiErr.Details["field"] != "host_id" {
		t.Errorf("Details[field] = %v, want host_id", apiErr.Details["field"])
	}

	multi := ValidateStruct(&testRequest{})
	apiErr = multi.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 2 {
		t.Fatalf("Details[fields] = %v, want 2 field errors", apiErr.Details["fields"])
	}
	if !strings.Contains(apiErr.Message, "; ") {
		t.Errorf("Message = %q, want joined messages", apiErr.Message)
	}
}

func TestMessages(t *testing.T) {
	tests := []struct {
		name  string
		input testRequest
		want  string
	}{
		{
			name:  "string max",
			input: testRequest{HostID: "h", Candidates: []testCandidate{{Text: strings.Repeat("a", 21)}}},
			want:  "candidates[0].question_text must be at most 20 characters",
		},
		{
			name:  "slice min",
			input: testRequest{HostID: "h", Candidates: []testCandidate{}},
			want:  "candidates must be at least 1 items",
		},
		{
			name:  "number max",
			input: testRequest{HostID: "h", Candidates: []testCandidate{{Text: "a", Confidence: ptr(2)}}},
			want:  "candidates[0].confidence must be at most 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(&tt.input)
			if verr == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			if got := verr.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
