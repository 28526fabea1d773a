// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cuecard/internal/models"
	"github.com/tomtom215/cuecard/internal/validation"
)

// maxBodyBytes bounds request bodies. A full batch of 100 long candidates
// fits comfortably.
const maxBodyBytes = 1 << 20

// Query bounds for GET /shows/{showID}/memory/recent.
const (
	defaultRecentMinutes = 30
	maxRecentMinutes     = 24 * 60
)

// StartShowRequest is the body of POST /shows/{showID}/start.
type StartShowRequest struct {
	HostID   string `json:"host_id" validate:"required,identifier"`
	HostName string `json:"host_name" validate:"max=200"`
}

// RankRequest is the body of POST /shows/{showID}/rank.
type RankRequest struct {
	Candidates []models.Candidate `json:"candidates" validate:"required,min=1,max=100,dive"`
}

// UsedRequest is the body of POST /shows/{showID}/used.
// TimeToUse is in seconds.
type UsedRequest struct {
	Text       string                   `json:"text" validate:"required,notblank"`
	TimeToUse  float64                  `json:"time_to_use" validate:"min=0,max=86400"`
	Engagement *models.EngagementSample `json:"engagement,omitempty"`
}

// TimeToUseDuration converts the seconds field.
func (r *UsedRequest) TimeToUseDuration() time.Duration {
	return time.Duration(r.TimeToUse * float64(time.Second))
}

// decodeAndValidate reads a JSON body into dst and validates it. It writes
// the error response and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	rw := NewResponseWriter(w, r)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			rw.Error(http.StatusRequestEntityTooLarge, ErrCodeBadRequest,
				fmt.Sprintf("Request body exceeds %d bytes", maxBodyBytes))
			return false
		}
		rw.BadRequest("Failed to read request body")
		return false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		rw.BadRequest("Request body is required")
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		rw.BadRequest("Invalid JSON body")
		return false
	}

	if verr := validation.ValidateStruct(dst); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return false
	}
	return true
}
