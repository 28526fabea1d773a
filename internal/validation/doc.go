// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

// Package validation validates API requests with go-playground/validator v10.
//
// A single validator instance is shared by all handlers. Errors name fields by
// their JSON key, including the position inside slices, so a client sees
// "candidates[3].question_text is required" rather than a Go field name.
//
//	var req RankRequest
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message)
//	    return
//	}
//
// Path parameters go through ValidateIdentifier.
package validation
