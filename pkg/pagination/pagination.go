// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides shared types and helpers for API list endpoints.
//
// # Overview
//
// It standardizes how page-based navigation is requested via query parameters
// and how the resulting metadata is delivered in the API response envelope.
package pagination

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is the number of items per page if not specified.
	DefaultLimit = 20
	// MaxLimit is the upper bound for items per page to prevent system abuse.
	MaxLimit = 100
	// DefaultPage is the starting page (1-indexed).
	DefaultPage = 1
)

// Params holds the parsed page and limit from a request's query string.
type Params struct {
	Page  int
	Limit int
}

// Offset returns the SQL OFFSET value derived from [Page] and [Limit].
// It saturates at [math.MaxInt] instead of overflowing for huge pages.
func (p Params) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// Meta is the pagination metadata included in API list responses.
type Meta struct {
	CurrentPage int  `json:"currentPage"`
	Limit       int  `json:"limit"`
	TotalCount  int  `json:"totalCount"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// NewMeta constructs pagination metadata for a response.
//
// TotalPages is ceil(total/limit). A page past the end still reports the true
// totals; it simply has no next page.
func NewMeta(page, limit, total int) Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return Meta{
		CurrentPage: page,
		Limit:       limit,
		TotalCount:  total,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

// FromRequest parses "page" and "limit" query parameters from an HTTP request.
//
// # Clamping
//
// Invalid, negative, or excessive values are automatically clamped to
// [DefaultPage], [DefaultLimit], or [MaxLimit].
func FromRequest(r *http.Request) Params {
	page := parseIntParam(r, "page", DefaultPage)
	limit := parseIntParam(r, "limit", DefaultLimit)

	if page < 1 {
		page = DefaultPage
	}

	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}

	return Params{Page: page, Limit: limit}
}

// RangeError describes a query parameter that failed strict parsing.
type RangeError struct {
	Field   string
	Message string
}

func (e *RangeError) Error() string { return e.Field + ": " + e.Message }

// Parse is the strict variant of [FromRequest].
//
// Missing values fall back to defaults, but malformed or out-of-range values are
// reported instead of clamped. maxLimit bounds the page size.
func Parse(r *http.Request, defaultLimit, maxLimit int) (Params, []*RangeError) {
	var problems []*RangeError

	page, ok := parseStrict(r, "page", DefaultPage)
	if !ok || page < 1 {
		problems = append(problems, &RangeError{Field: "page", Message: "Must be an integer greater than or equal to 1"})
	}

	limit, ok := parseStrict(r, "limit", defaultLimit)
	if !ok || limit < 1 || limit > maxLimit {
		problems = append(problems, &RangeError{Field: "limit", Message: fmt.Sprintf("Must be an integer between 1 and %d", maxLimit)})
	}

	return Params{Page: page, Limit: limit}, problems
}

// parseIntParam parses a single integer query parameter with a fallback default.
func parseIntParam(r *http.Request, key string, defaultVal int) int {
	n, ok := parseStrict(r, key, defaultVal)
	if !ok {
		return defaultVal
	}
	return n
}

// parseStrict returns the default for a missing key and ok=false for garbage.
func parseStrict(r *http.Request, key string, defaultVal int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultVal, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal, false
	}

	return n, true
}
