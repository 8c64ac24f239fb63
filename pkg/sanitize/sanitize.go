// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package sanitize strips markup from user-submitted text.

Comments and profile descriptions are stored and served as plain text, so every
tag is removed with bluemonday's strict policy. Entities produced by the policy
are decoded again, which keeps "R&B" as typed instead of "R&amp;B".
*/
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text removes all HTML from s and trims surrounding whitespace.
func Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// OptionalText applies [Text] to a pointer and returns nil when the result is empty.
func OptionalText(s *string) *string {
	if s == nil {
		return nil
	}
	cleaned := Text(*s)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
