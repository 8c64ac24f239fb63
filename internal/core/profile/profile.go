// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package profile manages the catalogue of personality profiles that comments are
attached to.

Profile ids are assigned externally (1 to 99999) so that links stay stable
across environments. Reads are public; writes are restricted to admins.
*/
package profile

import "time"

// Profile is a person or character whose personality the community types.
type Profile struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Category    string    `json:"category"`
	MBTI        *string   `json:"mbti"`
	Enneagram   *string   `json:"enneagram"`
	Zodiac      *string   `json:"zodiac"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Filter holds the parameters for a paginated profile search.
type Filter struct {
	Query    string // Case-insensitive substring match on name
	Category string // Exact category match
}

// Global field names for validation
const (
	FieldID          = "id"
	FieldName        = "name"
	FieldCategory    = "category"
	FieldMBTI        = "mbti"
	FieldEnneagram   = "enneagram"
	FieldZodiac      = "zodiac"
	FieldDescription = "description"
	FieldImage       = "image"
)

func cloneProfile(p *Profile) *Profile {
	if p == nil {
		return nil
	}
	copied := *p
	copied.MBTI = cloneString(p.MBTI)
	copied.Enneagram = cloneString(p.Enneagram)
	copied.Zodiac = cloneString(p.Zodiac)
	return &copied
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	value := *s
	return &value
}
