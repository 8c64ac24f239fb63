// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package comment owns profile comments and their ranked listings.

Each comment carries a denormalized vote tally (voteStats and totalVotes)
maintained by the vote stores. Listings and rankings read those fields only and
never scan the vote table.

Sort orders:

  - recent: newest first
  - oldest: oldest first
  - best: most votes first, ties broken by newest, then by id
*/
package comment

import (
	"strings"
	"time"

	"github.com/taibuivan/personae/internal/platform/apperr"
	"github.com/taibuivan/personae/internal/social/personality"
	"github.com/taibuivan/personae/internal/social/tally"
)

// Comment is a visitor's remark on a profile.
type Comment struct {
	ID         string      `json:"id"`
	ProfileID  int         `json:"profileId"`
	Content    string      `json:"content"`
	Title      *string     `json:"title"`
	Author     string      `json:"author"`
	IsVisible  bool        `json:"-"`
	VoteStats  tally.Stats `json:"voteStats"`
	TotalVotes int         `json:"totalVotes"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// # Listing Options

// Sort selects the order of a comment listing.
type Sort string

const (
	SortRecent Sort = "recent"
	SortOldest Sort = "oldest"
	SortBest   Sort = "best"
)

// FilterAll is the listing filter that matches every comment.
const FilterAll = "all"

// ParseSort resolves a sort name; empty means recent.
func ParseSort(raw string) (Sort, bool) {
	switch order := Sort(strings.ToLower(strings.TrimSpace(raw))); order {
	case "":
		return SortRecent, true
	case SortRecent, SortOldest, SortBest:
		return order, true
	default:
		return "", false
	}
}

// ParseFilter resolves a listing filter; empty and "all" yield a nil system.
func ParseFilter(raw string) (*personality.System, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" || normalized == FilterAll {
		return nil, true
	}
	system, ok := personality.ParseSystem(normalized)
	if !ok {
		return nil, false
	}
	return &system, true
}

// Filter narrows a listing. Only visible comments are ever listed.
type Filter struct {
	ProfileID *int
	System    *personality.System // comment holds at least one vote under System
}

// Matches reports whether c passes the filter.
func (f Filter) Matches(c *Comment) bool {
	if !c.IsVisible {
		return false
	}
	if f.ProfileID != nil && c.ProfileID != *f.ProfileID {
		return false
	}
	if f.System != nil && !c.VoteStats.HasSystem(*f.System) {
		return false
	}
	return true
}

// Global field names for validation
const (
	FieldContent = "content"
	FieldTitle   = "title"
	FieldAuthor  = "author"
	FieldSort    = "sort"
	FieldFilter  = "filter"
	FieldPage    = "page"
	FieldLimit   = "limit"
)

// NotFound is the error for a missing or hidden comment.
func NotFound(id string) *apperr.AppError {
	return apperr.NotFoundID("Comment", id)
}

// Less reports whether a sorts before b under order.
func (order Sort) Less(a, b *Comment) bool {
	switch order {
	case SortOldest:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	case SortBest:
		if a.TotalVotes != b.TotalVotes {
			return a.TotalVotes > b.TotalVotes
		}
		fallthrough
	default:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	}
}

// Clone returns a deep copy of c.
func (c *Comment) Clone() *Comment {
	if c == nil {
		return nil
	}
	copied := *c
	if c.Title != nil {
		title := *c.Title
		copied.Title = &title
	}
	copied.VoteStats = c.VoteStats.Clone()
	return &copied
}
