// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package vote records personality votes on comments and keeps comment tallies in
step with them.

A voter holds at most one vote per (comment, personality system). Voting again
under the same system replaces the value in place. Every state change to a vote
and the matching tally delta on its comment happen in one atomic unit:

  - PostgreSQL: a single transaction holding the vote and comment row locks
  - Memory: a per-(comment, voter, system) lock around the vote write and the
    comment's atomic tally update

Voters are anonymous. Their identifier is derived from request metadata by
[Identify].
*/
package vote

import (
	"time"

	"github.com/taibuivan/personae/internal/platform/apperr"
	"github.com/taibuivan/personae/internal/social/personality"
)

// Vote is one voter's pick for one personality system on one comment.
type Vote struct {
	ID        string             `json:"id"`
	CommentID string             `json:"commentId"`
	ProfileID int                `json:"profileId"`
	System    personality.System `json:"personalitySystem"`
	Value     string             `json:"personalityValue"`
	VoterID   string             `json:"-"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Clone returns a copy of v.
func (v *Vote) Clone() *Vote {
	if v == nil {
		return nil
	}
	copied := *v
	return &copied
}

// Key identifies the single vote slot a voter holds per comment and system.
type Key struct {
	CommentID string
	VoterID   string
	System    personality.System
}

func (k Key) String() string {
	return k.CommentID + "|" + k.VoterID + "|" + string(k.System)
}

// KeyOf returns the slot v occupies.
func KeyOf(v *Vote) Key {
	return Key{CommentID: v.CommentID, VoterID: v.VoterID, System: v.System}
}

// SubmitResult describes the outcome of a submission.
type SubmitResult struct {
	Vote *Vote

	// IsNewVote is false when an existing vote was replaced or resubmitted.
	IsNewVote bool

	// PreviousValue is the value held before the submission, empty for new votes.
	PreviousValue string
}

// Global field names for validation
const (
	FieldSystem    = "personalitySystem"
	FieldValue     = "personalityValue"
	FieldProfileID = "profileId"
	FieldLimit     = "limit"
)

// NotFound is the error for a voter holding no vote in the requested slot.
func NotFound(commentID string) *apperr.AppError {
	return apperr.NotFoundID("Vote", commentID)
}
