package vote

import (
	"context"

	"github.com/taibuivan/personae/internal/social/personality"
)

// Repository is the persistence contract for votes.
//
// Submit and Remove adjust the comment's tally in the same atomic unit as the
// vote write. Both fail with comment NotFound when the comment is missing or
// hidden.
type Repository interface {
	Submit(context context.Context, vote *Vote) (*SubmitResult, error)

	// Remove deletes the vote in key and returns it, or nil when none existed.
	Remove(context context.Context, key Key) (*Vote, error)

	// FindOne returns the vote in key, or nil when none exists.
	FindOne(context context.Context, key Key) (*Vote, error)

	ListForComment(context context.Context, commentID string, system *personality.System) ([]*Vote, error)
	ListByVoter(context context.Context, voterID string, commentID string, limit int) ([]*Vote, error)
}

var (
	_ Repository = (*PostgresRepository)(nil)
	_ Repository = (*MemoryRepository)(nil)
)
