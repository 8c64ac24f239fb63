package comment

import (
	"context"

	"github.com/taibuivan/personae/internal/social/tally"
)

// Repository is the persistence contract for comments.
//
// FindByID and List only ever return visible comments. Vote tallies are
// written by the vote stores, never through this interface.
type Repository interface {
	Create(context context.Context, comment *Comment) error
	FindByID(context context.Context, id string) (*Comment, error)
	List(context context.Context, filter Filter, order Sort, limit, offset int) ([]*Comment, int, error)
	SoftDelete(context context.Context, id string) error

	// CountForProfile counts a profile's comments, hidden ones included.
	CountForProfile(context context.Context, profileID int) (int, error)

	// SumVoteStats adds up the tallies of every visible comment.
	SumVoteStats(context context.Context) (tally.Stats, error)
}

var (
	_ Repository = (*PostgresRepository)(nil)
	_ Repository = (*MemoryRepository)(nil)
)
