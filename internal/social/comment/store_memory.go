package comment

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/taibuivan/personae/internal/platform/apperr"
	"github.com/taibuivan/personae/internal/platform/docstore"
	"github.com/taibuivan/personae/internal/social/tally"
)

// MemoryRepository keeps comments in an in-process [docstore.Collection].
//
// The vote memory store shares this repository and adjusts tallies through
// [MemoryRepository.AdjustTally], which is atomic per comment.
type MemoryRepository struct {
	comments *docstore.Collection[string, *Comment]
	now      func() time.Time
}

// MemoryOption customizes a [MemoryRepository].
type MemoryOption func(*MemoryRepository)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) MemoryOption {
	return func(repository *MemoryRepository) { repository.now = now }
}

// NewMemoryRepository creates an empty in-memory comment store.
func NewMemoryRepository(options ...MemoryOption) *MemoryRepository {
	repository := &MemoryRepository{
		comments: docstore.NewCollection[string, *Comment]((*Comment).Clone),
		now:      time.Now,
	}
	for _, option := range options {
		option(repository)
	}
	return repository
}

func (repository *MemoryRepository) Create(_ context.Context, comment *Comment) error {
	now := repository.now().UTC()
	comment.CreatedAt, comment.UpdatedAt = now, now
	if comment.VoteStats == nil {
		comment.VoteStats = tally.Stats{}
	}

	if err := repository.comments.Insert(comment.ID, comment); err != nil {
		if errors.Is(err, docstore.ErrDuplicateKey) {
			return apperr.Conflict("Comment already exists")
		}
		return apperr.Internal(err)
	}
	return nil
}

func (repository *MemoryRepository) FindByID(_ context.Context, id string) (*Comment, error) {
	comment, ok := repository.comments.Get(id)
	if !ok || !comment.IsVisible {
		return nil, NotFound(id)
	}
	return comment, nil
}

func (repository *MemoryRepository) List(_ context.Context, filter Filter, order Sort, limit, offset int) ([]*Comment, int, error) {
	matches := repository.comments.Find(filter.Matches)
	slices.SortFunc(matches, func(a, b *Comment) int {
		switch {
		case order.Less(a, b):
			return -1
		case order.Less(b, a):
			return 1
		default:
			return 0
		}
	})

	total := len(matches)
	if offset < 0 || offset >= total {
		return []*Comment{}, total, nil
	}
	return matches[offset:min(offset+limit, total)], total, nil
}

func (repository *MemoryRepository) SoftDelete(_ context.Context, id string) error {
	_, err := repository.comments.Update(id, func(current *Comment) (*Comment, error) {
		if !current.IsVisible {
			return nil, NotFound(id)
		}
		current.IsVisible = false
		current.UpdatedAt = repository.now().UTC()
		return current, nil
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return NotFound(id)
	}
	return err
}

func (repository *MemoryRepository) CountForProfile(_ context.Context, profileID int) (int, error) {
	return repository.comments.Count(func(c *Comment) bool { return c.ProfileID == profileID }), nil
}

func (repository *MemoryRepository) SumVoteStats(_ context.Context) (tally.Stats, error) {
	sum := tally.Stats{}
	for _, comment := range repository.comments.Find(func(c *Comment) bool { return c.IsVisible }) {
		for system, bucket := range comment.VoteStats {
			for value, count := range bucket {
				sum.Apply(tally.Delta{System: system, Value: value, Change: count})
			}
		}
	}
	return sum, nil
}

/*
AdjustTally applies vote deltas to a visible comment's tally in one atomic step.

Returns:
  - *Comment: The comment after adjustment
  - []tally.Delta: Decrements skipped because the bucket was already empty
  - error: NotFound when the comment is missing or hidden
*/
func (repository *MemoryRepository) AdjustTally(_ context.Context, id string, deltas []tally.Delta) (*Comment, []tally.Delta, error) {
	var skipped []tally.Delta

	updated, err := repository.comments.Update(id, func(current *Comment) (*Comment, error) {
		if !current.IsVisible {
			return nil, NotFound(id)
		}
		var applied int
		applied, skipped = current.VoteStats.Apply(deltas...)
		current.TotalVotes += applied
		current.UpdatedAt = repository.now().UTC()
		return current, nil
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil, NotFound(id)
	}
	if err != nil {
		return nil, nil, err
	}

	return updated, skipped, nil
}
