package vote

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/taibuivan/personae/internal/platform/apperr"
	"github.com/taibuivan/personae/internal/platform/docstore"
	"github.com/taibuivan/personae/internal/social/comment"
	"github.com/taibuivan/personae/internal/social/personality"
	"github.com/taibuivan/personae/internal/social/tally"
	"github.com/taibuivan/personae/pkg/uuid"
)

// MemoryRepository keeps votes in an in-process [docstore.Collection] keyed by
// [Key], and adjusts tallies on a shared [comment.MemoryRepository].
type MemoryRepository struct {
	votes    *docstore.Collection[string, *Vote]
	locks    *docstore.KeyedMutex
	comments *comment.MemoryRepository
	logger   *slog.Logger
	now      func() time.Time
}

// NewMemoryRepository creates an empty vote store over comments.
func NewMemoryRepository(comments *comment.MemoryRepository, logger *slog.Logger) *MemoryRepository {
	return &MemoryRepository{
		votes:    docstore.NewCollection[string, *Vote]((*Vote).Clone),
		locks:    docstore.NewKeyedMutex(),
		comments: comments,
		logger:   logger,
		now:      time.Now,
	}
}

/*
Submit records v, replacing the voter's previous value for the same system.

Description: under the slot lock the vote is upserted first, which yields the
definitive previous value, and the tally delta is applied second. When the
tally cannot be adjusted the slot is restored to what it held before.
*/
func (repository *MemoryRepository) Submit(context context.Context, v *Vote) (*SubmitResult, error) {
	key := KeyOf(v)
	unlock := repository.locks.Lock(key.String())
	defer unlock()

	now := repository.now().UTC()
	var stored *Vote

	previous, existed, err := repository.votes.Upsert(key.String(), func(current *Vote, exists bool) (*Vote, error) {
		if !exists {
			current = v.Clone()
			current.ID = uuid.New()
			current.CreatedAt = now
		}
		current.Value = v.Value
		current.UpdatedAt = now
		stored = current.Clone()
		return current, nil
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	result := &SubmitResult{Vote: stored, IsNewVote: !existed}
	deltas := tally.ForNewVote(v.System, v.Value)
	if existed {
		result.PreviousValue = previous.Value
		deltas = tally.ForChange(v.System, previous.Value, v.Value)
	}

	if len(deltas) > 0 {
		_, err = repository.adjust(context, v.CommentID, deltas)
	} else {
		_, err = repository.comments.FindByID(context, v.CommentID)
	}
	if err != nil {
		repository.restore(key, previous, existed)
		return nil, err
	}
	return result, nil
}

// restore puts a slot back to its state before a failed Submit. The caller
// holds the slot lock.
func (repository *MemoryRepository) restore(key Key, previous *Vote, existed bool) {
	if !existed {
		repository.votes.Delete(key.String())
		return
	}
	_, _, _ = repository.votes.Upsert(key.String(), func(*Vote, bool) (*Vote, error) {
		return previous, nil
	})
}

func (repository *MemoryRepository) Remove(context context.Context, key Key) (*Vote, error) {
	unlock := repository.locks.Lock(key.String())
	defer unlock()

	existing, found := repository.votes.Get(key.String())
	if !found {
		return nil, nil
	}

	if _, err := repository.adjust(context, key.CommentID, tally.ForRemoval(existing.System, existing.Value)); err != nil {
		return nil, err
	}

	removed, _ := repository.votes.Delete(key.String())
	return removed, nil
}

func (repository *MemoryRepository) FindOne(_ context.Context, key Key) (*Vote, error) {
	existing, found := repository.votes.Get(key.String())
	if !found {
		return nil, nil
	}
	return existing, nil
}

func (repository *MemoryRepository) ListForComment(_ context.Context, commentID string, system *personality.System) ([]*Vote, error) {
	votes := repository.votes.Find(func(v *Vote) bool {
		return v.CommentID == commentID && (system == nil || v.System == *system)
	})
	slices.SortFunc(votes, func(a, b *Vote) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return votes, nil
}

func (repository *MemoryRepository) ListByVoter(_ context.Context, voterID string, commentID string, limit int) ([]*Vote, error) {
	votes := repository.votes.Find(func(v *Vote) bool {
		return v.VoterID == voterID && (commentID == "" || v.CommentID == commentID)
	})
	slices.SortFunc(votes, func(a, b *Vote) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if len(votes) > limit {
		votes = votes[:limit]
	}
	return votes, nil
}

// adjust applies deltas to the comment tally and logs decrements that found
// nothing to remove.
func (repository *MemoryRepository) adjust(context context.Context, commentID string, deltas []tally.Delta) (*comment.Comment, error) {
	updated, skipped, err := repository.comments.AdjustTally(context, commentID, deltas)
	if err != nil {
		return nil, err
	}
	logSkipped(context, repository.logger, commentID, skipped)
	return updated, nil
}

func logSkipped(context context.Context, logger *slog.Logger, commentID string, skipped []tally.Delta) {
	for _, delta := range skipped {
		logger.WarnContext(context, "vote_tally_skipped",
			slog.String("comment_id", commentID),
			slog.String("system", string(delta.System)),
			slog.String("value", delta.Value),
			slog.Int("change", delta.Change),
		)
	}
}
