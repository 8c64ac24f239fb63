package vote_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/personae/internal/core/profile"
	"github.com/taibuivan/personae/internal/platform/apperr"
	"github.com/taibuivan/personae/internal/platform/metrics"
	"github.com/taibuivan/personae/internal/platform/ratelimit"
	"github.com/taibuivan/personae/internal/social/comment"
	"github.com/taibuivan/personae/internal/social/personality"
	"github.com/taibuivan/personae/internal/social/vote"
	"github.com/taibuivan/personae/pkg/pointer"
)

// # Fixtures

type fixture struct {
	votes    *vote.Service
	comments *comment.Service
	store    *vote.MemoryRepository
	target   *comment.Comment
}

func newFixture(t *testing.T, limiter ratelimit.Store) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	registry := metrics.New()

	commentStore := comment.NewMemoryRepository()
	profiles := profile.NewService(profile.NewMemoryRepository(), commentStore, logger)
	require.NoError(t, profiles.Create(ctx, &profile.Profile{ID: 12, Name: "Frida Kahlo"}))

	comments := comment.NewService(commentStore, profiles, registry, logger, 50)
	target, err := comments.Create(ctx, 12, comment.CreateInput{Content: "Such a 4w3"})
	require.NoError(t, err)

	store := vote.NewMemoryRepository(commentStore, logger)
	votes := vote.NewService(store, comments, logger, vote.Options{
		Limiter:        limiter,
		Metrics:        registry,
		MaxValueLength: 32,
	})

	return &fixture{votes: votes, comments: comments, store: store, target: target}
}

func (f *fixture) reload(t *testing.T) *comment.Comment {
	t.Helper()
	current, err := f.comments.Get(context.Background(), f.target.ID)
	require.NoError(t, err)
	return current
}

// assertConsistent checks that totalVotes equals the sum of the tally.
func assertConsistent(t *testing.T, c *comment.Comment) {
	t.Helper()
	assert.Equal(t, c.VoteStats.Total(), c.TotalVotes, "totalVotes must equal the tally sum")
	for system, bucket := range c.VoteStats {
		for value, count := range bucket {
			assert.Positive(t, count, "%s/%s", system, value)
		}
	}
}

// # Submission

func TestSubmit_IdempotentRevote(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	input := vote.SubmitInput{System: "mbti", Value: "intj"}

	first, err := f.votes.Submit(ctx, f.target.ID, "voter-a", input)
	require.NoError(t, err)
	assert.True(t, first.IsNewVote)
	assert.Equal(t, "INTJ", first.Vote.Value)
	assert.Equal(t, 12, first.Vote.ProfileID)
	assert.Equal(t, 1, f.reload(t).TotalVotes)

	second, err := f.votes.Submit(ctx, f.target.ID, "voter-a", input)
	require.NoError(t, err)
	assert.False(t, second.IsNewVote)
	assert.Equal(t, "INTJ", second.PreviousValue)
	assert.Equal(t, first.Vote.ID, second.Vote.ID)

	current := f.reload(t)
	assert.Equal(t, 1, current.TotalVotes)
	assert.Equal(t, 1, current.VoteStats[personality.MBTI]["INTJ"])

	votes, err := f.votes.ListForComment(ctx, f.target.ID, "")
	require.NoError(t, err)
	assert.Len(t, votes, 1)
}

func TestSubmit_RevoteMovesCount(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first, err := f.votes.Submit(ctx, f.target.ID, "voter-a", vote.SubmitInput{System: "mbti", Value: "INTJ"})
	require.NoError(t, err)

	second, err := f.votes.Submit(ctx, f.target.ID, "voter-a", vote.SubmitInput{System: "MBTI", Value: "ENFP"})
	require.NoError(t, err)
	assert.False(t, second.IsNewVote)
	assert.Equal(t, "INTJ", second.PreviousValue)
	assert.Equal(t, first.Vote.ID, second.Vote.ID)
	assert.Equal(t, first.Vote.CreatedAt, second.Vote.CreatedAt)

	current := f.reload(t)
	assert.Equal(t, 1, current.TotalVotes)
	assert.Equal(t, map[string]int{"ENFP": 1}, current.VoteStats[personality.MBTI])
	assertConsistent(t, current)
}

func TestSubmit_SystemsAreIndependent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for _, input := range []vote.SubmitInput{
		{System: "mbti", Value: "ISFP"},
		{System: "enneagram", Value: "4W5"},
		{System: "zodiac", Value: "cancer"},
	} {
		result, err := f.votes.Submit(ctx, f.target.ID, "voter-a", input)
		require.NoError(t, err)
		assert.True(t, result.IsNewVote)
	}

	current := f.reload(t)
	assert.Equal(t, 3, current.TotalVotes)
	assert.Equal(t, 1, current.VoteStats[personality.Zodiac]["Cancer"])
	assertConsistent(t, current)

	mine, err := f.votes.Mine(ctx, f.target.ID, "voter-a")
	require.NoError(t, err)
	assert.Len(t, mine, 3)
}

func TestSubmit_Validation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		input vote.SubmitInput
		field string
	}{
		{"missing system", vote.SubmitInput{Value: "INTJ"}, vote.FieldSystem},
		{"unknown system", vote.SubmitInput{System: "tarot", Value: "Fool"}, vote.FieldSystem},
		{"missing value", vote.SubmitInput{System: "mbti"}, vote.FieldValue},
		{"value from other system", vote.SubmitInput{System: "mbti", Value: "Leo"}, vote.FieldValue},
		{"value too long", vote.SubmitInput{System: "zodiac", Value: "Sagittarius-Sagittarius-Sagittarius"}, vote.FieldValue},
		{"profile out of range", vote.SubmitInput{System: "mbti", Value: "INTJ", ProfileID: pointer.To(0)}, vote.FieldProfileID},
		{"profile mismatch", vote.SubmitInput{System: "mbti", Value: "INTJ", ProfileID: pointer.To(13)}, vote.FieldProfileID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.votes.Submit(ctx, f.target.ID, "voter-a", tt.input)
			appErr := apperr.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, apperr.KindValidation, appErr.Kind)
			require.NotEmpty(t, appErr.Details)
			assert.Equal(t, tt.field, appErr.Details[0].Field)
		})
	}

	assert.Equal(t, 0, f.reload(t).TotalVotes)
}

func TestSubmit_MissingOrHiddenComment(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	input := vote.SubmitInput{System: "mbti", Value: "INTJ"}

	_, err := f.votes.Submit(ctx, "0190f6c2-0000-7000-8000-000000000000", "voter-a", input)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = f.votes.Submit(ctx, "garbage", "voter-a", input)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	require.NoError(t, f.comments.SoftDelete(ctx, f.target.ID))
	_, err = f.votes.Submit(ctx, f.target.ID, "voter-a", input)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestMemoryRepository_FailedSubmitRestoresSlot(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	kept := &vote.Vote{CommentID: f.target.ID, ProfileID: 12, System: personality.MBTI, Value: "INTJ", VoterID: "voter-a"}
	first, err := f.store.Submit(ctx, kept)
	require.NoError(t, err)

	require.NoError(t, f.comments.SoftDelete(ctx, f.target.ID))

	changed := kept.Clone()
	changed.Value = "ENFP"
	_, err = f.store.Submit(ctx, changed)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	found, err := f.store.FindOne(ctx, vote.KeyOf(kept))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "INTJ", found.Value)
	assert.Equal(t, first.Vote.UpdatedAt, found.UpdatedAt)

	fresh := &vote.Vote{CommentID: f.target.ID, ProfileID: 12, System: personality.Zodiac, Value: "Leo", VoterID: "voter-a"}
	_, err = f.store.Submit(ctx, fresh)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	missing, err := f.store.FindOne(ctx, vote.KeyOf(fresh))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSubmit_RateLimitedPerVoter(t *testing.T) {
	limiter := ratelimit.NewMemoryStoreWithClock(ratelimit.Policy{Limit: 2, Window: time.Minute}, time.Hour, time.Now)
	f := newFixture(t, limiter)
	ctx := context.Background()

	for _, value := range []string{"INTJ", "INTP"} {
		_, err := f.votes.Submit(ctx, f.target.ID, "eager", vote.SubmitInput{System: "mbti", Value: value})
		require.NoError(t, err)
	}

	_, err := f.votes.Submit(ctx, f.target.ID, "eager", vote.SubmitInput{System: "mbti", Value: "ENTJ"})
	assert.True(t, apperr.IsKind(err, apperr.KindRateLimited))

	_, err = f.votes.Submit(ctx, f.target.ID, "patient", vote.SubmitInput{System: "mbti", Value: "ENTJ"})
	assert.NoError(t, err)
}

// # Removal

func TestRemove(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.votes.Submit(ctx, f.target.ID, "voter-a", vote.SubmitInput{System: "enneagram", Value: "9w1"})
	require.NoError(t, err)
	_, err = f.votes.Submit(ctx, f.target.ID, "voter-b", vote.SubmitInput{System: "enneagram", Value: "9w1"})
	require.NoError(t, err)

	removed, err := f.votes.Remove(ctx, f.target.ID, "voter-a", "enneagram")
	require.NoError(t, err)
	assert.Equal(t, "9w1", removed.Value)

	current := f.reload(t)
	assert.Equal(t, 1, current.TotalVotes)
	assert.Equal(t, 1, current.VoteStats[personality.Enneagram]["9w1"])

	_, err = f.votes.Find(ctx, f.target.ID, "voter-a", "enneagram")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = f.votes.Remove(ctx, f.target.ID, "voter-a", "enneagram")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = f.votes.Remove(ctx, f.target.ID, "voter-b", "astrology")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = f.votes.Remove(ctx, f.target.ID, "voter-b", "enneagram")
	require.NoError(t, err)

	current = f.reload(t)
	assert.Equal(t, 0, current.TotalVotes)
	assert.NotContains(t, current.VoteStats, personality.Enneagram, "empty systems are pruned")
}

// # Listings

func TestListForCommentAndHistory(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.votes.Submit(ctx, f.target.ID, "voter-a", vote.SubmitInput{System: "mbti", Value: "INTJ"})
	require.NoError(t, err)
	_, err = f.votes.Submit(ctx, f.target.ID, "voter-b", vote.SubmitInput{System: "zodiac", Value: "Leo"})
	require.NoError(t, err)

	zodiac, err := f.votes.ListForComment(ctx, f.target.ID, "zodiac")
	require.NoError(t, err)
	require.Len(t, zodiac, 1)
	assert.Equal(t, "Leo", zodiac[0].Value)

	_, err = f.votes.ListForComment(ctx, f.target.ID, "runes")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	history, err := f.votes.History(ctx, "voter-a", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "INTJ", history[0].Value)

	_, err = f.votes.History(ctx, "voter-a", 0)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

// # Concurrency

func TestSubmit_ConcurrentDistinctVoters(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	const voters = 64

	var wg sync.WaitGroup
	errs := make(chan error, voters)
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.votes.Submit(ctx, f.target.ID, fmt.Sprintf("voter-%d", i), vote.SubmitInput{System: "mbti", Value: "INFJ"})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	current := f.reload(t)
	assert.Equal(t, voters, current.TotalVotes)
	assert.Equal(t, voters, current.VoteStats[personality.MBTI]["INFJ"])
	assertConsistent(t, current)
}

func TestSubmit_ConcurrentSameVoter(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	values := personality.MBTI.Values()

	var wg sync.WaitGroup
	for round := 0; round < 4; round++ {
		for _, value := range values {
			wg.Add(1)
			go func(value string) {
				defer wg.Done()
				_, err := f.votes.Submit(ctx, f.target.ID, "indecisive", vote.SubmitInput{System: "mbti", Value: value})
				assert.NoError(t, err)
			}(value)
		}
	}
	wg.Wait()

	votes, err := f.votes.ListForComment(ctx, f.target.ID, "mbti")
	require.NoError(t, err)
	require.Len(t, votes, 1, "one vote per voter and system")

	current := f.reload(t)
	assert.Equal(t, 1, current.TotalVotes)
	assert.Equal(t, map[string]int{votes[0].Value: 1}, current.VoteStats[personality.MBTI])
	assertConsistent(t, current)
}

func TestSubmitAndRemove_Interleaved(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		voter := fmt.Sprintf("voter-%d", i%4)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = f.votes.Submit(ctx, f.target.ID, voter, vote.SubmitInput{System: "zodiac", Value: "Pisces"})
		}()
		go func() {
			defer wg.Done()
			_, _ = f.votes.Remove(ctx, f.target.ID, voter, "zodiac")
		}()
	}
	wg.Wait()

	votes, err := f.votes.ListForComment(ctx, f.target.ID, "")
	require.NoError(t, err)

	current := f.reload(t)
	assert.Equal(t, len(votes), current.TotalVotes)
	assertConsistent(t, current)
}
