package stats_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/personae/internal/core/profile"
	"github.com/taibuivan/personae/internal/platform/apperr"
	"github.com/taibuivan/personae/internal/social/comment"
	"github.com/taibuivan/personae/internal/social/personality"
	"github.com/taibuivan/personae/internal/social/stats"
	"github.com/taibuivan/personae/internal/social/vote"
)

// # Fixtures

type mapCache struct {
	entries map[string][]byte
	reads   int
	failing bool
}

func newMapCache() *mapCache { return &mapCache{entries: map[string][]byte{}} }

func (c *mapCache) Get(_ context.Context, key string, target any) (bool, error) {
	c.reads++
	if c.failing {
		return false, errors.New("cache offline")
	}
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, target)
}

func (c *mapCache) Set(_ context.Context, key string, value any) error {
	if c.failing {
		return errors.New("cache offline")
	}
	raw, err := json.Marshal(value)
	c.entries[key] = raw
	return err
}

type fixture struct {
	stats    *stats.Service
	comments *comment.Service
	votes    *vote.Service
	cache    *mapCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	commentStore := comment.NewMemoryRepository()
	profiles := profile.NewService(profile.NewMemoryRepository(), commentStore, logger)
	require.NoError(t, profiles.Create(context.Background(), &profile.Profile{ID: 3, Name: "Carl Jung"}))

	comments := comment.NewService(commentStore, profiles, nil, logger, 50)
	votes := vote.NewService(vote.NewMemoryRepository(commentStore, logger), comments, logger, vote.Options{MaxValueLength: 32})

	cache := newMapCache()
	return &fixture{
		stats:    stats.NewService(comments, cache, logger),
		comments: comments,
		votes:    votes,
		cache:    cache,
	}
}

func (f *fixture) post(t *testing.T) *comment.Comment {
	t.Helper()
	created, err := f.comments.Create(context.Background(), 3, comment.CreateInput{Content: "thoughts"})
	require.NoError(t, err)
	return created
}

func (f *fixture) vote(t *testing.T, commentID, voter, system, value string) {
	t.Helper()
	_, err := f.votes.Submit(context.Background(), commentID, voter, vote.SubmitInput{System: system, Value: value})
	require.NoError(t, err)
}

// # Reports

func TestCommentStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	target := f.post(t)

	f.vote(t, target.ID, "a", "mbti", "INTJ")
	f.vote(t, target.ID, "b", "mbti", "INTJ")
	f.vote(t, target.ID, "a", "zodiac", "Leo")

	result, err := f.stats.CommentStats(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, target.ID, result.CommentID)
	assert.Equal(t, 3, result.TotalVotes)
	assert.Equal(t, 2, result.VoteStats[personality.MBTI]["INTJ"])
	assert.False(t, result.LastUpdated.Before(target.CreatedAt))

	require.NoError(t, f.comments.SoftDelete(ctx, target.ID))
	_, err = f.stats.CommentStats(ctx, target.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestGlobalStats_ScopedAndCorpusWide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.post(t)
	second := f.post(t)
	hidden := f.post(t)

	f.vote(t, first.ID, "a", "mbti", "INFP")
	f.vote(t, second.ID, "a", "mbti", "INFP")
	f.vote(t, second.ID, "b", "enneagram", "2w3")
	f.vote(t, hidden.ID, "c", "zodiac", "Aries")
	require.NoError(t, f.comments.SoftDelete(ctx, hidden.ID))

	scoped, err := f.stats.GlobalStats(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, scoped[personality.MBTI].Total)
	assert.Equal(t, 1, scoped[personality.Enneagram].Values["2w3"])
	assert.Equal(t, 0, scoped[personality.Zodiac].Total)

	global, err := f.stats.GlobalStats(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, global[personality.MBTI].Values["INFP"])
	assert.Equal(t, 1, global[personality.Enneagram].Total)
	assert.Equal(t, 0, global[personality.Zodiac].Total, "hidden comments are excluded")
}

func TestGlobalStats_UsesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	target := f.post(t)
	f.vote(t, target.ID, "a", "zodiac", "Virgo")

	first, err := f.stats.GlobalStats(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, first[personality.Zodiac].Total)

	f.vote(t, target.ID, "b", "zodiac", "Virgo")

	cached, err := f.stats.GlobalStats(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, cached[personality.Zodiac].Total, "served from cache until it expires")

	f.cache.failing = true
	live, err := f.stats.GlobalStats(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, live[personality.Zodiac].Total, "cache failures fall back to live sums")
}

func TestTopComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	quiet := f.post(t)
	popular := f.post(t)
	niche := f.post(t)

	for _, voter := range []string{"a", "b", "c"} {
		f.vote(t, popular.ID, voter, "mbti", "ESTP")
	}
	f.vote(t, niche.ID, "a", "zodiac", "Gemini")

	top, err := f.stats.TopComments(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, popular.ID, top[0].ID)
	assert.Equal(t, niche.ID, top[1].ID)
	assert.NotEqual(t, quiet.ID, top[1].ID)

	zodiac, err := f.stats.TopComments(ctx, "zodiac", 10)
	require.NoError(t, err)
	require.Len(t, zodiac, 1)
	assert.Equal(t, niche.ID, zodiac[0].ID)

	_, err = f.stats.TopComments(ctx, "tarot", 0)
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Len(t, appErr.Details, 2)
}

// # HTTP

func TestHandler_Routes(t *testing.T) {
	f := newFixture(t)
	target := f.post(t)
	f.vote(t, target.ID, "a", "enneagram", "6w5")

	handler := stats.NewHandler(f.stats)
	router := chi.NewRouter()
	router.Route("/stats", handler.RegisterRoutes)
	router.Route("/comments/{commentId}/stats", handler.RegisterCommentRoutes)

	tests := []struct {
		path     string
		status   int
		contains string
	}{
		{"/comments/" + target.ID + "/stats", http.StatusOK, `"lastUpdated"`},
		{"/comments/not-a-comment/stats", http.StatusNotFound, "NOT_FOUND"},
		{"/stats/global", http.StatusOK, `"6w5":1`},
		{"/stats/global?commentId=" + target.ID, http.StatusOK, `"enneagram":{"total":1`},
		{"/stats/top?system=enneagram&limit=5", http.StatusOK, target.ID},
		{"/stats/top?limit=x", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"/stats/top?limit=51", http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, recorder.Code)
			assert.Contains(t, recorder.Body.String(), tt.contains)
		})
	}
}
