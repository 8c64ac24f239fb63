// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package stats reports vote distributions from the tallies denormalized on
comments. It never reads individual votes.
*/
package stats

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/personae/internal/platform/constants"
	"github.com/taibuivan/personae/internal/platform/validate"
	"github.com/taibuivan/personae/internal/social/comment"
	"github.com/taibuivan/personae/internal/social/personality"
	"github.com/taibuivan/personae/internal/social/tally"
)

// CommentSource is the read side of the comment service used for reports.
type CommentSource interface {
	Get(context context.Context, id string) (*comment.Comment, error)
	Top(context context.Context, system *personality.System, limit int) ([]*comment.Comment, error)
	VoteTotals(context context.Context) (tally.Stats, error)
}

// Cache holds corpus-wide summaries between requests.
type Cache interface {
	Get(context context.Context, key string, target any) (bool, error)
	Set(context context.Context, key string, value any) error
}

// globalKey is the cache key of the corpus-wide summary.
const globalKey = "global"

// CommentStats is the tally snapshot of one comment.
type CommentStats struct {
	CommentID   string      `json:"commentId"`
	VoteStats   tally.Stats `json:"voteStats"`
	TotalVotes  int         `json:"totalVotes"`
	LastUpdated time.Time   `json:"lastUpdated"`
}

// Service implements the statistics reports.
type Service struct {
	comments CommentSource
	cache    Cache
	logger   *slog.Logger
}

// NewService builds the reporter. cache may be nil.
func NewService(comments CommentSource, cache Cache, logger *slog.Logger) *Service {
	return &Service{comments: comments, cache: cache, logger: logger}
}

// CommentStats returns the current tally of a visible comment.
func (service *Service) CommentStats(context context.Context, commentID string) (*CommentStats, error) {
	target, err := service.comments.Get(context, commentID)
	if err != nil {
		return nil, err
	}

	return &CommentStats{
		CommentID:   target.ID,
		VoteStats:   target.VoteStats,
		TotalVotes:  target.TotalVotes,
		LastUpdated: target.UpdatedAt,
	}, nil
}

/*
GlobalStats returns the per-system vote distribution of one comment, or of
every visible comment when commentID is empty.

Description: the corpus-wide summary is served from the cache when present and
may lag behind live tallies by up to the cache TTL. Cache failures fall back to
the live sum.
*/
func (service *Service) GlobalStats(context context.Context, commentID string) (tally.Summary, error) {
	if commentID != "" {
		target, err := service.comments.Get(context, commentID)
		if err != nil {
			return nil, err
		}
		return tally.Summarize(target.VoteStats), nil
	}

	if service.cache != nil {
		var cached tally.Summary
		found, err := service.cache.Get(context, globalKey, &cached)
		if err != nil {
			service.logger.WarnContext(context, "stats_cache_read_failed", slog.Any("error", err))
		}
		if found {
			return cached, nil
		}
	}

	totals, err := service.comments.VoteTotals(context)
	if err != nil {
		return nil, err
	}
	summary := tally.Summarize(totals)

	if service.cache != nil {
		if err := service.cache.Set(context, globalKey, summary); err != nil {
			service.logger.WarnContext(context, "stats_cache_write_failed", slog.Any("error", err))
		}
	}

	return summary, nil
}

// TopComments returns the most voted visible comments, optionally only those
// voted under rawSystem.
func (service *Service) TopComments(context context.Context, rawSystem string, limit int) ([]*comment.Comment, error) {
	validator := &validate.Validator{}

	system, ok := comment.ParseFilter(rawSystem)
	if !ok {
		validator.OneOf(FieldSystem, rawSystem, append([]string{comment.FilterAll}, personality.Names()...)...)
	}
	validator.Range(FieldLimit, limit, 1, constants.TopCommentsMaxLimit)

	if err := validator.Err(); err != nil {
		return nil, err
	}
	return service.comments.Top(context, system, limit)
}

// Global field names for validation
const (
	FieldSystem    = "system"
	FieldLimit     = "limit"
	FieldCommentID = "commentId"
)
