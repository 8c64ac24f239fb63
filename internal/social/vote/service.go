package vote

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/personae/internal/platform/apperr"
	"github.com/taibuivan/personae/internal/platform/constants"
	"github.com/taibuivan/personae/internal/platform/metrics"
	"github.com/taibuivan/personae/internal/platform/ratelimit"
	"github.com/taibuivan/personae/internal/platform/validate"
	"github.com/taibuivan/personae/internal/social/comment"
	"github.com/taibuivan/personae/internal/social/personality"
)

// CommentGetter resolves the visible comment a vote targets.
type CommentGetter interface {
	Get(context context.Context, id string) (*comment.Comment, error)
}

// Service implements the vote use cases.
type Service struct {
	repo           Repository
	comments       CommentGetter
	limiter        ratelimit.Store
	metrics        *metrics.Registry
	logger         *slog.Logger
	maxValueLength int
}

// Options carries the optional collaborators of a [Service].
type Options struct {
	// Limiter bounds submissions and removals per voter. Nil disables it.
	Limiter ratelimit.Store

	Metrics *metrics.Registry

	// MaxValueLength bounds personalityValue in Unicode characters.
	MaxValueLength int
}

func NewService(repo Repository, comments CommentGetter, logger *slog.Logger, options Options) *Service {
	return &Service{
		repo:           repo,
		comments:       comments,
		limiter:        options.Limiter,
		metrics:        options.Metrics,
		logger:         logger,
		maxValueLength: options.MaxValueLength,
	}
}

// SubmitInput is the client supplied part of a vote.
type SubmitInput struct {
	System    string `json:"personalitySystem"`
	Value     string `json:"personalityValue"`
	ProfileID *int   `json:"profileId"`
}

/*
Submit casts or replaces the caller's vote on a comment.

Description: the system and value are validated first and the value is
resolved to its canonical spelling. When the client names a profile it must be
the comment's own profile. The store then performs the upsert and the tally
delta atomically.

Returns:
  - *SubmitResult: IsNewVote is false for a revote, including an identical one
  - error: ValidationError, comment NotFound, RateLimited or DuplicateVote
*/
func (service *Service) Submit(context context.Context, commentID, voterID string, input SubmitInput) (*SubmitResult, error) {
	system, value, err := service.validateVote(input)
	if err != nil {
		return nil, err
	}

	target, err := service.comments.Get(context, commentID)
	if err != nil {
		return nil, err
	}

	if input.ProfileID != nil && *input.ProfileID != target.ProfileID {
		return nil, validate.RequiredError(FieldProfileID, "Does not match the comment's profile")
	}

	if err := service.allow(context, voterID); err != nil {
		service.metrics.ObserveVote(string(system), metrics.OutcomeRejected)
		return nil, err
	}

	result, err := service.repo.Submit(context, &Vote{
		CommentID: target.ID,
		ProfileID: target.ProfileID,
		System:    system,
		Value:     value,
		VoterID:   voterID,
	})
	if err != nil {
		return nil, err
	}

	outcome := metrics.OutcomeCreated
	switch {
	case result.IsNewVote:
	case result.PreviousValue == value:
		outcome = metrics.OutcomeUnchanged
	default:
		outcome = metrics.OutcomeUpdated
	}
	service.metrics.ObserveVote(string(system), outcome)

	service.logger.InfoContext(context, "vote_submitted",
		slog.String("comment_id", target.ID),
		slog.String("system", string(system)),
		slog.String("value", value),
		slog.String("previous_value", result.PreviousValue),
		slog.String("outcome", outcome),
	)

	return result, nil
}

// Remove withdraws the caller's vote under rawSystem and returns it.
func (service *Service) Remove(context context.Context, commentID, voterID, rawSystem string) (*Vote, error) {
	system, err := parseSystem(rawSystem)
	if err != nil {
		return nil, err
	}

	target, err := service.comments.Get(context, commentID)
	if err != nil {
		return nil, err
	}

	if err := service.allow(context, voterID); err != nil {
		service.metrics.ObserveVote(string(system), metrics.OutcomeRejected)
		return nil, err
	}

	removed, err := service.repo.Remove(context, Key{CommentID: target.ID, VoterID: voterID, System: system})
	if err != nil {
		return nil, err
	}
	if removed == nil {
		return nil, NotFound(target.ID)
	}

	service.metrics.ObserveVote(string(system), metrics.OutcomeRemoved)
	service.logger.InfoContext(context, "vote_removed",
		slog.String("comment_id", target.ID),
		slog.String("system", string(system)),
		slog.String("value", removed.Value),
	)

	return removed, nil
}

// Find returns the caller's vote under rawSystem, or NotFound.
func (service *Service) Find(context context.Context, commentID, voterID, rawSystem string) (*Vote, error) {
	system, err := parseSystem(rawSystem)
	if err != nil {
		return nil, err
	}

	target, err := service.comments.Get(context, commentID)
	if err != nil {
		return nil, err
	}

	found, err := service.repo.FindOne(context, Key{CommentID: target.ID, VoterID: voterID, System: system})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, NotFound(target.ID)
	}
	return found, nil
}

// Mine returns the caller's votes on one comment, at most one per system.
func (service *Service) Mine(context context.Context, commentID, voterID string) ([]*Vote, error) {
	target, err := service.comments.Get(context, commentID)
	if err != nil {
		return nil, err
	}
	return service.repo.ListByVoter(context, voterID, target.ID, len(personality.Systems))
}

// History returns the caller's most recently changed votes across comments.
func (service *Service) History(context context.Context, voterID string, limit int) ([]*Vote, error) {
	validator := &validate.Validator{}
	if err := validator.Range(FieldLimit, limit, 1, constants.VoteHistoryLimit).Err(); err != nil {
		return nil, err
	}
	return service.repo.ListByVoter(context, voterID, "", limit)
}

// ListForComment returns every vote on a comment, optionally for one system.
func (service *Service) ListForComment(context context.Context, commentID, rawSystem string) ([]*Vote, error) {
	var system *personality.System
	if strings.TrimSpace(rawSystem) != "" {
		parsed, err := parseSystem(rawSystem)
		if err != nil {
			return nil, err
		}
		system = &parsed
	}

	target, err := service.comments.Get(context, commentID)
	if err != nil {
		return nil, err
	}
	return service.repo.ListForComment(context, target.ID, system)
}

// # Helpers

func (service *Service) validateVote(input SubmitInput) (personality.System, string, error) {
	validator := &validate.Validator{}

	system, ok := personality.ParseSystem(input.System)
	switch {
	case ok:
	case strings.TrimSpace(input.System) == "":
		validator.Required(FieldSystem, input.System)
	default:
		validator.OneOf(FieldSystem, input.System, personality.Names()...)
	}

	value := strings.TrimSpace(input.Value)
	validator.
		Required(FieldValue, value).
		MaxLen(FieldValue, value, service.maxValueLength)

	if input.ProfileID != nil {
		validator.Range(FieldProfileID, *input.ProfileID, constants.ProfileIDMin, constants.ProfileIDMax)
	}

	if ok && value != "" && !validator.HasErrors() {
		canonical, found := system.Canonical(value)
		if !found {
			validator.OneOf(FieldValue, value, system.Values()...)
		}
		value = canonical
	}

	if err := validator.Err(); err != nil {
		return "", "", err
	}
	return system, value, nil
}

func parseSystem(raw string) (personality.System, error) {
	system, ok := personality.ParseSystem(raw)
	if !ok {
		validator := &validate.Validator{}
		return "", validator.OneOf(FieldSystem, raw, personality.Names()...).Err()
	}
	return system, nil
}

// allow spends one unit of the voter's budget. An unavailable limiter lets the
// request through.
func (service *Service) allow(context context.Context, voterID string) error {
	if service.limiter == nil {
		return nil
	}

	decision, err := service.limiter.Allow(context, voterID)
	if err != nil {
		service.logger.WarnContext(context, "vote_limiter_unavailable", slog.Any("error", err))
		return nil
	}
	if !decision.Allowed {
		service.metrics.RateLimited("vote")
		return apperr.RateLimited(decision.RetryAfterSeconds())
	}
	return nil
}
