package comment

import (
	"context"
	"log/slog"

	"github.com/taibuivan/personae/internal/core/profile"
	"github.com/taibuivan/personae/internal/platform/constants"
	"github.com/taibuivan/personae/internal/platform/metrics"
	"github.com/taibuivan/personae/internal/platform/validate"
	"github.com/taibuivan/personae/internal/social/personality"
	"github.com/taibuivan/personae/internal/social/tally"
	"github.com/taibuivan/personae/pkg/pagination"
	"github.com/taibuivan/personae/pkg/pointer"
	"github.com/taibuivan/personae/pkg/sanitize"
	"github.com/taibuivan/personae/pkg/slice"
	"github.com/taibuivan/personae/pkg/uuid"
)

// ProfileGetter resolves the profile a comment is posted on.
type ProfileGetter interface {
	Get(context context.Context, id int) (*profile.Profile, error)
}

// Service implements the comment use cases and the ranked listings.
type Service struct {
	repo     Repository
	profiles ProfileGetter
	metrics  *metrics.Registry
	logger   *slog.Logger
	maxLimit int
}

func NewService(repo Repository, profiles ProfileGetter, registry *metrics.Registry, logger *slog.Logger, maxLimit int) *Service {
	return &Service{
		repo:     repo,
		profiles: profiles,
		metrics:  registry,
		logger:   logger,
		maxLimit: maxLimit,
	}
}

// MaxLimit is the largest page size accepted by [Service.List].
func (service *Service) MaxLimit() int {
	return service.maxLimit
}

// # Listing

// ListRequest carries the raw listing options of one request.
type ListRequest struct {
	ProfileID *int
	Sort      string
	Filter    string
	Page      int
	Limit     int

	// PageErrors are the problems found while parsing page and limit.
	PageErrors []*pagination.RangeError
}

// Filters echoes the options a listing was computed with.
type Filters struct {
	Sort      Sort   `json:"sort"`
	Filter    string `json:"filter"`
	ProfileID *int   `json:"profileId,omitempty"`
}

// ListResult is one ranked page of comments.
type ListResult struct {
	Comments   []*Comment      `json:"comments"`
	Pagination pagination.Meta `json:"pagination"`
	Filters    Filters         `json:"filters"`
}

/*
List returns one page of visible comments in the requested order.

Description: every invalid option is reported at once as a validation error
with per-field details. A page past the end yields no comments but still
reports the true totals.
*/
func (service *Service) List(context context.Context, input ListRequest) (*ListResult, error) {
	validator := &validate.Validator{}

	order, ok := ParseSort(input.Sort)
	if !ok {
		validator.OneOf(FieldSort, input.Sort, string(SortRecent), string(SortOldest), string(SortBest))
	}

	system, ok := ParseFilter(input.Filter)
	if !ok {
		validator.OneOf(FieldFilter, input.Filter, append([]string{FilterAll}, personality.Names()...)...)
	}

	if len(input.PageErrors) > 0 {
		for _, problem := range input.PageErrors {
			validator.Add(problem.Field, problem.Message)
		}
	} else {
		validator.
			Custom(FieldPage, input.Page < 1, "Must be an integer greater than or equal to 1").
			Range(FieldLimit, input.Limit, 1, service.maxLimit)
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	filterName := FilterAll
	if system != nil {
		filterName = system.String()
	}

	params := pagination.Params{Page: input.Page, Limit: input.Limit}
	comments, total, err := service.repo.List(context, Filter{ProfileID: input.ProfileID, System: system}, order, params.Limit, params.Offset())
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Comments:   comments,
		Pagination: pagination.NewMeta(params.Page, params.Limit, total),
		Filters:    Filters{Sort: order, Filter: filterName, ProfileID: input.ProfileID},
	}, nil
}

/*
Top returns up to limit visible comments with the most votes.

Parameters:
  - system: *personality.System (optional, restricts to comments voted under it)
  - limit: int

Returns:
  - []*Comment: Ordered like the best listing; comments without votes are left out
*/
func (service *Service) Top(context context.Context, system *personality.System, limit int) ([]*Comment, error) {
	comments, _, err := service.repo.List(context, Filter{System: system}, SortBest, limit, 0)
	if err != nil {
		return nil, err
	}

	return slice.Filter(comments, func(c *Comment) bool { return c.TotalVotes > 0 }), nil
}

// # Lifecycle

// CreateInput is the client supplied part of a new comment.
type CreateInput struct {
	Content string  `json:"content"`
	Title   *string `json:"title"`
	Author  *string `json:"author"`
}

/*
Create posts a comment on an existing profile.

Description: markup is stripped from every text field before length checks.
A blank author becomes the default display name. The comment starts visible
with an empty tally.
*/
func (service *Service) Create(context context.Context, profileID int, input CreateInput) (*Comment, error) {
	content := sanitize.Text(input.Content)
	title := sanitize.OptionalText(input.Title)

	author := pointer.Fallback(sanitize.OptionalText(input.Author), constants.CommentDefaultAuthor)

	validator := &validate.Validator{}
	validator.
		Required(FieldContent, content).
		MaxLen(FieldContent, content, constants.CommentContentMaxLength).
		MaxLen(FieldAuthor, author, constants.CommentAuthorMaxLength)

	if title != nil {
		validator.MaxLen(FieldTitle, *title, constants.CommentTitleMaxLength)
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	if _, err := service.profiles.Get(context, profileID); err != nil {
		return nil, err
	}

	comment := &Comment{
		ID:        uuid.New(),
		ProfileID: profileID,
		Content:   content,
		Title:     title,
		Author:    author,
		IsVisible: true,
	}

	if err := service.repo.Create(context, comment); err != nil {
		return nil, err
	}

	service.metrics.CommentCreated()
	service.logger.Info("comment_created",
		slog.String("comment_id", comment.ID),
		slog.Int("profile_id", profileID),
	)

	return comment, nil
}

// Get returns a visible comment. Malformed ids are reported as not found.
func (service *Service) Get(context context.Context, id string) (*Comment, error) {
	if !uuid.Valid(id) {
		return nil, NotFound(id)
	}
	return service.repo.FindByID(context, id)
}

// SoftDelete hides a comment from every listing. Its votes are kept.
func (service *Service) SoftDelete(context context.Context, id string) error {
	if !uuid.Valid(id) {
		return NotFound(id)
	}

	if err := service.repo.SoftDelete(context, id); err != nil {
		return err
	}

	service.metrics.CommentDeleted()
	service.logger.Warn("comment_deleted", slog.String("comment_id", id))
	return nil
}

// VoteTotals sums the tallies of every visible comment.
func (service *Service) VoteTotals(context context.Context) (tally.Stats, error) {
	return service.repo.SumVoteStats(context)
}
