package profile

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/personae/internal/platform/apperr"
	"github.com/taibuivan/personae/internal/platform/constants"
	"github.com/taibuivan/personae/internal/platform/validate"
	"github.com/taibuivan/personae/internal/social/personality"
	"github.com/taibuivan/personae/pkg/sanitize"
	"github.com/taibuivan/personae/pkg/slug"
)

// CommentCounter reports how many comments reference a profile.
type CommentCounter interface {
	CountForProfile(context context.Context, profileID int) (int, error)
}

// Service implements the profile use cases.
type Service struct {
	repo     Repository
	comments CommentCounter
	logger   *slog.Logger
}

// NewService builds the profile service. Profiles that still have comments,
// hidden or not, cannot be deleted.
func NewService(repo Repository, comments CommentCounter, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		comments: comments,
		logger:   logger,
	}
}

func (service *Service) List(context context.Context, filter Filter, limit, offset int) ([]*Profile, int, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	filter.Category = strings.TrimSpace(filter.Category)
	return service.repo.List(context, filter, limit, offset)
}

func (service *Service) Get(context context.Context, id int) (*Profile, error) {
	return service.repo.FindByID(context, id)
}

func (service *Service) Create(context context.Context, profile *Profile) error {
	if err := service.normalize(profile); err != nil {
		return err
	}

	if err := service.repo.Create(context, profile); err != nil {
		return err
	}

	service.logger.Info("profile_created", slog.Int("profile_id", profile.ID), slog.String("slug", profile.Slug))
	return nil
}

func (service *Service) Update(context context.Context, id int, profile *Profile) error {
	profile.ID = id
	if err := service.normalize(profile); err != nil {
		return err
	}

	if err := service.repo.Update(context, profile); err != nil {
		return err
	}

	service.logger.Info("profile_updated", slog.Int("profile_id", profile.ID))
	return nil
}

func (service *Service) Delete(context context.Context, id int) error {
	count, err := service.comments.CountForProfile(context, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict("Profile still has comments")
	}

	if err := service.repo.Delete(context, id); err != nil {
		return err
	}

	service.logger.Warn("profile_deleted", slog.Int("profile_id", id))
	return nil
}

/*
normalize sanitizes and validates a profile in place and derives its slug.

Personality attributes are optional; when present they are resolved to the
canonical catalogue spelling.
*/
func (service *Service) normalize(profile *Profile) error {
	profile.Name = sanitize.Text(profile.Name)
	profile.Category = sanitize.Text(profile.Category)
	profile.Description = sanitize.Text(profile.Description)
	profile.Image = strings.TrimSpace(profile.Image)

	validator := &validate.Validator{}
	validator.
		Range(FieldID, profile.ID, constants.ProfileIDMin, constants.ProfileIDMax).
		Required(FieldName, profile.Name).
		MaxLen(FieldName, profile.Name, constants.ProfileNameMaxLength).
		MaxLen(FieldCategory, profile.Category, constants.ProfileCategoryMaxLength).
		MaxLen(FieldDescription, profile.Description, constants.ProfileDescriptionMaxLength)

	if profile.Image != "" {
		validator.URL(FieldImage, profile.Image)
	}

	profile.MBTI = canonicalAttribute(validator, FieldMBTI, personality.MBTI, profile.MBTI)
	profile.Enneagram = canonicalAttribute(validator, FieldEnneagram, personality.Enneagram, profile.Enneagram)
	profile.Zodiac = canonicalAttribute(validator, FieldZodiac, personality.Zodiac, profile.Zodiac)

	if err := validator.Err(); err != nil {
		return err
	}

	profile.Slug = slug.WithID(profile.Name, profile.ID)
	return nil
}

func canonicalAttribute(validator *validate.Validator, field string, system personality.System, value *string) *string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}

	canonical, ok := system.Canonical(*value)
	if !ok {
		validator.OneOf(field, *value, system.Values()...)
		return value
	}
	return &canonical
}
