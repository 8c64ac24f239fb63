package profile

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/taibuivan/personae/internal/platform/apperr"
	"github.com/taibuivan/personae/internal/platform/docstore"
)

// MemoryRepository keeps profiles in an in-process [docstore.Collection].
type MemoryRepository struct {
	profiles *docstore.Collection[int, *Profile]
	now      func() time.Time
}

// NewMemoryRepository creates an empty in-memory profile store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		profiles: docstore.NewCollection[int, *Profile](cloneProfile),
		now:      time.Now,
	}
}

func (repository *MemoryRepository) List(_ context.Context, filter Filter, limit, offset int) ([]*Profile, int, error) {
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	matches := repository.profiles.Find(func(p *Profile) bool {
		if filter.Category != "" && p.Category != filter.Category {
			return false
		}
		return query == "" || strings.Contains(strings.ToLower(p.Name), query)
	})

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Name != matches[j].Name {
			return matches[i].Name < matches[j].Name
		}
		return matches[i].ID < matches[j].ID
	})

	total := len(matches)
	if offset >= total {
		return []*Profile{}, total, nil
	}
	end := min(offset+limit, total)
	return matches[offset:end], total, nil
}

func (repository *MemoryRepository) FindByID(_ context.Context, id int) (*Profile, error) {
	profile, ok := repository.profiles.Get(id)
	if !ok {
		return nil, apperr.NotFoundID("Profile", strconv.Itoa(id))
	}
	return profile, nil
}

func (repository *MemoryRepository) Create(_ context.Context, profile *Profile) error {
	now := repository.now().UTC()
	profile.CreatedAt, profile.UpdatedAt = now, now

	if err := repository.profiles.Insert(profile.ID, profile); err != nil {
		if errors.Is(err, docstore.ErrDuplicateKey) {
			return apperr.Conflict("Profile " + strconv.Itoa(profile.ID) + " already exists")
		}
		return apperr.Internal(err)
	}
	return nil
}

func (repository *MemoryRepository) Update(_ context.Context, profile *Profile) error {
	updated, err := repository.profiles.Update(profile.ID, func(current *Profile) (*Profile, error) {
		next := cloneProfile(profile)
		next.CreatedAt = current.CreatedAt
		next.UpdatedAt = repository.now().UTC()
		return next, nil
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return apperr.NotFoundID("Profile", strconv.Itoa(profile.ID))
	}
	if err != nil {
		return apperr.Internal(err)
	}

	profile.CreatedAt, profile.UpdatedAt = updated.CreatedAt, updated.UpdatedAt
	return nil
}

func (repository *MemoryRepository) Delete(_ context.Context, id int) error {
	if _, ok := repository.profiles.Delete(id); !ok {
		return apperr.NotFoundID("Profile", strconv.Itoa(id))
	}
	return nil
}
