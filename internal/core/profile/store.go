package profile

import "context"

// Repository is the persistence contract for profiles.
type Repository interface {
	List(context context.Context, filter Filter, limit, offset int) ([]*Profile, int, error)
	FindByID(context context.Context, id int) (*Profile, error)
	Create(context context.Context, profile *Profile) error
	Update(context context.Context, profile *Profile) error
	Delete(context context.Context, id int) error
}

var (
	_ Repository = (*PostgresRepository)(nil)
	_ Repository = (*MemoryRepository)(nil)
)
