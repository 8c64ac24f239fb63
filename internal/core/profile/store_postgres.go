package profile

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/personae/internal/platform/apperr"
	"github.com/taibuivan/personae/internal/platform/database/schema"
	"github.com/taibuivan/personae/internal/platform/dberr"
)

// PostgresRepository implements [Repository] on core.profile.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed profile store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var profileColumns = strings.Join(schema.CoreProfile.Columns(), ", ")

func scanProfile(row pgx.Row) (*Profile, error) {
	p := &Profile{}
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Category, &p.MBTI, &p.Enneagram, &p.Zodiac,
		&p.Description, &p.Image, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

/*
List returns one page of profiles ordered by name and the total match count.

Description: COUNT(*) OVER() carries the total on every row so a single round
trip serves both the page and the pagination metadata.
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Profile, int, error) {
	var conditions []string
	var args []any

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		conditions = append(conditions, fmt.Sprintf("%s ILIKE $%d", schema.CoreProfile.Name, len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", schema.CoreProfile.Category, len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER()
		FROM %s
		%s
		ORDER BY %s ASC, %s ASC
		LIMIT $%d OFFSET $%d`,
		profileColumns, schema.CoreProfile.Table, where,
		schema.CoreProfile.Name, schema.CoreProfile.ID,
		len(args)-1, len(args),
	)

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_profiles")
	}
	defer rows.Close()

	profiles := make([]*Profile, 0, limit)
	total := 0
	for rows.Next() {
		p := &Profile{}
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Slug, &p.Category, &p.MBTI, &p.Enneagram, &p.Zodiac,
			&p.Description, &p.Image, &p.CreatedAt, &p.UpdatedAt, &total,
		); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_profile")
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "iterate_profiles")
	}

	// A page past the end returns no rows, so the window total is lost.
	if len(profiles) == 0 && offset > 0 {
		countQuery := fmt.Sprintf(`SELECT count(*) FROM %s %s`, schema.CoreProfile.Table, where)
		if err := repository.db.QueryRow(context, countQuery, args[:len(args)-2]...).Scan(&total); err != nil {
			return nil, 0, dberr.Wrap(err, "count_profiles")
		}
	}

	return profiles, total, nil
}

func (repository *PostgresRepository) FindByID(context context.Context, id int) (*Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		profileColumns, schema.CoreProfile.Table, schema.CoreProfile.ID)

	profile, err := scanProfile(repository.db.QueryRow(context, query, id))
	if dberr.IsNoRows(err) {
		return nil, apperr.NotFoundID("Profile", strconv.Itoa(id))
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get_profile")
	}
	return profile, nil
}

func (repository *PostgresRepository) Create(context context.Context, p *Profile) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s, %s`,
		schema.CoreProfile.Table,
		schema.CoreProfile.ID, schema.CoreProfile.Name, schema.CoreProfile.Slug, schema.CoreProfile.Category,
		schema.CoreProfile.MBTI, schema.CoreProfile.Enneagram, schema.CoreProfile.Zodiac,
		schema.CoreProfile.Description, schema.CoreProfile.Image,
		schema.CoreProfile.CreatedAt, schema.CoreProfile.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		p.ID, p.Name, p.Slug, p.Category, p.MBTI, p.Enneagram, p.Zodiac, p.Description, p.Image,
	).Scan(&p.CreatedAt, &p.UpdatedAt)

	if dberr.IsUniqueViolation(err) {
		return apperr.Conflict("Profile " + strconv.Itoa(p.ID) + " already exists")
	}
	return dberr.Wrap(err, "create_profile")
}

func (repository *PostgresRepository) Update(context context.Context, p *Profile) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8, %s = $9, %s = NOW()
		WHERE %s = $1
		RETURNING %s, %s`,
		schema.CoreProfile.Table,
		schema.CoreProfile.Name, schema.CoreProfile.Slug, schema.CoreProfile.Category,
		schema.CoreProfile.MBTI, schema.CoreProfile.Enneagram, schema.CoreProfile.Zodiac,
		schema.CoreProfile.Description, schema.CoreProfile.Image, schema.CoreProfile.UpdatedAt,
		schema.CoreProfile.ID,
		schema.CoreProfile.CreatedAt, schema.CoreProfile.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		p.ID, p.Name, p.Slug, p.Category, p.MBTI, p.Enneagram, p.Zodiac, p.Description, p.Image,
	).Scan(&p.CreatedAt, &p.UpdatedAt)

	if dberr.IsNoRows(err) {
		return apperr.NotFoundID("Profile", strconv.Itoa(p.ID))
	}
	return dberr.Wrap(err, "update_profile")
}

func (repository *PostgresRepository) Delete(context context.Context, id int) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CoreProfile.Table, schema.CoreProfile.ID)

	cmd, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_profile")
	}

	if cmd.RowsAffected() == 0 {
		return apperr.NotFoundID("Profile", strconv.Itoa(id))
	}
	return nil
}
