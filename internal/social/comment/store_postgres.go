package comment

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/personae/internal/platform/database/schema"
	"github.com/taibuivan/personae/internal/platform/dberr"
	"github.com/taibuivan/personae/internal/social/personality"
	"github.com/taibuivan/personae/internal/social/tally"
)

// PostgresRepository implements [Repository] on social.comment.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed comment store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Columns is the select list shared with the vote store, which reads comments
// inside its own transactions.
var Columns = strings.Join(schema.SocialComment.Columns(), ", ")

// Scan reads a row selected with [Columns].
func Scan(row pgx.Row) (*Comment, error) {
	c := &Comment{}
	err := row.Scan(
		&c.ID, &c.ProfileID, &c.Content, &c.Title, &c.Author, &c.IsVisible,
		&c.VoteStats, &c.TotalVotes, &c.CreatedAt, &c.UpdatedAt,
	)
	if c.VoteStats == nil {
		c.VoteStats = tally.Stats{}
	}
	return c, err
}

// orderBy maps a sort to its ORDER BY clause. id is the final tie-break so
// paging through equal keys is deterministic.
func orderBy(order Sort) string {
	c := schema.SocialComment
	switch order {
	case SortOldest:
		return fmt.Sprintf("%s ASC, %s ASC", c.CreatedAt, c.ID)
	case SortBest:
		return fmt.Sprintf("%s DESC, %s DESC, %s DESC", c.TotalVotes, c.CreatedAt, c.ID)
	default:
		return fmt.Sprintf("%s DESC, %s DESC", c.CreatedAt, c.ID)
	}
}

func (repository *PostgresRepository) Create(context context.Context, c *Comment) error {
	if c.VoteStats == nil {
		c.VoteStats = tally.Stats{}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s, %s`,
		schema.SocialComment.Table,
		schema.SocialComment.ID, schema.SocialComment.ProfileID, schema.SocialComment.Content,
		schema.SocialComment.Title, schema.SocialComment.Author, schema.SocialComment.IsVisible,
		schema.SocialComment.VoteStats, schema.SocialComment.TotalVotes,
		schema.SocialComment.CreatedAt, schema.SocialComment.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		c.ID, c.ProfileID, c.Content, c.Title, c.Author, c.IsVisible, c.VoteStats, c.TotalVotes,
	).Scan(&c.CreatedAt, &c.UpdatedAt)

	return dberr.Wrap(err, "create_comment")
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Comment, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s`,
		Columns, schema.SocialComment.Table, schema.SocialComment.ID, schema.SocialComment.IsVisible)

	comment, err := Scan(repository.db.QueryRow(context, query, id))
	if dberr.IsNoRows(err) {
		return nil, NotFound(id)
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get_comment")
	}
	return comment, nil
}

/*
List returns one ranked page of visible comments and the total match count.

Description: the system filter uses the jsonb key-exists operator, which the
GIN index on votestats serves. Zero counts are pruned from votestats, so key
presence means at least one vote.
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, order Sort, limit, offset int) ([]*Comment, int, error) {
	conditions := []string{schema.SocialComment.IsVisible}
	var args []any

	if filter.ProfileID != nil {
		args = append(args, *filter.ProfileID)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", schema.SocialComment.ProfileID, len(args)))
	}
	if filter.System != nil {
		args = append(args, string(*filter.System))
		conditions = append(conditions, fmt.Sprintf("%s ? $%d", schema.SocialComment.VoteStats, len(args)))
	}
	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s %s`, schema.SocialComment.Table, where)
	if err := repository.db.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_comments")
	}

	comments := make([]*Comment, 0, limit)
	if offset < 0 || offset >= total {
		return comments, total, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		Columns, schema.SocialComment.Table, where, orderBy(order), len(args)+1, len(args)+2)

	rows, err := repository.db.Query(context, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_comments")
	}
	defer rows.Close()

	for rows.Next() {
		comment, err := Scan(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_comment")
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "iterate_comments")
	}

	return comments, total, nil
}

func (repository *PostgresRepository) SoftDelete(context context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = FALSE, %s = NOW() WHERE %s = $1 AND %s`,
		schema.SocialComment.Table, schema.SocialComment.IsVisible, schema.SocialComment.UpdatedAt,
		schema.SocialComment.ID, schema.SocialComment.IsVisible,
	)

	cmd, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "soft_delete_comment")
	}
	if cmd.RowsAffected() == 0 {
		return NotFound(id)
	}
	return nil
}

/*
SumVoteStats aggregates every visible tally inside PostgreSQL.

Description: jsonb_each expands votestats into (system, bucket) pairs and
jsonb_each_text expands each bucket into (value, count), so only the summed
distribution crosses the wire.
*/
func (repository *PostgresRepository) CountForProfile(context context.Context, profileID int) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, schema.SocialComment.Table, schema.SocialComment.ProfileID)

	var count int
	if err := repository.db.QueryRow(context, query, profileID).Scan(&count); err != nil {
		return 0, dberr.Wrap(err, "count_profile_comments")
	}
	return count, nil
}

func (repository *PostgresRepository) SumVoteStats(context context.Context) (tally.Stats, error) {
	query := fmt.Sprintf(`
		SELECT systems.key, buckets.key, SUM(buckets.value::int)
		FROM %s AS c,
			jsonb_each(c.%s) AS systems,
			jsonb_each_text(systems.value) AS buckets
		WHERE c.%s
		GROUP BY systems.key, buckets.key`,
		schema.SocialComment.Table, schema.SocialComment.VoteStats, schema.SocialComment.IsVisible,
	)

	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "sum_vote_stats")
	}
	defer rows.Close()

	sum := tally.Stats{}
	for rows.Next() {
		var system, value string
		var count int
		if err := rows.Scan(&system, &value, &count); err != nil {
			return nil, dberr.Wrap(err, "scan_vote_stats")
		}
		sum.Apply(tally.Delta{System: personality.System(system), Value: value, Change: count})
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate_vote_stats")
	}

	return sum, nil
}
