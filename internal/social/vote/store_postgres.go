package vote

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/personae/internal/platform/apperr"
	"github.com/taibuivan/personae/internal/platform/database/schema"
	"github.com/taibuivan/personae/internal/platform/dberr"
	"github.com/taibuivan/personae/internal/platform/postgres"
	"github.com/taibuivan/personae/internal/social/comment"
	"github.com/taibuivan/personae/internal/social/personality"
	"github.com/taibuivan/personae/internal/social/tally"
	"github.com/taibuivan/personae/pkg/uuid"
)

// PostgresRepository implements [Repository] on social.vote and keeps
// social.comment tallies in the same transaction.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresRepository constructs a PostgreSQL backed vote store.
func NewPostgresRepository(pool *pgxpool.Pool, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{pool: pool, logger: logger}
}

var voteColumns = strings.Join(schema.SocialVote.Columns(), ", ")

func scanVote(row pgx.Row) (*Vote, error) {
	v := &Vote{}
	var system string
	err := row.Scan(&v.ID, &v.CommentID, &v.ProfileID, &system, &v.Value, &v.VoterID, &v.CreatedAt, &v.UpdatedAt)
	v.System = personality.System(system)
	return v, err
}

/*
Submit upserts a vote and applies its tally delta in one transaction.

Description: the insert either claims the (comment, voter, system) slot or
finds it taken, in which case the existing row is locked and updated in place.
The previous value read under that lock is the one the delta is computed from.
The comment row is locked last, so voters on one comment only serialize for
the tally write. Submit and Remove both lock vote row before comment row.
*/
func (repository *PostgresRepository) Submit(context context.Context, v *Vote) (*SubmitResult, error) {
	result := &SubmitResult{}

	err := postgres.InTx(context, repository.pool, func(transaction pgx.Tx) error {
		insertQuery := fmt.Sprintf(`
			INSERT INTO %s (%s, %s, %s, %s, %s, %s)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (%s, %s, %s) DO NOTHING
			RETURNING %s`,
			schema.SocialVote.Table,
			schema.SocialVote.ID, schema.SocialVote.CommentID, schema.SocialVote.ProfileID,
			schema.SocialVote.System, schema.SocialVote.Value, schema.SocialVote.VoterID,
			schema.SocialVote.CommentID, schema.SocialVote.VoterID, schema.SocialVote.System,
			voteColumns,
		)

		var deltas []tally.Delta

		inserted, err := scanVote(transaction.QueryRow(context, insertQuery,
			uuid.New(), v.CommentID, v.ProfileID, string(v.System), v.Value, v.VoterID))

		switch {
		case err == nil:
			result.Vote, result.IsNewVote = inserted, true
			deltas = tally.ForNewVote(v.System, v.Value)

		case dberr.IsNoRows(err):
			previous, err := repository.lockVote(context, transaction, KeyOf(v))
			if err != nil {
				return err
			}
			if previous == nil {
				return apperr.DuplicateVote(v.CommentID, string(v.System))
			}

			updateQuery := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1 RETURNING %s`,
				schema.SocialVote.Table, schema.SocialVote.Value, schema.SocialVote.UpdatedAt,
				schema.SocialVote.ID, voteColumns)

			updated, err := scanVote(transaction.QueryRow(context, updateQuery, previous.ID, v.Value))
			if err != nil {
				return dberr.Wrap(err, "update_vote")
			}
			result.Vote, result.PreviousValue = updated, previous.Value
			deltas = tally.ForChange(v.System, previous.Value, v.Value)

		case dberr.IsUniqueViolation(err):
			return apperr.DuplicateVote(v.CommentID, string(v.System))

		case dberr.IsForeignKeyViolation(err):
			return comment.NotFound(v.CommentID)

		default:
			return dberr.Wrap(err, "insert_vote")
		}

		return repository.applyTally(context, transaction, v.CommentID, deltas)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (repository *PostgresRepository) Remove(context context.Context, key Key) (*Vote, error) {
	var removed *Vote

	err := postgres.InTx(context, repository.pool, func(transaction pgx.Tx) error {
		query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2 AND %s = $3 RETURNING %s`,
			schema.SocialVote.Table, schema.SocialVote.CommentID, schema.SocialVote.VoterID,
			schema.SocialVote.System, voteColumns)

		deleted, err := scanVote(transaction.QueryRow(context, query, key.CommentID, key.VoterID, string(key.System)))
		if dberr.IsNoRows(err) {
			return nil
		}
		if err != nil {
			return dberr.Wrap(err, "delete_vote")
		}
		removed = deleted

		return repository.applyTally(context, transaction, key.CommentID, tally.ForRemoval(deleted.System, deleted.Value))
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (repository *PostgresRepository) FindOne(context context.Context, key Key) (*Vote, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 AND %s = $3`,
		voteColumns, schema.SocialVote.Table,
		schema.SocialVote.CommentID, schema.SocialVote.VoterID, schema.SocialVote.System)

	found, err := scanVote(repository.pool.QueryRow(context, query, key.CommentID, key.VoterID, string(key.System)))
	if dberr.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "find_vote")
	}
	return found, nil
}

func (repository *PostgresRepository) ListForComment(context context.Context, commentID string, system *personality.System) ([]*Vote, error) {
	args := []any{commentID}
	where := fmt.Sprintf("%s = $1", schema.SocialVote.CommentID)
	if system != nil {
		args = append(args, string(*system))
		where += fmt.Sprintf(" AND %s = $2", schema.SocialVote.System)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY %s ASC, %s ASC`,
		voteColumns, schema.SocialVote.Table, where, schema.SocialVote.CreatedAt, schema.SocialVote.ID)

	return repository.queryVotes(context, "list_comment_votes", query, args...)
}

func (repository *PostgresRepository) ListByVoter(context context.Context, voterID string, commentID string, limit int) ([]*Vote, error) {
	args := []any{voterID}
	where := fmt.Sprintf("%s = $1", schema.SocialVote.VoterID)
	if commentID != "" {
		args = append(args, commentID)
		where += fmt.Sprintf(" AND %s = $2", schema.SocialVote.CommentID)
	}
	args = append(args, limit)

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY %s DESC, %s DESC LIMIT $%d`,
		voteColumns, schema.SocialVote.Table, where, schema.SocialVote.UpdatedAt, schema.SocialVote.ID, len(args))

	return repository.queryVotes(context, "list_voter_votes", query, args...)
}

// # Transaction Helpers

// lockComment takes the row lock on a visible comment and returns its tally.
// NO KEY UPDATE leaves the KEY SHARE locks of concurrent vote inserts alone.
func lockComment(context context.Context, transaction pgx.Tx, commentID string) (tally.Stats, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s FOR NO KEY UPDATE`,
		schema.SocialComment.VoteStats, schema.SocialComment.Table,
		schema.SocialComment.ID, schema.SocialComment.IsVisible)

	var stats tally.Stats
	err := transaction.QueryRow(context, query, commentID).Scan(&stats)
	if dberr.IsNoRows(err) {
		return nil, comment.NotFound(commentID)
	}
	if err != nil {
		return nil, dberr.Wrap(err, "lock_comment")
	}
	if stats == nil {
		stats = tally.Stats{}
	}
	return stats, nil
}

func (repository *PostgresRepository) lockVote(context context.Context, transaction pgx.Tx, key Key) (*Vote, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 AND %s = $3 FOR UPDATE`,
		voteColumns, schema.SocialVote.Table,
		schema.SocialVote.CommentID, schema.SocialVote.VoterID, schema.SocialVote.System)

	existing, err := scanVote(transaction.QueryRow(context, query, key.CommentID, key.VoterID, string(key.System)))
	if dberr.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "lock_vote")
	}
	return existing, nil
}

// applyTally locks the comment row and writes the adjusted tally back. A hidden
// or missing comment, or a failed write, aborts the whole transaction, vote
// write included.
func (repository *PostgresRepository) applyTally(context context.Context, transaction pgx.Tx, commentID string, deltas []tally.Delta) error {
	stats, err := lockComment(context, transaction, commentID)
	if err != nil {
		return err
	}
	if len(deltas) == 0 {
		return nil
	}

	applied, skipped := stats.Apply(deltas...)
	logSkipped(context, repository.logger, commentID, skipped)

	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = %s + $3, %s = NOW() WHERE %s = $1`,
		schema.SocialComment.Table, schema.SocialComment.VoteStats,
		schema.SocialComment.TotalVotes, schema.SocialComment.TotalVotes,
		schema.SocialComment.UpdatedAt, schema.SocialComment.ID)

	if _, err := transaction.Exec(context, query, commentID, stats, applied); err != nil {
		repository.logger.ErrorContext(context, "vote_aggregate_failed",
			slog.String("comment_id", commentID),
			slog.Any("error", err),
		)
		return dberr.Wrap(err, "apply_vote_tally")
	}
	return nil
}

func (repository *PostgresRepository) queryVotes(context context.Context, action, query string, args ...any) ([]*Vote, error) {
	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}
	defer rows.Close()

	votes := make([]*Vote, 0)
	for rows.Next() {
		v, err := scanVote(rows)
		if err != nil {
			return nil, dberr.Wrap(err, action)
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, action)
	}
	return votes, nil
}
