package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ishikisiko/match-telemetry/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound     = errors.New("match not found")
	ErrMatchOwnerInvalid = errors.New("match owner conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	// ListRecentByOwner returns at most limit matches, newest first.
	ListRecentByOwner(ctx context.Context, ownerID int, limit int) ([]models.Match, error)
	ListByOwner(ctx context.Context, ownerID int) ([]models.Match, error)
	UpdateMetadata(ctx context.Context, exec SQLExecutor, id int, metadata models.MatchMetadata) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, game_title, map_name, team_a, team_b, start_time, end_time, owner_id, metadata, created_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches (game_title, map_name, team_a, team_b, start_time, end_time, owner_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := executor(r.db, exec).QueryRowContext(ctx, query,
		match.GameTitle,
		match.MapName,
		match.TeamA,
		match.TeamB,
		match.StartTime,
		match.EndTime,
		match.OwnerID,
		match.Metadata,
	).Scan(&match.ID, &match.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return ErrMatchOwnerInvalid
		}
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	match, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListRecentByOwner(ctx context.Context, ownerID int, limit int) ([]models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE owner_id = $1
		ORDER BY start_time DESC, id DESC
		LIMIT $2`
	return r.list(ctx, query, ownerID, limit)
}

func (r *postgresMatchRepository) ListByOwner(ctx context.Context, ownerID int) ([]models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE owner_id = $1
		ORDER BY start_time ASC, id ASC`
	return r.list(ctx, query, ownerID)
}

func (r *postgresMatchRepository) UpdateMetadata(ctx context.Context, exec SQLExecutor, id int, metadata models.MatchMetadata) error {
	query := `UPDATE matches SET metadata = $1 WHERE id = $2`
	result, err := executor(r.db, exec).ExecContext(ctx, query, metadata, id)
	if err != nil {
		return fmt.Errorf("failed to update metadata for match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// Delete removes a match; phases, events, samples, turns and combos go with it.
func (r *postgresMatchRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	query := `DELETE FROM matches WHERE id = $1`
	result, err := executor(r.db, exec).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		match, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, *match)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner) (*models.Match, error) {
	var match models.Match
	err := row.Scan(
		&match.ID,
		&match.GameTitle,
		&match.MapName,
		&match.TeamA,
		&match.TeamB,
		&match.StartTime,
		&match.EndTime,
		&match.OwnerID,
		&match.Metadata,
		&match.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &match, nil
}
