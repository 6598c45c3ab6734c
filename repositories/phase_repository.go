package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ishikisiko/match-telemetry/models"
)

var ErrPhaseNotFound = errors.New("phase not found")

type PhaseRepository interface {
	Create(ctx context.Context, exec SQLExecutor, phase *models.Phase) error
	GetByID(ctx context.Context, id int) (*models.Phase, error)
	// ListByMatch returns phases ordered by start time.
	ListByMatch(ctx context.Context, matchID int) ([]models.Phase, error)
	DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) (int64, error)
}

type postgresPhaseRepository struct {
	db *sql.DB
}

func NewPostgresPhaseRepository(db *sql.DB) PhaseRepository {
	return &postgresPhaseRepository{db: db}
}

const phaseColumns = `id, match_id, category, start_time, end_time, change_point_score, metadata`

func (r *postgresPhaseRepository) Create(ctx context.Context, exec SQLExecutor, phase *models.Phase) error {
	query := `
		INSERT INTO phases (match_id, category, start_time, end_time, change_point_score, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := executor(r.db, exec).QueryRowContext(ctx, query,
		phase.MatchID,
		phase.Category,
		phase.StartTime,
		phase.EndTime,
		phase.ChangePointScore,
		phase.Metadata,
	).Scan(&phase.ID)
	return mapChildError(err)
}

func (r *postgresPhaseRepository) GetByID(ctx context.Context, id int) (*models.Phase, error) {
	query := `SELECT ` + phaseColumns + ` FROM phases WHERE id = $1`

	phase, err := scanPhase(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPhaseNotFound
		}
		return nil, fmt.Errorf("failed to scan phase by id %d: %w", id, err)
	}
	return phase, nil
}

func (r *postgresPhaseRepository) ListByMatch(ctx context.Context, matchID int) ([]models.Phase, error) {
	query := `SELECT ` + phaseColumns + ` FROM phases WHERE match_id = $1 ORDER BY start_time ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query phases for match %d: %w", matchID, err)
	}
	defer rows.Close()

	phases := make([]models.Phase, 0)
	for rows.Next() {
		phase, scanErr := scanPhase(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan phase row: %w", scanErr)
		}
		phases = append(phases, *phase)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return phases, nil
}

func (r *postgresPhaseRepository) DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) (int64, error) {
	result, err := executor(r.db, exec).ExecContext(ctx, `DELETE FROM phases WHERE match_id = $1`, matchID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete phases for match %d: %w", matchID, err)
	}
	return result.RowsAffected()
}

func scanPhase(row rowScanner) (*models.Phase, error) {
	var phase models.Phase
	err := row.Scan(
		&phase.ID,
		&phase.MatchID,
		&phase.Category,
		&phase.StartTime,
		&phase.EndTime,
		&phase.ChangePointScore,
		&phase.Metadata,
	)
	if err != nil {
		return nil, err
	}
	return &phase, nil
}
