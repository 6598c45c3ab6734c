package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ishikisiko/match-telemetry/models"
)

var ErrTTDSampleNotFound = errors.New("ttd sample not found")

type TTDSampleRepository interface {
	Create(ctx context.Context, exec SQLExecutor, sample *models.TTDSample) error
	GetByID(ctx context.Context, id int) (*models.TTDSample, error)
	ListByMatch(ctx context.Context, matchID int) ([]models.TTDSample, error)
	// ListByLevel returns the owner's samples whose metadata level marker equals level.
	ListByLevel(ctx context.Context, ownerID int, level string) ([]models.TTDSample, error)
	// DeleteByLevel removes the owner's samples carrying the level marker.
	DeleteByLevel(ctx context.Context, exec SQLExecutor, ownerID int, level string) (int64, error)
	DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) (int64, error)
}

type postgresTTDSampleRepository struct {
	db *sql.DB
}

func NewPostgresTTDSampleRepository(db *sql.DB) TTDSampleRepository {
	return &postgresTTDSampleRepository{db: db}
}

const ttdColumns = `s.id, s.match_id, s.phase_id, s.event_src_ts, s.decision_ts, s.action_ts, s.ttd_ms, s.context_hash, s.metadata`

func (r *postgresTTDSampleRepository) Create(ctx context.Context, exec SQLExecutor, sample *models.TTDSample) error {
	query := `
		INSERT INTO ttd_samples (match_id, phase_id, event_src_ts, decision_ts, action_ts, ttd_ms, context_hash, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := executor(r.db, exec).QueryRowContext(ctx, query,
		sample.MatchID,
		nullableID(sample.PhaseID),
		sample.EventSourceTS,
		sample.DecisionTS,
		sample.ActionTS,
		sample.TTDMs,
		sample.ContextHash,
		sample.Metadata,
	).Scan(&sample.ID)
	return mapChildError(err)
}

func (r *postgresTTDSampleRepository) GetByID(ctx context.Context, id int) (*models.TTDSample, error) {
	query := `SELECT ` + ttdColumns + ` FROM ttd_samples s WHERE s.id = $1`

	sample, err := scanTTDSample(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTTDSampleNotFound
		}
		return nil, fmt.Errorf("failed to scan ttd sample by id %d: %w", id, err)
	}
	return sample, nil
}

func (r *postgresTTDSampleRepository) ListByMatch(ctx context.Context, matchID int) ([]models.TTDSample, error) {
	query := `
		SELECT ` + ttdColumns + `
		FROM ttd_samples s
		WHERE s.match_id = $1
		ORDER BY s.event_src_ts ASC, s.id ASC`
	return r.list(ctx, query, matchID)
}

// The level marker is read through the ttd_samples_level_idx expression
// index rather than by scanning and filtering every row.
func (r *postgresTTDSampleRepository) ListByLevel(ctx context.Context, ownerID int, level string) ([]models.TTDSample, error) {
	query := `
		SELECT ` + ttdColumns + `
		FROM ttd_samples s
		JOIN matches m ON m.id = s.match_id
		WHERE m.owner_id = $1 AND s.metadata->>'level' = $2
		ORDER BY s.match_id ASC, s.event_src_ts ASC, s.id ASC`
	return r.list(ctx, query, ownerID, level)
}

func (r *postgresTTDSampleRepository) DeleteByLevel(ctx context.Context, exec SQLExecutor, ownerID int, level string) (int64, error) {
	query := `
		DELETE FROM ttd_samples s
		USING matches m
		WHERE m.id = s.match_id AND m.owner_id = $1 AND s.metadata->>'level' = $2`
	result, err := executor(r.db, exec).ExecContext(ctx, query, ownerID, level)
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s-level ttd samples for owner %d: %w", level, ownerID, err)
	}
	return result.RowsAffected()
}

func (r *postgresTTDSampleRepository) DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) (int64, error) {
	result, err := executor(r.db, exec).ExecContext(ctx, `DELETE FROM ttd_samples WHERE match_id = $1`, matchID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete ttd samples for match %d: %w", matchID, err)
	}
	return result.RowsAffected()
}

func (r *postgresTTDSampleRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.TTDSample, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ttd samples: %w", err)
	}
	defer rows.Close()

	samples := make([]models.TTDSample, 0)
	for rows.Next() {
		sample, scanErr := scanTTDSample(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan ttd sample row: %w", scanErr)
		}
		samples = append(samples, *sample)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}

func scanTTDSample(row rowScanner) (*models.TTDSample, error) {
	var sample models.TTDSample
	var phaseID sql.NullInt64
	err := row.Scan(
		&sample.ID,
		&sample.MatchID,
		&phaseID,
		&sample.EventSourceTS,
		&sample.DecisionTS,
		&sample.ActionTS,
		&sample.TTDMs,
		&sample.ContextHash,
		&sample.Metadata,
	)
	if err != nil {
		return nil, err
	}
	sample.PhaseID = scanNullableID(phaseID)
	return &sample, nil
}
