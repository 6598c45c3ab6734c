package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ishikisiko/match-telemetry/models"
	"github.com/lib/pq"
)

var ErrComboNotFound = errors.New("combo not found")

type ComboRepository interface {
	Create(ctx context.Context, exec SQLExecutor, combo *models.Combo) error
	GetByID(ctx context.Context, id int) (*models.Combo, error)
	ListByMatch(ctx context.Context, matchID int) ([]models.Combo, error)
	DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) (int64, error)
}

type postgresComboRepository struct {
	db *sql.DB
}

func NewPostgresComboRepository(db *sql.DB) ComboRepository {
	return &postgresComboRepository{db: db}
}

const comboColumns = `id, match_id, members, context, attempts, successes, win_rate, ci_low, ci_high, metadata`

func (r *postgresComboRepository) Create(ctx context.Context, exec SQLExecutor, combo *models.Combo) error {
	query := `
		INSERT INTO combos (match_id, members, context, attempts, successes, win_rate, ci_low, ci_high, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err := executor(r.db, exec).QueryRowContext(ctx, query,
		combo.MatchID,
		pq.Array(combo.Members),
		combo.Context,
		combo.Attempts,
		combo.Successes,
		combo.WinRate,
		combo.CILow,
		combo.CIHigh,
		combo.Metadata,
	).Scan(&combo.ID)
	return mapChildError(err)
}

func (r *postgresComboRepository) GetByID(ctx context.Context, id int) (*models.Combo, error) {
	query := `SELECT ` + comboColumns + ` FROM combos WHERE id = $1`

	combo, err := scanCombo(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrComboNotFound
		}
		return nil, fmt.Errorf("failed to scan combo by id %d: %w", id, err)
	}
	return combo, nil
}

func (r *postgresComboRepository) ListByMatch(ctx context.Context, matchID int) ([]models.Combo, error) {
	query := `SELECT ` + comboColumns + ` FROM combos WHERE match_id = $1 ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query combos for match %d: %w", matchID, err)
	}
	defer rows.Close()

	combos := make([]models.Combo, 0)
	for rows.Next() {
		combo, scanErr := scanCombo(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan combo row: %w", scanErr)
		}
		combos = append(combos, *combo)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return combos, nil
}

func (r *postgresComboRepository) DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) (int64, error) {
	result, err := executor(r.db, exec).ExecContext(ctx, `DELETE FROM combos WHERE match_id = $1`, matchID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete combos for match %d: %w", matchID, err)
	}
	return result.RowsAffected()
}

func scanCombo(row rowScanner) (*models.Combo, error) {
	var combo models.Combo
	err := row.Scan(
		&combo.ID,
		&combo.MatchID,
		pq.Array(&combo.Members),
		&combo.Context,
		&combo.Attempts,
		&combo.Successes,
		&combo.WinRate,
		&combo.CILow,
		&combo.CIHigh,
		&combo.Metadata,
	)
	if err != nil {
		return nil, err
	}
	return &combo, nil
}
