package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ishikisiko/match-telemetry/models"
)

var ErrVoiceTurnNotFound = errors.New("voice turn not found")

type VoiceTurnRepository interface {
	Create(ctx context.Context, exec SQLExecutor, turn *models.VoiceTurn) error
	GetByID(ctx context.Context, id int) (*models.VoiceTurn, error)
	ListByMatch(ctx context.Context, matchID int) ([]models.VoiceTurn, error)
	DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) (int64, error)
}

type postgresVoiceTurnRepository struct {
	db *sql.DB
}

func NewPostgresVoiceTurnRepository(db *sql.DB) VoiceTurnRepository {
	return &postgresVoiceTurnRepository{db: db}
}

const voiceColumns = `id, match_id, phase_id, speaker, start_time, end_time, transcript, clarity, info_density,
	interruption, sentiment, sentiment_score, metadata`

func (r *postgresVoiceTurnRepository) Create(ctx context.Context, exec SQLExecutor, turn *models.VoiceTurn) error {
	query := `
		INSERT INTO voice_turns
			(match_id, phase_id, speaker, start_time, end_time, transcript, clarity, info_density,
			 interruption, sentiment, sentiment_score, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	err := executor(r.db, exec).QueryRowContext(ctx, query,
		turn.MatchID,
		nullableID(turn.PhaseID),
		turn.Speaker,
		turn.StartTime,
		turn.EndTime,
		turn.Transcript,
		turn.Clarity,
		turn.InfoDensity,
		turn.Interruption,
		turn.Sentiment,
		turn.SentimentScore,
		turn.Metadata,
	).Scan(&turn.ID)
	return mapChildError(err)
}

func (r *postgresVoiceTurnRepository) GetByID(ctx context.Context, id int) (*models.VoiceTurn, error) {
	query := `SELECT ` + voiceColumns + ` FROM voice_turns WHERE id = $1`

	turn, err := scanVoiceTurn(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVoiceTurnNotFound
		}
		return nil, fmt.Errorf("failed to scan voice turn by id %d: %w", id, err)
	}
	return turn, nil
}

func (r *postgresVoiceTurnRepository) ListByMatch(ctx context.Context, matchID int) ([]models.VoiceTurn, error) {
	query := `SELECT ` + voiceColumns + ` FROM voice_turns WHERE match_id = $1 ORDER BY start_time ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query voice turns for match %d: %w", matchID, err)
	}
	defer rows.Close()

	turns := make([]models.VoiceTurn, 0)
	for rows.Next() {
		turn, scanErr := scanVoiceTurn(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan voice turn row: %w", scanErr)
		}
		turns = append(turns, *turn)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return turns, nil
}

func (r *postgresVoiceTurnRepository) DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) (int64, error) {
	result, err := executor(r.db, exec).ExecContext(ctx, `DELETE FROM voice_turns WHERE match_id = $1`, matchID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete voice turns for match %d: %w", matchID, err)
	}
	return result.RowsAffected()
}

func scanVoiceTurn(row rowScanner) (*models.VoiceTurn, error) {
	var turn models.VoiceTurn
	var phaseID sql.NullInt64
	err := row.Scan(
		&turn.ID,
		&turn.MatchID,
		&phaseID,
		&turn.Speaker,
		&turn.StartTime,
		&turn.EndTime,
		&turn.Transcript,
		&turn.Clarity,
		&turn.InfoDensity,
		&turn.Interruption,
		&turn.Sentiment,
		&turn.SentimentScore,
		&turn.Metadata,
	)
	if err != nil {
		return nil, err
	}
	turn.PhaseID = scanNullableID(phaseID)
	return &turn, nil
}
