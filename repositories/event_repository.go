package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ishikisiko/match-telemetry/models"
)

var ErrEventNotFound = errors.New("event not found")

type EventRepository interface {
	Create(ctx context.Context, exec SQLExecutor, event *models.Event) error
	GetByID(ctx context.Context, id int) (*models.Event, error)
	ListByMatch(ctx context.Context, matchID int) ([]models.Event, error)
	DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) (int64, error)
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

const eventColumns = `id, match_id, phase_id, ts, actor, action, target, secondary_action, pos_x, pos_y, pos_z, metadata`

func (r *postgresEventRepository) Create(ctx context.Context, exec SQLExecutor, event *models.Event) error {
	query := `
		INSERT INTO events (match_id, phase_id, ts, actor, action, target, secondary_action, pos_x, pos_y, pos_z, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	err := executor(r.db, exec).QueryRowContext(ctx, query,
		event.MatchID,
		nullableID(event.PhaseID),
		event.Timestamp,
		event.Actor,
		event.Action,
		event.Target,
		event.SecondaryAction,
		event.Position.X,
		event.Position.Y,
		event.Position.Z,
		event.Metadata,
	).Scan(&event.ID)
	return mapChildError(err)
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan event by id %d: %w", id, err)
	}
	return event, nil
}

func (r *postgresEventRepository) ListByMatch(ctx context.Context, matchID int) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE match_id = $1 ORDER BY ts ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events for match %d: %w", matchID, err)
	}
	defer rows.Close()

	events := make([]models.Event, 0)
	for rows.Next() {
		event, scanErr := scanEvent(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", scanErr)
		}
		events = append(events, *event)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *postgresEventRepository) DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) (int64, error) {
	result, err := executor(r.db, exec).ExecContext(ctx, `DELETE FROM events WHERE match_id = $1`, matchID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete events for match %d: %w", matchID, err)
	}
	return result.RowsAffected()
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var event models.Event
	var phaseID sql.NullInt64
	err := row.Scan(
		&event.ID,
		&event.MatchID,
		&phaseID,
		&event.Timestamp,
		&event.Actor,
		&event.Action,
		&event.Target,
		&event.SecondaryAction,
		&event.Position.X,
		&event.Position.Y,
		&event.Position.Z,
		&event.Metadata,
	)
	if err != nil {
		return nil, err
	}
	event.PhaseID = scanNullableID(phaseID)
	return &event, nil
}
