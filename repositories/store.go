package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// Store bundles every repository behind one explicitly constructed handle.
// The process entry point owns it; generators and analytics receive it.
type Store struct {
	db *sql.DB

	Users      UserRepository
	Matches    MatchRepository
	Phases     PhaseRepository
	Events     EventRepository
	TTDSamples TTDSampleRepository
	VoiceTurns VoiceTurnRepository
	Combos     ComboRepository
}

func NewPostgresStore(db *sql.DB) *Store {
	return &Store{
		db:         db,
		Users:      NewPostgresUserRepository(db),
		Matches:    NewPostgresMatchRepository(db),
		Phases:     NewPostgresPhaseRepository(db),
		Events:     NewPostgresEventRepository(db),
		TTDSamples: NewPostgresTTDSampleRepository(db),
		VoiceTurns: NewPostgresVoiceTurnRepository(db),
		Combos:     NewPostgresComboRepository(db),
	}
}

// WithTx runs fn inside a transaction. It commits when fn returns nil and
// rolls back on error or panic.
func (s *Store) WithTx(ctx context.Context, fn func(exec SQLExecutor) error) (txErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.ErrorContext(ctx, "rollback failed", slog.Any("error", rbErr), slog.Any("cause", txErr))
				txErr = fmt.Errorf("%w (rollback also failed: %v)", txErr, rbErr)
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()

	return fn(tx)
}
