package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ishikisiko/match-telemetry/live"
	"github.com/ishikisiko/match-telemetry/models"
	"github.com/ishikisiko/match-telemetry/repositories"
	"github.com/ishikisiko/match-telemetry/telemetry"
)

type RegenerationReport struct {
	OwnerID  int   `json:"owner_id"`
	Seed     int64 `json:"seed"`
	Matches  int   `json:"matches"`
	Deleted  int64 `json:"deleted"`
	Inserted int   `json:"inserted"`
}

// TTDRegenerationService rebuilds the round-level TTD samples of an owner.
// Existing round-level rows are deleted by their metadata marker and fresh
// ones inserted inside a single transaction, so repeated runs never stack.
type TTDRegenerationService interface {
	RegenerateRoundLevel(ctx context.Context, ownerKey string, seed int64) (*RegenerationReport, error)
}

type ttdRegenerationService struct {
	tx     TxRunner
	store  *repositories.Store
	curve  telemetry.CurveParams
	live   LivePublisher
	logger *slog.Logger
}

func NewTTDRegenerationService(tx TxRunner, store *repositories.Store, curve telemetry.CurveParams, publisher LivePublisher, logger *slog.Logger) TTDRegenerationService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ttdRegenerationService{tx: tx, store: store, curve: curve, live: publisher, logger: logger}
}

func (s *ttdRegenerationService) RegenerateRoundLevel(ctx context.Context, ownerKey string, seed int64) (*RegenerationReport, error) {
	if err := s.curve.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	owner, err := resolveOwner(ctx, s.store.Users, ownerKey)
	if err != nil {
		return nil, err
	}

	matches, err := s.store.Matches.ListByOwner(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of owner %d: %w", owner.ID, err)
	}

	rng, usedSeed := telemetry.NewSeededRNG(seed)
	report := &RegenerationReport{OwnerID: owner.ID, Seed: usedSeed, Matches: len(matches)}

	err = s.tx.WithTx(ctx, func(exec repositories.SQLExecutor) error {
		deleted, err := s.store.TTDSamples.DeleteByLevel(ctx, exec, owner.ID, models.TTDLevelRound)
		if err != nil {
			return err
		}
		report.Deleted = deleted

		for _, match := range matches {
			phases, err := s.store.Phases.ListByMatch(ctx, match.ID)
			if err != nil {
				return fmt.Errorf("load phases of match %d: %w", match.ID, err)
			}
			result, err := telemetry.SynthesizeTTD(rng, match, phases, s.curve)
			if err != nil {
				return fmt.Errorf("synthesize ttd for match %d: %w", match.ID, err)
			}
			for i := range result.Samples {
				if err := s.store.TTDSamples.Create(ctx, exec, &result.Samples[i]); err != nil {
					return fmt.Errorf("create ttd sample for match %d: %w", match.ID, err)
				}
			}
			report.Inserted += len(result.Samples)

			meta := match.Metadata
			if meta.Extra == nil {
				meta.Extra = make(map[string]interface{}, 1)
			}
			meta.Extra["ttd_rounds"] = result.Rounds
			if err := s.store.Matches.UpdateMetadata(ctx, exec, match.ID, meta); err != nil {
				return fmt.Errorf("backfill metadata of match %d: %w", match.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to regenerate round-level ttd for owner %d: %w", owner.ID, err)
	}

	s.logger.Info("round-level ttd regenerated",
		slog.Int("owner_id", owner.ID),
		slog.Int("matches", report.Matches),
		slog.Int64("deleted", report.Deleted),
		slog.Int("inserted", report.Inserted),
	)
	s.live.PublishToUser(owner.ID, live.MessageAnalyticsUpdate, report)
	return report, nil
}
