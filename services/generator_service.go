package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ishikisiko/match-telemetry/live"
	"github.com/ishikisiko/match-telemetry/models"
	"github.com/ishikisiko/match-telemetry/repositories"
	"github.com/ishikisiko/match-telemetry/telemetry"
)

type GenerateInput struct {
	Matches  int    `json:"matches"`
	OwnerKey string `json:"owner"`
	// Seed 0 draws a fresh seed; the one used is reported back.
	Seed   int64 `json:"seed"`
	Export bool  `json:"export"`
}

type GenerationReport struct {
	GenerationID string   `json:"generation_id"`
	Seed         int64    `json:"seed"`
	OwnerID      int      `json:"owner_id"`
	MatchIDs     []int    `json:"match_ids"`
	Phases       int      `json:"phases"`
	Events       int      `json:"events"`
	TTDSamples   int      `json:"ttd_samples"`
	VoiceTurns   int      `json:"voice_turns"`
	Combos       int      `json:"combos"`
	Exported     []string `json:"exported,omitempty"`
}

type GeneratorParams struct {
	Curve  telemetry.CurveParams
	Combos telemetry.ComboParams
}

func DefaultGeneratorParams() GeneratorParams {
	return GeneratorParams{
		Curve:  telemetry.DefaultCurveParams(),
		Combos: telemetry.DefaultComboParams(),
	}
}

// GeneratorService runs a sequential batch: each match and all of its
// telemetry is written in one transaction before the next match starts.
// A failing match is rolled back and aborts the rest of the batch; matches
// committed earlier stay.
type GeneratorService interface {
	Generate(ctx context.Context, input GenerateInput) (*GenerationReport, error)
}

type generatorService struct {
	tx        TxRunner
	store     *repositories.Store
	params    GeneratorParams
	analytics AnalyticsService
	exporter  ExportService
	live      LivePublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewGeneratorService wires the batch generator. analytics, exporter and
// publisher are optional.
func NewGeneratorService(
	tx TxRunner,
	store *repositories.Store,
	params GeneratorParams,
	analytics AnalyticsService,
	exporter ExportService,
	publisher LivePublisher,
	logger *slog.Logger,
) GeneratorService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &generatorService{
		tx:        tx,
		store:     store,
		params:    params,
		analytics: analytics,
		exporter:  exporter,
		live:      publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *generatorService) Generate(ctx context.Context, input GenerateInput) (*GenerationReport, error) {
	if input.Matches < 1 {
		return nil, ErrInvalidMatchCount
	}
	if err := s.params.Curve.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if input.Export && s.exporter == nil {
		return nil, ErrStorageDisabled
	}

	owner, err := resolveOwner(ctx, s.store.Users, input.OwnerKey)
	if err != nil {
		return nil, err
	}

	rng, seed := telemetry.NewSeededRNG(input.Seed)
	report := &GenerationReport{
		GenerationID: uuid.NewString(),
		Seed:         seed,
		OwnerID:      owner.ID,
		MatchIDs:     make([]int, 0, input.Matches),
	}
	log := s.logger.With(slog.String("generation_id", report.GenerationID), slog.Int("owner_id", owner.ID))
	log.Info("generation started", slog.Int("matches", input.Matches), slog.Int64("seed", seed))

	for i := 0; i < input.Matches; i++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		var detail *models.MatchDetail
		err := s.tx.WithTx(ctx, func(exec repositories.SQLExecutor) error {
			var genErr error
			detail, genErr = s.generateMatch(ctx, exec, rng, owner.ID, report.GenerationID)
			return genErr
		})
		if err != nil {
			log.Error("match generation failed, batch aborted", slog.Int("index", i), slog.Any("error", err))
			return report, fmt.Errorf("match %d of %d: %w", i+1, input.Matches, err)
		}

		report.MatchIDs = append(report.MatchIDs, detail.Match.ID)
		report.Phases += len(detail.Phases)
		report.Events += len(detail.Events)
		report.TTDSamples += len(detail.TTDSamples)
		report.VoiceTurns += len(detail.VoiceTurns)
		report.Combos += len(detail.Combos)
		log.Debug("match generated", slog.Int("match_id", detail.Match.ID), slog.Int("phases", len(detail.Phases)))

		if input.Export {
			result, err := s.exporter.ExportDetail(ctx, detail)
			if err != nil {
				return report, fmt.Errorf("export match %d: %w", detail.Match.ID, err)
			}
			report.Exported = append(report.Exported, result.Key)
		}

		s.live.PublishToUser(owner.ID, live.MessageMatchGenerated, map[string]interface{}{
			"match_id":      detail.Match.ID,
			"generation_id": report.GenerationID,
			"game_title":    detail.Match.GameTitle,
			"map_name":      detail.Match.MapName,
		})
	}

	s.publishSummary(ctx, owner.ID)
	log.Info("generation finished",
		slog.Int("matches", len(report.MatchIDs)),
		slog.Int("events", report.Events),
		slog.Int("ttd_samples", report.TTDSamples),
	)
	return report, nil
}

// generateMatch runs phases, events, TTD, voice and combos in order against
// one executor.
func (s *generatorService) generateMatch(ctx context.Context, exec repositories.SQLExecutor, rng telemetry.Rand, ownerID int, generationID string) (*models.MatchDetail, error) {
	match := telemetry.SynthesizeMatch(rng, ownerID, s.now())
	match.Metadata.GenerationID = generationID
	if err := s.store.Matches.Create(ctx, exec, &match); err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}

	phases, err := telemetry.SegmentPhases(rng, match.ID, match.StartTime, match.EndTime)
	if err != nil {
		return nil, fmt.Errorf("segment phases: %w", err)
	}
	for i := range phases {
		if err := s.store.Phases.Create(ctx, exec, &phases[i]); err != nil {
			return nil, fmt.Errorf("create phase: %w", err)
		}
	}

	events := telemetry.SynthesizeEvents(rng, match.ID, phases)
	for i := range events {
		if err := s.store.Events.Create(ctx, exec, &events[i]); err != nil {
			return nil, fmt.Errorf("create event: %w", err)
		}
	}

	ttd, err := telemetry.SynthesizeTTD(rng, match, phases, s.params.Curve)
	if err != nil {
		return nil, fmt.Errorf("synthesize ttd: %w", err)
	}
	for i := range ttd.Samples {
		if err := s.store.TTDSamples.Create(ctx, exec, &ttd.Samples[i]); err != nil {
			return nil, fmt.Errorf("create ttd sample: %w", err)
		}
	}

	turns := telemetry.SynthesizeVoiceTurns(rng, match.ID, phases)
	for i := range turns {
		if err := s.store.VoiceTurns.Create(ctx, exec, &turns[i]); err != nil {
			return nil, fmt.Errorf("create voice turn: %w", err)
		}
	}

	combos := telemetry.SynthesizeCombos(rng, match.ID, s.params.Combos)
	for i := range combos {
		if err := s.store.Combos.Create(ctx, exec, &combos[i]); err != nil {
			return nil, fmt.Errorf("create combo: %w", err)
		}
	}

	match.Metadata.Extra = withTelemetryCounts(match.Metadata.Extra, ttd.Rounds, len(events), len(turns))
	if err := s.store.Matches.UpdateMetadata(ctx, exec, match.ID, match.Metadata); err != nil {
		return nil, fmt.Errorf("backfill match metadata: %w", err)
	}

	return &models.MatchDetail{
		Match:      match,
		Phases:     phases,
		Events:     events,
		TTDSamples: ttd.Samples,
		VoiceTurns: turns,
		Combos:     combos,
	}, nil
}

func (s *generatorService) publishSummary(ctx context.Context, ownerID int) {
	if s.analytics == nil {
		return
	}
	summary, err := s.analytics.Summary(ctx, ownerID)
	if err != nil {
		s.logger.Warn("failed to compute analytics after generation", slog.Int("owner_id", ownerID), slog.Any("error", err))
		return
	}
	s.live.PublishToUser(ownerID, live.MessageAnalyticsUpdate, summary)
}

func withTelemetryCounts(extra map[string]interface{}, rounds, events, voiceTurns int) map[string]interface{} {
	if extra == nil {
		extra = make(map[string]interface{}, 3)
	}
	extra["ttd_rounds"] = rounds
	extra["event_count"] = events
	extra["voice_turn_count"] = voiceTurns
	return extra
}

func resolveOwner(ctx context.Context, users repositories.UserRepository, key string) (*models.User, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: empty owner key", ErrOwnerNotFound)
	}
	owner, err := users.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrOwnerNotFound, key)
		}
		return nil, fmt.Errorf("failed to resolve owner %q: %w", key, err)
	}
	return owner, nil
}
