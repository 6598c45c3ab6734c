package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartGenerationScheduler runs a generation batch every interval. Runs never
// overlap; a tick that fires while a batch is still running is skipped. A
// non-zero input seed is advanced by one per run so the sequence stays
// reproducible without repeating the same matches.
func StartGenerationScheduler(ctx context.Context, gen GeneratorService, input GenerateInput, interval time.Duration, logger *slog.Logger) (gocron.Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("scheduler interval must be positive, got %s", interval)
	}
	if logger == nil {
		logger = slog.Default()
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	var runs atomic.Int64
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			run := runs.Add(1)
			batch := input
			if batch.Seed != 0 {
				batch.Seed += run - 1
			}
			report, err := gen.Generate(ctx, batch)
			if err != nil {
				logger.Error("scheduled generation failed", slog.Int64("run", run), slog.Any("error", err))
				return
			}
			logger.Info("scheduled generation finished",
				slog.Int64("run", run),
				slog.String("generation_id", report.GenerationID),
				slog.Int("matches", len(report.MatchIDs)),
			)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("synthetic-generation"),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to schedule generation job: %w", err)
	}

	sched.Start()
	logger.Info("generation scheduler started", slog.Duration("interval", interval), slog.Int("matches", input.Matches))
	return sched, nil
}
