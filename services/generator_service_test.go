package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ishikisiko/match-telemetry/live"
	"github.com/ishikisiko/match-telemetry/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestGenerator(db *memDB, publisher LivePublisher) *generatorService {
	store := db.store()
	svc := NewGeneratorService(db, store, DefaultGeneratorParams(), NewAnalyticsService(store, 10), nil, publisher, nil).(*generatorService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestGenerateWritesCompleteMatches(t *testing.T) {
	db := newMemDB()
	owner := db.seedUser("admin", models.RoleAdmin)
	publisher := &recordingPublisher{}
	svc := newTestGenerator(db, publisher)

	report, err := svc.Generate(context.Background(), GenerateInput{Matches: 3, OwnerKey: "admin", Seed: 42})
	require.NoError(t, err)

	assert.Equal(t, int64(42), report.Seed)
	assert.Equal(t, owner.ID, report.OwnerID)
	assert.NotEmpty(t, report.GenerationID)
	assert.Len(t, report.MatchIDs, 3)

	matches, phases, events, ttd, voice, combos := db.counts()
	assert.Equal(t, 3, matches)
	assert.Equal(t, report.Phases, phases)
	assert.Equal(t, report.Events, events)
	assert.Equal(t, report.TTDSamples, ttd)
	assert.Equal(t, report.VoiceTurns, voice)
	assert.Equal(t, report.Combos, combos)
	assert.GreaterOrEqual(t, phases, 9)
	assert.LessOrEqual(t, phases, 18)

	for _, m := range db.matches {
		assert.Equal(t, owner.ID, m.OwnerID)
		assert.Equal(t, report.GenerationID, m.Metadata.GenerationID)
		assert.Contains(t, m.Metadata.Extra, "ttd_rounds")
		assert.True(t, m.EndTime.After(m.StartTime))
		assert.False(t, m.EndTime.After(fixedNow))
	}

	assert.Equal(t, []string{
		live.MessageMatchGenerated,
		live.MessageMatchGenerated,
		live.MessageMatchGenerated,
		live.MessageAnalyticsUpdate,
	}, publisher.types())
}

func TestGenerateChildTimestampsInsideTheirPhase(t *testing.T) {
	db := newMemDB()
	db.seedUser("admin", models.RoleAdmin)
	svc := newTestGenerator(db, nil)

	_, err := svc.Generate(context.Background(), GenerateInput{Matches: 2, OwnerKey: "admin", Seed: 7})
	require.NoError(t, err)

	phaseByID := make(map[int]models.Phase, len(db.phases))
	for _, p := range db.phases {
		phaseByID[p.ID] = p
	}

	for _, e := range db.events {
		require.NotNil(t, e.PhaseID)
		assert.True(t, phaseByID[*e.PhaseID].Contains(e.Timestamp), "event %d outside its phase", e.ID)
	}
	for _, s := range db.ttd {
		require.NotNil(t, s.PhaseID)
		p := phaseByID[*s.PhaseID]
		assert.True(t, p.Contains(s.EventSourceTS))
		assert.True(t, p.Contains(s.ActionTS))
		assert.Equal(t, int64(s.TTDMs), s.ActionTS.Sub(s.EventSourceTS).Milliseconds())
	}
	for _, v := range db.voice {
		require.NotNil(t, v.PhaseID)
		p := phaseByID[*v.PhaseID]
		assert.True(t, p.Contains(v.StartTime))
		assert.False(t, v.EndTime.After(p.EndTime))
	}
	for _, c := range db.combos {
		assert.LessOrEqual(t, c.Successes, c.Attempts)
	}
}

func TestGenerateIsReproducibleForASeed(t *testing.T) {
	run := func() *memDB {
		db := newMemDB()
		db.seedUser("admin", models.RoleAdmin)
		_, err := newTestGenerator(db, nil).Generate(context.Background(), GenerateInput{Matches: 2, OwnerKey: "admin", Seed: 99})
		require.NoError(t, err)
		return db
	}

	a, b := run(), run()
	require.Equal(t, len(a.matches), len(b.matches))
	for i := range a.matches {
		assert.Equal(t, a.matches[i].StartTime, b.matches[i].StartTime)
		assert.Equal(t, a.matches[i].Metadata.ScoreA, b.matches[i].Metadata.ScoreA)
	}
	assert.Equal(t, len(a.events), len(b.events))
	assert.Equal(t, len(a.ttd), len(b.ttd))
}

func TestGenerateUnknownOwnerWritesNothing(t *testing.T) {
	db := newMemDB()
	db.seedUser("admin", models.RoleAdmin)
	svc := newTestGenerator(db, nil)

	_, err := svc.Generate(context.Background(), GenerateInput{Matches: 2, OwnerKey: "ghost", Seed: 1})
	require.ErrorIs(t, err, ErrOwnerNotFound)

	matches, phases, events, ttd, voice, combos := db.counts()
	assert.Zero(t, matches+phases+events+ttd+voice+combos)
}

func TestGenerateRejectsEmptyBatch(t *testing.T) {
	db := newMemDB()
	_, err := newTestGenerator(db, nil).Generate(context.Background(), GenerateInput{Matches: 0, OwnerKey: "admin"})
	assert.ErrorIs(t, err, ErrInvalidMatchCount)
}

func TestGenerateFailureRollsBackMatchAndAbortsBatch(t *testing.T) {
	db := newMemDB()
	db.seedUser("admin", models.RoleAdmin)
	errBoom := errors.New("boom")
	combosSeen := 0
	db.failCreate = func(table string) error {
		if table != "combos" {
			return nil
		}
		combosSeen++
		// The first match has at least 2 combos; fail inside the second match.
		if combosSeen > 6 {
			return errBoom
		}
		return nil
	}
	svc := newTestGenerator(db, nil)

	report, err := svc.Generate(context.Background(), GenerateInput{Matches: 5, OwnerKey: "admin", Seed: 3})
	require.ErrorIs(t, err, errBoom)
	require.NotNil(t, report)

	matches, phases, events, ttd, voice, combos := db.counts()
	assert.Equal(t, len(report.MatchIDs), matches)
	assert.Less(t, matches, 5)
	assert.Equal(t, report.Phases, phases)
	assert.Equal(t, report.Events, events)
	assert.Equal(t, report.TTDSamples, ttd)
	assert.Equal(t, report.VoiceTurns, voice)
	assert.Equal(t, report.Combos, combos)
}

func TestGenerateExportRequiresStorage(t *testing.T) {
	db := newMemDB()
	db.seedUser("admin", models.RoleAdmin)

	_, err := newTestGenerator(db, nil).Generate(context.Background(), GenerateInput{Matches: 1, OwnerKey: "admin", Export: true})
	assert.ErrorIs(t, err, ErrStorageDisabled)
}

func TestGenerateExportsEachMatch(t *testing.T) {
	db := newMemDB()
	db.seedUser("admin", models.RoleAdmin)
	store := db.store()
	objects := &memObjects{}
	analyticsSvc := NewAnalyticsService(store, 10)
	svc := NewGeneratorService(db, store, DefaultGeneratorParams(), analyticsSvc, NewExportService(analyticsSvc, objects), nil, nil)

	report, err := svc.Generate(context.Background(), GenerateInput{Matches: 2, OwnerKey: "admin", Seed: 5, Export: true})
	require.NoError(t, err)

	assert.Len(t, report.Exported, 2)
	assert.Len(t, objects.keys(), 2)
	for _, key := range report.Exported {
		assert.Regexp(t, `^telemetry/[a-z0-9-]+/[a-z0-9-]+/match-\d+\.json$`, key)
	}
}
