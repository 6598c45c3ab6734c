package telemetry

import (
	"time"

	"github.com/ishikisiko/match-telemetry/models"
)

const (
	matchMinDuration = 25 * time.Minute
	matchMaxDuration = 50 * time.Minute
	matchLookback    = 30 * 24 * time.Hour
)

// SynthesizeMatch draws a completed match owned by ownerID that started
// within the 30 days before now. Score A is the owner's team.
func SynthesizeMatch(rng Rand, ownerID int, now time.Time) models.Match {
	title := pick(rng, gameCatalog)
	teams := pickDistinct(rng, teamPool, 2)

	start := now.Add(-matchMaxDuration - offsetIn(rng, matchLookback)).Truncate(time.Second)
	durationSec := randomRange(rng, int(matchMinDuration/time.Second), int(matchMaxDuration/time.Second))
	end := start.Add(time.Duration(durationSec) * time.Second)

	loserScore := rng.Intn(title.WinScore - 1)
	meta := models.MatchMetadata{
		Kills:   randomRange(rng, 6, 32),
		Deaths:  randomRange(rng, 4, 26),
		Assists: randomRange(rng, 0, 12),
	}
	if rng.Float64() < 0.5 {
		meta.ScoreA, meta.ScoreB = title.WinScore, loserScore
		meta.Winner = teams[0]
	} else {
		meta.ScoreA, meta.ScoreB = loserScore, title.WinScore
		meta.Winner = teams[1]
	}

	return models.Match{
		GameTitle: title.Name,
		MapName:   pick(rng, title.Maps),
		TeamA:     teams[0],
		TeamB:     teams[1],
		StartTime: start,
		EndTime:   end,
		OwnerID:   ownerID,
		Metadata:  meta,
	}
}
