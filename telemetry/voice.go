package telemetry

import (
	"time"

	"github.com/ishikisiko/match-telemetry/models"
)

const (
	MinVoiceTurnsPerPhase = 2
	MaxVoiceTurnsPerPhase = 6

	minTurnDuration  = 800 * time.Millisecond
	maxTurnDuration  = 6 * time.Second
	interruptionRate = 0.15
)

// SynthesizeVoiceTurns generates sentiment-tagged comms for each phase.
// Every turn's [StartTime, EndTime) lies inside its phase window.
func SynthesizeVoiceTurns(rng Rand, matchID int, phases []models.Phase) []models.VoiceTurn {
	turns := make([]models.VoiceTurn, 0, len(phases)*MaxVoiceTurnsPerPhase)
	for i := range phases {
		phase := phases[i]
		if phase.Duration() <= time.Millisecond {
			continue
		}
		count := randomRange(rng, MinVoiceTurnsPerPhase, MaxVoiceTurnsPerPhase)
		for j := 0; j < count; j++ {
			turns = append(turns, synthesizeTurn(rng, matchID, phase))
		}
	}
	return turns
}

func synthesizeTurn(rng Rand, matchID int, phase models.Phase) models.VoiceTurn {
	duration := minTurnDuration + offsetIn(rng, maxTurnDuration-minTurnDuration)
	if limit := phase.Duration() - time.Millisecond; duration > limit {
		duration = limit
	}
	start := phase.StartTime.Add(offsetIn(rng, phase.Duration()-duration))

	sentiment, score := drawSentiment(rng)
	return models.VoiceTurn{
		MatchID:        matchID,
		PhaseID:        phaseRef(phase),
		Speaker:        pick(rng, PlayerPool),
		StartTime:      start,
		EndTime:        start.Add(duration),
		Transcript:     pick(rng, calloutPool[sentiment]),
		Clarity:        round2(Perturb(rng, 0.8, 0.12, 0, 1)),
		InfoDensity:    round2(Perturb(rng, 0.6, 0.15, 0, 1)),
		Interruption:   rng.Float64() < interruptionRate,
		Sentiment:      sentiment,
		SentimentScore: score,
		Metadata:       models.VoiceMetadata{DurationMs: int(duration / time.Millisecond)},
	}
}

// drawSentiment picks a category and a score in the band that matches it.
func drawSentiment(rng Rand) (models.Sentiment, float64) {
	switch roll := rng.Float64(); {
	case roll < 0.4:
		return models.SentimentPositive, round2(uniform(rng, 0.2, 1))
	case roll < 0.75:
		return models.SentimentNeutral, round2(uniform(rng, -0.2, 0.2))
	default:
		return models.SentimentNegative, round2(uniform(rng, -1, -0.2))
	}
}
