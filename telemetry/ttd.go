package telemetry

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/ishikisiko/match-telemetry/models"
)

// ErrNoPhaseForRound means no phase covers a round sample with its full latency.
var ErrNoPhaseForRound = errors.New("no phase window can hold the round sample")

// CurveParams configures the U-shaped reaction-time curve
//
//	ttd(r) = (B - 100) + A * ((p - m) / (1 - m))²,  p = (r-1)/(R-1)
//
// which is lowest around round m*R (warmed up) and rises toward both the
// start (cold) and the end (fatigue) of the match.
type CurveParams struct {
	BaseLatencyMs   float64 // B
	Amplitude       float64 // A
	MinimumOffset   float64 // m, in (0, 1)
	NoiseStdDev     float64
	MinLatencyMs    int
	MinRounds       int
	MaxRounds       int
	SamplesPerRound int
}

// DefaultCurveParams is B=350, A=180, m=0.4 over 13-24 rounds.
func DefaultCurveParams() CurveParams {
	return CurveParams{
		BaseLatencyMs:   350,
		Amplitude:       180,
		MinimumOffset:   0.4,
		NoiseStdDev:     25,
		MinLatencyMs:    80,
		MinRounds:       13,
		MaxRounds:       24,
		SamplesPerRound: 3,
	}
}

// Validate rejects parameters the curve or the round sampler cannot use.
func (p CurveParams) Validate() error {
	if p.MinimumOffset <= 0 || p.MinimumOffset >= 1 {
		return fmt.Errorf("curve minimum offset must be in (0,1), got %v", p.MinimumOffset)
	}
	if p.MinRounds < 1 || p.MaxRounds < p.MinRounds {
		return fmt.Errorf("invalid round range [%d, %d]", p.MinRounds, p.MaxRounds)
	}
	if p.SamplesPerRound < 1 {
		return fmt.Errorf("samples per round must be positive, got %d", p.SamplesPerRound)
	}
	if p.MinLatencyMs < 1 {
		return fmt.Errorf("minimum latency must be positive, got %d", p.MinLatencyMs)
	}
	return nil
}

// CurveValue is the noiseless time-to-decision in milliseconds for round r of rounds.
func CurveValue(round, rounds int, p CurveParams) float64 {
	progress := 0.0
	if rounds > 1 {
		progress = float64(round-1) / float64(rounds-1)
	}
	scaled := (progress - p.MinimumOffset) / (1 - p.MinimumOffset)
	return (p.BaseLatencyMs - 100) + p.Amplitude*scaled*scaled
}

// Curve returns CurveValue for rounds 1..rounds.
func Curve(rounds int, p CurveParams) []float64 {
	values := make([]float64, rounds)
	for r := 1; r <= rounds; r++ {
		values[r-1] = CurveValue(r, rounds, p)
	}
	return values
}

// SampleLatency perturbs a curve value and floors it at the minimum latency.
func SampleLatency(rng Rand, value float64, p CurveParams) int {
	ms := int(math.Round(value + Gaussian(rng, 0, p.NoiseStdDev)))
	if ms < p.MinLatencyMs {
		ms = p.MinLatencyMs
	}
	return ms
}

// TTDResult is one generation of round-level samples for a match.
type TTDResult struct {
	Rounds  int
	Samples []models.TTDSample
}

// SynthesizeTTD draws a round count and produces SamplesPerRound noisy
// observations per round. Rounds are spread evenly across the match; each
// sample lies entirely inside the phase that holds its round anchor.
func SynthesizeTTD(rng Rand, match models.Match, phases []models.Phase, p CurveParams) (TTDResult, error) {
	if err := p.Validate(); err != nil {
		return TTDResult{}, err
	}
	duration := match.Duration()
	if duration <= 0 {
		return TTDResult{}, ErrInvalidMatchWindow
	}

	rounds := randomRange(rng, p.MinRounds, p.MaxRounds)
	roundSpan := duration / time.Duration(rounds)
	samples := make([]models.TTDSample, 0, rounds*p.SamplesPerRound)

	for r := 1; r <= rounds; r++ {
		value := CurveValue(r, rounds, p)
		roundStart := match.StartTime.Add(time.Duration(r-1) * roundSpan)
		pressure := pressureFor(rng, r, rounds)

		for s := 0; s < p.SamplesPerRound; s++ {
			ttd := SampleLatency(rng, value, p)
			anchor := roundStart.Add(offsetIn(rng, roundSpan))
			phase, ok := models.PhaseAt(phases, anchor)
			if !ok {
				return TTDResult{}, fmt.Errorf("round %d: %w", r, ErrNoPhaseForRound)
			}
			src, err := fitInPhase(anchor, time.Duration(ttd)*time.Millisecond, phase)
			if err != nil {
				return TTDResult{}, fmt.Errorf("round %d: %w", r, err)
			}

			decisionMs := int(math.Round(float64(ttd) * uniform(rng, 0.35, 0.75)))
			samples = append(samples, models.TTDSample{
				MatchID:       match.ID,
				PhaseID:       phaseRef(phase),
				EventSourceTS: src,
				DecisionTS:    src.Add(time.Duration(decisionMs) * time.Millisecond),
				ActionTS:      src.Add(time.Duration(ttd) * time.Millisecond),
				TTDMs:         ttd,
				ContextHash:   contextHash(match.ID, r, s, ttd),
				Metadata: models.TTDMetadata{
					Level:       models.TTDLevelRound,
					Round:       r,
					TotalRounds: rounds,
					Pressure:    pressure,
					Situation:   pick(rng, situationPool),
				},
			})
		}
	}
	return TTDResult{Rounds: rounds, Samples: samples}, nil
}

// fitInPhase moves the event-source timestamp back when needed so that
// [src, src+latency] stays inside [phase.StartTime, phase.EndTime).
func fitInPhase(anchor time.Time, latency time.Duration, phase models.Phase) (time.Time, error) {
	latest := phase.EndTime.Add(-latency - time.Millisecond)
	if latest.Before(phase.StartTime) {
		return time.Time{}, ErrNoPhaseForRound
	}
	if anchor.After(latest) {
		return latest, nil
	}
	return anchor, nil
}

// pressureFor trends toward higher pressure as the match closes out, with
// an occasional step either way.
func pressureFor(rng Rand, round, rounds int) models.PressureLevel {
	progress := 0.0
	if rounds > 1 {
		progress = float64(round-1) / float64(rounds-1)
	}
	levels := len(models.PressureLevels)
	idx := int(progress * float64(levels))
	if idx >= levels {
		idx = levels - 1
	}
	switch roll := rng.Float64(); {
	case roll < 0.15 && idx > 0:
		idx--
	case roll > 0.85 && idx < levels-1:
		idx++
	}
	return models.PressureLevels[idx]
}

func contextHash(matchID, round, sample, ttd int) string {
	name := fmt.Sprintf("match:%d/round:%d/sample:%d/ttd:%d", matchID, round, sample, ttd)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}
