package telemetry

import (
	"fmt"
	"math"

	"github.com/ishikisiko/match-telemetry/models"
)

// IntervalMode selects how the combo win-rate interval is computed.
type IntervalMode string

const (
	// IntervalSymmetric is [w-δ, w+δ], unclamped. It can leave [0,1].
	IntervalSymmetric IntervalMode = "symmetric"
	// IntervalWilson is the Wilson score interval at 95%.
	IntervalWilson IntervalMode = "wilson"
)

// ParseIntervalMode reads a mode name; empty means IntervalSymmetric.
func ParseIntervalMode(s string) (IntervalMode, error) {
	switch IntervalMode(s) {
	case "", IntervalSymmetric:
		return IntervalSymmetric, nil
	case IntervalWilson:
		return IntervalWilson, nil
	default:
		return "", fmt.Errorf("unknown combo interval mode %q", s)
	}
}

// ComboParams bounds the combo count and attempts per combo. Delta is the
// half-width of the symmetric interval.
type ComboParams struct {
	MinCombos   int
	MaxCombos   int
	MaxAttempts int
	Delta       float64
	Mode        IntervalMode
}

// DefaultComboParams draws 2-6 combos of up to 20 attempts with a 0.1 band.
func DefaultComboParams() ComboParams {
	return ComboParams{
		MinCombos:   2,
		MaxCombos:   6,
		MaxAttempts: 20,
		Delta:       0.1,
		Mode:        IntervalSymmetric,
	}
}

// SynthesizeCombos draws match-scoped combo statistics.
func SynthesizeCombos(rng Rand, matchID int, p ComboParams) []models.Combo {
	count := randomRange(rng, p.MinCombos, p.MaxCombos)
	combos := make([]models.Combo, 0, count)
	for i := 0; i < count; i++ {
		members := pickDistinct(rng, PlayerPool, randomRange(rng, 2, 3))
		attempts := rng.Intn(p.MaxAttempts + 1)
		successes := rng.Intn(attempts + 1)
		rate := WinRate(successes, attempts)
		low, high := ConfidenceInterval(p.Mode, successes, attempts, p.Delta)

		combos = append(combos, models.Combo{
			MatchID:   matchID,
			Members:   members,
			Context:   pick(rng, models.ComboContexts),
			Attempts:  attempts,
			Successes: successes,
			WinRate:   rate,
			CILow:     low,
			CIHigh:    high,
			Metadata:  models.ComboMetadata{IntervalMode: string(p.Mode)},
		})
	}
	return combos
}

// WinRate is successes/attempts, or 0 when there were no attempts.
func WinRate(successes, attempts int) float64 {
	if attempts <= 0 {
		return 0
	}
	return float64(successes) / float64(attempts)
}

const wilsonZ = 1.96

// ConfidenceInterval returns [low, high] around the win rate; the win rate
// is always inside the band.
func ConfidenceInterval(mode IntervalMode, successes, attempts int, delta float64) (float64, float64) {
	rate := WinRate(successes, attempts)
	if mode != IntervalWilson {
		return rate - delta, rate + delta
	}
	if attempts <= 0 {
		return 0, 1
	}

	n := float64(attempts)
	z2 := wilsonZ * wilsonZ
	denom := 1 + z2/n
	center := (rate + z2/(2*n)) / denom
	margin := wilsonZ * math.Sqrt(rate*(1-rate)/n+z2/(4*n*n)) / denom

	low := math.Max(0, math.Min(center-margin, rate))
	high := math.Min(1, math.Max(center+margin, rate))
	return low, high
}
