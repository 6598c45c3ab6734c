// Package analytics derives display metrics from persisted match rows.
// Everything here is a pure function of its input; nothing is cached.
package analytics

import (
	"math"
	"sort"

	"github.com/ishikisiko/match-telemetry/models"
)

// DefaultWindow is how many of the most recent matches the summary covers.
const DefaultWindow = 10

// KDPoint is kills / max(deaths, 1), rounded to 2 decimals.
func KDPoint(kills, deaths int) float64 {
	if deaths < 1 {
		deaths = 1
	}
	return roundTo(float64(kills)/float64(deaths), 2)
}

// PerformanceScore maps a final score to [0,100] with 50 as the boundary
// between a loss and a win. A 0-0 score carries no information and is 50.
func PerformanceScore(scoreA, scoreB int) float64 {
	total := scoreA + scoreB
	if total <= 0 {
		return 50
	}
	share := float64(scoreA) / float64(total)
	if scoreA > scoreB {
		return roundTo(50+50*share, 1)
	}
	return roundTo(50*share, 1)
}

// WinRate is the percentage of matches with ScoreA > ScoreB, rounded to an integer.
func WinRate(matches []models.Match) int {
	if len(matches) == 0 {
		return 0
	}
	wins := 0
	for _, m := range matches {
		if m.Metadata.IsWin() {
			wins++
		}
	}
	return int(math.Round(100 * float64(wins) / float64(len(matches))))
}

// Summarize computes the K/D trend, performance score and win rate over the
// window most recent matches. matches must be ordered newest first, the
// order the store returns them in; the trend is reported oldest first.
func Summarize(matches []models.Match, window int) models.AnalyticsSummary {
	if window <= 0 {
		window = DefaultWindow
	}
	if len(matches) > window {
		matches = matches[:window]
	}

	summary := models.AnalyticsSummary{
		Window:             window,
		MatchesConsidered:  len(matches),
		AveragePerformance: 50,
		Trend:              make([]models.TrendPoint, 0, len(matches)),
	}
	if len(matches) == 0 {
		return summary
	}

	var kdSum, perfSum float64
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		point := models.TrendPoint{
			MatchID:          m.ID,
			StartTime:        m.StartTime,
			KD:               KDPoint(m.Metadata.Kills, m.Metadata.Deaths),
			PerformanceScore: PerformanceScore(m.Metadata.ScoreA, m.Metadata.ScoreB),
			Win:              m.Metadata.IsWin(),
		}
		kdSum += point.KD
		perfSum += point.PerformanceScore
		summary.Trend = append(summary.Trend, point)
	}

	n := float64(len(matches))
	summary.KDRatio = roundTo(kdSum/n, 2)
	summary.AveragePerformance = roundTo(perfSum/n, 1)
	summary.WinRate = WinRate(matches)
	return summary
}

// RoundAverages groups round-level samples by the round stored in their
// metadata and averages the latency. Samples without a round are skipped.
func RoundAverages(samples []models.TTDSample) []models.RoundAverage {
	type acc struct {
		sum   int
		count int
	}
	byRound := make(map[int]*acc)
	for _, s := range samples {
		if s.Metadata.Round <= 0 {
			continue
		}
		a, ok := byRound[s.Metadata.Round]
		if !ok {
			a = &acc{}
			byRound[s.Metadata.Round] = a
		}
		a.sum += s.TTDMs
		a.count++
	}

	out := make([]models.RoundAverage, 0, len(byRound))
	for round, a := range byRound {
		out = append(out, models.RoundAverage{
			Round:   round,
			AvgMs:   roundTo(float64(a.sum)/float64(a.count), 1),
			Samples: a.count,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Round < out[j].Round })
	return out
}

// CurveShape reports the round with the lowest average and whether the
// averages dip and recover, i.e. both ends sit above the minimum.
func CurveShape(rounds []models.RoundAverage) (minimumRound int, uShaped bool) {
	if len(rounds) == 0 {
		return 0, false
	}
	lowest := 0
	for i := range rounds {
		if rounds[i].AvgMs < rounds[lowest].AvgMs {
			lowest = i
		}
	}
	last := len(rounds) - 1
	uShaped = lowest > 0 && lowest < last &&
		rounds[0].AvgMs > rounds[lowest].AvgMs &&
		rounds[last].AvgMs > rounds[lowest].AvgMs
	return rounds[lowest].Round, uShaped
}

// BuildCurve assembles the per-round curve view for a match.
func BuildCurve(matchID int, samples []models.TTDSample) models.TTDCurve {
	rounds := RoundAverages(samples)
	minimum, uShaped := CurveShape(rounds)
	return models.TTDCurve{
		MatchID:      matchID,
		Rounds:       rounds,
		UShaped:      uShaped,
		MinimumRound: minimum,
	}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
