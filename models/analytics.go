package models

import "time"

// TrendPoint is one match in the analytics window, oldest first.
type TrendPoint struct {
	MatchID          int       `json:"match_id"`
	StartTime        time.Time `json:"start_time"`
	KD               float64   `json:"kd"`
	PerformanceScore float64   `json:"performance_score"`
	Win              bool      `json:"win"`
}

type AnalyticsSummary struct {
	Window             int          `json:"window"`
	MatchesConsidered  int          `json:"matches_considered"`
	KDRatio            float64      `json:"kd_ratio"`
	AveragePerformance float64      `json:"average_performance"`
	WinRate            int          `json:"win_rate"`
	Trend              []TrendPoint `json:"trend"`
}

// RoundAverage is the mean time-to-decision for one round.
type RoundAverage struct {
	Round   int     `json:"round"`
	AvgMs   float64 `json:"avg_ms"`
	Samples int     `json:"samples"`
}

type TTDCurve struct {
	MatchID      int            `json:"match_id"`
	Rounds       []RoundAverage `json:"rounds"`
	UShaped      bool           `json:"u_shaped"`
	MinimumRound int            `json:"minimum_round"`
}
