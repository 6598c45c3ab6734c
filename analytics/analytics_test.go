package analytics

import (
	"testing"
	"time"

	"github.com/ishikisiko/match-telemetry/models"
	"github.com/ishikisiko/match-telemetry/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func match(id, scoreA, scoreB, kills, deaths int) models.Match {
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Hour)
	return models.Match{
		ID:        id,
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Metadata: models.MatchMetadata{
			ScoreA: scoreA,
			ScoreB: scoreB,
			Kills:  kills,
			Deaths: deaths,
		},
	}
}

func TestKDPoint(t *testing.T) {
	tests := []struct {
		kills, deaths int
		want          float64
	}{
		{10, 5, 2.0},
		{0, 0, 0.0},
		{7, 0, 7.0},
		{10, 3, 3.33},
		{2, 3, 0.67},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KDPoint(tt.kills, tt.deaths), "%d/%d", tt.kills, tt.deaths)
	}
}

func TestPerformanceScore(t *testing.T) {
	tests := []struct {
		name           string
		scoreA, scoreB int
		want           float64
	}{
		{"win", 10, 5, 83.3},
		{"loss", 5, 10, 16.7},
		{"no information", 0, 0, 50.0},
		{"shutout win", 13, 0, 100.0},
		{"shutout loss", 0, 13, 0.0},
		{"draw counts as loss", 6, 6, 25.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PerformanceScore(tt.scoreA, tt.scoreB))
		})
	}
}

func TestWinRate(t *testing.T) {
	matches := []models.Match{
		match(1, 13, 4, 0, 0),
		match(2, 13, 11, 0, 0),
		match(3, 2, 13, 0, 0),
		match(4, 13, 7, 0, 0),
	}
	assert.Equal(t, 75, WinRate(matches))
	assert.Equal(t, 0, WinRate(nil))
}

func TestSummarizeTrendOldestFirst(t *testing.T) {
	// newest first, as the store returns them
	matches := []models.Match{
		match(2, 0, 0, 0, 0),
		match(1, 10, 5, 10, 5),
	}

	summary := Summarize(matches, DefaultWindow)
	require.Len(t, summary.Trend, 2)
	assert.Equal(t, 1, summary.Trend[0].MatchID)
	assert.Equal(t, 2.0, summary.Trend[0].KD)
	assert.Equal(t, 0.0, summary.Trend[1].KD)
	assert.Equal(t, 83.3, summary.Trend[0].PerformanceScore)
	assert.Equal(t, 50.0, summary.Trend[1].PerformanceScore)

	assert.Equal(t, 1.0, summary.KDRatio)
	assert.InDelta(t, 66.7, summary.AveragePerformance, 0.051)
	assert.Equal(t, 50, summary.WinRate)
	assert.Equal(t, 2, summary.MatchesConsidered)
}

func TestSummarizeBoundsWindow(t *testing.T) {
	var matches []models.Match
	for id := 12; id >= 1; id-- {
		matches = append(matches, match(id, 13, 1, 3, 1))
	}
	summary := Summarize(matches, 10)

	assert.Equal(t, 10, summary.MatchesConsidered)
	require.Len(t, summary.Trend, 10)
	assert.Equal(t, 3, summary.Trend[0].MatchID)
	assert.Equal(t, 12, summary.Trend[9].MatchID)
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil, 0)

	assert.Equal(t, DefaultWindow, summary.Window)
	assert.Equal(t, 0, summary.MatchesConsidered)
	assert.Equal(t, 0.0, summary.KDRatio)
	assert.Equal(t, 50.0, summary.AveragePerformance)
	assert.Equal(t, 0, summary.WinRate)
	assert.NotNil(t, summary.Trend)
	assert.Empty(t, summary.Trend)
}

func TestRoundAverages(t *testing.T) {
	samples := []models.TTDSample{
		{TTDMs: 300, Metadata: models.TTDMetadata{Round: 2}},
		{TTDMs: 400, Metadata: models.TTDMetadata{Round: 1}},
		{TTDMs: 200, Metadata: models.TTDMetadata{Round: 2}},
		{TTDMs: 500, Metadata: models.TTDMetadata{Round: 3}},
		{TTDMs: 999},
	}

	got := RoundAverages(samples)
	require.Len(t, got, 3)
	assert.Equal(t, models.RoundAverage{Round: 1, AvgMs: 400, Samples: 1}, got[0])
	assert.Equal(t, models.RoundAverage{Round: 2, AvgMs: 250, Samples: 2}, got[1])
	assert.Equal(t, models.RoundAverage{Round: 3, AvgMs: 500, Samples: 1}, got[2])

	minimum, uShaped := CurveShape(got)
	assert.Equal(t, 2, minimum)
	assert.True(t, uShaped)
}

func TestCurveShapeMonotonic(t *testing.T) {
	rounds := []models.RoundAverage{{Round: 1, AvgMs: 300}, {Round: 2, AvgMs: 310}, {Round: 3, AvgMs: 320}}
	minimum, uShaped := CurveShape(rounds)
	assert.Equal(t, 1, minimum)
	assert.False(t, uShaped)

	_, uShaped = CurveShape(nil)
	assert.False(t, uShaped)
}

func TestBuildCurveFromNoiselessCurve(t *testing.T) {
	p := telemetry.DefaultCurveParams()
	var samples []models.TTDSample
	for r, v := range telemetry.Curve(20, p) {
		samples = append(samples, models.TTDSample{
			TTDMs:    int(v),
			Metadata: models.TTDMetadata{Round: r + 1, Level: models.TTDLevelRound},
		})
	}

	curve := BuildCurve(5, samples)
	assert.Equal(t, 5, curve.MatchID)
	assert.Len(t, curve.Rounds, 20)
	assert.True(t, curve.UShaped)
	assert.Contains(t, []int{8, 9}, curve.MinimumRound)
}
