package db

import (
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ishikisiko/match-telemetry/models"
	"github.com/ishikisiko/match-telemetry/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var betweenCheck = regexp.MustCompile(`CHECK \((\w+) BETWEEN (-?[0-9.]+) AND (-?[0-9.]+)\)`)

type bound struct{ lo, hi float64 }

func (b bound) holds(v float64) bool { return v >= b.lo && v <= b.hi }

// rangeChecks maps each column guarded by a BETWEEN check to its bounds.
func rangeChecks(t *testing.T) map[string]bound {
	t.Helper()
	checks := map[string]bound{}
	for _, m := range betweenCheck.FindAllStringSubmatch(Schema(), -1) {
		lo, err := strconv.ParseFloat(m[2], 64)
		require.NoError(t, err)
		hi, err := strconv.ParseFloat(m[3], 64)
		require.NoError(t, err)
		_, dup := checks[m[1]]
		require.False(t, dup, "column %s has two range checks", m[1])
		checks[m[1]] = bound{lo: lo, hi: hi}
	}
	return checks
}

func TestSchemaRangeChecks(t *testing.T) {
	checks := rangeChecks(t)

	tests := []struct {
		column string
		want   bound
	}{
		{"change_point_score", bound{0, 100}},
		{"clarity", bound{0, 1}},
		{"info_density", bound{0, 1}},
		{"sentiment_score", bound{-1, 1}},
		{"win_rate", bound{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			got, ok := checks[tt.column]
			require.True(t, ok, "no range check on %s", tt.column)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSynthesizedRowsSatisfySchema(t *testing.T) {
	checks := rangeChecks(t)
	for _, name := range []string{"ttd_samples_order_chk", "combos_counts_chk", "phases_window_chk", "voice_turns_window_chk", "matches_window_chk"} {
		require.True(t, strings.Contains(Schema(), name), "constraint %s missing", name)
	}

	rng := rand.New(rand.NewSource(42))
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	curve := telemetry.DefaultCurveParams()
	combos := telemetry.DefaultComboParams()
	combos.Mode = telemetry.IntervalWilson

	inRange := func(column string, v float64, row string) {
		b, ok := checks[column]
		require.True(t, ok, "no range check on %s", column)
		assert.True(t, b.holds(v), "%s %s=%v outside [%v, %v]", row, column, v, b.lo, b.hi)
	}

	for i := 0; i < 100; i++ {
		match := telemetry.SynthesizeMatch(rng, 1, now)
		match.ID = i + 1
		require.True(t, match.EndTime.After(match.StartTime))

		phases, err := telemetry.SegmentPhases(rng, match.ID, match.StartTime, match.EndTime)
		require.NoError(t, err)
		for j := range phases {
			phases[j].ID = match.ID*10 + j
			assert.True(t, phases[j].EndTime.After(phases[j].StartTime))
			inRange("change_point_score", phases[j].ChangePointScore, "phase")
		}

		ttd, err := telemetry.SynthesizeTTD(rng, match, phases, curve)
		require.NoError(t, err)
		for _, s := range ttd.Samples {
			assert.False(t, s.DecisionTS.Before(s.EventSourceTS), "decision before event source")
			assert.False(t, s.ActionTS.Before(s.DecisionTS), "action before decision")
			assert.GreaterOrEqual(t, s.TTDMs, 0)
		}

		for _, turn := range telemetry.SynthesizeVoiceTurns(rng, match.ID, phases) {
			assert.True(t, turn.EndTime.After(turn.StartTime))
			inRange("clarity", turn.Clarity, "voice turn")
			inRange("info_density", turn.InfoDensity, "voice turn")
			inRange("sentiment_score", turn.SentimentScore, "voice turn")
		}

		for _, c := range telemetry.SynthesizeCombos(rng, match.ID, combos) {
			assert.GreaterOrEqual(t, c.Attempts, 0)
			assert.GreaterOrEqual(t, c.Successes, 0)
			assert.LessOrEqual(t, c.Successes, c.Attempts)
			inRange("win_rate", c.WinRate, "combo")
		}
	}
}

func TestRoleCheckMatchesModels(t *testing.T) {
	for _, role := range []models.UserRole{models.RoleAdmin, models.RolePlayer} {
		assert.Contains(t, Schema(), "'"+string(role)+"'")
	}
}
