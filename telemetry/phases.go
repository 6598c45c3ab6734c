package telemetry

import (
	"errors"
	"time"

	"github.com/ishikisiko/match-telemetry/models"
)

// Bounds on how many phases a match is split into.
const (
	MinPhases = 3
	MaxPhases = 6
)

// ErrInvalidMatchWindow rejects a match whose window has no duration.
var ErrInvalidMatchWindow = errors.New("match end must be after match start")

// SegmentPhases splits [start, end) into MinPhases..MaxPhases equal-length
// contiguous phases. The last phase ends exactly at end so the union covers
// the match with no gaps and no overlap.
func SegmentPhases(rng Rand, matchID int, start, end time.Time) ([]models.Phase, error) {
	duration := end.Sub(start)
	if duration <= 0 {
		return nil, ErrInvalidMatchWindow
	}

	count := randomRange(rng, MinPhases, MaxPhases)
	slice := duration / time.Duration(count)
	if slice <= 0 {
		return nil, ErrInvalidMatchWindow
	}

	phases := make([]models.Phase, 0, count)
	for i := 0; i < count; i++ {
		phaseStart := start.Add(time.Duration(i) * slice)
		phaseEnd := start.Add(time.Duration(i+1) * slice)
		if i == count-1 {
			phaseEnd = end
		}
		phases = append(phases, models.Phase{
			MatchID:          matchID,
			Category:         pick(rng, models.PhaseCategories),
			StartTime:        phaseStart,
			EndTime:          phaseEnd,
			ChangePointScore: round2(uniform(rng, 0, 100)),
			Metadata:         models.PhaseMetadata{Index: i, Total: count},
		})
	}
	return phases, nil
}
