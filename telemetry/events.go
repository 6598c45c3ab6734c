package telemetry

import (
	"github.com/ishikisiko/match-telemetry/models"
)

const (
	MinEventsPerPhase = 4
	MaxEventsPerPhase = 12
)

// SynthesizeEvents populates each phase with discrete events anchored inside
// the phase window. Kill and death events also get a target, a weapon tag
// and a success flag. The target is drawn independently and may equal the
// actor.
func SynthesizeEvents(rng Rand, matchID int, phases []models.Phase) []models.Event {
	events := make([]models.Event, 0, len(phases)*MaxEventsPerPhase)
	for i := range phases {
		phase := phases[i]
		count := randomRange(rng, MinEventsPerPhase, MaxEventsPerPhase)
		for j := 0; j < count; j++ {
			events = append(events, synthesizeEvent(rng, matchID, phase))
		}
	}
	return events
}

func synthesizeEvent(rng Rand, matchID int, phase models.Phase) models.Event {
	ev := models.Event{
		MatchID:   matchID,
		PhaseID:   phaseRef(phase),
		Timestamp: phase.StartTime.Add(offsetIn(rng, phase.Duration())),
		Actor:     pick(rng, PlayerPool),
		Action:    pick(rng, models.ActionCategories),
		Position: models.Position{
			X: round2(uniform(rng, -150, 150)),
			Y: round2(uniform(rng, -150, 150)),
			Z: round2(uniform(rng, 0, 20)),
		},
	}
	if ev.Action.IsCombat() {
		target := pick(rng, PlayerPool)
		weapon := pick(rng, weaponPool)
		success := rng.Float64() < 0.5
		ev.Target = &target
		ev.SecondaryAction = &weapon
		ev.Metadata.Success = &success
	}
	return ev
}

// phaseRef returns a pointer to the phase id, or nil for unsaved phases.
func phaseRef(p models.Phase) *int {
	if p.ID == 0 {
		return nil
	}
	id := p.ID
	return &id
}
