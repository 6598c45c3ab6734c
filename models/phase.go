package models

import (
	"database/sql/driver"
	"time"
)

type PhaseCategory string

const (
	PhaseHotStreak PhaseCategory = "hot_streak"
	PhaseStable    PhaseCategory = "stable"
	PhaseSlump     PhaseCategory = "slump"
	PhaseClutch    PhaseCategory = "clutch"
	PhaseTilt      PhaseCategory = "tilt"
)

var PhaseCategories = []PhaseCategory{
	PhaseHotStreak,
	PhaseStable,
	PhaseSlump,
	PhaseClutch,
	PhaseTilt,
}

// Phase is a contiguous labeled slice of a match timeline, [StartTime, EndTime).
type Phase struct {
	ID               int           `json:"id" db:"id"`
	MatchID          int           `json:"match_id" db:"match_id"`
	Category         PhaseCategory `json:"category" db:"category"`
	StartTime        time.Time     `json:"start_time" db:"start_time"`
	EndTime          time.Time     `json:"end_time" db:"end_time"`
	ChangePointScore float64       `json:"change_point_score" db:"change_point_score"`
	Metadata         PhaseMetadata `json:"metadata" db:"metadata"`
}

func (p Phase) Contains(t time.Time) bool {
	return !t.Before(p.StartTime) && t.Before(p.EndTime)
}

func (p Phase) Duration() time.Duration {
	return p.EndTime.Sub(p.StartTime)
}

type PhaseMetadata struct {
	Index int                    `json:"index"`
	Total int                    `json:"total"`
	Extra map[string]interface{} `json:"extra,omitempty"`
}

func (m PhaseMetadata) Value() (driver.Value, error) { return jsonValue(m) }

func (m *PhaseMetadata) Scan(src interface{}) error { return jsonScan(src, m) }

// PhaseAt returns the phase whose window contains t.
func PhaseAt(phases []Phase, t time.Time) (Phase, bool) {
	for _, p := range phases {
		if p.Contains(t) {
			return p, true
		}
	}
	return Phase{}, false
}
