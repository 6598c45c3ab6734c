package models

import (
	"database/sql/driver"
	"time"
)

// TTDLevelRound marks samples produced by the per-round reaction curve.
const TTDLevelRound = "round"

type PressureLevel string

const (
	PressureLow      PressureLevel = "low"
	PressureMedium   PressureLevel = "medium"
	PressureHigh     PressureLevel = "high"
	PressureCritical PressureLevel = "critical"
)

var PressureLevels = []PressureLevel{
	PressureLow,
	PressureMedium,
	PressureHigh,
	PressureCritical,
}

// TTDSample is one time-to-decision observation.
// EventSourceTS <= DecisionTS <= ActionTS and TTDMs == ActionTS - EventSourceTS.
type TTDSample struct {
	ID            int         `json:"id" db:"id"`
	MatchID       int         `json:"match_id" db:"match_id"`
	PhaseID       *int        `json:"phase_id,omitempty" db:"phase_id"`
	EventSourceTS time.Time   `json:"event_src_ts" db:"event_src_ts"`
	DecisionTS    time.Time   `json:"decision_ts" db:"decision_ts"`
	ActionTS      time.Time   `json:"action_ts" db:"action_ts"`
	TTDMs         int         `json:"ttd_ms" db:"ttd_ms"`
	ContextHash   string      `json:"context_hash" db:"context_hash"`
	Metadata      TTDMetadata `json:"metadata" db:"metadata"`
}

type TTDMetadata struct {
	Level       string                 `json:"level,omitempty"`
	Round       int                    `json:"round,omitempty"`
	TotalRounds int                    `json:"total_rounds,omitempty"`
	Pressure    PressureLevel          `json:"pressure,omitempty"`
	Situation   string                 `json:"situation,omitempty"`
	Extra       map[string]interface{} `json:"extra,omitempty"`
}

func (m TTDMetadata) Value() (driver.Value, error) { return jsonValue(m) }

func (m *TTDMetadata) Scan(src interface{}) error { return jsonScan(src, m) }
