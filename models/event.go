package models

import (
	"database/sql/driver"
	"time"
)

type ActionCategory string

const (
	ActionKill      ActionCategory = "kill"
	ActionDeath     ActionCategory = "death"
	ActionAssist    ActionCategory = "assist"
	ActionPlant     ActionCategory = "plant"
	ActionDefuse    ActionCategory = "defuse"
	ActionAbility   ActionCategory = "ability"
	ActionObjective ActionCategory = "objective"
)

var ActionCategories = []ActionCategory{
	ActionKill,
	ActionDeath,
	ActionAssist,
	ActionPlant,
	ActionDefuse,
	ActionAbility,
	ActionObjective,
}

// IsCombat reports whether the action carries a target, weapon and outcome.
func (a ActionCategory) IsCombat() bool {
	return a == ActionKill || a == ActionDeath
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Event struct {
	ID              int            `json:"id" db:"id"`
	MatchID         int            `json:"match_id" db:"match_id"`
	PhaseID         *int           `json:"phase_id,omitempty" db:"phase_id"`
	Timestamp       time.Time      `json:"timestamp" db:"ts"`
	Actor           string         `json:"actor" db:"actor"`
	Action          ActionCategory `json:"action" db:"action"`
	Target          *string        `json:"target,omitempty" db:"target"`
	SecondaryAction *string        `json:"secondary_action,omitempty" db:"secondary_action"`
	Position        Position       `json:"position" db:"-"`
	Metadata        EventMetadata  `json:"metadata" db:"metadata"`
}

type EventMetadata struct {
	Success *bool                  `json:"success,omitempty"`
	Extra   map[string]interface{} `json:"extra,omitempty"`
}

func (m EventMetadata) Value() (driver.Value, error) { return jsonValue(m) }

func (m *EventMetadata) Scan(src interface{}) error { return jsonScan(src, m) }
