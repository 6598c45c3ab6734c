package models

import (
	"database/sql/driver"
	"time"
)

// Match is one completed game session. Rows are immutable after creation
// except for metadata backfill.
type Match struct {
	ID        int           `json:"id" db:"id"`
	GameTitle string        `json:"game_title" db:"game_title"`
	MapName   string        `json:"map_name" db:"map_name"`
	TeamA     string        `json:"team_a" db:"team_a"`
	TeamB     string        `json:"team_b" db:"team_b"`
	StartTime time.Time     `json:"start_time" db:"start_time"`
	EndTime   time.Time     `json:"end_time" db:"end_time"`
	OwnerID   int           `json:"owner_id" db:"owner_id"`
	Metadata  MatchMetadata `json:"metadata" db:"metadata"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}

func (m Match) Duration() time.Duration {
	return m.EndTime.Sub(m.StartTime)
}

// MatchMetadata holds scores and the owner's line for the match.
// Score A is always the owner's team.
type MatchMetadata struct {
	ScoreA       int                    `json:"score_a"`
	ScoreB       int                    `json:"score_b"`
	Winner       string                 `json:"winner,omitempty"`
	Kills        int                    `json:"kills"`
	Deaths       int                    `json:"deaths"`
	Assists      int                    `json:"assists"`
	GenerationID string                 `json:"generation_id,omitempty"`
	Extra        map[string]interface{} `json:"extra,omitempty"`
}

func (m MatchMetadata) IsWin() bool {
	return m.ScoreA > m.ScoreB
}

func (m MatchMetadata) Value() (driver.Value, error) { return jsonValue(m) }

func (m *MatchMetadata) Scan(src interface{}) error { return jsonScan(src, m) }

// MatchDetail is a match with every telemetry row attached.
type MatchDetail struct {
	Match      Match       `json:"match"`
	Phases     []Phase     `json:"phases"`
	Events     []Event     `json:"events"`
	TTDSamples []TTDSample `json:"ttd_samples"`
	VoiceTurns []VoiceTurn `json:"voice_turns"`
	Combos     []Combo     `json:"combos"`
}
