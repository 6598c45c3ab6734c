package models

import "database/sql/driver"

type ComboContext string

const (
	ComboOffense ComboContext = "offense"
	ComboDefense ComboContext = "defense"
)

var ComboContexts = []ComboContext{ComboOffense, ComboDefense}

// Combo tracks a 2-3 player group as a unit.
// 0 <= Successes <= Attempts and CILow <= WinRate <= CIHigh.
type Combo struct {
	ID        int           `json:"id" db:"id"`
	MatchID   int           `json:"match_id" db:"match_id"`
	Members   []string      `json:"members" db:"members"`
	Context   ComboContext  `json:"context" db:"context"`
	Attempts  int           `json:"attempts" db:"attempts"`
	Successes int           `json:"successes" db:"successes"`
	WinRate   float64       `json:"win_rate" db:"win_rate"`
	CILow     float64       `json:"ci_low" db:"ci_low"`
	CIHigh    float64       `json:"ci_high" db:"ci_high"`
	Metadata  ComboMetadata `json:"metadata" db:"metadata"`
}

type ComboMetadata struct {
	IntervalMode string                 `json:"interval_mode,omitempty"`
	Extra        map[string]interface{} `json:"extra,omitempty"`
}

func (m ComboMetadata) Value() (driver.Value, error) { return jsonValue(m) }

func (m *ComboMetadata) Scan(src interface{}) error { return jsonScan(src, m) }
