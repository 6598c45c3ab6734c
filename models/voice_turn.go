package models

import (
	"database/sql/driver"
	"time"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

var Sentiments = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}

// VoiceTurn is a single speaker's utterance. Clarity and InfoDensity are in
// [0,1], SentimentScore in [-1,1].
type VoiceTurn struct {
	ID             int           `json:"id" db:"id"`
	MatchID        int           `json:"match_id" db:"match_id"`
	PhaseID        *int          `json:"phase_id,omitempty" db:"phase_id"`
	Speaker        string        `json:"speaker" db:"speaker"`
	StartTime      time.Time     `json:"start_time" db:"start_time"`
	EndTime        time.Time     `json:"end_time" db:"end_time"`
	Transcript     string        `json:"transcript" db:"transcript"`
	Clarity        float64       `json:"clarity" db:"clarity"`
	InfoDensity    float64       `json:"info_density" db:"info_density"`
	Interruption   bool          `json:"interruption" db:"interruption"`
	Sentiment      Sentiment     `json:"sentiment" db:"sentiment"`
	SentimentScore float64       `json:"sentiment_score" db:"sentiment_score"`
	Metadata       VoiceMetadata `json:"metadata" db:"metadata"`
}

type VoiceMetadata struct {
	DurationMs int                    `json:"duration_ms"`
	Extra      map[string]interface{} `json:"extra,omitempty"`
}

func (m VoiceMetadata) Value() (driver.Value, error) { return jsonValue(m) }

func (m *VoiceMetadata) Scan(src interface{}) error { return jsonScan(src, m) }
