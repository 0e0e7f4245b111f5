// internal/models/score.go
// Score Store rows, per spec.md §3/§4.5. CriteriaScores is a JSON-valued
// column implementing sql.Scanner/driver.Valuer, following the same pattern
// as internal/models/match.go's ScoreDetails.

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// CriteriaScores maps criterion name -> awarded marks.
type CriteriaScores map[string]float64

func (c *CriteriaScores) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into CriteriaScores", value)
	}
	return json.Unmarshal(bytes, c)
}

func (c CriteriaScores) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Sum totals the raw criteria marks.
func (c CriteriaScores) Sum() float64 {
	var total float64
	for _, v := range c {
		total += v
	}
	return total
}

// Score is the (event, round, entity) unique scoring row.
type Score struct {
	ID              int            `json:"id" db:"id"`
	EventID         int            `json:"event_id" db:"event_id"`
	RoundID         int            `json:"round_id" db:"round_id"`
	EntityType      EntityType     `json:"entity_type" db:"entity_type"`
	EntityID        int            `json:"entity_id" db:"entity_id"`
	CriteriaScores  CriteriaScores `json:"criteria_scores" db:"criteria_scores"`
	TotalScore      float64        `json:"total_score" db:"total_score"`
	NormalizedScore float64        `json:"normalized_score" db:"normalized_score"`
	IsPresent       bool           `json:"is_present" db:"is_present"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
}

// NormalizedScore applies the law of spec.md §4.5/§8: percentage of
// possible marks, clamped to [0, 100], zero when absent.
func NormalizedScore(totalScore, maxTotal float64, isPresent bool) float64 {
	if !isPresent {
		return 0
	}
	if maxTotal <= 0 {
		return 0
	}
	normalized := (totalScore / maxTotal) * 100
	if normalized < 0 {
		return 0
	}
	if normalized > 100 {
		return 100
	}
	return normalized
}

// Attendance is the (event, round, entity) unique presence row.
type Attendance struct {
	ID           int        `json:"id" db:"id"`
	EventID      int        `json:"event_id" db:"event_id"`
	RoundID      int        `json:"round_id" db:"round_id"`
	EntityType   EntityType `json:"entity_type" db:"entity_type"`
	EntityID     int        `json:"entity_id" db:"entity_id"`
	IsPresent    bool       `json:"is_present" db:"is_present"`
	MarkedByID   *int       `json:"marked_by_user_id,omitempty" db:"marked_by_user_id"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}
