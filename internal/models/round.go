// internal/models/round.go
// Round Registry rows, per spec.md §3/§4.3.
//
// Criteria and AllowedMimeTypes are JSON-valued columns implementing
// sql.Scanner/driver.Valuer, the same pattern internal/models/tournament.go
// uses for FormatConfig/OperationalHours/CustomField.

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type RoundState string

const (
	RoundDraft     RoundState = "DRAFT"
	RoundPublished RoundState = "PUBLISHED"
	RoundActive    RoundState = "ACTIVE"
	RoundCompleted RoundState = "COMPLETED"
	RoundReveal    RoundState = "REVEAL"
)

type SubmissionMode string

const (
	SubmissionModeFile       SubmissionMode = "file"
	SubmissionModeLink       SubmissionMode = "link"
	SubmissionModeFileOrLink SubmissionMode = "file_or_link"
)

type PanelDistributionMode string

const (
	PanelDistTeamCount           PanelDistributionMode = "team_count"
	PanelDistMemberCountWeighted PanelDistributionMode = "member_count_weighted"
)

type EliminationType string

const (
	EliminationTopK     EliminationType = "top_k"
	EliminationMinScore EliminationType = "min_score"
)

// Criterion is one (name, max_marks) scoring dimension.
type Criterion struct {
	Name     string  `json:"name"`
	MaxMarks float64 `json:"max_marks"`
}

// Criteria is the JSON-column list of scoring criteria for a round.
type Criteria []Criterion

func (c *Criteria) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into Criteria", value)
	}
	return json.Unmarshal(bytes, c)
}

func (c Criteria) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// MaxTotal sums max_marks across all criteria.
func (c Criteria) MaxTotal() float64 {
	var total float64
	for _, crit := range c {
		total += crit.MaxMarks
	}
	return total
}

// DefaultCriteria is the spec.md §4.3 default: [("Score", 100)].
func DefaultCriteria() Criteria {
	return Criteria{{Name: "Score", MaxMarks: 100}}
}

// MimeList is a JSON-column list of allowed MIME types.
type MimeList []string

func (m *MimeList) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into MimeList", value)
	}
	return json.Unmarshal(bytes, m)
}

func (m MimeList) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m MimeList) Contains(mime string) bool {
	for _, v := range m {
		if v == mime {
			return true
		}
	}
	return false
}

// DefaultAllowedMimeTypes is the fixed list from spec.md §4.3.
func DefaultAllowedMimeTypes() MimeList {
	return MimeList{
		"application/pdf",
		"application/vnd.ms-powerpoint",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"image/png",
		"image/jpeg",
		"image/webp",
		"video/mp4",
		"video/quicktime",
		"application/zip",
	}
}

const DefaultMaxFileSizeMB = 25

// Round is one ordered phase of an event.
type Round struct {
	ID                     int                    `json:"id" db:"id"`
	EventID                int                    `json:"event_id" db:"event_id"`
	RoundNo                int                    `json:"round_no" db:"round_no"`
	Name                   string                 `json:"name" db:"name"`
	Description            string                 `json:"description" db:"description"`
	ScheduledAt            *time.Time             `json:"scheduled_at,omitempty" db:"scheduled_at"`
	Mode                   RoundMode              `json:"mode" db:"mode"`
	State                  RoundState             `json:"state" db:"state"`
	Criteria               Criteria               `json:"criteria" db:"criteria"`
	EliminationType        *EliminationType       `json:"elimination_type,omitempty" db:"elimination_type"`
	EliminationValue       *float64               `json:"elimination_value,omitempty" db:"elimination_value"`
	IsFrozen               bool                   `json:"is_frozen" db:"is_frozen"`
	RequiresSubmission     bool                   `json:"requires_submission" db:"requires_submission"`
	SubmissionModeValue    SubmissionMode         `json:"submission_mode" db:"submission_mode"`
	SubmissionDeadline     *time.Time             `json:"submission_deadline,omitempty" db:"submission_deadline"`
	AllowedMimeTypes       MimeList               `json:"allowed_mime_types" db:"allowed_mime_types"`
	MaxFileSizeMB          int                    `json:"max_file_size_mb" db:"max_file_size_mb"`
	PanelModeEnabled       bool                   `json:"panel_mode_enabled" db:"panel_mode_enabled"`
	PanelDistribution      PanelDistributionMode  `json:"panel_distribution_mode" db:"panel_distribution_mode"`
	PanelStructureLocked   bool                   `json:"panel_structure_locked" db:"panel_structure_locked"`
	CreatedAt              time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time              `json:"updated_at" db:"updated_at"`
}

// MaxFileSizeBytes converts the MB limit to bytes (2^20 per MB, spec.md §4.6).
func (r *Round) MaxFileSizeBytes() int64 {
	return int64(r.MaxFileSizeMB) * 1 << 20
}
