// internal/models/submission.go
// Submission Vault rows, per spec.md §3/§4.6.

package models

import "time"

type SubmissionType string

const (
	SubmissionTypeFile SubmissionType = "file"
	SubmissionTypeLink SubmissionType = "link"
)

// Submission is the (event, round, entity) unique submission row.
type Submission struct {
	ID          int            `json:"id" db:"id"`
	EventID     int            `json:"event_id" db:"event_id"`
	RoundID     int            `json:"round_id" db:"round_id"`
	EntityType  EntityType     `json:"entity_type" db:"entity_type"`
	EntityID    int            `json:"entity_id" db:"entity_id"`
	Type        SubmissionType `json:"type" db:"type"`
	FileURL     *string        `json:"file_url,omitempty" db:"file_url"`
	LinkURL     *string        `json:"link_url,omitempty" db:"link_url"`
	FileName    *string        `json:"file_name,omitempty" db:"file_name"`
	SizeBytes   *int64         `json:"size_bytes,omitempty" db:"size_bytes"`
	MimeType    *string        `json:"mime_type,omitempty" db:"mime_type"`
	Notes       *string        `json:"notes,omitempty" db:"notes"`
	Version     int            `json:"version" db:"version"`
	Locked      bool           `json:"locked" db:"locked"`
	SubmittedAt *time.Time     `json:"submitted_at,omitempty" db:"submitted_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
	UpdatedBy   *int           `json:"updated_by,omitempty" db:"updated_by"`
}
