// internal/models/panel.go
// Panel Coordinator rows, per spec.md §3/§4.4.

package models

import "time"

// Panel is a per-round judging group.
type Panel struct {
	ID           int        `json:"id" db:"id"`
	EventID      int        `json:"event_id" db:"event_id"`
	RoundID      int        `json:"round_id" db:"round_id"`
	PanelNo      int        `json:"panel_no" db:"panel_no"`
	DisplayName  string     `json:"display_name" db:"display_name"`
	MeetingLink  *string    `json:"meeting_link,omitempty" db:"meeting_link"`
	MeetingTime  *time.Time `json:"meeting_time,omitempty" db:"meeting_time"`
	Instructions *string    `json:"instructions,omitempty" db:"instructions"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// PanelMember binds a judge admin user to a panel.
type PanelMember struct {
	ID      int `json:"id" db:"id"`
	PanelID int `json:"panel_id" db:"panel_id"`
	AdminID int `json:"admin_id" db:"admin_id"`
}

// PanelAssignment is the (event, round, panel, entity) unique assignment row.
type PanelAssignment struct {
	ID         int        `json:"id" db:"id"`
	EventID    int        `json:"event_id" db:"event_id"`
	RoundID    int        `json:"round_id" db:"round_id"`
	PanelID    int        `json:"panel_id" db:"panel_id"`
	EntityType EntityType `json:"entity_type" db:"entity_type"`
	EntityID   int        `json:"entity_id" db:"entity_id"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}
