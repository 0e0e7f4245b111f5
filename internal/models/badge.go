// internal/models/badge.go
// Badge rows, per spec.md §3.

package models

import "time"

type BadgePlace string

const (
	BadgeWinner         BadgePlace = "WINNER"
	BadgeRunner         BadgePlace = "RUNNER"
	BadgeSpecialMention BadgePlace = "SPECIAL_MENTION"
)

// Badge is an (event, title, entity) award row.
type Badge struct {
	ID        int        `json:"id" db:"id"`
	EventID   int        `json:"event_id" db:"event_id"`
	Title     string     `json:"title" db:"title"`
	EntityType EntityType `json:"entity_type" db:"entity_type"`
	UserID    *int       `json:"user_id,omitempty" db:"user_id"`
	TeamID    *int       `json:"team_id,omitempty" db:"team_id"`
	Place     BadgePlace `json:"place" db:"place"`
	Score     *float64   `json:"score,omitempty" db:"score"`
	ImageURL  *string    `json:"image_url,omitempty" db:"image_url"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
