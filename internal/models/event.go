// internal/models/event.go
// Event identity and lifecycle, per spec.md §3.
//
// Grounded on internal/models/tournament.go's struct shape, json/db tag
// convention, and enum-as-string-const pattern.

package models

import (
	"time"

	"eventengine/internal/utils"
)

type EventType string

const (
	EventTypeTechnical EventType = "TECHNICAL"
	EventTypeHackathon EventType = "HACKATHON"
	EventTypeSignature EventType = "SIGNATURE"
	EventTypeSession   EventType = "SESSION"
	EventTypeWorkshop  EventType = "WORKSHOP"
	EventTypeGeneric   EventType = "EVENT"
)

type EventFormat string

const (
	EventFormatOnline  EventFormat = "ONLINE"
	EventFormatOffline EventFormat = "OFFLINE"
	EventFormatHybrid  EventFormat = "HYBRID"
)

type EventTemplate string

const (
	EventTemplateAttendanceOnly    EventTemplate = "ATTENDANCE_ONLY"
	EventTemplateAttendanceScoring EventTemplate = "ATTENDANCE_SCORING"
)

type ParticipantMode string

const (
	ParticipantModeIndividual ParticipantMode = "INDIVIDUAL"
	ParticipantModeTeam       ParticipantMode = "TEAM"
)

type RoundMode string

const (
	RoundModeSingle RoundMode = "SINGLE"
	RoundModeMulti  RoundMode = "MULTI"
)

type OpenStatus string

const (
	EventOpen   OpenStatus = "OPEN"
	EventClosed OpenStatus = "CLOSED"
)

type OpenFor string

const (
	OpenForMIT OpenFor = "MIT"
	OpenForAll OpenFor = "ALL"
)

// EntityType tags which side of the User/Team union a row refers to —
// the "tagged variant" design note of spec.md §9.
type EntityType string

const (
	EntityUser EntityType = "USER"
	EntityTeam EntityType = "TEAM"
)

// Event is the identity of one competition/session.
type Event struct {
	ID                int             `json:"id" db:"id"`
	Slug              string          `json:"slug" db:"slug"`
	EventCode         string          `json:"event_code" db:"event_code"`
	Title             string          `json:"title" db:"title"`
	Description       string          `json:"description" db:"description"`
	CommunityID       int             `json:"community_id" db:"community_id"`
	PosterURL         *string         `json:"poster_url,omitempty" db:"poster_url"`
	WhatsappURL       *string         `json:"whatsapp_url,omitempty" db:"whatsapp_url"`
	EventType         EventType       `json:"event_type" db:"event_type"`
	Format            EventFormat     `json:"format" db:"format"`
	Template          EventTemplate   `json:"template" db:"template"`
	ParticipantMode   ParticipantMode `json:"participant_mode" db:"participant_mode"`
	RoundModeValue    RoundMode       `json:"round_mode" db:"round_mode"`
	RoundCount        int             `json:"round_count" db:"round_count"`
	TeamMinSize       *int            `json:"team_min_size,omitempty" db:"team_min_size"`
	TeamMaxSize       *int            `json:"team_max_size,omitempty" db:"team_max_size"`
	Status            OpenStatus      `json:"status" db:"status"`
	RegistrationOpen  bool            `json:"registration_open" db:"registration_open"`
	Visible           bool            `json:"visible" db:"visible"`
	OpenForAudience   OpenFor         `json:"open_for" db:"open_for"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// Validate enforces the §3 Event invariants that don't need a DB round trip.
func (e *Event) Validate() error {
	if err := utils.ValidateEventTitle(e.Title); err != nil {
		return errInvalid(err.Error())
	}
	if e.ParticipantMode == ParticipantModeTeam {
		if e.TeamMinSize == nil || e.TeamMaxSize == nil {
			return errInvalid("team events require both team size bounds")
		}
		if *e.TeamMinSize > *e.TeamMaxSize {
			return errInvalid("team_min_size must be <= team_max_size")
		}
	}
	if e.RoundModeValue == RoundModeSingle && e.RoundCount != 1 {
		return errInvalid("single-round events must have round_count == 1")
	}
	if e.RoundCount < 1 || e.RoundCount > 20 {
		return errInvalid("round_count must be between 1 and 20")
	}
	return nil
}

type validationError string

func (v validationError) Error() string { return string(v) }

func errInvalid(msg string) error { return validationError(msg) }
