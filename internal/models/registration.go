// internal/models/registration.go
// Registration Ledger and Team Graph rows, per spec.md §3.

package models

import "time"

type RegistrationStatus string

const (
	RegistrationActive     RegistrationStatus = "ACTIVE"
	RegistrationEliminated RegistrationStatus = "ELIMINATED"
)

// Registration is a per-event participation row. Exactly one of UserID /
// TeamID is set, matching EntityType — the tagged-variant design note of
// spec.md §9 implemented with nullable FKs, same pattern as the teacher's
// Participant.ParticipantType / individual-or-team split.
type Registration struct {
	ID             int                `json:"id" db:"id"`
	EventID        int                `json:"event_id" db:"event_id"`
	EntityType     EntityType         `json:"entity_type" db:"entity_type"`
	UserID         *int               `json:"user_id,omitempty" db:"user_id"`
	TeamID         *int               `json:"team_id,omitempty" db:"team_id"`
	Status         RegistrationStatus `json:"status" db:"status"`
	ReferralCode   *string            `json:"referral_code,omitempty" db:"referral_code"`
	ReferredBy     *string            `json:"referred_by,omitempty" db:"referred_by"`
	ReferralCount  int                `json:"referral_count" db:"referral_count"`
	CreatedAt      time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" db:"updated_at"`
}

// EntityID returns whichever of UserID/TeamID is populated.
func (r *Registration) EntityID() int {
	if r.EntityType == EntityUser && r.UserID != nil {
		return *r.UserID
	}
	if r.EntityType == EntityTeam && r.TeamID != nil {
		return *r.TeamID
	}
	return 0
}

type TeamMemberRole string

const (
	TeamRoleLeader TeamMemberRole = "leader"
	TeamRoleMember TeamMemberRole = "member"
)

// Team is a per-event grouping, per spec.md §3.
type Team struct {
	ID             int       `json:"id" db:"id"`
	EventID        int       `json:"event_id" db:"event_id"`
	TeamCode       string    `json:"team_code" db:"team_code"`
	TeamName       string    `json:"team_name" db:"team_name"`
	TeamLeadUserID int       `json:"team_lead_user_id" db:"team_lead_user_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// TeamMember is a (team, user, role) row.
type TeamMember struct {
	ID       int            `json:"id" db:"id"`
	TeamID   int            `json:"team_id" db:"team_id"`
	UserID   int            `json:"user_id" db:"user_id"`
	Role     TeamMemberRole `json:"role" db:"role"`
	JoinedAt time.Time      `json:"joined_at" db:"joined_at"`
}

type InviteStatus string

const (
	InvitePending  InviteStatus = "PENDING"
	InviteAccepted InviteStatus = "ACCEPTED"
)

// TeamInvite records an invite from a team leader to a prospective member.
type TeamInvite struct {
	ID              int          `json:"id" db:"id"`
	EventID         int          `json:"event_id" db:"event_id"`
	TeamID          int          `json:"team_id" db:"team_id"`
	InvitedUserID   int          `json:"invited_user_id" db:"invited_user_id"`
	InvitedByUserID int          `json:"invited_by_user_id" db:"invited_by_user_id"`
	Status          InviteStatus `json:"status" db:"status"`
	CreatedAt       time.Time    `json:"created_at" db:"created_at"`
}
