// internal/services/identity_service.go
// IdentityDirectory is an external-collaborator contract (spec.md §1): user
// profile data (register number, name, college, department, gender, batch)
// is owned by the identity system that issues bearer tokens, not by this
// module. LoggingIdentityDirectory is a stand-in good enough to exercise
// every call site end to end without a live directory configured.
//
// Grounded on the EmailSender/ObjectStore external-collaborator pattern
// (internal/services/email_service.go, internal/services/object_store_
// service.go) and the original's User model (original_source/backend/
// models/user.py), which carries exactly these fields.

package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// IdentityProfile is the subset of an external user's profile this module
// needs: canonical-name resolution for import_scores, eligibility/filter
// attributes for the leaderboard, and regno/name for audit labeling.
type IdentityProfile struct {
	UserID     int
	Regno      string
	Name       string
	College    string
	Department string
	Gender     string
	Batch      string
}

// IdentityDirectory resolves external user profiles by the identifiers this
// module encounters: a register number from an XLSX import, or a user id
// already on file in a Registration row.
type IdentityDirectory interface {
	LookupByRegno(ctx context.Context, regno string) (*IdentityProfile, error)
	LookupByUserID(ctx context.Context, userID int) (*IdentityProfile, error)
}

// ErrIdentityNotFound is returned when a directory lookup finds no profile.
var ErrIdentityNotFound = fmt.Errorf("identity not found")

// LoggingIdentityDirectory logs lookups and reports every identifier as
// unresolvable, standing in for the real directory in every environment
// this repo runs without one configured. import_scores and the leaderboard
// degrade to "unidentified"/unfiltered behavior rather than failing.
type LoggingIdentityDirectory struct {
	logger zerolog.Logger
}

func NewLoggingIdentityDirectory(logger zerolog.Logger) *LoggingIdentityDirectory {
	return &LoggingIdentityDirectory{logger: logger}
}

func (d *LoggingIdentityDirectory) LookupByRegno(ctx context.Context, regno string) (*IdentityProfile, error) {
	d.logger.Info().Str("regno", regno).Msg("identity directory lookup by regno (stand-in: not found)")
	return nil, ErrIdentityNotFound
}

func (d *LoggingIdentityDirectory) LookupByUserID(ctx context.Context, userID int) (*IdentityProfile, error) {
	d.logger.Info().Int("user_id", userID).Msg("identity directory lookup by user id (stand-in: not found)")
	return nil, ErrIdentityNotFound
}
