// internal/services/registration_service.go
// Registration Ledger, per spec.md §4.2.
//
// Grounded on the original's register_individual_event: idempotent on
// re-registration, mints a per-registration referral code, and chains
// referral_count on the referrer's row when referred_by resolves to an
// existing registration in the same event.

package services

import (
	"context"
	"database/sql"
	"fmt"

	"eventengine/internal/apierr"
	"eventengine/internal/identifiers"
	"eventengine/internal/models"
	"eventengine/internal/repositories"
	"eventengine/internal/tasks"
)

type RegistrationService struct {
	repos *repositories.Container
	db    *sql.DB
	mail  EmailSender
	tasks *tasks.Pool
}

func NewRegistrationService(repos *repositories.Container, db *sql.DB, mail EmailSender, pool *tasks.Pool) *RegistrationService {
	return &RegistrationService{repos: repos, db: db, mail: mail, tasks: pool}
}

func (s *RegistrationService) checkEventOpenForRegistration(event *models.Event) error {
	if event.ParticipantMode != models.ParticipantModeIndividual {
		return apierr.New(apierr.WrongMode, "this event does not accept individual registration")
	}
	if !event.Visible {
		return apierr.New(apierr.NotFound, "event not found")
	}
	if !event.RegistrationOpen {
		return apierr.New(apierr.RegClosed, "registration is closed for this event")
	}
	return nil
}

// checkEligible enforces spec.md §4.2's open_for gate: an event with
// open_for=MIT refuses registration to anyone whose bearer token does not
// carry an MIT college claim. open_for=ALL admits everyone.
func checkEligible(event *models.Event, userCollege string) error {
	if event.OpenForAudience == models.OpenForAll {
		return nil
	}
	if !IsMITCollege(userCollege) {
		return apierr.New(apierr.NotEligible, "this event is open only for MIT users")
	}
	return nil
}

// RegisterIndividual registers userID for an individual-mode event,
// idempotently, with optional referral chaining.
func (s *RegistrationService) RegisterIndividual(ctx context.Context, event *models.Event, userID int, userEmail, userCollege, referredByCode string) (*models.Registration, error) {
	if err := s.checkEventOpenForRegistration(event); err != nil {
		return nil, err
	}
	if err := checkEligible(event, userCollege); err != nil {
		return nil, err
	}

	if existing, err := s.repos.Registrations.GetByUser(ctx, event.ID, userID); err == nil {
		return existing, nil
	} else if err != repositories.ErrNotFound {
		return nil, fmt.Errorf("check existing registration: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	code, err := identifiers.UniqueCode(func(candidate string) (bool, error) {
		_, err := s.repos.Registrations.GetByReferralCode(ctx, event.ID, candidate)
		if err == repositories.ErrNotFound {
			return false, nil
		}
		return err == nil, err
	})
	if err != nil {
		return nil, fmt.Errorf("mint referral code: %w", err)
	}

	reg := &models.Registration{
		EventID:      event.ID,
		EntityType:   models.EntityUser,
		UserID:       &userID,
		Status:       models.RegistrationActive,
		ReferralCode: &code,
	}
	if referredByCode != "" {
		reg.ReferredBy = &referredByCode
	}

	if err := s.repos.Registrations.CreateWithTx(ctx, tx, reg); err != nil {
		return nil, fmt.Errorf("create registration: %w", err)
	}

	if referredByCode != "" {
		if referrer, err := s.repos.Registrations.GetByReferralCode(ctx, event.ID, referredByCode); err == nil && referrer.EntityType == models.EntityUser {
			if err := s.repos.Registrations.IncrementReferralCountWithTx(ctx, tx, referrer.ID); err != nil {
				return nil, fmt.Errorf("increment referral count: %w", err)
			}
		} else if err != nil && err != repositories.ErrNotFound {
			return nil, fmt.Errorf("resolve referrer: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit registration: %w", err)
	}

	if s.tasks != nil && s.mail != nil {
		subject, body := RegistrationConfirmationEmail(event.Title)
		s.tasks.Submit(func(ctx context.Context) {
			_ = s.mail.Send(ctx, userEmail, subject, body)
		})
	}

	return reg, nil
}

func (s *RegistrationService) ListByEvent(ctx context.Context, eventID int) ([]*models.Registration, error) {
	return s.repos.Registrations.ListByEvent(ctx, eventID)
}

func (s *RegistrationService) GetByUser(ctx context.Context, eventID, userID int) (*models.Registration, error) {
	reg, err := s.repos.Registrations.GetByUser(ctx, eventID, userID)
	if err == repositories.ErrNotFound {
		return nil, apierr.New(apierr.NotFound, "not registered for this event")
	}
	return reg, err
}

func (s *RegistrationService) GetByTeam(ctx context.Context, eventID, teamID int) (*models.Registration, error) {
	reg, err := s.repos.Registrations.GetByTeam(ctx, eventID, teamID)
	if err == repositories.ErrNotFound {
		return nil, apierr.New(apierr.NotFound, "team not registered for this event")
	}
	return reg, err
}

// EliminateWithTx marks a set of registrations ELIMINATED, used by the Lifecycle
// Controller's shortlist step.
func (s *RegistrationService) EliminateWithTx(ctx context.Context, tx *sql.Tx, ids []int) error {
	return s.repos.Registrations.SetStatusBatchWithTx(ctx, tx, ids, models.RegistrationEliminated)
}
