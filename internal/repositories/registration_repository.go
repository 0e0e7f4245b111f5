// internal/repositories/registration_repository.go
// Registration Ledger data access, per spec.md §4.2.

package repositories

import (
	"context"
	"database/sql"
	"errors"

	"eventengine/internal/models"
)

type RegistrationRepository struct {
	db *sql.DB
}

func NewRegistrationRepository(db *sql.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

const registrationColumns = `
	id, event_id, entity_type, user_id, team_id, status,
	referral_code, referred_by, referral_count, created_at, updated_at
`

func scanRegistration(row interface{ Scan(...interface{}) error }) (*models.Registration, error) {
	var r models.Registration
	err := row.Scan(
		&r.ID, &r.EventID, &r.EntityType, &r.UserID, &r.TeamID, &r.Status,
		&r.ReferralCode, &r.ReferredBy, &r.ReferralCount, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *RegistrationRepository) CreateWithTx(ctx context.Context, tx *sql.Tx, reg *models.Registration) error {
	query := `
		INSERT INTO registrations (
			event_id, entity_type, user_id, team_id, status,
			referral_code, referred_by, referral_count, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
	`
	res, err := tx.ExecContext(ctx, query,
		reg.EventID, reg.EntityType, reg.UserID, reg.TeamID, reg.Status,
		reg.ReferralCode, reg.ReferredBy, reg.ReferralCount,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	reg.ID = int(id)
	return nil
}

func (r *RegistrationRepository) GetByUser(ctx context.Context, eventID, userID int) (*models.Registration, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+registrationColumns+" FROM registrations WHERE event_id = ? AND entity_type = 'USER' AND user_id = ?",
		eventID, userID)
	reg, err := scanRegistration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return reg, err
}

func (r *RegistrationRepository) GetByTeam(ctx context.Context, eventID, teamID int) (*models.Registration, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+registrationColumns+" FROM registrations WHERE event_id = ? AND entity_type = 'TEAM' AND team_id = ?",
		eventID, teamID)
	reg, err := scanRegistration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return reg, err
}

// GetByEntity resolves a registration by its polymorphic (entity_type,
// entity_id) pair, used wherever a caller only has a score/submission-style
// entity reference rather than a user or team id directly.
func (r *RegistrationRepository) GetByEntity(ctx context.Context, eventID int, entityType models.EntityType, entityID int) (*models.Registration, error) {
	if entityType == models.EntityTeam {
		return r.GetByTeam(ctx, eventID, entityID)
	}
	return r.GetByUser(ctx, eventID, entityID)
}

func (r *RegistrationRepository) GetByReferralCode(ctx context.Context, eventID int, code string) (*models.Registration, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+registrationColumns+" FROM registrations WHERE event_id = ? AND referral_code = ?",
		eventID, code)
	reg, err := scanRegistration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return reg, err
}

func (r *RegistrationRepository) IncrementReferralCountWithTx(ctx context.Context, tx *sql.Tx, id int) error {
	_, err := tx.ExecContext(ctx, "UPDATE registrations SET referral_count = referral_count + 1 WHERE id = ?", id)
	return err
}

func (r *RegistrationRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.Registration, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+registrationColumns+" FROM registrations WHERE event_id = ? ORDER BY created_at", eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]*models.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *RegistrationRepository) ListActiveByEvent(ctx context.Context, eventID int) ([]*models.Registration, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+registrationColumns+" FROM registrations WHERE event_id = ? AND status = 'ACTIVE' ORDER BY id", eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]*models.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *RegistrationRepository) SetStatusWithTx(ctx context.Context, tx *sql.Tx, id int, status models.RegistrationStatus) error {
	_, err := tx.ExecContext(ctx, "UPDATE registrations SET status = ?, updated_at = NOW() WHERE id = ?", status, id)
	return err
}

func (r *RegistrationRepository) SetStatusBatchWithTx(ctx context.Context, tx *sql.Tx, ids []int, status models.RegistrationStatus) error {
	for _, id := range ids {
		if err := r.SetStatusWithTx(ctx, tx, id, status); err != nil {
			return err
		}
	}
	return nil
}
