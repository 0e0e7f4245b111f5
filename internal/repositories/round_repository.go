// internal/repositories/round_repository.go
// Round Registry data access, per spec.md §4.3.

package repositories

import (
	"context"
	"database/sql"
	"errors"

	"eventengine/internal/models"
)

type RoundRepository struct {
	db *sql.DB
}

func NewRoundRepository(db *sql.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

const roundColumns = `
	id, event_id, round_no, name, description, scheduled_at, mode, state,
	criteria, elimination_type, elimination_value, is_frozen,
	requires_submission, submission_mode, submission_deadline,
	allowed_mime_types, max_file_size_mb, panel_mode_enabled,
	panel_distribution_mode, panel_structure_locked, created_at, updated_at
`

func scanRound(row interface{ Scan(...interface{}) error }) (*models.Round, error) {
	var r models.Round
	err := row.Scan(
		&r.ID, &r.EventID, &r.RoundNo, &r.Name, &r.Description, &r.ScheduledAt, &r.Mode, &r.State,
		&r.Criteria, &r.EliminationType, &r.EliminationValue, &r.IsFrozen,
		&r.RequiresSubmission, &r.SubmissionModeValue, &r.SubmissionDeadline,
		&r.AllowedMimeTypes, &r.MaxFileSizeMB, &r.PanelModeEnabled,
		&r.PanelDistribution, &r.PanelStructureLocked, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *RoundRepository) CreateWithTx(ctx context.Context, tx *sql.Tx, round *models.Round) error {
	query := `
		INSERT INTO rounds (
			event_id, round_no, name, description, scheduled_at, mode, state,
			criteria, elimination_type, elimination_value, is_frozen,
			requires_submission, submission_mode, submission_deadline,
			allowed_mime_types, max_file_size_mb, panel_mode_enabled,
			panel_distribution_mode, panel_structure_locked, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
	`
	res, err := tx.ExecContext(ctx, query,
		round.EventID, round.RoundNo, round.Name, round.Description, round.ScheduledAt, round.Mode, round.State,
		round.Criteria, round.EliminationType, round.EliminationValue, round.IsFrozen,
		round.RequiresSubmission, round.SubmissionModeValue, round.SubmissionDeadline,
		round.AllowedMimeTypes, round.MaxFileSizeMB, round.PanelModeEnabled,
		round.PanelDistribution, round.PanelStructureLocked,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	round.ID = int(id)
	return nil
}

func (r *RoundRepository) GetByID(ctx context.Context, id int) (*models.Round, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+roundColumns+" FROM rounds WHERE id = ?", id)
	round, err := scanRound(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return round, err
}

func (r *RoundRepository) GetByIDWithTx(ctx context.Context, tx *sql.Tx, id int) (*models.Round, error) {
	row := tx.QueryRowContext(ctx, "SELECT "+roundColumns+" FROM rounds WHERE id = ? FOR UPDATE", id)
	round, err := scanRound(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return round, err
}

func (r *RoundRepository) GetByEventAndNo(ctx context.Context, eventID, roundNo int) (*models.Round, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+roundColumns+" FROM rounds WHERE event_id = ? AND round_no = ?", eventID, roundNo)
	round, err := scanRound(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return round, err
}

func (r *RoundRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.Round, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+roundColumns+" FROM rounds WHERE event_id = ? ORDER BY round_no", eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rounds := make([]*models.Round, 0)
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, round)
	}
	return rounds, rows.Err()
}

func (r *RoundRepository) UpdateWithTx(ctx context.Context, tx *sql.Tx, round *models.Round) error {
	query := `
		UPDATE rounds SET
			round_no = ?, name = ?, description = ?, scheduled_at = ?, mode = ?, state = ?,
			criteria = ?, elimination_type = ?, elimination_value = ?, is_frozen = ?,
			requires_submission = ?, submission_mode = ?, submission_deadline = ?,
			allowed_mime_types = ?, max_file_size_mb = ?, panel_mode_enabled = ?,
			panel_distribution_mode = ?, panel_structure_locked = ?, updated_at = NOW()
		WHERE id = ?
	`
	_, err := tx.ExecContext(ctx, query,
		round.RoundNo, round.Name, round.Description, round.ScheduledAt, round.Mode, round.State,
		round.Criteria, round.EliminationType, round.EliminationValue, round.IsFrozen,
		round.RequiresSubmission, round.SubmissionModeValue, round.SubmissionDeadline,
		round.AllowedMimeTypes, round.MaxFileSizeMB, round.PanelModeEnabled,
		round.PanelDistribution, round.PanelStructureLocked, round.ID,
	)
	return err
}

func (r *RoundRepository) SetStateWithTx(ctx context.Context, tx *sql.Tx, id int, state models.RoundState) error {
	_, err := tx.ExecContext(ctx, "UPDATE rounds SET state = ?, updated_at = NOW() WHERE id = ?", state, id)
	return err
}

func (r *RoundRepository) SetFrozenWithTx(ctx context.Context, tx *sql.Tx, id int, frozen bool) error {
	_, err := tx.ExecContext(ctx, "UPDATE rounds SET is_frozen = ?, updated_at = NOW() WHERE id = ?", frozen, id)
	return err
}

func (r *RoundRepository) SetPanelStructureLockedWithTx(ctx context.Context, tx *sql.Tx, id int, locked bool) error {
	_, err := tx.ExecContext(ctx, "UPDATE rounds SET panel_structure_locked = ?, updated_at = NOW() WHERE id = ?", locked, id)
	return err
}

func (r *RoundRepository) DeleteWithTx(ctx context.Context, tx *sql.Tx, id int) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM rounds WHERE id = ?", id)
	return err
}

// SwapRoundNoWithTx implements the original's two-step round_no swap:
// move the source round out of the way before the target slot frees up,
// avoiding a UNIQUE(event_id, round_no) collision mid-update.
func (r *RoundRepository) SwapRoundNoWithTx(ctx context.Context, tx *sql.Tx, eventID, fromNo, toNo int) error {
	const parkingNo = -1
	if _, err := tx.ExecContext(ctx,
		"UPDATE rounds SET round_no = ? WHERE event_id = ? AND round_no = ?", parkingNo, eventID, fromNo); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE rounds SET round_no = ? WHERE event_id = ? AND round_no = ?", fromNo, eventID, toNo); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx,
		"UPDATE rounds SET round_no = ? WHERE event_id = ? AND round_no = ?", toNo, eventID, parkingNo)
	return err
}
