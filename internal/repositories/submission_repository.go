// internal/repositories/submission_repository.go
// Submission Vault data access, per spec.md §4.6.

package repositories

import (
	"context"
	"database/sql"
	"errors"

	"eventengine/internal/models"
)

type SubmissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

const submissionColumns = `
	id, event_id, round_id, entity_type, entity_id, type, file_url, link_url,
	file_name, size_bytes, mime_type, notes, version, locked, submitted_at,
	updated_at, updated_by
`

func scanSubmission(row interface{ Scan(...interface{}) error }) (*models.Submission, error) {
	var s models.Submission
	err := row.Scan(
		&s.ID, &s.EventID, &s.RoundID, &s.EntityType, &s.EntityID, &s.Type, &s.FileURL, &s.LinkURL,
		&s.FileName, &s.SizeBytes, &s.MimeType, &s.Notes, &s.Version, &s.Locked, &s.SubmittedAt,
		&s.UpdatedAt, &s.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubmissionRepository) GetWithTx(ctx context.Context, tx *sql.Tx, roundID int, entityType models.EntityType, entityID int) (*models.Submission, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+submissionColumns+" FROM submissions WHERE round_id = ? AND entity_type = ? AND entity_id = ? FOR UPDATE",
		roundID, entityType, entityID)
	s, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

func (r *SubmissionRepository) Get(ctx context.Context, roundID int, entityType models.EntityType, entityID int) (*models.Submission, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+submissionColumns+" FROM submissions WHERE round_id = ? AND entity_type = ? AND entity_id = ?",
		roundID, entityType, entityID)
	s, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

func (r *SubmissionRepository) UpsertWithTx(ctx context.Context, tx *sql.Tx, s *models.Submission) error {
	query := `
		INSERT INTO submissions (
			event_id, round_id, entity_type, entity_id, type, file_url, link_url,
			file_name, size_bytes, mime_type, notes, version, locked, submitted_at,
			updated_at, updated_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), ?)
		ON DUPLICATE KEY UPDATE
			type = VALUES(type), file_url = VALUES(file_url), link_url = VALUES(link_url),
			file_name = VALUES(file_name), size_bytes = VALUES(size_bytes), mime_type = VALUES(mime_type),
			notes = VALUES(notes), version = version + 1, locked = VALUES(locked),
			submitted_at = VALUES(submitted_at), updated_at = NOW(), updated_by = VALUES(updated_by)
	`
	_, err := tx.ExecContext(ctx, query,
		s.EventID, s.RoundID, s.EntityType, s.EntityID, s.Type, s.FileURL, s.LinkURL,
		s.FileName, s.SizeBytes, s.MimeType, s.Notes, s.Version, s.Locked, s.SubmittedAt, s.UpdatedBy,
	)
	if err != nil {
		return err
	}
	return tx.QueryRowContext(ctx,
		"SELECT id, version FROM submissions WHERE round_id = ? AND entity_type = ? AND entity_id = ?",
		s.RoundID, s.EntityType, s.EntityID,
	).Scan(&s.ID, &s.Version)
}

func (r *SubmissionRepository) ListByRound(ctx context.Context, roundID int) ([]*models.Submission, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+submissionColumns+" FROM submissions WHERE round_id = ?", roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	submissions := make([]*models.Submission, 0)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, s)
	}
	return submissions, rows.Err()
}

func (r *SubmissionRepository) SetLockedForRoundWithTx(ctx context.Context, tx *sql.Tx, roundID int, locked bool) error {
	_, err := tx.ExecContext(ctx, "UPDATE submissions SET locked = ?, updated_at = NOW() WHERE round_id = ?", locked, roundID)
	return err
}

func (r *SubmissionRepository) DeleteWithTx(ctx context.Context, tx *sql.Tx, roundID int, entityType models.EntityType, entityID int) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM submissions WHERE round_id = ? AND entity_type = ? AND entity_id = ?", roundID, entityType, entityID)
	return err
}

// DeleteByRoundWithTx removes every submission row for a round, used when a
// DRAFT round is deleted outright (spec.md §4.3's orphan-submission cleanup).
func (r *SubmissionRepository) DeleteByRoundWithTx(ctx context.Context, tx *sql.Tx, roundID int) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM submissions WHERE round_id = ?", roundID)
	return err
}
