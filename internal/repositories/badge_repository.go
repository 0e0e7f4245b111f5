// internal/repositories/badge_repository.go
// Badge award data access, per spec.md §3.

package repositories

import (
	"context"
	"database/sql"
	"errors"

	"eventengine/internal/models"
)

type BadgeRepository struct {
	db *sql.DB
}

func NewBadgeRepository(db *sql.DB) *BadgeRepository {
	return &BadgeRepository{db: db}
}

const badgeColumns = `id, event_id, title, entity_type, user_id, team_id, place, score, image_url, created_at`

func scanBadge(row interface{ Scan(...interface{}) error }) (*models.Badge, error) {
	var b models.Badge
	err := row.Scan(&b.ID, &b.EventID, &b.Title, &b.EntityType, &b.UserID, &b.TeamID, &b.Place, &b.Score, &b.ImageURL, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BadgeRepository) CreateWithTx(ctx context.Context, tx *sql.Tx, b *models.Badge) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO badges (event_id, title, entity_type, user_id, team_id, place, score, image_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW())`,
		b.EventID, b.Title, b.EntityType, b.UserID, b.TeamID, b.Place, b.Score, b.ImageURL,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = int(id)
	return nil
}

func (r *BadgeRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.Badge, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+badgeColumns+" FROM badges WHERE event_id = ? ORDER BY created_at", eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	badges := make([]*models.Badge, 0)
	for rows.Next() {
		b, err := scanBadge(rows)
		if err != nil {
			return nil, err
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

func (r *BadgeRepository) ListForUser(ctx context.Context, userID int) ([]*models.Badge, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+badgeColumns+" FROM badges WHERE entity_type = 'USER' AND user_id = ? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	badges := make([]*models.Badge, 0)
	for rows.Next() {
		b, err := scanBadge(rows)
		if err != nil {
			return nil, err
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

func (r *BadgeRepository) GetByID(ctx context.Context, id int) (*models.Badge, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+badgeColumns+" FROM badges WHERE id = ?", id)
	b, err := scanBadge(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

func (r *BadgeRepository) DeleteWithTx(ctx context.Context, tx *sql.Tx, id int) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM badges WHERE id = ?", id)
	return err
}
