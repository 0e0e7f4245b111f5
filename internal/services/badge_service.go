// internal/services/badge_service.go
// Badge awards, per spec.md §3/§6 (admin .../badges).

package services

import (
	"context"
	"database/sql"
	"fmt"

	"eventengine/internal/apierr"
	"eventengine/internal/models"
	"eventengine/internal/repositories"
)

type BadgeService struct {
	repos *repositories.Container
	db    *sql.DB
}

func NewBadgeService(repos *repositories.Container, db *sql.DB) *BadgeService {
	return &BadgeService{repos: repos, db: db}
}

func (s *BadgeService) Award(ctx context.Context, b *models.Badge) error {
	if b.EntityType == models.EntityUser && b.UserID == nil {
		return apierr.New(apierr.BadInput, "user_id is required for a USER badge")
	}
	if b.EntityType == models.EntityTeam && b.TeamID == nil {
		return apierr.New(apierr.BadInput, "team_id is required for a TEAM badge")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.repos.Badges.CreateWithTx(ctx, tx, b); err != nil {
		return fmt.Errorf("create badge: %w", err)
	}
	return tx.Commit()
}

func (s *BadgeService) ListByEvent(ctx context.Context, eventID int) ([]*models.Badge, error) {
	return s.repos.Badges.ListByEvent(ctx, eventID)
}

func (s *BadgeService) ListForUser(ctx context.Context, userID int) ([]*models.Badge, error) {
	return s.repos.Badges.ListForUser(ctx, userID)
}

func (s *BadgeService) Revoke(ctx context.Context, id int) error {
	if _, err := s.repos.Badges.GetByID(ctx, id); err == repositories.ErrNotFound {
		return apierr.New(apierr.NotFound, "badge not found")
	} else if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.repos.Badges.DeleteWithTx(ctx, tx, id); err != nil {
		return fmt.Errorf("delete badge: %w", err)
	}
	return tx.Commit()
}
