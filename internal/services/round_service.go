// internal/services/round_service.go
// Round Registry, per spec.md §4.3.
//
// Grounded on the original's update_round: changing round_no requires a
// two-step parking swap (internal/repositories/round_repository.go's
// SwapRoundNoWithTx) to avoid colliding with the UNIQUE(event_id, round_no)
// constraint mid-update.

package services

import (
	"context"
	"database/sql"
	"fmt"

	"eventengine/internal/apierr"
	"eventengine/internal/models"
	"eventengine/internal/repositories"
)

type RoundService struct {
	repos  *repositories.Container
	db     *sql.DB
	scores *ScoreService
}

func NewRoundService(repos *repositories.Container, db *sql.DB, scores *ScoreService) *RoundService {
	return &RoundService{repos: repos, db: db, scores: scores}
}

func validPanelDistributionMode(mode models.PanelDistributionMode) bool {
	switch mode {
	case "", models.PanelDistTeamCount, models.PanelDistMemberCountWeighted:
		return true
	}
	return false
}

// Create adds a round to an event and keeps events.round_count in sync.
func (s *RoundService) Create(ctx context.Context, event *models.Event, round *models.Round) error {
	if round.RoundNo < 1 {
		return apierr.New(apierr.BadRounds, "round_no must be >= 1")
	}
	if len(round.Criteria) == 0 {
		round.Criteria = models.DefaultCriteria()
	}
	if len(round.AllowedMimeTypes) == 0 {
		round.AllowedMimeTypes = models.DefaultAllowedMimeTypes()
	}
	if round.MaxFileSizeMB == 0 {
		round.MaxFileSizeMB = models.DefaultMaxFileSizeMB
	}
	if round.State == "" {
		round.State = models.RoundDraft
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	round.EventID = event.ID
	if err := s.repos.Rounds.CreateWithTx(ctx, tx, round); err != nil {
		return fmt.Errorf("create round: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit round creation: %w", err)
	}

	rounds, err := s.repos.Rounds.ListByEvent(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("list rounds: %w", err)
	}

	return s.repos.Events.SetRoundCount(ctx, event.ID, len(rounds))
}

func (s *RoundService) GetByID(ctx context.Context, id int) (*models.Round, error) {
	round, err := s.repos.Rounds.GetByID(ctx, id)
	if err == repositories.ErrNotFound {
		return nil, apierr.New(apierr.NotFound, "round not found")
	}
	return round, err
}

func (s *RoundService) ListByEvent(ctx context.Context, eventID int) ([]*models.Round, error) {
	return s.repos.Rounds.ListByEvent(ctx, eventID)
}

// Update applies field changes, performing the two-step round_no swap when
// the caller is reordering rounds. Per the renormalization rule, a change to
// evaluation criteria invalidates every stored normalized_score for the
// round, so Update recomputes them in the same transaction.
func (s *RoundService) Update(ctx context.Context, round *models.Round, newRoundNo int) error {
	if round.IsFrozen {
		return apierr.New(apierr.RoundFrozen, "round is frozen and cannot be edited")
	}
	if round.PanelStructureLocked && newRoundNo != round.RoundNo {
		return apierr.New(apierr.BadRounds, "panel structure is locked; reorder rounds before assigning panels")
	}
	if !validPanelDistributionMode(round.PanelDistribution) {
		return apierr.New(apierr.BadInput, "panel_distribution_mode must be team_count or member_count_weighted")
	}

	existing, err := s.repos.Rounds.GetByID(ctx, round.ID)
	if err != nil {
		return fmt.Errorf("load round: %w", err)
	}
	criteriaChanged := existing.Criteria.MaxTotal() != round.Criteria.MaxTotal() || len(existing.Criteria) != len(round.Criteria)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if newRoundNo != 0 && newRoundNo != round.RoundNo {
		if err := s.repos.Rounds.SwapRoundNoWithTx(ctx, tx, round.EventID, round.RoundNo, newRoundNo); err != nil {
			return fmt.Errorf("swap round_no: %w", err)
		}
		round.RoundNo = newRoundNo
	}

	if err := s.repos.Rounds.UpdateWithTx(ctx, tx, round); err != nil {
		return fmt.Errorf("update round: %w", err)
	}

	if criteriaChanged && s.scores != nil {
		if err := s.scores.RecomputeRound(ctx, tx, round); err != nil {
			return fmt.Errorf("recompute round: %w", err)
		}
	}

	return tx.Commit()
}

// Delete removes a round outright. Only allowed in DRAFT state; any orphan
// submissions for the round are deleted in the same transaction, and
// events.round_count is resynced afterward.
func (s *RoundService) Delete(ctx context.Context, round *models.Round) error {
	if round.State != models.RoundDraft {
		return apierr.New(apierr.BadRounds, "only draft rounds may be deleted")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.repos.Submissions.DeleteByRoundWithTx(ctx, tx, round.ID); err != nil {
		return fmt.Errorf("delete orphan submissions: %w", err)
	}
	if err := s.repos.Rounds.DeleteWithTx(ctx, tx, round.ID); err != nil {
		return fmt.Errorf("delete round: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit round deletion: %w", err)
	}

	rounds, err := s.repos.Rounds.ListByEvent(ctx, round.EventID)
	if err != nil {
		return fmt.Errorf("list rounds: %w", err)
	}

	return s.repos.Events.SetRoundCount(ctx, round.EventID, len(rounds))
}

func (s *RoundService) SetState(ctx context.Context, roundID int, state models.RoundState) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.repos.Rounds.SetStateWithTx(ctx, tx, roundID, state); err != nil {
		return fmt.Errorf("set round state: %w", err)
	}
	return tx.Commit()
}
