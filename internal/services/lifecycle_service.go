// internal/services/lifecycle_service.go
// Lifecycle Controller, per spec.md §4.7/§8.
//
// Grounded on the original's freeze_round (zero-score insertion for active
// entities lacking a score, freeze flag, recompute, then audit upload) and
// update_round's shortlist trigger (event-wide SUM aggregation, sort by
// (-total, entity_id), top_k/min_score partition).

package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"eventengine/internal/apierr"
	"eventengine/internal/models"
)

type LifecycleService struct {
	scores        *ScoreService
	submissions   *SubmissionService
	registrations *RegistrationService
	audit         *AuditService
	db            *sql.DB
	logger        zerolog.Logger
}

// EntityRef names one participant/team for audit-snapshot labeling;
// display names come from the external identity system this module doesn't
// own, so callers supply the label.
type EntityRef struct {
	EntityType models.EntityType
	EntityID   int
	Label      string
}

func NewLifecycleService(scores *ScoreService, submissions *SubmissionService, registrations *RegistrationService, audit *AuditService, db *sql.DB, logger zerolog.Logger) *LifecycleService {
	return &LifecycleService{scores: scores, submissions: submissions, registrations: registrations, audit: audit, db: db, logger: logger}
}

// uploadSnapshotBestEffort uploads an audit CSV and swallows upload failures
// per spec.md §4.7: freeze/shortlist must never roll back or fail the HTTP
// caller because object storage is unreachable. Failures are recorded as an
// audit_csv_error log entry instead, mirroring AuditService.LogAction's own
// non-fatal Mongo-mirror handling.
func (s *LifecycleService) uploadSnapshotBestEffort(ctx context.Context, event *models.Event, round *models.Round, auditKind, auditType string, adminID int, adminRegno, adminName string, rows []ScoreSnapshotRow) string {
	url, err := s.audit.UploadAuditSnapshot(ctx, event.Slug, event.EventCode, event.ID, round, auditKind, auditType, adminID, adminRegno, adminName, rows)
	if err != nil {
		s.logger.Warn().Err(err).Int("round_id", round.ID).Str("audit_kind", auditKind).Msg("audit_csv_error")
		logErr := s.audit.LogAction(ctx, LogActionInput{
			EventSlug:  event.Slug,
			EventID:    &event.ID,
			AdminID:    adminID,
			AdminRegno: adminRegno,
			AdminName:  adminName,
			Action:     "audit_csv_error",
			Method:     "SYSTEM",
			Path:       fmt.Sprintf("/rounds/%d/%s", round.ID, auditType),
			Meta:       models.LogMeta{"error": err.Error(), "round_no": round.RoundNo},
		})
		if logErr != nil {
			s.logger.Warn().Err(logErr).Msg("failed to record audit_csv_error")
		}
		return ""
	}
	return url
}

// FreezeRound inserts a zero score for every active entity still missing
// one, marks the round frozen and its submissions locked, recomputes
// normalized scores when the round runs in panel mode, then uploads an
// audit CSV snapshot of the resulting scores.
func (s *LifecycleService) FreezeRound(ctx context.Context, event *models.Event, round *models.Round, activeEntities []EntityRef, adminID int, adminRegno, adminName string) (string, error) {
	if round.IsFrozen {
		return "", apierr.New(apierr.RoundFrozen, "round is already frozen")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	existing, err := s.scores.repos.Scores.ListByRoundWithTx(ctx, tx, round.ID)
	if err != nil {
		return "", fmt.Errorf("list existing scores: %w", err)
	}
	hasScore := make(map[string]bool, len(existing))
	for _, sc := range existing {
		hasScore[scoreRefKey(sc.EntityType, sc.EntityID)] = true
	}

	for _, e := range activeEntities {
		if hasScore[scoreRefKey(e.EntityType, e.EntityID)] {
			continue
		}
		zero := &models.Score{
			EventID:         round.EventID,
			RoundID:         round.ID,
			EntityType:      e.EntityType,
			EntityID:        e.EntityID,
			CriteriaScores:  models.CriteriaScores{},
			TotalScore:      0,
			NormalizedScore: 0,
			IsPresent:       false,
		}
		if err := s.scores.repos.Scores.UpsertWithTx(ctx, tx, zero); err != nil {
			return "", fmt.Errorf("insert zero score for entity %d: %w", e.EntityID, err)
		}
	}

	if round.PanelModeEnabled {
		if err := s.scores.RecomputeRound(ctx, tx, round); err != nil {
			return "", fmt.Errorf("recompute round scores: %w", err)
		}
	}

	if err := s.scores.repos.Rounds.SetFrozenWithTx(ctx, tx, round.ID, true); err != nil {
		return "", fmt.Errorf("set frozen: %w", err)
	}
	if err := s.submissions.LockAllForRoundWithTx(ctx, tx, round.ID); err != nil {
		return "", fmt.Errorf("lock submissions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit freeze: %w", err)
	}
	round.IsFrozen = true

	rows, err := s.buildSnapshotRows(ctx, round, activeEntities)
	if err != nil {
		return "", fmt.Errorf("build snapshot rows: %w", err)
	}
	return s.uploadSnapshotBestEffort(ctx, event, round, "freeze", "freeze", adminID, adminRegno, adminName, rows), nil
}

// Unfreeze clears a round's frozen flag and forces it back to ACTIVE.
// Submissions stay locked; a round only unlocks submissions by re-extending
// its deadline through update_round (spec.md §4.7).
func (s *LifecycleService) Unfreeze(ctx context.Context, round *models.Round) error {
	if !round.IsFrozen {
		return apierr.New(apierr.RoundFrozen, "round is not frozen")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.scores.repos.Rounds.SetFrozenWithTx(ctx, tx, round.ID, false); err != nil {
		return fmt.Errorf("clear frozen: %w", err)
	}
	if err := s.scores.repos.Rounds.SetStateWithTx(ctx, tx, round.ID, models.RoundActive); err != nil {
		return fmt.Errorf("set round active: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit unfreeze: %w", err)
	}
	round.IsFrozen = false
	round.State = models.RoundActive
	return nil
}

func (s *LifecycleService) buildSnapshotRows(ctx context.Context, round *models.Round, entities []EntityRef) ([]ScoreSnapshotRow, error) {
	scores, err := s.scores.ListByRound(ctx, round.ID)
	if err != nil {
		return nil, err
	}
	labelByKey := make(map[string]string, len(entities))
	for _, e := range entities {
		labelByKey[scoreRefKey(e.EntityType, e.EntityID)] = e.Label
	}
	rows := make([]ScoreSnapshotRow, 0, len(scores))
	for _, sc := range scores {
		rows = append(rows, ScoreSnapshotRow{
			EntityType: string(sc.EntityType),
			EntityID:   sc.EntityID,
			Label:      labelByKey[scoreRefKey(sc.EntityType, sc.EntityID)],
			TotalScore: sc.TotalScore,
			Normalized: sc.NormalizedScore,
			IsPresent:  sc.IsPresent,
		})
	}
	return rows, nil
}

func scoreRefKey(entityType models.EntityType, entityID int) string {
	return fmt.Sprintf("%s:%d", entityType, entityID)
}

type rankedEntity struct {
	EntityType models.EntityType
	EntityID   int
	RegID      int
	Total      float64
}

// Shortlist partitions active entities into absent/present for this round
// (optionally eliminating the absent outright), ranks the remaining pool by
// its event-wide Score Store total, eliminates every ACTIVE registration
// outside the round's elimination rule (top_k keeps the highest K by
// (-total, entity_id); min_score keeps everyone at or above the threshold),
// moves the round to COMPLETED, and emits a shortlisting audit CSV.
func (s *LifecycleService) Shortlist(ctx context.Context, event *models.Event, round *models.Round, active []EntityRef, registrationIDByEntity map[string]int, eliminateAbsent bool, adminID int, adminRegno, adminName string) (kept, eliminated []EntityRef, err error) {
	if round.EliminationType == nil {
		return nil, nil, apierr.New(apierr.InvalidElimination, "round has no elimination rule configured")
	}

	roundScores, err := s.scores.ListByRound(ctx, round.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list round scores: %w", err)
	}
	presentThisRound := make(map[string]bool, len(roundScores))
	for _, sc := range roundScores {
		if sc.IsPresent {
			presentThisRound[scoreRefKey(sc.EntityType, sc.EntityID)] = true
		}
	}

	var absent, present []EntityRef
	for _, e := range active {
		if presentThisRound[scoreRefKey(e.EntityType, e.EntityID)] {
			present = append(present, e)
		} else {
			absent = append(absent, e)
		}
	}

	pool := active
	if eliminateAbsent {
		pool = present
		eliminated = append(eliminated, absent...)
	}

	totals, err := s.scores.repos.Scores.SumByEvent(ctx, event.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("sum scores: %w", err)
	}

	ranked := make([]rankedEntity, 0, len(pool))
	for _, e := range pool {
		key := scoreRefKey(e.EntityType, e.EntityID)
		ranked = append(ranked, rankedEntity{
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			RegID:      registrationIDByEntity[key],
			Total:      totals[key],
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Total != ranked[j].Total {
			return ranked[i].Total > ranked[j].Total
		}
		return ranked[i].EntityID < ranked[j].EntityID
	})

	var keepIDs []int
	switch *round.EliminationType {
	case models.EliminationTopK:
		k := 0
		if round.EliminationValue != nil {
			k = int(*round.EliminationValue)
		}
		if k > len(ranked) {
			k = len(ranked)
		}
		for i := 0; i < k; i++ {
			keepIDs = append(keepIDs, ranked[i].RegID)
		}
	case models.EliminationMinScore:
		threshold := 0.0
		if round.EliminationValue != nil {
			threshold = *round.EliminationValue
		}
		for _, r := range ranked {
			if r.Total >= threshold {
				keepIDs = append(keepIDs, r.RegID)
			}
		}
	default:
		return nil, nil, apierr.New(apierr.InvalidElimination, "unsupported elimination type")
	}

	keepSet := make(map[int]bool, len(keepIDs))
	for _, id := range keepIDs {
		keepSet[id] = true
	}

	var eliminateIDs []int
	if eliminateAbsent {
		for _, e := range absent {
			eliminateIDs = append(eliminateIDs, registrationIDByEntity[scoreRefKey(e.EntityType, e.EntityID)])
		}
	}
	for _, r := range ranked {
		ref := EntityRef{EntityType: r.EntityType, EntityID: r.EntityID}
		if keepSet[r.RegID] {
			kept = append(kept, ref)
		} else {
			eliminated = append(eliminated, ref)
			eliminateIDs = append(eliminateIDs, r.RegID)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if len(eliminateIDs) > 0 {
		if err := s.registrations.EliminateWithTx(ctx, tx, eliminateIDs); err != nil {
			return nil, nil, fmt.Errorf("eliminate registrations: %w", err)
		}
	}
	if err := s.scores.repos.Rounds.SetStateWithTx(ctx, tx, round.ID, models.RoundCompleted); err != nil {
		return nil, nil, fmt.Errorf("set round completed: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit shortlist: %w", err)
	}
	round.State = models.RoundCompleted

	rows, err := s.buildSnapshotRows(ctx, round, active)
	if err != nil {
		return nil, nil, fmt.Errorf("build snapshot rows: %w", err)
	}
	s.uploadSnapshotBestEffort(ctx, event, round, "shortlisting", "shortlist", adminID, adminRegno, adminName, rows)

	return kept, eliminated, nil
}
