// internal/services/panel_service.go
// Panel Coordinator, per spec.md §4.4.
//
// Grounded on the original's auto_assign_round_panels: entities are bucketed
// by rounded prior score, shuffled within each bucket using a SHA-256 seeded
// RNG (internal/seededrand) so the run is reproducible given the same round
// and bucket, then greedily assigned to whichever panel currently carries
// the smallest (score_sum, load).

package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"eventengine/internal/apierr"
	"eventengine/internal/models"
	"eventengine/internal/repositories"
	"eventengine/internal/seededrand"
)

type PanelService struct {
	repos  *repositories.Container
	db     *sql.DB
	scores *ScoreService
}

func NewPanelService(repos *repositories.Container, db *sql.DB, scores *ScoreService) *PanelService {
	return &PanelService{repos: repos, db: db, scores: scores}
}

func (s *PanelService) CreatePanel(ctx context.Context, round *models.Round, p *models.Panel) error {
	if round.PanelStructureLocked {
		return apierr.New(apierr.BadRounds, "panel structure is locked for this round")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	p.RoundID = round.ID
	p.EventID = round.EventID
	if err := s.repos.Panels.CreateWithTx(ctx, tx, p); err != nil {
		return fmt.Errorf("create panel: %w", err)
	}
	return tx.Commit()
}

// UpdatePanelsInput is one panel and its desired member set for update_panels.
type UpdatePanelsInput struct {
	ID           int        `json:"id"`
	PanelNo      int        `json:"panel_no"`
	DisplayName  string     `json:"display_name"`
	MeetingLink  *string    `json:"meeting_link"`
	MeetingTime  *time.Time `json:"meeting_time"`
	Instructions *string    `json:"instructions"`
	AdminIDs     []int      `json:"admin_ids"`
}

// BootstrapRegno is the reserved admin identity excluded from panel member
// sets (spec.md §4.4): the account used to seed the system before any real
// admin exists.
const BootstrapRegno = "0000000000"

// UpdatePanels atomically replaces a round's panels and each panel's member
// set. Panel numbers must be unique within the call. When the round's panel
// structure is locked, only member/metadata edits on existing panels are
// allowed — no panel may be added or removed.
func (s *PanelService) UpdatePanels(ctx context.Context, round *models.Round, panels []UpdatePanelsInput, adminRegnoByID map[int]string) ([]*models.Panel, error) {
	seenNo := make(map[int]bool, len(panels))
	for _, p := range panels {
		if seenNo[p.PanelNo] {
			return nil, apierr.New(apierr.BadInput, fmt.Sprintf("duplicate panel_no %d", p.PanelNo))
		}
		seenNo[p.PanelNo] = true
		for _, adminID := range p.AdminIDs {
			if adminRegnoByID[adminID] == BootstrapRegno {
				return nil, apierr.New(apierr.BadInput, "bootstrap admin cannot be assigned to a panel")
			}
		}
	}

	existing, err := s.repos.Panels.ListByRound(ctx, round.ID)
	if err != nil {
		return nil, fmt.Errorf("list existing panels: %w", err)
	}
	existingByID := make(map[int]*models.Panel, len(existing))
	for _, p := range existing {
		existingByID[p.ID] = p
	}

	if round.PanelStructureLocked {
		if len(panels) != len(existing) {
			return nil, apierr.New(apierr.BadRounds, "panel structure is locked; panels cannot be added or removed")
		}
		for _, p := range panels {
			if p.ID == 0 || existingByID[p.ID] == nil {
				return nil, apierr.New(apierr.BadRounds, "panel structure is locked; panels cannot be added or removed")
			}
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	kept := make(map[int]bool, len(panels))
	result := make([]*models.Panel, 0, len(panels))
	for _, in := range panels {
		p := &models.Panel{
			ID:           in.ID,
			EventID:      round.EventID,
			RoundID:      round.ID,
			PanelNo:      in.PanelNo,
			DisplayName:  in.DisplayName,
			MeetingLink:  in.MeetingLink,
			MeetingTime:  in.MeetingTime,
			Instructions: in.Instructions,
		}
		if p.ID == 0 {
			if err := s.repos.Panels.CreateWithTx(ctx, tx, p); err != nil {
				return nil, fmt.Errorf("create panel: %w", err)
			}
		} else {
			if err := s.repos.Panels.UpdateWithTx(ctx, tx, p); err != nil {
				return nil, fmt.Errorf("update panel %d: %w", p.ID, err)
			}
		}
		kept[p.ID] = true

		if err := s.repos.Panels.ReplaceMembersWithTx(ctx, tx, p.ID, in.AdminIDs); err != nil {
			return nil, fmt.Errorf("replace members for panel %d: %w", p.ID, err)
		}
		result = append(result, p)
	}

	for _, p := range existing {
		if !kept[p.ID] {
			if err := s.repos.Panels.DeleteWithTx(ctx, tx, p.ID); err != nil {
				return nil, fmt.Errorf("delete panel %d: %w", p.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update_panels: %w", err)
	}
	return result, nil
}

func (s *PanelService) AddMember(ctx context.Context, panelID, adminID int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	m := &models.PanelMember{PanelID: panelID, AdminID: adminID}
	if err := s.repos.Panels.AddMemberWithTx(ctx, tx, m); err != nil {
		return fmt.Errorf("add panel member: %w", err)
	}
	return tx.Commit()
}

func (s *PanelService) ListPanels(ctx context.Context, roundID int) ([]*models.Panel, error) {
	return s.repos.Panels.ListByRound(ctx, roundID)
}

// SetAssignments applies manual per-entity panel overrides (spec.md §4.4's
// set_assignments): each entity must be a current scoring candidate (an
// ACTIVE registration for the round's event) and each non-null target panel
// must belong to this round. panel_id == nil removes the assignment.
func (s *PanelService) SetAssignments(ctx context.Context, round *models.Round, overrides []AssignmentOverride) error {
	panels, err := s.repos.Panels.ListByRound(ctx, round.ID)
	if err != nil {
		return fmt.Errorf("list panels: %w", err)
	}
	panelInRound := make(map[int]bool, len(panels))
	for _, p := range panels {
		panelInRound[p.ID] = true
	}

	for _, o := range overrides {
		reg, err := s.repos.Registrations.GetByEntity(ctx, round.EventID, o.EntityType, o.EntityID)
		if err == repositories.ErrNotFound || (err == nil && reg.Status != models.RegistrationActive) {
			return apierr.New(apierr.NotFound, "entity is not a current scoring candidate")
		} else if err != nil {
			return fmt.Errorf("check registration: %w", err)
		}
		if o.PanelID != nil && !panelInRound[*o.PanelID] {
			return apierr.New(apierr.NotFound, "target panel does not belong to this round")
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, o := range overrides {
		if o.PanelID == nil {
			if err := s.repos.Panels.DeleteAssignmentWithTx(ctx, tx, round.ID, o.EntityType, o.EntityID); err != nil {
				return fmt.Errorf("remove assignment: %w", err)
			}
			continue
		}
		assignment := &models.PanelAssignment{
			EventID:    round.EventID,
			RoundID:    round.ID,
			PanelID:    *o.PanelID,
			EntityType: o.EntityType,
			EntityID:   o.EntityID,
		}
		if err := s.repos.Panels.UpsertAssignmentWithTx(ctx, tx, assignment); err != nil {
			return fmt.Errorf("assign entity %d: %w", o.EntityID, err)
		}
	}

	if s.scores != nil {
		if err := s.scores.RecomputeRound(ctx, tx, round); err != nil {
			return fmt.Errorf("recompute round: %w", err)
		}
	}

	return tx.Commit()
}

// AssignmentOverride is one manual panel reassignment; PanelID == nil removes
// the entity's assignment.
type AssignmentOverride struct {
	EntityType models.EntityType
	EntityID   int
	PanelID    *int
}

// EntityScore is one candidate for panel assignment, carrying whatever
// prior score should inform bucketing (0 if none exists yet).
type EntityScore struct {
	EntityType models.EntityType
	EntityID   int
	Score      float64
	Weight     float64
}

type panelLoad struct {
	panelID  int
	panelNo  int
	scoreSum float64
	load     float64
}

// AutoAssign deterministically distributes ACTIVE entities across a round's
// panels. Totals and weights are computed here, from the Score Store and
// team roster sizes, rather than trusted from the caller. When
// includeUnassignedOnly is set, entities that already carry an assignment
// for this round are left untouched.
func (s *PanelService) AutoAssign(ctx context.Context, event *models.Event, round *models.Round, includeUnassignedOnly bool) error {
	if !round.PanelModeEnabled {
		return apierr.New(apierr.PanelRequired, "panel mode is not enabled for this round")
	}

	panels, err := s.repos.Panels.ListByRound(ctx, round.ID)
	if err != nil {
		return fmt.Errorf("list panels: %w", err)
	}
	if len(panels) == 0 {
		return apierr.New(apierr.PanelRequired, "round has no panels to assign to")
	}
	panelIDs := make([]int, len(panels))
	loads := make([]*panelLoad, len(panels))
	for i, p := range panels {
		loads[i] = &panelLoad{panelID: p.ID, panelNo: p.PanelNo}
		panelIDs[i] = p.ID
	}
	sort.Ints(panelIDs)

	registrations, err := s.repos.Registrations.ListActiveByEvent(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("list active registrations: %w", err)
	}
	totals, err := s.repos.Scores.SumByEvent(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("sum scores: %w", err)
	}

	var existingAssigned map[string]bool
	if includeUnassignedOnly {
		assignments, err := s.repos.Panels.ListAssignmentsByRound(ctx, round.ID)
		if err != nil {
			return fmt.Errorf("list existing assignments: %w", err)
		}
		existingAssigned = make(map[string]bool, len(assignments))
		for _, a := range assignments {
			existingAssigned[entityKey(a.EntityType, a.EntityID)] = true
		}
	}

	weighted := round.PanelDistribution == models.PanelDistMemberCountWeighted
	entities := make([]EntityScore, 0, len(registrations))
	candidateKeys := make([]string, 0, len(registrations))
	for _, reg := range registrations {
		key := entityKey(reg.EntityType, reg.EntityID())
		candidateKeys = append(candidateKeys, key)
		if existingAssigned[key] {
			continue
		}
		weight := 1.0
		if reg.EntityType == models.EntityTeam && weighted {
			count, err := s.repos.Teams.MemberCount(ctx, reg.EntityID())
			if err != nil {
				return fmt.Errorf("count team members for %d: %w", reg.EntityID(), err)
			}
			if count < 1 {
				count = 1
			}
			weight = float64(count)
		}
		entities = append(entities, EntityScore{
			EntityType: reg.EntityType,
			EntityID:   reg.EntityID(),
			Score:      totals[key],
			Weight:     weight,
		})
	}
	sort.Strings(candidateKeys)

	buckets := make(map[float64][]EntityScore)
	var bucketKeys []float64
	for _, e := range entities {
		key := math.Round(e.Score*1e6) / 1e6
		if _, ok := buckets[key]; !ok {
			bucketKeys = append(bucketKeys, key)
		}
		buckets[key] = append(buckets[key], e)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(bucketKeys)))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, bucketKey := range bucketKeys {
		bucket := buckets[bucketKey]
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].EntityID < bucket[j].EntityID })

		seedMaterial := fmt.Sprintf(
			"event:%d:round:%d:entity_type:%s:mode:%s:weighted:%t:unassigned_only:%t:panels:%v:candidates:%s:bucket:%v",
			event.ID, round.ID, event.ParticipantMode, round.PanelDistribution, weighted, includeUnassignedOnly,
			panelIDs, strings.Join(candidateKeys, ","), bucketKey,
		)
		rng := seededrand.New(seedMaterial)
		rng.Shuffle(len(bucket), func(i, j int) { bucket[i], bucket[j] = bucket[j], bucket[i] })

		for _, e := range bucket {
			target := loads[0]
			for _, l := range loads[1:] {
				if l.scoreSum < target.scoreSum || (l.scoreSum == target.scoreSum && l.load < target.load) {
					target = l
				}
			}

			assignment := &models.PanelAssignment{
				EventID:    round.EventID,
				RoundID:    round.ID,
				PanelID:    target.panelID,
				EntityType: e.EntityType,
				EntityID:   e.EntityID,
			}
			if err := s.repos.Panels.UpsertAssignmentWithTx(ctx, tx, assignment); err != nil {
				return fmt.Errorf("assign entity %d: %w", e.EntityID, err)
			}

			target.scoreSum += e.Score
			if weighted {
				target.load += e.Weight
			} else {
				target.load++
			}
		}
	}

	if err := s.repos.Rounds.SetPanelStructureLockedWithTx(ctx, tx, round.ID, true); err != nil {
		return fmt.Errorf("lock panel structure: %w", err)
	}

	if s.scores != nil {
		if err := s.scores.RecomputeRound(ctx, tx, round); err != nil {
			return fmt.Errorf("recompute round: %w", err)
		}
	}

	return tx.Commit()
}

func entityKey(entityType models.EntityType, entityID int) string {
	return fmt.Sprintf("%s:%d", entityType, entityID)
}

func (s *PanelService) GetAssignment(ctx context.Context, roundID int, entityType models.EntityType, entityID int) (*models.PanelAssignment, error) {
	assignment, err := s.repos.Panels.GetAssignment(ctx, roundID, entityType, entityID)
	if err == repositories.ErrNotFound {
		return nil, apierr.New(apierr.PanelRequired, "entity has no panel assignment for this round")
	}
	return assignment, err
}

func (s *PanelService) IsJudgeOnPanel(ctx context.Context, roundID, adminID int) (bool, error) {
	return s.repos.Panels.IsJudgeOnPanel(ctx, roundID, adminID)
}
