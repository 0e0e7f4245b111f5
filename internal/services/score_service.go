// internal/services/score_service.go
// Score Store, per spec.md §4.5.
//
// Grounded on the original's save_scores: validates each criterion mark is
// within [0, max_marks], requires a panel assignment when the round is in
// panel mode, mirrors attendance on every save, and recomputes the
// round-wide normalized scores after any individual change.

package services

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"eventengine/internal/apierr"
	"eventengine/internal/models"
	"eventengine/internal/repositories"
)

type ScoreService struct {
	repos    *repositories.Container
	db       *sql.DB
	identity IdentityDirectory
	logger   zerolog.Logger
}

func NewScoreService(repos *repositories.Container, db *sql.DB, identity IdentityDirectory, logger zerolog.Logger) *ScoreService {
	return &ScoreService{repos: repos, db: db, identity: identity, logger: logger}
}

// SaveScoreInput is one judge's submission for one entity in one round.
type SaveScoreInput struct {
	EntityType models.EntityType
	EntityID   int
	Marks      models.CriteriaScores
	IsPresent  bool
	MarkedBy   *int
}

func validateCriteria(criteria models.Criteria, marks models.CriteriaScores) error {
	maxByName := make(map[string]float64, len(criteria))
	for _, c := range criteria {
		maxByName[c.Name] = c.MaxMarks
	}
	for name, value := range marks {
		max, ok := maxByName[name]
		if !ok {
			return apierr.New(apierr.ScoreRange, fmt.Sprintf("unknown criterion %q", name))
		}
		if value < 0 || value > max {
			return apierr.New(apierr.ScoreRange, fmt.Sprintf("criterion %q must be between 0 and %v", name, max))
		}
	}
	return nil
}

// Save validates and persists one entity's score, requiring a panel
// assignment first when the round runs in panel mode. The target entity
// must hold an ACTIVE registration for the round's event; eliminated
// entities are refused a score entry. When is_present is false, marks are
// coerced to all-zero rather than trusting whatever the caller sent.
func (s *ScoreService) Save(ctx context.Context, round *models.Round, in SaveScoreInput) (*models.Score, error) {
	if round.IsFrozen {
		return nil, apierr.New(apierr.RoundFrozen, "round is frozen; scores are locked")
	}
	if in.IsPresent {
		if err := validateCriteria(round.Criteria, in.Marks); err != nil {
			return nil, err
		}
	} else {
		in.Marks = models.CriteriaScores{}
	}
	if round.PanelModeEnabled {
		if _, err := s.repos.Panels.GetAssignment(ctx, round.ID, in.EntityType, in.EntityID); err == repositories.ErrNotFound {
			return nil, apierr.New(apierr.PanelRequired, "entity has no panel assignment for this round")
		} else if err != nil {
			return nil, fmt.Errorf("check panel assignment: %w", err)
		}
	}

	reg, err := s.repos.Registrations.GetByEntity(ctx, round.EventID, in.EntityType, in.EntityID)
	if err == repositories.ErrNotFound {
		return nil, apierr.New(apierr.NotFound, "entity not registered for this event")
	} else if err != nil {
		return nil, fmt.Errorf("check registration: %w", err)
	}
	if reg.Status != models.RegistrationActive {
		return nil, apierr.New(apierr.BadRounds, "entity is eliminated and cannot receive further scores")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	total := in.Marks.Sum()
	score := &models.Score{
		EventID:         round.EventID,
		RoundID:         round.ID,
		EntityType:      in.EntityType,
		EntityID:        in.EntityID,
		CriteriaScores:  in.Marks,
		TotalScore:      total,
		NormalizedScore: models.NormalizedScore(total, round.Criteria.MaxTotal(), in.IsPresent),
		IsPresent:       in.IsPresent,
	}
	if err := s.repos.Scores.UpsertWithTx(ctx, tx, score); err != nil {
		return nil, fmt.Errorf("upsert score: %w", err)
	}

	attendance := &models.Attendance{
		EventID:    round.EventID,
		RoundID:    round.ID,
		EntityType: in.EntityType,
		EntityID:   in.EntityID,
		IsPresent:  in.IsPresent,
		MarkedByID: in.MarkedBy,
	}
	if err := s.repos.Scores.UpsertAttendanceWithTx(ctx, tx, attendance); err != nil {
		return nil, fmt.Errorf("upsert attendance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit score: %w", err)
	}
	return score, nil
}

// RecomputeRound recomputes normalized_score for every score row of a round
// against the round's current criteria, used after criteria change or on
// freeze. Grounded on the original's _recompute_round_normalized_scores.
func (s *ScoreService) RecomputeRound(ctx context.Context, tx *sql.Tx, round *models.Round) error {
	scores, err := s.repos.Scores.ListByRoundWithTx(ctx, tx, round.ID)
	if err != nil {
		return fmt.Errorf("list scores: %w", err)
	}
	maxTotal := round.Criteria.MaxTotal()
	for _, score := range scores {
		score.NormalizedScore = models.NormalizedScore(score.TotalScore, maxTotal, score.IsPresent)
		if err := s.repos.Scores.UpsertWithTx(ctx, tx, score); err != nil {
			return fmt.Errorf("recompute score %d: %w", score.ID, err)
		}
	}
	return nil
}

func (s *ScoreService) ListByRound(ctx context.Context, roundID int) ([]*models.Score, error) {
	return s.repos.Scores.ListByRound(ctx, roundID)
}

func (s *ScoreService) Get(ctx context.Context, roundID int, entityType models.EntityType, entityID int) (*models.Score, error) {
	score, err := s.repos.Scores.Get(ctx, roundID, entityType, entityID)
	if err == repositories.ErrNotFound {
		return nil, apierr.New(apierr.NotFound, "no score recorded")
	}
	return score, err
}

// ImportRowBucket tags which bucket an import_scores row landed in.
type ImportRowBucket string

const (
	ImportIdentified    ImportRowBucket = "identified"
	ImportMismatched    ImportRowBucket = "mismatched"
	ImportUnidentified  ImportRowBucket = "unidentified"
	ImportOtherRequired ImportRowBucket = "other_required"
)

// ImportRow is one parsed spreadsheet row with its bucket and, for rows that
// resolved to an entity, the score it would write.
type ImportRow struct {
	RowNum     int
	IDValue    string
	Name       string
	Bucket     ImportRowBucket
	Error      string
	EntityType models.EntityType
	EntityID   int
}

// ImportScoresResult is the import_scores response: bucketed rows plus
// whether a write actually happened (false in preview mode).
type ImportScoresResult struct {
	Rows    []ImportRow
	Written bool
}

// parseCellRatio accepts either a plain number or an "a/b" ratio string
// scaled by max_marks, per spec.md §4.5.
func parseCellRatio(raw string, maxMarks float64) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if idx := strings.Index(raw, "/"); idx >= 0 {
		num, err1 := strconv.ParseFloat(strings.TrimSpace(raw[:idx]), 64)
		den, err2 := strconv.ParseFloat(strings.TrimSpace(raw[idx+1:]), 64)
		if err1 != nil || err2 != nil || den == 0 {
			return 0, fmt.Errorf("invalid ratio %q", raw)
		}
		return (num / den) * maxMarks, nil
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric value %q", raw)
	}
	return val, nil
}

func parseCellBool(raw string, def bool) bool {
	raw = strings.TrimSpace(strings.ToLower(raw))
	switch raw {
	case "":
		return def
	case "1", "true", "yes", "y", "present":
		return true
	case "0", "false", "no", "n", "absent":
		return false
	default:
		return def
	}
}

func cellIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// ImportScores parses an XLSX score sheet and, unless preview is true,
// writes every identified/mismatched row as a score (and mirrors attendance)
// the same way Save does. The first sheet's header must carry an id column
// (Register Number for INDIVIDUAL events, Team Code for TEAM events), an
// optional name column, an optional Present column, and one column per
// round criterion.
func (s *ScoreService) ImportScores(ctx context.Context, event *models.Event, round *models.Round, data []byte, preview bool, markedBy *int) (*ImportScoresResult, error) {
	if round.IsFrozen {
		return nil, apierr.New(apierr.RoundFrozen, "round is frozen; scores are locked")
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, apierr.New(apierr.BadFile, "could not read spreadsheet: "+err.Error())
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apierr.New(apierr.BadFile, "spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apierr.New(apierr.BadFile, "could not read first sheet: "+err.Error())
	}
	if len(rows) == 0 {
		return nil, apierr.New(apierr.BadFile, "first sheet is empty")
	}

	header := rows[0]
	idHeader := "Register Number"
	nameHeader := "Name"
	if event.ParticipantMode == models.ParticipantModeTeam {
		idHeader = "Team Code"
		nameHeader = "Team Name"
	}
	idIdx := cellIndex(header, idHeader)
	if idIdx < 0 {
		return nil, apierr.New(apierr.BadFile, fmt.Sprintf("missing required column %q", idHeader))
	}
	nameIdx := cellIndex(header, nameHeader)
	presentIdx := cellIndex(header, "Present")

	criterionIdx := make(map[string]int, len(round.Criteria))
	for _, c := range round.Criteria {
		criterionIdx[c.Name] = cellIndex(header, c.Name)
	}

	result := &ImportScoresResult{}
	for i, raw := range rows[1:] {
		rowNum := i + 2
		idValue := strings.TrimSpace(cellAt(raw, idIdx))
		if idValue == "" {
			continue
		}
		name := strings.TrimSpace(cellAt(raw, nameIdx))
		isPresent := parseCellBool(cellAt(raw, presentIdx), true)

		entityType := models.EntityUser
		if event.ParticipantMode == models.ParticipantModeTeam {
			entityType = models.EntityTeam
		}

		entityID, canonicalName, found, err := s.resolveImportEntity(ctx, event, entityType, idValue)
		if err != nil {
			return nil, fmt.Errorf("resolve row %d: %w", rowNum, err)
		}
		if !found {
			result.Rows = append(result.Rows, ImportRow{RowNum: rowNum, IDValue: idValue, Name: name, Bucket: ImportUnidentified})
			continue
		}

		marks := models.CriteriaScores{}
		var parseErr error
		if isPresent {
			for _, c := range round.Criteria {
				cellVal := cellAt(raw, criterionIdx[c.Name])
				v, err := parseCellRatio(cellVal, c.MaxMarks)
				if err != nil {
					parseErr = fmt.Errorf("criterion %q: %w", c.Name, err)
					break
				}
				if v < 0 || v > c.MaxMarks {
					parseErr = fmt.Errorf("criterion %q out of range [0, %v]", c.Name, c.MaxMarks)
					break
				}
				marks[c.Name] = v
			}
		}
		if parseErr != nil {
			result.Rows = append(result.Rows, ImportRow{
				RowNum: rowNum, IDValue: idValue, Name: name, Bucket: ImportOtherRequired,
				Error: parseErr.Error(), EntityType: entityType, EntityID: entityID,
			})
			continue
		}

		bucket := ImportIdentified
		if name != "" && canonicalName != "" && !strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(canonicalName)) {
			bucket = ImportMismatched
		}
		row := ImportRow{RowNum: rowNum, IDValue: idValue, Name: name, Bucket: bucket, EntityType: entityType, EntityID: entityID}
		result.Rows = append(result.Rows, row)

		if preview || (bucket != ImportIdentified && bucket != ImportMismatched) {
			continue
		}
		if _, err := s.Save(ctx, round, SaveScoreInput{
			EntityType: entityType,
			EntityID:   entityID,
			Marks:      marks,
			IsPresent:  isPresent,
			MarkedBy:   markedBy,
		}); err != nil {
			result.Rows[len(result.Rows)-1].Bucket = ImportOtherRequired
			result.Rows[len(result.Rows)-1].Error = err.Error()
			continue
		}
		result.Written = true
	}

	return result, nil
}

// resolveImportEntity maps an import row's id-column value to a local
// entity id and, when available, a canonical display name to compare
// against the sheet's name column. Individuals resolve through the
// identity directory (an external collaborator); teams resolve against the
// local Team Graph directly, since team codes are issued by this module.
func (s *ScoreService) resolveImportEntity(ctx context.Context, event *models.Event, entityType models.EntityType, idValue string) (entityID int, canonicalName string, found bool, err error) {
	if entityType == models.EntityTeam {
		team, err := s.repos.Teams.GetByCode(ctx, event.ID, idValue)
		if err == repositories.ErrNotFound {
			return 0, "", false, nil
		}
		if err != nil {
			return 0, "", false, err
		}
		return team.ID, team.TeamName, true, nil
	}

	profile, err := s.identity.LookupByRegno(ctx, idValue)
	if err == ErrIdentityNotFound {
		return 0, "", false, nil
	}
	if err != nil {
		return 0, "", false, err
	}
	return profile.UserID, profile.Name, true, nil
}
