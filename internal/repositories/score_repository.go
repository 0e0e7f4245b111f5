// internal/repositories/score_repository.go
// Score Store data access, per spec.md §4.5.

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eventengine/internal/models"
)

type ScoreRepository struct {
	db *sql.DB
}

func NewScoreRepository(db *sql.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

const scoreColumns = `
	id, event_id, round_id, entity_type, entity_id, criteria_scores,
	total_score, normalized_score, is_present, created_at, updated_at
`

func scanScore(row interface{ Scan(...interface{}) error }) (*models.Score, error) {
	var s models.Score
	err := row.Scan(
		&s.ID, &s.EventID, &s.RoundID, &s.EntityType, &s.EntityID, &s.CriteriaScores,
		&s.TotalScore, &s.NormalizedScore, &s.IsPresent, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ScoreRepository) GetWithTx(ctx context.Context, tx *sql.Tx, roundID int, entityType models.EntityType, entityID int) (*models.Score, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+scoreColumns+" FROM scores WHERE round_id = ? AND entity_type = ? AND entity_id = ? FOR UPDATE",
		roundID, entityType, entityID)
	s, err := scanScore(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

func (r *ScoreRepository) Get(ctx context.Context, roundID int, entityType models.EntityType, entityID int) (*models.Score, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+scoreColumns+" FROM scores WHERE round_id = ? AND entity_type = ? AND entity_id = ?",
		roundID, entityType, entityID)
	s, err := scanScore(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

func (r *ScoreRepository) UpsertWithTx(ctx context.Context, tx *sql.Tx, s *models.Score) error {
	query := `
		INSERT INTO scores (
			event_id, round_id, entity_type, entity_id, criteria_scores,
			total_score, normalized_score, is_present, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
		ON DUPLICATE KEY UPDATE
			criteria_scores = VALUES(criteria_scores),
			total_score = VALUES(total_score),
			normalized_score = VALUES(normalized_score),
			is_present = VALUES(is_present),
			updated_at = NOW()
	`
	_, err := tx.ExecContext(ctx, query,
		s.EventID, s.RoundID, s.EntityType, s.EntityID, s.CriteriaScores,
		s.TotalScore, s.NormalizedScore, s.IsPresent,
	)
	if err != nil {
		return err
	}
	return tx.QueryRowContext(ctx,
		"SELECT id FROM scores WHERE round_id = ? AND entity_type = ? AND entity_id = ?",
		s.RoundID, s.EntityType, s.EntityID,
	).Scan(&s.ID)
}

func (r *ScoreRepository) ListByRound(ctx context.Context, roundID int) ([]*models.Score, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+scoreColumns+" FROM scores WHERE round_id = ?", roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make([]*models.Score, 0)
	for rows.Next() {
		s, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

func (r *ScoreRepository) ListByRoundWithTx(ctx context.Context, tx *sql.Tx, roundID int) ([]*models.Score, error) {
	rows, err := tx.QueryContext(ctx, "SELECT "+scoreColumns+" FROM scores WHERE round_id = ? FOR UPDATE", roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make([]*models.Score, 0)
	for rows.Next() {
		s, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// SumByEvent aggregates each entity's event-wide score total, grounded on
// the original's event-wide SUM aggregation used by shortlisting and the
// leaderboard. Individuals sum normalized_score (comparable across rounds
// with different criteria weights); teams sum the raw total_score, per
// spec.md §4.7/§4.4.
func (r *ScoreRepository) SumByEvent(ctx context.Context, eventID int) (map[string]float64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT entity_type, entity_id,
			SUM(CASE WHEN entity_type = 'TEAM' THEN total_score ELSE normalized_score END)
		FROM scores WHERE event_id = ?
		GROUP BY entity_type, entity_id
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[string]float64)
	for rows.Next() {
		var entityType models.EntityType
		var entityID int
		var sum float64
		if err := rows.Scan(&entityType, &entityID, &sum); err != nil {
			return nil, err
		}
		totals[scoreKey(entityType, entityID)] = sum
	}
	return totals, rows.Err()
}

// SumByEventRounds aggregates each entity's score total over a restricted
// set of rounds, used by the leaderboard's eligible-rounds filter. Same
// per-entity-type aggregation rule as SumByEvent.
func (r *ScoreRepository) SumByEventRounds(ctx context.Context, eventID int, roundIDs []int) (map[string]float64, error) {
	totals := make(map[string]float64)
	if len(roundIDs) == 0 {
		return totals, nil
	}
	query, args := inClauseQuery(`
		SELECT entity_type, entity_id,
			SUM(CASE WHEN entity_type = 'TEAM' THEN total_score ELSE normalized_score END)
		FROM scores WHERE event_id = ? AND round_id IN (%s)
		GROUP BY entity_type, entity_id
	`, eventID, roundIDs)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var entityType models.EntityType
		var entityID int
		var sum float64
		if err := rows.Scan(&entityType, &entityID, &sum); err != nil {
			return nil, err
		}
		totals[scoreKey(entityType, entityID)] = sum
	}
	return totals, rows.Err()
}

// CountPresentByEventRounds counts, per entity, distinct rounds (within
// roundIDs) where the score row has is_present = true ("rounds
// participated" per spec.md §4.8).
func (r *ScoreRepository) CountPresentByEventRounds(ctx context.Context, eventID int, roundIDs []int) (map[string]int, error) {
	counts := make(map[string]int)
	if len(roundIDs) == 0 {
		return counts, nil
	}
	query, args := inClauseQuery(`
		SELECT entity_type, entity_id, COUNT(DISTINCT round_id)
		FROM scores WHERE event_id = ? AND round_id IN (%s) AND is_present = TRUE
		GROUP BY entity_type, entity_id
	`, eventID, roundIDs)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var entityType models.EntityType
		var entityID, count int
		if err := rows.Scan(&entityType, &entityID, &count); err != nil {
			return nil, err
		}
		counts[scoreKey(entityType, entityID)] = count
	}
	return counts, rows.Err()
}

// CountAttendanceByEventRounds counts, per entity, distinct rounds (within
// roundIDs) with an attendance row marked present ("attendance count" per
// spec.md §4.8, distinct from scores.is_present).
func (r *ScoreRepository) CountAttendanceByEventRounds(ctx context.Context, eventID int, roundIDs []int) (map[string]int, error) {
	counts := make(map[string]int)
	if len(roundIDs) == 0 {
		return counts, nil
	}
	query, args := inClauseQuery(`
		SELECT entity_type, entity_id, COUNT(DISTINCT round_id)
		FROM attendance WHERE event_id = ? AND round_id IN (%s) AND is_present = TRUE
		GROUP BY entity_type, entity_id
	`, eventID, roundIDs)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var entityType models.EntityType
		var entityID, count int
		if err := rows.Scan(&entityType, &entityID, &count); err != nil {
			return nil, err
		}
		counts[scoreKey(entityType, entityID)] = count
	}
	return counts, rows.Err()
}

// inClauseQuery expands a %s placeholder into len(ids) "?" marks and
// returns eventID followed by each id as the positional args.
func inClauseQuery(template string, eventID int, ids []int) (string, []interface{}) {
	placeholders := make([]string, len(ids))
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, eventID)
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}
	return fmt.Sprintf(template, strings.Join(placeholders, ",")), args
}

func scoreKey(entityType models.EntityType, entityID int) string {
	return string(entityType) + ":" + itoa(entityID)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

const attendanceColumns = `
	id, event_id, round_id, entity_type, entity_id, is_present,
	marked_by_user_id, created_at, updated_at
`

func scanAttendance(row interface{ Scan(...interface{}) error }) (*models.Attendance, error) {
	var a models.Attendance
	err := row.Scan(
		&a.ID, &a.EventID, &a.RoundID, &a.EntityType, &a.EntityID, &a.IsPresent,
		&a.MarkedByID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ScoreRepository) UpsertAttendanceWithTx(ctx context.Context, tx *sql.Tx, a *models.Attendance) error {
	query := `
		INSERT INTO attendance (
			event_id, round_id, entity_type, entity_id, is_present,
			marked_by_user_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, NOW(), NOW())
		ON DUPLICATE KEY UPDATE
			is_present = VALUES(is_present),
			marked_by_user_id = VALUES(marked_by_user_id),
			updated_at = NOW()
	`
	_, err := tx.ExecContext(ctx, query, a.EventID, a.RoundID, a.EntityType, a.EntityID, a.IsPresent, a.MarkedByID)
	return err
}

func (r *ScoreRepository) GetAttendance(ctx context.Context, roundID int, entityType models.EntityType, entityID int) (*models.Attendance, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+attendanceColumns+" FROM attendance WHERE round_id = ? AND entity_type = ? AND entity_id = ?",
		roundID, entityType, entityID)
	a, err := scanAttendance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

func (r *ScoreRepository) ListAttendanceByRound(ctx context.Context, roundID int) ([]*models.Attendance, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+attendanceColumns+" FROM attendance WHERE round_id = ?", roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*models.Attendance, 0)
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, a)
	}
	return records, rows.Err()
}
