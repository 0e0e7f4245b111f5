// internal/repositories/panel_repository.go
// Panel Coordinator data access, per spec.md §4.4.

package repositories

import (
	"context"
	"database/sql"
	"errors"

	"eventengine/internal/models"
)

type PanelRepository struct {
	db *sql.DB
}

func NewPanelRepository(db *sql.DB) *PanelRepository {
	return &PanelRepository{db: db}
}

const panelColumns = `id, event_id, round_id, panel_no, display_name, meeting_link, meeting_time, instructions, created_at`

func scanPanel(row interface{ Scan(...interface{}) error }) (*models.Panel, error) {
	var p models.Panel
	err := row.Scan(&p.ID, &p.EventID, &p.RoundID, &p.PanelNo, &p.DisplayName, &p.MeetingLink, &p.MeetingTime, &p.Instructions, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PanelRepository) CreateWithTx(ctx context.Context, tx *sql.Tx, p *models.Panel) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO panels (event_id, round_id, panel_no, display_name, meeting_link, meeting_time, instructions, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, NOW())`,
		p.EventID, p.RoundID, p.PanelNo, p.DisplayName, p.MeetingLink, p.MeetingTime, p.Instructions,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = int(id)
	return nil
}

func (r *PanelRepository) GetByID(ctx context.Context, id int) (*models.Panel, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+panelColumns+" FROM panels WHERE id = ?", id)
	p, err := scanPanel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *PanelRepository) ListByRound(ctx context.Context, roundID int) ([]*models.Panel, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+panelColumns+" FROM panels WHERE round_id = ? ORDER BY panel_no", roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	panels := make([]*models.Panel, 0)
	for rows.Next() {
		p, err := scanPanel(rows)
		if err != nil {
			return nil, err
		}
		panels = append(panels, p)
	}
	return panels, rows.Err()
}

func (r *PanelRepository) DeleteByRoundWithTx(ctx context.Context, tx *sql.Tx, roundID int) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM panels WHERE round_id = ?", roundID)
	return err
}

// UpdateWithTx rewrites a single panel's editable fields, used by
// update_panels for panels the caller referenced by id.
func (r *PanelRepository) UpdateWithTx(ctx context.Context, tx *sql.Tx, p *models.Panel) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE panels SET panel_no = ?, display_name = ?, meeting_link = ?, meeting_time = ?, instructions = ?
		WHERE id = ?
	`, p.PanelNo, p.DisplayName, p.MeetingLink, p.MeetingTime, p.Instructions, p.ID)
	return err
}

// DeleteWithTx removes a single panel, used by update_panels when a caller
// omits a previously-existing panel from the payload.
func (r *PanelRepository) DeleteWithTx(ctx context.Context, tx *sql.Tx, id int) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM panels WHERE id = ?", id)
	return err
}

// ReplaceMembersWithTx atomically swaps a panel's member set: deletes
// members not present in adminIDs, inserts ones that are missing.
func (r *PanelRepository) ReplaceMembersWithTx(ctx context.Context, tx *sql.Tx, panelID int, adminIDs []int) error {
	rows, err := tx.QueryContext(ctx, "SELECT admin_id FROM panel_members WHERE panel_id = ?", panelID)
	if err != nil {
		return err
	}
	current := make(map[int]bool)
	for rows.Next() {
		var adminID int
		if err := rows.Scan(&adminID); err != nil {
			rows.Close()
			return err
		}
		current[adminID] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	wanted := make(map[int]bool, len(adminIDs))
	for _, id := range adminIDs {
		wanted[id] = true
	}

	for adminID := range current {
		if !wanted[adminID] {
			if _, err := tx.ExecContext(ctx, "DELETE FROM panel_members WHERE panel_id = ? AND admin_id = ?", panelID, adminID); err != nil {
				return err
			}
		}
	}
	for adminID := range wanted {
		if !current[adminID] {
			if _, err := tx.ExecContext(ctx, "INSERT INTO panel_members (panel_id, admin_id) VALUES (?, ?)", panelID, adminID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *PanelRepository) AddMemberWithTx(ctx context.Context, tx *sql.Tx, m *models.PanelMember) error {
	res, err := tx.ExecContext(ctx, "INSERT INTO panel_members (panel_id, admin_id) VALUES (?, ?)", m.PanelID, m.AdminID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = int(id)
	return nil
}

func (r *PanelRepository) ListMembers(ctx context.Context, panelID int) ([]*models.PanelMember, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, panel_id, admin_id FROM panel_members WHERE panel_id = ?", panelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]*models.PanelMember, 0)
	for rows.Next() {
		var m models.PanelMember
		if err := rows.Scan(&m.ID, &m.PanelID, &m.AdminID); err != nil {
			return nil, err
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}

// IsJudgeOnPanel checks whether an admin sits on any panel of a round.
func (r *PanelRepository) IsJudgeOnPanel(ctx context.Context, roundID, adminID int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM panel_members pm
			JOIN panels p ON p.id = pm.panel_id
			WHERE p.round_id = ? AND pm.admin_id = ?
		)
	`, roundID, adminID).Scan(&exists)
	return exists, err
}

const panelAssignmentColumns = `id, event_id, round_id, panel_id, entity_type, entity_id, created_at, updated_at`

func scanPanelAssignment(row interface{ Scan(...interface{}) error }) (*models.PanelAssignment, error) {
	var a models.PanelAssignment
	err := row.Scan(&a.ID, &a.EventID, &a.RoundID, &a.PanelID, &a.EntityType, &a.EntityID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PanelRepository) UpsertAssignmentWithTx(ctx context.Context, tx *sql.Tx, a *models.PanelAssignment) error {
	query := `
		INSERT INTO panel_assignments (event_id, round_id, panel_id, entity_type, entity_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, NOW(), NOW())
		ON DUPLICATE KEY UPDATE panel_id = VALUES(panel_id), updated_at = NOW()
	`
	_, err := tx.ExecContext(ctx, query, a.EventID, a.RoundID, a.PanelID, a.EntityType, a.EntityID)
	return err
}

// DeleteAssignmentWithTx removes an entity's panel assignment for a round,
// used by set_assignments when panel_id is null.
func (r *PanelRepository) DeleteAssignmentWithTx(ctx context.Context, tx *sql.Tx, roundID int, entityType models.EntityType, entityID int) error {
	_, err := tx.ExecContext(ctx,
		"DELETE FROM panel_assignments WHERE round_id = ? AND entity_type = ? AND entity_id = ?",
		roundID, entityType, entityID)
	return err
}

func (r *PanelRepository) GetAssignment(ctx context.Context, roundID int, entityType models.EntityType, entityID int) (*models.PanelAssignment, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+panelAssignmentColumns+" FROM panel_assignments WHERE round_id = ? AND entity_type = ? AND entity_id = ?",
		roundID, entityType, entityID)
	a, err := scanPanelAssignment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

func (r *PanelRepository) ListAssignmentsByPanel(ctx context.Context, panelID int) ([]*models.PanelAssignment, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+panelAssignmentColumns+" FROM panel_assignments WHERE panel_id = ?", panelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]*models.PanelAssignment, 0)
	for rows.Next() {
		a, err := scanPanelAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (r *PanelRepository) ListAssignmentsByRound(ctx context.Context, roundID int) ([]*models.PanelAssignment, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+panelAssignmentColumns+" FROM panel_assignments WHERE round_id = ?", roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]*models.PanelAssignment, 0)
	for rows.Next() {
		a, err := scanPanelAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}
