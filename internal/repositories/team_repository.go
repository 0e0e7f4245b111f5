// internal/repositories/team_repository.go
// Team Graph data access, per spec.md §4.2.

package repositories

import (
	"context"
	"database/sql"
	"errors"

	"eventengine/internal/models"
)

type TeamRepository struct {
	db *sql.DB
}

func NewTeamRepository(db *sql.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

const teamColumns = `id, event_id, team_code, team_name, team_lead_user_id, created_at`

func scanTeam(row interface{ Scan(...interface{}) error }) (*models.Team, error) {
	var t models.Team
	err := row.Scan(&t.ID, &t.EventID, &t.TeamCode, &t.TeamName, &t.TeamLeadUserID, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TeamRepository) CreateWithTx(ctx context.Context, tx *sql.Tx, t *models.Team) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO teams (event_id, team_code, team_name, team_lead_user_id, created_at) VALUES (?, ?, ?, ?, NOW())`,
		t.EventID, t.TeamCode, t.TeamName, t.TeamLeadUserID,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = int(id)
	return nil
}

func (r *TeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+teamColumns+" FROM teams WHERE id = ?", id)
	t, err := scanTeam(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (r *TeamRepository) GetByCode(ctx context.Context, eventID int, code string) (*models.Team, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+teamColumns+" FROM teams WHERE event_id = ? AND team_code = ?", eventID, code)
	t, err := scanTeam(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (r *TeamRepository) CodeExists(ctx context.Context, eventID int, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM teams WHERE event_id = ? AND team_code = ?)", eventID, code).Scan(&exists)
	return exists, err
}

func (r *TeamRepository) MemberCount(ctx context.Context, teamID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM team_members WHERE team_id = ?", teamID).Scan(&count)
	return count, err
}

func (r *TeamRepository) AddMemberWithTx(ctx context.Context, tx *sql.Tx, m *models.TeamMember) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO team_members (team_id, user_id, role, joined_at) VALUES (?, ?, ?, NOW())`,
		m.TeamID, m.UserID, m.Role,
	)
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

func (r *TeamRepository) GetMember(ctx context.Context, teamID, userID int) (*models.TeamMember, error) {
	var m models.TeamMember
	err := r.db.QueryRowContext(ctx,
		"SELECT id, team_id, user_id, role, joined_at FROM team_members WHERE team_id = ? AND user_id = ?",
		teamID, userID).Scan(&m.ID, &m.TeamID, &m.UserID, &m.Role, &m.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *TeamRepository) ListMembers(ctx context.Context, teamID int) ([]*models.TeamMember, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, team_id, user_id, role, joined_at FROM team_members WHERE team_id = ? ORDER BY joined_at", teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]*models.TeamMember, 0)
	for rows.Next() {
		var m models.TeamMember
		if err := rows.Scan(&m.ID, &m.TeamID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}

// FindTeamForUser returns the team a user belongs to within an event, if any.
func (r *TeamRepository) FindTeamForUser(ctx context.Context, eventID, userID int) (*models.Team, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT t.id, t.event_id, t.team_code, t.team_name, t.team_lead_user_id, t.created_at
		FROM teams t
		JOIN team_members tm ON tm.team_id = t.id
		WHERE t.event_id = ? AND tm.user_id = ?
	`, eventID, userID)
	t, err := scanTeam(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (r *TeamRepository) UpsertInviteWithTx(ctx context.Context, tx *sql.Tx, inv *models.TeamInvite) error {
	var existingID int
	var existingStatus models.InviteStatus
	err := tx.QueryRowContext(ctx,
		"SELECT id, status FROM team_invites WHERE event_id = ? AND team_id = ? AND invited_user_id = ?",
		inv.EventID, inv.TeamID, inv.InvitedUserID,
	).Scan(&existingID, &existingStatus)

	if errors.Is(err, sql.ErrNoRows) {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO team_invites (event_id, team_id, invited_user_id, invited_by_user_id, status, created_at)
			 VALUES (?, ?, ?, ?, ?, NOW())`,
			inv.EventID, inv.TeamID, inv.InvitedUserID, inv.InvitedByUserID, inv.Status,
		)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		inv.ID = int(id)
		return nil
	}
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE team_invites SET invited_by_user_id = ?, status = ? WHERE id = ?",
		inv.InvitedByUserID, models.InviteAccepted, existingID,
	)
	inv.ID = existingID
	inv.Status = models.InviteAccepted
	return err
}
