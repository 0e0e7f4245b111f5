// internal/repositories/event_repository.go
// Event data access layer.
//
// Grounded on internal/repositories/tournament_repository.go's manual-SQL
// CRUD + dynamic-WHERE List shape.

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eventengine/internal/models"
)

var ErrNotFound = errors.New("not found")

// EventRepository handles event data access
type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, e *models.Event) error {
	query := `
		INSERT INTO events (
			slug, event_code, title, description, community_id, poster_url,
			whatsapp_url, event_type, format, template, participant_mode,
			round_mode, round_count, team_min_size, team_max_size, status,
			registration_open, visible, open_for, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
	`
	res, err := r.db.ExecContext(ctx, query,
		e.Slug, e.EventCode, e.Title, e.Description, e.CommunityID, e.PosterURL,
		e.WhatsappURL, e.EventType, e.Format, e.Template, e.ParticipantMode,
		e.RoundModeValue, e.RoundCount, e.TeamMinSize, e.TeamMaxSize, e.Status,
		e.RegistrationOpen, e.Visible, e.OpenForAudience,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = int(id)
	return nil
}

const eventColumns = `
	id, slug, event_code, title, description, community_id, poster_url,
	whatsapp_url, event_type, format, template, participant_mode,
	round_mode, round_count, team_min_size, team_max_size, status,
	registration_open, visible, open_for, created_at, updated_at
`

func scanEvent(row interface{ Scan(...interface{}) error }) (*models.Event, error) {
	var e models.Event
	err := row.Scan(
		&e.ID, &e.Slug, &e.EventCode, &e.Title, &e.Description, &e.CommunityID, &e.PosterURL,
		&e.WhatsappURL, &e.EventType, &e.Format, &e.Template, &e.ParticipantMode,
		&e.RoundModeValue, &e.RoundCount, &e.TeamMinSize, &e.TeamMaxSize, &e.Status,
		&e.RegistrationOpen, &e.Visible, &e.OpenForAudience, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM events WHERE id = ?", id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

func (r *EventRepository) GetBySlug(ctx context.Context, slug string) (*models.Event, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM events WHERE slug = ?", slug)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

func (r *EventRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM events WHERE slug = ?)", slug).Scan(&exists)
	return exists, err
}

func (r *EventRepository) MaxID(ctx context.Context) (int, error) {
	var maxID sql.NullInt64
	err := r.db.QueryRowContext(ctx, "SELECT MAX(id) FROM events").Scan(&maxID)
	if err != nil {
		return 0, err
	}
	return int(maxID.Int64), nil
}

func (r *EventRepository) Update(ctx context.Context, e *models.Event) error {
	query := `
		UPDATE events SET
			title = ?, description = ?, poster_url = ?, whatsapp_url = ?,
			event_type = ?, format = ?, template = ?, round_count = ?,
			team_min_size = ?, team_max_size = ?, status = ?,
			registration_open = ?, visible = ?, open_for = ?, updated_at = NOW()
		WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, query,
		e.Title, e.Description, e.PosterURL, e.WhatsappURL,
		e.EventType, e.Format, e.Template, e.RoundCount,
		e.TeamMinSize, e.TeamMaxSize, e.Status,
		e.RegistrationOpen, e.Visible, e.OpenForAudience, e.ID,
	)
	return err
}

func (r *EventRepository) SetRoundCount(ctx context.Context, eventID, count int) error {
	_, err := r.db.ExecContext(ctx, "UPDATE events SET round_count = ? WHERE id = ?", count, eventID)
	return err
}

// EventListFilter mirrors the teacher's dynamic-WHERE ListFilter shape.
type EventListFilter struct {
	Page    int
	Limit   int
	Status  string
	Public  bool
	Search  string
}

func (r *EventRepository) List(ctx context.Context, filter EventListFilter) ([]*models.Event, int, error) {
	var conditions []string
	var args []interface{}

	baseQuery := "FROM events WHERE 1=1"
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Public {
		conditions = append(conditions, "visible = TRUE")
	}
	if filter.Search != "" {
		conditions = append(conditions, "(title LIKE ? OR description LIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	selectQuery := "SELECT " + eventColumns + " " + baseQuery + " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.QueryContext(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]*models.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}
