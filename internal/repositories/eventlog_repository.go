// internal/repositories/eventlog_repository.go
// Audit & Log Sink data access, per spec.md §4.9. MySQL is the primary,
// authoritative store; EventLogMongoRepository mirrors writes into Mongo
// as an optional long-retention overflow (see eventlog_mongo_repository.go).

package repositories

import (
	"context"
	"database/sql"
	"errors"

	"eventengine/internal/models"
)

type EventLogRepository struct {
	db *sql.DB
}

func NewEventLogRepository(db *sql.DB) *EventLogRepository {
	return &EventLogRepository{db: db}
}

const eventLogColumns = `
	id, event_slug, event_id, admin_id, admin_regno, admin_name, action,
	method, path, meta, created_at
`

func scanEventLog(row interface{ Scan(...interface{}) error }) (*models.EventLog, error) {
	var l models.EventLog
	err := row.Scan(
		&l.ID, &l.EventSlug, &l.EventID, &l.AdminID, &l.AdminRegno, &l.AdminName, &l.Action,
		&l.Method, &l.Path, &l.Meta, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *EventLogRepository) Create(ctx context.Context, l *models.EventLog) error {
	query := `
		INSERT INTO event_logs (
			event_slug, event_id, admin_id, admin_regno, admin_name, action,
			method, path, meta, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NOW())
	`
	res, err := r.db.ExecContext(ctx, query,
		l.EventSlug, l.EventID, l.AdminID, l.AdminRegno, l.AdminName, l.Action, l.Method, l.Path, l.Meta,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = int(id)
	return nil
}

func (r *EventLogRepository) ListByEvent(ctx context.Context, eventSlug string, page, limit int) ([]*models.EventLog, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM event_logs WHERE event_slug = ?", eventSlug).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+eventLogColumns+" FROM event_logs WHERE event_slug = ? ORDER BY created_at DESC LIMIT ? OFFSET ?",
		eventSlug, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	logs := make([]*models.EventLog, 0)
	for rows.Next() {
		l, err := scanEventLog(rows)
		if err != nil {
			return nil, 0, err
		}
		logs = append(logs, l)
	}
	return logs, total, rows.Err()
}

type SystemConfigRepository struct {
	db *sql.DB
}

func NewSystemConfigRepository(db *sql.DB) *SystemConfigRepository {
	return &SystemConfigRepository{db: db}
}

func (r *SystemConfigRepository) Get(ctx context.Context, key string) (*models.SystemConfig, error) {
	var c models.SystemConfig
	err := r.db.QueryRowContext(ctx,
		"SELECT `key`, value, recruit_url, updated_at FROM system_config WHERE `key` = ?", key,
	).Scan(&c.Key, &c.Value, &c.RecruitURL, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *SystemConfigRepository) Set(ctx context.Context, c *models.SystemConfig) error {
	query := `
		INSERT INTO system_config (` + "`key`" + `, value, recruit_url, updated_at)
		VALUES (?, ?, ?, NOW())
		ON DUPLICATE KEY UPDATE value = VALUES(value), recruit_url = VALUES(recruit_url), updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query, c.Key, c.Value, c.RecruitURL)
	return err
}

func (r *SystemConfigRepository) All(ctx context.Context) (map[string]*models.SystemConfig, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT `key`, value, recruit_url, updated_at FROM system_config")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	configs := make(map[string]*models.SystemConfig)
	for rows.Next() {
		var c models.SystemConfig
		if err := rows.Scan(&c.Key, &c.Value, &c.RecruitURL, &c.UpdatedAt); err != nil {
			return nil, err
		}
		configs[c.Key] = &c
	}
	return configs, rows.Err()
}
