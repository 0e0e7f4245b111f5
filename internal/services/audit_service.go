// internal/services/audit_service.go
// Audit & Log Sink, per spec.md §4.9.
//
// MySQL is the authoritative, queryable store; the Mongo mirror (when
// configured) is best-effort overflow for long-retention queries and never
// blocks or fails the admin action that triggered the log entry.

package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"eventengine/internal/models"
	"eventengine/internal/repositories"
)

type AuditService struct {
	repos  *repositories.Container
	store  ObjectStore
	logger zerolog.Logger
}

func NewAuditService(repos *repositories.Container, store ObjectStore, logger zerolog.Logger) *AuditService {
	return &AuditService{repos: repos, store: store, logger: logger}
}

// LogActionInput describes one admin action worth recording.
type LogActionInput struct {
	EventSlug  string
	EventID    *int
	AdminID    int
	AdminRegno string
	AdminName  string
	Action     string
	Method     string
	Path       string
	Meta       models.LogMeta
}

func (s *AuditService) LogAction(ctx context.Context, in LogActionInput) error {
	entry := &models.EventLog{
		EventSlug:  in.EventSlug,
		EventID:    in.EventID,
		AdminID:    in.AdminID,
		AdminRegno: in.AdminRegno,
		AdminName:  in.AdminName,
		Action:     in.Action,
		Method:     in.Method,
		Path:       in.Path,
		Meta:       in.Meta,
	}
	if err := s.repos.EventLogs.Create(ctx, entry); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	entry.CreatedAt = time.Now()

	if s.repos.EventLogMirror != nil {
		if err := s.repos.EventLogMirror.Mirror(ctx, entry); err != nil {
			s.logger.Warn().Err(err).Str("action", in.Action).Msg("failed to mirror audit log to overflow store")
		}
	}
	return nil
}

func (s *AuditService) ListByEvent(ctx context.Context, eventSlug string, page, limit int) ([]*models.EventLog, int, error) {
	return s.repos.EventLogs.ListByEvent(ctx, eventSlug, page, limit)
}

// ScoreSnapshotRow is one line of a freeze/shortlist audit CSV.
type ScoreSnapshotRow struct {
	EntityType string
	EntityID   int
	Label      string
	TotalScore float64
	Normalized float64
	IsPresent  bool
}

// BuildScoreSnapshotCSV renders a round's scores as a CSV byte payload, the
// format the original uploads on every freeze and shortlist action.
func BuildScoreSnapshotCSV(rows []ScoreSnapshotRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"entity_type", "entity_id", "label", "total_score", "normalized_score", "is_present"}); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write([]string{
			r.EntityType,
			strconv.Itoa(r.EntityID),
			r.Label,
			strconv.FormatFloat(r.TotalScore, 'f', 2, 64),
			strconv.FormatFloat(r.Normalized, 'f', 2, 64),
			strconv.FormatBool(r.IsPresent),
		}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UploadAuditSnapshot writes a CSV snapshot to the object store under the
// audit key scheme of spec.md §6 and records the resulting URL in an
// EventLog entry.
func (s *AuditService) UploadAuditSnapshot(ctx context.Context, eventSlug, eventCode string, eventID int, round *models.Round, auditKind, auditType string, adminID int, adminRegno, adminName string, rows []ScoreSnapshotRow) (string, error) {
	data, err := BuildScoreSnapshotCSV(rows)
	if err != nil {
		return "", fmt.Errorf("build snapshot csv: %w", err)
	}

	key := AuditObjectKey(eventSlug, auditKind, round.RoundNo, eventCode, auditType, adminRegno, time.Now())
	url, err := s.store.Put(ctx, key, data, "text/csv")
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}

	err = s.LogAction(ctx, LogActionInput{
		EventSlug:  eventSlug,
		EventID:    &eventID,
		AdminID:    adminID,
		AdminRegno: adminRegno,
		AdminName:  adminName,
		Action:     auditType + "_snapshot",
		Method:     "SYSTEM",
		Path:       fmt.Sprintf("/rounds/%d/%s", round.ID, auditType),
		Meta:       models.LogMeta{"snapshot_url": url, "round_no": round.RoundNo, "row_count": len(rows)},
	})
	return url, err
}
