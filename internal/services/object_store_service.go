// internal/services/object_store_service.go
// ObjectStore is an external-collaborator contract (spec.md §1/§6): actual
// bytes live in someone else's bucket. LoggingObjectStore is a local-disk
// stand-in good enough to exercise every call site end to end.
//
// Grounded on config.StorageConfig (UploadPath fallback, mirroring the
// teacher's local-upload-path field) and spec.md §6's two key-naming
// schemes for submissions and audit snapshots.

package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"eventengine/internal/config"
)

// PresignedUpload is the opaque storage handle spec.md §4.6's presign
// operation returns: a presigned PUT URL the client uploads directly to,
// the eventual public/retrieval URL, the storage key, and the mime type
// the upload is locked to.
type PresignedUpload struct {
	UploadURL string `json:"upload_url"`
	PublicURL string `json:"public_url"`
	Key       string `json:"key"`
	MimeType  string `json:"mime_type"`
}

// ObjectStore stores opaque byte payloads under a key and returns a
// retrievable URL. Real deployments back this with S3/GCS/Azure Blob; call
// sites never depend on which.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (url string, err error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (url string, err error)
	Presign(ctx context.Context, key, mimeType string, maxBytes int64) (PresignedUpload, error)
}

// LoggingObjectStore writes payloads under a local directory and returns a
// file:// URL, standing in for the real bucket in every environment this
// repo runs without cloud credentials configured.
type LoggingObjectStore struct {
	basePath string
	logger   zerolog.Logger
}

func NewLoggingObjectStore(cfg config.StorageConfig, logger zerolog.Logger) *LoggingObjectStore {
	return &LoggingObjectStore{basePath: cfg.UploadPath, logger: logger}
}

func (s *LoggingObjectStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	fullPath := filepath.Join(s.basePath, key)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("create object directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	s.logger.Info().Str("key", key).Str("content_type", contentType).Msg("stored object")
	return "file://" + fullPath, nil
}

func (s *LoggingObjectStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "file://" + filepath.Join(s.basePath, key) + fmt.Sprintf("?expires_in=%d", int(ttl.Seconds())), nil
}

// Presign returns an upload handle for a key nothing has been written to
// yet. The local stand-in points the "presigned PUT URL" at the same path
// Put would eventually write, tagged so a caller can tell it's unwritten.
func (s *LoggingObjectStore) Presign(ctx context.Context, key, mimeType string, maxBytes int64) (PresignedUpload, error) {
	fullPath := filepath.Join(s.basePath, key)
	s.logger.Info().Str("key", key).Str("content_type", mimeType).Int64("max_bytes", maxBytes).Msg("presigned object upload")
	return PresignedUpload{
		UploadURL: "file://" + fullPath + "?upload=true",
		PublicURL: "file://" + fullPath,
		Key:       key,
		MimeType:  mimeType,
	}, nil
}

// SubmissionObjectKey builds the submission storage key of spec.md §6:
// submissions/pda_events/{slug}/rounds/{round_id}/{uuid}.{ext}
func SubmissionObjectKey(eventSlug string, roundID int, ext string) string {
	return fmt.Sprintf("submissions/pda_events/%s/rounds/%d/%s.%s", eventSlug, roundID, uuid.NewString(), ext)
}

// AuditObjectKey builds the audit snapshot key of spec.md §6:
// pda-events/{slug}/audits/{freeze|shortlisting}/round-{n}/{event_code}_round-{n}_{audit_type}_{timestamp}_by-{admin}.csv
func AuditObjectKey(eventSlug, auditKind string, roundNo int, eventCode, auditType, adminRegno string, at time.Time) string {
	timestamp := at.UTC().Format("20060102T150405Z")
	filename := fmt.Sprintf("%s_round-%d_%s_%s_by-%s.csv", eventCode, roundNo, auditType, timestamp, adminRegno)
	return fmt.Sprintf("pda-events/%s/audits/%s/round-%d/%s", eventSlug, auditKind, roundNo, filename)
}
