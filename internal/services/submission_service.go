// internal/services/submission_service.go
// Submission Vault, per spec.md §4.6/§8.
//
// Lock-reason precedence is finalized > frozen > deadline > admin, the
// order spec.md states as prose fact (see DESIGN.md's Open Question
// decision) — checked in that order so the most fundamental reason a
// submission is locked is always the one reported.

package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"eventengine/internal/apierr"
	"eventengine/internal/models"
	"eventengine/internal/repositories"
)

type SubmissionService struct {
	repos *repositories.Container
	db    *sql.DB
	store ObjectStore
}

func NewSubmissionService(repos *repositories.Container, db *sql.DB, store ObjectStore) *SubmissionService {
	return &SubmissionService{repos: repos, db: db, store: store}
}

// lockReason returns the first applicable lock reason, or "" if the
// submission is currently editable. adminLocked comes from the submission
// row's own Locked flag (there is no row yet, the submission is unlocked by
// definition on that axis).
func lockReason(round *models.Round, adminLocked bool) string {
	if round.State == models.RoundCompleted || round.State == models.RoundReveal {
		return "finalized"
	}
	if round.IsFrozen {
		return "frozen"
	}
	if round.SubmissionDeadline != nil && time.Now().After(*round.SubmissionDeadline) {
		return "deadline"
	}
	if adminLocked {
		return "admin"
	}
	return ""
}

// currentLockFlag loads whatever submission row already exists for the
// lock-reason check's admin axis; a missing row is unlocked.
func (s *SubmissionService) currentLockFlag(ctx context.Context, roundID int, entityType models.EntityType, entityID int) (bool, error) {
	existing, err := s.repos.Submissions.Get(ctx, roundID, entityType, entityID)
	if err == repositories.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return existing.Locked, nil
}

// requireSubmittable rejects the whole (event, round, entity) operation
// when the round doesn't collect submissions at all.
func requireSubmittable(round *models.Round) error {
	if !round.RequiresSubmission {
		return apierr.New(apierr.NotApplicable, "this round does not collect submissions")
	}
	return nil
}

// requireLeader enforces upsert/delete as leader-only for team entities;
// individual entities always act for themselves.
func (s *SubmissionService) requireLeader(ctx context.Context, entityType models.EntityType, entityID, callerUserID int) error {
	if entityType != models.EntityTeam {
		return nil
	}
	team, err := s.repos.Teams.GetByID(ctx, entityID)
	if err == repositories.ErrNotFound {
		return apierr.New(apierr.NotFound, "team not found")
	}
	if err != nil {
		return fmt.Errorf("load team: %w", err)
	}
	if team.TeamLeadUserID != callerUserID {
		return apierr.New(apierr.PolicyDenied, "only the team leader can manage this team's submission")
	}
	return nil
}

// SubmitFileInput carries an already-uploaded file's metadata.
type SubmitFileInput struct {
	EntityType   models.EntityType
	EntityID     int
	FileName     string
	SizeBytes    int64
	MimeType     string
	Notes        *string
	CallerUserID int
	Data         []byte
	EventSlug    string
}

func (s *SubmissionService) validateFile(round *models.Round, mimeType string, sizeBytes int64) error {
	if round.SubmissionModeValue == models.SubmissionModeLink {
		return apierr.New(apierr.BadFile, "this round only accepts link submissions")
	}
	if !round.AllowedMimeTypes.Contains(mimeType) {
		return apierr.New(apierr.BadFile, fmt.Sprintf("mime type %q is not allowed for this round", mimeType))
	}
	if sizeBytes <= 0 || sizeBytes > round.MaxFileSizeBytes() {
		return apierr.New(apierr.BadFile, fmt.Sprintf("file exceeds the %d MB limit", round.MaxFileSizeMB))
	}
	return nil
}

func extFromFileName(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i+1:]
		}
	}
	return "bin"
}

// PresignedUploadInput is a presign request for a not-yet-uploaded file.
type PresignedUploadInput struct {
	EntityType models.EntityType
	EntityID   int
	FileName   string
	SizeBytes  int64
	MimeType   string
	EventSlug  string
}

// Presign returns an opaque storage handle for a client to upload directly
// against, after checking the same lock/mime/size rules upsert enforces.
func (s *SubmissionService) Presign(ctx context.Context, round *models.Round, in PresignedUploadInput) (*PresignedUpload, error) {
	if err := requireSubmittable(round); err != nil {
		return nil, err
	}
	adminLocked, err := s.currentLockFlag(ctx, round.ID, in.EntityType, in.EntityID)
	if err != nil {
		return nil, fmt.Errorf("check lock state: %w", err)
	}
	if reason := lockReason(round, adminLocked); reason != "" {
		return nil, apierr.WithDetail(apierr.SubmissionLocked, "submissions are locked for this round", reason)
	}
	if err := s.validateFile(round, in.MimeType, in.SizeBytes); err != nil {
		return nil, err
	}

	key := SubmissionObjectKey(in.EventSlug, round.ID, extFromFileName(in.FileName))
	upload, err := s.store.Presign(ctx, key, in.MimeType, in.SizeBytes)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	return &upload, nil
}

// SubmitFile validates and stores a file submission, failing with
// SUBMISSION_LOCKED carrying the precedence-ordered reason if locked.
func (s *SubmissionService) SubmitFile(ctx context.Context, round *models.Round, in SubmitFileInput) (*models.Submission, error) {
	if err := requireSubmittable(round); err != nil {
		return nil, err
	}
	if err := s.requireLeader(ctx, in.EntityType, in.EntityID, in.CallerUserID); err != nil {
		return nil, err
	}
	adminLocked, err := s.currentLockFlag(ctx, round.ID, in.EntityType, in.EntityID)
	if err != nil {
		return nil, fmt.Errorf("check lock state: %w", err)
	}
	if reason := lockReason(round, adminLocked); reason != "" {
		return nil, apierr.WithDetail(apierr.SubmissionLocked, "submissions are locked for this round", reason)
	}
	if err := s.validateFile(round, in.MimeType, in.SizeBytes); err != nil {
		return nil, err
	}

	key := SubmissionObjectKey(in.EventSlug, round.ID, extFromFileName(in.FileName))
	url, err := s.store.Put(ctx, key, in.Data, in.MimeType)
	if err != nil {
		return nil, fmt.Errorf("store submission file: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	updatedBy := in.CallerUserID
	submission := &models.Submission{
		EventID:     round.EventID,
		RoundID:     round.ID,
		EntityType:  in.EntityType,
		EntityID:    in.EntityID,
		Type:        models.SubmissionTypeFile,
		FileURL:     &url,
		FileName:    &in.FileName,
		SizeBytes:   &in.SizeBytes,
		MimeType:    &in.MimeType,
		Notes:       in.Notes,
		Version:     1,
		SubmittedAt: &now,
		UpdatedBy:   &updatedBy,
	}
	if err := s.repos.Submissions.UpsertWithTx(ctx, tx, submission); err != nil {
		return nil, fmt.Errorf("upsert submission: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit submission: %w", err)
	}
	return submission, nil
}

// SubmitLinkInput carries a link submission.
type SubmitLinkInput struct {
	EntityType   models.EntityType
	EntityID     int
	LinkURL      string
	Notes        *string
	CallerUserID int
}

func (s *SubmissionService) SubmitLink(ctx context.Context, round *models.Round, in SubmitLinkInput) (*models.Submission, error) {
	if err := requireSubmittable(round); err != nil {
		return nil, err
	}
	if err := s.requireLeader(ctx, in.EntityType, in.EntityID, in.CallerUserID); err != nil {
		return nil, err
	}
	if in.LinkURL == "" {
		return nil, apierr.New(apierr.BadInput, "link_url is required")
	}
	adminLocked, err := s.currentLockFlag(ctx, round.ID, in.EntityType, in.EntityID)
	if err != nil {
		return nil, fmt.Errorf("check lock state: %w", err)
	}
	if reason := lockReason(round, adminLocked); reason != "" {
		return nil, apierr.WithDetail(apierr.SubmissionLocked, "submissions are locked for this round", reason)
	}
	if round.SubmissionModeValue == models.SubmissionModeFile {
		return nil, apierr.New(apierr.BadFile, "this round only accepts file submissions")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	updatedBy := in.CallerUserID
	submission := &models.Submission{
		EventID:     round.EventID,
		RoundID:     round.ID,
		EntityType:  in.EntityType,
		EntityID:    in.EntityID,
		Type:        models.SubmissionTypeLink,
		LinkURL:     &in.LinkURL,
		Notes:       in.Notes,
		Version:     1,
		SubmittedAt: &now,
		UpdatedBy:   &updatedBy,
	}
	if err := s.repos.Submissions.UpsertWithTx(ctx, tx, submission); err != nil {
		return nil, fmt.Errorf("upsert submission: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit submission: %w", err)
	}
	return submission, nil
}

// Delete removes a submission, refused whenever any lock reason applies
// (including the admin flag, unlike admin override).
func (s *SubmissionService) Delete(ctx context.Context, round *models.Round, entityType models.EntityType, entityID, callerUserID int) error {
	if err := requireSubmittable(round); err != nil {
		return err
	}
	if err := s.requireLeader(ctx, entityType, entityID, callerUserID); err != nil {
		return err
	}
	adminLocked, err := s.currentLockFlag(ctx, round.ID, entityType, entityID)
	if err != nil {
		return fmt.Errorf("check lock state: %w", err)
	}
	if reason := lockReason(round, adminLocked); reason != "" {
		return apierr.WithDetail(apierr.SubmissionLocked, "submissions are locked for this round", reason)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.repos.Submissions.DeleteWithTx(ctx, tx, round.ID, entityType, entityID); err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	return tx.Commit()
}

// AdminOverrideInput is update_round_submission_as_admin's payload.
// AdminOverride builds the stored row from these fields alone: a non-nil
// LinkURL selects the link variant, otherwise the file fields are used, and
// a field left nil is stored empty; it does not keep the submission's
// current value.
type AdminOverrideInput struct {
	EntityType models.EntityType
	EntityID   int
	LinkURL    *string
	FileURL    *string
	FileName   *string
	SizeBytes  *int64
	MimeType   *string
	Notes      *string
	AdminID    int
}

// AdminOverride ignores lock reason entirely, may switch a submission
// between file/link variant, bumps version, and clears the other variant's
// fields so a submission never carries both at once.
func (s *SubmissionService) AdminOverride(ctx context.Context, round *models.Round, in AdminOverrideInput) (*models.Submission, error) {
	if err := requireSubmittable(round); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	existing, err := s.repos.Submissions.GetWithTx(ctx, tx, round.ID, in.EntityType, in.EntityID)
	if err != nil && err != repositories.ErrNotFound {
		return nil, fmt.Errorf("load submission: %w", err)
	}
	version := 1
	locked := false
	if existing != nil {
		version = existing.Version + 1
		locked = existing.Locked
	}

	now := time.Now()
	adminID := in.AdminID
	submission := &models.Submission{
		EventID:     round.EventID,
		RoundID:     round.ID,
		EntityType:  in.EntityType,
		EntityID:    in.EntityID,
		Notes:       in.Notes,
		Version:     version,
		Locked:      locked,
		SubmittedAt: &now,
		UpdatedBy:   &adminID,
	}
	if in.LinkURL != nil {
		submission.Type = models.SubmissionTypeLink
		submission.LinkURL = in.LinkURL
	} else {
		submission.Type = models.SubmissionTypeFile
		submission.FileURL = in.FileURL
		submission.FileName = in.FileName
		submission.SizeBytes = in.SizeBytes
		submission.MimeType = in.MimeType
	}

	if err := s.repos.Submissions.UpsertWithTx(ctx, tx, submission); err != nil {
		return nil, fmt.Errorf("upsert submission: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit submission: %w", err)
	}
	return submission, nil
}

func (s *SubmissionService) Get(ctx context.Context, roundID int, entityType models.EntityType, entityID int) (*models.Submission, error) {
	submission, err := s.repos.Submissions.Get(ctx, roundID, entityType, entityID)
	if err == repositories.ErrNotFound {
		return nil, apierr.New(apierr.NotFound, "no submission found")
	}
	return submission, err
}

func (s *SubmissionService) ListByRound(ctx context.Context, roundID int) ([]*models.Submission, error) {
	return s.repos.Submissions.ListByRound(ctx, roundID)
}

// LockAllForRoundWithTx is called on freeze to stop any further submissions.
func (s *SubmissionService) LockAllForRoundWithTx(ctx context.Context, tx *sql.Tx, roundID int) error {
	return s.repos.Submissions.SetLockedForRoundWithTx(ctx, tx, roundID, true)
}
