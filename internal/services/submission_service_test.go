package services

import (
	"testing"
	"time"

	"eventengine/internal/models"
)

func TestLockReasonPrecedence(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name        string
		round       *models.Round
		adminLocked bool
		want        string
	}{
		{"open round is unlocked", &models.Round{}, false, ""},
		{"finalized beats everything", &models.Round{State: models.RoundCompleted, IsFrozen: true, SubmissionDeadline: &past}, true, "finalized"},
		{"reveal also counts as finalized", &models.Round{State: models.RoundReveal}, true, "finalized"},
		{"frozen beats deadline and admin", &models.Round{IsFrozen: true, SubmissionDeadline: &past}, true, "frozen"},
		{"deadline beats admin", &models.Round{SubmissionDeadline: &past}, true, "deadline"},
		{"admin alone", &models.Round{SubmissionDeadline: &future}, true, "admin"},
		{"future deadline does not lock", &models.Round{SubmissionDeadline: &future}, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lockReason(tt.round, tt.adminLocked); got != tt.want {
				t.Errorf("lockReason() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateFileRejectsDisallowedMimeType(t *testing.T) {
	svc := NewSubmissionService(nil, nil, nil)
	round := &models.Round{
		SubmissionModeValue: models.SubmissionModeFile,
		AllowedMimeTypes:    models.MimeList{"application/pdf"},
		MaxFileSizeMB:       10,
	}
	err := svc.validateFile(round, "application/zip", 10)
	if err == nil {
		t.Fatal("validateFile accepted a disallowed mime type")
	}
}

func TestValidateFileRejectsOversizedUpload(t *testing.T) {
	svc := NewSubmissionService(nil, nil, nil)
	round := &models.Round{
		SubmissionModeValue: models.SubmissionModeFile,
		AllowedMimeTypes:    models.MimeList{"application/pdf"},
		MaxFileSizeMB:       1,
	}
	err := svc.validateFile(round, "application/pdf", 2<<20)
	if err == nil {
		t.Fatal("validateFile accepted a file over the round's size limit")
	}
}

func TestValidateFileRejectsFileWhenRoundIsLinkOnly(t *testing.T) {
	svc := NewSubmissionService(nil, nil, nil)
	round := &models.Round{SubmissionModeValue: models.SubmissionModeLink}
	err := svc.validateFile(round, "application/pdf", 1)
	if err == nil {
		t.Fatal("validateFile accepted a file for a link-only round")
	}
}

func TestValidateFileAcceptsWithinBounds(t *testing.T) {
	svc := NewSubmissionService(nil, nil, nil)
	round := &models.Round{
		SubmissionModeValue: models.SubmissionModeFileOrLink,
		AllowedMimeTypes:    models.MimeList{"application/pdf"},
		MaxFileSizeMB:       10,
	}
	err := svc.validateFile(round, "application/pdf", 5<<20)
	if err != nil {
		t.Fatalf("validateFile rejected an in-bounds file: %v", err)
	}
}

func TestRequireSubmittableRejectsWhenNotRequired(t *testing.T) {
	round := &models.Round{RequiresSubmission: false}
	if err := requireSubmittable(round); err == nil {
		t.Fatal("requireSubmittable accepted a round that does not collect submissions")
	}
}

func TestRequireSubmittableAllowsWhenRequired(t *testing.T) {
	round := &models.Round{RequiresSubmission: true}
	if err := requireSubmittable(round); err != nil {
		t.Fatalf("requireSubmittable rejected a round that does collect submissions: %v", err)
	}
}
