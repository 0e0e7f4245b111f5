package services

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"

	"eventengine/internal/apierr"
	"eventengine/internal/config"
	"eventengine/internal/models"
	"eventengine/internal/repositories"
)

func TestLifecycleFreezeRoundRejectsAlreadyFrozen(t *testing.T) {
	svc := NewLifecycleService(nil, nil, nil, nil, nil, zerolog.Nop())
	round := &models.Round{ID: 1, IsFrozen: true}

	_, err := svc.FreezeRound(context.Background(), &models.Event{}, round, nil, 1, "", "")
	apiErr, ok := apierr.As(err)
	if !ok || apiErr.Kind != apierr.RoundFrozen {
		t.Fatalf("FreezeRound() error = %v, want RoundFrozen", err)
	}
}

func TestLifecycleUnfreezeRejectsWhenNotFrozen(t *testing.T) {
	svc := NewLifecycleService(nil, nil, nil, nil, nil, zerolog.Nop())
	round := &models.Round{ID: 1, IsFrozen: false}

	err := svc.Unfreeze(context.Background(), round)
	apiErr, ok := apierr.As(err)
	if !ok || apiErr.Kind != apierr.RoundFrozen {
		t.Fatalf("Unfreeze() error = %v, want RoundFrozen", err)
	}
}

func TestLifecycleShortlistRejectsMissingEliminationRule(t *testing.T) {
	svc := NewLifecycleService(nil, nil, nil, nil, nil, zerolog.Nop())
	round := &models.Round{ID: 1, EliminationType: nil}

	_, _, err := svc.Shortlist(context.Background(), &models.Event{}, round, nil, nil, false, 1, "", "")
	apiErr, ok := apierr.As(err)
	if !ok || apiErr.Kind != apierr.InvalidElimination {
		t.Fatalf("Shortlist() error = %v, want InvalidElimination", err)
	}
}

// TestLifecycleShortlistTopKDeterminism pins the ranking/partition rule
// spec.md §4.7/§8 demands: rank by (-total, entity_id), keep the top K,
// eliminate the rest, same input always producing the same split.
func TestLifecycleShortlistTopKDeterminism(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	defer db.Close()

	repos := &repositories.Container{
		Scores:        repositories.NewScoreRepository(db),
		Registrations: repositories.NewRegistrationRepository(db),
		Rounds:        repositories.NewRoundRepository(db),
		EventLogs:     repositories.NewEventLogRepository(db),
	}
	scores := NewScoreService(repos, db, nil, zerolog.Nop())
	registrations := NewRegistrationService(repos, db, nil, nil)
	store := NewLoggingObjectStore(config.StorageConfig{UploadPath: t.TempDir()}, zerolog.Nop())
	audit := NewAuditService(repos, store, zerolog.Nop())
	lifecycle := NewLifecycleService(scores, nil, registrations, audit, db, zerolog.Nop())

	rows := sqlmock.NewRows([]string{"entity_type", "entity_id", "SUM(normalized_score)"}).
		AddRow("USER", 1, 50.0).
		AddRow("USER", 2, 90.0).
		AddRow("USER", 3, 70.0)
	mock.ExpectQuery("FROM scores WHERE round_id").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("SELECT entity_type, entity_id, SUM").WillReturnRows(rows)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE registrations SET status").WithArgs(models.RegistrationEliminated, 101).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE rounds SET state").WithArgs(models.RoundCompleted, 9).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM scores WHERE round_id").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO event_logs").WillReturnResult(sqlmock.NewResult(1, 1))

	k := 2.0
	topK := models.EliminationTopK
	round := &models.Round{ID: 9, EliminationType: &topK, EliminationValue: &k}
	event := &models.Event{ID: 5}

	active := []EntityRef{
		{EntityType: models.EntityUser, EntityID: 1},
		{EntityType: models.EntityUser, EntityID: 2},
		{EntityType: models.EntityUser, EntityID: 3},
	}
	registrationIDByEntity := map[string]int{
		"USER:1": 101,
		"USER:2": 102,
		"USER:3": 103,
	}

	kept, eliminated, err := lifecycle.Shortlist(context.Background(), event, round, active, registrationIDByEntity, false, 1, "", "")
	if err != nil {
		t.Fatalf("Shortlist() error = %v", err)
	}

	if len(kept) != 2 || len(eliminated) != 1 {
		t.Fatalf("Shortlist() kept=%d eliminated=%d, want 2 and 1", len(kept), len(eliminated))
	}
	if kept[0].EntityID != 2 || kept[1].EntityID != 3 {
		t.Errorf("Shortlist() kept = %+v, want entity 2 then entity 3 (highest total first)", kept)
	}
	if eliminated[0].EntityID != 1 {
		t.Errorf("Shortlist() eliminated = %+v, want entity 1 (lowest total)", eliminated)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}

func TestLifecycleShortlistMinScoreKeepsAtOrAboveThreshold(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	defer db.Close()

	repos := &repositories.Container{
		Scores:        repositories.NewScoreRepository(db),
		Registrations: repositories.NewRegistrationRepository(db),
		Rounds:        repositories.NewRoundRepository(db),
		EventLogs:     repositories.NewEventLogRepository(db),
	}
	scores := NewScoreService(repos, db, nil, zerolog.Nop())
	registrations := NewRegistrationService(repos, db, nil, nil)
	store := NewLoggingObjectStore(config.StorageConfig{UploadPath: t.TempDir()}, zerolog.Nop())
	audit := NewAuditService(repos, store, zerolog.Nop())
	lifecycle := NewLifecycleService(scores, nil, registrations, audit, db, zerolog.Nop())

	rows := sqlmock.NewRows([]string{"entity_type", "entity_id", "SUM(normalized_score)"}).
		AddRow("USER", 1, 40.0).
		AddRow("USER", 2, 60.0)
	mock.ExpectQuery("FROM scores WHERE round_id").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("SELECT entity_type, entity_id, SUM").WillReturnRows(rows)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE registrations SET status").WithArgs(models.RegistrationEliminated, 201).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE rounds SET state").WithArgs(models.RoundCompleted, 9).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM scores WHERE round_id").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO event_logs").WillReturnResult(sqlmock.NewResult(1, 1))

	threshold := 50.0
	minScore := models.EliminationMinScore
	round := &models.Round{ID: 9, EliminationType: &minScore, EliminationValue: &threshold}
	event := &models.Event{ID: 5}

	active := []EntityRef{
		{EntityType: models.EntityUser, EntityID: 1},
		{EntityType: models.EntityUser, EntityID: 2},
	}
	registrationIDByEntity := map[string]int{"USER:1": 201, "USER:2": 202}

	kept, eliminated, err := lifecycle.Shortlist(context.Background(), event, round, active, registrationIDByEntity, false, 1, "", "")
	if err != nil {
		t.Fatalf("Shortlist() error = %v", err)
	}
	if len(kept) != 1 || kept[0].EntityID != 2 {
		t.Errorf("Shortlist() kept = %+v, want only entity 2", kept)
	}
	if len(eliminated) != 1 || eliminated[0].EntityID != 1 {
		t.Errorf("Shortlist() eliminated = %+v, want only entity 1", eliminated)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}
