package services

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"

	"eventengine/internal/apierr"
	"eventengine/internal/models"
	"eventengine/internal/repositories"
)

func testCriteria() models.Criteria {
	return models.Criteria{
		{Name: "Innovation", MaxMarks: 40},
		{Name: "Execution", MaxMarks: 60},
	}
}

func TestValidateCriteriaAcceptsInBoundsMarks(t *testing.T) {
	err := validateCriteria(testCriteria(), models.CriteriaScores{"Innovation": 30, "Execution": 60})
	if err != nil {
		t.Fatalf("validateCriteria returned error for in-bounds marks: %v", err)
	}
}

func TestValidateCriteriaRejectsOutOfRangeMarks(t *testing.T) {
	err := validateCriteria(testCriteria(), models.CriteriaScores{"Innovation": 41})
	apiErr, ok := apierr.As(err)
	if !ok {
		t.Fatalf("validateCriteria error = %v, want an *apierr.Error", err)
	}
	if apiErr.Kind != apierr.ScoreRange {
		t.Errorf("validateCriteria error kind = %s, want %s", apiErr.Kind, apierr.ScoreRange)
	}
}

func TestValidateCriteriaRejectsNegativeMarks(t *testing.T) {
	err := validateCriteria(testCriteria(), models.CriteriaScores{"Execution": -1})
	apiErr, ok := apierr.As(err)
	if !ok || apiErr.Kind != apierr.ScoreRange {
		t.Fatalf("validateCriteria(-1) error = %v, want ScoreRange", err)
	}
}

func TestValidateCriteriaRejectsUnknownCriterion(t *testing.T) {
	err := validateCriteria(testCriteria(), models.CriteriaScores{"Style": 10})
	apiErr, ok := apierr.As(err)
	if !ok || apiErr.Kind != apierr.ScoreRange {
		t.Fatalf("validateCriteria(unknown) error = %v, want ScoreRange", err)
	}
}

func TestScoreServiceSaveRejectsFrozenRound(t *testing.T) {
	svc := NewScoreService(nil, nil, nil, zerolog.Nop())
	round := &models.Round{ID: 1, Criteria: testCriteria(), IsFrozen: true}

	_, err := svc.Save(context.Background(), round, SaveScoreInput{
		EntityType: models.EntityUser,
		EntityID:   7,
		Marks:      models.CriteriaScores{"Innovation": 10},
	})
	apiErr, ok := apierr.As(err)
	if !ok {
		t.Fatalf("Save() error = %v, want an *apierr.Error", err)
	}
	if apiErr.Kind != apierr.RoundFrozen {
		t.Errorf("Save() error kind = %s, want %s", apiErr.Kind, apierr.RoundFrozen)
	}
}

func TestScoreServiceSaveRejectsOutOfRangeMarks(t *testing.T) {
	svc := NewScoreService(nil, nil, nil, zerolog.Nop())
	round := &models.Round{ID: 1, Criteria: testCriteria()}

	_, err := svc.Save(context.Background(), round, SaveScoreInput{
		EntityType: models.EntityUser,
		EntityID:   7,
		Marks:      models.CriteriaScores{"Innovation": 999},
		IsPresent:  true,
	})
	apiErr, ok := apierr.As(err)
	if !ok {
		t.Fatalf("Save() error = %v, want an *apierr.Error", err)
	}
	if apiErr.Kind != apierr.ScoreRange {
		t.Errorf("Save() error kind = %s, want %s", apiErr.Kind, apierr.ScoreRange)
	}
}

// TestScoreServiceSaveRejectsEliminatedEntity pins spec.md §4.5's rule that
// a score entry requires an ACTIVE registration: eliminated entities are
// refused rather than silently scored.
func TestScoreServiceSaveRejectsEliminatedEntity(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	defer db.Close()

	repos := &repositories.Container{Registrations: repositories.NewRegistrationRepository(db)}
	svc := NewScoreService(repos, db, nil, zerolog.Nop())
	round := &models.Round{ID: 1, EventID: 5, Criteria: testCriteria()}

	regRow := sqlmock.NewRows([]string{
		"id", "event_id", "entity_type", "user_id", "team_id", "status",
		"referral_code", "referred_by", "referral_count", "created_at", "updated_at",
	}).AddRow(11, 5, "USER", 7, nil, "ELIMINATED", nil, nil, 0, time.Now(), time.Now())
	mock.ExpectQuery("FROM registrations WHERE event_id = \\? AND entity_type = 'USER'").WillReturnRows(regRow)

	_, err = svc.Save(context.Background(), round, SaveScoreInput{
		EntityType: models.EntityUser,
		EntityID:   7,
		Marks:      models.CriteriaScores{"Innovation": 10},
		IsPresent:  true,
	})
	apiErr, ok := apierr.As(err)
	if !ok {
		t.Fatalf("Save() error = %v, want an *apierr.Error", err)
	}
	if apiErr.Kind != apierr.BadRounds {
		t.Errorf("Save() error kind = %s, want %s", apiErr.Kind, apierr.BadRounds)
	}
}

// TestScoreServiceSaveCoercesAbsentMarksToZero pins scenario 3: is_present
// false forces criteria marks and total to zero regardless of what the
// caller sent, rather than trusting caller-supplied marks.
func TestScoreServiceSaveCoercesAbsentMarksToZero(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	defer db.Close()

	repos := &repositories.Container{
		Registrations: repositories.NewRegistrationRepository(db),
		Scores:        repositories.NewScoreRepository(db),
	}
	svc := NewScoreService(repos, db, nil, zerolog.Nop())
	round := &models.Round{ID: 1, EventID: 5, Criteria: testCriteria()}

	regRow := sqlmock.NewRows([]string{
		"id", "event_id", "entity_type", "user_id", "team_id", "status",
		"referral_code", "referred_by", "referral_count", "created_at", "updated_at",
	}).AddRow(11, 5, "USER", 7, nil, "ACTIVE", nil, nil, 0, time.Now(), time.Now())
	mock.ExpectQuery("FROM registrations WHERE event_id = \\? AND entity_type = 'USER'").WillReturnRows(regRow)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO scores").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT id FROM scores").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec("INSERT INTO attendance").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	score, err := svc.Save(context.Background(), round, SaveScoreInput{
		EntityType: models.EntityUser,
		EntityID:   7,
		Marks:      models.CriteriaScores{"Innovation": 999},
		IsPresent:  false,
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if score.TotalScore != 0 || score.NormalizedScore != 0 || len(score.CriteriaScores) != 0 {
		t.Errorf("Save() score = %+v, want all-zero marks/total for an absent entity", score)
	}
}

func TestNormalizedScore(t *testing.T) {
	tests := []struct {
		name       string
		totalScore float64
		maxTotal   float64
		isPresent  bool
		want       float64
	}{
		{"absent entity scores zero", 80, 100, false, 0},
		{"typical percentage", 50, 100, true, 50},
		{"zero max total is zero", 10, 0, true, 0},
		{"clamped to 100", 150, 100, true, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := models.NormalizedScore(tt.totalScore, tt.maxTotal, tt.isPresent); got != tt.want {
				t.Errorf("NormalizedScore(%v, %v, %v) = %v, want %v", tt.totalScore, tt.maxTotal, tt.isPresent, got, tt.want)
			}
		})
	}
}

func TestCriteriaScoresSum(t *testing.T) {
	scores := models.CriteriaScores{"Innovation": 30, "Execution": 45.5}
	if got := scores.Sum(); got != 75.5 {
		t.Errorf("Sum() = %v, want 75.5", got)
	}
}
