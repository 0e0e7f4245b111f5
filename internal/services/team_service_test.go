package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"eventengine/internal/apierr"
	"eventengine/internal/models"
	"eventengine/internal/repositories"
)

func TestTeamServiceCheckTeamEventOpenGuards(t *testing.T) {
	svc := NewTeamService(nil, nil, nil, nil)

	tests := []struct {
		name  string
		event *models.Event
		want  apierr.Kind
	}{
		{"wrong participant mode", &models.Event{ParticipantMode: models.ParticipantModeIndividual}, apierr.WrongMode},
		{"not visible", &models.Event{ParticipantMode: models.ParticipantModeTeam, Visible: false}, apierr.NotFound},
		{"registration closed", &models.Event{ParticipantMode: models.ParticipantModeTeam, Visible: true, RegistrationOpen: false}, apierr.RegClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTeam(context.Background(), tt.event, 1, "a@b.com", "mit", "Team A")
			apiErr, ok := apierr.As(err)
			if !ok || apiErr.Kind != tt.want {
				t.Fatalf("CreateTeam() error = %v, want kind %s", err, tt.want)
			}
		})
	}
}

// TestTeamServiceJoinTeamRejectsWhenFull pins the TEAM_FULL guard: a team
// already at event.TeamMaxSize cannot accept another member.
func TestTeamServiceJoinTeamRejectsWhenFull(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	defer db.Close()

	repos := &repositories.Container{Teams: repositories.NewTeamRepository(db)}
	svc := NewTeamService(repos, db, nil, nil)

	mock.ExpectQuery("FROM teams t").
		WillReturnError(sql.ErrNoRows)

	teamRow := sqlmock.NewRows([]string{"id", "event_id", "team_code", "team_name", "team_lead_user_id", "created_at"}).
		AddRow(42, 5, "ABCDE", "Team A", 1, time.Now())
	mock.ExpectQuery("SELECT id, event_id, team_code, team_name, team_lead_user_id, created_at FROM teams WHERE event_id = \\? AND team_code = \\?").
		WillReturnRows(teamRow)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM team_members").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	maxSize := 4
	event := &models.Event{
		ID: 5, ParticipantMode: models.ParticipantModeTeam, Visible: true, RegistrationOpen: true,
		OpenForAudience: models.OpenForAll, TeamMaxSize: &maxSize,
	}

	_, err = svc.JoinTeam(context.Background(), event, 9, "new", "new@b.com", "mit", "ABCDE")
	apiErr, ok := apierr.As(err)
	if !ok {
		t.Fatalf("JoinTeam() error = %v, want an *apierr.Error", err)
	}
	if apiErr.Kind != apierr.TeamFull {
		t.Errorf("JoinTeam() error kind = %s, want %s", apiErr.Kind, apierr.TeamFull)
	}
}
