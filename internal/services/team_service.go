// internal/services/team_service.go
// Team Graph, per spec.md §4.2.
//
// Grounded on the original's create_team / join_team / invite_to_team /
// get_my_team: team-mode + registration-open checks, ALREADY_IN_TEAM /
// TEAM_FULL guards, and a leader-only invite flow that upserts idempotently.

package services

import (
	"context"
	"database/sql"
	"fmt"

	"eventengine/internal/apierr"
	"eventengine/internal/identifiers"
	"eventengine/internal/models"
	"eventengine/internal/repositories"
	"eventengine/internal/tasks"
)

type TeamService struct {
	repos *repositories.Container
	db    *sql.DB
	mail  EmailSender
	tasks *tasks.Pool
}

func NewTeamService(repos *repositories.Container, db *sql.DB, mail EmailSender, pool *tasks.Pool) *TeamService {
	return &TeamService{repos: repos, db: db, mail: mail, tasks: pool}
}

func (s *TeamService) checkTeamEventOpen(event *models.Event) error {
	if event.ParticipantMode != models.ParticipantModeTeam {
		return apierr.New(apierr.WrongMode, "this event does not accept team registration")
	}
	if !event.Visible {
		return apierr.New(apierr.NotFound, "event not found")
	}
	if !event.RegistrationOpen {
		return apierr.New(apierr.RegClosed, "registration is closed for this event")
	}
	return nil
}

// CreateTeam creates a team led by userID, with an idempotency guard:
// a user already on a team for this event cannot create another.
func (s *TeamService) CreateTeam(ctx context.Context, event *models.Event, userID int, userEmail, userCollege, teamName string) (*models.Team, error) {
	if err := s.checkTeamEventOpen(event); err != nil {
		return nil, err
	}
	if err := checkEligible(event, userCollege); err != nil {
		return nil, err
	}

	if _, err := s.repos.Teams.FindTeamForUser(ctx, event.ID, userID); err == nil {
		return nil, apierr.New(apierr.AlreadyInTeam, "you already belong to a team for this event")
	} else if err != repositories.ErrNotFound {
		return nil, fmt.Errorf("check existing team: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	code, err := identifiers.UniqueCode(func(candidate string) (bool, error) {
		return s.repos.Teams.CodeExists(ctx, event.ID, candidate)
	})
	if err != nil {
		return nil, fmt.Errorf("mint team code: %w", err)
	}

	team := &models.Team{EventID: event.ID, TeamCode: code, TeamName: teamName, TeamLeadUserID: userID}
	if err := s.repos.Teams.CreateWithTx(ctx, tx, team); err != nil {
		return nil, fmt.Errorf("create team: %w", err)
	}

	leader := &models.TeamMember{TeamID: team.ID, UserID: userID, Role: models.TeamRoleLeader}
	if err := s.repos.Teams.AddMemberWithTx(ctx, tx, leader); err != nil {
		return nil, fmt.Errorf("add leader: %w", err)
	}

	reg := &models.Registration{
		EventID:    event.ID,
		EntityType: models.EntityTeam,
		TeamID:     &team.ID,
		Status:     models.RegistrationActive,
	}
	if err := s.repos.Registrations.CreateWithTx(ctx, tx, reg); err != nil {
		return nil, fmt.Errorf("create team registration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit team creation: %w", err)
	}

	if s.tasks != nil && s.mail != nil {
		subject, body := TeamCreatedEmail(event.Title, team.TeamCode)
		s.tasks.Submit(func(ctx context.Context) {
			_ = s.mail.Send(ctx, userEmail, subject, body)
		})
	}

	return team, nil
}

// JoinTeam adds userID to the team identified by teamCode, subject to the
// event's team_max_size bound.
func (s *TeamService) JoinTeam(ctx context.Context, event *models.Event, userID int, userName, userEmail, userCollege, teamCode string) (*models.Team, error) {
	if err := s.checkTeamEventOpen(event); err != nil {
		return nil, err
	}
	if err := checkEligible(event, userCollege); err != nil {
		return nil, err
	}

	if _, err := s.repos.Teams.FindTeamForUser(ctx, event.ID, userID); err == nil {
		return nil, apierr.New(apierr.AlreadyInTeam, "you already belong to a team for this event")
	} else if err != repositories.ErrNotFound {
		return nil, fmt.Errorf("check existing team: %w", err)
	}

	team, err := s.repos.Teams.GetByCode(ctx, event.ID, teamCode)
	if err == repositories.ErrNotFound {
		return nil, apierr.New(apierr.NotFound, "team not found")
	} else if err != nil {
		return nil, fmt.Errorf("find team: %w", err)
	}

	count, err := s.repos.Teams.MemberCount(ctx, team.ID)
	if err != nil {
		return nil, fmt.Errorf("count members: %w", err)
	}
	if event.TeamMaxSize != nil && count >= *event.TeamMaxSize {
		return nil, apierr.New(apierr.TeamFull, "team has reached its maximum size")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	member := &models.TeamMember{TeamID: team.ID, UserID: userID, Role: models.TeamRoleMember}
	if err := s.repos.Teams.AddMemberWithTx(ctx, tx, member); err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}

	if _, err := s.repos.Registrations.GetByTeam(ctx, event.ID, team.ID); err == repositories.ErrNotFound {
		reg := &models.Registration{
			EventID:    event.ID,
			EntityType: models.EntityTeam,
			TeamID:     &team.ID,
			Status:     models.RegistrationActive,
		}
		if err := s.repos.Registrations.CreateWithTx(ctx, tx, reg); err != nil {
			return nil, fmt.Errorf("ensure team registration: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("check team registration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit team join: %w", err)
	}

	if s.tasks != nil && s.mail != nil {
		if leaderMember, err := s.repos.Teams.GetMember(ctx, team.ID, team.TeamLeadUserID); err == nil {
			_ = leaderMember
			subject, body := TeamJoinedEmail(event.Title, userName)
			s.tasks.Submit(func(ctx context.Context) {
				_ = s.mail.Send(ctx, userEmail, subject, body)
			})
		}
	}

	return team, nil
}

func (s *TeamService) GetMyTeam(ctx context.Context, event *models.Event, userID int) (*models.Team, error) {
	if event.ParticipantMode != models.ParticipantModeTeam {
		return nil, apierr.New(apierr.WrongMode, "this event does not use teams")
	}
	team, err := s.repos.Teams.FindTeamForUser(ctx, event.ID, userID)
	if err == repositories.ErrNotFound {
		return nil, apierr.New(apierr.NotFound, "you are not on a team for this event")
	}
	return team, err
}

// InviteToTeam is leader-only: it adds a prospective member outright and
// records an ACCEPTED invite, re-inviting idempotently if one already exists.
func (s *TeamService) InviteToTeam(ctx context.Context, event *models.Event, leaderUserID, targetUserID int, targetEmail, targetCollege string) (*models.TeamInvite, error) {
	team, err := s.repos.Teams.FindTeamForUser(ctx, event.ID, leaderUserID)
	if err == repositories.ErrNotFound {
		return nil, apierr.New(apierr.NotFound, "you are not on a team for this event")
	} else if err != nil {
		return nil, fmt.Errorf("find team: %w", err)
	}
	if team.TeamLeadUserID != leaderUserID {
		return nil, apierr.New(apierr.PolicyDenied, "only the team leader can invite members")
	}
	if err := checkEligible(event, targetCollege); err != nil {
		return nil, err
	}

	if _, err := s.repos.Teams.FindTeamForUser(ctx, event.ID, targetUserID); err == nil {
		return nil, apierr.New(apierr.AlreadyInTeam, "invitee already belongs to a team for this event")
	} else if err != repositories.ErrNotFound {
		return nil, fmt.Errorf("check invitee team: %w", err)
	}

	count, err := s.repos.Teams.MemberCount(ctx, team.ID)
	if err != nil {
		return nil, fmt.Errorf("count members: %w", err)
	}
	if event.TeamMaxSize != nil && count >= *event.TeamMaxSize {
		return nil, apierr.New(apierr.TeamFull, "team has reached its maximum size")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.repos.Teams.GetMember(ctx, team.ID, targetUserID); err == repositories.ErrNotFound {
		member := &models.TeamMember{TeamID: team.ID, UserID: targetUserID, Role: models.TeamRoleMember}
		if err := s.repos.Teams.AddMemberWithTx(ctx, tx, member); err != nil {
			return nil, fmt.Errorf("add invitee: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("check invitee membership: %w", err)
	}

	invite := &models.TeamInvite{
		EventID:         event.ID,
		TeamID:          team.ID,
		InvitedUserID:   targetUserID,
		InvitedByUserID: leaderUserID,
		Status:          models.InviteAccepted,
	}
	if err := s.repos.Teams.UpsertInviteWithTx(ctx, tx, invite); err != nil {
		return nil, fmt.Errorf("upsert invite: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit invite: %w", err)
	}

	if s.tasks != nil && s.mail != nil {
		subject, body := TeamInviteEmail(event.Title, team.TeamName)
		s.tasks.Submit(func(ctx context.Context) {
			_ = s.mail.Send(ctx, targetEmail, subject, body)
		})
	}

	return invite, nil
}

func (s *TeamService) ListMembers(ctx context.Context, teamID int) ([]*models.TeamMember, error) {
	return s.repos.Teams.ListMembers(ctx, teamID)
}
