// internal/services/container.go
// Service container provides dependency injection for all business logic services.
// This pattern makes testing easier and keeps services loosely coupled.

package services

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"eventengine/internal/config"
	"eventengine/internal/database"
	"eventengine/internal/repositories"
	"eventengine/internal/tasks"
)

// Container holds all service instances and provides them to handlers.
type Container struct {
	Auth          *AuthService
	Cache         *CacheService
	Events        *EventService
	Registrations *RegistrationService
	Teams         *TeamService
	Rounds        *RoundService
	Panels        *PanelService
	Scores        *ScoreService
	Submissions   *SubmissionService
	Lifecycle     *LifecycleService
	Audit         *AuditService
	Leaderboard   *LeaderboardService
	Badges        *BadgeService
	Mail          EmailSender
	Store         ObjectStore
	Identity      IdentityDirectory
	Tasks         *tasks.Pool
}

// NewContainer creates a new service container with all dependencies.
func NewContainer(db *database.Connections, cfg *config.Config, logger zerolog.Logger) *Container {
	repos := repositories.NewContainer(db)

	cache := NewCacheService(db.Redis, logger)
	mail := NewLoggingEmailSender(logger)
	store := NewLoggingObjectStore(cfg.Storage, logger)
	identity := NewLoggingIdentityDirectory(logger)
	pool := tasks.NewPool(4, 256, 30*time.Second, logger)

	auth := NewAuthService(cfg.Auth)
	events := NewEventService(repos)
	registrations := NewRegistrationService(repos, db.MySQL, mail, pool)
	teams := NewTeamService(repos, db.MySQL, mail, pool)
	scores := NewScoreService(repos, db.MySQL, identity, logger)
	rounds := NewRoundService(repos, db.MySQL, scores)
	panels := NewPanelService(repos, db.MySQL, scores)
	submissions := NewSubmissionService(repos, db.MySQL, store)
	audit := NewAuditService(repos, store, logger)
	lifecycle := NewLifecycleService(scores, submissions, registrations, audit, db.MySQL, logger)
	leaderboard := NewLeaderboardService(repos, identity)
	badges := NewBadgeService(repos, db.MySQL)

	return &Container{
		Auth:          auth,
		Cache:         cache,
		Events:        events,
		Registrations: registrations,
		Teams:         teams,
		Rounds:        rounds,
		Panels:        panels,
		Scores:        scores,
		Submissions:   submissions,
		Lifecycle:     lifecycle,
		Audit:         audit,
		Leaderboard:   leaderboard,
		Badges:        badges,
		Mail:          mail,
		Store:         store,
		Identity:      identity,
		Tasks:         pool,
	}
}

// Close releases resources held by long-running services (the background
// task pool's workers).
func (c *Container) Close() {
	c.Tasks.Close()
}

// Common errors used across services.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)
