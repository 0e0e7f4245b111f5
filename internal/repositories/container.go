// internal/repositories/container.go
// Wires every repository against the live database connections, mirroring
// the teacher's single-container dependency-injection shape.

package repositories

import "eventengine/internal/database"

// Container holds one instance of every repository, constructed once at
// startup and threaded through the service layer.
type Container struct {
	Events        *EventRepository
	Registrations *RegistrationRepository
	Teams         *TeamRepository
	Rounds        *RoundRepository
	Panels        *PanelRepository
	Scores        *ScoreRepository
	Submissions   *SubmissionRepository
	Badges        *BadgeRepository
	EventLogs     *EventLogRepository
	EventLogMirror *EventLogMongoRepository
	SystemConfig  *SystemConfigRepository
}

func NewContainer(conns *database.Connections) *Container {
	return &Container{
		Events:         NewEventRepository(conns.MySQL),
		Registrations:  NewRegistrationRepository(conns.MySQL),
		Teams:          NewTeamRepository(conns.MySQL),
		Rounds:         NewRoundRepository(conns.MySQL),
		Panels:         NewPanelRepository(conns.MySQL),
		Scores:         NewScoreRepository(conns.MySQL),
		Submissions:    NewSubmissionRepository(conns.MySQL),
		Badges:         NewBadgeRepository(conns.MySQL),
		EventLogs:      NewEventLogRepository(conns.MySQL),
		EventLogMirror: NewEventLogMongoRepository(conns.MongoDB),
		SystemConfig:   NewSystemConfigRepository(conns.MySQL),
	}
}
