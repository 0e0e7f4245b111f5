// internal/services/event_service.go
// Event identity lifecycle: creation mints slug + event code, updates
// enforce the same invariants a fresh Event.Validate() would.

package services

import (
	"context"
	"fmt"

	"eventengine/internal/apierr"
	"eventengine/internal/identifiers"
	"eventengine/internal/models"
	"eventengine/internal/repositories"
)

type EventService struct {
	repos *repositories.Container
}

func NewEventService(repos *repositories.Container) *EventService {
	return &EventService{repos: repos}
}

// Create mints a unique slug and monotonic event code, then persists.
func (s *EventService) Create(ctx context.Context, e *models.Event) error {
	if err := e.Validate(); err != nil {
		return apierr.New(apierr.BadInput, err.Error())
	}

	slug, err := identifiers.UniqueSlug(e.Title, func(candidate string) (bool, error) {
		return s.repos.Events.SlugExists(ctx, candidate)
	})
	if err != nil {
		return fmt.Errorf("mint slug: %w", err)
	}
	e.Slug = slug

	maxID, err := s.repos.Events.MaxID(ctx)
	if err != nil {
		return fmt.Errorf("read max event id: %w", err)
	}
	e.EventCode = identifiers.EventCode(maxID)

	if e.Status == "" {
		e.Status = models.EventClosed
	}
	if e.OpenForAudience == "" {
		e.OpenForAudience = models.OpenForMIT
	}

	return s.repos.Events.Create(ctx, e)
}

func (s *EventService) GetBySlug(ctx context.Context, slug string) (*models.Event, error) {
	event, err := s.repos.Events.GetBySlug(ctx, slug)
	if err == repositories.ErrNotFound {
		return nil, apierr.New(apierr.NotFound, "event not found")
	}
	return event, err
}

func (s *EventService) GetByID(ctx context.Context, id int) (*models.Event, error) {
	event, err := s.repos.Events.GetByID(ctx, id)
	if err == repositories.ErrNotFound {
		return nil, apierr.New(apierr.NotFound, "event not found")
	}
	return event, err
}

func (s *EventService) List(ctx context.Context, filter repositories.EventListFilter) ([]*models.Event, int, error) {
	return s.repos.Events.List(ctx, filter)
}

func (s *EventService) Update(ctx context.Context, e *models.Event) error {
	if err := e.Validate(); err != nil {
		return apierr.New(apierr.BadInput, err.Error())
	}
	return s.repos.Events.Update(ctx, e)
}

// SetRoundCount keeps events.round_count in sync after a round is added or
// removed from the Round Registry.
func (s *EventService) SetRoundCount(ctx context.Context, eventID, count int) error {
	return s.repos.Events.SetRoundCount(ctx, eventID, count)
}
