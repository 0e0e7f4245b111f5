package services

import (
	"context"
	"testing"

	"eventengine/internal/apierr"
	"eventengine/internal/models"
)

func TestRoundServiceDeleteRejectsNonDraft(t *testing.T) {
	svc := NewRoundService(nil, nil, nil)
	round := &models.Round{ID: 1, State: models.RoundActive}

	err := svc.Delete(context.Background(), round)
	apiErr, ok := apierr.As(err)
	if !ok {
		t.Fatalf("Delete() error = %v, want an *apierr.Error", err)
	}
	if apiErr.Kind != apierr.BadRounds {
		t.Errorf("Delete() error kind = %s, want %s", apiErr.Kind, apierr.BadRounds)
	}
}

func TestRoundServiceUpdateRejectsFrozenRound(t *testing.T) {
	svc := NewRoundService(nil, nil, nil)
	round := &models.Round{ID: 1, IsFrozen: true}

	err := svc.Update(context.Background(), round, round.RoundNo)
	apiErr, ok := apierr.As(err)
	if !ok {
		t.Fatalf("Update() error = %v, want an *apierr.Error", err)
	}
	if apiErr.Kind != apierr.RoundFrozen {
		t.Errorf("Update() error kind = %s, want %s", apiErr.Kind, apierr.RoundFrozen)
	}
}

func TestRoundServiceUpdateRejectsReorderWhenPanelsLocked(t *testing.T) {
	svc := NewRoundService(nil, nil, nil)
	round := &models.Round{ID: 1, RoundNo: 1, PanelStructureLocked: true}

	err := svc.Update(context.Background(), round, 2)
	apiErr, ok := apierr.As(err)
	if !ok {
		t.Fatalf("Update() error = %v, want an *apierr.Error", err)
	}
	if apiErr.Kind != apierr.BadRounds {
		t.Errorf("Update() error kind = %s, want %s", apiErr.Kind, apierr.BadRounds)
	}
}

func TestRoundServiceCreateRejectsBadRoundNo(t *testing.T) {
	svc := NewRoundService(nil, nil, nil)
	event := &models.Event{ID: 1}
	round := &models.Round{RoundNo: 0}

	err := svc.Create(context.Background(), event, round)
	apiErr, ok := apierr.As(err)
	if !ok {
		t.Fatalf("Create() error = %v, want an *apierr.Error", err)
	}
	if apiErr.Kind != apierr.BadRounds {
		t.Errorf("Create() error kind = %s, want %s", apiErr.Kind, apierr.BadRounds)
	}
}
