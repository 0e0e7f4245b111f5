package services

import (
	"context"
	"testing"

	"eventengine/internal/apierr"
	"eventengine/internal/models"
)

func TestPanelServiceAutoAssignRejectsWhenPanelModeDisabled(t *testing.T) {
	svc := NewPanelService(nil, nil, nil)
	round := &models.Round{ID: 1, PanelModeEnabled: false}

	err := svc.AutoAssign(context.Background(), &models.Event{}, round, false)
	apiErr, ok := apierr.As(err)
	if !ok {
		t.Fatalf("AutoAssign() error = %v, want an *apierr.Error", err)
	}
	if apiErr.Kind != apierr.PanelRequired {
		t.Errorf("AutoAssign() error kind = %s, want %s", apiErr.Kind, apierr.PanelRequired)
	}
}

func TestPanelServiceCreatePanelRejectsLockedStructure(t *testing.T) {
	svc := NewPanelService(nil, nil, nil)
	round := &models.Round{ID: 1, PanelStructureLocked: true}

	err := svc.CreatePanel(context.Background(), round, &models.Panel{})
	apiErr, ok := apierr.As(err)
	if !ok {
		t.Fatalf("CreatePanel() error = %v, want an *apierr.Error", err)
	}
	if apiErr.Kind != apierr.BadRounds {
		t.Errorf("CreatePanel() error kind = %s, want %s", apiErr.Kind, apierr.BadRounds)
	}
}
