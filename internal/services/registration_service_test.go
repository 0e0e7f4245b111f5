package services

import (
	"testing"

	"eventengine/internal/apierr"
	"eventengine/internal/models"
)

func TestCheckEligibleOpenForAllAdmitsAnyCollege(t *testing.T) {
	event := &models.Event{OpenForAudience: models.OpenForAll}
	if err := checkEligible(event, ""); err != nil {
		t.Errorf("checkEligible() = %v, want nil for open_for=ALL", err)
	}
}

func TestCheckEligibleOpenForMITRejectsNonMIT(t *testing.T) {
	event := &models.Event{OpenForAudience: models.OpenForMIT}
	err := checkEligible(event, "Other University")
	apiErr, ok := apierr.As(err)
	if !ok || apiErr.Kind != apierr.NotEligible {
		t.Fatalf("checkEligible() error = %v, want NOT_ELIGIBLE", err)
	}
}

func TestCheckEligibleOpenForMITAdmitsMIT(t *testing.T) {
	event := &models.Event{OpenForAudience: models.OpenForMIT}
	tests := []string{"MIT", "mit", " Mit "}
	for _, college := range tests {
		if err := checkEligible(event, college); err != nil {
			t.Errorf("checkEligible(%q) = %v, want nil", college, err)
		}
	}
}
