package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewDeveloperRejectsShortName(t *testing.T) {
	_, err := NewDeveloper("d1", "A")
	if err == nil {
		t.Fatalf("expected a validation error for a single-character name")
	}
}

func TestNewDeveloperAccepts(t *testing.T) {
	d, err := NewDeveloper("d1", "Ada")
	if err != nil {
		t.Fatalf("NewDeveloper: %v", err)
	}
	if d.ID != "d1" || d.Name != "Ada" {
		t.Fatalf("unexpected developer: %+v", d)
	}
}

func TestNewFeatureRejectsNegativeWave(t *testing.T) {
	_, err := NewFeature("f1", "Checkout", -1)
	if err == nil {
		t.Fatalf("expected a validation error for a negative wave")
	}
}

func TestNewConfigurationRejectsMaxIdleDaysBelowTwo(t *testing.T) {
	_, err := NewConfiguration(21, 15, CriteriaLoadBalancing, 1, nil)
	if err == nil {
		t.Fatalf("expected max_idle_days < 2 to be rejected")
	}
}

func TestNewConfigurationRejectsUnknownCriteria(t *testing.T) {
	_, err := NewConfiguration(21, 15, AllocationCriteria("BOGUS"), 2, nil)
	if err == nil {
		t.Fatalf("expected an unrecognized allocation criteria to be rejected")
	}
}

func TestNewConfigurationAccepts(t *testing.T) {
	cfg, err := NewConfiguration(21, 15, CriteriaDependencyOwner, 3, nil)
	if err != nil {
		t.Fatalf("NewConfiguration: %v", err)
	}
	if cfg.VelocityPerDay() != 21.0/15.0 {
		t.Fatalf("unexpected velocity: %v", cfg.VelocityPerDay())
	}
}

func TestNewConfigurationRejectsNonWorkdayRoadmapStart(t *testing.T) {
	saturday := time.Date(2025, time.January, 11, 0, 0, 0, 0, time.UTC)
	_, err := NewConfiguration(21, 15, CriteriaLoadBalancing, 2, &saturday)
	if err == nil {
		t.Fatalf("expected a non-workday roadmap start date to be rejected")
	}
}

func TestNewConfigurationAcceptsWorkdayRoadmapStart(t *testing.T) {
	monday := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)
	cfg, err := NewConfiguration(21, 15, CriteriaLoadBalancing, 2, &monday)
	if err != nil {
		t.Fatalf("NewConfiguration: %v", err)
	}
	if cfg.RoadmapStartDate == nil || !cfg.RoadmapStartDate.Equal(monday) {
		t.Fatalf("expected RoadmapStartDate to round-trip, got %v", cfg.RoadmapStartDate)
	}
}

func TestValidateStoryPointRejectsUnlistedValue(t *testing.T) {
	err := ValidateStoryPoint("S1", StoryPoint(7))
	if err == nil {
		t.Fatalf("expected an InvalidStoryPointError for story point 7")
	}
	var spErr *InvalidStoryPointError
	if !errors.As(err, &spErr) {
		t.Fatalf("expected *InvalidStoryPointError, got %T", err)
	}
}
