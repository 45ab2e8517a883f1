package wavevalidator

import (
	"errors"
	"testing"

	"github.com/kingrea/waveplan/internal/domain"
)

func TestValidateAllowsDependencyFromSameOrEarlierWave(t *testing.T) {
	v := New()
	story := domain.Story{ID: "S", Wave: 2}
	dep := domain.Story{ID: "D", Wave: 1}
	if err := v.Validate(story, dep); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateRejectsDependencyFromLaterWave(t *testing.T) {
	v := New()
	story := domain.Story{ID: "S", Wave: 1}
	dep := domain.Story{ID: "D", Wave: 2}
	err := v.Validate(story, dep)
	var waveErr *domain.InvalidWaveDependencyError
	if !errors.As(err, &waveErr) {
		t.Fatalf("expected InvalidWaveDependencyError, got %v", err)
	}
	if waveErr.StoryID != "S" || waveErr.DepID != "D" {
		t.Fatalf("unexpected error payload: %+v", waveErr)
	}
}

func TestValidateWaveChangeRejectsDependencyViolation(t *testing.T) {
	v := New()
	story := domain.Story{ID: "S", Wave: 1}
	deps := []domain.Story{{ID: "D1", Wave: 3}}
	err := v.ValidateWaveChange(story, 2, deps, nil)
	var waveErr *domain.InvalidWaveDependencyError
	if !errors.As(err, &waveErr) {
		t.Fatalf("expected InvalidWaveDependencyError, got %v", err)
	}
}

func TestValidateWaveChangeRejectsDependentViolation(t *testing.T) {
	v := New()
	story := domain.Story{ID: "S", Wave: 3}
	dependents := []domain.Story{{ID: "E1", Wave: 2}}
	err := v.ValidateWaveChange(story, 4, nil, dependents)
	var waveErr *domain.InvalidWaveDependencyError
	if !errors.As(err, &waveErr) {
		t.Fatalf("expected InvalidWaveDependencyError when a dependent's wave would be gated, got %v", err)
	}
}

func TestValidateWaveChangeAllowsConsistentMove(t *testing.T) {
	v := New()
	story := domain.Story{ID: "S", Wave: 2}
	deps := []domain.Story{{ID: "D1", Wave: 1}}
	dependents := []domain.Story{{ID: "E1", Wave: 5}}
	if err := v.ValidateWaveChange(story, 3, deps, dependents); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
