package domain

import (
	"fmt"
	"strings"
)

// InvalidStoryPointError reports a story point outside the allowed set.
type InvalidStoryPointError struct {
	StoryID string
	Value   int
}

func (e *InvalidStoryPointError) Error() string {
	return fmt.Sprintf("domain: story %q has invalid story point %d (must be 3, 5, 8, or 13)", e.StoryID, e.Value)
}

// CyclicDependencyError carries the cycle path discovered by the cycle
// detector, first id repeated at the end.
type CyclicDependencyError struct {
	Path []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("domain: cyclic dependency detected: %s", strings.Join(e.Path, " → "))
}

// StoryNotFoundError reports a reference to a missing story.
type StoryNotFoundError struct {
	ID string
}

func (e *StoryNotFoundError) Error() string {
	return fmt.Sprintf("domain: story %q not found", e.ID)
}

// DeveloperNotFoundError reports a reference to a missing developer.
type DeveloperNotFoundError struct {
	ID string
}

func (e *DeveloperNotFoundError) Error() string {
	return fmt.Sprintf("domain: developer %q not found", e.ID)
}

// FeatureNotFoundError reports a reference to a missing feature.
type FeatureNotFoundError struct {
	ID string
}

func (e *FeatureNotFoundError) Error() string {
	return fmt.Sprintf("domain: feature %q not found", e.ID)
}

// DuplicateWaveError reports that a wave is already owned by another
// feature.
type DuplicateWaveError struct {
	Wave         int
	ExistingName string
}

func (e *DuplicateWaveError) Error() string {
	return fmt.Sprintf("domain: wave %d already assigned to feature %q", e.Wave, e.ExistingName)
}

// FeatureHasStoriesError reports that a feature cannot be removed because
// stories still reference it.
type FeatureHasStoriesError struct {
	ID    string
	Name  string
	Count int
}

func (e *FeatureHasStoriesError) Error() string {
	return fmt.Sprintf("domain: feature %q (%s) still has %d stories", e.ID, e.Name, e.Count)
}

// InvalidWaveDependencyError reports that a story depends on a later-wave
// story, violating the wave barrier.
type InvalidWaveDependencyError struct {
	StoryID   string
	StoryWave int
	DepID     string
	DepWave   int
}

func (e *InvalidWaveDependencyError) Error() string {
	return fmt.Sprintf("domain: story %q (wave %d) cannot depend on %q (wave %d): dependency wave must not exceed story wave",
		e.StoryID, e.StoryWave, e.DepID, e.DepWave)
}

// NoDevelopersAvailableError is the allocator's only hard failure besides a
// cyclic dependency.
type NoDevelopersAvailableError struct{}

func (e *NoDevelopersAvailableError) Error() string {
	return "domain: no developers available for allocation"
}
