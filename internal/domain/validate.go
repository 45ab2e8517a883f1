package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/kingrea/waveplan/internal/calendar"
)

// ValidationError reports a field-level violation caught when constructing
// an entity, grounded on the field-by-field validate() methods the teacher
// used for its own config entities.
type ValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("domain: invalid %s.%s: %s", e.Entity, e.Field, e.Reason)
}

// NewDeveloper validates and returns a Developer. Names shorter than two
// characters are rejected since a single letter can't distinguish two
// developers in reports or the TUI roster.
func NewDeveloper(id, name string) (Developer, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return Developer{}, &ValidationError{Entity: "Developer", Field: "Name", Reason: "must be at least 2 characters"}
	}
	if strings.TrimSpace(id) == "" {
		return Developer{}, &ValidationError{Entity: "Developer", Field: "ID", Reason: "must not be empty"}
	}
	return Developer{ID: id, Name: name}, nil
}

// NewFeature validates and returns a Feature. Names shorter than three
// characters are rejected for the same reporting-legibility reason as
// NewDeveloper.
func NewFeature(id, name string, wave int) (Feature, error) {
	name = strings.TrimSpace(name)
	if len(name) < 3 {
		return Feature{}, &ValidationError{Entity: "Feature", Field: "Name", Reason: "must be at least 3 characters"}
	}
	if strings.TrimSpace(id) == "" {
		return Feature{}, &ValidationError{Entity: "Feature", Field: "ID", Reason: "must not be empty"}
	}
	if wave < 0 {
		return Feature{}, &ValidationError{Entity: "Feature", Field: "Wave", Reason: "must not be negative"}
	}
	return Feature{ID: id, Name: name, Wave: wave}, nil
}

// NewConfiguration validates and returns a Configuration. All sprint and
// idle-day fields must be positive so VelocityPerDay and the idleness
// detector never operate against a zero or negative denominator.
// roadmapStartDate may be nil (the engine then uses its injected clock);
// when set it must already land on a workday — callers that only have a
// calendar date picker, rather than a validated form, should snap it with
// calendar.EnsureWorkday before calling in, the same way the engine snaps
// a nil or unchecked date at run time.
func NewConfiguration(storyPointsPerSprint, workdaysPerSprint int, criteria AllocationCriteria, maxIdleDays int, roadmapStartDate *time.Time) (Configuration, error) {
	if storyPointsPerSprint <= 0 {
		return Configuration{}, &ValidationError{Entity: "Configuration", Field: "StoryPointsPerSprint", Reason: "must be positive"}
	}
	if workdaysPerSprint <= 0 {
		return Configuration{}, &ValidationError{Entity: "Configuration", Field: "WorkdaysPerSprint", Reason: "must be positive"}
	}
	if maxIdleDays < 2 {
		return Configuration{}, &ValidationError{Entity: "Configuration", Field: "MaxIdleDays", Reason: "must be at least 2"}
	}
	if criteria != CriteriaLoadBalancing && criteria != CriteriaDependencyOwner {
		return Configuration{}, &ValidationError{Entity: "Configuration", Field: "AllocationCriteria", Reason: "must be LOAD_BALANCING or DEPENDENCY_OWNER"}
	}
	if roadmapStartDate != nil && !calendar.IsWorkday(*roadmapStartDate) {
		return Configuration{}, &ValidationError{Entity: "Configuration", Field: "RoadmapStartDate", Reason: "must fall on a workday"}
	}
	return Configuration{
		StoryPointsPerSprint: storyPointsPerSprint,
		WorkdaysPerSprint:    workdaysPerSprint,
		AllocationCriteria:   criteria,
		MaxIdleDays:          maxIdleDays,
		RoadmapStartDate:     roadmapStartDate,
	}, nil
}

// ValidateStoryPoint reports an InvalidStoryPointError if sp is not one of
// the organization's allowed estimates.
func ValidateStoryPoint(storyID string, sp StoryPoint) error {
	if !sp.Valid() {
		return &InvalidStoryPointError{StoryID: storyID, Value: int(sp)}
	}
	return nil
}
