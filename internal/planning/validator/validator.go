// Package validator implements the pure developer-availability predicate,
// grounded on allocation_validator.py.
package validator

import (
	"time"

	"github.com/kingrea/waveplan/internal/domain"
)

// Conflict describes a story whose interval overlaps the candidate window.
type Conflict struct {
	StoryID   string
	Start     time.Time
	End       time.Time
}

// PeriodsOverlap reports whether [s1,e1] and [s2,e2] share any day.
func PeriodsOverlap(s1, e1, s2, e2 time.Time) bool {
	return !s1.After(e2) && !s2.After(e1)
}

// HasConflict reports whether devID already owns a story overlapping [s,e],
// excluding storyID itself. Only stories with both dates set are
// considered. An empty conflict slice means the developer is free.
func HasConflict(devID, storyID string, s, e time.Time, allStories []domain.Story) (bool, []Conflict) {
	var conflicts []Conflict
	for _, other := range allStories {
		if other.ID == storyID {
			continue
		}
		if !other.IsAllocated() || *other.DeveloperID != devID {
			continue
		}
		if other.StartDate == nil || other.EndDate == nil {
			continue
		}
		if PeriodsOverlap(s, e, *other.StartDate, *other.EndDate) {
			conflicts = append(conflicts, Conflict{StoryID: other.ID, Start: *other.StartDate, End: *other.EndDate})
		}
	}
	return len(conflicts) > 0, conflicts
}
