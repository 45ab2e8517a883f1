// Package schedule computes business-day start/end/duration for
// topologically ordered stories, grounded on schedule_calculator.py.
package schedule

import (
	"math"
	"time"

	"github.com/kingrea/waveplan/internal/calendar"
	"github.com/kingrea/waveplan/internal/domain"
)

// Calculator assigns dates honoring dependencies, per-developer
// serialization, and wave barriers.
type Calculator struct{}

// New returns a ready-to-use Calculator.
func New() *Calculator { return &Calculator{} }

// Duration computes max(1, ceil(storyPoint / velocityPerDay)).
func Duration(storyPoint domain.StoryPoint, velocityPerDay float64) int {
	if velocityPerDay <= 0 {
		return 1
	}
	d := int(math.Ceil(float64(storyPoint) / velocityPerDay))
	if d < 1 {
		return 1
	}
	return d
}

// Calculate assigns start/end/duration to every story in topo (already
// topologically ordered), reading dependency end dates from storyMap as it
// goes and writing the result back into storyMap so later stories observe
// earlier placements. start is the effective roadmap start, already a
// workday.
func (c *Calculator) Calculate(topo []domain.Story, storyMap map[string]domain.Story, velocityPerDay float64, start time.Time) []domain.Story {
	devLastEnd := make(map[string]time.Time)
	waveLastEnd := make(map[int]time.Time)

	out := make([]domain.Story, 0, len(topo))
	for _, story := range topo {
		duration := 1
		if story.StoryPoint != nil {
			duration = Duration(*story.StoryPoint, velocityPerDay)
		}

		earliest := start

		if story.Wave > 0 {
			for w, end := range waveLastEnd {
				if w > 0 && w < story.Wave {
					candidate := calendar.NextWorkday(end)
					if candidate.After(earliest) {
						earliest = candidate
					}
				}
			}
		}

		if story.DeveloperID != nil {
			if end, ok := devLastEnd[*story.DeveloperID]; ok {
				candidate := calendar.NextWorkday(end)
				if candidate.After(earliest) {
					earliest = candidate
				}
			}
		}

		for _, depID := range story.Dependencies {
			dep, ok := storyMap[depID]
			if !ok || dep.EndDate == nil {
				continue
			}
			candidate := calendar.NextWorkday(*dep.EndDate)
			if candidate.After(earliest) {
				earliest = candidate
			}
		}

		startDate := calendar.EnsureWorkday(earliest)
		endDate := calendar.AddWorkdays(startDate, duration-1)

		story.StartDate = &startDate
		story.EndDate = &endDate
		story.Duration = &duration

		storyMap[story.ID] = story
		out = append(out, story)

		if story.DeveloperID != nil {
			if cur, ok := devLastEnd[*story.DeveloperID]; !ok || endDate.After(cur) {
				devLastEnd[*story.DeveloperID] = endDate
			}
		}
		if cur, ok := waveLastEnd[story.Wave]; !ok || endDate.After(cur) {
			waveLastEnd[story.Wave] = endDate
		}
	}
	return out
}
