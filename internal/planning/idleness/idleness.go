// Package idleness reports intra-wave gaps between a developer's
// consecutive stories, grounded on idleness_detector.py (generalized to
// spec's same-wave scoping, which the retrieved Python version lacked).
package idleness

import (
	"sort"
	"time"

	"github.com/kingrea/waveplan/internal/calendar"
	"github.com/kingrea/waveplan/internal/domain"
)

// Warning reports a same-wave gap exceeding the configured bound.
type Warning struct {
	DeveloperID string
	Wave        int
	GapDays     int
	PrevStoryID string
	NextStoryID string
	IdleStart   time.Time
	IdleEnd     time.Time
}

// InterWaveGap is an informational (non-violation) gap between stories of
// different waves assigned to the same developer.
type InterWaveGap struct {
	DeveloperID string
	GapDays     int
	PrevStoryID string
	NextStoryID string
}

// Detector finds idleness violations and informational cross-wave gaps.
type Detector struct{}

// New returns a ready-to-use Detector.
func New() *Detector { return &Detector{} }

func groupByDeveloper(stories []domain.Story) map[string][]domain.Story {
	groups := make(map[string][]domain.Story)
	for _, s := range stories {
		if !s.IsAllocated() || s.StartDate == nil || s.EndDate == nil {
			continue
		}
		groups[*s.DeveloperID] = append(groups[*s.DeveloperID], s)
	}
	for dev := range groups {
		list := groups[dev]
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].StartDate.Before(*list[j].StartDate)
		})
		groups[dev] = list
	}
	return groups
}

// Detect reports same-wave gaps exceeding maxIdleDays and informational
// inter-wave gaps.
func (d *Detector) Detect(allocated []domain.Story, maxIdleDays int) ([]Warning, []InterWaveGap) {
	var warnings []Warning
	var interWave []InterWaveGap

	groups := groupByDeveloper(allocated)
	devIDs := make([]string, 0, len(groups))
	for devID := range groups {
		devIDs = append(devIDs, devID)
	}
	sort.Strings(devIDs)

	for _, devID := range devIDs {
		list := groups[devID]
		for i := 1; i < len(list); i++ {
			prev, next := list[i-1], list[i]
			gap := calendar.CountWorkdaysBetween(*prev.EndDate, *next.StartDate)
			if prev.Wave != next.Wave {
				interWave = append(interWave, InterWaveGap{
					DeveloperID: devID,
					GapDays:     gap,
					PrevStoryID: prev.ID,
					NextStoryID: next.ID,
				})
				continue
			}
			if gap > maxIdleDays {
				warnings = append(warnings, Warning{
					DeveloperID: devID,
					Wave:        next.Wave,
					GapDays:     gap,
					PrevStoryID: prev.ID,
					NextStoryID: next.ID,
					IdleStart:   prev.EndDate.AddDate(0, 0, 1),
					IdleEnd:     next.StartDate.AddDate(0, 0, -1),
				})
			}
		}
	}
	return warnings, interWave
}
