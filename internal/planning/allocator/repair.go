package allocator

import (
	"sort"

	"github.com/kingrea/waveplan/internal/calendar"
	"github.com/kingrea/waveplan/internal/domain"
	"github.com/kingrea/waveplan/internal/planning/validator"
)

// validateAndFixAllocations runs the unified stabilization loop: fix
// dependency violations, resolve period overlaps, then repair idleness
// violations by reallocation, repeating until a pass makes zero changes or
// MaxStabilizationPasses is reached.
func (a *Allocator) validateAndFixAllocations(state *allocState, devs []domain.Developer, config domain.Configuration) (int, int, int) {
	totalDepFixed, totalConflictsResolved, totalIdleFixed := 0, 0, 0
	reallocationCounts := make(map[string]int)

	for pass := 0; pass < MaxStabilizationPasses; pass++ {
		changed := false

		depFixed := a.finalDependencyCheck(state)
		if depFixed > 0 {
			totalDepFixed += depFixed
			changed = true
		}

		conflictsResolved := a.resolveAllocationConflicts(state, devs)
		if conflictsResolved > 0 {
			totalConflictsResolved += conflictsResolved
			changed = true
		}

		idleFixed := a.checkAndFixIdleViolations(state, devs, reallocationCounts, config)
		if idleFixed > 0 {
			totalIdleFixed += idleFixed
			changed = true
		}

		if !changed {
			break
		}
	}

	return totalDepFixed, totalConflictsResolved, totalIdleFixed
}

// finalDependencyCheck walks stories in topological order and pushes a
// story's start date past any dependency that still overruns it. Runs
// against already-allocated stories too; resolveAllocationConflicts cleans
// up any overlap fallout.
func (a *Allocator) finalDependencyCheck(state *allocState) int {
	topo, err := a.sorter.Sort(state.storyList())
	if err != nil {
		return 0
	}

	fixed := 0
	for _, story := range topo {
		current := state.storyMap[story.ID]
		if current.StartDate == nil || len(current.Dependencies) == 0 {
			continue
		}
		latest := latestDependencyEnd(current, state.storyMap)
		if latest == nil {
			continue
		}
		if current.StartDate.After(*latest) {
			continue
		}
		newStart := calendar.AddWorkdays(*latest, 1)
		if !updateStoryDates(&current, newStart) {
			continue
		}
		state.storyMap[current.ID] = current
		state.markModified(current.ID)
		fixed++
	}
	return fixed
}

// resolveAllocationConflicts pushes a developer's later-starting story past
// an earlier one whenever their intervals overlap, per developer, until a
// pass finds no more overlaps or the safety cap is hit.
func (a *Allocator) resolveAllocationConflicts(state *allocState, devs []domain.Developer) int {
	resolved := 0

	for pass := 0; pass < maxConflictResolutionPasses; pass++ {
		foundInPass := false

		for _, dev := range devs {
			devStories := storiesForDeveloper(state.storyList(), dev.ID)
			if len(devStories) < 2 {
				continue
			}
			sort.SliceStable(devStories, func(i, j int) bool {
				if devStories[i].StartDate.Equal(*devStories[j].StartDate) {
					return devStories[i].ID < devStories[j].ID
				}
				return devStories[i].StartDate.Before(*devStories[j].StartDate)
			})

			for i := 0; i < len(devStories)-1; i++ {
				current, next := devStories[i], devStories[i+1]
				if !validator.PeriodsOverlap(*current.StartDate, *current.EndDate, *next.StartDate, *next.EndDate) {
					continue
				}
				newStart := calendar.AddWorkdays(*current.EndDate, 1)
				if !updateStoryDates(&next, newStart) {
					continue
				}
				state.storyMap[next.ID] = next
				state.markModified(next.ID)
				resolved++
				foundInPass = true
			}
		}

		if !foundInPass {
			break
		}
	}

	return resolved
}

func storiesForDeveloper(stories []domain.Story, devID string) []domain.Story {
	var out []domain.Story
	for _, s := range stories {
		if s.IsAllocated() && *s.DeveloperID == devID && s.StartDate != nil && s.EndDate != nil {
			out = append(out, s)
		}
	}
	return out
}

// checkAndFixIdleViolations walks allocated stories in start-date order and
// attempts to reallocate any that violate the idleness bound against the
// developer's immediately-prior same-wave story.
func (a *Allocator) checkAndFixIdleViolations(state *allocState, devs []domain.Developer, reallocationCounts map[string]int, config domain.Configuration) int {
	if config.MaxIdleDays <= 0 {
		return 0
	}

	allocated := allocatedOnly(state.storyList())
	sort.SliceStable(allocated, func(i, j int) bool { return allocated[i].StartDate.Before(*allocated[j].StartDate) })

	fixes := 0
	for _, story := range allocated {
		current := state.storyMap[story.ID]
		idleDays := checkMaxIdleViolation(current, state.storyList(), config.MaxIdleDays)
		if idleDays == nil {
			continue
		}
		state.metrics.MaxIdleViolationsDetected++

		if a.tryReallocateWithRules(state, devs, current, reallocationCounts, config) {
			fixes++
			state.metrics.MaxIdleViolationsFixed++
		}
	}
	return fixes
}

// checkMaxIdleViolation returns the idle gap in workdays between a story
// and its developer's most recent prior same-wave story, or nil if there
// is no violation (scoped to the same wave per spec, generalizing the
// unscoped check in the retrieved source).
func checkMaxIdleViolation(story domain.Story, allStories []domain.Story, maxIdleDays int) *int {
	if !story.IsAllocated() || story.StartDate == nil {
		return nil
	}
	var prev *domain.Story
	for i := range allStories {
		other := allStories[i]
		if other.ID == story.ID || !other.IsAllocated() || *other.DeveloperID != *story.DeveloperID {
			continue
		}
		if other.Wave != story.Wave || other.EndDate == nil {
			continue
		}
		if other.EndDate.Before(*story.StartDate) {
			if prev == nil || other.EndDate.After(*prev.EndDate) {
				o := other
				prev = &o
			}
		}
	}
	if prev == nil {
		return nil
	}
	gap := calendar.CountWorkdaysBetween(*prev.EndDate, *story.StartDate)
	if gap <= maxIdleDays {
		return nil
	}
	return &gap
}

// tryReallocateWithRules attempts to move story to an alternate developer
// that does not create a fresh idleness violation, rejecting the move
// (and counting a failed reallocation) after MaxReallocationsPerStory
// attempts for this story.
func (a *Allocator) tryReallocateWithRules(state *allocState, devs []domain.Developer, story domain.Story, reallocationCounts map[string]int, config domain.Configuration) bool {
	if !story.IsAllocated() || story.StartDate == nil || story.EndDate == nil {
		return false
	}

	if reallocationCounts[story.ID] >= MaxReallocationsPerStory {
		state.metrics.FailedReallocations++
		return false
	}
	reallocationCounts[story.ID]++

	allStories := state.storyList()
	candidates := availableDevelopers(story.ID, *story.StartDate, *story.EndDate, allStories, devs)
	var alternatives []domain.Developer
	for _, c := range candidates {
		if c.ID != *story.DeveloperID {
			alternatives = append(alternatives, c)
		}
	}
	if len(alternatives) == 0 {
		state.metrics.FailedReallocations++
		return false
	}

	selected, ok := a.balancer.GetDeveloperForStory(story, state.storyMap, alternatives, allStories, config.AllocationCriteria, *story.StartDate, config.MaxIdleDays, story.Wave)
	if !ok {
		selected = alternatives[0]
	}

	trial := story
	newDevID := selected.ID
	trial.DeveloperID = &newDevID

	if checkMaxIdleViolation(trial, allStories, config.MaxIdleDays) != nil {
		state.metrics.FailedReallocations++
		return false
	}

	state.storyMap[story.ID] = trial
	state.markModified(story.ID)
	state.metrics.ValidationReallocations++
	return true
}

// renumberScheduleOrder sorts every story by priority and assigns dense
// indices 0..N-1, only touching ScheduleOrder where it changes.
func (a *Allocator) renumberScheduleOrder(state *allocState) {
	stories := state.storyList()
	sort.SliceStable(stories, func(i, j int) bool { return stories[i].Priority < stories[j].Priority })

	for index, story := range stories {
		idx := index
		if story.ScheduleOrder == nil || *story.ScheduleOrder != idx {
			story.ScheduleOrder = &idx
			state.storyMap[story.ID] = story
			state.markModified(story.ID)
		}
	}
}
