// Package allocator implements wave-by-wave developer allocation with
// single-flag start-date advancement, deadlock detection, and a
// post-pass fixed-point repair loop, grounded on
// allocate_developers.py's AllocateDevelopersUseCase — the core of the
// planning engine.
package allocator

import (
	"sort"
	"time"

	"github.com/kingrea/waveplan/internal/calendar"
	"github.com/kingrea/waveplan/internal/domain"
	"github.com/kingrea/waveplan/internal/logging"
	"github.com/kingrea/waveplan/internal/planning/idleness"
	"github.com/kingrea/waveplan/internal/planning/loadbalancer"
	"github.com/kingrea/waveplan/internal/planning/sorter"
	"github.com/kingrea/waveplan/internal/planning/validator"
)

// Default caps, preserved verbatim from the source rather than tuned away:
// the repair loop's termination guarantee depends on both.
const (
	DefaultMaxIterations          = 1000
	MaxStabilizationPasses        = 10
	MaxReallocationsPerStory      = 3
	maxConflictResolutionPasses   = 100
)

// DeadlockWarning reports that a wave's allocation pass made no progress.
type DeadlockWarning struct {
	Wave           int
	UnallocatedIDs []string
}

// Metrics tallies allocation-decision counters for observability,
// grounded on AllocationMetrics.
type Metrics struct {
	StoriesProcessed          int
	WavesProcessed            int
	StoriesAllocated          int
	AllocationsByDependencyOwner int
	AllocationsByLoadBalancing int
	DateAdjustments            int
	DeadlocksDetected          int
	ValidationDependencyFixes  int
	ValidationConflictFixes    int
	MaxIdleViolationsDetected  int
	MaxIdleViolationsFixed     int
	ValidationReallocations    int
	FailedReallocations        int
	IterationsPerWave          map[int]int
	TotalIterations            int
	TotalTime                  time.Duration
}

// Warnings aggregates every recovered-and-reported condition the allocator
// surfaces alongside its result.
type Warnings struct {
	Deadlocks       []DeadlockWarning
	Idleness        []idleness.Warning
	InterWaveGaps   []idleness.InterWaveGap
}

// Result is the allocator's output: the subset of stories whose fields
// changed (for the caller's batched persistence), plus warnings and
// metrics.
type Result struct {
	Modified []domain.Story
	Warnings Warnings
	Metrics  Metrics
}

// Allocator wires the load balancer and backlog sorter (for the final
// dependency check) into the wave-by-wave allocation algorithm.
type Allocator struct {
	balancer      *loadbalancer.Balancer
	sorter        *sorter.Sorter
	log           *logging.Logger
	maxIterations int
}

// Option customizes an Allocator.
type Option func(*Allocator)

// WithMaxIterations overrides the per-wave iteration cap.
func WithMaxIterations(n int) Option {
	return func(a *Allocator) {
		if n > 0 {
			a.maxIterations = n
		}
	}
}

// WithLogger attaches a logger for trace-level allocation decisions.
func WithLogger(l *logging.Logger) Option {
	return func(a *Allocator) { a.log = l }
}

// New wires an Allocator. seed is forwarded to the load balancer's RNG for
// reproducible tie-breaking; nil means non-deterministic.
func New(seed *int64, opts ...Option) *Allocator {
	a := &Allocator{
		balancer:      loadbalancer.New(seed),
		sorter:        sorter.New(),
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type allocState struct {
	storyMap map[string]domain.Story
	modified map[string]struct{}
	metrics  Metrics
}

func (s *allocState) markModified(id string) {
	s.modified[id] = struct{}{}
}

// storyList returns every known story sorted by ID so downstream ordering
// (topological sort, developer availability scans) never depends on Go's
// randomized map iteration order.
func (s *allocState) storyList() []domain.Story {
	out := make([]domain.Story, 0, len(s.storyMap))
	for _, st := range s.storyMap {
		out = append(out, st)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Run allocates developers onto stories that already carry dates and
// durations (i.e. have passed through the schedule calculator), wave by
// wave, then repairs dependency, overlap, and idleness invariants to a
// fixed point. The only hard failure is an empty developer roster.
func (a *Allocator) Run(stories []domain.Story, devs []domain.Developer, config domain.Configuration) (Result, error) {
	started := time.Now()
	if len(devs) == 0 {
		return Result{}, &domain.NoDevelopersAvailableError{}
	}

	state := &allocState{
		storyMap: make(map[string]domain.Story, len(stories)),
		modified: make(map[string]struct{}),
		metrics:  Metrics{IterationsPerWave: make(map[int]int)},
	}
	for _, s := range stories {
		state.storyMap[s.ID] = s
	}
	state.metrics.StoriesProcessed = len(stories)

	waves := uniqueSortedWaves(stories)
	state.metrics.WavesProcessed = len(waves)

	var warnings Warnings
	adjustedGlobal := make(map[string]struct{})
	totalAllocated := 0

	for _, wave := range waves {
		waveStories := storiesInWave(state.storyList(), wave)
		sort.SliceStable(waveStories, func(i, j int) bool { return waveStories[i].Priority < waveStories[j].Priority })

		allocated, deadlocks := a.allocateWave(wave, waveStories, devs, state, adjustedGlobal, config)
		totalAllocated += allocated
		warnings.Deadlocks = append(warnings.Deadlocks, deadlocks...)
	}

	depFixed, conflictsFixed, _ := a.validateAndFixAllocations(state, devs, config)
	state.metrics.ValidationDependencyFixes = depFixed
	state.metrics.ValidationConflictFixes = conflictsFixed

	a.renumberScheduleOrder(state)

	allStories := state.storyList()
	idleWarnings, interWave := idleness.New().Detect(allocatedOnly(allStories), config.MaxIdleDays)
	warnings.Idleness = idleWarnings
	warnings.InterWaveGaps = interWave

	state.metrics.StoriesAllocated = totalAllocated
	state.metrics.TotalTime = time.Since(started)

	modified := make([]domain.Story, 0, len(state.modified))
	for id := range state.modified {
		modified = append(modified, state.storyMap[id])
	}
	sort.SliceStable(modified, func(i, j int) bool { return modified[i].ID < modified[j].ID })

	return Result{Modified: modified, Warnings: warnings, Metrics: state.metrics}, nil
}

func uniqueSortedWaves(stories []domain.Story) []int {
	seen := make(map[int]struct{})
	for _, s := range stories {
		if s.FeatureID != nil {
			seen[s.Wave] = struct{}{}
		}
	}
	waves := make([]int, 0, len(seen))
	for w := range seen {
		waves = append(waves, w)
	}
	sort.Ints(waves)
	return waves
}

func storiesInWave(stories []domain.Story, wave int) []domain.Story {
	var out []domain.Story
	for _, s := range stories {
		if s.Wave == wave {
			out = append(out, s)
		}
	}
	return out
}

func allocatedOnly(stories []domain.Story) []domain.Story {
	var out []domain.Story
	for _, s := range stories {
		if s.IsAllocated() {
			out = append(out, s)
		}
	}
	return out
}

func unallocatedFrom(stories []domain.Story) []domain.Story {
	var out []domain.Story
	for _, s := range stories {
		if !s.IsAllocated() && s.HasSchedule() && s.StoryPoint != nil {
			out = append(out, s)
		}
	}
	return out
}

// allocateWave runs the per-wave allocation loop described in §4.7: honor
// dependencies, find free developers, assign or advance the date by one
// workday, and detect deadlock when a full pass makes no progress.
func (a *Allocator) allocateWave(wave int, waveStories []domain.Story, devs []domain.Developer, state *allocState, adjustedGlobal map[string]struct{}, config domain.Configuration) (int, []DeadlockWarning) {
	allocatedCount := 0
	var deadlocks []DeadlockWarning
	adjustedLastIter := make(map[string]struct{})

	for iter := 0; iter < a.maxIterations; iter++ {
		adjustedThisIter := make(map[string]struct{})
		unallocated := unallocatedFrom(waveStories)
		if len(unallocated) == 0 {
			break
		}

		allocationMade := false
		hasUnadjusted := false
		for _, s := range unallocated {
			if _, ok := adjustedLastIter[s.ID]; !ok {
				hasUnadjusted = true
				break
			}
		}

		for i := range unallocated {
			story := state.storyMap[unallocated[i].ID]

			if a.ensureDependenciesFinished(&story, state) {
				state.markModified(story.ID)
				state.storyMap[story.ID] = story
			}

			allStories := state.storyList()
			candidates := availableDevelopers(story.ID, *story.StartDate, *story.EndDate, allStories, devs)

			if len(candidates) > 0 {
				owner, hasOwner := loadbalancer.GetDependencyOwner(story, state.storyMap, candidates)
				selected, ok := a.balancer.GetDeveloperForStory(story, state.storyMap, candidates, allStories, config.AllocationCriteria, *story.StartDate, config.MaxIdleDays, wave)
				if !ok {
					selected = candidates[0]
				}

				devID := selected.ID
				story.DeveloperID = &devID
				state.storyMap[story.ID] = story
				waveStories = replaceStory(waveStories, story)
				state.markModified(story.ID)

				allocatedCount++
				allocationMade = true
				if hasOwner && selected.ID == owner.ID {
					state.metrics.AllocationsByDependencyOwner++
				} else {
					state.metrics.AllocationsByLoadBalancing++
				}
				break
			}

			_, everAdjusted := adjustedGlobal[story.ID]
			_, adjustedLast := adjustedLastIter[story.ID]
			if everAdjusted && adjustedLast && hasUnadjusted {
				continue
			}

			adjustStoryDates(&story, 1)
			state.storyMap[story.ID] = story
			waveStories = replaceStory(waveStories, story)
			adjustedGlobal[story.ID] = struct{}{}
			adjustedThisIter[story.ID] = struct{}{}
			state.markModified(story.ID)
			state.metrics.DateAdjustments++
		}

		adjustedLastIter = adjustedThisIter
		state.metrics.IterationsPerWave[wave]++
		state.metrics.TotalIterations++

		if !allocationMade && len(adjustedThisIter) == 0 {
			ids := make([]string, 0, len(unallocated))
			for _, s := range unallocated {
				ids = append(ids, s.ID)
			}
			deadlocks = append(deadlocks, DeadlockWarning{Wave: wave, UnallocatedIDs: ids})
			state.metrics.DeadlocksDetected++
			break
		}
	}

	return allocatedCount, deadlocks
}

func replaceStory(list []domain.Story, story domain.Story) []domain.Story {
	for i := range list {
		if list[i].ID == story.ID {
			list[i] = story
			break
		}
	}
	return list
}

func availableDevelopers(storyID string, start, end time.Time, allStories []domain.Story, devs []domain.Developer) []domain.Developer {
	var available []domain.Developer
	for _, dev := range devs {
		if conflict, _ := validator.HasConflict(dev.ID, storyID, start, end, allStories); !conflict {
			available = append(available, dev)
		}
	}
	return available
}

// ensureDependenciesFinished advances story.StartDate to the workday after
// its latest-ending dependency when a dependency overruns the current
// start date. Returns whether it adjusted anything.
func (a *Allocator) ensureDependenciesFinished(story *domain.Story, state *allocState) bool {
	if len(story.Dependencies) == 0 || story.StartDate == nil {
		return false
	}
	latest := latestDependencyEnd(*story, state.storyMap)
	if latest == nil {
		return false
	}
	if story.StartDate.After(*latest) {
		return false
	}
	newStart := calendar.AddWorkdays(*latest, 1)
	return updateStoryDates(story, newStart)
}

func latestDependencyEnd(story domain.Story, storyMap map[string]domain.Story) *time.Time {
	var latest *time.Time
	for _, depID := range story.Dependencies {
		dep, ok := storyMap[depID]
		if !ok || dep.EndDate == nil {
			continue
		}
		if latest == nil || dep.EndDate.After(*latest) {
			end := *dep.EndDate
			latest = &end
		}
	}
	return latest
}

// updateStoryDates moves story to newStart, preserving its duration.
func updateStoryDates(story *domain.Story, newStart time.Time) bool {
	newEnd := calculateNewEndDate(*story, newStart)
	if newEnd == nil {
		return false
	}
	story.StartDate = &newStart
	story.EndDate = newEnd
	return true
}

func calculateNewEndDate(story domain.Story, newStart time.Time) *time.Time {
	if story.Duration != nil {
		end := calendar.AddWorkdays(newStart, *story.Duration-1)
		return &end
	}
	if story.StartDate != nil && story.EndDate != nil {
		workdays := calendar.CountWorkdays(*story.StartDate, *story.EndDate)
		if workdays < 1 {
			workdays = 1
		}
		end := calendar.AddWorkdays(newStart, workdays-1)
		return &end
	}
	return nil
}

func adjustStoryDates(story *domain.Story, daysToAdd int) {
	if story.StartDate == nil {
		return
	}
	newStart := calendar.AddWorkdays(*story.StartDate, daysToAdd)
	updateStoryDates(story, newStart)
}
