// Package engine wires the sorter, schedule calculator, and allocator into
// a single planning run, grounded on the Option-pattern construction and
// deterministic-clock injection of the teacher's workflow engine
// (internal/workflow/engine/engine.go), repurposed here for a fixed
// three-stage pipeline rather than a pluggable module registry.
package engine

import (
	"fmt"
	"time"

	"github.com/kingrea/waveplan/internal/calendar"
	"github.com/kingrea/waveplan/internal/domain"
	"github.com/kingrea/waveplan/internal/logging"
	"github.com/kingrea/waveplan/internal/planning/allocator"
	"github.com/kingrea/waveplan/internal/planning/schedule"
	"github.com/kingrea/waveplan/internal/planning/sorter"
)

// Engine runs one full planning pass: sort -> schedule -> allocate.
type Engine struct {
	sorter    *sorter.Sorter
	scheduler *schedule.Calculator
	allocator *allocator.Allocator
	log       *logging.Logger
	clock     func() time.Time
	seed      *int64
	maxIter   int
}

// Option customizes an Engine instance.
type Option func(*Engine)

// WithClock injects a deterministic clock, primarily for tests that pin
// "today" as the roadmap start when Configuration.RoadmapStartDate is nil.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithLogger attaches a logger the engine forwards to the allocator.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithSeed fixes the load balancer's RNG seed for reproducible tie-breaks.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = &seed }
}

// WithMaxIterations overrides the allocator's per-wave iteration cap
// (allocator.DefaultMaxIterations otherwise).
func WithMaxIterations(n int) Option {
	return func(e *Engine) { e.maxIter = n }
}

// New builds an Engine with default (non-deterministic) allocation
// tie-breaking; pass WithSeed for reproducible runs.
func New(opts ...Option) *Engine {
	e := &Engine{
		sorter:    sorter.New(),
		scheduler: schedule.New(),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	allocOpts := []allocator.Option{allocator.WithLogger(e.log)}
	if e.maxIter > 0 {
		allocOpts = append(allocOpts, allocator.WithMaxIterations(e.maxIter))
	}
	e.allocator = allocator.New(e.seed, allocOpts...)
	return e
}

// Plan is the engine's output: every story with dates/duration computed,
// the subset allocation actually modified, and the allocator's warnings and
// metrics.
type Plan struct {
	AllStories []domain.Story
	Modified   []domain.Story
	Warnings   allocator.Warnings
	Metrics    allocator.Metrics
}

// Run sorts stories topologically, computes their schedule, and allocates
// developers, returning the full plan. stories must already carry Wave
// (hydrated from their feature) per the data-model's "wave lookup built
// once" design note.
func (e *Engine) Run(stories []domain.Story, devs []domain.Developer, config domain.Configuration) (Plan, error) {
	topo, err := e.sorter.Sort(stories)
	if err != nil {
		return Plan{}, fmt.Errorf("engine: sort backlog: %w", err)
	}

	start := config.RoadmapStartDate
	effectiveStart := e.clock()
	if start != nil {
		effectiveStart = *start
	}
	effectiveStart = calendar.EnsureWorkday(effectiveStart)

	storyMap := make(map[string]domain.Story, len(topo))
	for _, s := range topo {
		storyMap[s.ID] = s
	}
	scheduled := e.scheduler.Calculate(topo, storyMap, config.VelocityPerDay(), effectiveStart)

	result, err := e.allocator.Run(scheduled, devs, config)
	if err != nil {
		return Plan{}, fmt.Errorf("engine: allocate developers: %w", err)
	}

	if e.log != nil {
		e.log.Printf("plan: %d stories sorted, %d allocated, %d deadlocks, %d idleness warnings",
			len(scheduled), result.Metrics.StoriesAllocated, result.Metrics.DeadlocksDetected, len(result.Warnings.Idleness))
	}

	final := mergeFinal(scheduled, result.Modified)
	return Plan{AllStories: final, Modified: result.Modified, Warnings: result.Warnings, Metrics: result.Metrics}, nil
}

func mergeFinal(base []domain.Story, modified []domain.Story) []domain.Story {
	byID := make(map[string]domain.Story, len(base))
	for _, s := range base {
		byID[s.ID] = s
	}
	for _, s := range modified {
		byID[s.ID] = s
	}
	out := make([]domain.Story, 0, len(byID))
	for _, s := range base {
		out = append(out, byID[s.ID])
	}
	return out
}
