// Package loadbalancer selects a developer for a story under load-balancing
// or dependency-owner-first criteria, grounded on
// developer_load_balancer.py. The RNG is an injectable seed source per the
// spec's reproducibility requirement, never process-global state.
package loadbalancer

import (
	"math/rand"
	"sort"
	"time"

	"github.com/kingrea/waveplan/internal/calendar"
	"github.com/kingrea/waveplan/internal/domain"
)

// Balancer picks developers for stories.
type Balancer struct {
	rng *rand.Rand
}

// New returns a Balancer seeded deterministically when seed is non-nil, or
// from the current time otherwise.
func New(seed *int64) *Balancer {
	var source rand.Source
	if seed != nil {
		source = rand.NewSource(*seed)
	} else {
		source = rand.NewSource(time.Now().UnixNano())
	}
	return &Balancer{rng: rand.New(source)}
}

// CountStoriesPerDeveloper tallies how many of allStories each developer
// currently owns.
func CountStoriesPerDeveloper(devs []domain.Developer, allStories []domain.Story) map[string]int {
	counts := make(map[string]int, len(devs))
	for _, d := range devs {
		counts[d.ID] = 0
	}
	for _, s := range allStories {
		if s.IsAllocated() {
			counts[*s.DeveloperID]++
		}
	}
	return counts
}

// SortByLoadRandomTiebreak buckets developers by load and shuffles within
// each bucket (deterministically when the Balancer was seeded), emitting
// buckets in ascending load order.
func (b *Balancer) SortByLoadRandomTiebreak(devs []domain.Developer, allStories []domain.Story) []domain.Developer {
	counts := CountStoriesPerDeveloper(devs, allStories)
	buckets := make(map[int][]domain.Developer)
	var loads []int
	for _, d := range devs {
		load := counts[d.ID]
		if _, ok := buckets[load]; !ok {
			loads = append(loads, load)
		}
		buckets[load] = append(buckets[load], d)
	}
	sort.Ints(loads)

	out := make([]domain.Developer, 0, len(devs))
	for _, load := range loads {
		bucket := buckets[load]
		b.rng.Shuffle(len(bucket), func(i, j int) { bucket[i], bucket[j] = bucket[j], bucket[i] })
		out = append(out, bucket...)
	}
	return out
}

// GetDependencyOwner returns the first candidate (in candidate order) who
// owns any of story's dependencies, or ok=false if none does.
func GetDependencyOwner(story domain.Story, storyMap map[string]domain.Story, candidates []domain.Developer) (domain.Developer, bool) {
	for _, c := range candidates {
		for _, depID := range story.Dependencies {
			dep, ok := storyMap[depID]
			if !ok || !dep.IsAllocated() {
				continue
			}
			if c.ID == *dep.DeveloperID {
				return c, true
			}
		}
	}
	return domain.Developer{}, false
}

// wouldViolateIdleness checks whether assigning story to dev at newStart
// would create a same-wave gap exceeding maxIdleDays against dev's
// nearest existing story in the same wave.
func wouldViolateIdleness(dev domain.Developer, story domain.Story, newStart time.Time, allStories []domain.Story, maxIdleDays, currentWave int) bool {
	var nearestBefore, nearestAfter *domain.Story
	for i := range allStories {
		other := allStories[i]
		if other.ID == story.ID || !other.IsAllocated() || *other.DeveloperID != dev.ID {
			continue
		}
		if other.Wave != currentWave || other.StartDate == nil || other.EndDate == nil {
			continue
		}
		if other.EndDate.Before(newStart) {
			if nearestBefore == nil || other.EndDate.After(*nearestBefore.EndDate) {
				o := other
				nearestBefore = &o
			}
		} else if other.StartDate.After(newStart) {
			if nearestAfter == nil || other.StartDate.Before(*nearestAfter.StartDate) {
				o := other
				nearestAfter = &o
			}
		}
	}
	if nearestBefore != nil {
		if calendar.CountWorkdaysBetween(*nearestBefore.EndDate, newStart) > maxIdleDays {
			return true
		}
	}
	if nearestAfter != nil {
		if calendar.CountWorkdaysBetween(newStart, *nearestAfter.StartDate) > maxIdleDays {
			return true
		}
	}
	return false
}

// GetDeveloperForStory picks a developer among candidates per criterion.
// Under LOAD_BALANCING it prefers the least-loaded candidate that does not
// violate the idleness bound in the story's wave; if none qualifies it
// falls back to the least-loaded candidate unconditionally so the caller
// can proceed and the repair loop can fix the violation later.
func (b *Balancer) GetDeveloperForStory(
	story domain.Story,
	storyMap map[string]domain.Story,
	candidates []domain.Developer,
	allStories []domain.Story,
	criterion domain.AllocationCriteria,
	newStart time.Time,
	maxIdleDays int,
	currentWave int,
) (domain.Developer, bool) {
	if len(candidates) == 0 {
		return domain.Developer{}, false
	}

	if criterion == domain.CriteriaDependencyOwner {
		if owner, ok := GetDependencyOwner(story, storyMap, candidates); ok {
			if !wouldViolateIdleness(owner, story, newStart, allStories, maxIdleDays, currentWave) {
				return owner, true
			}
		}
	}

	ordered := b.SortByLoadRandomTiebreak(candidates, allStories)
	for _, dev := range ordered {
		if !wouldViolateIdleness(dev, story, newStart, allStories, maxIdleDays, currentWave) {
			return dev, true
		}
	}
	return ordered[0], true
}
