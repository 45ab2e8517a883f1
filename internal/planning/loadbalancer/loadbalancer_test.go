package loadbalancer

import (
	"testing"
	"time"

	"github.com/kingrea/waveplan/internal/domain"
)

func devID(id string) *string { return &id }

func TestCountStoriesPerDeveloper(t *testing.T) {
	devs := []domain.Developer{{ID: "d1"}, {ID: "d2"}}
	stories := []domain.Story{
		{ID: "S1", DeveloperID: devID("d1")},
		{ID: "S2", DeveloperID: devID("d1")},
		{ID: "S3", DeveloperID: devID("d2")},
		{ID: "S4"},
	}
	counts := CountStoriesPerDeveloper(devs, stories)
	if counts["d1"] != 2 || counts["d2"] != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

func TestSortByLoadRandomTiebreakOrdersAscending(t *testing.T) {
	devs := []domain.Developer{{ID: "d1"}, {ID: "d2"}, {ID: "d3"}}
	stories := []domain.Story{
		{ID: "S1", DeveloperID: devID("d2")},
		{ID: "S2", DeveloperID: devID("d2")},
	}
	seed := int64(7)
	b := New(&seed)
	out := b.SortByLoadRandomTiebreak(devs, stories)
	if len(out) != 3 {
		t.Fatalf("expected 3 developers, got %d", len(out))
	}
	if out[0].ID == "d2" {
		t.Fatalf("expected the most-loaded developer last, got first: %+v", out)
	}
}

func TestSortByLoadRandomTiebreakDeterministicWithSeed(t *testing.T) {
	devs := []domain.Developer{{ID: "d1"}, {ID: "d2"}, {ID: "d3"}, {ID: "d4"}}
	seed := int64(99)
	b1 := New(&seed)
	b2 := New(&seed)
	out1 := b1.SortByLoadRandomTiebreak(devs, nil)
	out2 := b2.SortByLoadRandomTiebreak(devs, nil)
	for i := range out1 {
		if out1[i].ID != out2[i].ID {
			t.Fatalf("expected identical order with identical seed, got %v vs %v", out1, out2)
		}
	}
}

func TestGetDependencyOwnerReturnsFirstCandidateOwner(t *testing.T) {
	storyMap := map[string]domain.Story{
		"DEP1": {ID: "DEP1", DeveloperID: devID("d2")},
	}
	story := domain.Story{ID: "S1", Dependencies: []string{"DEP1"}}
	candidates := []domain.Developer{{ID: "d1"}, {ID: "d2"}}
	owner, ok := GetDependencyOwner(story, storyMap, candidates)
	if !ok || owner.ID != "d2" {
		t.Fatalf("expected owner d2, got %+v ok=%v", owner, ok)
	}
}

func TestGetDependencyOwnerFalseWhenNoCandidateOwns(t *testing.T) {
	storyMap := map[string]domain.Story{
		"DEP1": {ID: "DEP1", DeveloperID: devID("d9")},
	}
	story := domain.Story{ID: "S1", Dependencies: []string{"DEP1"}}
	candidates := []domain.Developer{{ID: "d1"}, {ID: "d2"}}
	_, ok := GetDependencyOwner(story, storyMap, candidates)
	if ok {
		t.Fatalf("expected no owner among candidates")
	}
}

func TestGetDeveloperForStoryLoadBalancingPicksLeastLoaded(t *testing.T) {
	devs := []domain.Developer{{ID: "d1"}, {ID: "d2"}}
	all := []domain.Story{
		{ID: "S0", DeveloperID: devID("d1"), Wave: 1, StartDate: timePtr(2025, 1, 6), EndDate: timePtr(2025, 1, 8)},
	}
	story := domain.Story{ID: "S1", Wave: 1}
	seed := int64(1)
	b := New(&seed)
	selected, ok := b.GetDeveloperForStory(story, nil, devs, all, domain.CriteriaLoadBalancing, timeAt(2025, 1, 9), 2, 1)
	if !ok {
		t.Fatalf("expected a developer to be selected")
	}
	if selected.ID != "d2" {
		t.Fatalf("expected least-loaded developer d2, got %s", selected.ID)
	}
}

func TestGetDeveloperForStoryDependencyOwnerPrefersOwner(t *testing.T) {
	devs := []domain.Developer{{ID: "d1"}, {ID: "d2"}}
	storyMap := map[string]domain.Story{
		"DEP1": {ID: "DEP1", DeveloperID: devID("d2"), Wave: 1, EndDate: timePtr(2025, 1, 8)},
	}
	story := domain.Story{ID: "S1", Wave: 1, Dependencies: []string{"DEP1"}}
	seed := int64(1)
	b := New(&seed)
	selected, ok := b.GetDeveloperForStory(story, storyMap, devs, nil, domain.CriteriaDependencyOwner, timeAt(2025, 1, 9), 2, 1)
	if !ok || selected.ID != "d2" {
		t.Fatalf("expected dependency owner d2 to be preferred, got %+v ok=%v", selected, ok)
	}
}

func TestGetDeveloperForStoryNoCandidatesReturnsFalse(t *testing.T) {
	b := New(nil)
	_, ok := b.GetDeveloperForStory(domain.Story{}, nil, nil, nil, domain.CriteriaLoadBalancing, time.Now(), 2, 0)
	if ok {
		t.Fatalf("expected false with no candidates")
	}
}

func timeAt(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func timePtr(y, m, d int) *time.Time {
	t := timeAt(y, m, d)
	return &t
}
