package sorter

import (
	"errors"
	"testing"

	"github.com/kingrea/waveplan/internal/domain"
)

func idsOf(stories []domain.Story) []string {
	out := make([]string, len(stories))
	for i, s := range stories {
		out[i] = s.ID
	}
	return out
}

func TestSortOrdersByDependencyThenPriority(t *testing.T) {
	stories := []domain.Story{
		{ID: "C", Priority: 2, Dependencies: []string{"B"}},
		{ID: "B", Priority: 1, Dependencies: []string{"A"}},
		{ID: "A", Priority: 0},
	}
	out, err := New().Sort(stories)
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	got := idsOf(out)
	want := []string{"A", "B", "C"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestSortBreaksTiesByPriorityAmongReadyNodes(t *testing.T) {
	stories := []domain.Story{
		{ID: "X", Priority: 5},
		{ID: "Y", Priority: 1},
		{ID: "Z", Priority: 3},
	}
	out, err := New().Sort(stories)
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	got := idsOf(out)
	want := []string{"Y", "Z", "X"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestSortFailsOnCycle(t *testing.T) {
	stories := []domain.Story{
		{ID: "P", Dependencies: []string{"Q"}},
		{ID: "Q", Dependencies: []string{"P"}},
	}
	_, err := New().Sort(stories)
	if err == nil {
		t.Fatalf("expected CyclicDependencyError")
	}
	var cycleErr *domain.CyclicDependencyError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *domain.CyclicDependencyError, got %T: %v", err, err)
	}
}

func TestSortSilentlyOmitsStoriesWithDanglingDependency(t *testing.T) {
	stories := []domain.Story{
		{ID: "A", Priority: 0},
		{ID: "B", Priority: 1, Dependencies: []string{"GHOST"}},
	}
	out, err := New().Sort(stories)
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	got := idsOf(out)
	if len(got) != 1 || got[0] != "A" {
		t.Fatalf("expected only A in output (B has a dangling dep), got %v", got)
	}
}

func TestSortEmptyInput(t *testing.T) {
	out, err := New().Sort(nil)
	if err != nil || out != nil {
		t.Fatalf("expected nil, nil for empty input, got %v, %v", out, err)
	}
}
