package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/kingrea/waveplan/internal/domain"
	"github.com/kingrea/waveplan/internal/planning/allocator"
)

func TestRenderGroupsStoriesByDeveloper(t *testing.T) {
	dev := "dev-1"
	start := time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 3)
	story := domain.Story{
		ID: "US-001", Name: "Build widget", Status: domain.StatusBacklog,
		DeveloperID: &dev, StartDate: &start, EndDate: &end,
	}
	out := render([]domain.Story{story}, []domain.Developer{{ID: dev, Name: "Ada"}}, allocator.Warnings{})
	if !strings.Contains(out, "Ada") || !strings.Contains(out, "US-001") {
		t.Fatalf("expected rendered dashboard to mention developer and story, got:\n%s", out)
	}
}

func TestRenderReportsUnallocatedCount(t *testing.T) {
	story := domain.Story{ID: "US-002", Name: "Unassigned work", Status: domain.StatusBacklog}
	out := render([]domain.Story{story}, nil, allocator.Warnings{})
	if !strings.Contains(out, "1 stories unallocated") {
		t.Fatalf("expected unallocated count in output, got:\n%s", out)
	}
}
