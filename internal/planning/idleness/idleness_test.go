package idleness

import (
	"testing"
	"time"

	"github.com/kingrea/waveplan/internal/domain"
)

func at(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func atPtr(y, m, d int) *time.Time {
	t := at(y, m, d)
	return &t
}

func devStory(id, dev string, wave int, s, e time.Time) domain.Story {
	devID := dev
	return domain.Story{ID: id, DeveloperID: &devID, Wave: wave, StartDate: &s, EndDate: &e}
}

func TestDetectReportsIntraWaveGapExceedingBound(t *testing.T) {
	stories := []domain.Story{
		devStory("S1", "dev-1", 1, at(2025, 1, 6), at(2025, 1, 7)),
		devStory("S2", "dev-1", 1, at(2025, 1, 15), at(2025, 1, 16)),
	}
	warnings, interWave := New().Detect(stories, 2)
	if len(interWave) != 0 {
		t.Fatalf("expected no inter-wave gaps, got %+v", interWave)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 idleness warning, got %d: %+v", len(warnings), warnings)
	}
	w := warnings[0]
	if w.PrevStoryID != "S1" || w.NextStoryID != "S2" {
		t.Fatalf("unexpected warning pair: %+v", w)
	}
}

func TestDetectSilentWithinBound(t *testing.T) {
	stories := []domain.Story{
		devStory("S1", "dev-1", 1, at(2025, 1, 6), at(2025, 1, 7)),
		devStory("S2", "dev-1", 1, at(2025, 1, 9), at(2025, 1, 10)),
	}
	warnings, _ := New().Detect(stories, 2)
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings within the idle bound, got %+v", warnings)
	}
}

func TestDetectTreatsCrossWaveGapsAsInformationalOnly(t *testing.T) {
	stories := []domain.Story{
		devStory("S1", "dev-1", 1, at(2025, 1, 6), at(2025, 1, 7)),
		devStory("S2", "dev-1", 2, at(2025, 1, 20), at(2025, 1, 21)),
	}
	warnings, interWave := New().Detect(stories, 2)
	if len(warnings) != 0 {
		t.Fatalf("cross-wave gaps must never be reported as violations, got %+v", warnings)
	}
	if len(interWave) != 1 {
		t.Fatalf("expected 1 informational inter-wave gap, got %d", len(interWave))
	}
}

func TestDetectIgnoresUnallocatedStories(t *testing.T) {
	unallocated := domain.Story{ID: "S0", StartDate: atPtr(2025, 1, 6), EndDate: atPtr(2025, 1, 7), Wave: 1}
	allocated := devStory("S1", "dev-1", 1, at(2025, 1, 6), at(2025, 1, 7))
	warnings, interWave := New().Detect([]domain.Story{unallocated, allocated}, 2)
	if len(warnings) != 0 || len(interWave) != 0 {
		t.Fatalf("an unallocated story has no developer to idle against, got warnings=%+v interWave=%+v", warnings, interWave)
	}
}

func TestDetectOrdersResultsDeterministicallyByDeveloper(t *testing.T) {
	stories := []domain.Story{
		devStory("S1", "dev-b", 1, at(2025, 1, 6), at(2025, 1, 7)),
		devStory("S2", "dev-b", 1, at(2025, 1, 15), at(2025, 1, 16)),
		devStory("S3", "dev-a", 1, at(2025, 1, 6), at(2025, 1, 7)),
		devStory("S4", "dev-a", 1, at(2025, 1, 15), at(2025, 1, 16)),
	}
	warnings, _ := New().Detect(stories, 2)
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(warnings))
	}
	if warnings[0].DeveloperID != "dev-a" || warnings[1].DeveloperID != "dev-b" {
		t.Fatalf("expected warnings ordered by developer id, got %+v", warnings)
	}
}
