// Package wavevalidator enforces the wave barrier on single dependency
// edges and on wave mutations, grounded on wave_dependency_validator.py.
package wavevalidator

import "github.com/kingrea/waveplan/internal/domain"

// Validator checks wave-ordering invariants between a story and its
// dependencies.
type Validator struct{}

// New returns a ready-to-use Validator.
func New() *Validator { return &Validator{} }

// Validate fails with InvalidWaveDependencyError when dep.wave > story.wave.
func (v *Validator) Validate(story, dep domain.Story) error {
	if dep.Wave > story.Wave {
		return &domain.InvalidWaveDependencyError{
			StoryID:   story.ID,
			StoryWave: story.Wave,
			DepID:     dep.ID,
			DepWave:   dep.Wave,
		}
	}
	return nil
}

// ValidateWaveChange checks a proposed new wave for story against its
// current dependencies and dependents, reporting the first offender.
func (v *Validator) ValidateWaveChange(story domain.Story, newWave int, deps, dependents []domain.Story) error {
	for _, d := range deps {
		if d.Wave > newWave {
			return &domain.InvalidWaveDependencyError{
				StoryID:   story.ID,
				StoryWave: newWave,
				DepID:     d.ID,
				DepWave:   d.Wave,
			}
		}
	}
	for _, dep := range dependents {
		if newWave > dep.Wave {
			return &domain.InvalidWaveDependencyError{
				StoryID:   dep.ID,
				StoryWave: dep.Wave,
				DepID:     story.ID,
				DepWave:   newWave,
			}
		}
	}
	return nil
}
