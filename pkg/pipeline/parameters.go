package pipeline

import (
	"github.com/pluqqy/crux-terminal/pkg/models"
)

// editStep clones the step at index, applies fn to the clone and commits the
// result. Out-of-range indices, or fn returning false, leave the pipeline
// untouched and notify nobody. Must be called with mu held.
func (s *Store) editStep(index int, fn func(step *models.Step) bool) {
	cur := s.Snapshot()
	if !cur.InRange(index) {
		return
	}

	step := cur.Pipeline[index].Clone()
	if !fn(&step) {
		return
	}

	steps := make([]models.Step, cur.Len())
	copy(steps, cur.Pipeline)
	steps[index] = step

	s.commit(models.Pipeline{
		Components: cur.Components,
		Pipeline:   steps,
	})
}

// SetParameterValue sets the value of one parameter of a step. Unknown steps
// or parameter keys are ignored.
func (s *Store) SetParameterValue(index int, key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.editStep(index, func(step *models.Step) bool {
		param, ok := step.Parameters[key]
		if !ok {
			return false
		}
		param.Value = value
		step.Parameters[key] = param
		return true
	})
}

// SetRemap renames src to dest when the step is chained to its neighbours
func (s *Store) SetRemap(index int, src, dest string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.editStep(index, func(step *models.Step) bool {
		step.Remap[src] = dest
		return true
	})
}

// ClearRemap removes the remapping of src. The pipeline is republished even
// when src was not remapped.
func (s *Store) ClearRemap(index int, src string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.editStep(index, func(step *models.Step) bool {
		delete(step.Remap, src)
		return true
	})
}

// ReplaceRemap replaces a step's whole remap mapping with a copy of remap
func (s *Store) ReplaceRemap(index int, remap map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.editStep(index, func(step *models.Step) bool {
		step.Remap = models.CloneRemap(remap)
		return true
	})
}
