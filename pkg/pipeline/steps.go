package pipeline

import (
	"fmt"

	"github.com/pluqqy/crux-terminal/pkg/models"
)

// ReorderSteps rebuilds the step list from indices into the current list:
// the new step k is the old step indices[k]. Omitting an index removes that
// step. An out-of-range or repeated index rejects the whole order with
// models.ErrInvalidOrder and leaves the pipeline untouched.
//
// Every reordering and removal of steps goes through here.
func (s *Store) ReorderSteps(indices []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reorderLocked(s.Snapshot(), indices)
}

func (s *Store) reorderLocked(cur models.Pipeline, indices []int) error {
	steps, err := permute(cur.Pipeline, indices)
	if err != nil {
		return err
	}
	s.commit(models.Pipeline{
		Components: cur.Components,
		Pipeline:   steps,
	})
	return nil
}

// permute selects steps by index. Steps are shared with the source slice,
// which is safe because published snapshots are never edited in place.
func permute(steps []models.Step, indices []int) ([]models.Step, error) {
	seen := make(map[int]struct{}, len(indices))
	out := make([]models.Step, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(steps) {
			return nil, fmt.Errorf("%w: index %d out of range [0, %d)", models.ErrInvalidOrder, idx, len(steps))
		}
		if _, dup := seen[idx]; dup {
			return nil, fmt.Errorf("%w: index %d repeated", models.ErrInvalidOrder, idx)
		}
		seen[idx] = struct{}{}
		out = append(out, steps[idx])
	}
	return out, nil
}

func identity(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

// MoveStep swaps the step at index with the one offset positions away.
// Moving step 0 by +2 exchanges steps 0 and 2; the step in between stays
// put. Positions outside the list make this a no-op.
func (s *Store) MoveStep(index, offset int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.Snapshot()
	dest := index + offset
	if !cur.InRange(index) || !cur.InRange(dest) {
		return
	}

	order := identity(cur.Len())
	order[dest], order[index] = order[index], order[dest]
	_ = s.reorderLocked(cur, order)
}

// DeleteStep removes the step at index. Out-of-range indices are ignored.
func (s *Store) DeleteStep(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.Snapshot()
	if !cur.InRange(index) {
		return
	}

	order := identity(cur.Len())
	order = append(order[:index], order[index+1:]...)
	_ = s.reorderLocked(cur, order)
}

// AddStep appends a step for the named component, with its parameters
// seeded from the component's schema defaults. It fails with
// models.ErrNotFound when no loaded component has that name.
func (s *Store) AddStep(name string) error {
	return s.InsertStep(name, -1)
}

// InsertStep is AddStep at a position. An index outside [0, len] appends.
func (s *Store) InsertStep(name string, index int) error {
	_, desc, ok := s.components.Resolve(name)
	if !ok {
		return fmt.Errorf("%w: could not find component '%s'", models.ErrNotFound, name)
	}

	step := models.Step{
		Component:  name,
		Parameters: models.SeedParameters(desc.Parameters),
		Remap:      map[string]string{},
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.Snapshot()
	if index < 0 || index > cur.Len() {
		index = cur.Len()
	}

	steps := make([]models.Step, 0, cur.Len()+1)
	steps = append(steps, cur.Pipeline[:index]...)
	steps = append(steps, step)
	steps = append(steps, cur.Pipeline[index:]...)

	s.commit(models.Pipeline{
		Components: cur.Components,
		Pipeline:   steps,
	})
	return nil
}
