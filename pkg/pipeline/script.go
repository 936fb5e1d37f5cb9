package pipeline

import (
	"fmt"

	"github.com/pluqqy/crux-terminal/pkg/models"
)

// Apply runs a script's operations against the store in order. It stops at
// the first operation that fails; index operations that address nothing are
// no-ops, not failures. An insert_step without an index appends, every other
// op defaults a missing index to 0.
func (s *Store) Apply(script models.Script) error {
	for i, op := range script.Operations {
		if err := s.apply(op); err != nil {
			return fmt.Errorf("operation %d (%s): %w", i+1, op.Op, err)
		}
	}
	return nil
}

func (s *Store) apply(op models.Operation) error {
	switch op.Op {
	case models.OpAddDependency:
		if op.Name == "" {
			return fmt.Errorf("name is required")
		}
		s.AddDependency(op.Name, op.Src, op.Version)
	case models.OpRemoveDependency:
		s.RemoveDependency(op.Name)
	case models.OpAddStep:
		return s.AddStep(op.Name)
	case models.OpInsertStep:
		return s.InsertStep(op.Name, op.IndexOr(-1))
	case models.OpMoveStep:
		s.MoveStep(op.IndexOr(0), op.Offset)
	case models.OpDeleteStep:
		s.DeleteStep(op.IndexOr(0))
	case models.OpReorder:
		return s.ReorderSteps(op.Order)
	case models.OpSetParameter:
		s.SetParameterValue(op.IndexOr(0), op.Key, op.Value)
	case models.OpSetRemap:
		s.SetRemap(op.IndexOr(0), op.From, op.To)
	case models.OpClearRemap:
		s.ClearRemap(op.IndexOr(0), op.From)
	case models.OpReplaceRemap:
		s.ReplaceRemap(op.IndexOr(0), op.Remap)
	default:
		return fmt.Errorf("unknown operation %q", op.Op)
	}
	return nil
}
