package pipeline

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluqqy/crux-terminal/pkg/models"
)

// The dashboard scenario: one component loaded, one step added
func TestScenarioAddFilterStep(t *testing.T) {
	s, rec := newTestStore(t)
	require.Equal(t, models.NewPipeline(), s.Snapshot())

	require.NoError(t, s.AddStep("filter"))

	assert.JSONEq(t, `{
		"components": {},
		"pipeline": [{
			"component": "filter",
			"parameters": {"threshold": {"type": "text", "default": "0.5", "value": "0.5"}},
			"remap": {}
		}]
	}`, mustJSON(t, rec.last))
}

func TestObserversRunInOrder(t *testing.T) {
	s := NewStore(WithComponents(testRegistry()))

	var order []string
	s.Subscribe(func(models.Pipeline) { order = append(order, "first") })
	s.Subscribe(func(models.Pipeline) { order = append(order, "second") })

	mustAddSteps(t, s, "filter")
	s.SetRemap(0, "a", "b")

	assert.Equal(t, []string{"first", "second", "first", "second"}, order)
}

func TestObserverMaySnapshotAndSubscribe(t *testing.T) {
	s := NewStore(WithComponents(testRegistry()))

	var seen []int
	s.Subscribe(func(p models.Pipeline) {
		seen = append(seen, s.Snapshot().Len())
		if len(seen) == 1 {
			s.Subscribe(func(models.Pipeline) {})
		}
	})

	mustAddSteps(t, s, "filter", "loader")
	assert.Equal(t, []int{1, 2}, seen)
}

func TestResetAndReplace(t *testing.T) {
	s, rec := newTestStore(t)
	mustAddSteps(t, s, "filter")
	s.AddDependency("filter", "", "")

	s.Reset()
	assert.Equal(t, models.NewPipeline(), s.Snapshot())
	assert.Equal(t, 3, rec.calls)

	s.Replace(models.Pipeline{Pipeline: []models.Step{{Component: "x"}}})
	snap := s.Snapshot()
	assert.NotNil(t, snap.Components)
	assert.NotNil(t, snap.Pipeline[0].Parameters)
	assert.NotNil(t, snap.Pipeline[0].Remap)
	assert.Equal(t, 4, rec.calls)
}

func TestStoreWithoutComponents(t *testing.T) {
	s := NewStore()
	assert.Empty(t, s.DependencyCandidates())
	assert.ErrorIs(t, s.AddStep("filter"), models.ErrNotFound)
}

func TestConcurrentMutationsAreSerialized(t *testing.T) {
	s := NewStore(WithComponents(testRegistry()))

	var mu sync.Mutex
	var lengths []int
	s.Subscribe(func(p models.Pipeline) {
		mu.Lock()
		lengths = append(lengths, p.Len())
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.AddStep("filter")
		}()
	}
	wg.Wait()

	require.Len(t, lengths, 20)
	for i, n := range lengths {
		assert.Equal(t, i+1, n, "notifications must arrive in commit order")
	}
	assert.Equal(t, 20, s.Snapshot().Len())
}
