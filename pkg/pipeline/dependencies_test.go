package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluqqy/crux-terminal/pkg/models"
)

func TestDependencyCandidates(t *testing.T) {
	s, _ := newTestStore(t)
	assert.ElementsMatch(t, []string{"filter", "loader", "dumper"}, s.DependencyCandidates())
}

func TestAddDependencyResolvedPolicy(t *testing.T) {
	tests := []struct {
		name    string
		dep     string
		src     string
		version string
		want    models.DependencyEntry
	}{
		{"inherits both", "loader", "", "", models.DependencyEntry{Src: "a2", Version: "1.2.0"}},
		{"explicit version kept", "loader", "", ">=1.0.0", models.DependencyEntry{Src: "a2", Version: ">=1.0.0"}},
		{"explicit src kept", "loader", "git://loader", "", models.DependencyEntry{Src: "git://loader", Version: "1.2.0"}},
		{"unresolved stays as given", "remote", "https://example.com/remote", "^2", models.DependencyEntry{Src: "https://example.com/remote", Version: "^2"}},
		{"unresolved and empty", "remote", "", "", models.DependencyEntry{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, rec := newTestStore(t)
			s.AddDependency(tt.dep, tt.src, tt.version)

			assert.Equal(t, tt.want, s.Snapshot().Components[tt.dep])
			assert.Equal(t, 1, rec.calls)
		})
	}
}

func TestAddDependencyLiteralPolicy(t *testing.T) {
	s, _ := newTestStore(t, WithDependencyDefaults(models.DependencyDefaultsLiteral))

	s.AddDependency("loader", "", "")
	s.AddDependency("remote", "", "^2")

	deps := s.Snapshot().Components
	assert.Equal(t, models.DependencyEntry{}, deps["loader"])
	assert.Equal(t, models.DependencyEntry{Version: "^2"}, deps["remote"])
}

func TestAddDependencyOverwrites(t *testing.T) {
	s, _ := newTestStore(t)
	s.AddDependency("loader", "", "1.0")
	s.AddDependency("loader", "elsewhere", "2.0")

	assert.Equal(t, models.DependencyEntry{Src: "elsewhere", Version: "2.0"}, s.Snapshot().Components["loader"])
	assert.Len(t, s.Snapshot().Components, 1)
}

func TestRemoveDependencyDropsSteps(t *testing.T) {
	s, rec := newTestStore(t)
	s.AddDependency("filter", "", "")
	s.AddDependency("loader", "", "")
	mustAddSteps(t, s, "loader", "filter", "loader", "dumper")
	s.SetRemap(1, "out", "in")
	calls := rec.calls

	s.RemoveDependency("loader")

	snap := s.Snapshot()
	assert.Equal(t, []string{"filter", "dumper"}, snap.StepNames())
	assert.Equal(t, map[string]string{"out": "in"}, snap.Pipeline[0].Remap)
	assert.NotContains(t, snap.Components, "loader")
	assert.Contains(t, snap.Components, "filter")
	assert.Equal(t, calls+1, rec.calls, "removal is a single change")
	for _, step := range snap.Pipeline {
		assert.NotEqual(t, "loader", step.Component)
	}
}

func TestRemoveDependencyUnknownName(t *testing.T) {
	s, rec := newTestStore(t)
	mustAddSteps(t, s, "loader")
	calls := rec.calls

	// Steps for undeclared names are only removed through their dependency
	s.RemoveDependency("loader")

	require.Equal(t, 1, s.Snapshot().Len())
	assert.Equal(t, calls, rec.calls)
}
