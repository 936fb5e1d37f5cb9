package pipeline

import (
	"testing"

	"github.com/pluqqy/crux-terminal/pkg/models"
	"github.com/pluqqy/crux-terminal/pkg/registry"
)

// recorder counts notifications and keeps the last snapshot it saw
type recorder struct {
	calls int
	last  models.Pipeline
	all   []models.Pipeline
}

func (r *recorder) observe(p models.Pipeline) {
	r.calls++
	r.last = p
	r.all = append(r.all, p)
}

func testRegistry() *registry.Registry {
	return registry.New(map[string]models.Descriptor{
		"a1": {
			Name:    "filter",
			Version: "2.0",
			Parameters: map[string]models.Parameter{
				"threshold": {Type: models.ParameterTypeText, Default: "0.5"},
			},
		},
		"a2": {
			Name:    "loader",
			Version: "1.2.0",
			Parameters: map[string]models.Parameter{
				"path":    {Type: models.ParameterTypeText},
				"recurse": {Type: models.ParameterTypeBoolean, Default: true},
				"format":  {Type: models.ParameterTypeDropdown, Options: []string{"csv", "json"}, Default: "csv"},
			},
		},
		"a3": {Name: "dumper", Version: "0.3.1"},
	})
}

// newTestStore returns a store over testRegistry with a recorder attached
func newTestStore(t *testing.T, opts ...Option) (*Store, *recorder) {
	t.Helper()
	opts = append([]Option{WithComponents(testRegistry())}, opts...)
	s := NewStore(opts...)
	rec := &recorder{}
	s.Subscribe(rec.observe)
	return s, rec
}

// mustAddSteps appends one step per name and fails the test on error
func mustAddSteps(t *testing.T, s *Store, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := s.AddStep(name); err != nil {
			t.Fatalf("AddStep(%q) failed: %v", name, err)
		}
	}
}
