package pipeline

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/dominikbraun/graph"

	"github.com/pluqqy/crux-terminal/pkg/models"
)

// Audit reports how the step list and the declared dependencies disagree
type Audit struct {
	// Undeclared lists component names used by steps without a dependency entry
	Undeclared []string `json:"undeclared,omitempty" yaml:"undeclared,omitempty"`
	// Unused lists dependency entries that no step uses yet
	Unused []string `json:"unused,omitempty" yaml:"unused,omitempty"`
}

// Clean reports whether every step is declared and every declaration used
func (a Audit) Clean() bool {
	return len(a.Undeclared) == 0 && len(a.Unused) == 0
}

// Audit checks the current pipeline. Steps for undeclared names are allowed,
// so this only reports.
func (s *Store) Audit() Audit {
	return AuditPipeline(s.Snapshot())
}

// AuditPipeline checks a pipeline snapshot
func AuditPipeline(p models.Pipeline) Audit {
	var a Audit
	used := make(map[string]struct{}, len(p.Pipeline))
	for _, step := range p.Pipeline {
		if _, ok := used[step.Component]; ok {
			continue
		}
		used[step.Component] = struct{}{}
		if _, declared := p.Components[step.Component]; !declared {
			a.Undeclared = append(a.Undeclared, step.Component)
		}
	}
	for name := range p.Components {
		if _, ok := used[name]; !ok {
			a.Unused = append(a.Unused, name)
		}
	}
	sort.Strings(a.Undeclared)
	sort.Strings(a.Unused)
	return a
}

// Vertex kinds used in the chain graph
const (
	VertexDependency = "dependency"
	VertexStep       = "step"
)

// DependencyVertex names the graph vertex of a dependency
func DependencyVertex(name string) string {
	return "dep:" + name
}

// StepVertex names the graph vertex of the step at index
func StepVertex(index int, component string) string {
	return fmt.Sprintf("step:%d:%s", index, component)
}

// ChainGraph builds a directed graph of the pipeline: every declared
// dependency points at the steps that use it, and every step points at the
// step after it. A step-to-step edge carries the upstream step's remap as
// edge attributes (source field -> destination field).
func ChainGraph(p models.Pipeline) (graph.Graph[string, string], error) {
	g := graph.New(graph.StringHash, graph.Directed(), graph.Acyclic())

	names := make([]string, 0, len(p.Components))
	for name := range p.Components {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		dep := p.Components[name]
		err := g.AddVertex(DependencyVertex(name),
			graph.VertexAttribute("kind", VertexDependency),
			graph.VertexAttribute("component", name),
			graph.VertexAttribute("src", dep.Src),
			graph.VertexAttribute("version", dep.Version),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to add dependency %s: %w", name, err)
		}
	}

	for i, step := range p.Pipeline {
		v := StepVertex(i, step.Component)
		err := g.AddVertex(v,
			graph.VertexAttribute("kind", VertexStep),
			graph.VertexAttribute("component", step.Component),
			graph.VertexAttribute("index", strconv.Itoa(i)),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to add step %d: %w", i, err)
		}

		if _, declared := p.Components[step.Component]; declared {
			if err := g.AddEdge(DependencyVertex(step.Component), v); err != nil {
				return nil, fmt.Errorf("failed to link step %d to its dependency: %w", i, err)
			}
		}

		if i == 0 {
			continue
		}
		prev := p.Pipeline[i-1]
		opts := make([]func(*graph.EdgeProperties), 0, len(prev.Remap))
		for src, dest := range prev.Remap {
			opts = append(opts, graph.EdgeAttribute(src, dest))
		}
		if err := g.AddEdge(StepVertex(i-1, prev.Component), v, opts...); err != nil {
			return nil, fmt.Errorf("failed to chain step %d: %w", i, err)
		}
	}

	return g, nil
}

// ChainGraph builds the chain graph of the current pipeline
func (s *Store) ChainGraph() (graph.Graph[string, string], error) {
	return ChainGraph(s.Snapshot())
}

// ChainOrder returns the graph's vertices in a stable topological order
func ChainOrder(g graph.Graph[string, string]) ([]string, error) {
	return graph.StableTopologicalSort(g, func(a, b string) bool { return a < b })
}
