// Package graph implements the DAG Validator & Readiness Engine:
// reference-integrity and acyclicity checks over a stage list, a stable
// topological order used as a display and dispatch tiebreak, and the readiness
// predicate the control loop uses to promote Pending stages to Ready.
package graph

import (
	"sort"

	"github.com/cdr-labs/cadence/pkg/models"
)

// Graph is a validated stage dependency DAG.
type Graph struct {
	stages map[string]*models.Stage
	// index maps stage id to its position in the stable topological order;
	// used only as a display/dispatch tiebreak.
	index map[string]int
	order []string
}

// Build validates reference integrity and acyclicity and returns a Graph.
// Order of checks matches : dangling references first, then
// cycles.
func Build(stages []*models.Stage) (*Graph, error) {
	byID := make(map[string]*models.Stage, len(stages))
	for _, s := range stages {
		byID[s.ID] = s
	}

	for _, s := range stages {
		for _, dep := range s.Dependencies {
			if _, ok := byID[dep]; !ok {
				return nil, &DanglingDependencyError{StageID: s.ID, DependencyID: dep}
			}
		}
	}

	order, err := topoSort(stages, byID)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(order))
	for i, id := range order {
		index[id] = i
	}

	return &Graph{stages: byID, index: index, order: order}, nil
}

// topoSort performs a Kahn's-algorithm topological sort. Ties among stages
// with equal in-degree are broken by id, for determinism.
func topoSort(stages []*models.Stage, byID map[string]*models.Stage) ([]string, error) {
	inDegree := make(map[string]int, len(stages))
	dependents := make(map[string][]string, len(stages))
	for _, s := range stages {
		inDegree[s.ID] = len(s.Dependencies)
		for _, dep := range s.Dependencies {
			dependents[dep] = append(dependents[dep], s.ID)
		}
	}

	var ready []string
	for _, s := range stages {
		if inDegree[s.ID] == 0 {
			ready = append(ready, s.ID)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(stages))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		newlyReady := dependents[id]
		sort.Strings(newlyReady)
		for _, dep := range newlyReady {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				ready = insertSorted(ready, dep)
			}
		}
	}

	if len(order) != len(stages) {
		var cyclic []string
		for id, deg := range inDegree {
			if deg > 0 {
				cyclic = append(cyclic, id)
			}
		}
		sort.Strings(cyclic)
		return nil, &CyclicDependencyError{StageIDs: cyclic}
	}

	return order, nil
}

func insertSorted(sorted []string, v string) []string {
	i := sort.SearchStrings(sorted, v)
	sorted = append(sorted, "")
	copy(sorted[i+1:], sorted[i:])
	sorted[i] = v
	return sorted
}

// TopologicalOrder returns the stable display/tiebreak order computed at
// Build time.
func (g *Graph) TopologicalOrder() []string {
	return append([]string(nil), g.order...)
}

// Index returns a stage's position in the topological order, for use as a
// dispatch tiebreak.
func (g *Graph) Index(stageID string) int {
	return g.index[stageID]
}

// Dependencies returns the dependency ids of a stage.
func (g *Graph) Dependencies(stageID string) []string {
	s, ok := g.stages[stageID]
	if !ok {
		return nil
	}
	return s.Dependencies
}

// Dependents returns the ids of stages that directly depend on stageID.
func (g *Graph) Dependents(stageID string) []string {
	var out []string
	for id, s := range g.stages {
		for _, dep := range s.Dependencies {
			if dep == stageID {
				out = append(out, id)
			}
		}
	}
	sort.Strings(out)
	return out
}
