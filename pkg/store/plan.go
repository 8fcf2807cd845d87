package store

import (
	"github.com/pelletier/go-toml/v2"

	"github.com/cdr-labs/cadence/pkg/models"
	"github.com/cdr-labs/cadence/pkg/plan"
)

// executionGraphSnapshot is the normalized DAG written to
// execution-graph.toml at init time, recording stage identity and
// dependency shape. `run` does not read it; it rebuilds the graph from the
// stage records.
type executionGraphSnapshot struct {
	ToolPrefix string                   `toml:"tool_prefix"`
	Stages     []executionGraphStageRow `toml:"stages"`
}

type executionGraphStageRow struct {
	ID            string   `toml:"id"`
	Dependencies  []string `toml:"dependencies"`
	ParallelGroup string   `toml:"parallel_group,omitempty"`
}

// LoadPlan parses the plan document at planPath. It does not consult or
// mutate any .work/ state; init is responsible for turning the result into
// stage records plus an execution-graph snapshot.
func (s *Store) LoadPlan(planPath string) (*plan.Plan, error) {
	return plan.ParseFile(planPath)
}

// SaveExecutionGraph snapshots the validated stage set.
func (s *Store) SaveExecutionGraph(toolPrefix string, stages []*models.Stage) error {
	snap := executionGraphSnapshot{ToolPrefix: toolPrefix}
	for _, st := range stages {
		snap.Stages = append(snap.Stages, executionGraphStageRow{
			ID:            st.ID,
			Dependencies:  st.Dependencies,
			ParallelGroup: st.ParallelGroup,
		})
	}

	data, err := toml.Marshal(snap)
	if err != nil {
		return &IOError{Op: "encode", Path: s.executionGraphPath(), Err: err}
	}
	return atomicWrite(s.executionGraphPath(), data, 0o644)
}

// LoadExecutionGraphStageIDs returns the stage ids recorded in the
// execution-graph snapshot, in their original declared order.
func (s *Store) LoadExecutionGraphStageIDs() ([]string, error) {
	path := s.executionGraphPath()
	data, err := readFileTolerant("execution-graph", "", path)
	if err != nil {
		return nil, err
	}
	var snap executionGraphSnapshot
	if err := toml.Unmarshal(data, &snap); err != nil {
		return nil, &IOError{Op: "decode", Path: path, Err: err}
	}
	ids := make([]string, len(snap.Stages))
	for i, row := range snap.Stages {
		ids[i] = row.ID
	}
	return ids, nil
}
