package graph

import "github.com/cdr-labs/cadence/pkg/models"

// AcceptedTerminalSet is the configurable set of stage statuses that
// satisfy a dependency for readiness purposes.
type AcceptedTerminalSet struct {
	// IncludeCompleted, when true, lets a dependency in Completed (not yet
	// independently Verified) satisfy readiness — the deployment has
	// disabled verification. The setting applies to every dependency alike.
	IncludeCompleted bool
}

// DefaultAcceptedTerminalSet is the default: {Verified, Merged}.
func DefaultAcceptedTerminalSet() AcceptedTerminalSet {
	return AcceptedTerminalSet{IncludeCompleted: false}
}

// Satisfies reports whether status is in the accepted terminal set.
func (a AcceptedTerminalSet) Satisfies(status models.StageStatus) bool {
	switch status {
	case models.StageVerified, models.StageMerged:
		return true
	case models.StageCompleted:
		return a.IncludeCompleted
	default:
		return false
	}
}

// Ready reports whether the named stage is ready to dispatch: it must be
// Pending, and every dependency must be in the accepted terminal set.
// Parallel group is a dispatcher hint, never a readiness gate.
func (g *Graph) Ready(stageID string, statusOf func(id string) models.StageStatus, terminal AcceptedTerminalSet) bool {
	s, ok := g.stages[stageID]
	if !ok {
		return false
	}
	if statusOf(stageID) != models.StagePending {
		return false
	}
	for _, dep := range s.Dependencies {
		if !terminal.Satisfies(statusOf(dep)) {
			return false
		}
	}
	return true
}

// ReadyStages returns, in topological order, every stage id that Ready
// reports true for. The control loop uses this to drive Pending→Ready
// promotion.
func (g *Graph) ReadyStages(statusOf func(id string) models.StageStatus, terminal AcceptedTerminalSet) []string {
	var ids []string
	for _, id := range g.order {
		if g.Ready(id, statusOf, terminal) {
			ids = append(ids, id)
		}
	}
	return ids
}
