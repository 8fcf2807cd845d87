package main

import (
	"flag"
	"fmt"
	"sort"

	"github.com/cdr-labs/cadence/pkg/models"
)

// cmdStatus implements `status`: a snapshot table of every stage's state,
// assigned session, and retry count, plus the aggregate counters an
// operator dashboard would poll (queue depth, active count, blocked count).
// Rendering is deliberately plain text; status-display rendering proper is
// an explicit Non-goal of the core.
func cmdStatus(repoRoot string, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(repoRoot)
	if err != nil {
		return err
	}

	stages, err := a.store.ListStages()
	if err != nil {
		return err
	}
	g, err := a.graph()
	if err == nil {
		order := g.TopologicalOrder()
		rank := make(map[string]int, len(order))
		for i, id := range order {
			rank[id] = i
		}
		sort.Slice(stages, func(i, j int) bool { return rank[stages[i].ID] < rank[stages[j].ID] })
	}

	counts := map[models.StageStatus]int{}
	active := 0
	fmt.Printf("%-20s %-18s %-10s %-6s %s\n", "STAGE", "STATUS", "SESSION", "RETRY", "NOTE")
	for _, s := range stages {
		counts[s.Status]++
		if s.IsActive() {
			active++
		}
		note := s.BlockedReason
		fmt.Printf("%-20s %-18s %-10s %-6d %s\n", s.ID, s.Status, shorten(s.AssignedSession), s.RetryCount, note)
	}

	fmt.Printf("\nplan: %s  max_parallel: %d  active: %d/%d\n", a.cfg.PlanPath, a.cfg.MaxParallel, active, a.cfg.MaxParallel)
	for _, status := range []models.StageStatus{
		models.StagePending, models.StageReady, models.StageQueued, models.StageExecuting,
		models.StageNeedsHandoff, models.StageWaitingForInput, models.StageCompleted,
		models.StageVerified, models.StageMerging, models.StageMerged, models.StageConflict, models.StageBlocked,
	} {
		if counts[status] > 0 {
			fmt.Printf("  %-18s %d\n", status, counts[status])
		}
	}
	return nil
}

func shorten(id string) string {
	if len(id) > 10 {
		return id[:10]
	}
	return id
}
