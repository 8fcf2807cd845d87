// Package merge implements the Merge Coordinator: resolving the
// effective auto-merge policy, merging a stage's branch into the
// integration branch, and reporting conflicts for escalation.
package merge

import (
	"context"
	"fmt"

	"github.com/cdr-labs/cadence/pkg/models"
	"github.com/cdr-labs/cadence/pkg/worktree"
)

// Coordinator merges stage branches into the integration branch within the
// main (non-worktree) checkout.
type Coordinator struct {
	git               worktree.Git
	repoRoot          string
	integrationBranch string
}

// New returns a Coordinator operating against repoRoot's main checkout.
func New(git worktree.Git, repoRoot, integrationBranch string) *Coordinator {
	return &Coordinator{git: git, repoRoot: repoRoot, integrationBranch: integrationBranch}
}

// EffectiveAutoMerge resolves the tri-state priority chain:
// per-stage field, then plan-level default, then the orchestrator run flag.
// Default is off.
func EffectiveAutoMerge(stage *models.Stage, planDefault *bool, orchestratorFlag bool) bool {
	switch stage.AutoMerge {
	case models.AutoMergeOn:
		return true
	case models.AutoMergeOff:
		return false
	}
	if planDefault != nil {
		return *planDefault
	}
	return orchestratorFlag
}

// Merge attempts to merge branch into the integration branch. On success it
// returns (nil, nil). On conflict it aborts the merge, gathers a
// ConflictReport, and returns (report, ErrConflict) for the caller to
// transition the stage to Conflict and write the report as a signal.
func (c *Coordinator) Merge(ctx context.Context, stage *models.Stage, branch string) (*models.ConflictReport, error) {
	if err := c.git.Merge(ctx, c.repoRoot, branch); err != nil {
		paths, diffErr := c.git.ConflictedFiles(ctx, c.repoRoot)
		if diffErr != nil {
			paths = nil
		}
		var markerContext string
		if diff, diffErr := c.git.Diff(ctx, c.repoRoot); diffErr == nil {
			markerContext = diff
		}

		if abortErr := c.git.MergeAbort(ctx, c.repoRoot); abortErr != nil {
			return nil, fmt.Errorf("merge stage %q branch %q failed (%v) and abort also failed: %w", stage.ID, branch, err, abortErr)
		}

		report := &models.ConflictReport{
			ConflictedPaths: paths,
			MarkerContext:   markerContext,
			OurBranch:       c.integrationBranch,
			TheirBranch:     branch,
		}
		return report, ErrConflict
	}
	return nil, nil
}
