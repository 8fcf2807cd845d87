package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/cdr-labs/cadence/pkg/merge"
	"github.com/cdr-labs/cadence/pkg/models"
	"github.com/cdr-labs/cadence/pkg/statemachine"
)

// cmdMerge implements `merge <id> [--force]`: merges a Verified stage
// immediately rather than waiting for the loop's auto-merge evaluation.
// --force merges regardless of the stage's effective auto_merge setting,
// the operator override used to recover a stage stuck in Conflict.
func cmdMerge(ctx context.Context, repoRoot string, args []string) error {
	fs := flag.NewFlagSet("merge", flag.ExitOnError)
	force := fs.Bool("force", false, "merge even if auto_merge is effectively off")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: merge <id> [--force]")
	}
	stageID := fs.Arg(0)

	a, err := newApp(repoRoot)
	if err != nil {
		return err
	}
	stage, err := a.store.LoadStage(stageID)
	if err != nil {
		return err
	}

	if !*force && !merge.EffectiveAutoMerge(stage, a.cfg.AutoMergeDefault, false) {
		return fmt.Errorf("stage %q has auto_merge effectively off; pass --force to merge anyway", stageID)
	}
	completedDirect := stage.Status == models.StageCompleted && !a.cfg.VerificationEnabled
	if stage.Status != models.StageVerified && stage.Status != models.StageConflict && !completedDirect {
		return fmt.Errorf("stage %q is %s, not Verified or Conflict", stageID, stage.Status)
	}

	now := time.Now()
	if err := statemachine.Apply(stage, models.StageMerging, statemachine.Guards{}, now); err != nil {
		return err
	}
	if err := a.store.SaveStage(stage); err != nil {
		return err
	}

	mc := a.mergeCoordinator()
	report, err := mc.Merge(ctx, stage, stage.Branch)
	if err != nil {
		if serr := statemachine.Apply(stage, models.StageConflict, statemachine.Guards{}, now); serr != nil {
			return serr
		}
		if serr := a.store.SaveStage(stage); serr != nil {
			return serr
		}
		if report != nil {
			fmt.Printf("conflict: %d path(s): %v\n", len(report.ConflictedPaths), report.ConflictedPaths)
		}
		return err
	}

	if wtRecord, werr := a.store.LoadWorktree(stageID); werr == nil {
		if rerr := a.worktreeManager().Remove(ctx, wtRecord, false); rerr != nil {
			fmt.Printf("warning: worktree teardown for %q: %v\n", stageID, rerr)
		}
		_ = a.store.RemoveWorktree(stageID)
	}

	if err := statemachine.Apply(stage, models.StageMerged, statemachine.Guards{}, now); err != nil {
		return err
	}
	if err := a.store.SaveStage(stage); err != nil {
		return err
	}
	fmt.Printf("stage %q merged into %s\n", stageID, a.cfg.IntegrationBranch)
	return nil
}
