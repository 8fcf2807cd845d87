package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/cdr-labs/cadence/pkg/control"
	"github.com/cdr-labs/cadence/pkg/models"
	"github.com/cdr-labs/cadence/pkg/statemachine"
)

// cmdRun implements `run [--stage id] [--max-parallel n] [--foreground]
// [--auto-merge]`: builds the control loop from the current .work/ state
// and ticks it until cancelled. --stage only checks that the named stage
// exists before the loop starts; it does not restrict which stages the
// loop dispatches.
func cmdRun(ctx context.Context, repoRoot string, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	stageID := fs.String("stage", "", "check that this stage exists before running (does not restrict dispatch)")
	maxParallel := fs.Int("max-parallel", 0, "override configured max_parallel")
	foreground := fs.Bool("foreground", true, "run the loop in this process (always true; no daemonization)")
	autoMerge := fs.Bool("auto-merge", false, "orchestrator-level auto-merge fallback when plan and stage are silent")
	_ = foreground
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(repoRoot)
	if err != nil {
		return err
	}
	if *maxParallel > 0 {
		a.cfg.MaxParallel = *maxParallel
	}
	if *autoMerge && a.cfg.AutoMergeDefault == nil {
		on := true
		a.cfg.AutoMergeDefault = &on
	}

	if err := cleanupStartupOrphans(a); err != nil {
		return err
	}

	g, err := a.graph()
	if err != nil {
		return err
	}

	if *stageID != "" {
		if _, err := a.store.LoadStage(*stageID); err != nil {
			return fmt.Errorf("--stage %q: %w", *stageID, err)
		}
	}

	loop := control.New(a.store, g, a.cfg, a.worktreeManager(), a.supervisor(), a.mergeCoordinator(), a.hookHandler(), control.ShellVerifier{})
	fmt.Printf("cadence: running against %s (max_parallel=%d)\n", a.store.Root(), a.cfg.MaxParallel)
	return loop.Run(ctx)
}

// cleanupStartupOrphans implements the startup-orphan sweep: any stage left
// Executing with a worktree but no live session (because the orchestrator
// itself was killed mid-tick) is pushed to NeedsHandoff instead of being
// silently re-dispatched, grounded on tarsy's queue.go CleanupStartupOrphans.
func cleanupStartupOrphans(a *app) error {
	stages, err := a.store.ListStages()
	if err != nil {
		return err
	}
	mux := a.multiplexer()
	sv := a.supervisor()
	hk := a.hookHandler()
	for _, stage := range stages {
		if stage.Status != models.StageExecuting || stage.AssignedSession == "" {
			continue
		}
		session, err := a.store.LoadSession(stage.AssignedSession)
		if err != nil {
			continue
		}
		live, err := mux.HasSession(context.Background(), session.MultiplexerSessionName)
		if err != nil || live {
			continue
		}
		_ = sv // the session is already gone; nothing left to tear down
		if _, err := hk.HandoffCreate(stage.ID, session.ID, models.TriggerCrash, nil, nil, []models.RemainingTask{
			{Priority: 1, Summary: "orchestrator restarted mid-execution; resume from the last heartbeat"},
		}); err != nil {
			return err
		}
		if err := statemachine.Apply(stage, models.StageNeedsHandoff, statemachine.Guards{}, time.Now()); err != nil {
			return err
		}
		if err := a.store.SaveStage(stage); err != nil {
			return err
		}
		fmt.Printf("recovered orphaned stage %q from a prior crash\n", stage.ID)
	}
	return nil
}
