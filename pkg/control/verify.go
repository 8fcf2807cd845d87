package control

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cdr-labs/cadence/pkg/merge"
	"github.com/cdr-labs/cadence/pkg/models"
	"github.com/cdr-labs/cadence/pkg/statemachine"
)

// Verifier runs a stage's acceptance commands in its worktree. The default
// implementation shells out; tests supply a scripted fake.
type Verifier interface {
	Verify(ctx context.Context, stage *models.Stage, timeout time.Duration) error
}

// ShellVerifier runs each acceptance command in order via the system shell,
// in the stage's worktree directory, stopping at the first non-zero exit.
type ShellVerifier struct{}

func (ShellVerifier) Verify(ctx context.Context, stage *models.Stage, timeout time.Duration) error {
	for _, command := range stage.Acceptance {
		cmdCtx, cancel := context.WithTimeout(ctx, timeout)
		cmd := exec.CommandContext(cmdCtx, "sh", "-c", command)
		cmd.Dir = stage.WorktreePath
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		err := cmd.Run()
		cancel()
		if err != nil {
			return fmt.Errorf("acceptance command %q: %v: %s", command, err, strings.TrimSpace(stderr.String()))
		}
	}
	return nil
}

// verifyCompleted implements step 6: run verification for Completed stages
// concurrently (one goroutine per stage with no cap on their number, all
// sharing the errgroup's context; each stage's own acceptance list still runs in declared order
// within its goroutine), transitioning to Verified on success or Blocked
// with the failing command's stderr tail on failure.
func (l *Loop) verifyCompleted(ctx context.Context, byID map[string]*models.Stage) error {
	if !l.Config.VerificationEnabled {
		return nil
	}

	var completed []*models.Stage
	for _, s := range byID {
		if s.Status == models.StageCompleted {
			completed = append(completed, s)
		}
	}
	if len(completed) == 0 {
		return nil
	}

	type outcome struct {
		stage *models.Stage
		err   error
	}
	results := make([]outcome, len(completed))

	g, gctx := errgroup.WithContext(ctx)
	for i, stage := range completed {
		i, stage := i, stage
		g.Go(func() error {
			results[i] = outcome{stage: stage, err: l.Verify.Verify(gctx, stage, l.Config.AcceptanceTimeout)}
			return nil // per-stage failures are data, not fatal to the group
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	now := time.Now()
	for _, r := range results {
		if r.err != nil {
			r.stage.BlockedReason = r.err.Error()
			if err := statemachine.Apply(r.stage, models.StageBlocked, statemachine.Guards{}, now); err != nil {
				return err
			}
		} else if err := statemachine.Apply(r.stage, models.StageVerified, statemachine.Guards{}, now); err != nil {
			return err
		}
		if err := l.Store.SaveStage(r.stage); err != nil {
			return err
		}
	}
	return nil
}

// mergeVerified implements step 7: hand Verified stages (or, when
// verification is disabled, Completed stages directly — acceptance never
// runs for them, so Completed is their own accepted-terminal entry point
// into merge) to the Merge Coordinator according to the effective
// auto-merge setting, tearing down the worktree on success or recording a
// Conflict signal on failure.
func (l *Loop) mergeVerified(ctx context.Context, byID map[string]*models.Stage) error {
	now := time.Now()
	for _, stage := range byID {
		eligible := stage.Status == models.StageVerified ||
			(stage.Status == models.StageCompleted && !l.Config.VerificationEnabled)
		if !eligible {
			continue
		}
		if !merge.EffectiveAutoMerge(stage, l.Config.AutoMergeDefault, false) {
			continue
		}

		if err := statemachine.Apply(stage, models.StageMerging, statemachine.Guards{}, now); err != nil {
			return err
		}
		if err := l.Store.SaveStage(stage); err != nil {
			return err
		}

		report, err := l.Merge.Merge(ctx, stage, stage.Branch)
		if err != nil {
			if serr := l.handleConflict(stage, report, now); serr != nil {
				return serr
			}
			continue
		}

		wt, err := l.Store.LoadWorktree(stage.ID)
		if err == nil {
			if rerr := l.Worktrees.Remove(ctx, wt, false); rerr != nil {
				return rerr
			}
			if rerr := l.Store.RemoveWorktree(stage.ID); rerr != nil {
				return rerr
			}
		}

		if err := statemachine.Apply(stage, models.StageMerged, statemachine.Guards{}, now); err != nil {
			return err
		}
		if err := l.Store.SaveStage(stage); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loop) handleConflict(stage *models.Stage, report *models.ConflictReport, now time.Time) error {
	if err := statemachine.Apply(stage, models.StageConflict, statemachine.Guards{}, now); err != nil {
		return err
	}
	if err := l.Store.SaveStage(stage); err != nil {
		return err
	}
	if stage.AssignedSession != "" && report != nil {
		signal, err := l.Store.LoadSignal(stage.AssignedSession)
		if err != nil {
			signal = &models.Signal{SessionID: stage.AssignedSession, StageID: stage.ID}
		}
		signal.ConflictReport = report
		return l.Store.WriteSignal(stage.AssignedSession, signal)
	}
	return nil
}
