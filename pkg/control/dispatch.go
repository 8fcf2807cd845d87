package control

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cdr-labs/cadence/pkg/models"
	"github.com/cdr-labs/cadence/pkg/statemachine"
)

// reapCrashes implements step 3: poll the supervisor's crash predicate for
// every Executing/Queued stage and push crashed ones into NeedsHandoff with
// a synthesized handoff, retried up to Config.MaxCrashRetries before giving
// up into Blocked.
func (l *Loop) reapCrashes(ctx context.Context, byID map[string]*models.Stage) error {
	now := time.Now()
	for _, stage := range byID {
		if stage.Status != models.StageExecuting && stage.Status != models.StageQueued {
			continue
		}
		if stage.AssignedSession == "" {
			continue
		}

		session, err := l.Store.LoadSession(stage.AssignedSession)
		if err != nil {
			continue
		}
		hb, err := l.Store.LoadHeartbeat(stage.ID)
		if err != nil {
			hb = nil
		}

		check, err := l.Supervisor.DetectCrash(ctx, stage, session, hb, now, l.Config.HeartbeatThreshold)
		if err != nil {
			return fmt.Errorf("crash check for stage %q: %w", stage.ID, err)
		}
		if !check.Crashed {
			continue
		}

		if stage.RetryCount >= l.Config.MaxCrashRetries {
			stage.BlockedReason = fmt.Sprintf("crashed %d time(s), exceeding retry cap", stage.RetryCount+1)
			if err := statemachine.Apply(stage, models.StageBlocked, statemachine.Guards{}, now); err != nil {
				return err
			}
			if err := l.Store.SaveStage(stage); err != nil {
				return err
			}
			continue
		}

		stage.RetryCount++
		tail, _ := l.Store.TailEvents(stage.ID, 50)
		tailLines := make([]string, len(tail))
		for i, e := range tail {
			tailLines[i] = fmt.Sprintf("%s %s", e.Timestamp.Format(time.RFC3339), e.Kind)
		}
		if _, err := l.Store.CreateHandoff(&models.Handoff{
			StageID:      stage.ID,
			SessionID:    session.ID,
			Trigger:      models.TriggerCrash,
			CreatedAt:    now,
			EventLogTail: tailLines,
		}); err != nil {
			return err
		}

		if err := statemachine.Apply(stage, models.StageNeedsHandoff, statemachine.Guards{}, now); err != nil {
			return err
		}
		if err := l.Store.SaveStage(stage); err != nil {
			return err
		}
	}
	return nil
}

// dispatchReady implements step 4: enforce the parallelism cap and dispatch
// Ready stages FIFO by readiness timestamp, tiebroken by topological index.
func (l *Loop) dispatchReady(ctx context.Context, byID map[string]*models.Stage) error {
	capacity := l.Config.MaxParallel - activeCount(byID)
	if capacity <= 0 {
		return nil
	}

	var ready []*models.Stage
	for _, s := range byID {
		if s.Status == models.StageReady {
			ready = append(ready, s)
		}
	}
	sort.Slice(ready, func(i, j int) bool {
		ti, tj := ready[i].ReadySince, ready[j].ReadySince
		switch {
		case ti == nil && tj == nil:
		case ti == nil:
			return false
		case tj == nil:
			return true
		case !ti.Equal(*tj):
			return ti.Before(*tj)
		}
		return l.Graph.Index(ready[i].ID) < l.Graph.Index(ready[j].ID)
	})

	now := time.Now()
	for _, stage := range ready {
		if capacity <= 0 {
			break
		}

		wt, err := l.Worktrees.Create(ctx, stage.ID)
		if err != nil {
			stage.BlockedReason = err.Error()
			if serr := statemachine.Apply(stage, models.StageBlocked, statemachine.Guards{}, now); serr != nil {
				return serr
			}
			if serr := l.Store.SaveStage(stage); serr != nil {
				return serr
			}
			continue
		}
		if err := l.Store.SaveWorktree(wt); err != nil {
			return err
		}

		session, err := l.Supervisor.Spawn(ctx, stage.ID, wt.Path)
		if err != nil {
			stage.BlockedReason = err.Error()
			if serr := statemachine.Apply(stage, models.StageBlocked, statemachine.Guards{}, now); serr != nil {
				return serr
			}
			if serr := l.Store.SaveStage(stage); serr != nil {
				return serr
			}
			continue
		}

		if err := l.Store.WriteSignal(session.ID, &models.Signal{
			SessionID:  session.ID,
			StageID:    stage.ID,
			Task:       stage.Description,
			Acceptance: stage.Acceptance,
		}); err != nil {
			return err
		}

		stage.AssignedSession = session.ID
		stage.WorktreePath = wt.Path
		stage.Branch = wt.Branch
		if err := statemachine.Apply(stage, models.StageQueued, statemachine.Guards{}, now); err != nil {
			return err
		}
		if err := l.Store.SaveStage(stage); err != nil {
			return err
		}

		capacity--
	}
	return nil
}

// resumeHandoffs implements step 5: spawn a fresh session for each
// NeedsHandoff stage, seeding its signal with the latest handoff, and move
// it back to Queued.
func (l *Loop) resumeHandoffs(ctx context.Context, byID map[string]*models.Stage) error {
	now := time.Now()
	for _, stage := range byID {
		if stage.Status != models.StageNeedsHandoff {
			continue
		}
		if stage.WorktreePath == "" {
			continue // crashed before a worktree existed; leave for an operator
		}

		latest, err := l.Store.LatestHandoff(stage.ID)
		if err != nil {
			continue
		}

		session, err := l.Supervisor.Spawn(ctx, stage.ID, stage.WorktreePath)
		if err != nil {
			stage.BlockedReason = err.Error()
			if serr := statemachine.Apply(stage, models.StageBlocked, statemachine.Guards{}, now); serr != nil {
				return serr
			}
			if serr := l.Store.SaveStage(stage); serr != nil {
				return serr
			}
			continue
		}

		if err := l.Store.WriteSignal(session.ID, &models.Signal{
			SessionID:     session.ID,
			StageID:       stage.ID,
			Task:          stage.Description,
			Acceptance:    stage.Acceptance,
			PriorHandoffs: []string{fmt.Sprintf("handoffs/%s-handoff-%03d.md", stage.ID, latest.Number)},
		}); err != nil {
			return err
		}

		stage.AssignedSession = session.ID
		if err := statemachine.Apply(stage, models.StageQueued, statemachine.Guards{}, now); err != nil {
			return err
		}
		if err := l.Store.SaveStage(stage); err != nil {
			return err
		}
	}
	return nil
}
