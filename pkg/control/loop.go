// Package control implements the Control Loop: the top-level
// scheduler that reloads stage state, recomputes readiness, dispatches
// work, reaps crashes and completions, runs verification, and hands
// completed stages to the Merge Coordinator.
package control

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/cdr-labs/cadence/pkg/config"
	"github.com/cdr-labs/cadence/pkg/graph"
	"github.com/cdr-labs/cadence/pkg/hook"
	"github.com/cdr-labs/cadence/pkg/merge"
	"github.com/cdr-labs/cadence/pkg/models"
	"github.com/cdr-labs/cadence/pkg/statemachine"
	"github.com/cdr-labs/cadence/pkg/store"
	"github.com/cdr-labs/cadence/pkg/supervisor"
	"github.com/cdr-labs/cadence/pkg/worktree"
)

// Loop owns one run of the orchestrator over a fixed plan graph.
type Loop struct {
	Store      *store.Store
	Graph      *graph.Graph
	Config     *config.Config
	Worktrees  *worktree.Manager
	Supervisor *supervisor.Supervisor
	Merge      *merge.Coordinator
	Hook       *hook.Handler
	Verify     Verifier

	// stopCh, when closed, ends Run after the in-flight tick completes.
	stopCh chan struct{}

	// lastTickAt records when Tick last completed, for Health().
	lastTickAt time.Time
}

// Health is a point-in-time snapshot of loop state, mirroring tarsy's
// WorkerPool.Health()/PoolHealth accessor: queue depth, active count, and
// the last poll time. The `status` CLI subcommand computes its own counts
// from the store and does not call it.
type Health struct {
	QueueDepth   int
	ActiveCount  int
	MaxParallel  int
	BlockedCount int
	LastTickAt   time.Time
}

// Health computes a snapshot from the current store state.
func (l *Loop) Health() (Health, error) {
	stages, err := l.Store.ListStages()
	if err != nil {
		return Health{}, err
	}
	h := Health{MaxParallel: l.Config.MaxParallel, LastTickAt: l.lastTickAt}
	for _, s := range stages {
		if s.Status == models.StageReady {
			h.QueueDepth++
		}
		if s.IsActive() {
			h.ActiveCount++
		}
		if s.Status == models.StageBlocked {
			h.BlockedCount++
		}
	}
	return h, nil
}

// New wires a Loop from its collaborators.
func New(st *store.Store, g *graph.Graph, cfg *config.Config, wt *worktree.Manager, sv *supervisor.Supervisor, mc *merge.Coordinator, hk *hook.Handler, verify Verifier) *Loop {
	return &Loop{
		Store: st, Graph: g, Config: cfg,
		Worktrees: wt, Supervisor: sv, Merge: mc, Hook: hk, Verify: verify,
		stopCh: make(chan struct{}),
	}
}

// Stop ends the loop after its current tick.
func (l *Loop) Stop() { close(l.stopCh) }

// Run ticks until ctx is cancelled or Stop is called. The loop
// is resumable: it holds no state that isn't reconstructible from the store,
// so killing and restarting the process picks up where it left off.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := l.Tick(ctx); err != nil {
			slog.Error("control loop tick failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stopCh:
			return nil
		case <-time.After(l.pollInterval()):
		}
	}
}

// pollInterval applies jitter to the configured base interval so multiple
// orchestrator instances sharing a machine don't all wake on the same tick.
func (l *Loop) pollInterval() time.Duration {
	base := l.Config.PollInterval
	jitter := l.Config.PollIntervalJitter
	if jitter <= 0 {
		return base
	}
	offset := time.Duration(rand.Int64N(int64(2 * jitter)))
	return base - jitter + offset
}

// Tick runs one iteration of the loop body, every step except the sleep,
// which Run performs between ticks.
func (l *Loop) Tick(ctx context.Context) error {
	stages, err := l.Store.ListStages()
	if err != nil {
		return err
	}
	byID := make(map[string]*models.Stage, len(stages))
	for _, s := range stages {
		byID[s.ID] = s
	}
	statusOf := func(id string) models.StageStatus {
		if s, ok := byID[id]; ok {
			return s.Status
		}
		return ""
	}

	if err := l.promoteReady(byID, statusOf); err != nil {
		return err
	}
	if err := l.reapCrashes(ctx, byID); err != nil {
		return err
	}
	if err := l.dispatchReady(ctx, byID); err != nil {
		return err
	}
	if err := l.resumeHandoffs(ctx, byID); err != nil {
		return err
	}
	if err := l.verifyCompleted(ctx, byID); err != nil {
		return err
	}
	if err := l.mergeVerified(ctx, byID); err != nil {
		return err
	}
	l.lastTickAt = time.Now()
	return nil
}

func (l *Loop) promoteReady(byID map[string]*models.Stage, statusOf func(string) models.StageStatus) error {
	terminal := effectiveTerminalSet(l.Config)
	now := time.Now()
	for _, id := range l.Graph.ReadyStages(statusOf, terminal) {
		stage := byID[id]
		if err := statemachine.Apply(stage, models.StageReady, statemachine.Guards{}, now); err != nil {
			continue // already Ready or otherwise non-Pending; not an error
		}
		if err := l.Store.SaveStage(stage); err != nil {
			return err
		}
	}
	return nil
}

func effectiveTerminalSet(cfg *config.Config) graph.AcceptedTerminalSet {
	return graph.AcceptedTerminalSet{IncludeCompleted: !cfg.VerificationEnabled}
}

// activeCount counts stages occupying a parallelism slot.
func activeCount(byID map[string]*models.Stage) int {
	n := 0
	for _, s := range byID {
		if s.IsActive() {
			n++
		}
	}
	return n
}
