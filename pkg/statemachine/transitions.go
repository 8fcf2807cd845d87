// Package statemachine encodes the Stage State Machine: the
// legal transition table, its two entry/exit guards, and the mutation that
// applies a validated transition to a stage record. The table is pure and
// has no knowledge of the store, worktrees, or git — callers supply guard
// results computed by those packages.
package statemachine

import (
	"time"

	"github.com/cdr-labs/cadence/pkg/models"
)

// table lists, for each state, the states it may legally transition to.
// Any state may also transition to Ready via an explicit reset, handled
// separately in Apply rather than duplicated in every entry below.
var table = map[models.StageStatus][]models.StageStatus{
	models.StagePending:         {models.StageReady},
	models.StageReady:           {models.StageQueued, models.StageBlocked},
	models.StageQueued:          {models.StageExecuting, models.StageNeedsHandoff, models.StageBlocked},
	models.StageExecuting:       {models.StageNeedsHandoff, models.StageWaitingForInput, models.StageCompleted, models.StageBlocked},
	models.StageNeedsHandoff:    {models.StageQueued, models.StageBlocked},
	models.StageWaitingForInput: {models.StageExecuting},
	models.StageCompleted:       {models.StageVerified, models.StageBlocked, models.StageMerging},
	models.StageVerified:        {models.StageMerging, models.StageMerged},
	models.StageMerging:         {models.StageMerged, models.StageConflict},
	models.StageConflict:        {models.StageMerging, models.StageBlocked},
	models.StageMerged:          {},
	models.StageBlocked:         {},
}

// Guards carries the results of the two conditions that gate specific
// edges. Callers compute these against live state (the store,
// the worktree manager, git) before calling Apply; the state machine itself
// never touches disk.
type Guards struct {
	// LiveWorktree and AssignedSession gate entry into Executing.
	LiveWorktree    bool
	AssignedSession bool
	// WorktreeClean gates the Executing->Completed edge.
	WorktreeClean bool
}

// Validate reports whether to is a legal transition from, ignoring guards.
func Validate(from, to models.StageStatus) bool {
	if to == models.StageReady {
		return true // explicit reset is legal from any state
	}
	for _, allowed := range table[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Apply validates the from->to edge, checks the edge's guard (if any), and
// on success mutates stage in place (Status, LastTransitionAt, and
// ReadySince/BlockedReason bookkeeping). now is injected so callers can test
// deterministically and so the orchestrator's single clock reading per tick
// stays authoritative.
func Apply(stage *models.Stage, to models.StageStatus, g Guards, now time.Time) error {
	from := stage.Status

	if !Validate(from, to) {
		return &IllegalTransitionError{StageID: stage.ID, From: from, To: to}
	}

	if from == models.StageQueued && to == models.StageExecuting {
		if !g.LiveWorktree || !g.AssignedSession {
			return &IllegalTransitionError{
				StageID: stage.ID, From: from, To: to,
				Reason: "entering Executing requires a live worktree and an assigned session",
			}
		}
	}

	if from == models.StageExecuting && to == models.StageCompleted {
		if !g.WorktreeClean {
			return &IllegalTransitionError{
				StageID: stage.ID, From: from, To: to,
				Reason: "leaving Executing into Completed requires a clean worktree git status",
			}
		}
	}

	stage.Status = to
	stage.LastTransitionAt = now

	switch to {
	case models.StageReady:
		stage.ReadySince = &now
		stage.BlockedReason = ""
	case models.StageBlocked:
		// BlockedReason is set by the caller before calling Apply, since the
		// reason text is specific to the failure (dispatch error, crash cap,
		// acceptance failure, merge conflict escalation).
	case models.StageExecuting, models.StageQueued:
		stage.BlockedReason = ""
	}

	return nil
}
