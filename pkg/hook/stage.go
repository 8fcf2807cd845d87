package hook

import (
	"fmt"

	"github.com/cdr-labs/cadence/pkg/models"
	"github.com/cdr-labs/cadence/pkg/statemachine"
)

// transitionStage loads, validates, applies, and persists one stage
// transition — the building block every hook subcommand that touches
// status uses.
func (h *Handler) transitionStage(stageID string, to models.StageStatus, guards statemachine.Guards) error {
	stage, err := h.store.LoadStage(stageID)
	if err != nil {
		return err
	}
	if err := statemachine.Apply(stage, to, guards, h.clock()); err != nil {
		return err
	}
	return h.store.SaveStage(stage)
}

// StageComplete implements `stage complete`: the agent declares its work
// done. worktreeClean must be computed by
// the caller (the stop-gate's own clean check, or the CLI's direct git
// query) since the handler has no git collaborator of its own.
func (h *Handler) StageComplete(stageID, sessionID string, worktreeClean bool) error {
	if err := h.transitionStage(stageID, models.StageCompleted, statemachine.Guards{WorktreeClean: worktreeClean}); err != nil {
		return err
	}
	return h.recordEvent(stageID, sessionID, models.EventSubagentStop, map[string]any{"action": "complete"})
}

// StageBlock implements `stage block`: an operator or hook-detected fatal
// condition halts the stage with a reason.
func (h *Handler) StageBlock(stageID, sessionID, reason string) error {
	stage, err := h.store.LoadStage(stageID)
	if err != nil {
		return err
	}
	stage.BlockedReason = reason
	if err := statemachine.Apply(stage, models.StageBlocked, statemachine.Guards{}, h.clock()); err != nil {
		return err
	}
	if err := h.store.SaveStage(stage); err != nil {
		return err
	}
	return h.recordEvent(stageID, sessionID, models.EventSessionEnd, map[string]any{"action": "block", "reason": reason})
}

// StageWaiting implements `stage waiting`: the session pauses for operator
// input.
func (h *Handler) StageWaiting(stageID, sessionID, question string) error {
	if err := h.transitionStage(stageID, models.StageWaitingForInput, statemachine.Guards{}); err != nil {
		return err
	}
	return h.recordEvent(stageID, sessionID, models.EventStop, map[string]any{"action": "waiting", "question": question})
}

// StageResume implements `stage resume`: the hook-driven resume out of
// WaitingForInput back into Executing.
func (h *Handler) StageResume(stageID, sessionID string) error {
	if err := h.transitionStage(stageID, models.StageExecuting, statemachine.Guards{LiveWorktree: true, AssignedSession: true}); err != nil {
		return err
	}
	return h.recordEvent(stageID, sessionID, models.EventSessionStart, map[string]any{"action": "resume"})
}

// StageReset implements `stage reset`: any-state reset back to Ready
//. Callers are responsible for the session-kill and
// worktree-hard-reset side effects (the supervisor and worktree manager);
// this only rewrites the stage record and clears its signal.
func (h *Handler) StageReset(stageID string) error {
	stage, err := h.store.LoadStage(stageID)
	if err != nil {
		return err
	}
	assignedSession := stage.AssignedSession
	stage.AssignedSession = ""
	stage.WorktreePath = ""
	stage.Branch = ""
	if err := statemachine.Apply(stage, models.StageReady, statemachine.Guards{}, h.clock()); err != nil {
		return err
	}
	if err := h.store.SaveStage(stage); err != nil {
		return err
	}
	if assignedSession != "" {
		if err := h.store.RemoveSignal(assignedSession); err != nil {
			return err
		}
	}
	return h.recordEvent(stageID, assignedSession, models.EventSessionEnd, map[string]any{"action": "reset"})
}

// IllegalTransitionMessage formats a statemachine error for CLI display
// without leaking the internal error type name.
func IllegalTransitionMessage(stageID string, err error) string {
	return fmt.Sprintf("stage %q: %v", stageID, err)
}
