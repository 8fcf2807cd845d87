package hook

import (
	"errors"

	"github.com/cdr-labs/cadence/pkg/models"
	"github.com/cdr-labs/cadence/pkg/store"
)

// StopGateResult is the structured refusal the stop hook writes to stdout.
type StopGateResult struct {
	Continue bool   `json:"continue"`
	Reason   string `json:"reason,omitempty"`
}

// StopGate implements the stop hook: refuses session exit if the worktree
// has uncommitted changes, the stage is still Executing, or the session's
// learning files fail verification against their snapshot (a session with
// no snapshot is not checked). The caller supplies worktreeClean (from the worktree manager's git status
// check) since the handler has no git collaborator of its own.
func (h *Handler) StopGate(stageID, sessionID string, worktreeClean bool) (StopGateResult, error) {
	stage, err := h.store.LoadStage(stageID)
	if err != nil {
		return StopGateResult{}, err
	}

	if !worktreeClean {
		result := StopGateResult{Continue: false, Reason: "worktree has uncommitted changes"}
		_ = h.recordEvent(stageID, sessionID, models.EventStop, map[string]any{"refused": true, "reason": result.Reason})
		return result, nil
	}
	if stage.Status == models.StageExecuting {
		result := StopGateResult{Continue: false, Reason: "stage is still Executing; declare complete or create a handoff first"}
		_ = h.recordEvent(stageID, sessionID, models.EventStop, map[string]any{"refused": true, "reason": result.Reason})
		return result, nil
	}
	if err := h.store.VerifyLearnings(sessionID); err != nil && !errors.Is(err, store.ErrNotFound) {
		result := StopGateResult{Continue: false, Reason: "learning files failed verification: " + err.Error()}
		_ = h.recordEvent(stageID, sessionID, models.EventStop, map[string]any{"refused": true, "reason": result.Reason})
		return result, nil
	}

	if err := h.recordEvent(stageID, sessionID, models.EventSessionEnd, map[string]any{"refused": false}); err != nil {
		return StopGateResult{}, err
	}
	return StopGateResult{Continue: true}, nil
}
