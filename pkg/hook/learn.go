package hook

import "github.com/cdr-labs/cadence/pkg/models"

// LearnExtract implements `learn extract`: snapshots the session's durable
// learning files so a later `verify learnings` can detect corruption.
func (h *Handler) LearnExtract(stageID, sessionID string) error {
	if err := h.store.SnapshotLearnings(sessionID); err != nil {
		return err
	}
	return h.recordEvent(stageID, sessionID, models.EventPostToolUse, map[string]any{"action": "learn_extract"})
}

// VerifyLearnings implements `verify learnings`: a non-nil error here is
// translated by the stop-gate into a blocking refusal.
func (h *Handler) VerifyLearnings(stageID, sessionID string) error {
	if err := h.store.VerifyLearnings(sessionID); err != nil {
		_ = h.recordEvent(stageID, sessionID, models.EventStop, map[string]any{"action": "verify_learnings_failed", "error": err.Error()})
		return err
	}
	return nil
}
