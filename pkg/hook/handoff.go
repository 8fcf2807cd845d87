package hook

import (
	"fmt"

	"github.com/cdr-labs/cadence/pkg/models"
	"github.com/cdr-labs/cadence/pkg/statemachine"
)

// HandoffCreate implements `handoff create --trigger {precompact|session_end
// |manual}`: serializes current context into a new handoff file, and
// transitions the stage to NeedsHandoff if the trigger is precompact
//. Returns the written handoff path.
func (h *Handler) HandoffCreate(stageID, sessionID string, trigger models.HandoffTrigger, completedWork, keyDecisions []string, remaining []models.RemainingTask) (string, error) {
	tail, err := h.store.TailEvents(stageID, 50)
	if err != nil {
		return "", err
	}
	tailLines := make([]string, len(tail))
	for i, e := range tail {
		tailLines[i] = fmt.Sprintf("%s %s %s", e.Timestamp.Format("15:04:05"), e.Kind, e.SessionID)
	}

	handoff := &models.Handoff{
		StageID:        stageID,
		SessionID:      sessionID,
		Trigger:        trigger,
		CreatedAt:      h.clock(),
		CompletedWork:  completedWork,
		KeyDecisions:   keyDecisions,
		RemainingTasks: remaining,
		EventLogTail:   tailLines,
	}

	path, err := h.store.CreateHandoff(handoff)
	if err != nil {
		return "", err
	}

	if trigger == models.TriggerPrecompact {
		if err := h.transitionStage(stageID, models.StageNeedsHandoff, statemachine.Guards{}); err != nil {
			return path, err
		}
	}

	if err := h.recordEvent(stageID, sessionID, models.EventPreCompact, map[string]any{"trigger": string(trigger), "path": path}); err != nil {
		return path, err
	}
	return path, nil
}
