// Package hook implements the Hook Protocol Handler: the small
// set of subcommands short shell scripts invoke at agent lifecycle points.
// Each subcommand is an idempotent store mutation plus an event-log append;
// the handler never talks to the multiplexer or git directly.
package hook

import (
	"time"

	"github.com/cdr-labs/cadence/pkg/models"
	"github.com/cdr-labs/cadence/pkg/store"
)

// Handler is the receiver for every hook subcommand.
type Handler struct {
	store *store.Store
	now   func() time.Time
}

// New returns a Handler backed by st. now defaults to time.Now; tests
// inject a fixed clock.
func New(st *store.Store) *Handler {
	return &Handler{store: st, now: time.Now}
}

func (h *Handler) clock() time.Time { return h.now() }

// recordEvent appends one event-log line, tolerating (but logging via the
// returned error) a store failure — callers decide whether a log-append
// failure should itself be fatal to the subcommand.
func (h *Handler) recordEvent(stageID, sessionID string, kind models.EventKind, payload map[string]any) error {
	return h.store.AppendEvent(&models.Event{
		Timestamp: h.clock(),
		StageID:   stageID,
		SessionID: sessionID,
		Kind:      kind,
		Payload:   payload,
	})
}

// HeartbeatUpdate implements `heartbeat update`: called on every tool use,
// it writes a JSON heartbeat file for the stage including the tool name.
func (h *Handler) HeartbeatUpdate(stageID, sessionID, toolName string) error {
	hb := &models.Heartbeat{
		LastTool:  toolName,
		Timestamp: h.clock(),
	}
	if err := h.store.WriteHeartbeat(stageID, sessionID, hb); err != nil {
		return err
	}

	session, err := h.store.LoadSession(sessionID)
	if err == nil {
		session.LastHeartbeatAt = hb.Timestamp
		session.LastTool = toolName
		if err := h.store.SaveSession(session); err != nil {
			return err
		}
	}

	return h.recordEvent(stageID, sessionID, models.EventPostToolUse, map[string]any{"tool": toolName})
}
