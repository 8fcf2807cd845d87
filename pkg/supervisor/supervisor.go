// Package supervisor implements the Session Supervisor: it
// spawns agent sessions into detached multiplexer sessions, records their
// identity, and detects crashes by combining heartbeat staleness with
// multiplexer-session absence.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cdr-labs/cadence/pkg/idgen"
	"github.com/cdr-labs/cadence/pkg/models"
	"github.com/cdr-labs/cadence/pkg/store"
	"github.com/cdr-labs/cadence/pkg/tmux"
)

// AgentCommand constructs the argv used to launch the coding-agent process
//. The orchestrator never inspects the agent's own protocol; it
// only needs a command and arguments to hand to the multiplexer.
type AgentCommand func(stageID, sessionID, workDir string) (command string, args []string)

// Supervisor spawns and monitors agent sessions.
type Supervisor struct {
	mux   tmux.Multiplexer
	store *store.Store
	cmd   AgentCommand

	sessionNamePrefix string
}

// New returns a Supervisor. cmd builds the per-session agent invocation.
func New(mux tmux.Multiplexer, st *store.Store, cmd AgentCommand, sessionNamePrefix string) *Supervisor {
	return &Supervisor{mux: mux, store: st, cmd: cmd, sessionNamePrefix: sessionNamePrefix}
}

// sessionName derives the multiplexer session name for a stage's session.
func (sv *Supervisor) sessionName(stageID, sessionID string) string {
	return fmt.Sprintf("%s-%s-%s", sv.sessionNamePrefix, stageID, sessionID[:min(8, len(sessionID))])
}

// Spawn starts a new session for a stage: creates the session record, hosts
// the agent process in a fresh detached multiplexer session with the
// TOOL_STAGE_ID/TOOL_SESSION_ID/TOOL_WORK_DIR environment injected
//, and persists the result.
func (sv *Supervisor) Spawn(ctx context.Context, stageID, worktreeDir string) (*models.Session, error) {
	sessionID := idgen.NewULID()
	name := sv.sessionName(stageID, sessionID)

	env := []string{
		"TOOL_STAGE_ID=" + stageID,
		"TOOL_SESSION_ID=" + sessionID,
		"TOOL_WORK_DIR=" + worktreeDir,
	}
	command, args := sv.cmd(stageID, sessionID, worktreeDir)

	if err := sv.mux.NewSession(ctx, name, worktreeDir, env, command, args); err != nil {
		return nil, fmt.Errorf("spawn session for stage %q: %w", stageID, err)
	}

	session := &models.Session{
		ID:                      sessionID,
		StageID:                 stageID,
		MultiplexerSessionName:  name,
		State:                   models.SessionRunning,
		StartedAt:               time.Now(),
	}
	if err := sv.store.SaveSession(session); err != nil {
		slog.Warn("session record save failed after spawn", "stage_id", stageID, "session_id", sessionID, "error", err)
		return session, err
	}
	return session, nil
}

// Kill terminates a session's multiplexer session: SIGTERM via the
// multiplexer's own session teardown, escalating is the multiplexer's
// responsibility on kill-session; the supervisor enforces the grace period
// by waiting before a second Kill call.
func (sv *Supervisor) Kill(ctx context.Context, session *models.Session, gracePeriod time.Duration) error {
	if err := sv.mux.Kill(ctx, session.MultiplexerSessionName); err != nil {
		slog.Warn("graceful kill failed, will not retry without a live session", "session_id", session.ID, "error", err)
	}

	time.Sleep(gracePeriod)

	live, err := sv.mux.HasSession(ctx, session.MultiplexerSessionName)
	if err != nil {
		return fmt.Errorf("check session %q after kill: %w", session.MultiplexerSessionName, err)
	}
	if live {
		if err := sv.mux.Kill(ctx, session.MultiplexerSessionName); err != nil {
			return fmt.Errorf("force kill session %q: %w", session.MultiplexerSessionName, err)
		}
	}

	session.State = models.SessionKilled
	return sv.store.SaveSession(session)
}
