package supervisor

import (
	"context"
	"time"

	"github.com/cdr-labs/cadence/pkg/models"
)

// CrashCheck is the outcome of evaluating a stage's liveness signals.
type CrashCheck struct {
	Crashed        bool
	HeartbeatStale bool
	SessionAbsent  bool
}

// DetectCrash implements crash predicate: a stage in
// Executing or Queued is crashed only when BOTH signals agree — its
// heartbeat is stale AND its multiplexer session is gone. Either signal
// alone is not sufficient: a stale heartbeat with a live session just means
// the agent is thinking; an absent session with a fresh heartbeat means the
// write raced the check.
func (sv *Supervisor) DetectCrash(ctx context.Context, stage *models.Stage, session *models.Session, hb *models.Heartbeat, now time.Time, threshold time.Duration) (CrashCheck, error) {
	var check CrashCheck

	if stage.Status != models.StageExecuting && stage.Status != models.StageQueued {
		return check, nil
	}

	check.HeartbeatStale = hb.Stale(now, threshold)

	if session != nil && session.MultiplexerSessionName != "" {
		live, err := sv.mux.HasSession(ctx, session.MultiplexerSessionName)
		if err != nil {
			return check, err
		}
		check.SessionAbsent = !live
	} else {
		check.SessionAbsent = true
	}

	check.Crashed = check.HeartbeatStale && check.SessionAbsent
	return check, nil
}
