package models

import "time"

// SessionState is the lifecycle state of a spawned agent session.
type SessionState string

// Session states.
const (
	SessionRunning   SessionState = "running"
	SessionCompleted SessionState = "completed"
	SessionCrashed   SessionState = "crashed"
	SessionKilled    SessionState = "killed"
)

// Session is the durable record for one invocation of the coding agent.
type Session struct {
	ID                     string       `toml:"id" yaml:"id"`
	StageID                string       `toml:"stage_id" yaml:"stage_id"`
	HostProcessID          int          `toml:"host_process_id" yaml:"host_process_id"`
	MultiplexerSessionName string       `toml:"multiplexer_session_name" yaml:"multiplexer_session_name"`
	State                  SessionState `toml:"state" yaml:"state"`
	ContextPercent         int          `toml:"context_percent" yaml:"context_percent"`
	StartedAt              time.Time    `toml:"started_at" yaml:"started_at"`
	LastHeartbeatAt        time.Time    `toml:"last_heartbeat_at,omitempty" yaml:"last_heartbeat_at,omitempty"`
	LastTool               string       `toml:"last_tool,omitempty" yaml:"last_tool,omitempty"`

	// Notes is free-form text kept below the front-matter block in
	// sessions/<id>.md; it round-trips but is never parsed.
	Notes string `toml:"-" yaml:"-"`
}

// IsLive reports whether the session is still expected to be running.
func (s *Session) IsLive() bool {
	return s.State == SessionRunning
}
