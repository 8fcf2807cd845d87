package models

import "time"

// HandoffTrigger names why a handoff was created.
type HandoffTrigger string

// Handoff triggers.
const (
	TriggerPrecompact  HandoffTrigger = "precompact"
	TriggerSessionEnd  HandoffTrigger = "session_end"
	TriggerManual      HandoffTrigger = "manual"
	TriggerCrash       HandoffTrigger = "crash"
)

// RemainingTask is one prioritized item of work left for the resuming session.
type RemainingTask struct {
	Priority int    `toml:"priority" yaml:"priority"`
	Summary  string `toml:"summary" yaml:"summary"`
}

// Handoff is a durable context dump letting a new session resume a stage.
type Handoff struct {
	StageID         string          `toml:"stage_id" yaml:"stage_id"`
	SessionID       string          `toml:"session_id" yaml:"session_id"`
	Number          int             `toml:"number" yaml:"number"`
	Trigger         HandoffTrigger  `toml:"trigger" yaml:"trigger"`
	CreatedAt       time.Time       `toml:"created_at" yaml:"created_at"`
	CompletedWork   []string        `toml:"completed_work,omitempty" yaml:"completed_work,omitempty"`
	RemainingTasks  []RemainingTask `toml:"remaining_tasks,omitempty" yaml:"remaining_tasks,omitempty"`
	KeyDecisions    []string        `toml:"key_decisions,omitempty" yaml:"key_decisions,omitempty"`
	RestorePointers []string        `toml:"restore_pointers,omitempty" yaml:"restore_pointers,omitempty"`
	EventLogTail    []string        `toml:"event_log_tail,omitempty" yaml:"event_log_tail,omitempty"`
}
