// Package models defines the durable record types shared by every
// orchestrator component: stages, sessions, signals, handoffs, worktree
// metadata, events, and heartbeats. Records are plain structs with
// TOML/YAML tags so the store package can serialize them directly;
// no package here talks to disk.
package models

import "time"

// StageStatus is a state in the stage state machine.
type StageStatus string

// Stage states, in lifecycle order.
const (
	StagePending         StageStatus = "pending"
	StageReady           StageStatus = "ready"
	StageQueued          StageStatus = "queued"
	StageExecuting       StageStatus = "executing"
	StageNeedsHandoff    StageStatus = "needs_handoff"
	StageWaitingForInput StageStatus = "waiting_for_input"
	StageCompleted       StageStatus = "completed"
	StageVerified        StageStatus = "verified"
	StageMerging         StageStatus = "merging"
	StageMerged          StageStatus = "merged"
	StageConflict        StageStatus = "conflict"
	StageBlocked         StageStatus = "blocked"
)

// AutoMergeSetting is a tri-state override for per-stage auto-merge.
type AutoMergeSetting string

const (
	AutoMergeUnset AutoMergeSetting = ""
	AutoMergeOn    AutoMergeSetting = "on"
	AutoMergeOff   AutoMergeSetting = "off"
)

// Stage is the durable record for one unit of work in the plan DAG.
type Stage struct {
	ID           string           `toml:"id" yaml:"id"`
	Name         string           `toml:"name" yaml:"name"`
	Description  string           `toml:"description,omitempty" yaml:"description,omitempty"`
	Dependencies []string         `toml:"dependencies" yaml:"dependencies"`
	ParallelGroup string          `toml:"parallel_group,omitempty" yaml:"parallel_group,omitempty"`
	Acceptance   []string         `toml:"acceptance,omitempty" yaml:"acceptance,omitempty"`
	Files        []string         `toml:"files,omitempty" yaml:"files,omitempty"`
	AutoMerge    AutoMergeSetting `toml:"auto_merge,omitempty" yaml:"auto_merge,omitempty"`

	Status           StageStatus `toml:"status" yaml:"status"`
	AssignedSession  string      `toml:"assigned_session,omitempty" yaml:"assigned_session,omitempty"`
	WorktreePath     string      `toml:"worktree_path,omitempty" yaml:"worktree_path,omitempty"`
	Branch           string      `toml:"branch,omitempty" yaml:"branch,omitempty"`
	RetryCount       int         `toml:"retry_count" yaml:"retry_count"`
	BlockedReason    string      `toml:"blocked_reason,omitempty" yaml:"blocked_reason,omitempty"`
	LastTransitionAt time.Time   `toml:"last_transition_at" yaml:"last_transition_at"`
	ReadySince       *time.Time  `toml:"ready_since,omitempty" yaml:"ready_since,omitempty"`

	// Notes is free-form operator/agent text kept below the front-matter
	// block in stages/<id>.md; it round-trips but is never parsed.
	Notes string `toml:"-" yaml:"-"`
}

// IsActive reports whether the stage currently owns a live session slot,
// i.e. counts toward the parallelism cap.
func (s *Stage) IsActive() bool {
	switch s.Status {
	case StageQueued, StageExecuting, StageNeedsHandoff:
		return true
	default:
		return false
	}
}

// HasActiveSession reports whether the stage's invariant "Executing implies
// a live session" should currently hold.
func (s *Stage) HasActiveSession() bool {
	return s.Status == StageExecuting
}
