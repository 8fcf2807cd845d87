package models

import "time"

// Worktree is the durable metadata record for a stage's isolated checkout.
type Worktree struct {
	StageID       string    `toml:"stage_id"`
	Path          string    `toml:"path"`
	Branch        string    `toml:"branch"`
	CreatedAt     time.Time `toml:"created_at"`
	OwningSession string    `toml:"owning_session,omitempty"`
}
