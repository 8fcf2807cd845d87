// Package config holds the orchestrator's own settings: parallelism,
// polling and heartbeat cadence, crash-retry policy, and auto-merge
// defaults. Values are loaded from .work/config.toml, layered over built-in
// defaults with dario.cat/mergo, the way tarsy layers its
// queue settings over DefaultQueueConfig.
package config

import "time"

// Config is the full set of control-loop tunables.
type Config struct {
	// PlanPath is the path to the active plan document, recorded at init
	// time so subsequent `run` invocations don't need to repeat it.
	PlanPath string `toml:"plan_path"`

	// ToolPrefix names the branch namespace (`<tool-prefix>/<stage-id>`)
	// and prefixes multiplexer session names. The plan parser's metadata
	// sentinel markers are fixed and do not depend on it.
	ToolPrefix string `toml:"tool_prefix"`

	// MaxParallel caps the number of stages simultaneously in Queued,
	// Executing, or NeedsHandoff.
	MaxParallel int `toml:"max_parallel"`

	// PollInterval is the base control-loop tick period.
	PollInterval time.Duration `toml:"poll_interval"`
	// PollIntervalJitter is added/subtracted randomly to avoid thundering
	// polls against the filesystem when several orchestrator instances
	// share a machine.
	PollIntervalJitter time.Duration `toml:"poll_interval_jitter"`

	// HeartbeatThreshold is how stale a heartbeat may be before it
	// contributes to crash detection.
	HeartbeatThreshold time.Duration `toml:"heartbeat_threshold"`

	// AcceptanceTimeout bounds how long a single acceptance command may run
	// during verification.
	AcceptanceTimeout time.Duration `toml:"acceptance_timeout"`

	// MaxCrashRetries caps how many times a stage may be auto-resumed after
	// a detected crash before it is blocked instead.
	MaxCrashRetries int `toml:"max_crash_retries"`

	// AutoMergeDefault is the plan-wide auto-merge setting used when a
	// stage does not override it; nil means "off".
	AutoMergeDefault *bool `toml:"auto_merge_default,omitempty"`

	// VerificationEnabled gates whether acceptance commands run at all; when
	// false, Completed stages satisfy readiness directly.
	VerificationEnabled bool `toml:"verification_enabled"`

	// KillGracePeriod is how long a SIGTERM'd session is given before
	// SIGKILL during `stage reset --kill-session`.
	KillGracePeriod time.Duration `toml:"kill_grace_period"`

	// AgentCommand and AgentArgs build the argv for the opaque coding-agent
	// child process the supervisor spawns into each session's multiplexer
	// pane. The orchestrator never parses the agent's own output.
	AgentCommand string   `toml:"agent_command"`
	AgentArgs    []string `toml:"agent_args,omitempty"`

	// IntegrationBranch is the branch stage branches fork from and merge
	// back into.
	IntegrationBranch string `toml:"integration_branch"`
}

// Default returns the orchestrator's built-in defaults.
func Default() *Config {
	return &Config{
		ToolPrefix:          "cadence",
		MaxParallel:         3,
		PollInterval:        2 * time.Second,
		PollIntervalJitter:  500 * time.Millisecond,
		HeartbeatThreshold:  5 * time.Minute,
		AcceptanceTimeout:   10 * time.Minute,
		MaxCrashRetries:     2,
		VerificationEnabled: true,
		KillGracePeriod:     10 * time.Second,
		AgentCommand:        "agent",
		IntegrationBranch:   "main",
	}
}
