// Package store implements the Workspace Store: a directory
// tree rooted at .work/ holding every durable orchestrator record. All
// writes go through atomic rename; the event log uses O_APPEND. Readers
// tolerate missing files by returning ErrNotFound rather than failing.
package store

import (
	"path/filepath"
	"sync"

	"github.com/cdr-labs/cadence/pkg/config"
)

// Store is the root handle for the .work/ directory tree. It holds no
// in-memory cache of record contents — every call round-trips through the
// filesystem — but serializes config reads/writes with a mutex since the
// control loop and CLI commands can both touch config.toml within one
// process.
type Store struct {
	root string
	mu   sync.Mutex
}

// Layout of the .work/ directory tree.
const (
	dirStages    = "stages"
	dirSessions  = "sessions"
	dirSignals   = "signals"
	dirHandoffs  = "handoffs"
	dirWorktrees = "worktrees"
	dirHooks     = "hooks"
	dirHeartbeat = "heartbeat"

	fileConfig         = "config.toml"
	fileExecutionGraph = "execution-graph.toml"
	fileEventsLog      = "events.jsonl"
)

// New returns a Store rooted at workDir (typically "<project>/.work").
func New(workDir string) *Store {
	return &Store{root: workDir}
}

// Root returns the absolute .work/ directory path.
func (s *Store) Root() string { return s.root }

func (s *Store) path(elems ...string) string {
	return filepath.Join(append([]string{s.root}, elems...)...)
}

func (s *Store) stagePath(id string) string    { return s.path(dirStages, id+".md") }
func (s *Store) sessionPath(id string) string   { return s.path(dirSessions, id+".md") }
func (s *Store) heartbeatFilePath(id string) string {
	return s.path(dirSessions, id+".heartbeat")
}
func (s *Store) signalPath(sessionID string) string { return s.path(dirSignals, sessionID+".md") }
func (s *Store) worktreePath(stageID string) string {
	return s.path(dirWorktrees, stageID+".toml")
}
func (s *Store) heartbeatPath(stageID string) string {
	return s.path(dirHeartbeat, stageID+".json")
}
func (s *Store) eventsLogPath() string { return s.path(dirHooks, fileEventsLog) }
func (s *Store) configPath() string    { return s.path(fileConfig) }
func (s *Store) executionGraphPath() string { return s.path(fileExecutionGraph) }

// LoadConfig reads .work/config.toml, layered over config.Default().
func (s *Store) LoadConfig() (*config.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return config.Load(s.configPath())
}

// SaveConfig persists cfg atomically.
func (s *Store) SaveConfig(cfg *config.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := config.Save(cfg)
	if err != nil {
		return err
	}
	return atomicWrite(s.configPath(), data, 0o644)
}
