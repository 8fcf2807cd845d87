package tmux

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// FakeMultiplexer is an in-memory Multiplexer double for tests.
type FakeMultiplexer struct {
	mu       sync.Mutex
	sessions map[string]bool

	// FailNewSession, when non-nil, makes NewSession fail with this error.
	FailNewSession error
}

// NewFake returns an empty FakeMultiplexer.
func NewFake() *FakeMultiplexer {
	return &FakeMultiplexer{sessions: map[string]bool{}}
}

func (f *FakeMultiplexer) NewSession(ctx context.Context, name, dir string, env []string, command string, args []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailNewSession != nil {
		return f.FailNewSession
	}
	if f.sessions[name] {
		return fmt.Errorf("session %q already exists", name)
	}
	f.sessions[name] = true
	return nil
}

func (f *FakeMultiplexer) HasSession(ctx context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[name], nil
}

func (f *FakeMultiplexer) Kill(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, name)
	return nil
}

func (f *FakeMultiplexer) List(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.sessions))
	for name := range f.sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (f *FakeMultiplexer) SendKeys(ctx context.Context, name, keys string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.sessions[name] {
		return fmt.Errorf("session %q not found", name)
	}
	return nil
}

// Crash simulates the external multiplexer session having disappeared —
// e.g. the hosted process crashed and tmux exited — without the supervisor
// having called Kill itself.
func (f *FakeMultiplexer) Crash(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, name)
}
