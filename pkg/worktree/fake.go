package worktree

import (
	"context"
	"fmt"
	"sync"
)

// FakeGit is an in-memory Git double for tests (spec's "external
// collaborators" polymorphism design note). It tracks just enough state —
// which worktrees and branches exist, a scripted conflict list — for the
// manager and merge coordinator tests to drive real control flow.
type FakeGit struct {
	mu sync.Mutex

	Worktrees map[string]string // worktreePath -> branch
	Branches  map[string]bool

	// FailWorktreeAdd, when non-nil, makes WorktreeAdd fail with this error.
	FailWorktreeAdd error
	// ConflictOnMerge names branches whose merge should report conflicts.
	ConflictOnMerge map[string]bool
	// Dirty marks directories whose Status should report uncommitted changes.
	Dirty map[string]bool
}

// NewFakeGit returns an empty FakeGit ready for use.
func NewFakeGit() *FakeGit {
	return &FakeGit{
		Worktrees:       map[string]string{},
		Branches:        map[string]bool{},
		ConflictOnMerge: map[string]bool{},
		Dirty:           map[string]bool{},
	}
}

func (f *FakeGit) RevParse(ctx context.Context, repoDir, ref string) (string, error) {
	return "deadbeef", nil
}

func (f *FakeGit) WorktreeAdd(ctx context.Context, repoDir, worktreePath, branch, fromRef string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWorktreeAdd != nil {
		return f.FailWorktreeAdd
	}
	f.Worktrees[worktreePath] = branch
	f.Branches[branch] = true
	return nil
}

func (f *FakeGit) WorktreeRemove(ctx context.Context, repoDir, worktreePath string, force bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.Worktrees, worktreePath)
	return nil
}

func (f *FakeGit) WorktreePrune(ctx context.Context, repoDir string) error { return nil }

func (f *FakeGit) BranchDelete(ctx context.Context, repoDir, branch string, force bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.Branches, branch)
	return nil
}

func (f *FakeGit) Status(ctx context.Context, dir string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Dirty[dir] {
		return " M some/file.go", nil
	}
	return "", nil
}

func (f *FakeGit) Merge(ctx context.Context, repoDir, branch string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ConflictOnMerge[branch] {
		return &GitCommandError{Args: []string{"merge", branch}, Stderr: "CONFLICT (content): Merge conflict"}
	}
	return nil
}

func (f *FakeGit) MergeAbort(ctx context.Context, repoDir string) error { return nil }

func (f *FakeGit) ConflictedFiles(ctx context.Context, repoDir string) ([]string, error) {
	return []string{"src/shared.go"}, nil
}

func (f *FakeGit) Diff(ctx context.Context, repoDir string, args ...string) (string, error) {
	return fmt.Sprintf("fake diff %v", args), nil
}
