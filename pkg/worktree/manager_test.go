package worktree

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_WritesWorktreeAndSymlink(t *testing.T) {
	git := NewFakeGit()
	repoRoot := t.TempDir()
	workDir := filepath.Join(t.TempDir(), ".work")
	require.NoError(t, os.MkdirAll(workDir, 0o755))

	m := New(git, repoRoot, workDir, "cadence", "main")

	wt, err := m.Create(context.Background(), "setup-db")
	require.NoError(t, err)
	assert.Equal(t, "cadence/setup-db", wt.Branch)
	assert.Equal(t, filepath.Join(repoRoot, ".worktrees", "setup-db"), wt.Path)

	link, err := os.Readlink(filepath.Join(wt.Path, ".work"))
	require.NoError(t, err)
	assert.Equal(t, workDir, link)

	assert.Contains(t, git.Worktrees, wt.Path)
	assert.True(t, git.Branches["cadence/setup-db"])
}

func TestCreate_PropagatesGitFailure(t *testing.T) {
	git := NewFakeGit()
	git.FailWorktreeAdd = &GitCommandError{Args: []string{"worktree", "add"}, Stderr: "fatal: branch exists"}

	m := New(git, t.TempDir(), t.TempDir(), "cadence", "main")
	_, err := m.Create(context.Background(), "setup-db")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGitCommand)
}

func TestIsClean_ReflectsGitStatus(t *testing.T) {
	git := NewFakeGit()
	m := New(git, t.TempDir(), t.TempDir(), "cadence", "main")

	wt, err := m.Create(context.Background(), "setup-db")
	require.NoError(t, err)

	clean, err := m.IsClean(context.Background(), wt)
	require.NoError(t, err)
	assert.True(t, clean)

	git.Dirty[wt.Path] = true
	clean, err = m.IsClean(context.Background(), wt)
	require.NoError(t, err)
	assert.False(t, clean)
}

func TestRemove_TearsDownWorktree(t *testing.T) {
	git := NewFakeGit()
	m := New(git, t.TempDir(), t.TempDir(), "cadence", "main")

	wt, err := m.Create(context.Background(), "setup-db")
	require.NoError(t, err)

	require.NoError(t, m.Remove(context.Background(), wt, false))
	assert.NotContains(t, git.Worktrees, wt.Path)
	assert.NotContains(t, git.Branches, wt.Branch)
}
