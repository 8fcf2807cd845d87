// Package worktree implements the Worktree Manager: isolated
// git worktrees per stage, sharing the canonical .work/ store via a symlink.
package worktree

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cdr-labs/cadence/pkg/models"
)

// Manager provisions and tears down per-stage git worktrees.
type Manager struct {
	git Git

	// RepoRoot is the root of the project's canonical git checkout.
	RepoRoot string
	// WorkDir is the canonical .work/ store directory every worktree's
	// nested .work symlink points at.
	WorkDir string
	// ToolPrefix names the branch namespace, e.g. "cadence".
	ToolPrefix string
	// IntegrationBranch is the branch stage branches fork from and merge
	// back into (typically "main").
	IntegrationBranch string
}

// New returns a Manager backed by git.
func New(git Git, repoRoot, workDir, toolPrefix, integrationBranch string) *Manager {
	return &Manager{
		git:               git,
		RepoRoot:          repoRoot,
		WorkDir:           workDir,
		ToolPrefix:        toolPrefix,
		IntegrationBranch: integrationBranch,
	}
}

// BranchName returns the branch a stage's worktree is created on.
func (m *Manager) BranchName(stageID string) string {
	return fmt.Sprintf("%s/%s", m.ToolPrefix, stageID)
}

// WorktreePath returns the path a stage's worktree lives at.
func (m *Manager) WorktreePath(stageID string) string {
	return filepath.Join(m.RepoRoot, ".worktrees", stageID)
}

// Create provisions a worktree and branch for a stage, forked from the
// integration branch's current tip, and symlinks the worktree's .work/ to
// the canonical store. On any git failure the error is returned for the
// caller to transition the stage to Blocked.
func (m *Manager) Create(ctx context.Context, stageID string) (*models.Worktree, error) {
	branch := m.BranchName(stageID)
	path := m.WorktreePath(stageID)

	if err := m.git.WorktreeAdd(ctx, m.RepoRoot, path, branch, m.IntegrationBranch); err != nil {
		return nil, fmt.Errorf("create worktree for stage %q: %w", stageID, err)
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("prepare worktree dir for stage %q: %w", stageID, err)
	}

	symlink := filepath.Join(path, ".work")
	if err := os.Symlink(m.WorkDir, symlink); err != nil {
		slog.Warn("worktree .work symlink failed", "stage_id", stageID, "error", err)
		return nil, fmt.Errorf("link store into worktree for stage %q: %w", stageID, err)
	}

	return &models.Worktree{
		StageID: stageID,
		Path:    path,
		Branch:  branch,
	}, nil
}

// Remove tears down a stage's worktree: removes the working copy, deletes
// the branch, and prunes stale worktree metadata. force allows removal even with uncommitted changes, used by
// `stage reset --kill-session` hard resets.
func (m *Manager) Remove(ctx context.Context, wt *models.Worktree, force bool) error {
	if err := m.git.WorktreeRemove(ctx, m.RepoRoot, wt.Path, force); err != nil {
		return fmt.Errorf("remove worktree for stage %q: %w", wt.StageID, err)
	}
	if err := m.git.BranchDelete(ctx, m.RepoRoot, wt.Branch, force); err != nil {
		slog.Warn("branch delete failed after worktree removal", "stage_id", wt.StageID, "branch", wt.Branch, "error", err)
	}
	if err := m.git.WorktreePrune(ctx, m.RepoRoot); err != nil {
		slog.Warn("worktree prune failed", "stage_id", wt.StageID, "error", err)
	}
	return nil
}

// IsClean reports whether a worktree has no uncommitted changes — the
// guard on the Executing->Completed transition.
func (m *Manager) IsClean(ctx context.Context, wt *models.Worktree) (bool, error) {
	out, err := m.git.Status(ctx, wt.Path)
	if err != nil {
		return false, fmt.Errorf("status for stage %q: %w", wt.StageID, err)
	}
	return out == "", nil
}
