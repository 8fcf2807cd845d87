package worktree

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// Git is the narrow capability interface the manager needs from git
//. execGit is the real, subprocess-backed
// implementation; tests use a fake.
type Git interface {
	RevParse(ctx context.Context, repoDir, ref string) (string, error)
	WorktreeAdd(ctx context.Context, repoDir, worktreePath, branch, fromRef string) error
	WorktreeRemove(ctx context.Context, repoDir, worktreePath string, force bool) error
	WorktreePrune(ctx context.Context, repoDir string) error
	BranchDelete(ctx context.Context, repoDir, branch string, force bool) error
	Status(ctx context.Context, dir string) (string, error)
	Merge(ctx context.Context, repoDir, branch string) error
	MergeAbort(ctx context.Context, repoDir string) error
	ConflictedFiles(ctx context.Context, repoDir string) ([]string, error)
	Diff(ctx context.Context, repoDir string, args ...string) (string, error)
}

// execGit shells out to the system git binary.
type execGit struct{}

// NewExecGit returns the real, subprocess-backed Git implementation.
func NewExecGit() Git { return execGit{} }

func (execGit) run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", &GitCommandError{Args: args, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return strings.TrimSpace(stdout.String()), nil
}

func (g execGit) RevParse(ctx context.Context, repoDir, ref string) (string, error) {
	return g.run(ctx, repoDir, "rev-parse", ref)
}

func (g execGit) WorktreeAdd(ctx context.Context, repoDir, worktreePath, branch, fromRef string) error {
	_, err := g.run(ctx, repoDir, "worktree", "add", "-b", branch, worktreePath, fromRef)
	return err
}

func (g execGit) WorktreeRemove(ctx context.Context, repoDir, worktreePath string, force bool) error {
	args := []string{"worktree", "remove", worktreePath}
	if force {
		args = append(args, "--force")
	}
	_, err := g.run(ctx, repoDir, args...)
	return err
}

func (g execGit) WorktreePrune(ctx context.Context, repoDir string) error {
	_, err := g.run(ctx, repoDir, "worktree", "prune")
	return err
}

func (g execGit) BranchDelete(ctx context.Context, repoDir, branch string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	_, err := g.run(ctx, repoDir, "branch", flag, branch)
	return err
}

func (g execGit) Status(ctx context.Context, dir string) (string, error) {
	return g.run(ctx, dir, "status", "--porcelain")
}

func (g execGit) Merge(ctx context.Context, repoDir, branch string) error {
	_, err := g.run(ctx, repoDir, "merge", "--no-edit", branch)
	return err
}

func (g execGit) MergeAbort(ctx context.Context, repoDir string) error {
	_, err := g.run(ctx, repoDir, "merge", "--abort")
	return err
}

func (g execGit) ConflictedFiles(ctx context.Context, repoDir string) ([]string, error) {
	out, err := g.run(ctx, repoDir, "diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

func (g execGit) Diff(ctx context.Context, repoDir string, args ...string) (string, error) {
	full := append([]string{"diff"}, args...)
	return g.run(ctx, repoDir, full...)
}
