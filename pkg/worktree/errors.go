package worktree

import (
	"errors"
	"fmt"
)

// ErrGitCommand wraps any non-zero exit from the git collaborator (spec
// §4.5 "fails the stage into Blocked with the git error string").
var ErrGitCommand = errors.New("git command failed")

// GitCommandError carries the failing argv and git's stderr.
type GitCommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *GitCommandError) Error() string {
	return fmt.Sprintf("git %v: %s", e.Args, e.Stderr)
}

func (e *GitCommandError) Unwrap() error { return ErrGitCommand }
