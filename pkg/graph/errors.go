package graph

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel graph-validation error kinds.
var (
	ErrDanglingDependency = errors.New("dangling dependency")
	ErrCyclicDependency   = errors.New("cyclic dependency")
)

// DanglingDependencyError names the stage and the dependency id it cannot
// resolve.
type DanglingDependencyError struct {
	StageID      string
	DependencyID string
}

func (e *DanglingDependencyError) Error() string {
	return fmt.Sprintf("stage %q depends on unknown stage %q", e.StageID, e.DependencyID)
}

func (e *DanglingDependencyError) Unwrap() error { return ErrDanglingDependency }

// CyclicDependencyError lists the stage ids participating in a cycle.
type CyclicDependencyError struct {
	StageIDs []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic dependency among stages: %s", strings.Join(e.StageIDs, ", "))
}

func (e *CyclicDependencyError) Unwrap() error { return ErrCyclicDependency }
