package merge

import "errors"

// ErrConflict is returned by Coordinator.Merge when git reports conflicts;
// the caller transitions the stage to Conflict rather than treating this as
// a fatal error.
var ErrConflict = errors.New("merge conflict")
