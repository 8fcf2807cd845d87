package statemachine

import (
	"errors"
	"fmt"

	"github.com/cdr-labs/cadence/pkg/models"
)

// ErrIllegalTransition is the sentinel wrapped by IllegalTransitionError.
var ErrIllegalTransition = errors.New("illegal transition")

// IllegalTransitionError names the stage and the rejected edge.
type IllegalTransitionError struct {
	StageID string
	From    models.StageStatus
	To      models.StageStatus
	Reason  string
}

func (e *IllegalTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("stage %q: illegal transition %s->%s: %s", e.StageID, e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("stage %q: illegal transition %s->%s", e.StageID, e.From, e.To)
}

func (e *IllegalTransitionError) Unwrap() error { return ErrIllegalTransition }
