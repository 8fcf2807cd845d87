package statemachine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdr-labs/cadence/pkg/models"
)

func TestValidate_LegalEdges(t *testing.T) {
	cases := []struct {
		from, to models.StageStatus
	}{
		{models.StagePending, models.StageReady},
		{models.StageReady, models.StageQueued},
		{models.StageQueued, models.StageExecuting},
		{models.StageExecuting, models.StageNeedsHandoff},
		{models.StageExecuting, models.StageWaitingForInput},
		{models.StageExecuting, models.StageCompleted},
		{models.StageExecuting, models.StageBlocked},
		{models.StageNeedsHandoff, models.StageQueued},
		{models.StageWaitingForInput, models.StageExecuting},
		{models.StageCompleted, models.StageVerified},
		{models.StageCompleted, models.StageBlocked},
		{models.StageVerified, models.StageMerging},
		{models.StageVerified, models.StageMerged},
		{models.StageMerging, models.StageMerged},
		{models.StageMerging, models.StageConflict},
		{models.StageConflict, models.StageMerging},
		{models.StageConflict, models.StageBlocked},
	}
	for _, c := range cases {
		assert.Truef(t, Validate(c.from, c.to), "%s->%s should be legal", c.from, c.to)
	}
}

func TestValidate_AnyStateToReadyIsReset(t *testing.T) {
	for _, from := range []models.StageStatus{
		models.StageExecuting, models.StageBlocked, models.StageMerged, models.StageConflict,
	} {
		assert.True(t, Validate(from, models.StageReady))
	}
}

func TestValidate_RejectsUnlistedEdge(t *testing.T) {
	assert.False(t, Validate(models.StagePending, models.StageExecuting))
	assert.False(t, Validate(models.StageMerged, models.StageQueued))
}

func TestApply_IllegalTransitionRejected(t *testing.T) {
	stage := &models.Stage{ID: "a", Status: models.StagePending}
	err := Apply(stage, models.StageExecuting, Guards{}, time.Now())
	require.Error(t, err)
	var ite *IllegalTransitionError
	require.ErrorAs(t, err, &ite)
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, models.StagePending, stage.Status)
}

func TestApply_ExecutingGuardRequiresWorktreeAndSession(t *testing.T) {
	stage := &models.Stage{ID: "a", Status: models.StageQueued}

	err := Apply(stage, models.StageExecuting, Guards{LiveWorktree: false, AssignedSession: true}, time.Now())
	require.Error(t, err)
	assert.Equal(t, models.StageQueued, stage.Status)

	err = Apply(stage, models.StageExecuting, Guards{LiveWorktree: true, AssignedSession: true}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.StageExecuting, stage.Status)
}

func TestApply_CompletedGuardRequiresCleanWorktree(t *testing.T) {
	stage := &models.Stage{ID: "a", Status: models.StageExecuting}

	err := Apply(stage, models.StageCompleted, Guards{WorktreeClean: false}, time.Now())
	require.Error(t, err)

	err = Apply(stage, models.StageCompleted, Guards{WorktreeClean: true}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.StageCompleted, stage.Status)
}

func TestApply_ResetClearsBlockedReason(t *testing.T) {
	stage := &models.Stage{ID: "a", Status: models.StageBlocked, BlockedReason: "acceptance failed"}
	now := time.Now()
	err := Apply(stage, models.StageReady, Guards{}, now)
	require.NoError(t, err)
	assert.Equal(t, models.StageReady, stage.Status)
	assert.Empty(t, stage.BlockedReason)
	require.NotNil(t, stage.ReadySince)
	assert.True(t, stage.ReadySince.Equal(now))
}

func TestApply_SetsLastTransitionAt(t *testing.T) {
	stage := &models.Stage{ID: "a", Status: models.StageNeedsHandoff}
	now := time.Now()
	err := Apply(stage, models.StageQueued, Guards{}, now)
	require.NoError(t, err)
	assert.True(t, stage.LastTransitionAt.Equal(now))
}
