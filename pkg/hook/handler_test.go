package hook

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdr-labs/cadence/pkg/models"
	"github.com/cdr-labs/cadence/pkg/store"
)

func newTestHandler(t *testing.T) (*Handler, *store.Store) {
	t.Helper()
	st := store.New(filepath.Join(t.TempDir(), ".work"))
	h := New(st)
	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return fixed }
	return h, st
}

func seedStage(t *testing.T, st *store.Store, id string, status models.StageStatus) {
	t.Helper()
	require.NoError(t, st.SaveStage(&models.Stage{ID: id, Name: id, Status: status}))
}

func TestHeartbeatUpdate_WritesHeartbeatAndEvent(t *testing.T) {
	h, st := newTestHandler(t)
	require.NoError(t, st.SaveSession(&models.Session{ID: "sess-1", StageID: "a", State: models.SessionRunning}))

	require.NoError(t, h.HeartbeatUpdate("a", "sess-1", "Edit"))

	hb, err := st.LoadHeartbeat("a")
	require.NoError(t, err)
	assert.Equal(t, "Edit", hb.LastTool)

	tail, err := st.TailEvents("a", 10)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, models.EventPostToolUse, tail[0].Kind)
}

func TestHandoffCreate_PrecompactTransitionsToNeedsHandoff(t *testing.T) {
	h, st := newTestHandler(t)
	seedStage(t, st, "a", models.StageExecuting)

	path, err := h.HandoffCreate("a", "sess-1", models.TriggerPrecompact, []string{"did x"}, nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, path)

	stage, err := st.LoadStage("a")
	require.NoError(t, err)
	assert.Equal(t, models.StageNeedsHandoff, stage.Status)
}

func TestHandoffCreate_ManualDoesNotTransition(t *testing.T) {
	h, st := newTestHandler(t)
	seedStage(t, st, "a", models.StageExecuting)

	_, err := h.HandoffCreate("a", "sess-1", models.TriggerManual, nil, nil, nil)
	require.NoError(t, err)

	stage, err := st.LoadStage("a")
	require.NoError(t, err)
	assert.Equal(t, models.StageExecuting, stage.Status)
}

func TestStageComplete_RequiresCleanWorktree(t *testing.T) {
	h, st := newTestHandler(t)
	seedStage(t, st, "a", models.StageExecuting)

	err := h.StageComplete("a", "sess-1", false)
	require.Error(t, err)

	err = h.StageComplete("a", "sess-1", true)
	require.NoError(t, err)

	stage, err := st.LoadStage("a")
	require.NoError(t, err)
	assert.Equal(t, models.StageCompleted, stage.Status)
}

func TestStageReset_ClearsAssignmentAndSignal(t *testing.T) {
	h, st := newTestHandler(t)
	require.NoError(t, st.SaveStage(&models.Stage{
		ID: "a", Name: "a", Status: models.StageBlocked,
		AssignedSession: "sess-1", WorktreePath: "/x", Branch: "cadence/a",
	}))
	require.NoError(t, st.WriteSignal("sess-1", &models.Signal{SessionID: "sess-1", StageID: "a"}))

	require.NoError(t, h.StageReset("a"))

	stage, err := st.LoadStage("a")
	require.NoError(t, err)
	assert.Equal(t, models.StageReady, stage.Status)
	assert.Empty(t, stage.AssignedSession)

	_, err = st.LoadSignal("sess-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStopGate_RefusesDirtyWorktree(t *testing.T) {
	h, st := newTestHandler(t)
	seedStage(t, st, "a", models.StageCompleted)

	result, err := h.StopGate("a", "sess-1", false)
	require.NoError(t, err)
	assert.False(t, result.Continue)
	assert.Contains(t, result.Reason, "uncommitted")
}

func TestStopGate_RefusesWhileExecuting(t *testing.T) {
	h, st := newTestHandler(t)
	seedStage(t, st, "a", models.StageExecuting)

	result, err := h.StopGate("a", "sess-1", true)
	require.NoError(t, err)
	assert.False(t, result.Continue)
	assert.Contains(t, result.Reason, "Executing")
}

func TestStopGate_AllowsCleanCompletedStage(t *testing.T) {
	h, st := newTestHandler(t)
	seedStage(t, st, "a", models.StageCompleted)

	result, err := h.StopGate("a", "sess-1", true)
	require.NoError(t, err)
	assert.True(t, result.Continue)
}

func TestLearnExtractThenVerify(t *testing.T) {
	h, st := newTestHandler(t)
	require.NoError(t, h.LearnExtract("a", "sess-1"))
	require.NoError(t, h.VerifyLearnings("a", "sess-1"))
}
