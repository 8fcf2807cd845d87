package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdr-labs/cadence/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), ".work"))
}

func TestStage_SaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	stage := &models.Stage{
		ID:           "setup-db",
		Name:         "Set up database",
		Dependencies: []string{"init"},
		Status:       models.StageReady,
		Notes:        "operator notes go here",
	}
	require.NoError(t, s.SaveStage(stage))

	loaded, err := s.LoadStage("setup-db")
	require.NoError(t, err)
	assert.Equal(t, stage.ID, loaded.ID)
	assert.Equal(t, stage.Dependencies, loaded.Dependencies)
	assert.Equal(t, models.StageReady, loaded.Status)
	assert.Equal(t, "operator notes go here", loaded.Notes)
}

func TestStage_LoadMissingReturnsNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.LoadStage("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStage_ListSortedByID(t *testing.T) {
	s := newTestStore(t)
	for _, id := range []string{"c-stage", "a-stage", "b-stage"} {
		require.NoError(t, s.SaveStage(&models.Stage{ID: id, Name: id, Status: models.StagePending}))
	}

	stages, err := s.ListStages()
	require.NoError(t, err)
	require.Len(t, stages, 3)
	assert.Equal(t, []string{"a-stage", "b-stage", "c-stage"}, []string{stages[0].ID, stages[1].ID, stages[2].ID})
}

func TestSession_SaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	session := &models.Session{
		ID:                      "sess-1",
		StageID:                 "setup-db",
		HostProcessID:           1234,
		MultiplexerSessionName:  "cadence-setup-db",
		State:                   models.SessionRunning,
		StartedAt:               time.Now().Truncate(time.Second),
	}
	require.NoError(t, s.SaveSession(session))

	loaded, err := s.LoadSession("sess-1")
	require.NoError(t, err)
	assert.Equal(t, session.StageID, loaded.StageID)
	assert.Equal(t, session.MultiplexerSessionName, loaded.MultiplexerSessionName)
	assert.True(t, loaded.IsLive())
}

func TestSignal_WriteLoadRemove(t *testing.T) {
	s := newTestStore(t)
	signal := &models.Signal{
		SessionID: "sess-1",
		StageID:   "setup-db",
		Task:      "wire the migrations",
	}
	require.NoError(t, s.WriteSignal("sess-1", signal))

	loaded, err := s.LoadSignal("sess-1")
	require.NoError(t, err)
	assert.Equal(t, "wire the migrations", loaded.Task)

	require.NoError(t, s.RemoveSignal("sess-1"))
	_, err = s.LoadSignal("sess-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHandoff_NumbersIncrement(t *testing.T) {
	s := newTestStore(t)

	first, err := s.CreateHandoff(&models.Handoff{StageID: "setup-db", Trigger: models.TriggerPrecompact})
	require.NoError(t, err)
	second, err := s.CreateHandoff(&models.Handoff{StageID: "setup-db", Trigger: models.TriggerCrash})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	latest, err := s.LatestHandoff("setup-db")
	require.NoError(t, err)
	assert.Equal(t, 2, latest.Number)
	assert.Equal(t, models.TriggerCrash, latest.Trigger)

	all, err := s.ListHandoffs("setup-db")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 1, all[0].Number)
}

func TestWorktree_SaveLoadRemove(t *testing.T) {
	s := newTestStore(t)
	wt := &models.Worktree{StageID: "setup-db", Path: "/repo/.worktrees/setup-db", Branch: "cadence/setup-db"}
	require.NoError(t, s.SaveWorktree(wt))

	loaded, err := s.LoadWorktree("setup-db")
	require.NoError(t, err)
	assert.Equal(t, wt.Branch, loaded.Branch)

	require.NoError(t, s.RemoveWorktree("setup-db"))
	_, err = s.LoadWorktree("setup-db")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEvents_AppendAndTail(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.AppendEvent(&models.Event{
			Timestamp: time.Now(),
			StageID:   "setup-db",
			SessionID: "sess-1",
			Kind:      models.EventPostToolUse,
			Payload:   map[string]any{"n": i},
		}))
	}
	require.NoError(t, s.AppendEvent(&models.Event{StageID: "other-stage", Kind: models.EventStop}))

	tail, err := s.TailEvents("setup-db", 3)
	require.NoError(t, err)
	require.Len(t, tail, 3)
	assert.Equal(t, float64(2), tail[0].Payload["n"])
	assert.Equal(t, float64(4), tail[2].Payload["n"])
}

func TestHeartbeat_WriteLoad(t *testing.T) {
	s := newTestStore(t)
	pct := 42
	hb := &models.Heartbeat{LastTool: "Edit", Timestamp: time.Now(), ContextPercent: &pct}
	require.NoError(t, s.WriteHeartbeat("setup-db", "sess-1", hb))

	loaded, err := s.LoadHeartbeat("setup-db")
	require.NoError(t, err)
	assert.Equal(t, "Edit", loaded.LastTool)
	require.NotNil(t, loaded.ContextPercent)
	assert.Equal(t, 42, *loaded.ContextPercent)
}

func TestExecutionGraph_SaveLoad(t *testing.T) {
	s := newTestStore(t)
	stages := []*models.Stage{
		{ID: "a", Dependencies: nil},
		{ID: "b", Dependencies: []string{"a"}},
	}
	require.NoError(t, s.SaveExecutionGraph("cadence", stages))

	ids, err := s.LoadExecutionGraphStageIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestLearnings_SnapshotThenVerify(t *testing.T) {
	s := newTestStore(t)
	dir := s.LearningsDir("sess-1")
	require.NoError(t, writeFile(t, filepath.Join(dir, "pattern.md"), "use atomic rename"))

	require.NoError(t, s.SnapshotLearnings("sess-1"))
	require.NoError(t, s.VerifyLearnings("sess-1"))

	require.NoError(t, writeFile(t, filepath.Join(dir, "pattern.md"), "TRUNCATED"))
	assert.Error(t, s.VerifyLearnings("sess-1"))
}

func writeFile(t *testing.T, path, content string) error {
	t.Helper()
	return atomicWrite(path, []byte(content), 0o644)
}
