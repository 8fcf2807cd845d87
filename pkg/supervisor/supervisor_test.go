package supervisor

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdr-labs/cadence/pkg/models"
	"github.com/cdr-labs/cadence/pkg/store"
	"github.com/cdr-labs/cadence/pkg/tmux"
)

func testAgentCommand(stageID, sessionID, workDir string) (string, []string) {
	return "echo", []string{"working on", stageID}
}

func newTestSupervisor(t *testing.T) (*Supervisor, *tmux.FakeMultiplexer, *store.Store) {
	t.Helper()
	mux := tmux.NewFake()
	st := store.New(filepath.Join(t.TempDir(), ".work"))
	return New(mux, st, testAgentCommand, "cadence"), mux, st
}

func TestSpawn_CreatesSessionAndRecord(t *testing.T) {
	sv, mux, st := newTestSupervisor(t)

	session, err := sv.Spawn(context.Background(), "setup-db", "/repo/.worktrees/setup-db")
	require.NoError(t, err)
	assert.Equal(t, "setup-db", session.StageID)
	assert.True(t, session.IsLive())

	live, err := mux.HasSession(context.Background(), session.MultiplexerSessionName)
	require.NoError(t, err)
	assert.True(t, live)

	loaded, err := st.LoadSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.MultiplexerSessionName, loaded.MultiplexerSessionName)
}

func TestDetectCrash_RequiresBothSignals(t *testing.T) {
	sv, mux, _ := newTestSupervisor(t)
	now := time.Now()
	threshold := 5 * time.Minute

	session, err := sv.Spawn(context.Background(), "setup-db", "/repo/.worktrees/setup-db")
	require.NoError(t, err)
	stage := &models.Stage{ID: "setup-db", Status: models.StageExecuting}

	fresh := &models.Heartbeat{Timestamp: now}
	check, err := sv.DetectCrash(context.Background(), stage, session, fresh, now, threshold)
	require.NoError(t, err)
	assert.False(t, check.Crashed, "live session + fresh heartbeat is not a crash")

	stale := &models.Heartbeat{Timestamp: now.Add(-10 * time.Minute)}
	check, err = sv.DetectCrash(context.Background(), stage, session, stale, now, threshold)
	require.NoError(t, err)
	assert.False(t, check.Crashed, "stale heartbeat alone (idle thinking, session still live) is not a crash")

	mux.Crash(session.MultiplexerSessionName)
	check, err = sv.DetectCrash(context.Background(), stage, session, stale, now, threshold)
	require.NoError(t, err)
	assert.True(t, check.Crashed, "stale heartbeat AND absent session is a crash")
}

func TestDetectCrash_IgnoresNonActiveStages(t *testing.T) {
	sv, _, _ := newTestSupervisor(t)
	stage := &models.Stage{ID: "setup-db", Status: models.StageVerified}
	stale := &models.Heartbeat{Timestamp: time.Now().Add(-time.Hour)}

	check, err := sv.DetectCrash(context.Background(), stage, nil, stale, time.Now(), 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, check.Crashed)
}
