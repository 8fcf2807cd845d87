package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdr-labs/cadence/pkg/models"
)

func TestReady_EmptyDependencies(t *testing.T) {
	g, err := Build([]*models.Stage{stage("a")})
	require.NoError(t, err)

	statuses := map[string]models.StageStatus{"a": models.StagePending}
	statusOf := func(id string) models.StageStatus { return statuses[id] }

	assert.True(t, g.Ready("a", statusOf, DefaultAcceptedTerminalSet()))
}

func TestReady_WaitsForDependency(t *testing.T) {
	g, err := Build([]*models.Stage{stage("a"), stage("b", "a")})
	require.NoError(t, err)

	statuses := map[string]models.StageStatus{"a": models.StageExecuting, "b": models.StagePending}
	statusOf := func(id string) models.StageStatus { return statuses[id] }

	assert.False(t, g.Ready("b", statusOf, DefaultAcceptedTerminalSet()))

	statuses["a"] = models.StageVerified
	assert.True(t, g.Ready("b", statusOf, DefaultAcceptedTerminalSet()))
}

func TestReady_CompletedOnlyCountsWhenConfigured(t *testing.T) {
	g, err := Build([]*models.Stage{stage("a"), stage("b", "a")})
	require.NoError(t, err)

	statuses := map[string]models.StageStatus{"a": models.StageCompleted, "b": models.StagePending}
	statusOf := func(id string) models.StageStatus { return statuses[id] }

	assert.False(t, g.Ready("b", statusOf, DefaultAcceptedTerminalSet()))
	assert.True(t, g.Ready("b", statusOf, AcceptedTerminalSet{IncludeCompleted: true}))
}

func TestReadyStages_DiamondOrder(t *testing.T) {
	g, err := Build([]*models.Stage{
		stage("a"),
		stage("b", "a"),
		stage("c", "a"),
		stage("d", "b", "c"),
	})
	require.NoError(t, err)

	statuses := map[string]models.StageStatus{
		"a": models.StageMerged,
		"b": models.StagePending,
		"c": models.StagePending,
		"d": models.StagePending,
	}
	statusOf := func(id string) models.StageStatus { return statuses[id] }

	ready := g.ReadyStages(statusOf, DefaultAcceptedTerminalSet())
	assert.Equal(t, []string{"b", "c"}, ready)
}
