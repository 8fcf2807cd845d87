package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdr-labs/cadence/pkg/models"
)

func stage(id string, deps ...string) *models.Stage {
	return &models.Stage{ID: id, Name: id, Dependencies: deps, Status: models.StagePending}
}

func TestBuild_Linear(t *testing.T) {
	g, err := Build([]*models.Stage{stage("a"), stage("b", "a"), stage("c", "b")})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, g.TopologicalOrder())
}

func TestBuild_DanglingDependency(t *testing.T) {
	_, err := Build([]*models.Stage{stage("a", "ghost")})
	assert.ErrorIs(t, err, ErrDanglingDependency)
}

func TestBuild_SelfLoop(t *testing.T) {
	_, err := Build([]*models.Stage{stage("a", "a")})
	var cErr *CyclicDependencyError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, []string{"a"}, cErr.StageIDs)
}

func TestBuild_CycleRejection(t *testing.T) {
	_, err := Build([]*models.Stage{stage("a", "c"), stage("b", "a"), stage("c", "b")})
	var cErr *CyclicDependencyError
	require.ErrorAs(t, err, &cErr)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, cErr.StageIDs)
}

func TestBuild_Diamond(t *testing.T) {
	g, err := Build([]*models.Stage{
		stage("a"),
		stage("b", "a"),
		stage("c", "a"),
		stage("d", "b", "c"),
	})
	require.NoError(t, err)
	order := g.TopologicalOrder()
	assert.Equal(t, "a", order[0])
	assert.Equal(t, "d", order[3])
}
