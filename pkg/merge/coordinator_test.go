package merge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdr-labs/cadence/pkg/models"
	"github.com/cdr-labs/cadence/pkg/worktree"
)

func TestEffectiveAutoMerge_PriorityOrder(t *testing.T) {
	trueVal, falseVal := true, false

	on := &models.Stage{AutoMerge: models.AutoMergeOn}
	assert.True(t, EffectiveAutoMerge(on, &falseVal, false), "per-stage on overrides everything")

	off := &models.Stage{AutoMerge: models.AutoMergeOff}
	assert.False(t, EffectiveAutoMerge(off, &trueVal, true), "per-stage off overrides everything")

	unset := &models.Stage{AutoMerge: models.AutoMergeUnset}
	assert.True(t, EffectiveAutoMerge(unset, &trueVal, false), "plan default used when stage unset")
	assert.True(t, EffectiveAutoMerge(unset, nil, true), "orchestrator flag used when plan and stage unset")
	assert.False(t, EffectiveAutoMerge(unset, nil, false), "default is off")
}

func TestMerge_SuccessReturnsNil(t *testing.T) {
	git := worktree.NewFakeGit()
	c := New(git, t.TempDir(), "main")

	report, err := c.Merge(context.Background(), &models.Stage{ID: "a"}, "cadence/a")
	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestMerge_ConflictReturnsReportAndAborts(t *testing.T) {
	git := worktree.NewFakeGit()
	git.ConflictOnMerge["cadence/a"] = true
	c := New(git, t.TempDir(), "main")

	report, err := c.Merge(context.Background(), &models.Stage{ID: "a"}, "cadence/a")
	require.ErrorIs(t, err, ErrConflict)
	require.NotNil(t, report)
	assert.Equal(t, "main", report.OurBranch)
	assert.Equal(t, "cadence/a", report.TheirBranch)
	assert.NotEmpty(t, report.ConflictedPaths)
}
