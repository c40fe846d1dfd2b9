package generic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/evalbot/internal/interfaces"
)

func TestStrategy_HooksAreNoOps(t *testing.T) {
	s := New()
	ctx := context.Background()
	sc := interfaces.StrategyContext{}

	assert.Equal(t, "generic", s.Name())
	assert.NoError(t, s.PreClone(ctx, sc))
	assert.NoError(t, s.OnTargetBranch(ctx, sc))
	assert.NoError(t, s.AfterFetch(ctx, sc))
	assert.NoError(t, s.MergeConflict(ctx, sc))
	assert.NoError(t, s.AfterMerge(ctx, sc))

	checks, err := s.EvaluationChecks(ctx, sc)
	require.NoError(t, err)
	assert.Empty(t, checks)

	jobs, err := s.AllEvaluationsPassed(ctx, sc)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}
