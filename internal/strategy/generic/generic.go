// -----------------------------------------------------------------------
// Generic strategy (§4.2). The default for every repository that isn't
// the package collection the Nixpkgs strategy specializes for: every
// hook succeeds trivially, the check list is empty, and no build jobs
// are ever scheduled.
// -----------------------------------------------------------------------

package generic

import (
	"context"

	"github.com/ternarybob/evalbot/internal/interfaces"
	"github.com/ternarybob/evalbot/internal/models"
)

// Strategy is the no-op Strategy implementation.
type Strategy struct{}

var _ interfaces.Strategy = (*Strategy)(nil)

// New returns the Generic strategy.
func New() *Strategy { return &Strategy{} }

func (s *Strategy) Name() string { return "generic" }

func (s *Strategy) PreClone(ctx context.Context, sc interfaces.StrategyContext) error { return nil }

func (s *Strategy) OnTargetBranch(ctx context.Context, sc interfaces.StrategyContext) error { return nil }

func (s *Strategy) AfterFetch(ctx context.Context, sc interfaces.StrategyContext) error { return nil }

func (s *Strategy) MergeConflict(ctx context.Context, sc interfaces.StrategyContext) error { return nil }

func (s *Strategy) AfterMerge(ctx context.Context, sc interfaces.StrategyContext) error { return nil }

func (s *Strategy) EvaluationChecks(ctx context.Context, sc interfaces.StrategyContext) ([]models.EvalChecker, error) {
	return nil, nil
}

func (s *Strategy) AllEvaluationsPassed(ctx context.Context, sc interfaces.StrategyContext) ([]models.BuildJob, error) {
	return nil, nil
}
