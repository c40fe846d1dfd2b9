// -----------------------------------------------------------------------
// Strategy - the pluggable per-repository evaluation policy (§4.2). A
// tagged variant with a fixed hook surface, not open-ended dynamic
// dispatch: every repository resolves to exactly one of a small, known
// set of strategies (today: generic, nixpkgs).
// -----------------------------------------------------------------------

package interfaces

import (
	"context"

	"github.com/ternarybob/evalbot/internal/models"
)

// StrategyContext bundles the collaborators and job facts every hook may
// need, so adding a hook never changes every implementation's signature.
type StrategyContext struct {
	Job                   models.EvaluationJob
	Issue                 models.IssueSnapshot
	Tree                  WorkTree
	Eval                  Evaluator
	Hosting               HostingAPI
	OverallStatusContext  string
	TargetBranch          string
}

// Strategy implements the repository-specific portions of the pipeline.
// Every hook may fail with *models.Fail or *models.FailWithGist; the
// driver aborts the remaining phases of the job on either.
type Strategy interface {
	// Name identifies the strategy for logging and metrics.
	Name() string

	// PreClone runs before the work tree is touched. Nixpkgs uses this to
	// tag the issue from its title (§4.2 "Title tagging", §12).
	PreClone(ctx context.Context, sc StrategyContext) error

	// OnTargetBranch runs once the target branch is checked out, before
	// the PR is fetched.
	OnTargetBranch(ctx context.Context, sc StrategyContext) error

	// AfterFetch runs once the PR's head ref has been fetched into the
	// work tree, before the merge is attempted.
	AfterFetch(ctx context.Context, sc StrategyContext) error

	// MergeConflict runs in place of AfterMerge when the merge step
	// failed. The driver has already published the failed-merge status
	// and stops the job after this hook either way; an error returned
	// here is only logged.
	MergeConflict(ctx context.Context, sc StrategyContext) error

	// AfterMerge runs once the PR has been merged cleanly into the
	// target branch.
	AfterMerge(ctx context.Context, sc StrategyContext) error

	// EvaluationChecks returns the ordered list of checks to run for this
	// job (§4.2 "Standard evaluation-check list"). May depend on sc, e.g.
	// to vary checks by changed paths.
	EvaluationChecks(ctx context.Context, sc StrategyContext) ([]models.EvalChecker, error)

	// AllEvaluationsPassed runs once every check above has succeeded. It
	// returns the BuildJobs to schedule, if any (§4.2 "Meta check").
	AllEvaluationsPassed(ctx context.Context, sc StrategyContext) ([]models.BuildJob, error)
}

// StrategySelector resolves a repository to the Strategy that should run
// its jobs (§4.2 "Strategy selection").
type StrategySelector interface {
	Select(repo models.RepoDescriptor) Strategy
}
