// -----------------------------------------------------------------------
// Pipeline Driver (§4.1). The outer state machine: decode -> gate on
// issue state -> checkout target branch -> fetch PR head -> merge -> run
// evaluation checks -> aggregate -> emit build jobs. Owns the overall
// status, the work tree handle, and the strategy for one job.
// -----------------------------------------------------------------------

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/evalbot/internal/codec"
	"github.com/ternarybob/evalbot/internal/common"
	"github.com/ternarybob/evalbot/internal/interfaces"
	"github.com/ternarybob/evalbot/internal/metrics"
	"github.com/ternarybob/evalbot/internal/models"
	"github.com/ternarybob/evalbot/internal/status"
)

const (
	statusStarting         = "Starting"
	statusCloning          = "Cloning project"
	statusFetchingPR       = "Fetching PR"
	descCommitNotFound     = "Commit not found"
	descFailedToMerge      = "Failed to merge"
	descSuccess            = "^.^!"
	descCompleteWithErrors = "Complete, with errors"
)

// Driver runs one EvaluationJob to completion.
type Driver struct {
	cfg      *common.Config
	hosting  interfaces.HostingAPI
	worktree interfaces.WorkTreeCache
	publish  interfaces.Publisher
	selector interfaces.StrategySelector
	eval     interfaces.Evaluator
	acl      interfaces.ArchitectureACL
	metrics  *metrics.Metrics
	logger   arbor.ILogger
}

// New builds a Driver from its collaborators. metrics may be nil, in
// which case instrumentation is skipped entirely.
func New(cfg *common.Config, hosting interfaces.HostingAPI, worktree interfaces.WorkTreeCache, publish interfaces.Publisher, selector interfaces.StrategySelector, eval interfaces.Evaluator, acl interfaces.ArchitectureACL, m *metrics.Metrics, logger arbor.ILogger) *Driver {
	return &Driver{cfg: cfg, hosting: hosting, worktree: worktree, publish: publish, selector: selector, eval: eval, acl: acl, metrics: m, logger: logger}
}

// HandleMessage decodes and runs one bus message body, returning the ack
// decision the caller should act on (§6 "Exit/ack model").
func (d *Driver) HandleMessage(ctx context.Context, body []byte) bool {
	job, err := codec.Decode(body)
	if err != nil {
		d.logger.Warn().Err(err).Msg("discarding undecodable job payload")
		return true
	}
	return d.run(ctx, job)
}

func (d *Driver) run(ctx context.Context, job models.EvaluationJob) (ack bool) {
	log := d.logger.WithCorrelationId(fmt.Sprintf("%s#%d", job.Repo.FullName, job.PR.Number))

	// Phase 2: fetch issue.
	issue, err := d.hosting.FetchIssue(ctx, job.Repo, job.PR.Number)
	if err != nil {
		log.Warn().Err(err).Msg("failed to fetch issue, skipping job")
		return true
	}
	if issue.IsClosed() {
		log.Debug().Msg("issue closed, skipping job")
		return true
	}

	// Phase 3: WIP gate.
	architectures := d.eligibleArchitectures(issue, job.Repo)

	// Phase 4: select strategy.
	strategy := d.selector.Select(job.Repo)

	// Phase 5: open overall status.
	reporter := status.New(d.hosting, job.Repo, job.PR.HeadSHA)
	overallContext := d.cfg.Hosting.StatusContext
	if err := reporter.Pending(ctx, overallContext, statusStarting); err != nil {
		log.Error().Err(err).Msg("failed to open overall status")
		return true
	}

	targetBranch := job.PR.TargetBranchOrDefault(d.cfg.Worktree.DefaultBranch)
	sc := interfaces.StrategyContext{
		Job:                  job,
		Issue:                issue,
		Eval:                 d.eval,
		Hosting:              d.hosting,
		OverallStatusContext: overallContext,
		TargetBranch:         targetBranch,
	}

	// Phase 6: pre_clone hook.
	if err := strategy.PreClone(ctx, sc); err != nil {
		return d.finishWithError(ctx, log, reporter, overallContext, err)
	}

	// Phase 7: clone + target-branch checkout.
	if err := reporter.Pending(ctx, overallContext, statusCloning); err != nil {
		log.Warn().Err(err).Msg("failed to publish cloning status")
	}
	tree, err := d.worktree.Project(ctx, job.Repo.FullName, job.Repo.CloneURL)
	if err != nil {
		_ = reporter.Error(ctx, overallContext, statusCloning, "")
		log.Error().Err(err).Msg("failed to acquire work tree")
		return true
	}
	defer d.worktree.Release(job.Repo.FullName)
	sc.Tree = tree

	checkingOutDesc := "Checking out " + targetBranch
	if err := reporter.Pending(ctx, overallContext, checkingOutDesc); err != nil {
		log.Warn().Err(err).Msg("failed to publish checkout status")
	}
	if _, err := tree.CheckoutOriginRef(ctx, targetBranch); err != nil {
		_ = reporter.Error(ctx, overallContext, checkingOutDesc, "")
		log.Error().Err(err).Msg("failed to check out target branch")
		return true
	}

	// Phase 8: on_target_branch hook.
	if err := strategy.OnTargetBranch(ctx, sc); err != nil {
		if d.metrics != nil {
			d.metrics.TargetBranchFailsEvaluation.WithLabelValues(job.Repo.FullName).Inc()
		}
		return d.finishWithError(ctx, log, reporter, overallContext, err)
	}

	// Phase 9: fetch PR head.
	if err := reporter.Pending(ctx, overallContext, statusFetchingPR); err != nil {
		log.Warn().Err(err).Msg("failed to publish fetching-PR status")
	}
	if err := tree.FetchPR(ctx, job.PR.Number); err != nil {
		_ = reporter.Error(ctx, overallContext, statusFetchingPR, "")
		log.Error().Err(err).Msg("failed to fetch PR head")
		return true
	}
	exists, err := tree.CommitExists(ctx, job.PR.HeadSHA)
	if err != nil || !exists {
		_ = reporter.Error(ctx, overallContext, descCommitNotFound, "")
		return true
	}

	// Phase 10: after_fetch hook.
	if err := strategy.AfterFetch(ctx, sc); err != nil {
		return d.finishWithError(ctx, log, reporter, overallContext, err)
	}

	// Phase 11: merge.
	if err := tree.MergeCommit(ctx, job.PR.HeadSHA); err != nil {
		_ = reporter.Failure(ctx, overallContext, descFailedToMerge, "")
		if mcErr := strategy.MergeConflict(ctx, sc); mcErr != nil {
			log.Warn().Err(mcErr).Msg("merge_conflict hook failed")
		}
		return true
	}

	// Phase 12: after_merge hook.
	if err := strategy.AfterMerge(ctx, sc); err != nil {
		return d.finishWithError(ctx, log, reporter, overallContext, err)
	}

	// Phase 13: evaluation checks.
	checks, err := strategy.EvaluationChecks(ctx, sc)
	if err != nil {
		return d.finishWithError(ctx, log, reporter, overallContext, err)
	}
	allPassed := d.runChecks(ctx, job, checks, sc)

	if !allPassed {
		_ = reporter.Failure(ctx, overallContext, descCompleteWithErrors, "")
		return true
	}

	// Phase 14: finalization.
	buildJobs, err := strategy.AllEvaluationsPassed(ctx, sc)
	if err != nil {
		return d.finishWithError(ctx, log, reporter, overallContext, err)
	}
	d.emitBuildJobs(ctx, log, buildJobs, architectures)

	if err := reporter.Success(ctx, overallContext, descSuccess, ""); err != nil {
		log.Error().Err(err).Msg("failed to publish final success status")
	}

	// Phase 15: acknowledge.
	return true
}

// finishWithError terminates the job on a strategy hook error: publishes
// the overall failure status (with a gist of the error's content attached
// for FailWithGist) and positively acknowledges (§4.1 "Skip contract"
// applies equally to hook failures — no retry).
func (d *Driver) finishWithError(ctx context.Context, log arbor.ILogger, reporter *status.Reporter, overallContext string, err error) bool {
	var failWithGist *models.FailWithGist
	var fail *models.Fail

	switch {
	case errors.As(err, &failWithGist):
		gistURL, gistErr := d.hosting.CreateGist(ctx, failWithGist.GistTitle, false, map[string]string{
			"stderr.log": failWithGist.GistContent,
		})
		if gistErr != nil {
			log.Warn().Err(gistErr).Msg("failed to create failure gist")
		}
		_ = reporter.Failure(ctx, overallContext, descCompleteWithErrors, gistURL)
		log.Warn().Err(err).Str("gist_title", failWithGist.GistTitle).Msg("strategy hook failed with gist")
	case errors.As(err, &fail):
		_ = reporter.Failure(ctx, overallContext, descCompleteWithErrors, "")
		log.Warn().Err(err).Msg("strategy hook failed")
	default:
		_ = reporter.Error(ctx, overallContext, descCompleteWithErrors, "")
		log.Error().Err(err).Msg("strategy hook returned an unexpected error")
	}
	return true
}

// runChecks executes the ordered evaluation checks, publishing a
// pending/terminal status per context, and returns whether every check
// passed.
func (d *Driver) runChecks(ctx context.Context, job models.EvaluationJob, checks []models.EvalChecker, sc interfaces.StrategyContext) bool {
	allPassed := true
	for _, check := range checks {
		reporter := status.New(d.hosting, job.Repo, job.PR.HeadSHA)
		if err := reporter.Pending(ctx, check.Name, check.CommandLine()); err != nil {
			d.logger.Error().Err(err).Str("check", check.Name).Msg("failed to publish pending check status")
		}

		started := d.now()
		result, evalErr := d.dispatchCheck(ctx, sc, check)
		d.observeCheckDuration(sc, check, started)

		if evalErr != nil || !result.Succeeded {
			allPassed = false
			d.countCheck(sc, check, "failure")
			gistURL, gistErr := d.hosting.CreateGist(ctx, check.Name+" failure", false, map[string]string{
				"stderr.log": result.Stderr,
			})
			if gistErr != nil {
				d.logger.Warn().Err(gistErr).Str("check", check.Name).Msg("failed to create failure gist")
			}
			if err := reporter.Failure(ctx, check.Name, check.CommandLine(), gistURL); err != nil {
				d.logger.Error().Err(err).Str("check", check.Name).Msg("failed to publish failing check status")
			}
			continue
		}

		d.countCheck(sc, check, "success")
		if err := reporter.Success(ctx, check.Name, check.CommandLine(), ""); err != nil {
			d.logger.Error().Err(err).Str("check", check.Name).Msg("failed to publish passing check status")
		}
	}
	return allPassed
}

func (d *Driver) now() time.Time { return time.Now() }

func (d *Driver) observeCheckDuration(sc interfaces.StrategyContext, check models.EvalChecker, started time.Time) {
	if d.metrics == nil {
		return
	}
	strategyName := d.selector.Select(sc.Job.Repo).Name()
	d.metrics.EvaluationDuration.WithLabelValues(strategyName, check.Name).Observe(time.Since(started).Seconds())
}

func (d *Driver) countCheck(sc interfaces.StrategyContext, check models.EvalChecker, outcome string) {
	if d.metrics == nil {
		return
	}
	strategyName := d.selector.Select(sc.Job.Repo).Name()
	d.metrics.EvaluationTotal.WithLabelValues(strategyName, check.Name, outcome).Inc()
}

func (d *Driver) dispatchCheck(ctx context.Context, sc interfaces.StrategyContext, check models.EvalChecker) (interfaces.EvalResult, error) {
	params := interfaces.EvalParams{WorkingDirectory: sc.Tree.Path(), Argv: check.Argv}
	switch check.Operation {
	case models.OpQueryPackagesJSON:
		return sc.Eval.QueryPackagesJSON(ctx, params)
	case models.OpQueryPackagesOutputs:
		return sc.Eval.QueryPackagesOutputs(ctx, params)
	default:
		return sc.Eval.Instantiate(ctx, params)
	}
}

func (d *Driver) emitBuildJobs(ctx context.Context, log arbor.ILogger, jobs []models.BuildJob, architectures []string) {
	if len(architectures) == 0 {
		return
	}
	for _, job := range jobs {
		for _, arch := range architectures {
			if err := d.publish.PublishBuildJob(ctx, arch, job); err != nil {
				log.Error().Err(err).Str("architecture", arch).Msg("failed to publish build job")
				continue
			}
			if d.metrics != nil {
				d.metrics.BuildJobsScheduled.WithLabelValues(arch).Inc()
			}
		}
		if err := d.publish.PublishQueuedBuildJobs(ctx, interfaces.QueuedBuildJobs{Job: job, Architectures: architectures}); err != nil {
			log.Error().Err(err).Msg("failed to publish queued build jobs record")
		}
	}
}

// eligibleArchitectures implements the WIP gate (§4.1 phase 3): a
// work-in-progress PR is never eligible for auto-scheduled builds,
// regardless of what the evaluation checks find; otherwise eligibility is
// derived from an access-control lookup over (author, repo).
func (d *Driver) eligibleArchitectures(issue models.IssueSnapshot, repo models.RepoDescriptor) []string {
	if isWorkInProgress(issue) {
		return nil
	}
	return d.acl.ArchitecturesFor(issue.AuthorLogin, repo.FullName)
}

func isWorkInProgress(issue models.IssueSnapshot) bool {
	title := issue.Title
	if strings.Contains(title, "[WIP]") || strings.HasPrefix(title, "WIP:") {
		return true
	}
	return issue.HasLabelContaining("work in progress") || issue.HasLabelContaining("work-in-progress")
}
