// -----------------------------------------------------------------------
// Nixpkgs strategy (§4.2). Accumulates stdenv/out-path/changed-path state
// across hook calls, monotonically filled in as the driver advances
// through the pipeline phases.
// -----------------------------------------------------------------------

package nixpkgs

import (
	"context"
	"fmt"

	"github.com/ternarybob/evalbot/internal/common"
	"github.com/ternarybob/evalbot/internal/interfaces"
	"github.com/ternarybob/evalbot/internal/labels"
	"github.com/ternarybob/evalbot/internal/models"
)

// Strategy implements interfaces.Strategy for the nixpkgs repository.
type Strategy struct {
	cfg common.NixpkgsConfig

	stdenv          *models.StdenvSnapshot
	outpath         *models.OutPathDiff
	changedPaths    []string
	possiblyTouched []string
}

var _ interfaces.Strategy = (*Strategy)(nil)

// New returns a fresh Nixpkgs strategy instance for one job. A new
// instance must be constructed per job: the accumulated snapshot/diff
// state is not safe to reuse across jobs.
func New(cfg common.NixpkgsConfig) *Strategy {
	return &Strategy{cfg: cfg}
}

func (s *Strategy) Name() string { return "nixpkgs" }

func (s *Strategy) PreClone(ctx context.Context, sc interfaces.StrategyContext) error {
	add, remove := TagFromTitle(sc.Issue.Title)
	return s.reconcileLabels(ctx, sc, add, remove)
}

func (s *Strategy) OnTargetBranch(ctx context.Context, sc interfaces.StrategyContext) error {
	s.stdenv = models.NewStdenvSnapshot()
	s.outpath = models.NewOutPathDiff()

	for _, sys := range models.AllSystems {
		result, err := sc.Eval.QueryPackagesOutputs(ctx, interfaces.EvalParams{
			System:           sys,
			WorkingDirectory: sc.Tree.Path(),
		})
		if err != nil {
			return &models.Fail{Message: fmt.Sprintf("failed to run evaluator against target branch %s: %v", sc.TargetBranch, err)}
		}
		if !result.Succeeded {
			return s.failTargetBranchDoesNotEvaluate(ctx, sc, result.Stderr)
		}

		outputs, err := parseAttributeOutputs(result.Stdout)
		if err != nil {
			return &models.Fail{Message: err.Error()}
		}
		for attr, path := range outputs {
			path := path
			s.outpath.Before[models.OutPathKey{System: sys, Attribute: attr}] = path
			if attr == "stdenv" {
				s.stdenv.Before[sys] = &path
			}
		}
	}
	return nil
}

func (s *Strategy) failTargetBranchDoesNotEvaluate(ctx context.Context, sc interfaces.StrategyContext, stderr string) error {
	description := fmt.Sprintf("Target branch %s doesn't evaluate!", sc.TargetBranch)

	gistURL, gistErr := sc.Hosting.CreateGist(ctx, description, false, map[string]string{
		"stderr.log": stderr,
	})
	if gistErr != nil {
		return &models.Fail{Message: fmt.Sprintf("%s (and failed to create gist: %v)", description, gistErr)}
	}

	if err := sc.Hosting.SetStatus(ctx, models.CommitStatus{
		Repo:        sc.Job.Repo,
		CommitSHA:   sc.Job.PR.HeadSHA,
		Context:     sc.OverallStatusContext,
		Description: description,
		URL:         gistURL,
		State:       models.StatusFailure,
	}); err != nil {
		return err
	}

	return &models.Fail{Message: description}
}

func (s *Strategy) AfterFetch(ctx context.Context, sc interfaces.StrategyContext) error {
	messages, err := sc.Tree.CommitMessagesFromHead(ctx, sc.Job.PR.HeadSHA)
	if err != nil {
		return &models.Fail{Message: fmt.Sprintf("failed to enumerate commit messages: %v", err)}
	}
	s.possiblyTouched = ParsePossiblyTouchedPackages(messages)

	paths, err := sc.Tree.FilesChangedFromHead(ctx, sc.Job.PR.HeadSHA)
	if err != nil {
		return &models.Fail{Message: fmt.Sprintf("failed to enumerate changed files: %v", err)}
	}
	s.changedPaths = paths

	add, remove := TagFromPaths(PathTagConfig(s.cfg.PathTags), paths)
	return s.reconcileLabels(ctx, sc, add, remove)
}

func (s *Strategy) MergeConflict(ctx context.Context, sc interfaces.StrategyContext) error {
	add, remove := TagMergeConflict()
	return s.reconcileLabels(ctx, sc, add, remove)
}

func (s *Strategy) AfterMerge(ctx context.Context, sc interfaces.StrategyContext) error {
	resolvedAdd, resolvedRemove := TagMergeResolved()
	if err := s.reconcileLabels(ctx, sc, resolvedAdd, resolvedRemove); err != nil {
		return err
	}

	var packageListStdout string
	for _, sys := range models.AllSystems {
		result, err := sc.Eval.QueryPackagesOutputs(ctx, interfaces.EvalParams{
			System:           sys,
			WorkingDirectory: sc.Tree.Path(),
		})
		if err != nil || !result.Succeeded {
			return s.failEnumerateAfterMerge(ctx, sc, result.Stderr)
		}

		if sys == models.SystemLinux {
			packageListStdout = result.Stdout
		}

		outputs, err := parseAttributeOutputs(result.Stdout)
		if err != nil {
			return &models.Fail{Message: err.Error()}
		}
		for attr, path := range outputs {
			path := path
			s.outpath.After[models.OutPathKey{System: sys, Attribute: attr}] = path
			if attr == "stdenv" {
				s.stdenv.After[sys] = &path
			}
		}
	}

	stdenvAdd, stdenvRemove := TagFromStdenvChange(s.stdenv.Changed())
	if err := s.reconcileLabels(ctx, sc, stdenvAdd, stdenvRemove); err != nil {
		return err
	}

	removed, added := s.outpath.PackageDiff()
	diffAdd, diffRemove := TagFromPackageDiff(removed, added)
	if err := s.reconcileLabels(ctx, sc, diffAdd, diffRemove); err != nil {
		return err
	}

	return s.reportImpactedMaintainers(ctx, sc, packageListStdout)
}

func (s *Strategy) failEnumerateAfterMerge(ctx context.Context, sc interfaces.StrategyContext, stderr string) error {
	message := fmt.Sprintf("Failed to enumerate outputs after merging to %s", sc.TargetBranch)
	return &models.FailWithGist{
		Message:     message,
		GistTitle:   message,
		GistContent: stderr,
	}
}

func (s *Strategy) reportImpactedMaintainers(ctx context.Context, sc interfaces.StrategyContext, packageListStdout string) error {
	rebuild := s.outpath.CalculateRebuild()

	byAttribute, parseErr := ParseMaintainersByAttribute(packageListStdout)
	if parseErr != nil {
		_, _ = sc.Hosting.CreateGist(ctx, "Impacted maintainers (error)", false, map[string]string{
			"error.log": parseErr.Error(),
		})
		return nil
	}

	impacted := ComputeImpactedMaintainers(byAttribute, rebuild, s.changedPaths)

	gistContent := fmt.Sprintf("%d package(s), %d maintainer(s) impacted", len(impacted.ByAttribute), impacted.Count())
	gistURL, gistErr := sc.Hosting.CreateGist(ctx, "Impacted maintainers", false, map[string]string{
		"maintainers.log": gistContent,
	})
	if gistErr != nil {
		return &models.Fail{Message: fmt.Sprintf("failed to create impacted-maintainers gist: %v", gistErr)}
	}
	_ = gistURL

	if impacted.Count() > 0 && impacted.Count() < s.cfg.MaxMaintainerRequests {
		logins := make([]string, 0, impacted.Count())
		for login := range impacted.ByLogin {
			logins = append(logins, login)
		}
		// Review-request failures are soft: the error is discarded here
		// without being logged and is never propagated as a pipeline
		// failure (§7).
		_ = sc.Hosting.RequestReviewers(ctx, sc.Job.Repo, sc.Job.PR.Number, logins)
	}

	authorAdd, authorRemove := TagAuthorIsMaintainer(impacted.AuthorIsMaintainer(sc.Issue.AuthorLogin))
	return s.reconcileLabels(ctx, sc, authorAdd, authorRemove)
}

func (s *Strategy) EvaluationChecks(ctx context.Context, sc interfaces.StrategyContext) ([]models.EvalChecker, error) {
	return StandardChecks(), nil
}

func (s *Strategy) AllEvaluationsPassed(ctx context.Context, sc interfaces.StrategyContext) ([]models.BuildJob, error) {
	emitted := make(map[string]struct{})

	for _, sys := range models.AllSystems {
		check := MetaCheck()
		result, err := sc.Eval.QueryPackagesOutputs(ctx, interfaces.EvalParams{
			System:           sys,
			WorkingDirectory: sc.Tree.Path(),
			Argv:             check.Argv,
		})
		if err != nil || !result.Succeeded {
			return nil, &models.Fail{Message: "meta check failed"}
		}
		outputs, err := parseAttributeOutputs(result.Stdout)
		if err != nil {
			return nil, &models.Fail{Message: err.Error()}
		}
		for attr := range outputs {
			emitted[attr] = struct{}{}
		}
	}

	if len(s.possiblyTouched) == 0 {
		return nil, nil
	}

	var intersection []string
	for _, attr := range s.possiblyTouched {
		if _, ok := emitted[attr]; ok {
			intersection = append(intersection, attr)
		}
	}

	buildJob, ok := models.NewBuildJob(sc.Job.Repo, sc.Job.PR, "", intersection, common.NewCorrelationID())
	if !ok {
		// Empty after sort/dedup, or larger than the bound (§4.2 "avoid
		// accidental mass-builds when merging into an older branch").
		return nil, nil
	}
	return []models.BuildJob{buildJob}, nil
}

func (s *Strategy) reconcileLabels(ctx context.Context, sc interfaces.StrategyContext, add, remove []string) error {
	if len(add) == 0 && len(remove) == 0 {
		return nil
	}
	current, err := sc.Hosting.CurrentLabels(ctx, sc.Job.Repo, sc.Job.PR.Number)
	if err != nil {
		return fmt.Errorf("fetch current labels: %w", err)
	}
	plan := labels.Reconcile(current, add, remove)
	if plan.IsNoop() {
		return nil
	}
	if err := sc.Hosting.ReconcileLabels(ctx, sc.Job.Repo, sc.Job.PR.Number, plan.Add, plan.Remove); err != nil {
		return fmt.Errorf("reconcile labels: %w", err)
	}
	return nil
}
