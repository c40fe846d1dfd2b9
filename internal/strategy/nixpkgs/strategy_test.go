package nixpkgs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/evalbot/internal/common"
	"github.com/ternarybob/evalbot/internal/interfaces"
	"github.com/ternarybob/evalbot/internal/models"
)

type fakeEvaluator struct {
	outputsBySystem map[models.System]string
	succeed         bool
}

func (f *fakeEvaluator) QueryPackagesJSON(context.Context, interfaces.EvalParams) (interfaces.EvalResult, error) {
	return interfaces.EvalResult{Succeeded: true}, nil
}

func (f *fakeEvaluator) QueryPackagesOutputs(_ context.Context, p interfaces.EvalParams) (interfaces.EvalResult, error) {
	if !f.succeed {
		return interfaces.EvalResult{Succeeded: false, Stderr: "evaluation error"}, nil
	}
	return interfaces.EvalResult{Succeeded: true, Stdout: f.outputsBySystem[p.System]}, nil
}

func (f *fakeEvaluator) Instantiate(context.Context, interfaces.EvalParams) (interfaces.EvalResult, error) {
	return interfaces.EvalResult{Succeeded: true}, nil
}

type fakeTree struct {
	path     string
	messages []string
	files    []string
}

func (t *fakeTree) Path() string                                               { return t.path }
func (t *fakeTree) CheckoutOriginRef(context.Context, string) (string, error)  { return t.path, nil }
func (t *fakeTree) FetchPR(context.Context, int) error                         { return nil }
func (t *fakeTree) CommitExists(context.Context, string) (bool, error)         { return true, nil }
func (t *fakeTree) MergeCommit(context.Context, string) error                  { return nil }
func (t *fakeTree) CommitMessagesFromHead(context.Context, string) ([]string, error) {
	return t.messages, nil
}
func (t *fakeTree) FilesChangedFromHead(context.Context, string) ([]string, error) {
	return t.files, nil
}

type fakeHosting struct {
	labelsByIssue map[int][]string
	requested     []string
}

func (f *fakeHosting) FetchIssue(context.Context, models.RepoDescriptor, int) (models.IssueSnapshot, error) {
	return models.IssueSnapshot{}, nil
}
func (f *fakeHosting) SetStatus(context.Context, models.CommitStatus) error { return nil }
func (f *fakeHosting) ReconcileLabels(_ context.Context, _ models.RepoDescriptor, issue int, add, remove []string) error {
	current := f.labelsByIssue[issue]
	current = append(current, add...)
	filtered := current[:0]
	for _, l := range current {
		skip := false
		for _, r := range remove {
			if l == r {
				skip = true
			}
		}
		if !skip {
			filtered = append(filtered, l)
		}
	}
	f.labelsByIssue[issue] = filtered
	return nil
}
func (f *fakeHosting) CurrentLabels(_ context.Context, _ models.RepoDescriptor, issue int) ([]string, error) {
	return f.labelsByIssue[issue], nil
}
func (f *fakeHosting) CreateGist(context.Context, string, bool, map[string]string) (string, error) {
	return "https://gist.example/1", nil
}
func (f *fakeHosting) RequestReviewers(_ context.Context, _ models.RepoDescriptor, _ int, logins []string) error {
	f.requested = append(f.requested, logins...)
	return nil
}

func newStrategyContext(eval interfaces.Evaluator, tree interfaces.WorkTree, hosting interfaces.HostingAPI) interfaces.StrategyContext {
	return interfaces.StrategyContext{
		Job: models.EvaluationJob{
			Repo: models.RepoDescriptor{Owner: "NixOS", Name: "nixpkgs", FullName: "NixOS/nixpkgs"},
			PR:   models.PRDescriptor{Number: 42, HeadSHA: "cafe"},
		},
		Issue:                models.IssueSnapshot{Title: "firefox: bump", AuthorLogin: "someone"},
		Tree:                 tree,
		Eval:                 eval,
		Hosting:              hosting,
		OverallStatusContext: "grahamcofborg-eval",
		TargetBranch:         "master",
	}
}

func TestOnTargetBranch_FailsWhenTargetBranchDoesNotEvaluate(t *testing.T) {
	s := New(common.NixpkgsConfig{})
	eval := &fakeEvaluator{succeed: false}
	hosting := &fakeHosting{labelsByIssue: map[int][]string{}}
	sc := newStrategyContext(eval, &fakeTree{path: "/tmp/work"}, hosting)

	err := s.OnTargetBranch(context.Background(), sc)
	require.Error(t, err)
	var fail *models.Fail
	require.ErrorAs(t, err, &fail)
	assert.Contains(t, fail.Message, "doesn't evaluate")
}

func TestAllEvaluationsPassed_SmallTouchedSet(t *testing.T) {
	// S5: 3 possibly-touched packages, all present in emitted outputs.
	s := New(common.NixpkgsConfig{MaxMaintainerRequests: 10, MaxBuildJobAttributes: 10})
	s.possiblyTouched = []string{"firefox", "python.pkgs.ptyprocess", "android-studio-preview"}

	emitted := `{"firefox":{"name":"firefox","system":"x86_64-linux","outputs":{"out":"/nix/store/a"}},
	"python.pkgs.ptyprocess":{"name":"p","system":"x86_64-linux","outputs":{"out":"/nix/store/b"}},
	"android-studio-preview":{"name":"a","system":"x86_64-linux","outputs":{"out":"/nix/store/c"}}}`

	eval := &fakeEvaluator{succeed: true, outputsBySystem: map[models.System]string{
		models.SystemLinux:  emitted,
		models.SystemDarwin: emitted,
	}}
	hosting := &fakeHosting{labelsByIssue: map[int][]string{}}
	sc := newStrategyContext(eval, &fakeTree{path: "/tmp/work"}, hosting)

	jobs, err := s.AllEvaluationsPassed(context.Background(), sc)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, []string{"android-studio-preview", "firefox", "python.pkgs.ptyprocess"}, jobs[0].Attributes)
	assert.NotEmpty(t, jobs[0].CorrelationID)
}

func TestAllEvaluationsPassed_TooLargeTouchedSetYieldsNoBuildJob(t *testing.T) {
	// S6: 25 matching packages -> no BuildJob, no error.
	s := New(common.NixpkgsConfig{MaxMaintainerRequests: 10, MaxBuildJobAttributes: 10})

	emittedAttrs := map[string]struct{}{}
	outputJSON := "{"
	for i := 0; i < 25; i++ {
		name := "pkg" + string(rune('a'+i))
		s.possiblyTouched = append(s.possiblyTouched, name)
		emittedAttrs[name] = struct{}{}
		if i > 0 {
			outputJSON += ","
		}
		outputJSON += `"` + name + `":{"name":"` + name + `","system":"x86_64-linux","outputs":{"out":"/nix/store/` + name + `"}}`
	}
	outputJSON += "}"

	eval := &fakeEvaluator{succeed: true, outputsBySystem: map[models.System]string{
		models.SystemLinux:  outputJSON,
		models.SystemDarwin: outputJSON,
	}}
	hosting := &fakeHosting{labelsByIssue: map[int][]string{}}
	sc := newStrategyContext(eval, &fakeTree{path: "/tmp/work"}, hosting)

	jobs, err := s.AllEvaluationsPassed(context.Background(), sc)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestMergeConflict_AddsLabel(t *testing.T) {
	s := New(common.NixpkgsConfig{})
	hosting := &fakeHosting{labelsByIssue: map[int][]string{}}
	sc := newStrategyContext(&fakeEvaluator{}, &fakeTree{}, hosting)

	require.NoError(t, s.MergeConflict(context.Background(), sc))
	assert.Contains(t, hosting.labelsByIssue[42], labelMergeConflict)
}
