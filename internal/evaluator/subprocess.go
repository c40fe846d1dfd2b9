// -----------------------------------------------------------------------
// Subprocess evaluator - the interfaces.Evaluator implementation that
// shells out to the package-expression toolchain. Subprocess plumbing
// (CommandContext, working directory, captured stdout/stderr) follows the
// teacher's worker exec patterns this module was adapted from.
// -----------------------------------------------------------------------

package evaluator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/ternarybob/evalbot/internal/interfaces"
)

// Subprocess runs evaluator operations by invoking external nix binaries
// against a working directory. Internals of how expressions are evaluated
// are out of scope; this type only pins the three invocation shapes the
// pipeline depends on.
type Subprocess struct {
	NixInstantiatePath string
	NixEnvPath         string
}

var _ interfaces.Evaluator = (*Subprocess)(nil)

// New builds a Subprocess evaluator using the given tool paths.
func New(nixInstantiatePath, nixEnvPath string) *Subprocess {
	return &Subprocess{NixInstantiatePath: nixInstantiatePath, NixEnvPath: nixEnvPath}
}

// QueryPackagesJSON runs `nix-env -qa --json` scoped by params.Argv.
func (s *Subprocess) QueryPackagesJSON(ctx context.Context, params interfaces.EvalParams) (interfaces.EvalResult, error) {
	argv := append([]string{"-qa", "--json"}, params.Argv...)
	return s.run(ctx, s.NixEnvPath, argv, params)
}

// QueryPackagesOutputs runs `nix-env -qa --json --out-path` scoped by
// params.Argv, used for the out-path diff and the meta check.
func (s *Subprocess) QueryPackagesOutputs(ctx context.Context, params interfaces.EvalParams) (interfaces.EvalResult, error) {
	argv := append([]string{"-qa", "--json", "--out-path"}, params.Argv...)
	return s.run(ctx, s.NixEnvPath, argv, params)
}

// Instantiate runs `nix-instantiate` against the given entry point/argv.
func (s *Subprocess) Instantiate(ctx context.Context, params interfaces.EvalParams) (interfaces.EvalResult, error) {
	return s.run(ctx, s.NixInstantiatePath, params.Argv, params)
}

func (s *Subprocess) run(ctx context.Context, bin string, argv []string, params interfaces.EvalParams) (interfaces.EvalResult, error) {
	if params.AllowImportFromDerivation {
		argv = append([]string{"--option", "allow-import-from-derivation", "true"}, argv...)
	}

	cmd := exec.CommandContext(ctx, bin, argv...)
	cmd.Dir = params.WorkingDirectory

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := interfaces.EvalResult{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Succeeded: err == nil,
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		// The tool never ran (missing binary, bad working directory) -
		// this is an infrastructure fault, not an evaluation failure.
		return result, fmt.Errorf("evaluator %s %v: %w", bin, argv, err)
	}
	return result, nil
}
