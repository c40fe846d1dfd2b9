// -----------------------------------------------------------------------
// Evaluator - the subprocess package-expression evaluator collaborator
// (§6 "Evaluator operations invoked"). Internals are out of scope (§1
// Non-goals); only the three operations the core depends on are pinned.
// -----------------------------------------------------------------------

package interfaces

import (
	"context"

	"github.com/ternarybob/evalbot/internal/models"
)

// EvalResult is the outcome of one evaluator invocation.
type EvalResult struct {
	Stdout   string
	Stderr   string
	Succeeded bool
}

// EvalParams parameterizes a single evaluator invocation.
type EvalParams struct {
	System                  models.System
	Argv                    []string
	WorkingDirectory         string
	AllowImportFromDerivation bool
}

// Evaluator is the borrowed, stateless-per-invocation collaborator that runs
// package-expression evaluations against a working directory.
type Evaluator interface {
	QueryPackagesJSON(ctx context.Context, params EvalParams) (EvalResult, error)
	QueryPackagesOutputs(ctx context.Context, params EvalParams) (EvalResult, error)
	Instantiate(ctx context.Context, params EvalParams) (EvalResult, error)
}
