package models

// EvalOperation names the evaluator operation an EvalChecker invokes.
type EvalOperation string

const (
	OpQueryPackagesJSON    EvalOperation = "query-packages-json"
	OpQueryPackagesOutputs EvalOperation = "query-packages-outputs"
	OpInstantiate          EvalOperation = "instantiate"
)

// EvalChecker is a single named evaluation check a strategy contributes to
// the ordered check list (§4.2 "Standard evaluation-check list").
type EvalChecker struct {
	Name      string
	Operation EvalOperation
	Argv      []string
}

// CommandLine renders the argv fragment as the description shown on the
// check's commit status (§7 "User-visible failure surface").
func (c EvalChecker) CommandLine() string {
	s := string(c.Operation)
	for _, a := range c.Argv {
		s += " " + a
	}
	return s
}
