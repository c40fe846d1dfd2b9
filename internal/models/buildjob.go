package models

import (
	"fmt"
	"sort"
)

// BuildJob is produced by a strategy's all_evaluations_passed step. Its
// attribute list must be sorted, deduplicated, non-empty and of size <= 10
// (invariant (d), §3).
type BuildJob struct {
	Repo          RepoDescriptor
	PR            PRDescriptor
	SubsetTag     string
	Attributes    []string
	CorrelationID string
}

// MaxBuildJobAttributes is the hard cap on a single BuildJob's attribute
// list (§4.2 "Meta check").
const MaxBuildJobAttributes = 10

// NewBuildJob builds a BuildJob from a raw (unsorted, possibly duplicated)
// attribute set, enforcing invariant (d). Returns false if the resulting set
// is empty or exceeds MaxBuildJobAttributes.
func NewBuildJob(repo RepoDescriptor, pr PRDescriptor, subsetTag string, rawAttrs []string, correlationID string) (BuildJob, bool) {
	attrs := sortedUniqueStrings(rawAttrs)
	if len(attrs) == 0 || len(attrs) > MaxBuildJobAttributes {
		return BuildJob{}, false
	}
	return BuildJob{
		Repo:          repo,
		PR:            pr,
		SubsetTag:     subsetTag,
		Attributes:    attrs,
		CorrelationID: correlationID,
	}, true
}

func sortedUniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// RoutingKey returns the architecture-specific routing key a BuildJob should
// be published on (§6 Outputs).
func (b BuildJob) RoutingKey(architecture string) string {
	return fmt.Sprintf("build-inputs-%s", architecture)
}
