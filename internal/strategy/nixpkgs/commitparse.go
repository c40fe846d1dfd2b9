// -----------------------------------------------------------------------
// Commit-message parser (§4.2 "Commit-message parsing", §8 S1). A pure,
// best-effort approximation of which package attributes a PR touches —
// never authoritative, only used to narrow the meta-check intersection.
// -----------------------------------------------------------------------

package nixpkgs

import "strings"

// ParsePossiblyTouchedPackages extracts candidate package attribute
// fragments from a list of commit messages. For each line: split once on
// ":"; a line with no colon is dropped; the left part is split on ",",
// each fragment trimmed of surrounding whitespace and emitted in order.
// No deduplication — callers that need a set should dedupe themselves.
func ParsePossiblyTouchedPackages(commitMessages []string) []string {
	var out []string
	for _, line := range commitMessages {
		left, _, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		for _, fragment := range strings.Split(left, ",") {
			out = append(out, strings.TrimSpace(fragment))
		}
	}
	return out
}
