// -----------------------------------------------------------------------
// Impacted maintainers (§4.2 "Impacted maintainers"). Maintainer logins
// are read from the `meta.maintainers` field of the x86_64-linux
// QueryPackagesOutputs run the strategy makes after the merge, so no
// extra evaluator operation is needed beyond the three already pinned in §6.
// -----------------------------------------------------------------------

package nixpkgs

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/ternarybob/evalbot/internal/models"
)

type packageMeta struct {
	Meta struct {
		Maintainers []struct {
			Github string `json:"github"`
		} `json:"maintainers"`
	} `json:"meta"`
}

// ParseMaintainersByAttribute decodes an evaluator's JSON package stdout
// into attribute -> maintainer GitHub logins.
func ParseMaintainersByAttribute(packageListStdout string) (map[string][]string, error) {
	var raw map[string]packageMeta
	if err := json.Unmarshal([]byte(packageListStdout), &raw); err != nil {
		return nil, fmt.Errorf("parse package list for maintainers: %w", err)
	}

	out := make(map[string][]string, len(raw))
	for attr, pm := range raw {
		for _, m := range pm.Meta.Maintainers {
			if m.Github != "" {
				out[attr] = append(out[attr], m.Github)
			}
		}
	}
	return out, nil
}

// CandidateAttributesFromPaths is a best-effort approximation of which
// package attributes a set of changed file paths touches, mirroring
// ParsePossiblyTouchedPackages's "never authoritative, only used to widen
// a candidate set" role: a changed .nix file's containing directory name
// is usually its package attribute (pkgs/.../<attribute>/default.nix).
// No deduplication — callers merge into a set themselves.
func CandidateAttributesFromPaths(changedPaths []string) []string {
	var out []string
	for _, p := range changedPaths {
		if !strings.HasSuffix(p, ".nix") {
			continue
		}
		name := path.Base(path.Dir(p))
		if name == "" || name == "." || name == "/" {
			continue
		}
		out = append(out, name)
	}
	return out
}

// ComputeImpactedMaintainers narrows the full attribute->maintainer table
// down to the attributes this PR touches, per §4.2 "computed from (changed
// file paths, changed attribute paths)": the rebuild list (out-path-diff
// derived) plus path-derived candidates the rebuild diff alone might miss
// (e.g. a meta-only edit that doesn't change the output path).
func ComputeImpactedMaintainers(byAttribute map[string][]string, rebuild []models.RebuildEntry, changedPaths []string) *models.ImpactedMaintainers {
	filtered := make(map[string][]string)
	for _, entry := range rebuild {
		if logins, ok := byAttribute[entry.Attribute]; ok {
			filtered[entry.Attribute] = logins
		}
	}
	for _, attr := range CandidateAttributesFromPaths(changedPaths) {
		if _, already := filtered[attr]; already {
			continue
		}
		if logins, ok := byAttribute[attr]; ok {
			filtered[attr] = logins
		}
	}
	return models.NewImpactedMaintainers(filtered)
}
