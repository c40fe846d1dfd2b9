package nixpkgs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ternarybob/evalbot/internal/models"
)

func TestCandidateAttributesFromPaths_DirectoryNameIsAttribute(t *testing.T) {
	paths := []string{
		"pkgs/applications/editors/vim/default.nix",
		"pkgs/top-level/all-packages.nix",
		"README.md",
	}

	want := []string{"vim", "top-level"}
	assert.Equal(t, want, CandidateAttributesFromPaths(paths))
}

func TestCandidateAttributesFromPaths_Empty(t *testing.T) {
	assert.Empty(t, CandidateAttributesFromPaths(nil))
	assert.Empty(t, CandidateAttributesFromPaths([]string{"README.md", "flake.lock"}))
}

func TestComputeImpactedMaintainers_RebuildOnly(t *testing.T) {
	byAttribute := map[string][]string{
		"firefox": {"alice"},
		"vim":     {"bob"},
	}
	rebuild := []models.RebuildEntry{{System: models.SystemLinux, Attribute: "firefox"}}

	impacted := ComputeImpactedMaintainers(byAttribute, rebuild, nil)

	assert.Equal(t, map[string][]string{"firefox": {"alice"}}, impacted.ByAttribute)
}

func TestComputeImpactedMaintainers_PathDerivedWidensCandidates(t *testing.T) {
	byAttribute := map[string][]string{
		"firefox": {"alice"},
		"vim":     {"bob"},
	}
	rebuild := []models.RebuildEntry{{System: models.SystemLinux, Attribute: "firefox"}}
	changedPaths := []string{"pkgs/applications/editors/vim/default.nix"}

	impacted := ComputeImpactedMaintainers(byAttribute, rebuild, changedPaths)

	assert.Equal(t, map[string][]string{
		"firefox": {"alice"},
		"vim":     {"bob"},
	}, impacted.ByAttribute)
}

func TestComputeImpactedMaintainers_NoDoubleCountingWhenOverlapping(t *testing.T) {
	byAttribute := map[string][]string{"firefox": {"alice"}}
	rebuild := []models.RebuildEntry{{System: models.SystemLinux, Attribute: "firefox"}}
	changedPaths := []string{"pkgs/applications/networking/browsers/firefox/default.nix"}

	impacted := ComputeImpactedMaintainers(byAttribute, rebuild, changedPaths)

	assert.Equal(t, map[string][]string{"firefox": {"alice"}}, impacted.ByAttribute)
}

func TestComputeImpactedMaintainers_UntrackedAttributeIgnored(t *testing.T) {
	byAttribute := map[string][]string{"firefox": {"alice"}}
	rebuild := []models.RebuildEntry{{System: models.SystemLinux, Attribute: "not-in-list"}}
	changedPaths := []string{"pkgs/does/not/exist/default.nix"}

	impacted := ComputeImpactedMaintainers(byAttribute, rebuild, changedPaths)

	assert.Empty(t, impacted.ByAttribute)
}
