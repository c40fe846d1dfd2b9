// -----------------------------------------------------------------------
// Standard evaluation-check list (§4.2). Order matters: checks are
// reported to the user in this order, so the list is a fixed slice
// literal rather than anything computed or sorted.
// -----------------------------------------------------------------------

package nixpkgs

import "github.com/ternarybob/evalbot/internal/models"

// StandardChecks returns the seven fixed evaluation checks run against
// the merged tree, in reporting order.
func StandardChecks() []models.EvalChecker {
	return []models.EvalChecker{
		{Name: "package-list", Operation: models.OpQueryPackagesJSON, Argv: []string{"--arg", "config", "{ allowUnfree = true; }"}},
		{Name: "package-list-no-aliases", Operation: models.OpQueryPackagesJSON, Argv: []string{"--arg", "config", "{ allowAliases = false; }"}},
		{Name: "nixos-options", Operation: models.OpInstantiate, Argv: []string{"nixos/release.nix", "-A", "options"}},
		{Name: "nixos-manual", Operation: models.OpInstantiate, Argv: []string{"nixos/release.nix", "-A", "manual"}},
		{Name: "nixpkgs-manual", Operation: models.OpInstantiate, Argv: []string{"pkgs/top-level/release.nix", "-A", "manual"}},
		{Name: "nixpkgs-tarball", Operation: models.OpInstantiate, Argv: []string{"pkgs/top-level/release.nix", "-A", "tarball"}},
		{Name: "nixpkgs-unstable-jobset", Operation: models.OpInstantiate, Argv: []string{"pkgs/top-level/release.nix", "-A", "unstable"}},
	}
}

// MetaCheck is the dedicated checkMeta=true evaluator run (§4.2 "Meta
// check"). Not part of the ordered user-visible list: its success never
// fails the job on its own, but its failure does.
func MetaCheck() models.EvalChecker {
	return models.EvalChecker{
		Name:      "meta-check",
		Operation: models.OpQueryPackagesOutputs,
		Argv:      []string{"--arg", "config", "{ checkMeta = true; }"},
	}
}
