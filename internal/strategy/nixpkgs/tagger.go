// -----------------------------------------------------------------------
// Label taggers (§4.2). Each tagger is a pure function from some piece of
// strategy state to an add/remove label pair; the strategy feeds the
// result into labels.Reconcile against the issue's current labels.
// -----------------------------------------------------------------------

package nixpkgs

import (
	"strings"

	"github.com/ternarybob/evalbot/internal/models"
)

const (
	labelTopicDarwin      = "6.topic: darwin"
	labelMergeConflict    = "2.status: merge conflict"
	labelMaintainerAuthor = "9.needs: maintainer feedback"
)

// TagFromTitle is applied in pre_clone. Add-only: a title that doesn't
// mention darwin/macOS never strips the label, since a maintainer may
// have applied it for reasons unrelated to the title.
func TagFromTitle(title string) (add, remove []string) {
	lower := strings.ToLower(title)
	if strings.Contains(lower, "darwin") || strings.Contains(lower, "macos") {
		return []string{labelTopicDarwin}, nil
	}
	return nil, nil
}

// PathTagConfig maps a label tag to the path prefixes that should cause it
// to be applied (§4.2 "Path tagging").
type PathTagConfig map[string][]string

// TagFromPaths builds an add/remove pair from the configured tag->prefix
// mapping: a tag is added if any changed path matches one of its
// prefixes, removed otherwise.
func TagFromPaths(cfg PathTagConfig, changedPaths []string) (add, remove []string) {
	for tag, prefixes := range cfg {
		if anyHasPrefix(changedPaths, prefixes) {
			add = append(add, tag)
		} else {
			remove = append(remove, tag)
		}
	}
	return add, remove
}

func anyHasPrefix(paths []string, prefixes []string) bool {
	for _, p := range paths {
		for _, prefix := range prefixes {
			if strings.HasPrefix(p, prefix) {
				return true
			}
		}
	}
	return false
}

// TagFromStdenvChange emits a stdenv-rebuild label per changed system.
func TagFromStdenvChange(changed map[models.System]bool) (add, remove []string) {
	for _, sys := range models.AllSystems {
		label := stdenvLabel(sys)
		if changed[sys] {
			add = append(add, label)
		} else {
			remove = append(remove, label)
		}
	}
	return add, remove
}

func stdenvLabel(sys models.System) string {
	switch sys {
	case models.SystemDarwin:
		return "10.rebuild-darwin: stdenv"
	default:
		return "10.rebuild-linux: stdenv"
	}
}

// TagFromPackageDiff emits labels recording whether packages were added
// and/or removed by the diff.
func TagFromPackageDiff(removed, added []string) (add, remove []string) {
	if len(added) > 0 {
		add = append(add, "8.has: package (new)")
	} else {
		remove = append(remove, "8.has: package (new)")
	}
	if len(removed) > 0 {
		add = append(add, "8.has: package (removed)")
	} else {
		remove = append(remove, "8.has: package (removed)")
	}
	return add, remove
}

// TagMergeConflict marks a PR that failed to merge.
func TagMergeConflict() (add, remove []string) {
	return []string{labelMergeConflict}, nil
}

// TagMergeResolved clears the merge-conflict label once a later run merges
// cleanly.
func TagMergeResolved() (add, remove []string) {
	return nil, []string{labelMergeConflict}
}

// TagAuthorIsMaintainer records whether the PR author maintains a package
// their own PR touches.
func TagAuthorIsMaintainer(isMaintainer bool) (add, remove []string) {
	if isMaintainer {
		return []string{labelMaintainerAuthor}, nil
	}
	return nil, []string{labelMaintainerAuthor}
}
