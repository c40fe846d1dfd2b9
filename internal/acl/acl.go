// -----------------------------------------------------------------------
// Architecture ACL - a config-driven (author, repo) -> architectures
// lookup, grounded on ofborg's acl.build_job_architectures_for_user_repo
// (original_source/ofborg/src/tasks/eval/evaluate.rs): untrusted authors
// get no auto-scheduled builds; trusted authors get the repo's
// architecture list, falling back to the strategy's default set.
// -----------------------------------------------------------------------

package acl

import (
	"github.com/ternarybob/evalbot/internal/common"
	"github.com/ternarybob/evalbot/internal/interfaces"
)

// List is a config-driven ArchitectureACL.
type List struct {
	trusted  map[string]struct{}
	perRepo  map[string][]string
	fallback []string
}

var _ interfaces.ArchitectureACL = (*List)(nil)

// New builds a List from cfg. fallback is used for any repo with no
// explicit entry in cfg.RepoArchitectures. An empty TrustedAuthors list
// means every author is trusted — the common case for a single-repo
// worker where trust is already enforced upstream (PR merge/collaborator
// permissions), matching the bare architecture list this gate used before
// the ACL was wired in.
func New(cfg common.ACLConfig, fallback []string) *List {
	trusted := make(map[string]struct{}, len(cfg.TrustedAuthors))
	for _, login := range cfg.TrustedAuthors {
		trusted[login] = struct{}{}
	}
	perRepo := cfg.RepoArchitectures
	if perRepo == nil {
		perRepo = map[string][]string{}
	}
	return &List{trusted: trusted, perRepo: perRepo, fallback: fallback}
}

// ArchitecturesFor returns the architectures authorLogin may auto-schedule
// builds on for repoFullName, or nil if the author isn't trusted.
func (l *List) ArchitecturesFor(authorLogin, repoFullName string) []string {
	if len(l.trusted) > 0 {
		if _, ok := l.trusted[authorLogin]; !ok {
			return nil
		}
	}
	if archs, ok := l.perRepo[repoFullName]; ok {
		return archs
	}
	return l.fallback
}
