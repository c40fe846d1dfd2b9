// -----------------------------------------------------------------------
// Commit-Status Reporter (§4.3). A thin, stateless wrapper over
// HostingAPI.SetStatus: every call is an independent write, there is no
// local cache, and callers are responsible for eventually reaching a
// terminal state per context (invariant (a), §3).
// -----------------------------------------------------------------------

package status

import (
	"context"
	"fmt"

	"github.com/ternarybob/evalbot/internal/interfaces"
	"github.com/ternarybob/evalbot/internal/models"
)

// Reporter publishes commit statuses for one repository/commit pair.
type Reporter struct {
	hosting interfaces.HostingAPI
	repo    models.RepoDescriptor
	sha     string
}

// New builds a Reporter scoped to a single job's repo and head commit.
func New(hosting interfaces.HostingAPI, repo models.RepoDescriptor, sha string) *Reporter {
	return &Reporter{hosting: hosting, repo: repo, sha: sha}
}

// Pending marks context as started but not yet resolved.
func (r *Reporter) Pending(ctx context.Context, statusContext, description string) error {
	return r.set(ctx, statusContext, description, "", models.StatusPending)
}

// Success marks context as having passed.
func (r *Reporter) Success(ctx context.Context, statusContext, description, url string) error {
	return r.set(ctx, statusContext, description, url, models.StatusSuccess)
}

// Failure marks context as having failed a check that ran to completion.
func (r *Reporter) Failure(ctx context.Context, statusContext, description, url string) error {
	return r.set(ctx, statusContext, description, url, models.StatusFailure)
}

// Error marks context as having aborted before producing a pass/fail
// verdict (e.g. a decode error, an infrastructure fault).
func (r *Reporter) Error(ctx context.Context, statusContext, description, url string) error {
	return r.set(ctx, statusContext, description, url, models.StatusError)
}

func (r *Reporter) set(ctx context.Context, statusContext, description, url string, state models.StatusState) error {
	err := r.hosting.SetStatus(ctx, models.CommitStatus{
		Repo:        r.repo,
		CommitSHA:   r.sha,
		Context:     statusContext,
		Description: description,
		URL:         url,
		State:       state,
	})
	if err != nil {
		return fmt.Errorf("set %s status for %s: %w", statusContext, state, err)
	}
	return nil
}
