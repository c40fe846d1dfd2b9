// -----------------------------------------------------------------------
// HostingAPI - the code-hosting service collaborator (§6 "Hosting-API
// interactions"). Authentication mechanics are out of scope; this interface
// only pins the operations the pipeline depends on.
// -----------------------------------------------------------------------

package interfaces

import (
	"context"

	"github.com/ternarybob/evalbot/internal/models"
)

// HostingAPI is the borrowed, read-mostly collaborator the driver and
// strategy use to talk to the code-hosting service.
type HostingAPI interface {
	// FetchIssue retrieves the current issue/PR snapshot.
	FetchIssue(ctx context.Context, repo models.RepoDescriptor, prNumber int) (models.IssueSnapshot, error)

	// SetStatus publishes a new state for one commit-status context. Every
	// publish is an independent write; no local caching (§4.3).
	SetStatus(ctx context.Context, status models.CommitStatus) error

	// ReconcileLabels adds/removes labels on an issue (§4.4).
	ReconcileLabels(ctx context.Context, repo models.RepoDescriptor, issueNumber int, add, remove []string) error

	// CurrentLabels returns the labels currently present on the issue.
	CurrentLabels(ctx context.Context, repo models.RepoDescriptor, issueNumber int) ([]string, error)

	// CreateGist pastes content and returns its URL (§6 "Gist").
	CreateGist(ctx context.Context, description string, public bool, files map[string]string) (string, error)

	// RequestReviewers requests the named logins as reviewers on the PR.
	// Failure is soft — callers log and continue (§7).
	RequestReviewers(ctx context.Context, repo models.RepoDescriptor, prNumber int, logins []string) error
}
