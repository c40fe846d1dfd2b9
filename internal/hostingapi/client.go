// -----------------------------------------------------------------------
// Client - the go-github-backed implementation of interfaces.HostingAPI.
// Client construction follows the teacher's connector idiom: a static
// oauth2 token source wrapping an *http.Client, handed to github.NewClient.
// -----------------------------------------------------------------------

package hostingapi

import (
	"context"
	"fmt"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/ternarybob/evalbot/internal/interfaces"
	"github.com/ternarybob/evalbot/internal/models"
)

// Client is the production interfaces.HostingAPI, backed by the GitHub
// REST API.
type Client struct {
	gh *github.Client
}

var _ interfaces.HostingAPI = (*Client)(nil)

// New builds a Client authenticated with token.
func New(ctx context.Context, token string) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("hosting API token is required")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	return &Client{gh: github.NewClient(tc)}, nil
}

// FetchIssue retrieves the current issue/PR snapshot.
func (c *Client) FetchIssue(ctx context.Context, repo models.RepoDescriptor, prNumber int) (models.IssueSnapshot, error) {
	issue, _, err := c.gh.Issues.Get(ctx, repo.Owner, repo.Name, prNumber)
	if err != nil {
		return models.IssueSnapshot{}, fmt.Errorf("fetch issue %s#%d: %w", repo.FullName, prNumber, err)
	}

	state := models.IssueStateOpen
	if issue.GetState() == "closed" {
		state = models.IssueStateClosed
	}

	labels := make([]string, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		labels = append(labels, l.GetName())
	}

	author := ""
	if issue.User != nil {
		author = issue.User.GetLogin()
	}

	return models.IssueSnapshot{
		Title:       issue.GetTitle(),
		State:       state,
		AuthorLogin: author,
		Labels:      labels,
	}, nil
}

// SetStatus publishes a new state for one commit-status context. Every
// publish is an independent write; no local caching (§4.3).
func (c *Client) SetStatus(ctx context.Context, status models.CommitStatus) error {
	state := string(status.State)
	ghStatus := &github.RepoStatus{
		State:       &state,
		Context:     &status.Context,
		Description: &status.Description,
	}
	if status.URL != "" {
		ghStatus.TargetURL = &status.URL
	}

	_, _, err := c.gh.Repositories.CreateStatus(ctx, status.Repo.Owner, status.Repo.Name, status.CommitSHA, ghStatus)
	if err != nil {
		return fmt.Errorf("set status %s on %s@%s: %w", status.Context, status.Repo.FullName, status.CommitSHA, err)
	}
	return nil
}

// CurrentLabels returns the labels currently present on the issue.
func (c *Client) CurrentLabels(ctx context.Context, repo models.RepoDescriptor, issueNumber int) ([]string, error) {
	var all []string
	opts := &github.ListOptions{PerPage: 100}
	for {
		labels, resp, err := c.gh.Issues.ListLabelsByIssue(ctx, repo.Owner, repo.Name, issueNumber, opts)
		if err != nil {
			return nil, fmt.Errorf("list labels on %s#%d: %w", repo.FullName, issueNumber, err)
		}
		for _, l := range labels {
			all = append(all, l.GetName())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// ReconcileLabels adds/removes labels on an issue (§4.4). Callers are
// expected to have already computed the minimal add/remove sets; this
// method performs the writes as a single batch add followed by per-label
// removes, matching the GitHub API's shape.
func (c *Client) ReconcileLabels(ctx context.Context, repo models.RepoDescriptor, issueNumber int, add, remove []string) error {
	if len(add) > 0 {
		if _, _, err := c.gh.Issues.AddLabelsToIssue(ctx, repo.Owner, repo.Name, issueNumber, add); err != nil {
			return fmt.Errorf("add labels %v on %s#%d: %w", add, repo.FullName, issueNumber, err)
		}
	}
	for _, label := range remove {
		if _, err := c.gh.Issues.RemoveLabelForIssue(ctx, repo.Owner, repo.Name, issueNumber, label); err != nil {
			return fmt.Errorf("remove label %q on %s#%d: %w", label, repo.FullName, issueNumber, err)
		}
	}
	return nil
}

// CreateGist pastes content and returns its URL (§6 "Gist").
func (c *Client) CreateGist(ctx context.Context, description string, public bool, files map[string]string) (string, error) {
	ghFiles := make(map[github.GistFilename]github.GistFile, len(files))
	for name, content := range files {
		content := content
		ghFiles[github.GistFilename(name)] = github.GistFile{Content: &content}
	}

	gist, _, err := c.gh.Gists.Create(ctx, &github.Gist{
		Description: &description,
		Public:      &public,
		Files:       ghFiles,
	})
	if err != nil {
		return "", fmt.Errorf("create gist %q: %w", description, err)
	}
	return gist.GetHTMLURL(), nil
}

// RequestReviewers requests the named logins as reviewers on the PR.
// Failure is soft — callers log and continue (§7).
func (c *Client) RequestReviewers(ctx context.Context, repo models.RepoDescriptor, prNumber int, logins []string) error {
	if len(logins) == 0 {
		return nil
	}
	_, _, err := c.gh.PullRequests.RequestReviewers(ctx, repo.Owner, repo.Name, prNumber, github.ReviewersRequest{
		Reviewers: logins,
	})
	if err != nil {
		return fmt.Errorf("request reviewers %v on %s#%d: %w", logins, repo.FullName, prNumber, err)
	}
	return nil
}
