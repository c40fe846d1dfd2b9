package status

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/evalbot/internal/models"
)

type fakeHosting struct {
	calls []models.CommitStatus
}

func (f *fakeHosting) FetchIssue(context.Context, models.RepoDescriptor, int) (models.IssueSnapshot, error) {
	return models.IssueSnapshot{}, nil
}
func (f *fakeHosting) SetStatus(_ context.Context, s models.CommitStatus) error {
	f.calls = append(f.calls, s)
	return nil
}
func (f *fakeHosting) ReconcileLabels(context.Context, models.RepoDescriptor, int, []string, []string) error {
	return nil
}
func (f *fakeHosting) CurrentLabels(context.Context, models.RepoDescriptor, int) ([]string, error) {
	return nil, nil
}
func (f *fakeHosting) CreateGist(context.Context, string, bool, map[string]string) (string, error) {
	return "", nil
}
func (f *fakeHosting) RequestReviewers(context.Context, models.RepoDescriptor, int, []string) error {
	return nil
}

func TestReporter_EachCallIsIndependent(t *testing.T) {
	fake := &fakeHosting{}
	repo := models.RepoDescriptor{FullName: "NixOS/nixpkgs"}
	r := New(fake, repo, "deadbeef")

	require.NoError(t, r.Pending(context.Background(), "grahamcofborg-eval-check-meta", "waiting"))
	require.NoError(t, r.Success(context.Background(), "grahamcofborg-eval-check-meta", "passed", "https://example/1"))

	require.Len(t, fake.calls, 2)
	assert.Equal(t, models.StatusPending, fake.calls[0].State)
	assert.Equal(t, models.StatusSuccess, fake.calls[1].State)
	assert.Equal(t, "deadbeef", fake.calls[1].CommitSHA)
}
