// -----------------------------------------------------------------------
// WorkTree handle - a single project's checked-out working copy, driven
// entirely by shelling out to the git binary. Clone/fetch plumbing
// follows the teacher's predecessor worker: embed the token in an
// https://oauth2:TOKEN@ URL and suppress stdout/stderr on the command so
// the token never reaches logs.
// -----------------------------------------------------------------------

package worktree

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ternarybob/evalbot/internal/interfaces"
)

// Handle is a process-local checkout of one repository.
type Handle struct {
	gitPath  string
	dir      string
	cloneURL string
	token    string
}

var _ interfaces.WorkTree = (*Handle)(nil)

// Path returns the absolute filesystem path of the current checkout.
func (h *Handle) Path() string { return h.dir }

// clone performs the initial shallow clone into h.dir. url carries the
// embedded credential; stdout/stderr are suppressed so the token never
// reaches logs.
func (h *Handle) clone(ctx context.Context, url string) error {
	cmd := exec.CommandContext(ctx, h.gitPath, "clone", "--depth", "1", url, h.dir)
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git clone: %w", err)
	}
	return nil
}

// CheckoutOriginRef fetches and checks out a named remote ref.
func (h *Handle) CheckoutOriginRef(ctx context.Context, ref string) (string, error) {
	if err := h.run(ctx, "fetch", "--depth", "1", "origin", ref); err != nil {
		return "", fmt.Errorf("fetch origin %s: %w", ref, err)
	}
	if err := h.run(ctx, "checkout", "--force", "FETCH_HEAD"); err != nil {
		return "", fmt.Errorf("checkout %s: %w", ref, err)
	}
	return h.dir, nil
}

// FetchPR fetches the given PR number's head ref from origin.
func (h *Handle) FetchPR(ctx context.Context, number int) error {
	ref := fmt.Sprintf("pull/%d/head", number)
	if err := h.run(ctx, "fetch", "--depth", "1", "origin", ref); err != nil {
		return fmt.Errorf("fetch PR #%d: %w", number, err)
	}
	return nil
}

// CommitExists reports whether sha is present in the local checkout.
func (h *Handle) CommitExists(ctx context.Context, sha string) (bool, error) {
	err := h.run(ctx, "cat-file", "-e", sha+"^{commit}")
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}
	return false, err
}

// MergeCommit merges sha into the currently checked-out ref.
func (h *Handle) MergeCommit(ctx context.Context, sha string) error {
	if err := h.run(ctx, "merge", "--no-edit", sha); err != nil {
		_ = h.run(ctx, "merge", "--abort")
		return fmt.Errorf("merge %s: %w", sha, err)
	}
	return nil
}

// CommitMessagesFromHead returns the commit messages reachable from sha
// but not from the currently checked-out base.
func (h *Handle) CommitMessagesFromHead(ctx context.Context, sha string) ([]string, error) {
	out, err := h.output(ctx, "log", "--format=%B", "HEAD.."+sha)
	if err != nil {
		return nil, fmt.Errorf("log HEAD..%s: %w", sha, err)
	}
	return splitNonEmptyLines(out), nil
}

// FilesChangedFromHead returns the file paths that differ between sha and
// the currently checked-out base.
func (h *Handle) FilesChangedFromHead(ctx context.Context, sha string) ([]string, error) {
	out, err := h.output(ctx, "diff", "--name-only", "HEAD", sha)
	if err != nil {
		return nil, fmt.Errorf("diff --name-only HEAD %s: %w", sha, err)
	}
	return splitNonEmptyLines(out), nil
}

func (h *Handle) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, h.gitPath, args...)
	cmd.Dir = h.dir
	// Suppressed: the remote URL embeds the access token.
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run()
}

func (h *Handle) output(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, h.gitPath, args...)
	cmd.Dir = h.dir
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = nil
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return stdout.String(), nil
}

func splitNonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
