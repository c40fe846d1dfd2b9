// -----------------------------------------------------------------------
// WorkTree - the version-control checkout collaborator (§3 "WorkTree
// Handle", §6 "Work-tree operations").
// -----------------------------------------------------------------------

package interfaces

import "context"

// WorkTree is one project's checked-out working copy. Operations serialize
// on the cache's per-identity lock (§5 "Shared resources").
type WorkTree interface {
	// Path returns the absolute filesystem path of the current checkout.
	Path() string

	// CheckoutOriginRef checks out a named remote ref (e.g. the target
	// branch) and returns the working-tree path.
	CheckoutOriginRef(ctx context.Context, ref string) (string, error)

	// FetchPR fetches the given PR number's head ref from origin.
	FetchPR(ctx context.Context, number int) error

	// CommitExists reports whether sha is present in the local checkout.
	CommitExists(ctx context.Context, sha string) (bool, error)

	// MergeCommit merges sha into the currently checked-out ref.
	MergeCommit(ctx context.Context, sha string) error

	// CommitMessagesFromHead returns the commit messages reachable from sha
	// but not from the currently checked-out base.
	CommitMessagesFromHead(ctx context.Context, sha string) ([]string, error)

	// FilesChangedFromHead returns the file paths that differ between sha
	// and the currently checked-out base.
	FilesChangedFromHead(ctx context.Context, sha string) ([]string, error)
}

// WorkTreeCache is the process-wide cache of project checkouts (§3
// "Ownership", §5 "Shared resources"). Concurrent calls for the same
// identity serialize; different identities may proceed in parallel.
type WorkTreeCache interface {
	// Project acquires (creating if necessary) the work tree handle for
	// the given repository identity.
	Project(ctx context.Context, fullName, cloneURL string) (WorkTree, error)

	// Release returns the handle to the cache at the end of a job.
	Release(fullName string)
}
