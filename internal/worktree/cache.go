// -----------------------------------------------------------------------
// WorkTree cache - the process-wide filesystem cache of repository
// clones (§3 "WorkTree Handle", §5 "Shared resources"). Concurrent calls
// for the same repository identity serialize on a per-identity mutex;
// different identities proceed independently.
// -----------------------------------------------------------------------

package worktree

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ternarybob/evalbot/internal/interfaces"
)

// Cache is the process-wide project checkout cache.
type Cache struct {
	root    string
	gitPath string
	token   string

	mu      sync.Mutex
	locks   map[string]*sync.Mutex
	handles map[string]*Handle
}

var _ interfaces.WorkTreeCache = (*Cache)(nil)

// NewCache builds a Cache rooted at dir, using gitPath as the git binary
// and token for authenticated clone/fetch URLs.
func NewCache(dir, gitPath, token string) *Cache {
	return &Cache{
		root:    dir,
		gitPath: gitPath,
		token:   token,
		locks:   make(map[string]*sync.Mutex),
		handles: make(map[string]*Handle),
	}
}

// Project acquires (creating if necessary) the work tree handle for the
// given repository identity, cloning it on first use. The per-identity
// lock is held until the caller calls Release, so that the whole job's
// checkout/fetch/merge sequence on this identity's on-disk tree stays
// serialized against any other job on the same repository — not just
// the initial clone.
func (c *Cache) Project(ctx context.Context, fullName, cloneURL string) (interfaces.WorkTree, error) {
	lock := c.identityLock(fullName)
	lock.Lock()

	c.mu.Lock()
	handle, ok := c.handles[fullName]
	c.mu.Unlock()
	if ok {
		return handle, nil
	}

	dir := filepath.Join(c.root, sanitizeIdentity(fullName))
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("prepare work tree cache dir for %s: %w", fullName, err)
	}

	handle = &Handle{
		gitPath:  c.gitPath,
		dir:      dir,
		cloneURL: cloneURL,
		token:    c.token,
	}

	if _, err := os.Stat(filepath.Join(dir, ".git")); os.IsNotExist(err) {
		if err := handle.clone(ctx, authenticatedURL(cloneURL, c.token)); err != nil {
			lock.Unlock()
			return nil, fmt.Errorf("clone %s: %w", fullName, err)
		}
	}

	c.mu.Lock()
	c.handles[fullName] = handle
	c.mu.Unlock()
	return handle, nil
}

// Release unlocks the per-identity lock acquired by Project, allowing the
// next queued job on the same repository identity to proceed. The on-disk
// checkout itself is retained in the cache for reuse.
func (c *Cache) Release(fullName string) {
	c.mu.Lock()
	lock, ok := c.locks[fullName]
	c.mu.Unlock()
	if ok {
		lock.Unlock()
	}
}

func (c *Cache) identityLock(fullName string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[fullName]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[fullName] = lock
	}
	return lock
}

func sanitizeIdentity(fullName string) string {
	out := make([]byte, 0, len(fullName))
	for i := 0; i < len(fullName); i++ {
		b := fullName[i]
		if b == '/' {
			out = append(out, '-')
			continue
		}
		out = append(out, b)
	}
	return string(out)
}

func authenticatedURL(cloneURL, token string) string {
	if token == "" {
		return cloneURL
	}
	const prefix = "https://"
	if len(cloneURL) > len(prefix) && cloneURL[:len(prefix)] == prefix {
		return prefix + "oauth2:" + token + "@" + cloneURL[len(prefix):]
	}
	return cloneURL
}
