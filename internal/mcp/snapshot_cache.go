package mcp

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/huangsam/repotrend/internal/contract"
	"github.com/huangsam/repotrend/schema"
)

// Snapshot cache defaults for the long-lived server.
const (
	DefaultSnapshotCacheSize = 256
	DefaultSnapshotCacheTTL  = 5 * time.Minute
)

type cacheEntry struct {
	snap      *schema.RepositorySnapshot
	expiresAt time.Time
}

// cachedStore keeps recently loaded snapshots in memory so repeated tool
// calls do not re-read every file. Absent snapshots are not cached.
type cachedStore struct {
	inner contract.SnapshotStore
	lru   *lru.Cache[string, *cacheEntry]
	ttl   time.Duration
	now   func() time.Time
}

var _ contract.SnapshotStore = &cachedStore{} // Compile-time check

func newCachedStore(inner contract.SnapshotStore, size int, ttl time.Duration) (*cachedStore, error) {
	l, err := lru.New[string, *cacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &cachedStore{inner: inner, lru: l, ttl: ttl, now: time.Now}, nil
}

func (c *cachedStore) Load(ref schema.RepositoryRef) (*schema.RepositorySnapshot, error) {
	key := ref.FullName()
	if e, ok := c.lru.Get(key); ok && c.now().Before(e.expiresAt) {
		return e.snap, nil
	}
	snap, err := c.inner.Load(ref)
	if err != nil || snap == nil {
		return snap, err
	}
	c.lru.Add(key, &cacheEntry{snap: snap, expiresAt: c.now().Add(c.ttl)})
	return snap, nil
}

func (c *cachedStore) Save(ref schema.RepositoryRef, snap *schema.RepositorySnapshot) error {
	c.lru.Remove(ref.FullName())
	return c.inner.Save(ref, snap)
}

func (c *cachedStore) List() ([]schema.RepositoryRef, error) {
	return c.inner.List()
}
