package core

import (
	"encoding/json"
	"time"

	"github.com/huangsam/repotrend/internal/contract"
	"github.com/huangsam/repotrend/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// metadataKey is the cache key of a repository's REST metadata.
func metadataKey(ref schema.RepositoryRef) string {
	return "meta:" + ref.FullName()
}

// MetadataLookup returns cached metadata for a repository, if any is fresh enough.
type MetadataLookup func(ref schema.RepositoryRef) (schema.RepoMetadata, bool)

// NewMetadataLookup reads through the metadata store of mgr.
// Entries older than ttl are ignored; a ttl of zero accepts any age.
func NewMetadataLookup(mgr contract.CacheManager, ttl time.Duration) MetadataLookup {
	return func(ref schema.RepositoryRef) (schema.RepoMetadata, bool) {
		if mgr == nil {
			return schema.RepoMetadata{}, false
		}
		store := mgr.GetMetadataStore()
		if store == nil {
			return schema.RepoMetadata{}, false
		}
		return checkCacheHit(store, metadataKey(ref), ttl)
	}
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string, ttl time.Duration) (schema.RepoMetadata, bool) {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return schema.RepoMetadata{}, false // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion {
		return schema.RepoMetadata{}, false
	}
	if ttl > 0 && time.Since(time.Unix(ts, 0)) > ttl {
		return schema.RepoMetadata{}, false
	}
	var meta schema.RepoMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return schema.RepoMetadata{}, false
	}
	return meta, true
}

// storeMetadata writes freshly fetched metadata through to the cache.
func storeMetadata(mgr contract.CacheManager, ref schema.RepositoryRef, meta schema.RepoMetadata) {
	if mgr == nil {
		return
	}
	store := mgr.GetMetadataStore()
	if store == nil {
		return
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return
	}
	if err := store.Set(metadataKey(ref), data, currentCacheVersion, time.Now().Unix()); err != nil {
		contract.LogWarn("Failed to cache metadata for "+ref.FullName(), err)
	}
}
