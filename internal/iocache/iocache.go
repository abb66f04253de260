// Package iocache is for caching I/O calls and tracking runs.
package iocache

import (
	"sync"

	"github.com/huangsam/repotrend/internal/contract"
)

// CacheStoreManager manages the metadata cache and the run store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	metadata     contract.CacheStore
	runs         contract.RunStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetMetadataStore returns the repository metadata CacheStore.
func (mgr *CacheStoreManager) GetMetadataStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.metadata
}

// GetRunStore returns the RunStore.
func (mgr *CacheStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
