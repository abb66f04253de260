package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/repotrend/internal/iocache"
	"github.com/huangsam/repotrend/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMetadataLookup(t *testing.T) {
	meta := schema.RepoMetadata{FullName: "acme/widgets", HTMLURL: "https://github.com/acme/widgets", Stars: 9}
	data, err := json.Marshal(meta)
	require.NoError(t, err)

	tests := []struct {
		name    string
		data    []byte
		version int
		age     time.Duration
		err     error
		hit     bool
	}{
		{"fresh hit", data, currentCacheVersion, time.Minute, nil, true},
		{"stale", data, currentCacheVersion, 48 * time.Hour, nil, false},
		{"version mismatch", data, currentCacheVersion + 1, time.Minute, nil, false},
		{"corrupt", []byte("{"), currentCacheVersion, time.Minute, nil, false},
		{"miss", []byte{}, 0, 0, errors.New("not found"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &iocache.MockCacheStore{}
			store.On("Get", "meta:acme/widgets").Return(tt.data, tt.version, time.Now().Add(-tt.age).Unix(), tt.err)
			mgr := &iocache.MockCacheManager{}
			mgr.On("GetMetadataStore").Return(store)

			got, ok := NewMetadataLookup(mgr, 24*time.Hour)(widgets)
			assert.Equal(t, tt.hit, ok)
			if tt.hit {
				assert.Equal(t, meta, got)
			}
		})
	}
}

func TestMetadataLookup_ZeroTTLAcceptsAnyAge(t *testing.T) {
	data, err := json.Marshal(schema.RepoMetadata{Stars: 1})
	require.NoError(t, err)
	store := &iocache.MockCacheStore{}
	store.On("Get", mock.Anything).Return(data, currentCacheVersion, int64(0), nil)
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetMetadataStore").Return(store)

	_, ok := NewMetadataLookup(mgr, 0)(widgets)
	assert.True(t, ok)
}

func TestMetadataLookup_NoStore(t *testing.T) {
	_, ok := NewMetadataLookup(nil, time.Hour)(widgets)
	assert.False(t, ok)

	mgr := &iocache.MockCacheManager{}
	mgr.On("GetMetadataStore").Return(nil)
	_, ok = NewMetadataLookup(mgr, time.Hour)(widgets)
	assert.False(t, ok)
}

func TestStoreMetadata_SetFailureIsWarning(t *testing.T) {
	store := &iocache.MockCacheStore{}
	store.On("Set", "meta:acme/widgets", mock.Anything, currentCacheVersion, mock.Anything).Return(errors.New("read only"))
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetMetadataStore").Return(store)

	storeMetadata(mgr, widgets, schema.RepoMetadata{Stars: 1})
	store.AssertExpectations(t)
}
