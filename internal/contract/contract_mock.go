package contract

import (
	"context"
	"encoding/json"

	"github.com/huangsam/repotrend/schema"
	"github.com/stretchr/testify/mock"
)

// MockQueryClient is a mock implementation of QueryClient for testing.
type MockQueryClient struct {
	mock.Mock
}

var _ QueryClient = &MockQueryClient{} // Compile-time check

// Execute implements the QueryClient interface.
func (m *MockQueryClient) Execute(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	ret := m.Called(ctx, query, variables)
	data, _ := ret.Get(0).(json.RawMessage)
	return data, ret.Error(1)
}

// MockMetadataClient is a mock implementation of MetadataClient for testing.
type MockMetadataClient struct {
	mock.Mock
}

var _ MetadataClient = &MockMetadataClient{} // Compile-time check

// Repository implements the MetadataClient interface.
func (m *MockMetadataClient) Repository(ctx context.Context, ref schema.RepositoryRef) (schema.RepoMetadata, error) {
	ret := m.Called(ctx, ref)
	meta, _ := ret.Get(0).(schema.RepoMetadata)
	return meta, ret.Error(1)
}

// RateLimits implements the MetadataClient interface.
func (m *MockMetadataClient) RateLimits(ctx context.Context) (schema.RateLimitStatus, error) {
	ret := m.Called(ctx)
	status, _ := ret.Get(0).(schema.RateLimitStatus)
	return status, ret.Error(1)
}

// MockSnapshotStore is a mock implementation of SnapshotStore for testing.
type MockSnapshotStore struct {
	mock.Mock
}

var _ SnapshotStore = &MockSnapshotStore{} // Compile-time check

// Load implements the SnapshotStore interface.
func (m *MockSnapshotStore) Load(ref schema.RepositoryRef) (*schema.RepositorySnapshot, error) {
	ret := m.Called(ref)
	snap, _ := ret.Get(0).(*schema.RepositorySnapshot)
	return snap, ret.Error(1)
}

// Save implements the SnapshotStore interface.
func (m *MockSnapshotStore) Save(ref schema.RepositoryRef, snap *schema.RepositorySnapshot) error {
	return m.Called(ref, snap).Error(0)
}

// List implements the SnapshotStore interface.
func (m *MockSnapshotStore) List() ([]schema.RepositoryRef, error) {
	ret := m.Called()
	refs, _ := ret.Get(0).([]schema.RepositoryRef)
	return refs, ret.Error(1)
}
