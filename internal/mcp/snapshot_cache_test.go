package mcp

import (
	"testing"
	"time"

	"github.com/huangsam/repotrend/internal/contract"
	"github.com/huangsam/repotrend/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var widgets = schema.RepositoryRef{Owner: "acme", Name: "widgets"}

func TestCachedStore_Load(t *testing.T) {
	snap := &schema.RepositorySnapshot{TotalStars: 250, Status: schema.CompleteSnapshot}

	t.Run("second load is served from memory", func(t *testing.T) {
		inner := &contract.MockSnapshotStore{}
		inner.On("Load", widgets).Return(snap, nil).Once()

		c, err := newCachedStore(inner, 4, time.Minute)
		require.NoError(t, err)
		for range 3 {
			got, err := c.Load(widgets)
			require.NoError(t, err)
			assert.Same(t, snap, got)
		}
		inner.AssertExpectations(t)
	})

	t.Run("expired entries are reloaded", func(t *testing.T) {
		inner := &contract.MockSnapshotStore{}
		inner.On("Load", widgets).Return(snap, nil).Twice()

		c, err := newCachedStore(inner, 4, time.Minute)
		require.NoError(t, err)
		clock := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
		c.now = func() time.Time { return clock }

		_, err = c.Load(widgets)
		require.NoError(t, err)
		clock = clock.Add(2 * time.Minute)
		_, err = c.Load(widgets)
		require.NoError(t, err)
		inner.AssertExpectations(t)
	})

	t.Run("absent snapshots are not cached", func(t *testing.T) {
		inner := &contract.MockSnapshotStore{}
		inner.On("Load", widgets).Return((*schema.RepositorySnapshot)(nil), nil).Twice()

		c, err := newCachedStore(inner, 4, time.Minute)
		require.NoError(t, err)
		for range 2 {
			got, err := c.Load(widgets)
			require.NoError(t, err)
			assert.Nil(t, got)
		}
		inner.AssertExpectations(t)
	})

	t.Run("errors pass through", func(t *testing.T) {
		inner := &contract.MockSnapshotStore{}
		inner.On("Load", widgets).Return(nil, assert.AnError).Once()

		c, err := newCachedStore(inner, 4, time.Minute)
		require.NoError(t, err)
		_, err = c.Load(widgets)
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestCachedStore_SaveInvalidates(t *testing.T) {
	old := &schema.RepositorySnapshot{TotalStars: 250}
	fresh := &schema.RepositorySnapshot{TotalStars: 252}

	inner := &contract.MockSnapshotStore{}
	inner.On("Load", widgets).Return(old, nil).Once()
	inner.On("Save", widgets, fresh).Return(nil).Once()
	inner.On("Load", widgets).Return(fresh, nil).Once()

	c, err := newCachedStore(inner, 4, time.Minute)
	require.NoError(t, err)

	got, err := c.Load(widgets)
	require.NoError(t, err)
	assert.Equal(t, 250, got.TotalStars)

	require.NoError(t, c.Save(widgets, fresh))

	got, err = c.Load(widgets)
	require.NoError(t, err)
	assert.Equal(t, 252, got.TotalStars)
	inner.AssertExpectations(t)
}

func TestCachedStore_List(t *testing.T) {
	inner := &contract.MockSnapshotStore{}
	inner.On("List").Return([]schema.RepositoryRef{widgets}, nil)

	c, err := newCachedStore(inner, 4, time.Minute)
	require.NoError(t, err)
	refs, err := c.List()
	require.NoError(t, err)
	assert.Equal(t, []schema.RepositoryRef{widgets}, refs)
}
