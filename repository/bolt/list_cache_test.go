package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/compliance/domain"
	"github.com/fastygo/compliance/internal/infrastructure/boltstore"
	"github.com/fastygo/compliance/repository"
)

func TestListCache_ReplaceAndInvalidate(t *testing.T) {
	store, err := boltstore.Open(filepath.Join(t.TempDir(), "cache.db"), "lists")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cache := NewListCache(store, time.Minute)
	ctx := context.Background()
	tasksKey := repository.CacheKey{Entity: domain.EntityTasks, OwnerID: "u1"}
	clientsKey := repository.CacheKey{Entity: domain.EntityClients, OwnerID: "u1"}

	var got []domain.Task
	ok, err := cache.Get(ctx, tasksKey, &got)
	require.NoError(t, err)
	assert.False(t, ok)

	set := func(key repository.CacheKey, value interface{}) {
		gen, err := cache.Generation(ctx, key)
		require.NoError(t, err)
		stored, err := cache.Set(ctx, key, gen, value)
		require.NoError(t, err)
		require.True(t, stored)
	}
	set(tasksKey, []domain.Task{{ID: "a"}, {ID: "b"}})
	set(tasksKey, []domain.Task{{ID: "c"}})
	set(clientsKey, []domain.Client{{ID: "x"}})

	ok, err = cache.Get(ctx, tasksKey, &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].ID)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	require.NoError(t, cache.Invalidate(cancelled, tasksKey))

	ok, err = cache.Get(ctx, tasksKey, &got)
	require.NoError(t, err)
	assert.False(t, ok)

	var clients []domain.Client
	ok, err = cache.Get(ctx, clientsKey, &clients)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestListCache_SetAfterInvalidateIsDropped(t *testing.T) {
	store, err := boltstore.Open(filepath.Join(t.TempDir(), "cache.db"), "lists")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cache := NewListCache(store, time.Minute)
	ctx := context.Background()
	key := repository.CacheKey{Entity: domain.EntityClients, OwnerID: "u1"}

	before, err := cache.Generation(ctx, key)
	require.NoError(t, err)

	// a write lands while the list is being fetched
	require.NoError(t, cache.Invalidate(ctx, key))

	stored, err := cache.Set(ctx, key, before, []domain.Client{})
	require.NoError(t, err)
	assert.False(t, stored)

	var got []domain.Client
	ok, err := cache.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, ok)

	after, err := cache.Generation(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
	stored, err = cache.Set(ctx, key, after, []domain.Client{{ID: "c1"}})
	require.NoError(t, err)
	assert.True(t, stored)
}
