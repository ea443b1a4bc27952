package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/compliance/domain"
	"github.com/fastygo/compliance/repository"
)

var clientsKey = repository.CacheKey{Entity: domain.EntityClients, OwnerID: "owner-1"}

func TestListCache_StoresAndInvalidates(t *testing.T) {
	srv, client := startMemRedis(t)
	cache := NewListCache(client, time.Minute)
	ctx := context.Background()

	gen, err := cache.Generation(ctx, clientsKey)
	require.NoError(t, err)
	assert.Zero(t, gen)

	stored, err := cache.Set(ctx, clientsKey, gen, []domain.Client{{ID: "c1", Name: "Acme"}})
	require.NoError(t, err)
	require.True(t, stored)
	assert.Equal(t, time.Minute, srv.ttl(clientsKey.String()))

	var got []domain.Client
	hit, err := cache.Get(ctx, clientsKey, &got)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "Acme", got[0].Name)

	require.NoError(t, cache.Invalidate(ctx, clientsKey))
	hit, err = cache.Get(ctx, clientsKey, &got)
	require.NoError(t, err)
	assert.False(t, hit)

	gen, err = cache.Generation(ctx, clientsKey)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gen)
}

func TestListCache_StaleGenerationIsNotStored(t *testing.T) {
	srv, client := startMemRedis(t)
	cache := NewListCache(client, time.Minute)
	ctx := context.Background()

	gen, err := cache.Generation(ctx, clientsKey)
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(ctx, clientsKey))

	stored, err := cache.Set(ctx, clientsKey, gen, []domain.Client{{ID: "stale"}})
	require.NoError(t, err)
	assert.False(t, stored)
	_, ok := srv.value(clientsKey.String())
	assert.False(t, ok)
}

func TestListCache_InvalidateBetweenCheckAndExecAbortsWrite(t *testing.T) {
	srv, client := startMemRedis(t)
	cache := NewListCache(client, time.Minute)
	ctx := context.Background()

	srv.mu.Lock()
	srv.beforeExec = func(s *memRedis) {
		s.beforeExec = nil
		s.write(clientsKey.GenerationKey(), "1", 0)
	}
	srv.mu.Unlock()

	stored, err := cache.Set(ctx, clientsKey, 0, []domain.Client{{ID: "stale"}})
	require.NoError(t, err)
	assert.False(t, stored)
	_, ok := srv.value(clientsKey.String())
	assert.False(t, ok)
}

func TestListCache_UndecodableEntryMisses(t *testing.T) {
	srv, client := startMemRedis(t)
	cache := NewListCache(client, time.Minute)
	srv.put(clientsKey.String(), "{not json")

	var got []domain.Client
	hit, err := cache.Get(context.Background(), clientsKey, &got)
	require.NoError(t, err)
	assert.False(t, hit)
	_, ok := srv.value(clientsKey.String())
	assert.False(t, ok)
}
