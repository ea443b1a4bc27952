package bolt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fastygo/compliance/internal/infrastructure/boltstore"
	"github.com/fastygo/compliance/repository"
)

type listCache struct {
	store *boltstore.Store
	ttl   time.Duration
}

// NewListCache keeps owner list snapshots in an embedded bolt file.
func NewListCache(store *boltstore.Store, ttl time.Duration) repository.ListCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &listCache{store: store, ttl: ttl}
}

func (c *listCache) Get(ctx context.Context, key repository.CacheKey, dest interface{}) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	payload, ok, err := c.store.Get(key.String())
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		_ = c.store.Delete(key.String())
		return false, nil
	}
	return true, nil
}

func (c *listCache) Generation(ctx context.Context, key repository.CacheKey) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return c.store.Generation(key.GenerationKey())
}

func (c *listCache) Set(ctx context.Context, key repository.CacheKey, generation uint64, value interface{}) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	return c.store.PutAtGeneration(key.String(), key.GenerationKey(), generation, payload, c.ttl)
}

// Invalidate ignores ctx cancellation so a completed write always drops its stale list.
func (c *listCache) Invalidate(_ context.Context, keys ...repository.CacheKey) error {
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	gens := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
		gens[i] = k.GenerationKey()
	}
	return c.store.Invalidate(names, gens)
}
