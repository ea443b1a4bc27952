package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/compliance/repository"
)

type listCache struct {
	client redislib.UniversalClient
	ttl    time.Duration
}

// NewListCache stores owner list snapshots as JSON strings with a TTL. Each
// list has a generation counter; Set runs under WATCH on it so a snapshot
// fetched before an invalidation is never written back.
func NewListCache(client redislib.UniversalClient, ttl time.Duration) repository.ListCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &listCache{client: client, ttl: ttl}
}

func (c *listCache) Get(ctx context.Context, key repository.CacheKey, dest interface{}) (bool, error) {
	payload, err := c.client.Get(ctx, key.String()).Bytes()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		// drop undecodable entries so the next read refetches
		_ = c.client.Del(ctx, key.String()).Err()
		return false, nil
	}
	return true, nil
}

func (c *listCache) Generation(ctx context.Context, key repository.CacheKey) (uint64, error) {
	return generation(ctx, c.client, key)
}

type getter interface {
	Get(ctx context.Context, key string) *redislib.StringCmd
}

func generation(ctx context.Context, client getter, key repository.CacheKey) (uint64, error) {
	gen, err := client.Get(ctx, key.GenerationKey()).Uint64()
	if errors.Is(err, redislib.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *listCache) Set(ctx context.Context, key repository.CacheKey, gen uint64, value interface{}) (bool, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return false, err
	}

	stored := false
	err = c.client.Watch(ctx, func(tx *redislib.Tx) error {
		current, err := generation(ctx, tx, key)
		if err != nil {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
			pipe.Set(ctx, key.String(), payload, c.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, key.GenerationKey())

	if errors.Is(err, redislib.TxFailedErr) {
		// invalidated between the check and EXEC
		return false, nil
	}
	return stored, err
}

// Invalidate ignores ctx cancellation so a completed write always drops its stale list.
func (c *listCache) Invalidate(ctx context.Context, keys ...repository.CacheKey) error {
	if len(keys) == 0 {
		return nil
	}
	ctx = context.WithoutCancel(ctx)
	_, err := c.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		for _, k := range keys {
			pipe.Del(ctx, k.String())
			pipe.Incr(ctx, k.GenerationKey())
		}
		return nil
	})
	return err
}
