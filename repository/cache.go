package repository

import (
	"context"
	"fmt"

	"github.com/fastygo/compliance/domain"
)

// CacheKey addresses one owner's fetched list of an entity type.
type CacheKey struct {
	Entity  domain.Entity
	OwnerID string
}

func (k CacheKey) String() string {
	return fmt.Sprintf("list:%s:%s", k.Entity, k.OwnerID)
}

// GenerationKey names the counter bumped each time the list is invalidated.
func (k CacheKey) GenerationKey() string {
	return fmt.Sprintf("listgen:%s:%s", k.Entity, k.OwnerID)
}

// ListCache stores whole fetched lists. Entries are replaced, never merged.
//
// Readers take the Generation before fetching and pass it to Set; Set stores
// nothing (and reports false) when an Invalidate happened in between, so a
// list fetched before a write can never outlive that write in the cache.
type ListCache interface {
	Get(ctx context.Context, key CacheKey, dest interface{}) (bool, error)
	Generation(ctx context.Context, key CacheKey) (uint64, error)
	Set(ctx context.Context, key CacheKey, generation uint64, value interface{}) (bool, error)
	Invalidate(ctx context.Context, keys ...CacheKey) error
}

// NopListCache never stores anything; every read misses.
type NopListCache struct{}

func (NopListCache) Get(context.Context, CacheKey, interface{}) (bool, error) { return false, nil }

func (NopListCache) Generation(context.Context, CacheKey) (uint64, error) { return 0, nil }

func (NopListCache) Set(context.Context, CacheKey, uint64, interface{}) (bool, error) {
	return false, nil
}

func (NopListCache) Invalidate(context.Context, ...CacheKey) error { return nil }
