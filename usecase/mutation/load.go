package mutation

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/compliance/domain"
	"github.com/fastygo/compliance/repository"
)

// Load returns the owner's full list of entity, reading through the cache.
// Cache errors degrade to a direct fetch. The fetched list is only cached
// when no write invalidated the key while it was in flight.
func Load[T any](ctx context.Context, p *Pipeline, owner domain.Identity, entity domain.Entity, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if !owner.Valid() {
		return nil, domain.ErrUnauthorized
	}
	key := repository.CacheKey{Entity: entity, OwnerID: owner.UserID}
	log := p.logger.With(zap.String("key", key.String()))

	var rows []T
	hit, err := p.cache.Get(ctx, key, &rows)
	if err != nil {
		log.Warn("list cache read failed", zap.Error(err))
	}
	if hit {
		return rows, nil
	}

	generation, genErr := p.cache.Generation(ctx, key)
	if genErr != nil {
		log.Warn("list cache generation read failed", zap.Error(genErr))
	}

	rows, err = fetch(ctx)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []T{}
	}
	if genErr != nil {
		return rows, nil
	}

	stored, err := p.cache.Set(ctx, key, generation, rows)
	switch {
	case err != nil:
		log.Warn("list cache write failed", zap.Error(err))
	case !stored:
		log.Debug("list changed while fetching; result not cached")
	}
	return rows, nil
}
