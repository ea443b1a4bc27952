package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	goRedis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/compliance/internal/config"
	"github.com/fastygo/compliance/internal/infrastructure/boltstore"
	"github.com/fastygo/compliance/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/compliance/internal/infrastructure/postgres"
	sb "github.com/fastygo/compliance/internal/infrastructure/supabase"
	"github.com/fastygo/compliance/internal/services/lifecycle"
	"github.com/fastygo/compliance/repository"
	boltRepo "github.com/fastygo/compliance/repository/bolt"
	"github.com/fastygo/compliance/repository/postgres"
	redisRepo "github.com/fastygo/compliance/repository/redis"
	supabaseRepo "github.com/fastygo/compliance/repository/supabase"
)

// gateway is the remote data store chosen by GATEWAY_DRIVER.
type gateway struct {
	clients    repository.ClientRepository
	tasks      repository.TaskRepository
	documents  repository.DocumentRepository
	profiles   repository.ProfileRepository
	dependency monitor.Dependency
}

func newSupabaseClient(cfg *config.Config, logger *zap.Logger) (*sb.Client, error) {
	if cfg.Supabase.URL == "" {
		return nil, nil
	}
	return sb.New(sb.Config{
		URL:        cfg.Supabase.URL,
		AnonKey:    cfg.Supabase.AnonKey,
		ServiceKey: cfg.Supabase.ServiceKey,
		Timeout:    cfg.Supabase.Timeout,
	}, logger.Named("supabase"))
}

func newGateway(ctx context.Context, cfg *config.Config, supabase *sb.Client, manager *lifecycle.Manager, logger *zap.Logger) (*gateway, error) {
	switch cfg.Gateway.Driver {
	case config.GatewaySupabase:
		if supabase == nil {
			return nil, fmt.Errorf("supabase gateway is not configured")
		}
		return &gateway{
			clients:    supabaseRepo.NewClientRepository(supabase),
			tasks:      supabaseRepo.NewTaskRepository(supabase),
			documents:  supabaseRepo.NewDocumentRepository(supabase),
			profiles:   supabaseRepo.NewProfileRepository(supabase),
			dependency: monitor.Dependency{Name: "supabase", Required: true, Check: monitor.PingCheck(supabase)},
		}, nil

	case config.GatewayPostgres:
		if _, err := pgInfra.RunMigrations(cfg.Database, cfg.Migrations, logger); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		manager.Register("postgres", func(context.Context) error {
			pgInfra.Close(pool, logger)
			return nil
		})
		return &gateway{
			clients:    postgres.NewClientRepository(pool),
			tasks:      postgres.NewTaskRepository(pool),
			documents:  postgres.NewDocumentRepository(pool),
			profiles:   postgres.NewProfileRepository(pool),
			dependency: postgresDependency(pool),
		}, nil
	}
	return nil, fmt.Errorf("unknown gateway driver %q", cfg.Gateway.Driver)
}

func postgresDependency(pool *pgxpool.Pool) monitor.Dependency {
	return monitor.Dependency{
		Name:     "postgresql",
		Required: true,
		Check: func(ctx context.Context) (map[string]interface{}, error) {
			if err := pool.Ping(ctx); err != nil {
				return nil, err
			}
			return pgInfra.Stats(pool), nil
		},
	}
}

// newListCache builds the cache selected by CACHE_DRIVER. The bolt store is
// returned so the scheduler can sweep it.
func newListCache(cfg *config.Config, redisClient *goRedis.Client, manager *lifecycle.Manager) (repository.ListCache, *boltstore.Store, error) {
	switch cfg.Cache.Driver {
	case config.CacheBolt:
		store, err := boltstore.Open(cfg.Cache.Path, cfg.Cache.Bucket)
		if err != nil {
			return nil, nil, fmt.Errorf("bolt cache: %w", err)
		}
		manager.RegisterCloser("bolt_cache", store)
		return boltRepo.NewListCache(store, cfg.Cache.TTL), store, nil
	case config.CacheRedis:
		if redisClient == nil {
			return nil, nil, fmt.Errorf("redis cache requires a redis connection")
		}
		return redisRepo.NewListCache(redisClient, cfg.Cache.TTL), nil, nil
	default:
		return repository.NopListCache{}, nil, nil
	}
}

func boltDependency(store *boltstore.Store) monitor.Dependency {
	return monitor.Dependency{
		Name: "bolt_cache",
		Check: func(context.Context) (map[string]interface{}, error) {
			size, err := store.Size()
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"entries": size, "open_tx": store.Stats().OpenTxN}, nil
		},
	}
}

func redisDependency(client *goRedis.Client) monitor.Dependency {
	return monitor.Dependency{
		Name: "redis",
		Check: func(ctx context.Context) (map[string]interface{}, error) {
			return nil, client.Ping(ctx).Err()
		},
	}
}
