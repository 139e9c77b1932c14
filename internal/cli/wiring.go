package cli

import (
	"context"
	"time"

	"dutch-verb-trainer/internal/app"
	"dutch-verb-trainer/internal/catalogue"
	"dutch-verb-trainer/internal/config"
	"dutch-verb-trainer/internal/infra/memory"
	pgloader "dutch-verb-trainer/internal/infra/postgres"
	infraredis "dutch-verb-trainer/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// resources holds the shared clients opened from config.
type resources struct {
	redis *redis.Client
	pool  *pgxpool.Pool
}

func openResources(ctx context.Context, cfg config.Config) (*resources, error) {
	res := &resources{}
	if cfg.Redis.Addr != "" {
		res.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			res.Close()
			return nil, err
		}
		res.pool = pool
	}
	return res, nil
}

func (r *resources) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
}

// newCatalogue prefers Postgres as the source of verbs and Redis as the cache,
// falling back to the catalogue file and an in-process cache.
func (r *resources) newCatalogue(cfg config.Config) (app.Catalogue, error) {
	var loader app.VerbLoader
	if r.pool != nil {
		loader = pgloader.NewVerbLoader(r.pool)
	} else {
		verbs, err := catalogue.Load(cfg.Catalogue.Path)
		if err != nil {
			return nil, err
		}
		loader = memory.NewStaticVerbLoader(catalogue.Index(verbs))
	}

	ttl := config.TTLDuration(cfg.Catalogue.TTL, 10*time.Minute)
	if r.redis != nil {
		return infraredis.NewCatalogue(r.redis, loader, ttl), nil
	}
	return memory.NewCatalogue(loader, ttl), nil
}

// newKVStore returns the Redis store when configured, else process memory.
func (r *resources) newKVStore(cfg config.Config) app.KeyValueStore {
	if r.redis != nil {
		return infraredis.NewKVStore(r.redis, config.TTLDuration(cfg.Redis.TTL, 30*24*time.Hour))
	}
	return memory.NewKVStore()
}
