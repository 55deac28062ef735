package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"ROAMMATE_BACK-END/internal/access"
	"ROAMMATE_BACK-END/internal/config"
	"ROAMMATE_BACK-END/internal/handlers"
	"ROAMMATE_BACK-END/internal/identity"
	"ROAMMATE_BACK-END/internal/logger"
	"ROAMMATE_BACK-END/internal/repository"
)

// backends holds the stores selected by configuration and the clients behind them.
type backends struct {
	listings repository.ListingRepository
	profiles repository.ProfileRepository
	users    identity.UserStore
	sessions access.Store
	checks   map[string]handlers.PingFunc

	pool  *pgxpool.Pool
	redis *redis.Client
	mongo *mongo.Client
}

// bootstrap loads configuration and builds the logger shared by all commands.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.App.Env, cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	for _, w := range cfg.Warnings() {
		log.Warn("configuration", zap.String("warning", w))
	}
	return cfg, log, nil
}

// openPool connects to Postgres the way the service has always done it:
// simple protocol for PgBouncer, small pool, ping at boot.
func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pcfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pcfg.ConnConfig.RuntimeParams["application_name"] = "roammate-backend"
	pcfg.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%d", cfg.Database.QueryTimeout.Milliseconds())
	pcfg.MaxConns = cfg.Database.MaxConns
	pcfg.MinConns = cfg.Database.MinConns
	pcfg.MaxConnLifetime = cfg.Database.MaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

func openBackends(ctx context.Context, cfg *config.Config, log *zap.Logger) (*backends, error) {
	b := &backends{checks: map[string]handlers.PingFunc{}}

	if cfg.UsesPostgres() {
		pool, err := openPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		b.pool = pool
		b.checks["db"] = pool.Ping
		log.Info("connected to postgres", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.Name))
	}

	switch cfg.Backends.Catalog {
	case config.BackendPostgres:
		b.listings = repository.NewPGListingRepository(b.pool)
	case config.BackendMongo:
		client, err := repository.ConnectMongo(ctx, cfg.Mongo.URI, cfg.Mongo.ConnectTimeout)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.mongo = client
		b.checks["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		b.listings = repository.NewMongoListingRepository(client.Database(cfg.Mongo.Database))
		log.Info("connected to mongo", zap.String("database", cfg.Mongo.Database))
	default:
		repo, err := repository.NewFixtureRepository()
		if err != nil {
			b.Close()
			return nil, err
		}
		b.listings = repo
	}

	if cfg.Backends.Profile == config.BackendPostgres {
		b.profiles = repository.NewPGProfileRepository(b.pool)
	} else {
		b.profiles = repository.NewMemoryProfileRepository()
	}

	if cfg.Backends.Identity == config.BackendPostgres {
		b.users = identity.NewPGUserStore(b.pool)
	} else {
		b.users = identity.NewMemoryUserStore()
	}

	if cfg.Backends.Session == config.BackendRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = client.Close()
			b.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		b.redis = client
		b.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		b.sessions = access.NewRedisStore(client, cfg.Session.RedisPrefix, cfg.Session.TTL)
		log.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		b.sessions = access.NewMemoryStore()
	}

	log.Info("storage backends",
		zap.String("catalog", cfg.Backends.Catalog),
		zap.String("profile", cfg.Backends.Profile),
		zap.String("identity", cfg.Backends.Identity),
		zap.String("session", cfg.Backends.Session),
	)
	return b, nil
}

// Close releases every open client. Safe on a partially built value.
func (b *backends) Close() {
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = b.mongo.Disconnect(ctx)
		cancel()
	}
	if b.pool != nil {
		b.pool.Close()
	}
}
