package container

import (
	"context"
	"fmt"

	"storefront/pagegen/internal/config"
	"storefront/pagegen/internal/metrics"
	"storefront/pagegen/internal/provider"
	"storefront/pagegen/internal/proxy"
	"storefront/pagegen/internal/queue"
	"storefront/pagegen/internal/repository"
	"storefront/pagegen/internal/route"
	"storefront/pagegen/internal/server"
	"storefront/pagegen/internal/service"
	"storefront/pagegen/internal/state"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config       *config.Config
	Provider     provider.StaticPathProvider
	Repository   repository.PageRepository
	Queue        queue.Queue
	StateManager state.StateManager
	Metrics      *metrics.Metrics

	Service *service.Service

	db    *pgxpool.Pool
	redis *redis.Client
}

// NewOffline wires only what a registration pass needs: no Redis, no Postgres
func NewOffline(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config:  cfg,
		Metrics: metrics.New(prometheus.DefaultRegisterer),
	}

	pathProvider, err := newProvider(ctx, cfg.Paths)
	if err != nil {
		return nil, err
	}
	container.Provider = pathProvider

	container.Service = service.NewService(
		cfg.Store.StoreID,
		pathProvider,
		nil,
		nil,
		nil,
		container.Metrics,
		route.Options{SkipUnroutable: cfg.Paths.SkipUnroutable},
		cfg.Redis.MinIdleTime,
	)

	return container, nil
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config:  cfg,
		Metrics: metrics.New(prometheus.DefaultRegisterer),
	}

	pathProvider, err := newProvider(ctx, cfg.Paths)
	if err != nil {
		return nil, err
	}
	container.Provider = pathProvider

	db, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	container.db = db
	container.Repository = repository.NewPageRepository(db)

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})
	container.redis = rdb

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info("✅ Connected to Redis successfully")

	redisQueue, err := queue.NewRedisQueue(ctx, rdb, cfg.Store.StoreID, cfg.Redis.ConsumerGroup)
	if err != nil {
		container.Close()
		return nil, err
	}
	container.Queue = redisQueue
	container.StateManager = state.NewRedisStateManager(rdb)

	container.Service = service.NewService(
		cfg.Store.StoreID,
		pathProvider,
		redisQueue,
		container.Repository,
		container.StateManager,
		container.Metrics,
		route.Options{SkipUnroutable: cfg.Paths.SkipUnroutable},
		cfg.Redis.MinIdleTime,
	)

	return container, nil
}

func newProvider(ctx context.Context, cfg config.PathsConfig) (provider.StaticPathProvider, error) {
	var providers []provider.StaticPathProvider

	if len(cfg.Static) > 0 {
		providers = append(providers, provider.NewStaticProvider(cfg.Static))
	}

	if cfg.SitemapURL != "" {
		proxySupplier, err := proxy.NewSupplier(ctx, cfg.Proxies, cfg.SitemapURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize proxy supplier: %w", err)
		}
		providers = append(providers, provider.NewSitemapProvider(cfg, proxySupplier))
	}

	return provider.NewMultiProvider(providers...), nil
}

// Build runs one registration pass and publishes it
func (c *Container) Build(ctx context.Context) error {
	info, err := c.Service.Build(ctx)
	if err != nil {
		return err
	}

	log.Infof("✅ Build %s: %d static paths, %d pages, %d redirects, %d skipped",
		info.BuildID, info.StaticPaths, info.Pages, info.Redirects, len(info.SkippedPaths))
	return nil
}

// RunWorkers persists published registrations until ctx is cancelled
func (c *Container) RunWorkers(ctx context.Context) error {
	return c.Service.RunWorkers(ctx, c.Config.Redis.Workers)
}

// Serve loads the persisted registration and resolves pages over HTTP
func (c *Container) Serve(ctx context.Context) error {
	if err := c.Repository.EnsureSchema(ctx); err != nil {
		return err
	}

	registration, err := c.Service.PublishedRegistration(ctx)
	if err != nil {
		return err
	}

	srv := server.New(c.Config.Store, registration, c.Metrics, promhttp.Handler())
	return srv.ListenAndServe(ctx, c.Config.Server.Addr())
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			return err
		}
	}

	log.Info("Container shut down successfully")
	return nil
}
