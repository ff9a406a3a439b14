package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"catalog-sync-shopify-layer/internal/application"
	"catalog-sync-shopify-layer/internal/config"
	"catalog-sync-shopify-layer/internal/infrastructure/api"
	"catalog-sync-shopify-layer/internal/infrastructure/cache"
	"catalog-sync-shopify-layer/internal/infrastructure/encryption"
	"catalog-sync-shopify-layer/internal/infrastructure/inventory"
	"catalog-sync-shopify-layer/internal/infrastructure/metrics"
	"catalog-sync-shopify-layer/internal/infrastructure/pubsub"
	"catalog-sync-shopify-layer/internal/infrastructure/repository"
	shopifyinfra "catalog-sync-shopify-layer/internal/infrastructure/shopify"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Container owns the connections and services shared by the server and the CLI
type Container struct {
	Config *config.Config
	Logger zerolog.Logger

	Mongo *mongo.Client
	Redis *redis.Client

	Registry    *prometheus.Registry
	Events      *pubsub.SyncPubSub
	Credentials *application.CredentialsService
	Products    *application.ProductService
	Sync        *application.SyncService
	Scheduler   *application.SyncScheduler
}

// New connects to MongoDB (and Redis when configured) and builds every service
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Container, error) {
	if cfg.EncryptionKey == "" {
		return nil, errors.New("ENCRYPTION_KEY environment variable is required")
	}
	encryptionService, err := encryption.NewService(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize encryption service: %w", err)
	}

	// Connect to MongoDB
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		_ = mongoClient.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	db := mongoClient.Database(cfg.MongoDatabase)

	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Mongo:    mongoClient,
		Registry: prometheus.NewRegistry(),
		Events:   pubsub.NewSyncPubSub(logger),
	}
	c.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize repositories
	credentialsRepo := repository.NewMongoCredentialsRepository(db)
	runRepo := repository.NewMongoSyncRunRepository(db)
	if err := credentialsRepo.EnsureIndexes(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to create credentials indexes")
	}
	if err := runRepo.EnsureIndexes(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to create sync run indexes")
	}

	syncOpts := application.SyncOptions{
		Concurrency: cfg.SyncConcurrency,
		LockTTL:     cfg.SyncLockTTL,
		Runs:        runRepo,
		Events:      c.Events,
		Metrics:     metrics.NewSyncMetrics(c.Registry),
	}

	if cfg.RedisURL != "" {
		redisClient, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			c.Close(context.Background())
			return nil, err
		}
		c.Redis = redisClient
		syncOpts.Locker = cache.NewRedisSyncLocker(redisClient, logger)
		if cfg.SyncDedup {
			syncOpts.Ledger = cache.NewRedisPublishLedger(redisClient)
		}
	} else {
		logger.Warn().Msg("REDIS_URL not set, syncs run without a shop lock")
		if cfg.SyncDedup {
			logger.Warn().Msg("SYNC_DEDUP requires REDIS_URL, dedup disabled")
		}
	}

	// Initialize rate limiter and retry config for Shopify API
	rateLimiter := shopifyinfra.NewRateLimiterWithBudget(cfg.ShopifyRateLimit, cfg.ShopifyRateBurst, logger)
	publisher := shopifyinfra.NewPublisher(cfg.ShopifyAPIVersion, rateLimiter, shopifyinfra.DefaultRetryConfig(), logger)

	inventoryClient := inventory.NewClient(inventory.Options{
		Timeout:      cfg.InventoryTimeout,
		ArticleLimit: cfg.InventoryArticleLimit,
		MarketPlace:  cfg.InventoryMarketPlace,
	}, logger)

	// Initialize application services
	c.Credentials = application.NewCredentialsService(credentialsRepo, encryptionService, logger)
	c.Products = application.NewProductService(publisher, logger)
	c.Sync = application.NewSyncService(inventoryClient, publisher, c.Credentials, syncOpts, logger)
	c.Scheduler = application.NewSyncScheduler(application.SchedulerConfig{
		Enabled:  cfg.SyncSchedulerEnabled,
		Interval: cfg.SyncInterval,
	}, c.Sync, c.Credentials, logger)

	return c, nil
}

// Router builds the HTTP surface over the container's services
func (c *Container) Router() http.Handler {
	return api.NewRouter(api.RouterDeps{
		Credentials:    c.Credentials,
		Sync:           c.Sync,
		Products:       c.Products,
		Events:         c.Events,
		MetricsHandler: promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{Registry: c.Registry}),
		SyncTimeout:    c.Config.SyncTimeout,
		Logger:         c.Logger,
	})
}

// Close releases the connections
func (c *Container) Close(ctx context.Context) {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn().Err(err).Msg("Failed to close redis client")
		}
	}
	if c.Mongo != nil {
		if err := c.Mongo.Disconnect(ctx); err != nil {
			c.Logger.Warn().Err(err).Msg("Failed to disconnect from MongoDB")
		}
	}
}
