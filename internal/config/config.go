package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port   string
	AppURL string

	// MongoDB
	MongoURI      string
	MongoDatabase string

	// Redis, optional. Without it syncs run unlocked and dedup is off.
	RedisURL string

	// Encryption
	EncryptionKey string

	// Inventory API
	InventoryTimeout      time.Duration
	InventoryArticleLimit int
	InventoryMarketPlace  string

	// Sync
	SyncConcurrency      int
	SyncTimeout          time.Duration
	SyncLockTTL          time.Duration
	SyncDedup            bool
	SyncSchedulerEnabled bool
	SyncInterval         time.Duration

	// Shopify
	ShopifyRateLimit  float64
	ShopifyRateBurst  int
	ShopifyAPIVersion string

	LogLevel string
}

// Load reads the configuration from the environment, after loading .env if present
func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		Port:                  getEnv("PORT", "8080"),
		AppURL:                getEnv("APP_URL", "http://localhost:8080"),
		MongoURI:              getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:         getEnv("MONGODB_DATABASE", "catalog_sync"),
		RedisURL:              getEnv("REDIS_URL", ""),
		EncryptionKey:         getEnv("ENCRYPTION_KEY", ""),
		InventoryTimeout:      getEnvAsDuration("INVENTORY_TIMEOUT", 30*time.Second),
		InventoryArticleLimit: getEnvAsInt("INVENTORY_ARTICLE_LIMIT", 10000),
		InventoryMarketPlace:  getEnv("INVENTORY_MARKETPLACE", "4"),
		SyncConcurrency:       getEnvAsInt("SYNC_CONCURRENCY", 8),
		SyncTimeout:           getEnvAsDuration("SYNC_TIMEOUT", 10*time.Minute),
		SyncLockTTL:           getEnvAsDuration("SYNC_LOCK_TTL", 15*time.Minute),
		SyncDedup:             getEnvAsBool("SYNC_DEDUP", false),
		SyncSchedulerEnabled:  getEnvAsBool("SYNC_SCHEDULER_ENABLED", false),
		SyncInterval:          getEnvAsDuration("SYNC_INTERVAL", 10*time.Minute),
		ShopifyRateLimit:      getEnvAsFloat("SHOPIFY_RATE_LIMIT", 2),
		ShopifyRateBurst:      getEnvAsInt("SHOPIFY_RATE_BURST", 4),
		ShopifyAPIVersion:     getEnv("SHOPIFY_API_VERSION", "2024-10"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
