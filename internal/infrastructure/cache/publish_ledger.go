package cache

import (
	"context"
	"strconv"

	"catalog-sync-shopify-layer/internal/domain"
	"catalog-sync-shopify-layer/internal/ports"

	"github.com/redis/go-redis/v9"
)

const ledgerKeyPrefix = "catalog-sync:published:"

// RedisPublishLedger records published articles in one hash per shop
// (field = article id, value = Shopify product id)
type RedisPublishLedger struct {
	client redis.UniversalClient
}

// NewRedisPublishLedger creates a redis backed publish ledger
func NewRedisPublishLedger(client redis.UniversalClient) ports.PublishLedger {
	return &RedisPublishLedger{client: client}
}

func (l *RedisPublishLedger) IsPublished(ctx context.Context, shop string, articleID domain.ArticleID) (bool, error) {
	ok, err := l.client.HExists(ctx, ledgerKeyPrefix+shop, articleID.String()).Result()
	if err != nil {
		return false, &domain.PersistenceError{Op: "read publish ledger", Err: err}
	}
	return ok, nil
}

func (l *RedisPublishLedger) MarkPublished(ctx context.Context, shop string, articleID domain.ArticleID, productID uint64) error {
	err := l.client.HSet(ctx, ledgerKeyPrefix+shop, articleID.String(), strconv.FormatUint(productID, 10)).Err()
	if err != nil {
		return &domain.PersistenceError{Op: "write publish ledger", Err: err}
	}
	return nil
}
