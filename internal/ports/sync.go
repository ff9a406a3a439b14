package ports

import (
	"context"
	"time"

	"catalog-sync-shopify-layer/internal/domain"
)

// SyncRunRepository stores finished sync reports
type SyncRunRepository interface {
	Save(ctx context.Context, report *domain.SyncReport) error
	ListByShop(ctx context.Context, shop string, limit int) ([]*domain.SyncReport, error)
}

// SyncLocker guards a shop against concurrent syncs.
// Acquire returns domain.ErrSyncInProgress when the lock is held elsewhere.
type SyncLocker interface {
	Acquire(ctx context.Context, shop string, ttl time.Duration) (release func(context.Context) error, err error)
}

// PublishLedger remembers which articles were already published to a shop
type PublishLedger interface {
	IsPublished(ctx context.Context, shop string, articleID domain.ArticleID) (bool, error)
	MarkPublished(ctx context.Context, shop string, articleID domain.ArticleID, productID uint64) error
}

// SyncEventPublisher broadcasts sync progress
type SyncEventPublisher interface {
	Publish(event *domain.SyncEvent)
}

// SyncMetrics records sync outcomes
type SyncMetrics interface {
	ObserveRun(report *domain.SyncReport)
}
