package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"catalog-sync-shopify-layer/internal/domain"
	"catalog-sync-shopify-layer/internal/ports"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const lockKeyPrefix = "catalog-sync:lock:"

// releaseScript deletes the lock only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// refreshScript pushes the lock expiry back only if it still holds our token
var refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisSyncLocker implements SyncLocker with SET NX + TTL.
// A held lock is refreshed every ttl/3 until it is released.
type RedisSyncLocker struct {
	client redis.UniversalClient
	logger zerolog.Logger
}

// NewRedisSyncLocker creates a redis backed per-shop lock
func NewRedisSyncLocker(client redis.UniversalClient, logger zerolog.Logger) ports.SyncLocker {
	return &RedisSyncLocker{client: client, logger: logger}
}

// Acquire takes the shop lock or returns domain.ErrSyncInProgress
func (l *RedisSyncLocker) Acquire(ctx context.Context, shop string, ttl time.Duration) (func(context.Context) error, error) {
	key := lockKeyPrefix + shop
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, &domain.PersistenceError{Op: "acquire sync lock", Err: err}
	}
	if !ok {
		return nil, domain.ErrSyncInProgress
	}

	l.logger.Debug().Str("shop", shop).Dur("ttl", ttl).Msg("Sync lock acquired")

	keepCtx, stopKeepalive := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.keepalive(keepCtx, shop, key, token, ttl)
	}()

	var once sync.Once
	release := func(ctx context.Context) error {
		var err error
		once.Do(func() {
			stopKeepalive()
			<-done
			if runErr := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); runErr != nil {
				err = fmt.Errorf("failed to release sync lock: %w", runErr)
				return
			}
			l.logger.Debug().Str("shop", shop).Msg("Sync lock released")
		})
		return err
	}
	return release, nil
}

// Refresh extends a lock held under token to ttl. It reports false when the
// lock expired or belongs to someone else.
func (l *RedisSyncLocker) Refresh(ctx context.Context, shop, token string, ttl time.Duration) (bool, error) {
	n, err := refreshScript.Run(ctx, l.client, []string{lockKeyPrefix + shop}, token, ttl.Milliseconds()).Int64()
	if err != nil {
		return false, &domain.PersistenceError{Op: "refresh sync lock", Err: err}
	}
	return n == 1, nil
}

func (l *RedisSyncLocker) keepalive(ctx context.Context, shop, key, token string, ttl time.Duration) {
	interval := ttl / 3
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			held, err := l.Refresh(ctx, shop, token, ttl)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Warn().Err(err).Str("shop", shop).Msg("Failed to refresh sync lock")
				continue
			}
			if !held {
				l.logger.Warn().Str("shop", shop).Str("key", key).Msg("Sync lock lost before release")
				return
			}
		}
	}
}
