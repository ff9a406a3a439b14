package shopify

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Shopify's REST Admin API allows a sustained 2 requests/second per store
// with a bucket of 40. The defaults stay well under that.
const (
	DefaultRateLimit = 2.0
	DefaultRateBurst = 4
)

// RateLimiter keeps one token bucket per shop
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	logger   zerolog.Logger
}

// NewRateLimiter creates a limiter with the default Shopify budget
func NewRateLimiter(logger zerolog.Logger) *RateLimiter {
	return NewRateLimiterWithBudget(DefaultRateLimit, DefaultRateBurst, logger)
}

// NewRateLimiterWithBudget creates a limiter allowing perSecond requests per shop
func NewRateLimiterWithBudget(perSecond float64, burst int, logger zerolog.Logger) *RateLimiter {
	if perSecond <= 0 {
		perSecond = DefaultRateLimit
	}
	if burst <= 0 {
		burst = DefaultRateBurst
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		logger:   logger,
	}
}

// Wait blocks until the shop may issue another request or ctx is done
func (r *RateLimiter) Wait(ctx context.Context, shop string) error {
	limiter := r.limiterFor(shop)
	if limiter.Tokens() < 1 {
		r.logger.Debug().Str("shop", shop).Msg("Shopify rate limit reached, waiting")
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

func (r *RateLimiter) limiterFor(shop string) *rate.Limiter {
	key := ShopName(shop)

	r.mu.Lock()
	defer r.mu.Unlock()

	limiter, ok := r.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(r.limit, r.burst)
		r.limiters[key] = limiter
	}
	return limiter
}

// ShopName normalizes "acme", "acme.myshopify.com" and "https://acme.myshopify.com/"
// to the bare shop name
func ShopName(shop string) string {
	s := strings.ToLower(strings.TrimSpace(shop))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimSuffix(s, "/")
	return strings.TrimSuffix(s, ".myshopify.com")
}
