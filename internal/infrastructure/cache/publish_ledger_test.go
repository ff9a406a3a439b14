package cache

import (
	"context"
	"testing"

	"catalog-sync-shopify-layer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishLedger_RoundTrip(t *testing.T) {
	mr, client := newTestRedis(t)
	ledger := NewRedisPublishLedger(client)
	ctx := context.Background()

	published, err := ledger.IsPublished(ctx, "acme", "1")
	require.NoError(t, err)
	assert.False(t, published)

	require.NoError(t, ledger.MarkPublished(ctx, "acme", "1", 632910392))

	published, err = ledger.IsPublished(ctx, "acme", "1")
	require.NoError(t, err)
	assert.True(t, published)
	assert.Equal(t, "632910392", mr.HGet(ledgerKeyPrefix+"acme", "1"))

	// the ledger is per shop and per article
	published, err = ledger.IsPublished(ctx, "other", "1")
	require.NoError(t, err)
	assert.False(t, published)
	published, err = ledger.IsPublished(ctx, "acme", "2")
	require.NoError(t, err)
	assert.False(t, published)
}

func TestPublishLedger_RedisDown(t *testing.T) {
	mr, client := newTestRedis(t)
	ledger := NewRedisPublishLedger(client)
	mr.SetError("ERR server unavailable")

	var persistenceErr *domain.PersistenceError
	_, err := ledger.IsPublished(context.Background(), "acme", "1")
	assert.ErrorAs(t, err, &persistenceErr)
	err = ledger.MarkPublished(context.Background(), "acme", "1", 1)
	assert.ErrorAs(t, err, &persistenceErr)
}
