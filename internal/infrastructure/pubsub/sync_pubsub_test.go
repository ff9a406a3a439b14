package pubsub

import (
	"context"
	"testing"
	"time"

	"catalog-sync-shopify-layer/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncPubSub_FiltersByShop(t *testing.T) {
	ps := NewSyncPubSub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	acme := ps.Subscribe(ctx, "acme")
	all := ps.Subscribe(ctx, "")

	ps.Publish(&domain.SyncEvent{Type: domain.SyncEventStarted, Shop: "acme"})
	ps.Publish(&domain.SyncEvent{Type: domain.SyncEventStarted, Shop: "other"})

	require.Len(t, acme.Events, 1)
	assert.Equal(t, "acme", (<-acme.Events).Shop)
	assert.Len(t, all.Events, 2)
}

func TestSyncPubSub_UnsubscribeOnCancel(t *testing.T) {
	ps := NewSyncPubSub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	ch := ps.Subscribe(ctx, "acme")
	assert.Equal(t, 1, ps.Subscribers())

	cancel()
	select {
	case <-ch.Done:
	case <-time.After(time.Second):
		t.Fatal("subscription was not closed")
	}
	assert.Equal(t, 0, ps.Subscribers())

	// publishing after removal must not panic
	ps.Publish(&domain.SyncEvent{Shop: "acme"})
}

func TestSyncPubSub_DropsWhenFull(t *testing.T) {
	ps := NewSyncPubSub(zerolog.Nop())
	ps.buffer = 1
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := ps.Subscribe(ctx, "acme")
	ps.Publish(&domain.SyncEvent{Shop: "acme", RunID: "1"})
	ps.Publish(&domain.SyncEvent{Shop: "acme", RunID: "2"})

	require.Len(t, ch.Events, 1)
	assert.Equal(t, "1", (<-ch.Events).RunID)
}
