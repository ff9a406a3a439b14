package repository

import (
	"context"
	"testing"
	"time"

	"catalog-sync-shopify-layer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoSyncRunRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mt.Run("save", func(mt *mtest.T) {
		repo := NewMongoSyncRunRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.Save(context.Background(), &domain.SyncReport{
			ID:        "run-1",
			Shop:      "acme",
			State:     domain.SyncStateDone,
			StartedAt: started,
			Articles:  1,
			Published: 1,
			Outcomes: []domain.ArticleOutcome{
				{ArticleID: "1", Title: "Widget", Status: domain.OutcomePublished, ProductID: 42, Price: "9.99"},
			},
		})
		require.NoError(t, err)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(t, "sync_runs", cmd.Lookup("insert").StringValue())
		docs, err := cmd.Lookup("documents").Array().Values()
		require.NoError(t, err)
		require.Len(t, docs, 1)
		doc := docs[0].Document()
		assert.Equal(t, "run-1", doc.Lookup("_id").StringValue())
		assert.Equal(t, "DONE", doc.Lookup("state").StringValue())
		assert.Equal(t, "published", doc.Lookup("outcomes", "0", "status").StringValue())
	})

	mt.Run("list by shop newest first", func(mt *mtest.T) {
		repo := NewMongoSyncRunRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "catalog.sync_runs", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "run-2"},
				{Key: "shop", Value: "acme"},
				{Key: "state", Value: "FAILED"},
				{Key: "startedAt", Value: started.Add(time.Hour)},
				{Key: "error", Value: "no articles"},
			},
			bson.D{
				{Key: "_id", Value: "run-1"},
				{Key: "shop", Value: "acme"},
				{Key: "state", Value: "DONE"},
				{Key: "startedAt", Value: started},
			},
		))

		reports, err := repo.ListByShop(context.Background(), "acme", 5)
		require.NoError(t, err)
		require.Len(t, reports, 2)
		assert.Equal(t, "run-2", reports[0].ID)
		assert.Equal(t, domain.SyncStateFailed, reports[0].State)
		assert.Equal(t, "no articles", reports[0].Error)
		assert.Equal(t, "run-1", reports[1].ID)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(t, "acme", cmd.Lookup("filter", "shop").StringValue())
		assert.Equal(t, int64(-1), cmd.Lookup("sort", "startedAt").AsInt64())
		assert.Equal(t, int64(5), cmd.Lookup("limit").AsInt64())
	})

	mt.Run("list by shop empty", func(mt *mtest.T) {
		repo := NewMongoSyncRunRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "catalog.sync_runs", mtest.FirstBatch))

		reports, err := repo.ListByShop(context.Background(), "acme", 0)
		require.NoError(t, err)
		assert.NotNil(t, reports)
		assert.Empty(t, reports)
	})
}
