package repository

import (
	"context"
	"testing"
	"time"

	"catalog-sync-shopify-layer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func credentialsDoc(id primitive.ObjectID, shop string, autoSync bool, token string) bson.D {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "shop", Value: shop},
		{Key: "apiUrl", Value: "https://ext.example"},
		{Key: "apiId", Value: "A1"},
		{Key: "apiKey", Value: "sealed-key"},
		{Key: "accessToken", Value: token},
		{Key: "autoSync", Value: autoSync},
		{Key: "createdAt", Value: created},
		{Key: "updatedAt", Value: created},
	}
}

func TestMongoCredentialsRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("upsert writes inventory fields and keeps scheduler fields on update", func(mt *mtest.T) {
		repo := NewMongoCredentialsRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: credentialsDoc(id, "acme", true, "sealed-token")},
		))

		stored, err := repo.Upsert(context.Background(), &domain.APICredentials{
			Shop:     "acme",
			APIURL:   "https://ext.example",
			APIID:    "A1",
			APIKey:   "sealed-key",
			AutoSync: true,
		})
		require.NoError(t, err)
		assert.Equal(t, id.Hex(), stored.ID)
		assert.True(t, stored.AutoSync)
		assert.Equal(t, "sealed-token", stored.AccessToken)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(t, "api_credentials", cmd.Lookup("findAndModify").StringValue())
		assert.Equal(t, "acme", cmd.Lookup("query", "shop").StringValue())
		assert.True(t, cmd.Lookup("upsert").Boolean())

		set := cmd.Lookup("update", "$set").Document()
		assert.Equal(t, "sealed-key", set.Lookup("apiKey").StringValue())
		assert.Equal(t, "A1", set.Lookup("apiId").StringValue())
		_, err = set.LookupErr("autoSync")
		assert.Error(t, err)
		_, err = set.LookupErr("accessToken")
		assert.Error(t, err)

		onInsert := cmd.Lookup("update", "$setOnInsert").Document()
		assert.False(t, onInsert.Lookup("autoSync").Boolean())
		_, err = onInsert.LookupErr("createdAt")
		assert.NoError(t, err)
	})

	mt.Run("get by shop", func(mt *mtest.T) {
		repo := NewMongoCredentialsRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "catalog.api_credentials", mtest.FirstBatch,
			credentialsDoc(id, "acme", false, ""),
		))

		creds, err := repo.GetByShop(context.Background(), "acme")
		require.NoError(t, err)
		require.NotNil(t, creds)
		assert.Equal(t, "acme", creds.Shop)
		assert.Equal(t, "https://ext.example", creds.APIURL)
		assert.Empty(t, creds.AccessToken)
	})

	mt.Run("get by shop missing", func(mt *mtest.T) {
		repo := NewMongoCredentialsRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "catalog.api_credentials", mtest.FirstBatch))

		creds, err := repo.GetByShop(context.Background(), "nobody")
		require.NoError(t, err)
		assert.Nil(t, creds)
	})

	mt.Run("set auto sync without token leaves token untouched", func(mt *mtest.T) {
		repo := NewMongoCredentialsRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: credentialsDoc(primitive.NewObjectID(), "acme", false, "sealed-token")},
		))

		creds, err := repo.SetAutoSync(context.Background(), "acme", false, "")
		require.NoError(t, err)
		assert.False(t, creds.AutoSync)

		set := mt.GetStartedEvent().Command.Lookup("update", "$set").Document()
		assert.False(t, set.Lookup("autoSync").Boolean())
		_, err = set.LookupErr("accessToken")
		assert.Error(t, err)
	})

	mt.Run("set auto sync missing shop", func(mt *mtest.T) {
		repo := NewMongoCredentialsRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		creds, err := repo.SetAutoSync(context.Background(), "nobody", true, "sealed-token")
		require.NoError(t, err)
		assert.Nil(t, creds)
	})

	mt.Run("list", func(mt *mtest.T) {
		repo := NewMongoCredentialsRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "catalog.api_credentials", mtest.FirstBatch,
			credentialsDoc(primitive.NewObjectID(), "acme", true, "sealed-token"),
			credentialsDoc(primitive.NewObjectID(), "globex", false, ""),
		))

		all, err := repo.List(context.Background())
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.True(t, all[0].CanAutoSync())
		assert.Equal(t, "globex", all[1].Shop)
	})

	mt.Run("delete", func(mt *mtest.T) {
		repo := NewMongoCredentialsRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)

		require.NoError(t, repo.Delete(context.Background(), "acme"))
		assert.ErrorIs(t, repo.Delete(context.Background(), "acme"), domain.ErrCredentialsNotFound)
	})

	mt.Run("write error", func(mt *mtest.T) {
		repo := NewMongoCredentialsRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11000,
			Message: "E11000 duplicate key error",
			Name:    "DuplicateKey",
		}))

		_, err := repo.Upsert(context.Background(), &domain.APICredentials{Shop: "acme", APIURL: "https://ext.example", APIID: "A1", APIKey: "k"})
		assert.ErrorContains(t, err, "failed to save credentials")
	})
}
