package entity

import (
	"testing"
	"time"

	"catalog-sync-shopify-layer/internal/domain"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMongoCredentialsDoc_Conversion(t *testing.T) {
	id := primitive.NewObjectID()
	now := time.Now().UTC().Truncate(time.Millisecond)
	creds := &domain.APICredentials{
		ID:        id.Hex(),
		Shop:      "acme",
		APIURL:    "https://ext.example",
		APIID:     "A1",
		APIKey:    "sealed-key",
		AutoSync:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	doc := MongoCredentialsDocFromDomain(creds)
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, creds, doc.ToDomain())
}

func TestMongoCredentialsDoc_InvalidID(t *testing.T) {
	doc := MongoCredentialsDocFromDomain(&domain.APICredentials{ID: "not-hex", Shop: "acme"})
	assert.True(t, doc.ID.IsZero())
}

func TestMongoSyncRunDoc_Conversion(t *testing.T) {
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	report := &domain.SyncReport{
		ID:         "run-1",
		Shop:       "acme",
		State:      domain.SyncStateDone,
		Trigger:    "http",
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
		Articles:   2,
		Published:  1,
		Failed:     1,
		Outcomes: []domain.ArticleOutcome{
			{ArticleID: "1", Title: "Widget", Status: domain.OutcomePublished, ProductID: 42, Price: "9.99"},
			{ArticleID: "2", Title: "Gadget", Status: domain.OutcomeFailed, Stage: domain.StagePrice, Error: "boom"},
		},
	}

	doc := MongoSyncRunDocFromDomain(report)
	assert.Equal(t, "DONE", doc.State)
	assert.Equal(t, "price", doc.Outcomes[1].Stage)
	assert.Equal(t, report, doc.ToDomain())
}

func TestMongoCredentialsDoc_UpsertUpdate(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	doc := MongoCredentialsDocFromDomain(&domain.APICredentials{
		Shop:        "acme",
		APIURL:      "https://ext.example",
		APIID:       "A1",
		APIKey:      "sealed-key",
		AccessToken: "sealed-token",
		CreatedAt:   now,
		UpdatedAt:   now,
	})

	update := doc.UpsertUpdate()
	assert.Equal(t, bson.M{
		"apiUrl":    "https://ext.example",
		"apiId":     "A1",
		"apiKey":    "sealed-key",
		"updatedAt": now,
	}, update["$set"])
	assert.Equal(t, bson.M{
		"autoSync":  false,
		"createdAt": now,
	}, update["$setOnInsert"])
}
