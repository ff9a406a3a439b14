package repository

import (
	"context"
	"fmt"

	"catalog-sync-shopify-layer/internal/domain"
	"catalog-sync-shopify-layer/internal/infrastructure/repository/entity"
	"catalog-sync-shopify-layer/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSyncRunRepository stores sync reports in MongoDB
type MongoSyncRunRepository struct {
	collection *mongo.Collection
}

// NewMongoSyncRunRepository creates a new MongoDB sync run repository
func NewMongoSyncRunRepository(db *mongo.Database) *MongoSyncRunRepository {
	return &MongoSyncRunRepository{
		collection: db.Collection("sync_runs"),
	}
}

var _ ports.SyncRunRepository = (*MongoSyncRunRepository)(nil)

// EnsureIndexes creates the lookup index used by ListByShop
func (r *MongoSyncRunRepository) EnsureIndexes(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "shop", Value: 1}, {Key: "startedAt", Value: -1}},
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("failed to create sync run index: %w", err)
	}
	return nil
}

// Save inserts a finished report
func (r *MongoSyncRunRepository) Save(ctx context.Context, report *domain.SyncReport) error {
	doc := entity.MongoSyncRunDocFromDomain(report)
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to save sync run: %w", err)
	}
	return nil
}

// ListByShop returns the most recent reports of a shop, newest first
func (r *MongoSyncRunRepository) ListByShop(ctx context.Context, shop string, limit int) ([]*domain.SyncReport, error) {
	opts := options.Find().SetSort(bson.D{{Key: "startedAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"shop": shop}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync runs: %w", err)
	}
	defer cursor.Close(ctx)

	reports := []*domain.SyncReport{}
	for cursor.Next(ctx) {
		var doc entity.MongoSyncRunDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode sync run: %w", err)
		}
		reports = append(reports, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return reports, nil
}
