package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalog-sync-shopify-layer/internal/domain"
	"catalog-sync-shopify-layer/internal/infrastructure/repository/entity"
	"catalog-sync-shopify-layer/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCredentialsRepository implements CredentialsRepository using MongoDB
type MongoCredentialsRepository struct {
	collection *mongo.Collection
}

// NewMongoCredentialsRepository creates a new MongoDB credentials repository
func NewMongoCredentialsRepository(db *mongo.Database) *MongoCredentialsRepository {
	return &MongoCredentialsRepository{
		collection: db.Collection("api_credentials"),
	}
}

var _ ports.CredentialsRepository = (*MongoCredentialsRepository)(nil)

// EnsureIndexes creates the unique index on shop
func (r *MongoCredentialsRepository) EnsureIndexes(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "shop", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("shop_unique"),
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("failed to create credentials index: %w", err)
	}
	return nil
}

// GetByShop retrieves credentials by shop
func (r *MongoCredentialsRepository) GetByShop(ctx context.Context, shop string) (*domain.APICredentials, error) {
	var doc entity.MongoCredentialsDoc
	err := r.collection.FindOne(ctx, bson.M{"shop": shop}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials: %w", err)
	}
	return doc.ToDomain(), nil
}

// Upsert saves or updates credentials for a shop and returns the stored record
func (r *MongoCredentialsRepository) Upsert(ctx context.Context, creds *domain.APICredentials) (*domain.APICredentials, error) {
	now := time.Now().UTC()
	doc := entity.MongoCredentialsDocFromDomain(creds)
	doc.AutoSync = false
	doc.CreatedAt = now
	doc.UpdatedAt = now

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored entity.MongoCredentialsDoc
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"shop": doc.Shop}, doc.UpsertUpdate(), opts).Decode(&stored); err != nil {
		return nil, fmt.Errorf("failed to save credentials: %w", err)
	}
	return stored.ToDomain(), nil
}

// SetAutoSync updates the scheduler toggle of an existing record
func (r *MongoCredentialsRepository) SetAutoSync(ctx context.Context, shop string, enabled bool, accessToken string) (*domain.APICredentials, error) {
	set := bson.M{
		"autoSync":  enabled,
		"updatedAt": time.Now().UTC(),
	}
	if accessToken != "" {
		set["accessToken"] = accessToken
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc entity.MongoCredentialsDoc
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"shop": shop}, bson.M{"$set": set}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update auto sync: %w", err)
	}
	return doc.ToDomain(), nil
}

// List retrieves all stored credentials
func (r *MongoCredentialsRepository) List(ctx context.Context) ([]*domain.APICredentials, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "shop", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*domain.APICredentials
	for cursor.Next(ctx) {
		var doc entity.MongoCredentialsDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode credentials: %w", err)
		}
		out = append(out, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return out, nil
}

// Delete deletes the credentials of a shop
func (r *MongoCredentialsRepository) Delete(ctx context.Context, shop string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"shop": shop})
	if err != nil {
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrCredentialsNotFound
	}
	return nil
}
