package entity

import (
	"time"

	"catalog-sync-shopify-layer/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoCredentialsDoc represents stored API credentials in MongoDB.
// APIKey and AccessToken hold ciphertext.
type MongoCredentialsDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Shop        string             `bson:"shop"`
	APIURL      string             `bson:"apiUrl"`
	APIID       string             `bson:"apiId"`
	APIKey      string             `bson:"apiKey"`
	AccessToken string             `bson:"accessToken,omitempty"`
	AutoSync    bool               `bson:"autoSync"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoCredentialsDoc) ToDomain() *domain.APICredentials {
	return &domain.APICredentials{
		ID:          d.ID.Hex(),
		Shop:        d.Shop,
		APIURL:      d.APIURL,
		APIID:       d.APIID,
		APIKey:      d.APIKey,
		AccessToken: d.AccessToken,
		AutoSync:    d.AutoSync,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// MongoCredentialsDocFromDomain converts a domain entity to a MongoDB document
func MongoCredentialsDocFromDomain(creds *domain.APICredentials) *MongoCredentialsDoc {
	doc := &MongoCredentialsDoc{
		Shop:        creds.Shop,
		APIURL:      creds.APIURL,
		APIID:       creds.APIID,
		APIKey:      creds.APIKey,
		AccessToken: creds.AccessToken,
		AutoSync:    creds.AutoSync,
		CreatedAt:   creds.CreatedAt,
		UpdatedAt:   creds.UpdatedAt,
	}

	if creds.ID != "" {
		if objID, err := primitive.ObjectIDFromHex(creds.ID); err == nil {
			doc.ID = objID
		}
	}

	return doc
}

// UpsertUpdate builds the update document of a credentials save. The inventory
// fields are always overwritten; the scheduler toggle and creation time are
// written only when the record is created.
func (d *MongoCredentialsDoc) UpsertUpdate() bson.M {
	return bson.M{
		"$set": bson.M{
			"apiUrl":    d.APIURL,
			"apiId":     d.APIID,
			"apiKey":    d.APIKey,
			"updatedAt": d.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"autoSync":  d.AutoSync,
			"createdAt": d.CreatedAt,
		},
	}
}
