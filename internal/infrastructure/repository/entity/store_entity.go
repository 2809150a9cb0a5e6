package entity

import (
	"time"

	"sif-shopify-layer/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoStoreDoc represents an installed store in MongoDB
type MongoStoreDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Domain      string             `bson:"domain"`
	AccessToken string             `bson:"accessToken"`
	Name        string             `bson:"name,omitempty"`
	Email       string             `bson:"email,omitempty"`
	Scopes      []string           `bson:"scopes,omitempty"`
	InstalledAt time.Time          `bson:"installedAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoStoreDoc) ToDomain() *domain.Store {
	return &domain.Store{
		ID:          d.ID.Hex(),
		Domain:      d.Domain,
		AccessToken: d.AccessToken,
		Name:        d.Name,
		Email:       d.Email,
		Scopes:      d.Scopes,
		InstalledAt: d.InstalledAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// MongoStoreDocFromDomain converts a domain entity to a MongoDB document.
// The id is left unset so upserts keep the stored one.
func MongoStoreDocFromDomain(store *domain.Store) *MongoStoreDoc {
	return &MongoStoreDoc{
		Domain:      store.Domain,
		AccessToken: store.AccessToken,
		Name:        store.Name,
		Email:       store.Email,
		Scopes:      store.Scopes,
		InstalledAt: store.InstalledAt,
		UpdatedAt:   store.UpdatedAt,
	}
}

// MongoWebhookDoc is a received webhook kept for auditing
type MongoWebhookDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Topic     string             `bson:"topic"`
	Shop      string             `bson:"shop"`
	Payload   string             `bson:"payload"`
	Verified  bool               `bson:"verified"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// MongoWebhookDocFromDomain converts a webhook event to a MongoDB document
func MongoWebhookDocFromDomain(event *domain.WebhookEvent) *MongoWebhookDoc {
	doc := &MongoWebhookDoc{
		Topic:     event.Topic,
		Shop:      event.Shop,
		Payload:   string(event.Payload),
		Verified:  event.Verified,
		CreatedAt: event.ReceivedAt,
	}
	if event.ID != "" {
		if objID, err := primitive.ObjectIDFromHex(event.ID); err == nil {
			doc.ID = objID
		}
	}
	return doc
}
