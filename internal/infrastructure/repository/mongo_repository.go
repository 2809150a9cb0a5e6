package repository

import (
	"context"
	"fmt"
	"time"

	"sif-shopify-layer/internal/domain"
	"sif-shopify-layer/internal/infrastructure/repository/entity"
	"sif-shopify-layer/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepository implements StoreRepository using MongoDB
type MongoRepository struct {
	storesCollection   *mongo.Collection
	webhooksCollection *mongo.Collection
}

// NewMongoRepository creates a new MongoDB repository
func NewMongoRepository(db *mongo.Database) ports.StoreRepository {
	return &MongoRepository{
		storesCollection:   db.Collection("stores"),
		webhooksCollection: db.Collection("webhook_events"),
	}
}

// SaveStore saves or updates a store by domain
func (r *MongoRepository) SaveStore(ctx context.Context, store *domain.Store) error {
	doc := entity.MongoStoreDocFromDomain(store)
	doc.UpdatedAt = time.Now()
	if doc.InstalledAt.IsZero() {
		doc.InstalledAt = time.Now()
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"domain": store.Domain}
	update := bson.M{"$set": doc}

	_, err := r.storesCollection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to save store: %w", err)
	}

	return nil
}

// GetStore retrieves a store by domain
func (r *MongoRepository) GetStore(ctx context.Context, shopDomain string) (*domain.Store, error) {
	var doc entity.MongoStoreDoc
	filter := bson.M{"domain": shopDomain}

	err := r.storesCollection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get store: %w", err)
	}

	return doc.ToDomain(), nil
}

// DeleteStore deletes a store by domain
func (r *MongoRepository) DeleteStore(ctx context.Context, shopDomain string) error {
	_, err := r.storesCollection.DeleteOne(ctx, bson.M{"domain": shopDomain})
	if err != nil {
		return fmt.Errorf("failed to delete store: %w", err)
	}
	return nil
}

// LogWebhook logs a webhook event
func (r *MongoRepository) LogWebhook(ctx context.Context, event *domain.WebhookEvent) error {
	doc := entity.MongoWebhookDocFromDomain(event)
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	_, err := r.webhooksCollection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to log webhook: %w", err)
	}
	event.ID = doc.ID.Hex()

	return nil
}
