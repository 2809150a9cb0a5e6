package repository

import (
	"context"
	"fmt"
	"time"

	"sif-shopify-layer/internal/domain"
	"sif-shopify-layer/internal/infrastructure/repository/entity"
	"sif-shopify-layer/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAccountLinkRepository implements AccountLinkRepository using MongoDB.
// A link is identified by (storeDomain, accountId).
type MongoAccountLinkRepository struct {
	collection *mongo.Collection
}

// NewMongoAccountLinkRepository creates a new MongoDB account link repository
func NewMongoAccountLinkRepository(db *mongo.Database) ports.AccountLinkRepository {
	return &MongoAccountLinkRepository{
		collection: db.Collection("account_links"),
	}
}

func (r *MongoAccountLinkRepository) findOne(ctx context.Context, filter bson.M) (*domain.AccountStoreLink, error) {
	var doc entity.MongoAccountLinkDoc
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account link: %w", err)
	}
	return doc.ToDomain(), nil
}

// GetByStoreAndAccount retrieves the link of an account to a store
func (r *MongoAccountLinkRepository) GetByStoreAndAccount(ctx context.Context, storeDomain, accountID string) (*domain.AccountStoreLink, error) {
	return r.findOne(ctx, bson.M{"storeDomain": storeDomain, "accountId": accountID})
}

// GetBySelectedInstance retrieves the link that selected an instance
func (r *MongoAccountLinkRepository) GetBySelectedInstance(ctx context.Context, storeDomain, instanceID string) (*domain.AccountStoreLink, error) {
	return r.findOne(ctx, bson.M{"storeDomain": storeDomain, "selectedInstanceId": instanceID})
}

// GetActive retrieves the store's active link
func (r *MongoAccountLinkRepository) GetActive(ctx context.Context, storeDomain string) (*domain.AccountStoreLink, error) {
	return r.findOne(ctx, bson.M{"storeDomain": storeDomain, "isActive": true})
}

// DeactivateAll marks every link of a store inactive
func (r *MongoAccountLinkRepository) DeactivateAll(ctx context.Context, storeDomain string) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"storeDomain": storeDomain},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate account links: %w", err)
	}
	return nil
}

// Upsert saves a link keyed by store and account
func (r *MongoAccountLinkRepository) Upsert(ctx context.Context, link *domain.AccountStoreLink) error {
	doc := entity.MongoAccountLinkDocFromDomain(link)
	doc.UpdatedAt = time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"storeDomain": link.StoreDomain, "accountId": link.AccountID}
	update := bson.M{"$set": doc}

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to save account link: %w", err)
	}
	return nil
}

// Update sets the provided fields on an existing link
func (r *MongoAccountLinkRepository) Update(ctx context.Context, storeDomain, accountID string, update domain.LinkUpdate) (bool, error) {
	set := bson.M{"updatedAt": time.Now()}
	if update.SelectedInstanceID != nil {
		set["selectedInstanceId"] = *update.SelectedInstanceID
	}
	if update.EnableButton != nil {
		set["enableProductButton"] = *update.EnableButton
	}
	if update.EnableOverlay != nil {
		set["enableProductImage"] = *update.EnableOverlay
	}
	if update.Button != nil {
		set["buttonConfig"] = update.Button
	}
	if update.Overlay != nil {
		set["overlayConfig"] = update.Overlay
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"storeDomain": storeDomain, "accountId": accountID},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, fmt.Errorf("failed to update account link: %w", err)
	}
	return res.MatchedCount > 0, nil
}

// DeleteByStore deletes every link of a store
func (r *MongoAccountLinkRepository) DeleteByStore(ctx context.Context, storeDomain string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"storeDomain": storeDomain})
	if err != nil {
		return fmt.Errorf("failed to delete account links: %w", err)
	}
	return nil
}
