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

// MongoPlacementRepository implements PlacementRepository using MongoDB
type MongoPlacementRepository struct {
	collection *mongo.Collection
}

// NewMongoPlacementRepository creates a new MongoDB placement repository
func NewMongoPlacementRepository(db *mongo.Database) ports.PlacementRepository {
	return &MongoPlacementRepository{
		collection: db.Collection("placements"),
	}
}

// SavePlacement replaces the placement of a feature and method on a store
func (r *MongoPlacementRepository) SavePlacement(ctx context.Context, placement *domain.Placement) error {
	doc := entity.MongoPlacementDocFromDomain(placement)
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now()
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{
		"storeDomain": placement.StoreDomain,
		"feature":     string(placement.Feature),
		"method":      string(placement.Method),
	}
	update := bson.M{"$set": doc}

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to save placement: %w", err)
	}
	return nil
}

// GetPlacement retrieves the placement of a feature and method on a store
func (r *MongoPlacementRepository) GetPlacement(ctx context.Context, storeDomain string, feature domain.Feature, method domain.PlacementMethod) (*domain.Placement, error) {
	var doc entity.MongoPlacementDoc
	filter := bson.M{
		"storeDomain": storeDomain,
		"feature":     string(feature),
		"method":      string(method),
	}

	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get placement: %w", err)
	}
	return doc.ToDomain(), nil
}

// ListPlacements retrieves every placement of a store
func (r *MongoPlacementRepository) ListPlacements(ctx context.Context, storeDomain string) ([]*domain.Placement, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"storeDomain": storeDomain})
	if err != nil {
		return nil, fmt.Errorf("failed to list placements: %w", err)
	}
	defer cursor.Close(ctx)

	var placements []*domain.Placement
	for cursor.Next(ctx) {
		var doc entity.MongoPlacementDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode placement: %w", err)
		}
		placements = append(placements, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return placements, nil
}

// DeleteByStore deletes every placement of a store
func (r *MongoPlacementRepository) DeleteByStore(ctx context.Context, storeDomain string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"storeDomain": storeDomain})
	if err != nil {
		return fmt.Errorf("failed to delete placements: %w", err)
	}
	return nil
}
