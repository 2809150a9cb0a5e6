package repository

import (
	"context"
	"fmt"

	"sif-shopify-layer/internal/domain"
	"sif-shopify-layer/internal/infrastructure/repository/entity"
	"sif-shopify-layer/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoInstanceRepository reads instances from MongoDB
type MongoInstanceRepository struct {
	collection *mongo.Collection
}

// NewMongoInstanceRepository creates a new MongoDB instance repository
func NewMongoInstanceRepository(db *mongo.Database) ports.InstanceRepository {
	return &MongoInstanceRepository{
		collection: db.Collection("instances"),
	}
}

// ListByAccount lists an account's instances, newest first
func (r *MongoInstanceRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.Instance, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"accountId": accountID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}
	defer cursor.Close(ctx)

	instances := []*domain.Instance{}
	for cursor.Next(ctx) {
		var doc entity.MongoInstanceDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode instance: %w", err)
		}
		instances = append(instances, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return instances, nil
}
