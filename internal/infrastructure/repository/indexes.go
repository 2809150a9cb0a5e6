package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the unique keys the repositories upsert on
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string]bson.D{
		"stores":        {{Key: "domain", Value: 1}},
		"account_links": {{Key: "storeDomain", Value: 1}, {Key: "accountId", Value: 1}},
		"placements":    {{Key: "storeDomain", Value: 1}, {Key: "feature", Value: 1}, {Key: "method", Value: 1}},
	}
	for collection, keys := range indexes {
		_, err := db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    keys,
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return fmt.Errorf("failed to create %s index: %w", collection, err)
		}
	}
	return nil
}
