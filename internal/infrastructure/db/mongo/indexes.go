package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes every collection relies on. It is safe to
// run repeatedly.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	unique := options.Index().SetUnique(true)
	sparseUnique := options.Index().SetUnique(true).SetSparse(true)

	plan := map[string][]mongo.IndexModel{
		collectionUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "status", Value: 1}}},
		},
		collectionAccessCodes: {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: unique},
		},
		collectionRequests: {
			{Keys: bson.D{{Key: "ticket_number", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "requester_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "assigned_to", Value: 1}}},
			{Keys: bson.D{{Key: "idempotency_key", Value: 1}}, Options: sparseUnique},
		},
		collectionWorkflows: {
			{Keys: bson.D{{Key: "request_id", Value: 1}}, Options: unique},
		},
		collectionHistory: {
			{Keys: bson.D{{Key: "request_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		collectionNotifications: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "is_read", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		collectionActivity: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
	}

	for name, models := range plan {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("indexes on %s: %w", name, err)
		}
	}
	return nil
}
