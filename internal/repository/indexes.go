package repository

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the form and submission queries rely on.
// Failures are logged; the service still works without them, only slower.
func EnsureIndexes(ctx context.Context, db *mongo.Database) {
	forms := db.Collection(formsCollection)
	createIndex(ctx, forms, bson.D{{Key: "organizationId", Value: 1}, {Key: "isDeleted", Value: 1}}, false, false)
	createIndex(ctx, forms, bson.D{{Key: "publicKey", Value: 1}}, true, true)

	subs := db.Collection(submissionsCollection)
	createIndex(ctx, subs, bson.D{
		{Key: "formId", Value: 1},
		{Key: "emailKey", Value: 1},
		{Key: "isDeleted", Value: 1},
	}, false, false)
	createIndex(ctx, subs, bson.D{
		{Key: "formId", Value: 1},
		{Key: "totalScore", Value: -1},
	}, false, false)

	log.Println("[Repository] indexes ensured")
}

func createIndex(ctx context.Context, coll *mongo.Collection, keys bson.D, unique, sparse bool) {
	opts := options.Index().SetUnique(unique)
	if sparse {
		opts.SetSparse(true)
	}
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys, Options: opts})
	if err != nil {
		log.Printf("[Repository] failed to create index on %s: %v", coll.Name(), err)
	}
}
