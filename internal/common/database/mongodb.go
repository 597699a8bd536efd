// internal/common/database/mongodb.go
package database

import (
	"context"
	"fmt"
	"time"

	"vehicle-insurance-pipeline/internal/common/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoClient wraps the MongoDB feature-store connection
type MongoClient struct {
	Client   *mongo.Client
	Database string
}

// NewMongo connects to the feature store
func NewMongo(ctx context.Context, cfg config.MongoDBConfig) (*MongoClient, error) {
	connectCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Timeout)*time.Millisecond)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping failed: %w", err)
	}

	return &MongoClient{Client: client, Database: cfg.Database}, nil
}

// Close disconnects from MongoDB
func (c *MongoClient) Close(ctx context.Context) error {
	if c.Client != nil {
		return c.Client.Disconnect(ctx)
	}
	return nil
}

// FetchCollection reads every document from a collection. The internal _id
// field is dropped; everything else is returned as generic maps in insertion
// order.
func (c *MongoClient) FetchCollection(ctx context.Context, collection string) ([]map[string]interface{}, error) {
	coll := c.Client.Database(c.Database).Collection(collection)

	cursor, err := coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var records []map[string]interface{}
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		delete(doc, "_id")
		records = append(records, map[string]interface{}(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error on collection %s: %w", collection, err)
	}

	return records, nil
}

// InsertRecords bulk-inserts documents into a collection. Used by the data
// seeder tool.
func (c *MongoClient) InsertRecords(ctx context.Context, collection string, records []map[string]interface{}) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	docs := make([]interface{}, 0, len(records))
	for _, r := range records {
		docs = append(docs, r)
	}

	coll := c.Client.Database(c.Database).Collection(collection)
	res, err := coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("failed to insert into collection %s: %w", collection, err)
	}

	return len(res.InsertedIDs), nil
}
