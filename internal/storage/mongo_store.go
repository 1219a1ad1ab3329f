package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig contains connection settings for the MongoDB world store.
type MongoConfig struct {
	URI        string // e.g. mongodb://localhost:27017
	Database   string // e.g. worldcore
	Collection string // e.g. worlds
}

// MongoStore keeps one document per world, updated with $set upserts.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore establishes connection and returns the store.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "worldcore"
	}
	if cfg.Collection == "" {
		cfg.Collection = "worlds"
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (m *MongoStore) ApplyUpdate(ctx context.Context, u WorldUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if u.Time != nil {
		set["time"] = *u.Time
	}
	if u.Days != nil {
		set["days"] = *u.Days
	}

	_, err := m.collection.UpdateOne(ctx,
		bson.M{"_id": u.WorldID},
		bson.M{"$set": set},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongo upsert %s: %w", u.WorldID, err)
	}
	return nil
}

func (m *MongoStore) Load(ctx context.Context, worldID string) (WorldRecord, error) {
	var rec WorldRecord
	err := m.collection.FindOne(ctx, bson.M{"_id": worldID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return WorldRecord{}, ErrNotFound
	}
	if err != nil {
		return WorldRecord{}, fmt.Errorf("mongo find %s: %w", worldID, err)
	}
	return rec, nil
}

func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
