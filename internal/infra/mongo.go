package infra

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// NewMongo connects to the document store using the provided configuration.
// The client is created once at startup and shared for the process lifetime;
// callers never reconnect mid-request.
func NewMongo(ctx context.Context, cfg *Config) (*mongo.Client, *mongo.Database, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("config is required")
	}

	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetMaxPoolSize(20).
		SetConnectTimeout(10 * time.Second)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("connect store: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping store: %w", err)
	}

	return client, client.Database(cfg.MongoDatabase), nil
}
