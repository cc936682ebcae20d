package records

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"server/internal/domain"
)

// UpdateResult mirrors the store's matched/modified counters for one update.
type UpdateResult struct {
	Matched  int64
	Modified int64
}

// Store is the narrow document-store surface the resolver needs: equality
// find/update, insert, and collection enumeration. The production
// implementation is MongoStore; tests substitute an in-memory fake.
type Store interface {
	CollectionNames(ctx context.Context) ([]string, error)
	FindOne(ctx context.Context, collection string, filter bson.M) (bool, error)
	UpdateOne(ctx context.Context, collection string, filter, update bson.M) (UpdateResult, error)
	InsertOne(ctx context.Context, collection string, doc any) (string, error)
}

// MongoStore adapts a shared *mongo.Database handle to the Store interface.
// The handle is connected once at startup and reused for the process
// lifetime; any transport error surfaces as domain.ErrStoreUnavailable.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

// CollectionNames returns the database's collections sorted by name, keeping
// resolution order deterministic across calls.
func (s *MongoStore) CollectionNames(ctx context.Context) ([]string, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("%w: list collections: %v", domain.ErrStoreUnavailable, err)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MongoStore) FindOne(ctx context.Context, collection string, filter bson.M) (bool, error) {
	err := s.db.Collection(collection).FindOne(ctx, filter).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return false, nil
	default:
		return false, fmt.Errorf("%w: find in %s: %v", domain.ErrStoreUnavailable, collection, err)
	}
}

func (s *MongoStore) UpdateOne(ctx context.Context, collection string, filter, update bson.M) (UpdateResult, error) {
	res, err := s.db.Collection(collection).UpdateOne(ctx, filter, update)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("%w: update in %s: %v", domain.ErrStoreUnavailable, collection, err)
	}
	return UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

func (s *MongoStore) InsertOne(ctx context.Context, collection string, doc any) (string, error) {
	res, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("%w: insert into %s: %v", domain.ErrStoreUnavailable, collection, err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return fmt.Sprint(res.InsertedID), nil
}

var _ Store = (*MongoStore)(nil)
