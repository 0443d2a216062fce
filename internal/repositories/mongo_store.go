package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	productsCollection = "products"
	optionsCollection  = "product_options"
	adminsCollection   = "admins"
)

// MongoStore owns the MongoDB client shared by the Mongo repositories.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore connects to uri and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return &MongoStore{client: client, db: client.Database(database)}, nil
}

// EnsureIndexes creates the unique indexes the repositories rely on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	unique := func(field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true),
		}
	}
	indexes := map[string][]mongo.IndexModel{
		productsCollection: {unique("slug")},
		optionsCollection:  {unique("name")},
		adminsCollection:   {unique("username"), unique("email")},
	}
	for collection, idx := range indexes {
		if _, err := s.db.Collection(collection).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", collection, err)
		}
	}
	return nil
}

// Products returns the product repository backed by this store.
func (s *MongoStore) Products() *MongoProductRepository {
	return &MongoProductRepository{col: s.db.Collection(productsCollection)}
}

// Options returns the option repository backed by this store.
func (s *MongoStore) Options() *MongoOptionRepository {
	return &MongoOptionRepository{col: s.db.Collection(optionsCollection)}
}

// Admins returns the admin repository backed by this store.
func (s *MongoStore) Admins() *MongoAdminRepository {
	return &MongoAdminRepository{col: s.db.Collection(adminsCollection)}
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
