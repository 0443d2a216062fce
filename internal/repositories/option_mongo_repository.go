package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOptionRepository is a MongoDB implementation of OptionRepository.
type MongoOptionRepository struct {
	col *mongo.Collection
}

// GetAll retrieves all options ordered by name.
func (r *MongoOptionRepository) GetAll(ctx context.Context) ([]models.Option, error) {
	cur, err := r.col.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to get all options: %w", err)
	}
	list := []models.Option{}
	if err := cur.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("failed to decode options: %w", err)
	}
	return list, nil
}

// GetByID retrieves an option by its ID.
func (r *MongoOptionRepository) GetByID(ctx context.Context, id string) (*models.Option, error) {
	return r.findOne(ctx, bson.M{"_id": id}, "ID", id)
}

// GetByName retrieves an option by its name.
func (r *MongoOptionRepository) GetByName(ctx context.Context, name string) (*models.Option, error) {
	return r.findOne(ctx, bson.M{"name": name}, "name", name)
}

func (r *MongoOptionRepository) findOne(ctx context.Context, filter bson.M, label, value string) (*models.Option, error) {
	var option models.Option
	if err := r.col.FindOne(ctx, filter).Decode(&option); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("option with %s %s %w", label, value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get option by %s %s: %w", label, value, err)
	}
	return &option, nil
}

// Create inserts a new option.
func (r *MongoOptionRepository) Create(ctx context.Context, option *models.Option) error {
	if option.ID == "" {
		option.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	option.CreatedAt, option.UpdatedAt = now, now
	if _, err := r.col.InsertOne(ctx, option); err != nil {
		return fmt.Errorf("failed to create option: %w", err)
	}
	return nil
}

// Update overwrites the name and values of an option.
func (r *MongoOptionRepository) Update(ctx context.Context, option *models.Option) error {
	option.UpdatedAt = time.Now().UTC()
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": option.ID}, bson.M{"$set": bson.M{
		"name":       option.Name,
		"values":     option.Values,
		"updated_at": option.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("failed to update option: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("option with ID %s %w", option.ID, ErrNotFound)
	}
	return nil
}

// Delete removes an option.
func (r *MongoOptionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete option: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("option with ID %s %w", id, ErrNotFound)
	}
	return nil
}
