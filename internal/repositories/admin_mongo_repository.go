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
)

// MongoAdminRepository is a MongoDB implementation of AdminRepository.
type MongoAdminRepository struct {
	col *mongo.Collection
}

// Create inserts a new admin.
func (r *MongoAdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	if admin.ID == "" {
		admin.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	admin.CreatedAt, admin.UpdatedAt = now, now
	if _, err := r.col.InsertOne(ctx, bson.M{
		"_id":        admin.ID,
		"username":   admin.Username,
		"email":      admin.Email,
		"password":   admin.Password,
		"created_at": admin.CreatedAt,
		"updated_at": admin.UpdatedAt,
	}); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

func (r *MongoAdminRepository) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	return r.findOne(ctx, "username", username)
}

func (r *MongoAdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return r.findOne(ctx, "email", email)
}

func (r *MongoAdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	return r.findOne(ctx, "_id", id)
}

func (r *MongoAdminRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return n, nil
}

func (r *MongoAdminRepository) findOne(ctx context.Context, field, value string) (*models.Admin, error) {
	var doc struct {
		ID        string    `bson:"_id"`
		Username  string    `bson:"username"`
		Email     string    `bson:"email"`
		Password  string    `bson:"password"`
		CreatedAt time.Time `bson:"created_at"`
		UpdatedAt time.Time `bson:"updated_at"`
	}
	if err := r.col.FindOne(ctx, bson.M{field: value}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("admin with %s %s %w", field, value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get admin by %s %s: %w", field, value, err)
	}
	return &models.Admin{
		ID:        doc.ID,
		Username:  doc.Username,
		Email:     doc.Email,
		Password:  doc.Password,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}
