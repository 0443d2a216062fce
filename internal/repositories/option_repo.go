package repositories

import (
	"context"

	"storefront/internal/models"
)

// OptionRepository defines the interface for option catalog data access.
type OptionRepository interface {
	GetAll(ctx context.Context) ([]models.Option, error)
	GetByID(ctx context.Context, id string) (*models.Option, error)
	GetByName(ctx context.Context, name string) (*models.Option, error)
	Create(ctx context.Context, option *models.Option) error
	Update(ctx context.Context, option *models.Option) error
	Delete(ctx context.Context, id string) error
}
