package repositories

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOptionRepository is a GORM implementation of OptionRepository.
type GORMOptionRepository struct {
	db *gorm.DB
}

// NewGORMOptionRepository creates a new instance of GORMOptionRepository.
func NewGORMOptionRepository(db *gorm.DB) *GORMOptionRepository {
	return &GORMOptionRepository{db: db}
}

// GetAll retrieves all options ordered by name.
func (r *GORMOptionRepository) GetAll(ctx context.Context) ([]models.Option, error) {
	var options []models.Option
	if err := r.db.WithContext(ctx).Order("name").Find(&options).Error; err != nil {
		return nil, fmt.Errorf("failed to get all options: %w", err)
	}
	return options, nil
}

// GetByID retrieves an option by its ID.
func (r *GORMOptionRepository) GetByID(ctx context.Context, id string) (*models.Option, error) {
	var option models.Option
	if err := r.db.WithContext(ctx).First(&option, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("option with ID %s %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get option by ID %s: %w", id, err)
	}
	return &option, nil
}

// GetByName retrieves an option by its unique name.
func (r *GORMOptionRepository) GetByName(ctx context.Context, name string) (*models.Option, error) {
	var option models.Option
	if err := r.db.WithContext(ctx).First(&option, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("option with name %s %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get option by name %s: %w", name, err)
	}
	return &option, nil
}

// Create creates a new option.
func (r *GORMOptionRepository) Create(ctx context.Context, option *models.Option) error {
	if option.ID == "" {
		option.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(option).Error; err != nil {
		return fmt.Errorf("failed to create option: %w", err)
	}
	return nil
}

// Update overwrites the name and values of an existing option.
func (r *GORMOptionRepository) Update(ctx context.Context, option *models.Option) error {
	res := r.db.WithContext(ctx).Model(&models.Option{}).
		Where("id = ?", option.ID).
		Select("Name", "Values", "UpdatedAt").
		Updates(option)
	if res.Error != nil {
		return fmt.Errorf("failed to update option: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("option with ID %s %w", option.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes an option by its ID.
func (r *GORMOptionRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Option{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete option: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("option with ID %s %w", id, ErrNotFound)
	}
	return nil
}
