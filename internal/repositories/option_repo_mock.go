package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
)

// MockOptionRepository is an in-memory implementation of OptionRepository.
type MockOptionRepository struct {
	options map[string]models.Option
	mu      sync.RWMutex
}

// NewMockOptionRepository creates a new instance of MockOptionRepository.
func NewMockOptionRepository() *MockOptionRepository {
	return &MockOptionRepository{
		options: make(map[string]models.Option),
	}
}

// GetAll returns all options ordered by name.
func (r *MockOptionRepository) GetAll(ctx context.Context) ([]models.Option, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Option, 0, len(r.options))
	for _, o := range r.options {
		o.Values = append([]string(nil), o.Values...)
		list = append(list, o)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// GetByID returns an option by its ID.
func (r *MockOptionRepository) GetByID(ctx context.Context, id string) (*models.Option, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.options[id]
	if !ok {
		return nil, fmt.Errorf("option with ID %s %w", id, ErrNotFound)
	}
	o.Values = append([]string(nil), o.Values...)
	return &o, nil
}

// GetByName returns an option by its name.
func (r *MockOptionRepository) GetByName(ctx context.Context, name string) (*models.Option, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.options {
		if o.Name == name {
			o.Values = append([]string(nil), o.Values...)
			return &o, nil
		}
	}
	return nil, fmt.Errorf("option with name %s %w", name, ErrNotFound)
}

// Create adds a new option.
func (r *MockOptionRepository) Create(ctx context.Context, option *models.Option) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.options {
		if o.Name == option.Name {
			return fmt.Errorf("option with name %s already exists", option.Name)
		}
	}
	if option.ID == "" {
		option.ID = uuid.New().String()
	}
	now := time.Now()
	option.CreatedAt, option.UpdatedAt = now, now
	stored := *option
	stored.Values = append([]string(nil), option.Values...)
	r.options[option.ID] = stored
	return nil
}

// Update modifies an existing option.
func (r *MockOptionRepository) Update(ctx context.Context, option *models.Option) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.options[option.ID]
	if !ok {
		return fmt.Errorf("option with ID %s %w", option.ID, ErrNotFound)
	}
	stored := *option
	stored.CreatedAt = prev.CreatedAt
	stored.UpdatedAt = time.Now()
	stored.Values = append([]string(nil), option.Values...)
	r.options[option.ID] = stored
	return nil
}

// Delete removes an option by its ID.
func (r *MockOptionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.options[id]; !ok {
		return fmt.Errorf("option with ID %s %w", id, ErrNotFound)
	}
	delete(r.options, id)
	return nil
}
