package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
)

// MockAdminRepository is an in-memory implementation of AdminRepository.
type MockAdminRepository struct {
	admins map[string]models.Admin
	mu     sync.RWMutex
}

// NewMockAdminRepository creates a new instance of MockAdminRepository.
func NewMockAdminRepository() *MockAdminRepository {
	return &MockAdminRepository{admins: make(map[string]models.Admin)}
}

// Create adds a new admin.
func (r *MockAdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if admin.ID == "" {
		admin.ID = uuid.New().String()
	}
	admin.CreatedAt = time.Now()
	admin.UpdatedAt = admin.CreatedAt
	r.admins[admin.ID] = *admin
	return nil
}

func (r *MockAdminRepository) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	return r.find("username", username, func(a models.Admin) bool { return a.Username == username })
}

func (r *MockAdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return r.find("email", email, func(a models.Admin) bool { return a.Email == email })
}

func (r *MockAdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	return r.find("ID", id, func(a models.Admin) bool { return a.ID == id })
}

// Count returns the number of stored admins.
func (r *MockAdminRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.admins)), nil
}

func (r *MockAdminRepository) find(label, value string, match func(models.Admin) bool) (*models.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.admins {
		if match(a) {
			return &a, nil
		}
	}
	return nil, fmt.Errorf("admin with %s %s %w", label, value, ErrNotFound)
}
