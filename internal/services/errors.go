package services

import (
	"errors"

	"storefront/internal/repositories"
	"storefront/internal/variant"
)

var (
	ErrNotFound             = repositories.ErrNotFound
	ErrInvalidSpecification = errors.New("invalid specification format: expected a valid JSON string")
	ErrVariantRequired      = errors.New("variantId is required for products with variants")
	ErrOptionNameTaken      = errors.New("option name already taken")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrAccountTaken         = errors.New("username or email already registered")
	ErrInvalidToken         = errors.New("invalid token")
	ErrSlugTaken            = errors.New("no free slug")

	ErrOutOfStock    = variant.ErrOutOfStock
	ErrQuantityLimit = variant.ErrQuantityLimit
)

// ValidationError carries field level failures reported by the struct validator.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
