package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/cache"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/internal/variant"
)

// MockPublisher is a mock implementation of services.EventPublisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishProductEvent(ctx context.Context, event models.ProductEvent) error {
	args := m.Called(event.Type, event.ProductID)
	return args.Error(0)
}

// MockProductCache is a mock implementation of cache.ProductCache.
type MockProductCache struct {
	mock.Mock
}

func (m *MockProductCache) Get(ctx context.Context, slug string) (*models.Product, bool) {
	args := m.Called(slug)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*models.Product), args.Bool(1)
}

func (m *MockProductCache) Set(ctx context.Context, product *models.Product) error {
	args := m.Called(product.Slug)
	return args.Error(0)
}

func (m *MockProductCache) Invalidate(ctx context.Context, slugs ...string) error {
	args := m.Called(slugs)
	return args.Error(0)
}

type env struct {
	ctx        context.Context
	optionRepo *repositories.MockOptionRepository
	repo       *repositories.MockProductRepository
	options    *services.OptionService
	products   *services.ProductService
	storefront *services.StorefrontService
	carts      *services.CartService
	color      models.Option
	storage    models.Option
}

func newEnv(t *testing.T, productCache cache.ProductCache, events services.EventPublisher) *env {
	t.Helper()
	log := zap.NewNop()
	e := &env{
		ctx:        context.Background(),
		optionRepo: repositories.NewMockOptionRepository(),
		repo:       repositories.NewMockProductRepository(),
	}
	e.options = services.NewOptionService(e.optionRepo, log)
	e.products = services.NewProductService(e.repo, e.options, productCache, events, log)
	e.storefront = services.NewStorefrontService(e.products, log)
	e.carts = services.NewCartService(repositories.NewMockCartRepository(), e.products, log)

	e.color = models.Option{Name: "Color", Values: []string{"Black", "White"}}
	require.NoError(t, e.options.CreateOption(e.ctx, &e.color))
	e.storage = models.Option{Name: "Storage", Values: []string{"128GB", "256GB"}}
	require.NoError(t, e.options.CreateOption(e.ctx, &e.storage))
	return e
}

func strptr(s string) *string { return &s }

func attrs(pairs ...string) []models.Attribute {
	out := make([]models.Attribute, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, models.Attribute{OptionName: pairs[i], Value: pairs[i+1]})
	}
	return out
}

// phoneInput is product P: (Black,128GB,$10), (Black,256GB,$12), (White,128GB,$11).
func phoneInput() services.ProductInput {
	return services.ProductInput{
		Name:  strptr("Phone X"),
		Price: 10,
		Stock: 0,
		Variants: []variant.Payload{
			{Attributes: attrs("Color", "Black", "Storage", "128GB"), Price: 10, Stock: 5},
			{Attributes: attrs("Color", "Black", "Storage", "256GB"), Price: "12", Stock: "3", Discount: "9"},
			{Attributes: attrs("Color", "White", "Storage", "128GB"), Price: 11, Stock: 0},
		},
	}
}

func sel(pairs ...string) variant.Selection {
	values := make(map[string]string)
	for i := 0; i+1 < len(pairs); i += 2 {
		values[pairs[i]] = pairs[i+1]
	}
	return variant.NewSelection(values)
}
