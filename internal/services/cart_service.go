package services

import (
	"context"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/variant"
)

// CartItemRequest adds quantity items of a product to a cart. The variant is
// picked by VariantID or, failing that, resolved from Selection.
type CartItemRequest struct {
	ProductID string            `json:"productId" validate:"required"`
	VariantID string            `json:"variantId"`
	Selection variant.Selection `json:"selection"`
	Quantity  int               `json:"quantity"`
}

// CartService quotes carts against current product prices and stock.
type CartService struct {
	carts    repositories.CartRepository
	products *ProductService
	log      *zap.Logger
	mu       sync.Mutex // serializes read-modify-write of carts
}

// NewCartService creates a new CartService.
func NewCartService(carts repositories.CartRepository, products *ProductService, log *zap.Logger) *CartService {
	return &CartService{carts: carts, products: products, log: log}
}

// GetCart retrieves a cart by its ID.
func (s *CartService) GetCart(ctx context.Context, id string) (*models.Cart, error) {
	return s.carts.GetByID(ctx, id)
}

// CreateCart creates a cart holding items. Any failing item rejects the cart.
func (s *CartService) CreateCart(ctx context.Context, items []CartItemRequest) (*models.Cart, error) {
	cart := &models.Cart{Items: []models.CartItem{}}
	for _, req := range items {
		if err := s.addLine(ctx, cart, req); err != nil {
			return nil, err
		}
	}
	if err := s.carts.Create(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	s.log.Info("cart created", zap.String("id", cart.ID), zap.Int("items", len(cart.Items)))
	return cart, nil
}

// AddItem adds req to the cart, merging it with a line for the same variant.
func (s *CartService) AddItem(ctx context.Context, cartID string, req CartItemRequest) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.carts.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := s.addLine(ctx, cart, req); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart %s: %w", cartID, err)
	}
	return cart, nil
}

func (s *CartService) addLine(ctx context.Context, cart *models.Cart, req CartItemRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	product, err := s.products.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return fmt.Errorf("product %s: %w", req.ProductID, err)
	}
	if !product.IsActive {
		return fmt.Errorf("product %s %w", req.ProductID, ErrNotFound)
	}
	v, err := pickVariant(*product, req)
	if err != nil {
		return err
	}

	qty := req.Quantity
	idx := -1
	for i, line := range cart.Items {
		if line.ProductID == product.ID && line.VariantID == variantID(v) {
			idx = i
			qty += line.Quantity
			break
		}
	}
	if err := variant.Purchasable(*product, v, qty); err != nil {
		return fmt.Errorf("product %s: %w", product.Name, err)
	}

	price := variant.Price(*product, v)
	line := models.CartItem{
		ProductID:    product.ID,
		VariantID:    variantID(v),
		Name:         product.Name,
		Quantity:     qty,
		RegularPrice: price.RegularPrice,
		OfferPrice:   price.OfferPrice,
		UnitPrice:    price.UnitPrice(),
		LineTotal:    roundCents(price.UnitPrice() * float64(qty)),
	}
	if v != nil {
		line.Attributes = v.Attributes
	}
	if idx >= 0 {
		cart.Items[idx] = line
	} else {
		cart.Items = append(cart.Items, line)
	}

	var total float64
	for _, l := range cart.Items {
		total += l.LineTotal
	}
	cart.Total = roundCents(total)
	return nil
}

func pickVariant(p models.Product, req CartItemRequest) (*models.Variant, error) {
	if !p.HasVariants() {
		return nil, nil
	}
	if req.VariantID != "" {
		v, ok := p.FindVariant(req.VariantID)
		if !ok {
			return nil, fmt.Errorf("variant with ID %s %w", req.VariantID, ErrNotFound)
		}
		return v, nil
	}
	if req.Selection.Len() == 0 && len(p.Variants) > 1 {
		return nil, ErrVariantRequired
	}
	r := variant.NewResolver(p)
	return r.Resolve(withDefaults(r, req.Selection))
}

func variantID(v *models.Variant) string {
	if v == nil {
		return ""
	}
	return v.ID
}

func roundCents(f float64) float64 {
	return math.Round(f*100) / 100
}
