package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"storefront/internal/cache"
	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/variant"
)

// Product event types.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// EventPublisher sends catalog change events.
type EventPublisher interface {
	PublishProductEvent(ctx context.Context, event models.ProductEvent) error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishProductEvent(context.Context, models.ProductEvent) error { return nil }

// ProductInput is a create or update request. Nil fields are left unchanged on
// update. A nil Variants keeps the stored variants; an empty list removes them.
type ProductInput struct {
	Name          *string           `json:"name"`
	Slug          *string           `json:"slug"`
	Price         any               `json:"price"`
	Discount      any               `json:"discount"`
	Stock         any               `json:"stock"`
	IsActive      *bool             `json:"isActive"`
	OptionOrder   []string          `json:"optionOrder"`
	Variants      []variant.Payload `json:"variants"`
	Specification json.RawMessage   `json:"specification"`
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	options   *OptionService
	validator *variant.Validator
	cache     cache.ProductCache
	events    EventPublisher
	log       *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(
	repo repositories.ProductRepository,
	options *OptionService,
	productCache cache.ProductCache,
	events EventPublisher,
	log *zap.Logger,
) *ProductService {
	if productCache == nil {
		productCache = cache.NoopProductCache{}
	}
	if events == nil {
		events = NoopPublisher{}
	}
	return &ProductService{
		repo:      repo,
		options:   options,
		validator: variant.NewValidator(),
		cache:     productCache,
		events:    events,
		log:       log,
	}
}

// GetAllProducts retrieves all products with option names populated.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.options.catalog(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		c.populate(&products[i])
	}
	return products, nil
}

// GetProductByID retrieves a single product with option names populated.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, product)
}

// GetProductBySlug reads through the product cache.
func (s *ProductService) GetProductBySlug(ctx context.Context, productSlug string) (*models.Product, error) {
	if product, ok := s.cache.Get(ctx, productSlug); ok {
		metrics.ProductCacheLookups.WithLabelValues("hit").Inc()
		return product, nil
	}
	metrics.ProductCacheLookups.WithLabelValues("miss").Inc()

	product, err := s.repo.GetBySlug(ctx, productSlug)
	if err != nil {
		return nil, err
	}
	product, err = s.populate(ctx, product)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, product); err != nil {
		s.log.Warn("product cache write failed", zap.String("slug", productSlug), zap.Error(err))
	}
	return product, nil
}

func (s *ProductService) populate(ctx context.Context, product *models.Product) (*models.Product, error) {
	c, err := s.options.catalog(ctx)
	if err != nil {
		return nil, err
	}
	c.populate(product)
	return product, nil
}

// CreateProduct validates in and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	product := &models.Product{ID: uuid.New().String(), IsActive: true}
	if err := s.apply(ctx, product, in); err != nil {
		return nil, err
	}
	if err := s.assignSlug(ctx, product, in.Slug); err != nil {
		return nil, err
	}
	if err := validateStruct(product); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.log.Info("product created",
		zap.String("id", product.ID),
		zap.String("slug", product.Slug),
		zap.Int("variants", len(product.Variants)),
	)
	s.publish(ctx, EventProductCreated, product)
	return s.populate(ctx, product)
}

// UpdateProduct applies in to the stored product. A failing variant list
// rejects the whole update.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldSlug := product.Slug

	if err := s.apply(ctx, product, in); err != nil {
		return nil, err
	}
	if in.Slug != nil || in.Name != nil {
		if err := s.assignSlug(ctx, product, in.Slug); err != nil {
			return nil, err
		}
	}
	if err := validateStruct(product); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	s.invalidate(ctx, oldSlug, product.Slug)
	s.log.Info("product updated",
		zap.String("id", product.ID),
		zap.String("slug", product.Slug),
		zap.Int("variants", len(product.Variants)),
	)
	s.publish(ctx, EventProductUpdated, product)
	return s.populate(ctx, product)
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, product.Slug)
	s.publish(ctx, EventProductDeleted, product)
	return nil
}

func (s *ProductService) apply(ctx context.Context, product *models.Product, in ProductInput) error {
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	if in.Price != nil {
		price, err := variant.CoerceFloat(in.Price)
		if err != nil {
			return fmt.Errorf("price: %w", err)
		}
		product.Price = price
	}
	if in.Discount != nil {
		discount, err := flatDiscount(in.Discount)
		if err != nil {
			return fmt.Errorf("discount: %w", err)
		}
		product.Discount = discount
	}
	if in.Stock != nil {
		stock, err := variant.CoerceInt(in.Stock)
		if err != nil {
			return fmt.Errorf("stock: %w", err)
		}
		product.Stock = stock
	}
	if product.Discount > 0 && product.Discount >= product.Price {
		return fmt.Errorf("discount: %w: discount must be lower than price", variant.ErrInvalidField)
	}
	if in.OptionOrder != nil {
		product.OptionOrder = cleanOptionOrder(in.OptionOrder)
	}
	if in.Specification != nil {
		spec, err := parseSpecification(in.Specification)
		if err != nil {
			return err
		}
		product.Specification = spec
	}
	if in.Variants != nil {
		variants, err := s.validateVariants(ctx, product.Variants, in.Variants)
		if err != nil {
			var verr *variant.Error
			if errors.As(err, &verr) {
				metrics.VariantValidationFailures.WithLabelValues(verr.Field).Inc()
			}
			return err
		}
		product.Variants = variants
	}
	return nil
}

// validateVariants checks new payloads against the option catalog and then
// runs the variant validator. Payloads for stored variants keep their stored
// attributes and are not checked again.
func (s *ProductService) validateVariants(ctx context.Context, existing []models.Variant, incoming []variant.Payload) ([]models.Variant, error) {
	c, err := s.options.catalog(ctx)
	if err != nil {
		return nil, err
	}
	stored := make(map[string]bool, len(existing))
	for _, v := range existing {
		stored[v.ID] = true
	}

	payloads := make([]variant.Payload, len(incoming))
	for i, p := range incoming {
		if id := strings.TrimSpace(p.ID); id != "" && stored[id] {
			payloads[i] = p
			continue
		}
		attrs := make([]models.Attribute, 0, len(p.Attributes))
		for _, a := range p.Attributes {
			a.OptionID = strings.TrimSpace(a.OptionID)
			a.OptionName = strings.TrimSpace(a.OptionName)
			a.Value = strings.TrimSpace(a.Value)
			if a.Key() == "" {
				// left for the validator to report as missing
				attrs = append(attrs, a)
				continue
			}
			option, ok := c.lookup(a)
			if !ok {
				return nil, &variant.Error{
					Index: i, Field: "attributes", Attributes: p.Attributes,
					Err: fmt.Errorf("%w: %s", variant.ErrUnknownOption, a.Key()),
				}
			}
			if a.Value != "" && !option.HasValue(a.Value) {
				return nil, &variant.Error{
					Index: i, Field: "attributes", Attributes: p.Attributes,
					Err: fmt.Errorf("%w: %s is not a value of %s", variant.ErrInvalidField, a.Value, option.Name),
				}
			}
			attrs = append(attrs, models.Attribute{OptionID: option.ID, OptionName: option.Name, Value: a.Value})
		}
		p.Attributes = attrs
		payloads[i] = p
	}
	return s.validator.Validate(existing, payloads)
}

const maxSlugAttempts = 10

// assignSlug slugifies the requested slug or the product name. Taken slugs
// get the first segment of the product id appended, then a counter.
func (s *ProductService) assignSlug(ctx context.Context, product *models.Product, requested *string) error {
	base := product.Name
	if requested != nil && strings.TrimSpace(*requested) != "" {
		base = *requested
	}
	base = slug.Make(base)
	if base == "" {
		base = product.ID
	}
	suffix := strings.SplitN(product.ID, "-", 2)[0]

	for n := 0; n < maxSlugAttempts; n++ {
		candidate := base
		switch {
		case n == 1:
			candidate = base + "-" + suffix
		case n > 1:
			candidate = fmt.Sprintf("%s-%s-%d", base, suffix, n)
		}

		other, err := s.repo.GetBySlug(ctx, candidate)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
		case err != nil:
			return err
		case other.ID != product.ID:
			continue
		}
		product.Slug = candidate
		return nil
	}
	return fmt.Errorf("%w: %s", ErrSlugTaken, base)
}

func (s *ProductService) invalidate(ctx context.Context, slugs ...string) {
	if err := s.cache.Invalidate(ctx, slugs...); err != nil {
		s.log.Warn("product cache invalidation failed", zap.Strings("slugs", slugs), zap.Error(err))
	}
}

func (s *ProductService) publish(ctx context.Context, eventType string, product *models.Product) {
	event := models.ProductEvent{
		Type:      eventType,
		ProductID: product.ID,
		Slug:      product.Slug,
		Variants:  len(product.Variants),
		At:        time.Now().UTC(),
	}
	if err := s.events.PublishProductEvent(ctx, event); err != nil {
		s.log.Error("failed to publish product event",
			zap.String("type", eventType),
			zap.String("productId", product.ID),
			zap.Error(err),
		)
	}
}

func flatDiscount(v any) (float64, error) {
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return 0, nil
	}
	d, err := variant.CoerceFloat(v)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: discount must not be negative", variant.ErrInvalidField)
	}
	return d, nil
}

func cleanOptionOrder(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, name := range in {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// parseSpecification accepts a JSON document or a string holding one. An empty
// string or null clears the specification.
func parseSpecification(raw json.RawMessage) (datatypes.JSON, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, ErrInvalidSpecification
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		raw = json.RawMessage(s)
	}
	if !json.Valid(raw) {
		return nil, ErrInvalidSpecification
	}
	return datatypes.JSON(append([]byte(nil), raw...)), nil
}
