package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/variant"
)

// ProductView is what the storefront renders for a product and a selection.
type ProductView struct {
	Product      *models.Product              `json:"product"`
	HasVariants  bool                         `json:"hasVariants"`
	OptionOrder  []string                     `json:"optionOrder"`
	Selection    variant.Selection            `json:"selection"`
	State        variant.State                `json:"state"`
	Options      []variant.OptionAvailability `json:"options"`
	Variant      *models.Variant              `json:"variant"`
	DisplayPrice variant.DisplayPrice         `json:"displayPrice"`
	Message      string                       `json:"message,omitempty"`
}

// OrderDetails describes the product (and variant) an order line points at.
type OrderDetails struct {
	ProductID    string               `json:"productId"`
	Name         string               `json:"name"`
	Slug         string               `json:"slug"`
	HasVariant   bool                 `json:"variant"`
	Variant      *models.Variant      `json:"selectedVariant,omitempty"`
	DisplayPrice variant.DisplayPrice `json:"displayPrice"`
}

// Messages shown next to an unresolved selection.
const (
	MessageIncompleteSelection = "Please select all variant options"
	MessageOptionsUnavailable  = "options unavailable"
)

// StorefrontService answers shopper side questions about variants and prices.
type StorefrontService struct {
	products *ProductService
	log      *zap.Logger
}

// NewStorefrontService creates a new StorefrontService.
func NewStorefrontService(products *ProductService, log *zap.Logger) *StorefrontService {
	return &StorefrontService{products: products, log: log}
}

// GetOptionOrder returns the option names of p in picking order.
func (s *StorefrontService) GetOptionOrder(p models.Product) []string {
	return variant.NewResolver(p).OptionOrder()
}

// GetAvailableValues tags every value of option as selectable or not.
func (s *StorefrontService) GetAvailableValues(p models.Product, option string, sel variant.Selection) ([]variant.ValueAvailability, error) {
	return variant.NewResolver(p).AvailableValues(option, sel)
}

// ResolveVariant returns the variant matching sel, or nil when sel is
// incomplete or matches nothing. A single-variant product resolves to its
// variant as long as sel does not contradict it.
func (s *StorefrontService) ResolveVariant(p models.Product, sel variant.Selection) *models.Variant {
	r := variant.NewResolver(p)
	if !r.HasVariants() {
		metrics.VariantResolutions.WithLabelValues("no_variants").Inc()
		return nil
	}
	v, err := r.Resolve(withDefaults(r, sel))
	switch {
	case err == nil:
		metrics.VariantResolutions.WithLabelValues("resolved").Inc()
		return v
	case errors.Is(err, variant.ErrIncompleteSelection):
		metrics.VariantResolutions.WithLabelValues("incomplete").Inc()
	case errors.Is(err, variant.ErrUnresolvedVariant):
		metrics.VariantResolutions.WithLabelValues("unresolved").Inc()
		s.log.Warn("complete selection matches no variant",
			zap.String("productId", p.ID),
			zap.Any("selection", sel.Map()),
		)
	}
	return nil
}

// withDefaults fills the options a single-variant product pre-selects.
func withDefaults(r *variant.Resolver, sel variant.Selection) variant.Selection {
	initial := r.InitialSelection()
	if initial.Len() == 0 {
		return sel
	}
	values := initial.Map()
	for option, value := range sel.Map() {
		values[option] = value
	}
	return variant.NewSelection(values)
}

// GetDisplayPrice prices p as v, or from its flat fields when v is nil.
func (s *StorefrontService) GetDisplayPrice(p models.Product, v *models.Variant) variant.DisplayPrice {
	return variant.Price(p, v)
}

// Choose sets option to value on sel, clearing every later option.
func (s *StorefrontService) Choose(p models.Product, sel variant.Selection, option, value string) (variant.Selection, error) {
	r := variant.NewResolver(p)
	return r.Choose(withDefaults(r, sel), option, value)
}

// View builds the full storefront state of p under sel.
func (s *StorefrontService) View(p *models.Product, sel variant.Selection) ProductView {
	r := variant.NewResolver(*p)
	sel = withDefaults(r, sel)

	view := ProductView{
		Product:     p,
		HasVariants: r.HasVariants(),
		OptionOrder: r.OptionOrder(),
		Selection:   sel,
		State:       r.State(sel),
		Options:     r.Availability(sel),
	}
	if view.HasVariants {
		view.Variant = s.ResolveVariant(*p, sel)
		switch view.State {
		case variant.StateEmpty, variant.StatePartial:
			view.Message = MessageIncompleteSelection
		case variant.StateUnresolved:
			view.Message = MessageOptionsUnavailable
		}
	}
	view.DisplayPrice = s.GetDisplayPrice(*p, view.Variant)
	return view
}

// ViewBySlug loads the product behind productSlug and builds its view.
func (s *StorefrontService) ViewBySlug(ctx context.Context, productSlug string, sel variant.Selection) (*ProductView, error) {
	p, err := s.products.GetProductBySlug(ctx, productSlug)
	if err != nil {
		return nil, err
	}
	view := s.View(p, sel)
	return &view, nil
}

// ChooseBySlug applies a choice to sel and returns the resulting view.
func (s *StorefrontService) ChooseBySlug(ctx context.Context, productSlug string, sel variant.Selection, option, value string) (*ProductView, error) {
	p, err := s.products.GetProductBySlug(ctx, productSlug)
	if err != nil {
		return nil, err
	}
	next, err := s.Choose(*p, sel, option, value)
	if err != nil {
		return nil, err
	}
	view := s.View(p, next)
	return &view, nil
}

// GetProductDetails describes a product for an order line. Products with
// variants need variantID.
func (s *StorefrontService) GetProductDetails(ctx context.Context, productID, variantID string) (*OrderDetails, error) {
	p, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	details := &OrderDetails{ProductID: p.ID, Name: p.Name, Slug: p.Slug}

	if p.HasVariants() && variantID == "" {
		return nil, ErrVariantRequired
	}
	if variantID != "" {
		v, ok := p.FindVariant(variantID)
		if !ok {
			return nil, fmt.Errorf("variant with ID %s %w", variantID, ErrNotFound)
		}
		details.HasVariant = true
		details.Variant = v
	}
	details.DisplayPrice = variant.Price(*p, details.Variant)
	return details, nil
}
