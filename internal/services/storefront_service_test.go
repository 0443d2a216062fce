package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/internal/variant"
)

func createPhone(t *testing.T, e *env) *models.Product {
	t.Helper()
	p, err := e.products.CreateProduct(e.ctx, phoneInput())
	require.NoError(t, err)
	return p
}

func TestStorefrontService_GetOptionOrder(t *testing.T) {
	e := newEnv(t, nil, nil)
	p := createPhone(t, e)
	assert.Equal(t, []string{"Color", "Storage"}, e.storefront.GetOptionOrder(*p))

	p.OptionOrder = []string{"Storage"}
	assert.Equal(t, []string{"Storage", "Color"}, e.storefront.GetOptionOrder(*p))
}

// Scenario A.
func TestStorefrontService_GetAvailableValues(t *testing.T) {
	e := newEnv(t, nil, nil)
	p := createPhone(t, e)

	values, err := e.storefront.GetAvailableValues(*p, "Storage", sel("Color", "White"))
	require.NoError(t, err)
	assert.Equal(t, []variant.ValueAvailability{
		{Value: "128GB", Available: true},
		{Value: "256GB", Available: false},
	}, values)

	// Scenario C: Storage stays locked until Color is chosen.
	values, err = e.storefront.GetAvailableValues(*p, "Storage", sel("Storage", "256GB"))
	require.NoError(t, err)
	for _, v := range values {
		assert.False(t, v.Available, v.Value)
	}

	_, err = e.storefront.GetAvailableValues(*p, "Size", sel())
	assert.ErrorIs(t, err, variant.ErrUnknownOption)
}

// Scenario B.
func TestStorefrontService_ResolveVariant(t *testing.T) {
	e := newEnv(t, nil, nil)
	p := createPhone(t, e)

	v := e.storefront.ResolveVariant(*p, sel("Color", "Black", "Storage", "256GB"))
	require.NotNil(t, v)
	assert.Equal(t, 12.0, v.Price)

	assert.Nil(t, e.storefront.ResolveVariant(*p, sel("Color", "Black")))
	assert.Nil(t, e.storefront.ResolveVariant(*p, sel("Color", "White", "Storage", "256GB")))
}

func TestStorefrontService_SingleVariantShortcut(t *testing.T) {
	e := newEnv(t, nil, nil)
	p, err := e.products.CreateProduct(e.ctx, services.ProductInput{
		Name: strptr("Phone Mini"),
		Variants: []variant.Payload{
			{Attributes: attrs("Color", "White", "Storage", "128GB"), Price: 7, Stock: 2},
		},
	})
	require.NoError(t, err)

	v := e.storefront.ResolveVariant(*p, sel())
	require.NotNil(t, v)
	assert.Equal(t, p.Variants[0].ID, v.ID)

	view := e.storefront.View(p, sel())
	assert.Equal(t, variant.StateResolved, view.State)
	assert.Equal(t, "White", view.Selection.Map()["Color"])
	assert.Empty(t, view.Message)
}

func TestStorefrontService_ZeroVariants(t *testing.T) {
	e := newEnv(t, nil, nil)
	p, err := e.products.CreateProduct(e.ctx, services.ProductInput{
		Name: strptr("Gift Card"), Price: 50, Discount: 40, Stock: 10,
	})
	require.NoError(t, err)

	assert.Nil(t, e.storefront.ResolveVariant(*p, sel("Color", "Black")))
	price := e.storefront.GetDisplayPrice(*p, nil)
	assert.Equal(t, 50.0, price.RegularPrice)
	require.NotNil(t, price.OfferPrice)
	assert.Equal(t, 40.0, *price.OfferPrice)
	assert.Equal(t, 20, price.DiscountPercent)

	view := e.storefront.View(p, sel())
	assert.False(t, view.HasVariants)
	assert.Empty(t, view.OptionOrder)
	assert.Equal(t, 10, view.DisplayPrice.Stock)
}

func TestStorefrontService_ChooseBySlug(t *testing.T) {
	e := newEnv(t, nil, nil)
	createPhone(t, e)

	view, err := e.storefront.ChooseBySlug(e.ctx, "phone-x", sel("Color", "Black", "Storage", "256GB"), "Color", "White")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Color": "White"}, view.Selection.Map())
	assert.Equal(t, variant.StatePartial, view.State)
	assert.Equal(t, services.MessageIncompleteSelection, view.Message)
	assert.Nil(t, view.Variant)
	assert.Equal(t, 10.0, view.DisplayPrice.RegularPrice)

	_, err = e.storefront.ChooseBySlug(e.ctx, "phone-x", sel(), "Storage", "128GB")
	assert.ErrorIs(t, err, variant.ErrOptionLocked)

	_, err = e.storefront.ChooseBySlug(e.ctx, "phone-x", sel("Color", "White"), "Storage", "256GB")
	assert.ErrorIs(t, err, variant.ErrValueUnavailable)
}

func TestStorefrontService_ViewBySlug(t *testing.T) {
	e := newEnv(t, nil, nil)
	createPhone(t, e)

	view, err := e.storefront.ViewBySlug(e.ctx, "phone-x", sel("Color", "Black", "Storage", "256GB"))
	require.NoError(t, err)
	assert.Equal(t, variant.StateResolved, view.State)
	require.NotNil(t, view.Variant)
	assert.Equal(t, 12.0, view.DisplayPrice.RegularPrice)
	require.NotNil(t, view.DisplayPrice.OfferPrice)
	assert.Equal(t, 9.0, *view.DisplayPrice.OfferPrice)
	assert.Equal(t, 25, view.DisplayPrice.DiscountPercent)
	require.Len(t, view.Options, 2)
	assert.False(t, view.Options[1].Locked)

	view, err = e.storefront.ViewBySlug(e.ctx, "phone-x", sel("Color", "White", "Storage", "256GB"))
	require.NoError(t, err)
	assert.Equal(t, variant.StateUnresolved, view.State)
	assert.Equal(t, services.MessageOptionsUnavailable, view.Message)
	assert.Nil(t, view.Variant)

	_, err = e.storefront.ViewBySlug(e.ctx, "missing", sel())
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestStorefrontService_GetProductDetails(t *testing.T) {
	e := newEnv(t, nil, nil)
	p := createPhone(t, e)

	_, err := e.storefront.GetProductDetails(e.ctx, p.ID, "")
	assert.ErrorIs(t, err, services.ErrVariantRequired)

	_, err = e.storefront.GetProductDetails(e.ctx, p.ID, "nope")
	assert.ErrorIs(t, err, services.ErrNotFound)

	details, err := e.storefront.GetProductDetails(e.ctx, p.ID, p.Variants[2].ID)
	require.NoError(t, err)
	assert.True(t, details.HasVariant)
	assert.Equal(t, 11.0, details.DisplayPrice.RegularPrice)
	assert.Equal(t, 0, details.DisplayPrice.Stock)

	flat, err := e.products.CreateProduct(e.ctx, services.ProductInput{Name: strptr("Sticker"), Price: 1, Stock: 100})
	require.NoError(t, err)
	details, err = e.storefront.GetProductDetails(e.ctx, flat.ID, "")
	require.NoError(t, err)
	assert.False(t, details.HasVariant)
	assert.Nil(t, details.Variant)
}
