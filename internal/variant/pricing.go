package variant

import (
	"math"

	"storefront/internal/models"
)

// MaxCartQuantity caps the quantity of a single cart line.
const MaxCartQuantity = 5

// DisplayPrice is what the storefront shows for a product or variant.
type DisplayPrice struct {
	RegularPrice    float64  `json:"regularPrice"`
	OfferPrice      *float64 `json:"offerPrice"`
	DiscountPercent int      `json:"discountPercent"`
	Stock           int      `json:"stock"`
}

// Price derives the display price from v when present, otherwise from the
// product's flat fields. A discount only counts as an offer when it is positive.
func Price(p models.Product, v *models.Variant) DisplayPrice {
	var dp DisplayPrice
	if v != nil {
		dp.RegularPrice = v.Price
		if v.Discount != nil && *v.Discount > 0 {
			offer := *v.Discount
			dp.OfferPrice = &offer
		}
	} else {
		dp.RegularPrice = p.Price
		if p.Discount > 0 {
			offer := p.Discount
			dp.OfferPrice = &offer
		}
	}
	dp.DiscountPercent = DiscountPercent(dp.RegularPrice, dp.OfferPrice)
	dp.Stock = Stock(p, v)
	return dp
}

// DiscountPercent is ceil((regular-offer)/regular*100), or 0 without a real offer.
func DiscountPercent(regular float64, offer *float64) int {
	if offer == nil || regular <= 0 || *offer >= regular {
		return 0
	}
	pct := (regular - *offer) / regular * 100
	// absorb float noise such as 20.000000000000004
	return int(math.Ceil(pct - 1e-9))
}

// UnitPrice is the price a shopper pays per item.
func (dp DisplayPrice) UnitPrice() float64 {
	if dp.OfferPrice != nil {
		return *dp.OfferPrice
	}
	return dp.RegularPrice
}

// Stock is the stock of v, or the flat stock when v is nil.
func Stock(p models.Product, v *models.Variant) int {
	if v != nil {
		return v.Stock
	}
	return p.Stock
}

// Purchasable checks that qty items of p (as v) may go into a cart.
func Purchasable(p models.Product, v *models.Variant, qty int) error {
	if p.HasVariants() && v == nil {
		return ErrIncompleteSelection
	}
	stock := Stock(p, v)
	if stock <= 0 {
		return ErrOutOfStock
	}
	if qty < 1 || qty > MaxCartQuantity {
		return ErrQuantityLimit
	}
	if qty > stock {
		return ErrOutOfStock
	}
	return nil
}
