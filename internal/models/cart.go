package models

import "time"

// CartItem is a priced line of a cart. Prices are captured when the line is added.
type CartItem struct {
	ProductID    string      `json:"productId"`
	VariantID    string      `json:"variantId,omitempty"`
	Name         string      `json:"name"`
	Attributes   []Attribute `json:"attributes,omitempty"`
	Quantity     int         `json:"quantity"`
	RegularPrice float64     `json:"regularPrice"`
	OfferPrice   *float64    `json:"offerPrice"`
	UnitPrice    float64     `json:"unitPrice"`
	LineTotal    float64     `json:"lineTotal"`
}

// Cart represents a shopper's cart.
type Cart struct {
	ID        string     `json:"id"`
	Items     []CartItem `json:"items"`
	Total     float64    `json:"total"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ProductEvent is published whenever the catalog changes.
type ProductEvent struct {
	Type      string    `json:"type"` // product.created, product.updated, product.deleted
	ProductID string    `json:"productId"`
	Slug      string    `json:"slug"`
	Variants  int       `json:"variants"`
	At        time.Time `json:"at"`
}
