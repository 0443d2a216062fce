package models

import (
	"time"

	"gorm.io/datatypes"
)

// Attribute pins one option of a variant to a value. OptionName is refreshed
// from the option catalog whenever a product is loaded.
type Attribute struct {
	OptionID   string `json:"optionId" bson:"option_id"`
	OptionName string `json:"optionName,omitempty" bson:"option_name,omitempty"`
	Value      string `json:"value" bson:"value"`
}

// Key is the name the storefront groups this attribute under.
func (a Attribute) Key() string {
	if a.OptionName != "" {
		return a.OptionName
	}
	return a.OptionID
}

// Variant is one purchasable combination of option values of a product.
type Variant struct {
	ID         string      `json:"id" bson:"id"`
	Attributes []Attribute `json:"attributes" bson:"attributes"`
	Price      float64     `json:"price" bson:"price"`
	Stock      int         `json:"stock" bson:"stock"`
	Discount   *float64    `json:"discount" bson:"discount"`
	SKU        string      `json:"sku" bson:"sku"`
}

// Value returns the variant's value for the named option.
func (v Variant) Value(option string) (string, bool) {
	for _, a := range v.Attributes {
		if a.Key() == option {
			return a.Value, true
		}
	}
	return "", false
}

// Product represents a product in the store. When Variants is empty the flat
// Price, Discount and Stock fields apply.
type Product struct {
	ID            string         `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Name          string         `json:"name" gorm:"type:varchar(200)" bson:"name" validate:"required,min=3,max=200"`
	Slug          string         `json:"slug" gorm:"uniqueIndex;type:varchar(220)" bson:"slug"`
	Price         float64        `json:"price" bson:"price" validate:"gte=0"`
	Discount      float64        `json:"discount" bson:"discount" validate:"gte=0"`
	Stock         int            `json:"stock" bson:"stock" validate:"gte=0"`
	OptionOrder   []string       `json:"optionOrder,omitempty" gorm:"serializer:json" bson:"option_order,omitempty"`
	Variants      []Variant      `json:"variants" gorm:"serializer:json" bson:"variants"`
	Specification datatypes.JSON `json:"specification,omitempty" bson:"specification,omitempty"`
	IsActive      bool           `json:"isActive" bson:"is_active"`
	CreatedAt     time.Time      `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time      `json:"updatedAt" bson:"updated_at"`
}

// HasVariants reports whether per-variant pricing applies.
func (p Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// FindVariant returns the variant with the given id.
func (p Product) FindVariant(id string) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			v := p.Variants[i]
			return &v, true
		}
	}
	return nil, false
}
