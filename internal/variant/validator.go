package variant

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"storefront/internal/models"
)

// Payload is one raw entry of the variants list sent with a product create or
// update. Numeric fields hold whatever the client sent (number or string); a
// nil field was absent from the request.
type Payload struct {
	ID         string             `json:"id,omitempty"`
	Attributes []models.Attribute `json:"attributes,omitempty"`
	Price      any                `json:"price,omitempty"`
	Stock      any                `json:"stock,omitempty"`
	Discount   any                `json:"discount,omitempty"`
	SKU        *string            `json:"sku,omitempty"`
}

// Validator turns incoming payloads into the variant list to persist.
type Validator struct {
	newID func() string
}

// NewValidator creates a Validator that assigns random ids to new variants.
func NewValidator() *Validator {
	return &Validator{newID: uuid.NewString}
}

// Validate merges incoming into existing. Payloads whose id matches a stored
// variant keep that variant's attributes and overwrite only the fields they
// carry; every other payload is a new variant and must bring attributes, price
// and stock. Payloads are processed in order and the first failure aborts the
// whole list.
func (val *Validator) Validate(existing []models.Variant, incoming []Payload) ([]models.Variant, error) {
	stored := make(map[string]models.Variant, len(existing))
	for _, v := range existing {
		stored[v.ID] = v
	}

	out := make([]models.Variant, 0, len(incoming))
	seen := make(map[string]int, len(incoming))
	for i, p := range incoming {
		var (
			v     models.Variant
			field string
			err   error
		)
		id := strings.TrimSpace(p.ID)
		if prev, ok := stored[id]; ok && id != "" {
			v, field, err = merge(prev, p)
		} else {
			v, field, err = val.build(p)
		}
		if err == nil {
			field, err = checkRanges(v)
		}
		if err != nil {
			attrs := v.Attributes
			if attrs == nil {
				attrs = p.Attributes
			}
			return nil, &Error{Index: i, Field: field, Attributes: attrs, Err: err}
		}

		key := CombinationKey(v.Attributes)
		if j, dup := seen[key]; dup {
			return nil, &Error{
				Index:      i,
				Field:      "attributes",
				Attributes: v.Attributes,
				Err:        fmt.Errorf("%w: same options as variant %d", ErrDuplicateCombination, j),
			}
		}
		seen[key] = i
		out = append(out, v)
	}

	if i, err := checkOptionSets(out); err != nil {
		return nil, &Error{Index: i, Field: "attributes", Attributes: out[i].Attributes, Err: err}
	}
	return out, nil
}

// checkOptionSets requires every variant to use the options of the first one.
// A variant missing an option another variant uses could never be resolved.
func checkOptionSets(variants []models.Variant) (int, error) {
	if len(variants) == 0 {
		return 0, nil
	}
	want := optionSet(variants[0].Attributes)
	for i := 1; i < len(variants); i++ {
		if got := optionSet(variants[i].Attributes); !slices.Equal(got, want) {
			return i, fmt.Errorf("%w: options [%s] differ from variant 0 [%s]",
				ErrInvalidField, strings.Join(got, ", "), strings.Join(want, ", "))
		}
	}
	return 0, nil
}

func optionSet(attrs []models.Attribute) []string {
	keys := make([]string, 0, len(attrs))
	for _, a := range attrs {
		keys = append(keys, optionKey(a))
	}
	sort.Strings(keys)
	return keys
}

func optionKey(a models.Attribute) string {
	if a.OptionID != "" {
		return a.OptionID
	}
	return a.OptionName
}

func merge(prev models.Variant, p Payload) (models.Variant, string, error) {
	v := prev
	v.Attributes = append([]models.Attribute(nil), prev.Attributes...)

	if p.Price != nil {
		price, err := CoerceFloat(p.Price)
		if err != nil {
			return v, "price", err
		}
		v.Price = price
	}
	if p.Stock != nil {
		stock, err := CoerceInt(p.Stock)
		if err != nil {
			return v, "stock", err
		}
		v.Stock = stock
	}
	if p.Discount != nil {
		discount, err := coerceDiscount(p.Discount)
		if err != nil {
			return v, "discount", err
		}
		v.Discount = discount
	}
	if p.SKU != nil {
		v.SKU = strings.TrimSpace(*p.SKU)
	}
	return v, "", nil
}

func (val *Validator) build(p Payload) (models.Variant, string, error) {
	var v models.Variant
	if len(p.Attributes) == 0 {
		return v, "attributes", ErrMissingField
	}
	if absent(p.Price) {
		return v, "price", ErrMissingField
	}
	if absent(p.Stock) {
		return v, "stock", ErrMissingField
	}

	attrs, err := normalizeAttributes(p.Attributes)
	if err != nil {
		return v, "attributes", err
	}
	price, err := CoerceFloat(p.Price)
	if err != nil {
		return v, "price", err
	}
	stock, err := CoerceInt(p.Stock)
	if err != nil {
		return v, "stock", err
	}
	discount, err := coerceDiscount(p.Discount)
	if err != nil {
		return v, "discount", err
	}

	v = models.Variant{
		ID:         val.newID(),
		Attributes: attrs,
		Price:      price,
		Stock:      stock,
		Discount:   discount,
	}
	if p.SKU != nil {
		v.SKU = strings.TrimSpace(*p.SKU)
	}
	return v, "", nil
}

func normalizeAttributes(in []models.Attribute) ([]models.Attribute, error) {
	out := make([]models.Attribute, 0, len(in))
	options := make(map[string]bool, len(in))
	for j, a := range in {
		a.OptionID = strings.TrimSpace(a.OptionID)
		a.OptionName = strings.TrimSpace(a.OptionName)
		a.Value = strings.TrimSpace(a.Value)
		if a.Key() == "" || a.Value == "" {
			return nil, fmt.Errorf("%w: attribute %d needs an option and a value", ErrMissingField, j)
		}
		if options[a.Key()] {
			return nil, fmt.Errorf("%w: option %s is used twice", ErrInvalidField, a.Key())
		}
		options[a.Key()] = true
		out = append(out, a)
	}
	return out, nil
}

func checkRanges(v models.Variant) (string, error) {
	if !(v.Price > 0) || math.IsInf(v.Price, 0) {
		return "price", fmt.Errorf("%w: price must be positive", ErrInvalidField)
	}
	if v.Stock < 0 {
		return "stock", fmt.Errorf("%w: stock must not be negative", ErrInvalidField)
	}
	if v.Discount != nil && *v.Discount >= v.Price {
		return "discount", fmt.Errorf("%w: discount must be lower than price", ErrInvalidField)
	}
	return "", nil
}

// CombinationKey identifies a set of attributes regardless of their order.
func CombinationKey(attrs []models.Attribute) string {
	pairs := make([]string, 0, len(attrs))
	for _, a := range attrs {
		pairs = append(pairs, optionKey(a)+"\x1f"+a.Value)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "\x1e")
}

func absent(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// CoerceFloat converts a number or numeric string to float64.
func CoerceFloat(v any) (float64, error) {
	switch x := v.(type) {
	case bool:
		return 0, fmt.Errorf("%w: %v is not a number", ErrInvalidField, x)
	case string:
		v = strings.TrimSpace(x)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) {
		return 0, fmt.Errorf("%w: %v is not a number", ErrInvalidField, v)
	}
	return f, nil
}

// CoerceInt converts a whole number or numeric string to int.
func CoerceInt(v any) (int, error) {
	f, err := CoerceFloat(v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v is not a whole number", ErrInvalidField, v)
	}
	return int(f), nil
}

// coerceDiscount maps "" and zero to no discount.
func coerceDiscount(v any) (*float64, error) {
	if absent(v) {
		return nil, nil
	}
	d, err := CoerceFloat(v)
	if err != nil {
		return nil, err
	}
	if d < 0 {
		return nil, fmt.Errorf("%w: discount must not be negative", ErrInvalidField)
	}
	if d == 0 {
		return nil, nil
	}
	return &d, nil
}
