package models

import (
	"strings"
	"time"
)

// Option is a named product option (Color, Storage, ...) together with the
// ordered set of values a variant may pick from.
type Option struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Name      string    `json:"name" gorm:"uniqueIndex;type:varchar(100)" bson:"name" validate:"required,max=100"`
	Values    []string  `json:"values" gorm:"column:option_values;serializer:json" bson:"values" validate:"required,min=1,dive,required"`
	CreatedAt time.Time `json:"-" bson:"created_at"`
	UpdatedAt time.Time `json:"-" bson:"updated_at"`
}

// Normalize trims the name and every value, dropping empty and repeated values
// while keeping the first occurrence order.
func (o *Option) Normalize() {
	o.Name = strings.TrimSpace(o.Name)
	seen := make(map[string]struct{}, len(o.Values))
	values := make([]string, 0, len(o.Values))
	for _, v := range o.Values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	o.Values = values
}

// HasValue reports whether value is one of the option's legal values.
func (o Option) HasValue(value string) bool {
	for _, v := range o.Values {
		if v == value {
			return true
		}
	}
	return false
}
