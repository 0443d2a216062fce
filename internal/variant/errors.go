package variant

import (
	"errors"
	"fmt"

	"storefront/internal/models"
)

var (
	ErrMissingField         = errors.New("missing required field")
	ErrInvalidField         = errors.New("invalid field value")
	ErrDuplicateCombination = errors.New("duplicate attribute combination")
	ErrUnknownOption        = errors.New("unknown option")

	ErrNoVariants          = errors.New("product has no variants")
	ErrIncompleteSelection = errors.New("please select all variant options")
	ErrUnresolvedVariant   = errors.New("selected options are unavailable")
	ErrOptionLocked        = errors.New("option is locked until the previous options are selected")
	ErrValueUnavailable    = errors.New("option value is unavailable")

	ErrOutOfStock    = errors.New("out of stock")
	ErrQuantityLimit = errors.New("quantity out of range")
)

// Error ties a validation failure to the variant payload that caused it.
type Error struct {
	Index      int
	Field      string
	Attributes []models.Attribute
	Err        error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("variant %d: %s: %v", e.Index, e.Field, e.Err)
	}
	return fmt.Sprintf("variant %d: %v", e.Index, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
