package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storefront/internal/services"
	"storefront/internal/variant"
)

const msgInvalidSpecification = "Invalid specification format. Expected a valid JSON string."

// respondError maps service errors to a status code and the JSON error body.
func respondError(c *fiber.Ctx, log *zap.Logger, message string, err error) error {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  verr.Fields,
		})
	}

	var varErr *variant.Error
	if errors.As(err, &varErr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message":      message,
			"error":        err.Error(),
			"variantIndex": varErr.Index,
			"field":        varErr.Field,
			"attributes":   varErr.Attributes,
		})
	}

	status := statusOf(err)
	switch {
	case errors.Is(err, services.ErrInvalidSpecification):
		message = msgInvalidSpecification
	case errors.Is(err, variant.ErrIncompleteSelection):
		message = services.MessageIncompleteSelection
	case errors.Is(err, variant.ErrUnresolvedVariant):
		message = services.MessageOptionsUnavailable
	}
	if status >= fiber.StatusInternalServerError {
		log.Error(message, zap.String("path", c.Path()), zap.Error(err))
	} else {
		log.Debug(message, zap.String("path", c.Path()), zap.Int("status", status), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrOptionNameTaken),
		errors.Is(err, services.ErrAccountTaken),
		errors.Is(err, services.ErrSlugTaken):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrInvalidSpecification),
		errors.Is(err, services.ErrVariantRequired),
		errors.Is(err, variant.ErrIncompleteSelection),
		errors.Is(err, variant.ErrMissingField),
		errors.Is(err, variant.ErrInvalidField):
		return fiber.StatusBadRequest
	case errors.Is(err, variant.ErrUnknownOption),
		errors.Is(err, variant.ErrOptionLocked),
		errors.Is(err, variant.ErrValueUnavailable),
		errors.Is(err, variant.ErrUnresolvedVariant),
		errors.Is(err, variant.ErrDuplicateCombination),
		errors.Is(err, variant.ErrOutOfStock),
		errors.Is(err, variant.ErrQuantityLimit):
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

func badBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}
