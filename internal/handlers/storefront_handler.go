package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storefront/internal/services"
	"storefront/internal/variant"
)

// StorefrontHandler serves the shopper facing product routes.
type StorefrontHandler struct {
	service *services.StorefrontService
	log     *zap.Logger
}

// NewStorefrontHandler creates a new StorefrontHandler.
func NewStorefrontHandler(service *services.StorefrontService, log *zap.Logger) *StorefrontHandler {
	return &StorefrontHandler{service: service, log: log}
}

// RegisterRoutes registers the storefront routes.
func (h *StorefrontHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/:id/order-details", h.HandleOrderDetails)
	productRoutes.Get("/:slug", h.HandleGetProduct)
	productRoutes.Post("/:slug/availability", h.HandleAvailability)
	productRoutes.Post("/:slug/choose", h.HandleChoose)
	productRoutes.Post("/:slug/resolve", h.HandleResolve)
}

type selectionRequest struct {
	Selection variant.Selection `json:"selection"`
}

type chooseRequest struct {
	Selection variant.Selection `json:"selection"`
	Option    string            `json:"option"`
	Value     string            `json:"value"`
}

// HandleGetProduct returns the product with its option order, initial
// selection and display price.
func (h *StorefrontHandler) HandleGetProduct(c *fiber.Ctx) error {
	view, err := h.service.ViewBySlug(c.UserContext(), c.Params("slug"), variant.Selection{})
	if err != nil {
		return respondError(c, h.log, "Could not retrieve product", err)
	}
	return c.JSON(view)
}

// HandleAvailability reports which values of every option can be picked.
func (h *StorefrontHandler) HandleAvailability(c *fiber.Ctx) error {
	var req selectionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	view, err := h.service.ViewBySlug(c.UserContext(), c.Params("slug"), req.Selection)
	if err != nil {
		return respondError(c, h.log, "Could not compute availability", err)
	}
	return c.JSON(fiber.Map{
		"optionOrder": view.OptionOrder,
		"selection":   view.Selection,
		"state":       view.State,
		"options":     view.Options,
	})
}

// HandleChoose applies one choice and returns the new selection.
func (h *StorefrontHandler) HandleChoose(c *fiber.Ctx) error {
	var req chooseRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if req.Option == "" || req.Value == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  fiber.Map{"option": "option and value are required"},
		})
	}
	view, err := h.service.ChooseBySlug(c.UserContext(), c.Params("slug"), req.Selection, req.Option, req.Value)
	if err != nil {
		return respondError(c, h.log, "Could not choose option", err)
	}
	return c.JSON(view)
}

// HandleResolve returns the variant matching the selection, or null.
func (h *StorefrontHandler) HandleResolve(c *fiber.Ctx) error {
	var req selectionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	view, err := h.service.ViewBySlug(c.UserContext(), c.Params("slug"), req.Selection)
	if err != nil {
		return respondError(c, h.log, "Could not resolve variant", err)
	}
	return c.JSON(fiber.Map{
		"variant":      view.Variant,
		"state":        view.State,
		"selection":    view.Selection,
		"displayPrice": view.DisplayPrice,
		"message":      view.Message,
	})
}

// HandleOrderDetails describes a product and variant for an order line.
func (h *StorefrontHandler) HandleOrderDetails(c *fiber.Ctx) error {
	details, err := h.service.GetProductDetails(c.UserContext(), c.Params("id"), c.Query("variantId"))
	if err != nil {
		return respondError(c, h.log, "Could not retrieve product details", err)
	}
	return c.JSON(details)
}
