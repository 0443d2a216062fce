package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storefront/internal/services"
)

// CartHandler handles HTTP requests for carts.
type CartHandler struct {
	service *services.CartService
	log     *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, log *zap.Logger) *CartHandler {
	return &CartHandler{service: service, log: log}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/carts")
	cartRoutes.Post("/", h.HandleCreateCart)
	cartRoutes.Get("/:id", h.HandleGetCart)
	cartRoutes.Post("/:id/items", h.HandleAddItem)
}

type createCartRequest struct {
	Items []services.CartItemRequest `json:"items"`
}

// HandleCreateCart creates a cart, optionally with initial items.
func (h *CartHandler) HandleCreateCart(c *fiber.Ctx) error {
	var req createCartRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, err)
		}
	}
	cart, err := h.service.CreateCart(c.UserContext(), req.Items)
	if err != nil {
		return respondError(c, h.log, "Could not create cart", err)
	}
	return c.Status(fiber.StatusCreated).JSON(cart)
}

// HandleGetCart retrieves a cart by its ID.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.service.GetCart(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, "Could not retrieve cart", err)
	}
	return c.JSON(cart)
}

// HandleAddItem adds a product line to the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req services.CartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	cart, err := h.service.AddItem(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return respondError(c, h.log, "Could not add item to cart", err)
	}
	return c.JSON(cart)
}
