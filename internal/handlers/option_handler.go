package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/services"
)

// OptionHandler serves the admin option catalog.
type OptionHandler struct {
	service *services.OptionService
	log     *zap.Logger
}

// NewOptionHandler creates a new OptionHandler.
func NewOptionHandler(service *services.OptionService, log *zap.Logger) *OptionHandler {
	return &OptionHandler{service: service, log: log}
}

// RegisterRoutes registers the option routes.
func (h *OptionHandler) RegisterRoutes(router fiber.Router) {
	optionRoutes := router.Group("/options")
	optionRoutes.Get("/", h.HandleGetOptions)
	optionRoutes.Get("/:id", h.HandleGetOptionByID)
	optionRoutes.Post("/", h.HandleCreateOption)
	optionRoutes.Put("/:id", h.HandleUpdateOption)
	optionRoutes.Delete("/:id", h.HandleDeleteOption)
}

type optionRequest struct {
	Name   string   `json:"name" form:"name"`
	Values []string `json:"values" form:"values"`
}

func (h *OptionHandler) HandleGetOptions(c *fiber.Ctx) error {
	options, err := h.service.GetAllOptions(c.UserContext())
	if err != nil {
		return respondError(c, h.log, "Could not retrieve options", err)
	}
	return c.JSON(options)
}

func (h *OptionHandler) HandleGetOptionByID(c *fiber.Ctx) error {
	option, err := h.service.GetOptionByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, "Could not retrieve option", err)
	}
	return c.JSON(option)
}

func (h *OptionHandler) HandleCreateOption(c *fiber.Ctx) error {
	var req optionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	option := models.Option{Name: req.Name, Values: req.Values}
	if err := h.service.CreateOption(c.UserContext(), &option); err != nil {
		return respondError(c, h.log, "Could not create option", err)
	}
	return c.Status(fiber.StatusCreated).JSON(option)
}

func (h *OptionHandler) HandleUpdateOption(c *fiber.Ctx) error {
	var req optionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	option := models.Option{ID: c.Params("id"), Name: req.Name, Values: req.Values}
	if err := h.service.UpdateOption(c.UserContext(), &option); err != nil {
		return respondError(c, h.log, "Could not update option", err)
	}
	return c.JSON(option)
}

func (h *OptionHandler) HandleDeleteOption(c *fiber.Ctx) error {
	if err := h.service.DeleteOption(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, h.log, "Could not delete option", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
