package handlers

import (
	"katalog/internal/middleware"
	"katalog/internal/models"
	"katalog/internal/repositories"
	"katalog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// VariantHandler handles HTTP requests for product variants.
type VariantHandler struct {
	variantService *services.VariantService
	validate       *validator.Validate
}

// NewVariantHandler creates a new VariantHandler.
func NewVariantHandler(variantService *services.VariantService) *VariantHandler {
	return &VariantHandler{variantService: variantService, validate: newValidator()}
}

// RegisterRoutes registers the product variant routes.
func (h *VariantHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	admin := middleware.RequireRoles(models.RoleAdmin)

	variants := router.Group("/product-variants")
	variants.Get("/", h.HandleList)
	variants.Get("/:id", h.HandleGet)
	variants.Post("/:productId", auth, admin, h.HandleCreate)
	variants.Delete("/:id", auth, admin, h.HandleDelete)
}

// HandleCreate attaches a variant to the product in the path.
func (h *VariantHandler) HandleCreate(c *fiber.Ctx) error {
	var req VariantRequest
	if err := bindBody(c, h.validate, &req); err != nil {
		return err
	}
	variant, err := h.variantService.Create(c.UserContext(), c.Params("productId"), req.input())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Product variant created successfully", variant)
}

func (h *VariantHandler) HandleList(c *fiber.Ctx) error {
	q, err := parseList(c, h.validate, repositories.VariantSortColumns)
	if err != nil {
		return err
	}
	page, err := h.variantService.List(c.UserContext(), q)
	if err != nil {
		return err
	}
	return respondPage(c, "Product variants found successfully", page)
}

func (h *VariantHandler) HandleGet(c *fiber.Ctx) error {
	variant, err := h.variantService.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Product variant found successfully", variant)
}

func (h *VariantHandler) HandleDelete(c *fiber.Ctx) error {
	variant, err := h.variantService.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Product variant deleted successfully", variant)
}
