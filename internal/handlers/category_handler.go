package handlers

import (
	"strings"

	"katalog/internal/middleware"
	"katalog/internal/models"
	"katalog/internal/repositories"
	"katalog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CategoryHandler handles HTTP requests for categories.
type CategoryHandler struct {
	categoryService *services.CategoryService
	validate        *validator.Validate
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryService *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, validate: newValidator()}
}

// RegisterRoutes registers the category routes.
func (h *CategoryHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	admin := middleware.RequireRoles(models.RoleAdmin)

	categories := router.Group("/categories")
	categories.Get("/", h.HandleList)
	categories.Get("/:id", h.HandleGet)
	categories.Post("/", auth, admin, h.HandleCreate)
	categories.Put("/:id", auth, admin, h.HandleUpdate)
	categories.Delete("/:id", auth, admin, h.HandleDelete)
}

// CreateCategoryRequest represents the request body for creating a category.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=3"`
}

func (r *CreateCategoryRequest) trim() { r.Name = strings.TrimSpace(r.Name) }

// UpdateCategoryRequest represents the request body for updating a category.
type UpdateCategoryRequest struct {
	Name *string `json:"name" validate:"omitnil,min=3"`
}

func (r *UpdateCategoryRequest) trim() { trimPtr(r.Name) }

func (h *CategoryHandler) HandleCreate(c *fiber.Ctx) error {
	var req CreateCategoryRequest
	if err := bindBody(c, h.validate, &req); err != nil {
		return err
	}
	category, err := h.categoryService.Create(c.UserContext(), req.Name)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Category created successfully", category)
}

func (h *CategoryHandler) HandleList(c *fiber.Ctx) error {
	q, err := parseList(c, h.validate, repositories.CategorySortColumns)
	if err != nil {
		return err
	}
	page, err := h.categoryService.List(c.UserContext(), q)
	if err != nil {
		return err
	}
	return respondPage(c, "Categories fetched successfully", page)
}

func (h *CategoryHandler) HandleGet(c *fiber.Ctx) error {
	category, err := h.categoryService.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Category fetched successfully", category)
}

func (h *CategoryHandler) HandleUpdate(c *fiber.Ctx) error {
	var req UpdateCategoryRequest
	if err := bindBody(c, h.validate, &req); err != nil {
		return err
	}
	category, err := h.categoryService.Update(c.UserContext(), c.Params("id"), req.Name)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Category updated successfully", category)
}

// HandleDelete deletes a category. Product links are removed in the
// background.
func (h *CategoryHandler) HandleDelete(c *fiber.Ctx) error {
	category, err := h.categoryService.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Category deleted successfully", category)
}
