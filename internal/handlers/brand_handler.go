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

// BrandHandler handles HTTP requests for brands.
type BrandHandler struct {
	brandService *services.BrandService
	validate     *validator.Validate
}

// NewBrandHandler creates a new BrandHandler.
func NewBrandHandler(brandService *services.BrandService) *BrandHandler {
	return &BrandHandler{brandService: brandService, validate: newValidator()}
}

// RegisterRoutes registers the brand routes. Reads are public; writes need
// an admin token authenticated by auth.
func (h *BrandHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	admin := middleware.RequireRoles(models.RoleAdmin)

	brands := router.Group("/brands")
	brands.Get("/", h.HandleList)
	brands.Get("/:id", h.HandleGet)
	brands.Post("/", auth, admin, h.HandleCreate)
	brands.Put("/:id", auth, admin, h.HandleUpdate)
	brands.Delete("/:id", auth, admin, h.HandleDelete)
}

// CreateBrandRequest represents the request body for creating a brand.
type CreateBrandRequest struct {
	Name  string `json:"name" validate:"required,min=3"`
	Image string `json:"image" validate:"omitempty,url"`
}

func (r *CreateBrandRequest) trim() {
	r.Name = strings.TrimSpace(r.Name)
	r.Image = strings.TrimSpace(r.Image)
}

// UpdateBrandRequest represents the request body for updating a brand.
type UpdateBrandRequest struct {
	Name  *string `json:"name" validate:"omitnil,min=3"`
	Image *string `json:"image" validate:"omitnil,url"`
}

func (r *UpdateBrandRequest) trim() {
	trimPtr(r.Name)
	trimPtr(r.Image)
}

// HandleCreate creates a brand.
func (h *BrandHandler) HandleCreate(c *fiber.Ctx) error {
	var req CreateBrandRequest
	if err := bindBody(c, h.validate, &req); err != nil {
		return err
	}
	brand, err := h.brandService.Create(c.UserContext(), services.BrandInput{Name: req.Name, Image: req.Image})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Brand created successfully", brand)
}

// HandleList returns a page of brands.
func (h *BrandHandler) HandleList(c *fiber.Ctx) error {
	q, err := parseList(c, h.validate, repositories.BrandSortColumns)
	if err != nil {
		return err
	}
	page, err := h.brandService.List(c.UserContext(), q)
	if err != nil {
		return err
	}
	return respondPage(c, "Brands fetched successfully", page)
}

// HandleGet returns one brand.
func (h *BrandHandler) HandleGet(c *fiber.Ctx) error {
	brand, err := h.brandService.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Brand fetched successfully", brand)
}

// HandleUpdate changes the fields present in the body.
func (h *BrandHandler) HandleUpdate(c *fiber.Ctx) error {
	var req UpdateBrandRequest
	if err := bindBody(c, h.validate, &req); err != nil {
		return err
	}
	brand, err := h.brandService.Update(c.UserContext(), c.Params("id"), services.BrandUpdate{Name: req.Name, Image: req.Image})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Brand updated successfully", brand)
}

// HandleDelete deletes a brand. Products referencing it are detached in the
// background.
func (h *BrandHandler) HandleDelete(c *fiber.Ctx) error {
	brand, err := h.brandService.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Brand deleted successfully", brand)
}
