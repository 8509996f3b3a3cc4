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

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	productService *services.ProductService
	validate       *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService, validate: newValidator()}
}

// RegisterRoutes registers the product routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	admin := middleware.RequireRoles(models.RoleAdmin)

	products := router.Group("/products")
	products.Get("/", h.HandleList)
	products.Get("/:id", h.HandleGet)
	products.Post("/", auth, admin, h.HandleCreate)
	products.Put("/:id", auth, admin, h.HandleUpdate)
	products.Delete("/:id", auth, admin, h.HandleDelete)
}

// VariantRequest describes one color/size combination of a product.
type VariantRequest struct {
	Color    string   `json:"color" validate:"required"`
	Size     string   `json:"size" validate:"required"`
	Price    *float64 `json:"price" validate:"required,gte=0"`
	Quantity *int     `json:"quantity" validate:"required,gte=0"`
	Image    string   `json:"image" validate:"omitempty,url"`
}

func (r *VariantRequest) trim() {
	r.Color = strings.TrimSpace(r.Color)
	r.Size = strings.TrimSpace(r.Size)
	r.Image = strings.TrimSpace(r.Image)
}

func (r VariantRequest) input() services.VariantInput {
	return services.VariantInput{
		Color:    r.Color,
		Size:     r.Size,
		Price:    *r.Price,
		Quantity: *r.Quantity,
		Image:    r.Image,
	}
}

// CreateProductRequest represents the request body for creating a product.
type CreateProductRequest struct {
	Name        string           `json:"name" validate:"required,min=3"`
	Description string           `json:"description" validate:"required,min=3"`
	Image       string           `json:"image" validate:"omitempty,url"`
	Brand       string           `json:"brand" validate:"required,uuid"`
	Category    []string         `json:"category" validate:"required,dive,uuid"`
	Variants    []VariantRequest `json:"variants" validate:"required,dive"`
}

func (r *CreateProductRequest) trim() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.Image = strings.TrimSpace(r.Image)
	for i := range r.Variants {
		r.Variants[i].trim()
	}
}

// UpdateProductRequest represents the request body for a partial product
// update. A present category list replaces the product's categories.
type UpdateProductRequest struct {
	Name        *string  `json:"name" validate:"omitnil,min=3"`
	Description *string  `json:"description" validate:"omitnil,min=3"`
	Image       *string  `json:"image" validate:"omitnil,url"`
	Brand       *string  `json:"brand" validate:"omitnil,uuid"`
	Category    []string `json:"category" validate:"omitempty,dive,uuid"`
}

func (r *UpdateProductRequest) trim() {
	trimPtr(r.Name)
	trimPtr(r.Description)
	trimPtr(r.Image)
	trimPtr(r.Brand)
}

type productFilters struct {
	BrandID    string `query:"brandId" validate:"omitempty,uuid"`
	CategoryID string `query:"categoryId" validate:"omitempty,uuid"`
}

// HandleCreate creates a product together with its variants.
func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	var req CreateProductRequest
	if err := bindBody(c, h.validate, &req); err != nil {
		return err
	}

	in := services.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		BrandID:     req.Brand,
		CategoryIDs: req.Category,
	}
	for _, v := range req.Variants {
		in.Variants = append(in.Variants, v.input())
	}

	product, err := h.productService.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "Product created successfully", product)
}

// HandleList returns a page of products with stock and price aggregates.
func (h *ProductHandler) HandleList(c *fiber.Ctx) error {
	list, err := parseList(c, h.validate, repositories.ProductSortColumns)
	if err != nil {
		return err
	}
	var f productFilters
	if err := bindQuery(c, h.validate, &f); err != nil {
		return err
	}

	page, err := h.productService.List(c.UserContext(), repositories.ProductQuery{
		ListQuery:  list,
		BrandID:    f.BrandID,
		CategoryID: f.CategoryID,
	})
	if err != nil {
		return err
	}
	return respondPage(c, "Products fetched successfully", page)
}

// HandleGet returns a product with its brand, categories and variants.
func (h *ProductHandler) HandleGet(c *fiber.Ctx) error {
	product, err := h.productService.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Product fetched successfully", product)
}

// HandleUpdate changes the fields present in the body. A category list, when
// sent, replaces the existing links.
func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	var req UpdateProductRequest
	if err := bindBody(c, h.validate, &req); err != nil {
		return err
	}
	product, err := h.productService.Update(c.UserContext(), c.Params("id"), services.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		BrandID:     req.Brand,
		CategoryIDs: req.Category,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Product updated successfully", product)
}

// HandleDelete removes a product with its variants and category links.
func (h *ProductHandler) HandleDelete(c *fiber.Ctx) error {
	product, err := h.productService.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Product deleted successfully", product)
}
