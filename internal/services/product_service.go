package services

import (
	"context"
	"log/slog"
	"time"

	"katalog/internal/apperr"
	"katalog/internal/cache"
	"katalog/internal/jobs"
	"katalog/internal/models"
	"katalog/internal/repositories"
)

// VariantInput describes a variant created together with its product or
// attached to it later.
type VariantInput struct {
	Color    string
	Size     string
	Price    float64
	Quantity int
	Image    string
}

// ProductInput creates a product.
type ProductInput struct {
	Name        string
	Description string
	Image       string
	BrandID     string
	CategoryIDs []string
	Variants    []VariantInput
}

// ProductUpdate changes the fields that are set. A non-nil CategoryIDs
// replaces the product's categories.
type ProductUpdate struct {
	Name        *string
	Description *string
	Image       *string
	BrandID     *string
	CategoryIDs []string
}

// ProductService handles business logic for products.
type ProductService struct {
	productRepo  repositories.ProductRepository
	brandRepo    repositories.BrandRepository
	categoryRepo repositories.CategoryRepository
	queue        JobQueue
	lists        *listCache
	logger       *slog.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(
	productRepo repositories.ProductRepository,
	brandRepo repositories.BrandRepository,
	categoryRepo repositories.CategoryRepository,
	store cache.Store,
	ttl time.Duration,
	queue JobQueue,
	logger *slog.Logger,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		brandRepo:    brandRepo,
		categoryRepo: categoryRepo,
		queue:        queue,
		lists:        newListCache(store, ttl, logger),
		logger:       logger,
	}
}

// Create stores a product with its variants and categories and schedules the
// new product announcement.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	product := &models.Product{
		Name:        in.Name,
		Slug:        Slugify(in.Name),
		Description: in.Description,
		Image:       in.Image,
	}
	if err := s.checkConflict(ctx, product.Name, product.Slug, ""); err != nil {
		return nil, err
	}
	if in.BrandID != "" {
		if err := s.checkBrand(ctx, in.BrandID); err != nil {
			return nil, err
		}
		brandID := in.BrandID
		product.BrandID = &brandID
	}
	if err := s.checkCategories(ctx, in.CategoryIDs); err != nil {
		return nil, err
	}
	for _, v := range in.Variants {
		product.Variants = append(product.Variants, models.ProductVariant{
			Color:    v.Color,
			Size:     v.Size,
			Price:    v.Price,
			Quantity: v.Quantity,
			Image:    v.Image,
		})
	}

	if err := s.productRepo.Create(ctx, product, in.CategoryIDs); err != nil {
		return nil, conflictOr(err, "Product already exists", apperr.Internal("Failed to create product", err))
	}
	s.lists.invalidate(ctx, cache.ProductPrefix, cache.VariantPrefix)

	jobID, err := s.queue.Enqueue(ctx, jobs.ProductCreated{ProductID: product.ID, Name: product.Name, Slug: product.Slug})
	if err != nil {
		return nil, apperr.Internal("Failed to schedule product announcement", err)
	}
	s.logger.Info("Product created", "productId", product.ID, "jobId", jobID)
	return product, nil
}

// List returns one page of products with stock and price aggregates.
func (s *ProductService) List(ctx context.Context, q repositories.ProductQuery) (*models.Page[models.ProductListItem], error) {
	q.Normalize()
	return cachedList(ctx, s.lists, cache.ProductPrefix, q, q.Page, q.Limit, func(ctx context.Context) ([]models.ProductListItem, int64, error) {
		products, total, err := s.productRepo.List(ctx, q)
		if err != nil {
			return nil, 0, err
		}
		items := make([]models.ProductListItem, 0, len(products))
		for _, p := range products {
			items = append(items, models.NewProductListItem(p))
		}
		return items, total, nil
	})
}

// GetByID returns a product with its brand, categories and variants.
func (s *ProductService) GetByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Product not found")
	}
	return product, nil
}

// Update applies a partial update. The slug follows the name.
func (s *ProductService) Update(ctx context.Context, id string, in ProductUpdate) (*models.Product, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		product.Name = *in.Name
		product.Slug = Slugify(*in.Name)
		if err := s.checkConflict(ctx, product.Name, product.Slug, product.ID); err != nil {
			return nil, err
		}
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Image != nil {
		product.Image = *in.Image
	}
	if in.BrandID != nil {
		if err := s.checkBrand(ctx, *in.BrandID); err != nil {
			return nil, err
		}
		brandID := *in.BrandID
		product.BrandID = &brandID
	}
	if in.CategoryIDs != nil {
		if err := s.checkCategories(ctx, in.CategoryIDs); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Update(ctx, product, in.CategoryIDs); err != nil {
		return nil, conflictOr(err, "Product already exists", notFoundOr(err, "Product not found"))
	}
	s.lists.invalidate(ctx, cache.ProductPrefix)
	return s.GetByID(ctx, id)
}

// Delete removes a product with its variants and category links.
func (s *ProductService) Delete(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return nil, notFoundOr(err, "Product not found")
	}
	s.lists.invalidate(ctx, cache.ProductPrefix, cache.VariantPrefix)
	return product, nil
}

func (s *ProductService) checkConflict(ctx context.Context, name, slug, excludeID string) error {
	_, err := s.productRepo.FindConflict(ctx, name, slug, excludeID)
	found, err := exists(err)
	if err != nil {
		return apperr.Internal("Failed to check product", err)
	}
	if found {
		return apperr.Conflict("Product already exists")
	}
	return nil
}

func (s *ProductService) checkBrand(ctx context.Context, id string) error {
	if _, err := s.brandRepo.GetByID(ctx, id); err != nil {
		return notFoundOr(err, "Brand not found")
	}
	return nil
}

func (s *ProductService) checkCategories(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	unique := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	n, err := s.categoryRepo.CountByIDs(ctx, ids)
	if err != nil {
		return apperr.Internal("Failed to check categories", err)
	}
	if int(n) != len(unique) {
		return apperr.NotFound("Category not found")
	}
	return nil
}
