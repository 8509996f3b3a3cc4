package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"katalog/internal/apperr"
	"katalog/internal/cache"
	"katalog/internal/models"
	"katalog/internal/repositories"
)

// VariantService handles business logic for product variants.
type VariantService struct {
	variantRepo repositories.VariantRepository
	lists       *listCache
}

// NewVariantService creates a new VariantService.
func NewVariantService(variantRepo repositories.VariantRepository, store cache.Store, ttl time.Duration, logger *slog.Logger) *VariantService {
	return &VariantService{variantRepo: variantRepo, lists: newListCache(store, ttl, logger)}
}

// Create attaches a variant to a product. Color and size must be unique
// within the product.
func (s *VariantService) Create(ctx context.Context, productID string, in VariantInput) (*models.ProductVariant, error) {
	variant := &models.ProductVariant{
		ProductID: productID,
		Color:     in.Color,
		Size:      in.Size,
		Price:     in.Price,
		Quantity:  in.Quantity,
		Image:     in.Image,
	}
	if err := s.variantRepo.CreateForProduct(ctx, variant); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, apperr.NotFound("Product not found")
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, apperr.Conflict("Variant already exists")
		default:
			return nil, apperr.Internal("Failed to create product variant", err)
		}
	}
	s.lists.invalidate(ctx, cache.ProductPrefix, cache.VariantPrefix)
	return variant, nil
}

// List returns one page of variants.
func (s *VariantService) List(ctx context.Context, q repositories.ListQuery) (*models.Page[models.ProductVariant], error) {
	q.Normalize()
	return cachedList(ctx, s.lists, cache.VariantPrefix, q, q.Page, q.Limit, func(ctx context.Context) ([]models.ProductVariant, int64, error) {
		return s.variantRepo.List(ctx, q)
	})
}

// GetByID returns one variant.
func (s *VariantService) GetByID(ctx context.Context, id string) (*models.ProductVariant, error) {
	variant, err := s.variantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Variant not found")
	}
	return variant, nil
}

// Delete removes a variant.
func (s *VariantService) Delete(ctx context.Context, id string) (*models.ProductVariant, error) {
	variant, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.variantRepo.Delete(ctx, id); err != nil {
		return nil, notFoundOr(err, "Variant not found")
	}
	s.lists.invalidate(ctx, cache.ProductPrefix, cache.VariantPrefix)
	return variant, nil
}
