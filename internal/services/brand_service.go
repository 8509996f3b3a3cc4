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

// BrandInput creates a brand.
type BrandInput struct {
	Name  string
	Image string
}

// BrandUpdate changes the fields that are set.
type BrandUpdate struct {
	Name  *string
	Image *string
}

// BrandService handles business logic for brands.
type BrandService struct {
	brandRepo repositories.BrandRepository
	queue     JobQueue
	lists     *listCache
	logger    *slog.Logger
}

// NewBrandService creates a new BrandService.
func NewBrandService(brandRepo repositories.BrandRepository, store cache.Store, ttl time.Duration, queue JobQueue, logger *slog.Logger) *BrandService {
	return &BrandService{
		brandRepo: brandRepo,
		queue:     queue,
		lists:     newListCache(store, ttl, logger),
		logger:    logger,
	}
}

// Create adds a brand with a slug derived from its name.
func (s *BrandService) Create(ctx context.Context, in BrandInput) (*models.Brand, error) {
	brand := &models.Brand{Name: in.Name, Slug: Slugify(in.Name), Image: in.Image}
	if err := s.checkConflict(ctx, brand.Name, brand.Slug, ""); err != nil {
		return nil, err
	}
	if err := s.brandRepo.Create(ctx, brand); err != nil {
		return nil, conflictOr(err, "Brand already exists", apperr.Internal("Failed to create brand", err))
	}
	s.lists.invalidate(ctx, cache.BrandPrefix)
	return brand, nil
}

// List returns one page of brands.
func (s *BrandService) List(ctx context.Context, q repositories.ListQuery) (*models.Page[models.Brand], error) {
	q.Normalize()
	return cachedList(ctx, s.lists, cache.BrandPrefix, q, q.Page, q.Limit, func(ctx context.Context) ([]models.Brand, int64, error) {
		return s.brandRepo.List(ctx, q)
	})
}

// GetByID returns one brand.
func (s *BrandService) GetByID(ctx context.Context, id string) (*models.Brand, error) {
	brand, err := s.brandRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Brand not found")
	}
	return brand, nil
}

// Update changes name and image. The slug follows the name.
func (s *BrandService) Update(ctx context.Context, id string, in BrandUpdate) (*models.Brand, error) {
	brand, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		brand.Name = *in.Name
		brand.Slug = Slugify(*in.Name)
	}
	if in.Image != nil {
		brand.Image = *in.Image
	}
	if err := s.checkConflict(ctx, brand.Name, brand.Slug, brand.ID); err != nil {
		return nil, err
	}
	if err := s.brandRepo.Update(ctx, brand); err != nil {
		return nil, conflictOr(err, "Brand already exists", notFoundOr(err, "Brand not found"))
	}
	s.lists.invalidate(ctx, cache.BrandPrefix, cache.ProductPrefix)
	return brand, nil
}

// Delete removes a brand and schedules detaching it from products.
func (s *BrandService) Delete(ctx context.Context, id string) (*models.Brand, error) {
	brand, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.brandRepo.Delete(ctx, id); err != nil {
		return nil, notFoundOr(err, "Brand not found")
	}
	s.lists.invalidate(ctx, cache.BrandPrefix)

	jobID, err := s.queue.Enqueue(ctx, jobs.BrandDeleted{BrandID: brand.ID, Name: brand.Name})
	if err != nil {
		return nil, apperr.Internal("Failed to schedule brand cleanup", err)
	}
	s.logger.Info("Brand deleted", "brandId", brand.ID, "jobId", jobID)
	return brand, nil
}

func (s *BrandService) checkConflict(ctx context.Context, name, slug, excludeID string) error {
	_, err := s.brandRepo.FindConflict(ctx, name, slug, excludeID)
	found, err := exists(err)
	if err != nil {
		return apperr.Internal("Failed to check brand", err)
	}
	if found {
		return apperr.Conflict("Brand already exists")
	}
	return nil
}
