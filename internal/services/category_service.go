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

// CategoryService handles business logic for categories.
type CategoryService struct {
	categoryRepo repositories.CategoryRepository
	queue        JobQueue
	lists        *listCache
	logger       *slog.Logger
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(categoryRepo repositories.CategoryRepository, store cache.Store, ttl time.Duration, queue JobQueue, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		queue:        queue,
		lists:        newListCache(store, ttl, logger),
		logger:       logger,
	}
}

// Create adds a category with a slug derived from its name.
func (s *CategoryService) Create(ctx context.Context, name string) (*models.Category, error) {
	category := &models.Category{Name: name, Slug: Slugify(name)}
	if err := s.checkConflict(ctx, category.Name, category.Slug, ""); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, conflictOr(err, "Category already exists", apperr.Internal("Failed to create category", err))
	}
	s.lists.invalidate(ctx, cache.CategoryPrefix)
	return category, nil
}

// List returns one page of categories.
func (s *CategoryService) List(ctx context.Context, q repositories.ListQuery) (*models.Page[models.Category], error) {
	q.Normalize()
	return cachedList(ctx, s.lists, cache.CategoryPrefix, q, q.Page, q.Limit, func(ctx context.Context) ([]models.Category, int64, error) {
		return s.categoryRepo.List(ctx, q)
	})
}

// GetByID returns one category.
func (s *CategoryService) GetByID(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Category not found")
	}
	return category, nil
}

// Update renames a category. A nil name leaves it unchanged.
func (s *CategoryService) Update(ctx context.Context, id string, name *string) (*models.Category, error) {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		category.Name = *name
		category.Slug = Slugify(*name)
	}
	if err := s.checkConflict(ctx, category.Name, category.Slug, category.ID); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, conflictOr(err, "Category already exists", notFoundOr(err, "Category not found"))
	}
	s.lists.invalidate(ctx, cache.CategoryPrefix, cache.ProductPrefix)
	return category, nil
}

// Delete removes a category and schedules pulling it from products.
func (s *CategoryService) Delete(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return nil, notFoundOr(err, "Category not found")
	}
	s.lists.invalidate(ctx, cache.CategoryPrefix)

	jobID, err := s.queue.Enqueue(ctx, jobs.CategoryDeleted{CategoryID: category.ID, Name: category.Name})
	if err != nil {
		return nil, apperr.Internal("Failed to schedule category cleanup", err)
	}
	s.logger.Info("Category deleted", "categoryId", category.ID, "jobId", jobID)
	return category, nil
}

func (s *CategoryService) checkConflict(ctx context.Context, name, slug, excludeID string) error {
	_, err := s.categoryRepo.FindConflict(ctx, name, slug, excludeID)
	found, err := exists(err)
	if err != nil {
		return apperr.Internal("Failed to check category", err)
	}
	if found {
		return apperr.Conflict("Category already exists")
	}
	return nil
}
