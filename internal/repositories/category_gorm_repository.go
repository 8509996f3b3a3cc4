package repositories

import (
	"context"
	"fmt"

	"katalog/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

// NewGORMCategoryRepository creates a new instance of GORMCategoryRepository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

// Create creates a new category in the database.
func (r *GORMCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", duplicateOr(err))
	}
	return nil
}

// GetByID retrieves a category by its ID from the database.
func (r *GORMCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get category by ID %s: %w", id, notFoundOr(err))
	}
	return &category, nil
}

// CountByIDs counts how many of the given ids exist.
func (r *GORMCategoryRepository) CountByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Category{}).Where("id IN ?", ids).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}
	return n, nil
}

// FindConflict returns a category other than excludeID that already uses name or slug.
func (r *GORMCategoryRepository) FindConflict(ctx context.Context, name, slug, excludeID string) (*models.Category, error) {
	var category models.Category
	if err := conflictQuery(r.db.WithContext(ctx), name, slug, excludeID).First(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to look up category conflict: %w", notFoundOr(err))
	}
	return &category, nil
}

// Update persists the category's name and slug.
func (r *GORMCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	res := r.db.WithContext(ctx).Model(category).Select("name", "slug", "updated_at").Updates(category)
	if res.Error != nil {
		return fmt.Errorf("failed to update category: %w", duplicateOr(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to update category %s: %w", category.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a category. Product links are cleaned up asynchronously.
func (r *GORMCategoryRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to delete category %s: %w", id, ErrNotFound)
	}
	return nil
}

// List returns one page of categories matching q and the total match count.
func (r *GORMCategoryRepository) List(ctx context.Context, q ListQuery) ([]models.Category, int64, error) {
	base := func() *gorm.DB {
		return r.db.Model(&models.Category{}).Scopes(searchScope(q.Search, "categories.name", "categories.slug"))
	}
	categories, total, err := findPage[models.Category](ctx, base, q, orderClause("categories", q, CategorySortColumns))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, total, nil
}
