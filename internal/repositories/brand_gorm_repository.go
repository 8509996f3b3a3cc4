package repositories

import (
	"context"
	"fmt"

	"katalog/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMBrandRepository is a GORM implementation of BrandRepository.
type GORMBrandRepository struct {
	db *gorm.DB
}

// NewGORMBrandRepository creates a new instance of GORMBrandRepository.
func NewGORMBrandRepository(db *gorm.DB) *GORMBrandRepository {
	return &GORMBrandRepository{db: db}
}

// Create creates a new brand in the database.
func (r *GORMBrandRepository) Create(ctx context.Context, brand *models.Brand) error {
	if brand.ID == "" {
		brand.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(brand).Error; err != nil {
		return fmt.Errorf("failed to create brand: %w", duplicateOr(err))
	}
	return nil
}

// GetByID retrieves a brand by its ID from the database.
func (r *GORMBrandRepository) GetByID(ctx context.Context, id string) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.WithContext(ctx).First(&brand, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get brand by ID %s: %w", id, notFoundOr(err))
	}
	return &brand, nil
}

// FindConflict returns a brand other than excludeID that already uses name or slug.
func (r *GORMBrandRepository) FindConflict(ctx context.Context, name, slug, excludeID string) (*models.Brand, error) {
	var brand models.Brand
	if err := conflictQuery(r.db.WithContext(ctx), name, slug, excludeID).First(&brand).Error; err != nil {
		return nil, fmt.Errorf("failed to look up brand conflict: %w", notFoundOr(err))
	}
	return &brand, nil
}

// Update persists the brand's name, slug and image.
func (r *GORMBrandRepository) Update(ctx context.Context, brand *models.Brand) error {
	res := r.db.WithContext(ctx).Model(brand).Select("name", "slug", "image", "updated_at").Updates(brand)
	if res.Error != nil {
		return fmt.Errorf("failed to update brand: %w", duplicateOr(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to update brand %s: %w", brand.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a brand. Products referencing it are cleaned up asynchronously.
func (r *GORMBrandRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Brand{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete brand: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to delete brand %s: %w", id, ErrNotFound)
	}
	return nil
}

// List returns one page of brands matching q and the total match count.
func (r *GORMBrandRepository) List(ctx context.Context, q ListQuery) ([]models.Brand, int64, error) {
	base := func() *gorm.DB {
		return r.db.Model(&models.Brand{}).Scopes(searchScope(q.Search, "brands.name", "brands.slug"))
	}
	brands, total, err := findPage[models.Brand](ctx, base, q, orderClause("brands", q, BrandSortColumns))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list brands: %w", err)
	}
	return brands, total, nil
}

// conflictQuery matches rows sharing name or slug, ignoring excludeID when set.
func conflictQuery(tx *gorm.DB, name, slug, excludeID string) *gorm.DB {
	tx = tx.Where("(name = ? OR slug = ?)", name, slug)
	if excludeID != "" {
		tx = tx.Where("id <> ?", excludeID)
	}
	return tx
}
