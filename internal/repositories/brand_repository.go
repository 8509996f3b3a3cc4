package repositories

import (
	"context"

	"katalog/internal/models"
)

// BrandRepository defines the interface for brand data access.
type BrandRepository interface {
	Create(ctx context.Context, brand *models.Brand) error
	GetByID(ctx context.Context, id string) (*models.Brand, error)
	FindConflict(ctx context.Context, name, slug, excludeID string) (*models.Brand, error)
	Update(ctx context.Context, brand *models.Brand) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q ListQuery) ([]models.Brand, int64, error)
}

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id string) (*models.Category, error)
	CountByIDs(ctx context.Context, ids []string) (int64, error)
	FindConflict(ctx context.Context, name, slug, excludeID string) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q ListQuery) ([]models.Category, int64, error)
}
