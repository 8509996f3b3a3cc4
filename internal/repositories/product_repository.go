package repositories

import (
	"context"

	"katalog/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product, categoryIDs []string) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	FindConflict(ctx context.Context, name, slug, excludeID string) (*models.Product, error)
	Update(ctx context.Context, product *models.Product, categoryIDs []string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q ProductQuery) ([]models.Product, int64, error)
	UnsetBrand(ctx context.Context, brandID string) (int64, error)
	RemoveCategory(ctx context.Context, categoryID string) (int64, error)
}

// VariantRepository defines the interface for product variant data access.
type VariantRepository interface {
	CreateForProduct(ctx context.Context, variant *models.ProductVariant) error
	GetByID(ctx context.Context, id string) (*models.ProductVariant, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q ListQuery) ([]models.ProductVariant, int64, error)
}
