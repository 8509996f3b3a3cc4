package repositories

import (
	"context"
	"fmt"

	"katalog/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// Create inserts the product, its variants and its category links in one
// transaction.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product, categoryIDs []string) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Brand", "Categories", "Variants").Create(product).Error; err != nil {
			return err
		}
		for i := range product.Variants {
			v := &product.Variants[i]
			if v.ID == "" {
				v.ID = uuid.New().String()
			}
			v.ProductID = product.ID
		}
		if len(product.Variants) > 0 {
			if err := tx.Create(&product.Variants).Error; err != nil {
				return err
			}
		}
		return linkCategories(tx, product.ID, categoryIDs)
	})
	if err != nil {
		return fmt.Errorf("failed to create product: %w", duplicateOr(err))
	}
	product.FillReferenceIDs()
	product.CategoryIDs = append([]string{}, categoryIDs...)
	return nil
}

// GetByID retrieves a product with its brand, categories and variants.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Brand").
		Preload("Categories").
		Preload("Variants").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, notFoundOr(err))
	}
	product.FillReferenceIDs()
	return &product, nil
}

// FindConflict returns a product other than excludeID that already uses name or slug.
func (r *GORMProductRepository) FindConflict(ctx context.Context, name, slug, excludeID string) (*models.Product, error) {
	var product models.Product
	if err := conflictQuery(r.db.WithContext(ctx), name, slug, excludeID).First(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to look up product conflict: %w", notFoundOr(err))
	}
	return &product, nil
}

// Update persists the scalar fields of product. When categoryIDs is non-nil
// the product's category links are replaced with it.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product, categoryIDs []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(product).
			Select("name", "slug", "description", "image", "brand_id", "updated_at").
			Updates(product)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if categoryIDs == nil {
			return nil
		}
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductCategory{}).Error; err != nil {
			return err
		}
		return linkCategories(tx, product.ID, categoryIDs)
	})
	if err != nil {
		return fmt.Errorf("failed to update product: %w", duplicateOr(err))
	}
	return nil
}

// Delete removes a product together with its variants and category links.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductVariant{}).Error; err != nil {
			return err
		}
		return tx.Where("product_id = ?", id).Delete(&models.ProductCategory{}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return nil
}

// List returns one page of products with variants and categories loaded.
func (r *GORMProductRepository) List(ctx context.Context, q ProductQuery) ([]models.Product, int64, error) {
	base := func() *gorm.DB {
		tx := r.db.Model(&models.Product{}).
			Scopes(searchScope(q.Search, "products.name", "products.slug", "products.description"))
		if q.BrandID != "" {
			tx = tx.Where("products.brand_id = ?", q.BrandID)
		}
		if q.CategoryID != "" {
			tx = tx.Where("products.id IN (?)",
				r.db.Model(&models.ProductCategory{}).Select("product_id").Where("category_id = ?", q.CategoryID))
		}
		return tx
	}
	products, total, err := findPage[models.Product](ctx, base, q.ListQuery,
		orderClause("products", q.ListQuery, ProductSortColumns), "Variants", "Categories")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// UnsetBrand clears the brand reference of every product pointing at brandID.
func (r *GORMProductRepository) UnsetBrand(ctx context.Context, brandID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("brand_id = ?", brandID).
		Update("brand_id", nil)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to unset brand %s on products: %w", brandID, res.Error)
	}
	return res.RowsAffected, nil
}

// RemoveCategory drops categoryID from every product's category set.
func (r *GORMProductRepository) RemoveCategory(ctx context.Context, categoryID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("category_id = ?", categoryID).Delete(&models.ProductCategory{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to remove category %s from products: %w", categoryID, res.Error)
	}
	return res.RowsAffected, nil
}

func linkCategories(tx *gorm.DB, productID string, categoryIDs []string) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	links := make([]models.ProductCategory, 0, len(categoryIDs))
	seen := make(map[string]struct{}, len(categoryIDs))
	for _, id := range categoryIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		links = append(links, models.ProductCategory{ProductID: productID, CategoryID: id})
	}
	return tx.Create(&links).Error
}

// GORMVariantRepository is a GORM implementation of VariantRepository.
type GORMVariantRepository struct {
	db *gorm.DB
}

// NewGORMVariantRepository creates a new instance of GORMVariantRepository.
func NewGORMVariantRepository(db *gorm.DB) *GORMVariantRepository {
	return &GORMVariantRepository{db: db}
}

// CreateForProduct inserts variant under its product. It fails with
// ErrNotFound when the product does not exist and ErrDuplicate when the
// product already has a variant with the same color and size.
func (r *GORMVariantRepository) CreateForProduct(ctx context.Context, variant *models.ProductVariant) error {
	if variant.ID == "" {
		variant.ID = uuid.New().String()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Product{}).Where("id = ?", variant.ProductID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		if err := tx.Model(&models.ProductVariant{}).
			Where("product_id = ? AND color = ? AND size = ?", variant.ProductID, variant.Color, variant.Size).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicate
		}
		return tx.Create(variant).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create variant for product %s: %w", variant.ProductID, duplicateOr(err))
	}
	return nil
}

// GetByID retrieves a variant by its ID.
func (r *GORMVariantRepository) GetByID(ctx context.Context, id string) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.db.WithContext(ctx).First(&variant, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get variant by ID %s: %w", id, notFoundOr(err))
	}
	return &variant, nil
}

// Delete removes a variant.
func (r *GORMVariantRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.ProductVariant{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete variant: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to delete variant %s: %w", id, ErrNotFound)
	}
	return nil
}

// List returns one page of variants matching q and the total match count.
func (r *GORMVariantRepository) List(ctx context.Context, q ListQuery) ([]models.ProductVariant, int64, error) {
	base := func() *gorm.DB {
		return r.db.Model(&models.ProductVariant{}).
			Scopes(searchScope(q.Search, "product_variants.color", "product_variants.size"))
	}
	variants, total, err := findPage[models.ProductVariant](ctx, base, q, orderClause("product_variants", q, VariantSortColumns))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list variants: %w", err)
	}
	return variants, total, nil
}
