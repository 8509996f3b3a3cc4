package models

import "time"

// Product represents a catalog item. Brand and categories are held by id;
// the relation fields are only populated on single-product reads.
type Product struct {
	ID          string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string           `json:"name" gorm:"uniqueIndex;type:varchar(255);not null"`
	Slug        string           `json:"slug" gorm:"uniqueIndex;type:varchar(255);not null"`
	Description string           `json:"description" gorm:"type:text;not null"`
	Image       string           `json:"image,omitempty" gorm:"type:varchar(2048)"`
	BrandID     *string          `json:"brandId" gorm:"type:varchar(36);index"`
	Brand       *Brand           `json:"brand,omitempty" gorm:"foreignKey:BrandID"`
	Categories  []Category       `json:"categories,omitempty" gorm:"many2many:product_categories"`
	Variants    []ProductVariant `json:"variants,omitempty" gorm:"foreignKey:ProductID"`
	CategoryIDs []string         `json:"categoryIds" gorm:"-"`
	VariantIDs  []string         `json:"variantIds" gorm:"-"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// FillReferenceIDs derives CategoryIDs and VariantIDs from loaded relations.
func (p *Product) FillReferenceIDs() {
	p.CategoryIDs = make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		p.CategoryIDs = append(p.CategoryIDs, c.ID)
	}
	p.VariantIDs = make([]string, 0, len(p.Variants))
	for _, v := range p.Variants {
		p.VariantIDs = append(p.VariantIDs, v.ID)
	}
}

// ProductListItem is a product row in list responses, with stock and price
// figures aggregated over its variants.
type ProductListItem struct {
	Product
	TotalQuantity int      `json:"totalQuantity"`
	MinPrice      *float64 `json:"minPrice"`
	MaxPrice      *float64 `json:"maxPrice"`
}

// NewProductListItem summarizes p. Relations are dropped from the result so
// that list payloads carry ids only.
func NewProductListItem(p Product) ProductListItem {
	p.FillReferenceIDs()
	item := ProductListItem{}
	for _, v := range p.Variants {
		item.TotalQuantity += v.Quantity
		if item.MinPrice == nil || v.Price < *item.MinPrice {
			lo := v.Price
			item.MinPrice = &lo
		}
		if item.MaxPrice == nil || v.Price > *item.MaxPrice {
			hi := v.Price
			item.MaxPrice = &hi
		}
	}
	p.Brand = nil
	p.Categories = nil
	p.Variants = nil
	item.Product = p
	return item
}

// ProductCategory is the join row linking a product to one of its categories.
type ProductCategory struct {
	ProductID  string `gorm:"primaryKey;type:varchar(36)"`
	CategoryID string `gorm:"primaryKey;type:varchar(36);index"`
}

// ProductVariant is a purchasable color/size combination of a product.
type ProductVariant struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID string    `json:"productId" gorm:"type:varchar(36);not null;uniqueIndex:idx_variant_product_color_size"`
	Color     string    `json:"color" gorm:"type:varchar(100);uniqueIndex:idx_variant_product_color_size"`
	Size      string    `json:"size" gorm:"type:varchar(100);uniqueIndex:idx_variant_product_color_size"`
	Price     float64   `json:"price" gorm:"not null"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	Image     string    `json:"image,omitempty" gorm:"type:varchar(2048)"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
