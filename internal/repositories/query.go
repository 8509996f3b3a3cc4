package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert would violate a uniqueness rule.
	ErrDuplicate = errors.New("record already exists")
)

// ListQuery holds the paging, sorting and search parameters shared by all
// list endpoints. Sort is the API field name (e.g. "createdAt").
type ListQuery struct {
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
	Sort   string `json:"sort"`
	Order  string `json:"order"`
	Search string `json:"search"`
}

// Paging defaults and bounds.
const (
	DefaultPage  = 1
	DefaultLimit = 50
	MaxLimit     = 100
	DefaultSort  = "createdAt"
	DefaultOrder = "desc"
)

// Normalize fills defaults and clamps the limit.
func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Sort == "" {
		q.Sort = DefaultSort
	}
	q.Order = strings.ToLower(q.Order)
	if q.Order != "asc" {
		q.Order = DefaultOrder
	}
}

// Offset is the number of rows skipped before the requested page.
func (q ListQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// ProductQuery extends ListQuery with product filters.
type ProductQuery struct {
	ListQuery
	BrandID    string `json:"brandId,omitempty"`
	CategoryID string `json:"categoryId,omitempty"`
}

// UserQuery extends ListQuery with user filters.
type UserQuery struct {
	ListQuery
	Role     string `json:"roles,omitempty"`
	IsActive *bool  `json:"isActive,omitempty"`
}

// Sortable API fields per entity, mapped to column names.
var (
	BrandSortColumns = map[string]string{
		"createdAt": "created_at",
		"updatedAt": "updated_at",
		"name":      "name",
		"slug":      "slug",
	}
	CategorySortColumns = BrandSortColumns
	ProductSortColumns  = map[string]string{
		"createdAt":   "created_at",
		"updatedAt":   "updated_at",
		"name":        "name",
		"slug":        "slug",
		"description": "description",
	}
	VariantSortColumns = map[string]string{
		"createdAt": "created_at",
		"updatedAt": "updated_at",
		"color":     "color",
		"size":      "size",
		"price":     "price",
		"quantity":  "quantity",
	}
	UserSortColumns = map[string]string{
		"createdAt": "created_at",
		"updatedAt": "updated_at",
		"username":  "username",
		"email":     "email",
		"isActive":  "is_active",
	}
)

// orderClause builds a safe ORDER BY clause from a whitelisted sort field.
// A secondary id ordering keeps pages stable when sort values tie.
func orderClause(table string, q ListQuery, columns map[string]string) string {
	col, ok := columns[q.Sort]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(q.Order, "asc") {
		dir = "ASC"
	}
	return fmt.Sprintf("%s.%s %s, %s.id %s", table, col, dir, table, dir)
}

// searchScope matches search case-insensitively against any of the columns.
func searchScope(search string, columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if search == "" {
			return db
		}
		pattern := "%" + strings.ToLower(search) + "%"
		clauses := make([]string, 0, len(columns))
		args := make([]any, 0, len(columns))
		for _, c := range columns {
			clauses = append(clauses, fmt.Sprintf("LOWER(%s) LIKE ?", c))
			args = append(args, pattern)
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}

// findPage runs the page query and the count query concurrently.
func findPage[T any](ctx context.Context, base func() *gorm.DB, q ListQuery, order string, preloads ...string) ([]T, int64, error) {
	var (
		rows  []T
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tx := base().WithContext(gctx)
		for _, p := range preloads {
			tx = tx.Preload(p)
		}
		return tx.Order(order).Limit(q.Limit).Offset(q.Offset()).Find(&rows).Error
	})
	g.Go(func() error {
		return base().WithContext(gctx).Count(&total).Error
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, total, nil
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// duplicateOr maps a unique constraint violation, translated by GORM, to
// ErrDuplicate.
func duplicateOr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}
