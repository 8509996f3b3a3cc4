// Package workers holds the job handlers for the brand, category and
// product queues.
package workers

import (
	"context"
	"fmt"
	"log/slog"

	"katalog/internal/cache"
	"katalog/internal/jobs"
	"katalog/internal/models"
)

// ProductReferences updates products that point at deleted brands or categories.
type ProductReferences interface {
	UnsetBrand(ctx context.Context, brandID string) (int64, error)
	RemoveCategory(ctx context.Context, categoryID string) (int64, error)
}

// UserDirectory lists every user for notification fan-out.
type UserDirectory interface {
	All(ctx context.Context) ([]models.User, error)
}

// BrandWorker handles the brand queue.
type BrandWorker struct {
	products ProductReferences
	cache    cache.Store
	logger   *slog.Logger
}

// NewBrandWorker creates a BrandWorker.
func NewBrandWorker(products ProductReferences, store cache.Store, logger *slog.Logger) *BrandWorker {
	return &BrandWorker{products: products, cache: store, logger: logger.With("worker", jobs.QueueBrand)}
}

// Handle implements jobs.Handler.
func (w *BrandWorker) Handle(ctx context.Context, job jobs.Job, _ jobs.Progress) error {
	j, ok := job.(jobs.BrandDeleted)
	if !ok {
		w.logger.Warn("Unhandled job kind", "kind", job.Kind())
		return nil
	}
	n, err := w.products.UnsetBrand(ctx, j.BrandID)
	if err != nil {
		return err
	}
	w.logger.Info("Detached deleted brand from products", "brandId", j.BrandID, "name", j.Name, "products", n)
	return invalidateProducts(ctx, w.cache)
}

// CategoryWorker handles the category queue.
type CategoryWorker struct {
	products ProductReferences
	cache    cache.Store
	logger   *slog.Logger
}

// NewCategoryWorker creates a CategoryWorker.
func NewCategoryWorker(products ProductReferences, store cache.Store, logger *slog.Logger) *CategoryWorker {
	return &CategoryWorker{products: products, cache: store, logger: logger.With("worker", jobs.QueueCategory)}
}

// Handle implements jobs.Handler.
func (w *CategoryWorker) Handle(ctx context.Context, job jobs.Job, _ jobs.Progress) error {
	j, ok := job.(jobs.CategoryDeleted)
	if !ok {
		w.logger.Warn("Unhandled job kind", "kind", job.Kind())
		return nil
	}
	n, err := w.products.RemoveCategory(ctx, j.CategoryID)
	if err != nil {
		return err
	}
	w.logger.Info("Removed deleted category from products", "categoryId", j.CategoryID, "name", j.Name, "links", n)
	return invalidateProducts(ctx, w.cache)
}

func invalidateProducts(ctx context.Context, store cache.Store) error {
	if _, err := store.DeletePattern(ctx, cache.ProductPrefix+"*"); err != nil {
		return fmt.Errorf("failed to invalidate product cache: %w", err)
	}
	return nil
}

// Register binds every worker to its queue on r.
func Register(r *jobs.Runner, brand *BrandWorker, category *CategoryWorker, product *ProductWorker) {
	r.Register(jobs.QueueBrand, brand)
	r.Register(jobs.QueueCategory, category)
	r.Register(jobs.QueueProduct, product)
}
