package repository

import (
	"context"

	"github.com/dixis/dixis/models"
)

// CatalogRepository serves the public storefront. Only active products of
// existing producers are visible.
type CatalogRepository interface {
	// ActiveProducts applies the SQL-expressible parts of q. Text search,
	// expression filters, sorting and pagination happen in the service.
	ActiveProducts(ctx context.Context, q models.CatalogQuery) ([]models.CatalogProduct, error)
	ActiveBySlug(ctx context.Context, slug string) (*models.CatalogProduct, error)
	// Names returns suggestion candidates of every kind.
	Names(ctx context.Context) ([]models.Suggestion, error)
}
