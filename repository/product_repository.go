package repository

import (
	"context"

	"github.com/dixis/dixis/models"
)

type ProductRepository interface {
	List(ctx context.Context, f models.ProductFilter) ([]models.Product, int, error)
	// Stats aggregates over the same filtered set as List, ignoring pagination.
	Stats(ctx context.Context, f models.ProductFilter) (models.ProductListStats, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, p *models.Product, categoryID int64) error
	Update(ctx context.Context, p *models.Product) error
	// ReplaceCategory makes categoryID the product's only category.
	ReplaceCategory(ctx context.Context, productID, categoryID int64) error
	// Delete removes the product with its reviews and questions.
	Delete(ctx context.Context, id int64) error
	SetActive(ctx context.Context, id int64, active bool, note *string) error

	SlugExists(ctx context.Context, slug string, exceptID int64) (bool, error)
	SKUExists(ctx context.Context, sku string, exceptID int64) (bool, error)
	HasOrderItems(ctx context.Context, id int64) (bool, error)
	FeedbackCounts(ctx context.Context, id int64) (reviews, questions int, err error)
}
