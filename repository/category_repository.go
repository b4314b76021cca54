package repository

import (
	"context"

	"github.com/dixis/dixis/models"
)

// CategoryRepository manages the product category hierarchy.
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	List(ctx context.Context, f models.CategoryFilter) ([]models.Category, int, error)
	// All returns every category ordered for tree building.
	All(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id int64) error

	NameExists(ctx context.Context, name string, exceptID int64) (bool, error)
	SlugExists(ctx context.Context, slug string, exceptID int64) (bool, error)
	MaxOrder(ctx context.Context) (int, error)
	// ParentID returns the parent of id, nil for a root.
	ParentID(ctx context.Context, id int64) (*int64, error)
	Children(ctx context.Context, parentIDs []int64) (map[int64][]models.CategorySummary, error)
	CountChildren(ctx context.Context, id int64) (int, error)
	CountProducts(ctx context.Context, id int64) (int, error)
}
