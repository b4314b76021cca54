package repository

import (
	"context"

	"github.com/dixis/dixis/models"
)

type OrderRepository interface {
	List(ctx context.Context, f models.OrderFilter) ([]models.Order, int, error)
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}
