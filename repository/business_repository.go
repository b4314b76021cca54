package repository

import (
	"context"
	"time"

	"github.com/dixis/dixis/models"
)

type BusinessRepository interface {
	List(ctx context.Context, f models.BusinessFilter) ([]models.Business, int, error)
	GetByID(ctx context.Context, id int64) (*models.Business, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Update(ctx context.Context, b *models.Business) error
	TaxIDExists(ctx context.Context, taxID string, exceptID int64) (bool, error)
	EmailExists(ctx context.Context, email string, exceptID int64) (bool, error)

	MarkVerified(ctx context.Context, id int64, at time.Time) error
	MarkRejected(ctx context.Context, id int64, reason string, at time.Time) error

	// PurchaseStats sums non-cancelled orders placed by the business.
	PurchaseStats(ctx context.Context, id int64) (orders int, total float64, err error)
	RecentOrders(ctx context.Context, id int64, limit int) ([]models.OrderRow, error)
}
