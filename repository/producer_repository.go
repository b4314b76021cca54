package repository

import (
	"context"
	"time"

	"github.com/dixis/dixis/models"
)

type ProducerRepository interface {
	List(ctx context.Context, f models.ProducerFilter) ([]models.Producer, int, error)
	Regions(ctx context.Context) ([]string, error)
	GetByID(ctx context.Context, id int64) (*models.Producer, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Update(ctx context.Context, p *models.Producer) error
	TaxIDExists(ctx context.Context, taxID string, exceptID int64) (bool, error)

	MarkVerified(ctx context.Context, id int64, at time.Time) error
	MarkRejected(ctx context.Context, id int64, reason string, at time.Time) error

	ProductCounts(ctx context.Context, id int64) (active, inactive int, err error)
	SalesStats(ctx context.Context, id int64) (models.SalesStats, error)
	RecentOrders(ctx context.Context, id int64, limit int) ([]models.SellerOrder, error)
	// Verified lists verified producers for the sitemap.
	Verified(ctx context.Context) ([]models.Producer, error)
}
