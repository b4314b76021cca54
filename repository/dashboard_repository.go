package repository

import (
	"context"
	"time"

	"github.com/dixis/dixis/models"
)

// DashboardRepository runs the read-only aggregates behind the admin
// dashboard. Time windows are half-open [from, to).
type DashboardRepository interface {
	UserCountsByRole(ctx context.Context) ([]models.Counted, error)
	CountUsers(ctx context.Context, from, to time.Time) (int, error)
	UserPoints(ctx context.Context, from, to time.Time) ([]models.TimePoint, error)

	ProductCounts(ctx context.Context) (models.ProductCounts, error)
	ProductStats(ctx context.Context) (models.ProductStats, error)

	OrderCountsByStatus(ctx context.Context) ([]models.Counted, error)
	OrderCountsByPaymentStatus(ctx context.Context) ([]models.Counted, error)
	// OrderTotals counts all orders in the window and sums non-cancelled ones.
	OrderTotals(ctx context.Context, from, to time.Time) (orders int, sales float64, err error)
	// SalesTotals sums non-cancelled orders ever placed.
	SalesTotals(ctx context.Context) (orders int, sales float64, err error)
	OrderPoints(ctx context.Context, from, to time.Time) ([]models.TimePoint, error)

	RecentOrders(ctx context.Context, limit int) ([]models.RecentOrder, error)
	RecentUsers(ctx context.Context, limit int) ([]models.RecentUser, error)
	PendingProducers(ctx context.Context, limit int) ([]models.PendingProducerRow, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]models.TopProduct, error)
	TopProducers(ctx context.Context, from, to time.Time, limit int) ([]models.TopProducer, error)
	TopCategories(ctx context.Context, limit int) ([]models.TopCategory, error)

	CategoryCount(ctx context.Context) (int, error)
	AdoptableItemsCount(ctx context.Context) (int, error)
	PendingCounts(ctx context.Context) (models.PendingCounts, error)
}
