package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dixis/dixis/database"
	"github.com/dixis/dixis/models"
)

type sqliteDashboardRepo struct {
	db database.TxQuerier
}

func NewSQLiteDashboardRepo(db database.TxQuerier) DashboardRepository {
	return &sqliteDashboardRepo{db: db}
}

func (r *sqliteDashboardRepo) counted(ctx context.Context, query string) ([]models.Counted, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to group counts: %w", err)
	}
	out, err := collect(rows, func(rs *sql.Rows, c *models.Counted) error { return rs.Scan(&c.Key, &c.Count) })
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Counted{}
	}
	return out, nil
}

func (r *sqliteDashboardRepo) UserCountsByRole(ctx context.Context) ([]models.Counted, error) {
	return r.counted(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role ORDER BY role`)
}

func (r *sqliteDashboardRepo) CountUsers(ctx context.Context, from, to time.Time) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM users WHERE created_at >= ? AND created_at < ?`,
		database.FormatTime(from), database.FormatTime(to))
}

func (r *sqliteDashboardRepo) UserPoints(ctx context.Context, from, to time.Time) ([]models.TimePoint, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT created_at FROM users WHERE created_at >= ? AND created_at < ?`,
		database.FormatTime(from), database.FormatTime(to))
	if err != nil {
		return nil, fmt.Errorf("failed to load user registrations: %w", err)
	}
	return collect(rows, func(rs *sql.Rows, p *models.TimePoint) error {
		p.Value = 1
		return rs.Scan(&p.At)
	})
}

func (r *sqliteDashboardRepo) ProductCounts(ctx context.Context) (models.ProductCounts, error) {
	var c models.ProductCounts
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(is_active = 1), 0),
		       COALESCE(SUM(is_active = 0), 0),
		       COALESCE(SUM(is_featured = 1), 0),
		       COALESCE(SUM(stock <= 0), 0)
		FROM products`).Scan(&c.Total, &c.Active, &c.Inactive, &c.Featured, &c.OutOfStock)
	if err != nil {
		return c, fmt.Errorf("failed to count products: %w", err)
	}
	return c, nil
}

func (r *sqliteDashboardRepo) ProductStats(ctx context.Context) (models.ProductStats, error) {
	var s models.ProductStats
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(AVG(n), 0), COALESCE(MAX(n), 0), COUNT(*)
		FROM (SELECT COUNT(*) AS n FROM products GROUP BY producer_id)`).
		Scan(&s.AvgPerProducer, &s.MaxPerProducer, &s.ProducersWithProducts)
	if err != nil {
		return s, fmt.Errorf("failed to compute product distribution: %w", err)
	}
	s.ProducersWithoutProducts, err = count(ctx, r.db, `
		SELECT COUNT(*) FROM producers p
		WHERE NOT EXISTS (SELECT 1 FROM products pr WHERE pr.producer_id = p.id)`)
	return s, err
}

func (r *sqliteDashboardRepo) OrderCountsByStatus(ctx context.Context) ([]models.Counted, error) {
	return r.counted(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status ORDER BY status`)
}

func (r *sqliteDashboardRepo) OrderCountsByPaymentStatus(ctx context.Context) ([]models.Counted, error) {
	return r.counted(ctx, `SELECT payment_status, COUNT(*) FROM orders GROUP BY payment_status ORDER BY payment_status`)
}

func (r *sqliteDashboardRepo) OrderTotals(ctx context.Context, from, to time.Time) (int, float64, error) {
	var n int
	var sales float64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN status != 'cancelled' THEN total_amount ELSE 0 END), 0)
		FROM orders WHERE created_at >= ? AND created_at < ?`,
		database.FormatTime(from), database.FormatTime(to)).Scan(&n, &sales)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to total orders: %w", err)
	}
	return n, sales, nil
}

func (r *sqliteDashboardRepo) SalesTotals(ctx context.Context) (int, float64, error) {
	var n int
	var sales float64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0) FROM orders WHERE status != 'cancelled'`).
		Scan(&n, &sales)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to total sales: %w", err)
	}
	return n, sales, nil
}

func (r *sqliteDashboardRepo) OrderPoints(ctx context.Context, from, to time.Time) ([]models.TimePoint, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT created_at, total_amount, status = 'cancelled'
		FROM orders WHERE created_at >= ? AND created_at < ?`,
		database.FormatTime(from), database.FormatTime(to))
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	return collect(rows, func(rs *sql.Rows, p *models.TimePoint) error {
		return rs.Scan(&p.At, &p.Value, &p.Cancelled)
	})
}

func (r *sqliteDashboardRepo) RecentOrders(ctx context.Context, limit int) ([]models.RecentOrder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, COALESCE(u.name, ''), o.status, o.total_amount,
		       (SELECT COALESCE(SUM(quantity), 0) FROM order_items WHERE order_id = o.id),
		       o.created_at
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent orders: %w", err)
	}
	return collect(rows, func(rs *sql.Rows, o *models.RecentOrder) error {
		if err := rs.Scan(&o.ID, &o.Customer, &o.Status, &o.Total, &o.ItemsCount, &o.CreatedAt); err != nil {
			return err
		}
		o.OrderNumber = models.OrderNumber(o.ID)
		return nil
	})
}

func (r *sqliteDashboardRepo) RecentUsers(ctx context.Context, limit int) ([]models.RecentUser, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, role, created_at FROM users
		ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent users: %w", err)
	}
	return collect(rows, func(rs *sql.Rows, u *models.RecentUser) error {
		return rs.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt)
	})
}

func (r *sqliteDashboardRepo) PendingProducers(ctx context.Context, limit int) ([]models.PendingProducerRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.business_name, u.name, p.created_at
		FROM producers p JOIN users u ON u.id = p.user_id
		WHERE p.verified = 0
		ORDER BY p.created_at DESC, p.id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending producers: %w", err)
	}
	return collect(rows, func(rs *sql.Rows, p *models.PendingProducerRow) error {
		return rs.Scan(&p.ID, &p.BusinessName, &p.UserName, &p.CreatedAt)
	})
}

func (r *sqliteDashboardRepo) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]models.TopProduct, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.name, SUM(oi.quantity), SUM(oi.subtotal) AS revenue
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.status != 'cancelled' AND o.created_at >= ? AND o.created_at < ?
		GROUP BY p.id
		ORDER BY revenue DESC, p.id
		LIMIT ?`, database.FormatTime(from), database.FormatTime(to), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank products: %w", err)
	}
	return collect(rows, func(rs *sql.Rows, t *models.TopProduct) error {
		return rs.Scan(&t.ID, &t.Name, &t.Quantity, &t.Revenue)
	})
}

func (r *sqliteDashboardRepo) TopProducers(ctx context.Context, from, to time.Time, limit int) ([]models.TopProducer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT pr.id, pr.business_name, COUNT(DISTINCT oi.order_id), SUM(oi.subtotal) AS revenue
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN producers pr ON pr.id = oi.producer_id
		WHERE o.status != 'cancelled' AND o.created_at >= ? AND o.created_at < ?
		GROUP BY pr.id
		ORDER BY revenue DESC, pr.id
		LIMIT ?`, database.FormatTime(from), database.FormatTime(to), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank producers: %w", err)
	}
	return collect(rows, func(rs *sql.Rows, t *models.TopProducer) error {
		return rs.Scan(&t.ID, &t.BusinessName, &t.OrdersCount, &t.Revenue)
	})
}

func (r *sqliteDashboardRepo) TopCategories(ctx context.Context, limit int) ([]models.TopCategory, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.name, COUNT(pc.product_id) AS n
		FROM product_categories c
		LEFT JOIN product_category pc ON pc.category_id = c.id
		GROUP BY c.id
		ORDER BY n DESC, c.id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank categories: %w", err)
	}
	return collect(rows, func(rs *sql.Rows, t *models.TopCategory) error {
		return rs.Scan(&t.ID, &t.Name, &t.ProductsCount)
	})
}

func (r *sqliteDashboardRepo) CategoryCount(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM product_categories`)
}

func (r *sqliteDashboardRepo) AdoptableItemsCount(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM adoptable_items`)
}

func (r *sqliteDashboardRepo) PendingCounts(ctx context.Context) (models.PendingCounts, error) {
	var c models.PendingCounts
	err := r.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM producers WHERE verified = 0),
		       (SELECT COUNT(*) FROM businesses WHERE verified = 0),
		       (SELECT COUNT(*) FROM reviews WHERE status = 'pending'),
		       (SELECT COUNT(*) FROM questions WHERE answer IS NULL OR answer = '')`).
		Scan(&c.Producers, &c.Businesses, &c.Reviews, &c.UnansweredQuestions)
	if err != nil {
		return c, fmt.Errorf("failed to count pending items: %w", err)
	}
	return c, nil
}
