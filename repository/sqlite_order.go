package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dixis/dixis/database"
	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
)

type sqliteOrderRepo struct {
	db database.TxQuerier
}

func NewSQLiteOrderRepo(db database.TxQuerier) OrderRepository {
	return &sqliteOrderRepo{db: db}
}

// orderRowSelect must be followed by WHERE ... GROUP BY o.id.
const orderRowSelect = `
	SELECT o.id, o.status, o.total_amount, COALESCE(SUM(oi.quantity), 0), o.created_at,
	       u.id, u.name, u.email
	FROM orders o
	LEFT JOIN order_items oi ON oi.order_id = o.id
	LEFT JOIN users u ON u.id = o.user_id`

func scanOrderRow(rs *sql.Rows, o *models.OrderRow) error {
	var uID sql.NullInt64
	var uName, uEmail sql.NullString
	if err := rs.Scan(&o.ID, &o.Status, &o.Total, &o.ItemsCount, &o.CreatedAt, &uID, &uName, &uEmail); err != nil {
		return err
	}
	o.OrderNumber = models.OrderNumber(o.ID)
	if uID.Valid {
		o.User = &models.UserSummary{ID: uID.Int64, Name: uName.String, Email: uEmail.String}
	}
	return nil
}

const orderSelect = `
	SELECT o.id, o.user_id, o.business_id, o.status, o.payment_status, o.payment_method,
	       o.total_amount, o.shipping_cost, o.shipping_address, o.notes, o.created_at, o.updated_at,
	       (SELECT COALESCE(SUM(quantity), 0) FROM order_items WHERE order_id = o.id),
	       u.id, u.name, u.email
	FROM orders o
	LEFT JOIN users u ON u.id = o.user_id`

func scanOrder(row interface{ Scan(...any) error }, o *models.Order) error {
	var uID sql.NullInt64
	var uName, uEmail sql.NullString
	err := row.Scan(&o.ID, &o.UserID, &o.BusinessID, &o.Status, &o.PaymentStatus, &o.PaymentMethod,
		&o.TotalAmount, &o.ShippingCost, &o.ShippingAddress, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
		&o.ItemsCount, &uID, &uName, &uEmail)
	if err != nil {
		return err
	}
	o.OrderNumber = models.OrderNumber(o.ID)
	if uID.Valid {
		o.User = &models.UserSummary{ID: uID.Int64, Name: uName.String, Email: uEmail.String}
	}
	return nil
}

func (r *sqliteOrderRepo) List(ctx context.Context, f models.OrderFilter) ([]models.Order, int, error) {
	var w where
	if f.Status != "" {
		w.add("o.status = ?", f.Status)
	}
	if f.PaymentStatus != "" {
		w.add("o.payment_status = ?", f.PaymentStatus)
	}
	if f.UserID != nil {
		w.add("o.user_id = ?", *f.UserID)
	}
	if f.DateFrom != nil {
		w.add("o.created_at >= ?", database.FormatTime(*f.DateFrom))
	}
	if f.DateTo != nil {
		w.add("o.created_at < ?", database.FormatTime(*f.DateTo))
	}

	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM orders o`+w.String(), w.args...)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		orderSelect+w.String()+" ORDER BY o.created_at DESC, o.id DESC"+pageClause(f.Page), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	orders, err := collect(rows, func(rs *sql.Rows, o *models.Order) error { return scanOrder(rs, o) })
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *sqliteOrderRepo) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	o := &models.Order{}
	err := scanOrder(r.db.QueryRowContext(ctx, orderSelect+` WHERE o.id = ?`, id), o)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: order", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, COALESCE(p.name, ''), oi.producer_id,
		       oi.quantity, oi.price, oi.subtotal
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ?
		ORDER BY oi.id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	o.Items, err = collect(rows, func(rs *sql.Rows, it *models.OrderItem) error {
		return rs.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.ProducerID,
			&it.Quantity, &it.Price, &it.Subtotal)
	})
	if err != nil {
		return nil, err
	}
	if o.Items == nil {
		o.Items = []models.OrderItem{}
	}
	return o, nil
}

func (r *sqliteOrderRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return affectedOne(result)
}
