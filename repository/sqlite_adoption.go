package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dixis/dixis/database"
	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
)

type sqliteAdoptionRepo struct {
	db database.TxQuerier
}

func NewSQLiteAdoptionRepo(db database.TxQuerier) AdoptionRepository {
	return &sqliteAdoptionRepo{db: db}
}

const adoptionSelect = `
	SELECT a.id, a.user_id, a.adoptable_item_id, a.status, a.payment_status, a.start_date, a.end_date,
	       a.price_paid, a.notes, a.created_at, a.updated_at,
	       u.name, u.email,
	       i.name, i.slug, i.type, i.status
	FROM adoptions a
	JOIN users u ON u.id = a.user_id
	JOIN adoptable_items i ON i.id = a.adoptable_item_id`

func scanAdoption(row interface{ Scan(...any) error }, a *models.Adoption) error {
	u := &models.UserSummary{}
	it := &models.AdoptableItemSummary{}
	err := row.Scan(&a.ID, &a.UserID, &a.AdoptableItemID, &a.Status, &a.PaymentStatus, &a.StartDate, &a.EndDate,
		&a.PricePaid, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
		&u.Name, &u.Email,
		&it.Name, &it.Slug, &it.Type, &it.Status)
	if err != nil {
		return err
	}
	u.ID = a.UserID
	it.ID = a.AdoptableItemID
	a.User, a.Item = u, it
	return nil
}

func (r *sqliteAdoptionRepo) List(ctx context.Context, f models.AdoptionFilter) ([]models.Adoption, int, error) {
	var w where
	if f.UserID != nil {
		w.add("a.user_id = ?", *f.UserID)
	}
	if f.AdoptableItemID != nil {
		w.add("a.adoptable_item_id = ?", *f.AdoptableItemID)
	}
	if f.ProducerID != nil {
		w.add("i.producer_id = ?", *f.ProducerID)
	}
	if f.Status != "" {
		w.add("a.status = ?", f.Status)
	}
	if f.PaymentStatus != "" {
		w.add("a.payment_status = ?", f.PaymentStatus)
	}
	if f.StartFrom != nil {
		w.add("a.start_date >= ?", database.FormatTime(*f.StartFrom))
	}
	if f.StartTo != nil {
		w.add("a.start_date < ?", database.FormatTime(*f.StartTo))
	}

	total, err := count(ctx, r.db, `
		SELECT COUNT(*) FROM adoptions a
		JOIN adoptable_items i ON i.id = a.adoptable_item_id`+w.String(), w.args...)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		adoptionSelect+w.String()+" ORDER BY a.created_at DESC, a.id DESC"+pageClause(f.Page), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list adoptions: %w", err)
	}
	list, err := collect(rows, func(rs *sql.Rows, a *models.Adoption) error { return scanAdoption(rs, a) })
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *sqliteAdoptionRepo) GetByID(ctx context.Context, id int64) (*models.Adoption, error) {
	a := &models.Adoption{}
	err := scanAdoption(r.db.QueryRowContext(ctx, adoptionSelect+` WHERE a.id = ?`, id), a)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: adoption", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get adoption: %w", err)
	}
	return a, nil
}

func (r *sqliteAdoptionRepo) Update(ctx context.Context, a *models.Adoption) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE adoptions
		SET status = ?, payment_status = ?, start_date = ?, end_date = ?, price_paid = ?, notes = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		a.Status, a.PaymentStatus, database.FormatTime(a.StartDate), database.FormatTime(a.EndDate),
		a.PricePaid, a.Notes, a.ID)
	if err != nil {
		return fmt.Errorf("failed to update adoption: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteAdoptionRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM adoptions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete adoption: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteAdoptionRepo) SetStatus(ctx context.Context, id int64, status string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE adoptions SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to set adoption status: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteAdoptionRepo) Renew(ctx context.Context, id int64, start, end time.Time, pricePaid float64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE adoptions
		SET status = 'active', payment_status = 'pending', start_date = ?, end_date = ?, price_paid = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, database.FormatTime(start), database.FormatTime(end), pricePaid, id)
	if err != nil {
		return fmt.Errorf("failed to renew adoption: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteAdoptionRepo) Totals(ctx context.Context) (models.AdoptionStats, error) {
	var s models.AdoptionStats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(status = 'active'), 0),
		       COALESCE(SUM(status = 'expired'), 0),
		       COALESCE(SUM(status = 'cancelled'), 0),
		       COALESCE(SUM(CASE WHEN payment_status = 'paid' THEN price_paid ELSE 0 END), 0)
		FROM adoptions`).Scan(&s.Total, &s.Active, &s.Expired, &s.Cancelled, &s.TotalRevenue)
	if err != nil {
		return s, fmt.Errorf("failed to compute adoption totals: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT i.id, i.name, COUNT(a.id) AS n
		FROM adoptable_items i
		JOIN adoptions a ON a.adoptable_item_id = i.id
		GROUP BY i.id
		ORDER BY n DESC, i.id
		LIMIT 5`)
	if err != nil {
		return s, fmt.Errorf("failed to rank adoptable items: %w", err)
	}
	s.TopItems, err = collect(rows, func(rs *sql.Rows, c *models.ItemAdoptionCount) error {
		return rs.Scan(&c.ID, &c.Name, &c.Count)
	})
	if err != nil {
		return s, err
	}

	rows, err = r.db.QueryContext(ctx, `
		SELECT u.id, u.name, u.email, COUNT(a.id) AS n
		FROM users u
		JOIN adoptions a ON a.user_id = u.id
		GROUP BY u.id
		ORDER BY n DESC, u.id
		LIMIT 5`)
	if err != nil {
		return s, fmt.Errorf("failed to rank adopters: %w", err)
	}
	s.TopUsers, err = collect(rows, func(rs *sql.Rows, c *models.UserAdoptionCount) error {
		return rs.Scan(&c.ID, &c.Name, &c.Email, &c.Count)
	})
	return s, err
}

func (r *sqliteAdoptionRepo) PeriodTotals(ctx context.Context, from, to time.Time) (int, float64, error) {
	var n int
	var revenue float64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN payment_status = 'paid' THEN price_paid ELSE 0 END), 0)
		FROM adoptions WHERE created_at >= ? AND created_at < ?`,
		database.FormatTime(from), database.FormatTime(to)).Scan(&n, &revenue)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to compute adoption period totals: %w", err)
	}
	return n, revenue, nil
}

func (r *sqliteAdoptionRepo) ExpireDue(ctx context.Context, now time.Time) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		UPDATE adoptions SET status = 'expired', updated_at = CURRENT_TIMESTAMP
		WHERE status = 'active' AND end_date < ?
		RETURNING adoptable_item_id`, database.FormatTime(now))
	if err != nil {
		return nil, fmt.Errorf("failed to expire adoptions: %w", err)
	}
	return collect(rows, func(rs *sql.Rows, id *int64) error { return rs.Scan(id) })
}

func (r *sqliteAdoptionRepo) ReleaseIdleItems(ctx context.Context, itemIDs []int64) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}
	args := make([]any, len(itemIDs))
	for i, id := range itemIDs {
		args[i] = id
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE adoptable_items SET status = 'available', updated_at = CURRENT_TIMESTAMP
		WHERE status = 'adopted'
		  AND id IN (`+inPlaceholders(len(args))+`)
		  AND NOT EXISTS (SELECT 1 FROM adoptions a WHERE a.adoptable_item_id = adoptable_items.id AND a.status = 'active')`,
		args...)
	if err != nil {
		return 0, fmt.Errorf("failed to release adoptable items: %w", err)
	}
	return result.RowsAffected()
}
