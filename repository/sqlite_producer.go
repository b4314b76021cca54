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

type sqliteProducerRepo struct {
	db database.TxQuerier
}

func NewSQLiteProducerRepo(db database.TxQuerier) ProducerRepository {
	return &sqliteProducerRepo{db: db}
}

const producerSelect = `
	SELECT p.id, p.user_id, p.business_name, p.tax_id, p.tax_office, p.description, p.address,
	       p.city, p.postal_code, p.region, p.website, p.social_media, p.bio, p.verified,
	       p.is_featured, p.identity_document, p.tax_document, p.bank_document,
	       p.verification_date, p.rejection_reason, p.rejection_date, p.created_at, p.updated_at,
	       u.id, u.name, u.email, u.phone,
	       (SELECT COUNT(*) FROM products pr WHERE pr.producer_id = p.id) AS products_count
	FROM producers p
	JOIN users u ON u.id = p.user_id`

func scanProducer(row interface{ Scan(...any) error }, p *models.Producer) error {
	u := &models.UserSummary{}
	err := row.Scan(&p.ID, &p.UserID, &p.BusinessName, &p.TaxID, &p.TaxOffice, &p.Description, &p.Address,
		&p.City, &p.PostalCode, &p.Region, &p.Website, &p.SocialMedia, &p.Bio, &p.Verified,
		&p.IsFeatured, &p.IdentityDocument, &p.TaxDocument, &p.BankDocument,
		&p.VerificationDate, &p.RejectionReason, &p.RejectionDate, &p.CreatedAt, &p.UpdatedAt,
		&u.ID, &u.Name, &u.Email, &u.Phone,
		&p.ProductsCount)
	if err != nil {
		return err
	}
	p.User = u
	return nil
}

func (r *sqliteProducerRepo) List(ctx context.Context, f models.ProducerFilter) ([]models.Producer, int, error) {
	var w where
	w.search(f.Search, "p.business_name", "p.tax_id", "p.region", "u.name", "u.email", "u.phone")
	switch f.Status {
	case "verified":
		w.add("p.verified = 1")
	case "pending":
		w.add("p.verified = 0")
	}
	if f.Region != "" {
		w.add("p.region = ?", f.Region)
	}
	if f.IsFeatured != nil {
		w.add("p.is_featured = ?", boolInt(*f.IsFeatured))
	}
	if f.DateFrom != nil {
		w.add("p.created_at >= ?", database.FormatTime(*f.DateFrom))
	}
	if f.DateTo != nil {
		w.add("p.created_at < ?", database.FormatTime(*f.DateTo))
	}
	if f.HasProducts != nil {
		cond := "EXISTS (SELECT 1 FROM products pr WHERE pr.producer_id = p.id)"
		if !*f.HasProducts {
			cond = "NOT " + cond
		}
		w.add(cond)
	}

	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM producers p JOIN users u ON u.id = p.user_id`+w.String(), w.args...)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		producerSelect+w.String()+" ORDER BY "+f.Sort.SQL()+", p.id DESC"+pageClause(f.Page), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list producers: %w", err)
	}
	producers, err := collect(rows, func(rs *sql.Rows, p *models.Producer) error { return scanProducer(rs, p) })
	if err != nil {
		return nil, 0, err
	}
	return producers, total, nil
}

func (r *sqliteProducerRepo) Regions(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT region FROM producers
		WHERE region IS NOT NULL AND region != '' ORDER BY region`)
	if err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}
	return collect(rows, func(rs *sql.Rows, s *string) error { return rs.Scan(s) })
}

func (r *sqliteProducerRepo) GetByID(ctx context.Context, id int64) (*models.Producer, error) {
	p := &models.Producer{}
	err := scanProducer(r.db.QueryRowContext(ctx, producerSelect+` WHERE p.id = ?`, id), p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: producer", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get producer: %w", err)
	}
	return p, nil
}

func (r *sqliteProducerRepo) Exists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.db, `SELECT 1 FROM producers WHERE id = ?`, id)
}

func (r *sqliteProducerRepo) Update(ctx context.Context, p *models.Producer) error {
	query := `
		UPDATE producers
		SET business_name = ?, tax_id = ?, tax_office = ?, description = ?, address = ?, city = ?,
		    postal_code = ?, region = ?, website = ?, social_media = ?, bio = ?, verified = ?,
		    is_featured = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		p.BusinessName, p.TaxID, p.TaxOffice, p.Description, p.Address, p.City,
		p.PostalCode, p.Region, p.Website, p.SocialMedia, p.Bio, p.Verified,
		p.IsFeatured, p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return pkg.ValidationErrors{"tax_id": "has already been taken"}
		}
		return fmt.Errorf("failed to update producer: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteProducerRepo) TaxIDExists(ctx context.Context, taxID string, exceptID int64) (bool, error) {
	return exists(ctx, r.db, `SELECT 1 FROM producers WHERE tax_id = ? AND id != ?`, taxID, exceptID)
}

func (r *sqliteProducerRepo) MarkVerified(ctx context.Context, id int64, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE producers
		SET verified = 1, verification_date = ?, rejection_reason = NULL, rejection_date = NULL,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, database.FormatTime(at), id)
	if err != nil {
		return fmt.Errorf("failed to verify producer: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteProducerRepo) MarkRejected(ctx context.Context, id int64, reason string, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE producers
		SET verified = 0, rejection_reason = ?, rejection_date = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, reason, database.FormatTime(at), id)
	if err != nil {
		return fmt.Errorf("failed to reject producer: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteProducerRepo) ProductCounts(ctx context.Context, id int64) (int, int, error) {
	var active, inactive int
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(is_active = 1), 0), COALESCE(SUM(is_active = 0), 0)
		FROM products WHERE producer_id = ?`, id).Scan(&active, &inactive)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count producer products: %w", err)
	}
	return active, inactive, nil
}

func (r *sqliteProducerRepo) SalesStats(ctx context.Context, id int64) (models.SalesStats, error) {
	var s models.SalesStats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT oi.order_id), COALESCE(SUM(oi.quantity), 0), COALESCE(SUM(oi.subtotal), 0)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE oi.producer_id = ? AND o.status != 'cancelled'`, id).
		Scan(&s.TotalOrders, &s.TotalItemsSold, &s.TotalSales)
	if err != nil {
		return s, fmt.Errorf("failed to compute producer sales: %w", err)
	}
	if s.TotalOrders > 0 {
		s.AverageOrderValue = s.TotalSales / float64(s.TotalOrders)
	}
	return s, nil
}

func (r *sqliteProducerRepo) RecentOrders(ctx context.Context, id int64, limit int) ([]models.SellerOrder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.status, SUM(oi.subtotal), o.created_at, u.id, u.name, u.email
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id AND oi.producer_id = ?
		LEFT JOIN users u ON u.id = o.user_id
		WHERE o.status != 'cancelled'
		GROUP BY o.id
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT ?`, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list producer orders: %w", err)
	}
	return collect(rows, scanSellerOrder)
}

func scanSellerOrder(rs *sql.Rows, o *models.SellerOrder) error {
	var uID sql.NullInt64
	var uName, uEmail sql.NullString
	if err := rs.Scan(&o.ID, &o.Status, &o.Total, &o.CreatedAt, &uID, &uName, &uEmail); err != nil {
		return err
	}
	o.OrderNumber = models.OrderNumber(o.ID)
	if uID.Valid {
		o.User = &models.UserSummary{ID: uID.Int64, Name: uName.String, Email: uEmail.String}
	}
	return nil
}

func (r *sqliteProducerRepo) Verified(ctx context.Context) ([]models.Producer, error) {
	rows, err := r.db.QueryContext(ctx, producerSelect+` WHERE p.verified = 1 ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list verified producers: %w", err)
	}
	return collect(rows, func(rs *sql.Rows, p *models.Producer) error { return scanProducer(rs, p) })
}
