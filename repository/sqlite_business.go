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

type sqliteBusinessRepo struct {
	db database.TxQuerier
}

func NewSQLiteBusinessRepo(db database.TxQuerier) BusinessRepository {
	return &sqliteBusinessRepo{db: db}
}

const businessSelect = `
	SELECT b.id, b.user_id, b.name, b.business_type, b.tax_id, b.tax_office, b.address, b.city,
	       b.postal_code, b.phone, b.email, b.website, b.description, b.contact_person, b.verified,
	       b.verification_date, b.rejection_reason, b.rejection_date, b.created_at, b.updated_at,
	       u.id, u.name, u.email, u.phone
	FROM businesses b
	JOIN users u ON u.id = b.user_id`

func scanBusiness(row interface{ Scan(...any) error }, b *models.Business) error {
	u := &models.UserSummary{}
	err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.BusinessType, &b.TaxID, &b.TaxOffice, &b.Address, &b.City,
		&b.PostalCode, &b.Phone, &b.Email, &b.Website, &b.Description, &b.ContactPerson, &b.Verified,
		&b.VerificationDate, &b.RejectionReason, &b.RejectionDate, &b.CreatedAt, &b.UpdatedAt,
		&u.ID, &u.Name, &u.Email, &u.Phone)
	if err != nil {
		return err
	}
	b.User = u
	return nil
}

func (r *sqliteBusinessRepo) List(ctx context.Context, f models.BusinessFilter) ([]models.Business, int, error) {
	var w where
	w.search(f.Search, "b.name", "b.tax_id", "b.email", "b.contact_person")
	switch f.Status {
	case "verified":
		w.add("b.verified = 1")
	case "pending":
		w.add("b.verified = 0")
	}
	if f.BusinessType != "" {
		w.add("b.business_type = ?", f.BusinessType)
	}

	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM businesses b`+w.String(), w.args...)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		businessSelect+w.String()+" ORDER BY "+f.Sort.SQL()+", b.id DESC"+pageClause(f.Page), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list businesses: %w", err)
	}
	list, err := collect(rows, func(rs *sql.Rows, b *models.Business) error { return scanBusiness(rs, b) })
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *sqliteBusinessRepo) GetByID(ctx context.Context, id int64) (*models.Business, error) {
	b := &models.Business{}
	err := scanBusiness(r.db.QueryRowContext(ctx, businessSelect+` WHERE b.id = ?`, id), b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: business", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get business: %w", err)
	}
	return b, nil
}

func (r *sqliteBusinessRepo) Exists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.db, `SELECT 1 FROM businesses WHERE id = ?`, id)
}

func (r *sqliteBusinessRepo) Update(ctx context.Context, b *models.Business) error {
	query := `
		UPDATE businesses
		SET name = ?, business_type = ?, tax_id = ?, tax_office = ?, address = ?, city = ?,
		    postal_code = ?, phone = ?, email = ?, website = ?, description = ?, contact_person = ?,
		    verified = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		b.Name, b.BusinessType, b.TaxID, b.TaxOffice, b.Address, b.City,
		b.PostalCode, b.Phone, b.Email, b.Website, b.Description, b.ContactPerson,
		b.Verified, b.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: tax id or email already in use", pkg.ErrUnprocessable)
		}
		return fmt.Errorf("failed to update business: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteBusinessRepo) TaxIDExists(ctx context.Context, taxID string, exceptID int64) (bool, error) {
	return exists(ctx, r.db, `SELECT 1 FROM businesses WHERE tax_id = ? AND id != ?`, taxID, exceptID)
}

func (r *sqliteBusinessRepo) EmailExists(ctx context.Context, email string, exceptID int64) (bool, error) {
	return exists(ctx, r.db, `SELECT 1 FROM businesses WHERE email = ? AND id != ?`, email, exceptID)
}

func (r *sqliteBusinessRepo) MarkVerified(ctx context.Context, id int64, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE businesses
		SET verified = 1, verification_date = ?, rejection_reason = NULL, rejection_date = NULL,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, database.FormatTime(at), id)
	if err != nil {
		return fmt.Errorf("failed to verify business: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteBusinessRepo) MarkRejected(ctx context.Context, id int64, reason string, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE businesses
		SET verified = 0, rejection_reason = ?, rejection_date = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, reason, database.FormatTime(at), id)
	if err != nil {
		return fmt.Errorf("failed to reject business: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteBusinessRepo) PurchaseStats(ctx context.Context, id int64) (int, float64, error) {
	var n int
	var total float64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM orders WHERE business_id = ? AND status != 'cancelled'`, id).Scan(&n, &total)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to compute business purchases: %w", err)
	}
	return n, total, nil
}

func (r *sqliteBusinessRepo) RecentOrders(ctx context.Context, id int64, limit int) ([]models.OrderRow, error) {
	rows, err := r.db.QueryContext(ctx, orderRowSelect+`
		WHERE o.business_id = ?
		GROUP BY o.id
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT ?`, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list business orders: %w", err)
	}
	return collect(rows, scanOrderRow)
}
