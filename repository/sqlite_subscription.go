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

type sqliteSubscriptionRepo struct {
	db database.TxQuerier
}

func NewSQLiteSubscriptionRepo(db database.TxQuerier) SubscriptionRepository {
	return &sqliteSubscriptionRepo{db: db}
}

const planColumns = `
	SELECT sp.id, sp.name, sp.description, sp.target_type, sp.price, sp.billing_cycle, sp.duration_months,
	       sp.commission_rate, sp.features, sp.is_active, sp.created_at, sp.updated_at,
	       (SELECT COUNT(*) FROM subscriptions s WHERE s.plan_id = sp.id AND s.status = 'active')
	FROM subscription_plans sp`

func scanPlan(row interface{ Scan(...any) error }, p *models.SubscriptionPlan) error {
	return row.Scan(&p.ID, &p.Name, &p.Description, &p.TargetType, &p.Price, &p.BillingCycle, &p.DurationMonths,
		&p.CommissionRate, &p.Features, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		&p.ActiveSubscriptions)
}

func (r *sqliteSubscriptionRepo) ListPlans(ctx context.Context, f models.PlanFilter) ([]models.SubscriptionPlan, error) {
	var w where
	if f.TargetType != "" {
		w.add("sp.target_type = ?", f.TargetType)
	}
	if f.IsActive != nil {
		w.add("sp.is_active = ?", boolInt(*f.IsActive))
	}
	rows, err := r.db.QueryContext(ctx, planColumns+w.String()+" ORDER BY sp.target_type, sp.price, sp.id", w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return collect(rows, func(rs *sql.Rows, p *models.SubscriptionPlan) error { return scanPlan(rs, p) })
}

func (r *sqliteSubscriptionRepo) GetPlan(ctx context.Context, id int64) (*models.SubscriptionPlan, error) {
	p := &models.SubscriptionPlan{}
	if err := scanPlan(r.db.QueryRowContext(ctx, planColumns+` WHERE sp.id = ?`, id), p); err != nil {
		return nil, notFound(err, "subscription plan")
	}
	return p, nil
}

func (r *sqliteSubscriptionRepo) CreatePlan(ctx context.Context, p *models.SubscriptionPlan) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO subscription_plans (name, description, target_type, price, billing_cycle, duration_months,
		                                commission_rate, features, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at, updated_at`,
		p.Name, p.Description, p.TargetType, p.Price, p.BillingCycle, p.DurationMonths,
		p.CommissionRate, p.Features, p.IsActive).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}
	return nil
}

func (r *sqliteSubscriptionRepo) UpdatePlan(ctx context.Context, p *models.SubscriptionPlan) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE subscription_plans
		SET name = ?, description = ?, target_type = ?, price = ?, billing_cycle = ?, duration_months = ?,
		    commission_rate = ?, features = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		p.Name, p.Description, p.TargetType, p.Price, p.BillingCycle, p.DurationMonths,
		p.CommissionRate, p.Features, p.IsActive, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteSubscriptionRepo) DeletePlan(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM subscription_plans WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: plan has subscriptions", pkg.ErrUnprocessable)
		}
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	return affectedOne(result)
}

const subscriptionColumns = `
	SELECT s.id, s.plan_id, s.subscribable_type, s.subscribable_id,
	       COALESCE(CASE s.subscribable_type WHEN 'business' THEN b.name ELSE pr.business_name END, ''),
	       s.status, s.start_date, s.end_date, s.auto_renew, s.cancellation_reason, s.cancelled_at,
	       s.created_at, s.updated_at,
	       sp.name, sp.target_type, sp.price, sp.billing_cycle, sp.duration_months
	FROM subscriptions s
	JOIN subscription_plans sp ON sp.id = s.plan_id
	LEFT JOIN businesses b ON s.subscribable_type = 'business' AND b.id = s.subscribable_id
	LEFT JOIN producers pr ON s.subscribable_type = 'producer' AND pr.id = s.subscribable_id`

func scanSubscription(row interface{ Scan(...any) error }, s *models.Subscription) error {
	p := &models.SubscriptionPlan{}
	err := row.Scan(&s.ID, &s.PlanID, &s.SubscribableType, &s.SubscribableID,
		&s.SubscriberName,
		&s.Status, &s.StartDate, &s.EndDate, &s.AutoRenew, &s.CancellationReason, &s.CancelledAt,
		&s.CreatedAt, &s.UpdatedAt,
		&p.Name, &p.TargetType, &p.Price, &p.BillingCycle, &p.DurationMonths)
	if err != nil {
		return err
	}
	p.ID = s.PlanID
	s.Plan = p
	return nil
}

func (r *sqliteSubscriptionRepo) List(ctx context.Context, f models.SubscriptionFilter) ([]models.Subscription, int, error) {
	var w where
	if f.Type != "" {
		w.add("s.subscribable_type = ?", f.Type)
	}
	if f.Status != "" {
		w.add("s.status = ?", f.Status)
	}
	if f.PlanID != nil {
		w.add("s.plan_id = ?", *f.PlanID)
	}

	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM subscriptions s`+w.String(), w.args...)
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		subscriptionColumns+w.String()+" ORDER BY s.created_at DESC, s.id DESC"+pageClause(f.Page), w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	list, err := collect(rows, func(rs *sql.Rows, s *models.Subscription) error { return scanSubscription(rs, s) })
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *sqliteSubscriptionRepo) GetByID(ctx context.Context, id int64) (*models.Subscription, error) {
	s := &models.Subscription{}
	if err := scanSubscription(r.db.QueryRowContext(ctx, subscriptionColumns+` WHERE s.id = ?`, id), s); err != nil {
		return nil, notFound(err, "subscription")
	}
	return s, nil
}

func (r *sqliteSubscriptionRepo) Current(ctx context.Context, subscriberType string, subscriberID int64) (*models.Subscription, error) {
	s := &models.Subscription{}
	err := scanSubscription(r.db.QueryRowContext(ctx, subscriptionColumns+`
		WHERE s.subscribable_type = ? AND s.subscribable_id = ? AND s.status = 'active'
		ORDER BY s.start_date DESC, s.id DESC LIMIT 1`, subscriberType, subscriberID), s)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current subscription: %w", err)
	}
	return s, nil
}

func (r *sqliteSubscriptionRepo) Create(ctx context.Context, s *models.Subscription) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO subscriptions (plan_id, subscribable_type, subscribable_id, status, start_date, end_date, auto_renew)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at, updated_at`,
		s.PlanID, s.SubscribableType, s.SubscribableID, s.Status,
		database.FormatTime(s.StartDate), database.FormatTimePtr(s.EndDate), s.AutoRenew).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

func (r *sqliteSubscriptionRepo) Update(ctx context.Context, s *models.Subscription) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions SET status = ?, end_date = ?, auto_renew = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, s.Status, database.FormatTimePtr(s.EndDate), s.AutoRenew, s.ID)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteSubscriptionRepo) Cancel(ctx context.Context, id int64, reason *string, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET status = 'cancelled', cancellation_reason = ?, cancelled_at = ?, auto_renew = 0,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, reason, database.FormatTime(at), id)
	if err != nil {
		return fmt.Errorf("failed to cancel subscription: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteSubscriptionRepo) Stats(ctx context.Context) (models.SubscriptionStats, error) {
	var s models.SubscriptionStats
	var err error

	grouped := func(query string) ([]models.Counted, error) {
		rows, err := r.db.QueryContext(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("failed to group subscriptions: %w", err)
		}
		out, err := collect(rows, func(rs *sql.Rows, c *models.Counted) error { return rs.Scan(&c.Key, &c.Count) })
		if out == nil && err == nil {
			out = []models.Counted{}
		}
		return out, err
	}

	if s.StatusCounts, err = grouped(`SELECT status, COUNT(*) FROM subscriptions GROUP BY status ORDER BY status`); err != nil {
		return s, err
	}
	if s.TypeCounts, err = grouped(`SELECT subscribable_type, COUNT(*) FROM subscriptions GROUP BY subscribable_type ORDER BY subscribable_type`); err != nil {
		return s, err
	}
	if s.PlanCounts, err = grouped(`
		SELECT sp.name, COUNT(s.id) FROM subscription_plans sp
		LEFT JOIN subscriptions s ON s.plan_id = sp.id
		GROUP BY sp.id ORDER BY sp.target_type, sp.price, sp.id`); err != nil {
		return s, err
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(sp.price), 0) FROM subscriptions s
		JOIN subscription_plans sp ON sp.id = s.plan_id
		WHERE s.status = 'active'`).Scan(&s.TotalRevenue)
	if err != nil {
		return s, fmt.Errorf("failed to sum subscription revenue: %w", err)
	}
	return s, nil
}

func (r *sqliteSubscriptionRepo) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions SET status = 'expired', updated_at = CURRENT_TIMESTAMP
		WHERE status = 'active' AND auto_renew = 0 AND end_date IS NOT NULL AND end_date < ?`,
		database.FormatTime(now))
	if err != nil {
		return 0, fmt.Errorf("failed to expire subscriptions: %w", err)
	}
	return result.RowsAffected()
}
