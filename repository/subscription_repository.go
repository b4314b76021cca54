package repository

import (
	"context"
	"time"

	"github.com/dixis/dixis/models"
)

type SubscriptionRepository interface {
	ListPlans(ctx context.Context, f models.PlanFilter) ([]models.SubscriptionPlan, error)
	GetPlan(ctx context.Context, id int64) (*models.SubscriptionPlan, error)
	CreatePlan(ctx context.Context, p *models.SubscriptionPlan) error
	UpdatePlan(ctx context.Context, p *models.SubscriptionPlan) error
	DeletePlan(ctx context.Context, id int64) error

	List(ctx context.Context, f models.SubscriptionFilter) ([]models.Subscription, int, error)
	GetByID(ctx context.Context, id int64) (*models.Subscription, error)
	// Current returns the newest active subscription of a subscriber, nil if none.
	Current(ctx context.Context, subscriberType string, subscriberID int64) (*models.Subscription, error)
	Create(ctx context.Context, s *models.Subscription) error
	Update(ctx context.Context, s *models.Subscription) error
	Cancel(ctx context.Context, id int64, reason *string, at time.Time) error

	Stats(ctx context.Context) (models.SubscriptionStats, error)
	// ExpireDue marks active, non-renewing subscriptions past end_date as expired.
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}
