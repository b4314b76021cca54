package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dixis/dixis/database"
	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/repository"
	"github.com/dixis/dixis/ws"
)

const replacedByAdmin = "replaced by admin"

type SubscriptionService interface {
	ListPlans(ctx context.Context, f models.PlanFilter) ([]models.SubscriptionPlan, error)
	GetPlan(ctx context.Context, id int64) (*models.SubscriptionPlan, error)
	CreatePlan(ctx context.Context, req *models.PlanInput) (*models.SubscriptionPlan, error)
	UpdatePlan(ctx context.Context, id int64, req *models.PlanInput) (*models.SubscriptionPlan, error)
	DeletePlan(ctx context.Context, id int64) error

	List(ctx context.Context, f models.SubscriptionFilter) (pkg.Page[models.Subscription], error)
	Get(ctx context.Context, id int64) (*models.Subscription, error)
	Create(ctx context.Context, req *models.CreateSubscriptionRequest) (*models.Subscription, error)
	Update(ctx context.Context, id int64, req *models.UpdateSubscriptionRequest) (*models.Subscription, error)
	Cancel(ctx context.Context, id int64, req *models.CancelSubscriptionRequest) (*models.Subscription, error)
	Stats(ctx context.Context) (models.SubscriptionStats, error)
	ExpireDue(ctx context.Context) (int64, error)
}

type subscriptionService struct {
	db               *sql.DB
	subscriptionRepo repository.SubscriptionRepository
	producerRepo     repository.ProducerRepository
	businessRepo     repository.BusinessRepository
	notifier         NotificationService
	loc              *time.Location
	now              func() time.Time
}

func NewSubscriptionService(
	db *sql.DB,
	subscriptionRepo repository.SubscriptionRepository,
	producerRepo repository.ProducerRepository,
	businessRepo repository.BusinessRepository,
	notifier NotificationService,
	loc *time.Location,
) SubscriptionService {
	return &subscriptionService{
		db:               db,
		subscriptionRepo: subscriptionRepo,
		producerRepo:     producerRepo,
		businessRepo:     businessRepo,
		notifier:         notifier,
		loc:              loc,
		now:              time.Now,
	}
}

// ─── Plans ───

func (s *subscriptionService) ListPlans(ctx context.Context, f models.PlanFilter) ([]models.SubscriptionPlan, error) {
	if f.TargetType != "" {
		if err := models.ValidateOneOf("target_type", f.TargetType, models.SubscriberTypes...); err != nil {
			return nil, err
		}
	}
	plans, err := s.subscriptionRepo.ListPlans(ctx, f)
	return nonNil(plans), err
}

func (s *subscriptionService) GetPlan(ctx context.Context, id int64) (*models.SubscriptionPlan, error) {
	return s.subscriptionRepo.GetPlan(ctx, id)
}

func (s *subscriptionService) CreatePlan(ctx context.Context, req *models.PlanInput) (*models.SubscriptionPlan, error) {
	if err := req.Validate(false); err != nil {
		return nil, err
	}

	p := &models.SubscriptionPlan{
		Name:           *req.Name,
		Description:    req.Description.Value,
		TargetType:     *req.TargetType,
		Price:          *req.Price,
		BillingCycle:   *req.BillingCycle,
		DurationMonths: *req.DurationMonths,
		Features:       models.StringList{},
		IsActive:       true,
	}
	if req.CommissionRate != nil {
		p.CommissionRate = *req.CommissionRate
	}
	if req.Features != nil {
		p.Features = *req.Features
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := s.subscriptionRepo.CreatePlan(ctx, p); err != nil {
		return nil, err
	}
	return s.subscriptionRepo.GetPlan(ctx, p.ID)
}

func (s *subscriptionService) UpdatePlan(ctx context.Context, id int64, req *models.PlanInput) (*models.SubscriptionPlan, error) {
	if err := req.Validate(true); err != nil {
		return nil, err
	}

	p, err := s.subscriptionRepo.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	applyOptional(&p.Description, req.Description)
	if req.TargetType != nil {
		p.TargetType = *req.TargetType
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.BillingCycle != nil {
		p.BillingCycle = *req.BillingCycle
	}
	if req.DurationMonths != nil {
		p.DurationMonths = *req.DurationMonths
	}
	if req.CommissionRate != nil {
		p.CommissionRate = *req.CommissionRate
	}
	if req.Features != nil {
		p.Features = *req.Features
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := s.subscriptionRepo.UpdatePlan(ctx, p); err != nil {
		return nil, err
	}
	return s.subscriptionRepo.GetPlan(ctx, id)
}

func (s *subscriptionService) DeletePlan(ctx context.Context, id int64) error {
	p, err := s.subscriptionRepo.GetPlan(ctx, id)
	if err != nil {
		return err
	}
	if p.ActiveSubscriptions > 0 {
		return fmt.Errorf("%w: plan has active subscriptions", pkg.ErrUnprocessable)
	}
	return s.subscriptionRepo.DeletePlan(ctx, id)
}

// ─── Subscriptions ───

func (s *subscriptionService) List(ctx context.Context, f models.SubscriptionFilter) (pkg.Page[models.Subscription], error) {
	subs, total, err := s.subscriptionRepo.List(ctx, f)
	if err != nil {
		return pkg.Page[models.Subscription]{}, err
	}
	return pkg.NewPage(subs, total, f.Page), nil
}

func (s *subscriptionService) Get(ctx context.Context, id int64) (*models.Subscription, error) {
	return s.subscriptionRepo.GetByID(ctx, id)
}

// subscriberUser resolves the account owning a business or producer.
func (s *subscriptionService) subscriberUser(ctx context.Context, kind string, id int64) (int64, error) {
	switch kind {
	case models.SubscriberBusiness:
		b, err := s.businessRepo.GetByID(ctx, id)
		if err != nil {
			return 0, err
		}
		return b.UserID, nil
	default:
		p, err := s.producerRepo.GetByID(ctx, id)
		if err != nil {
			return 0, err
		}
		return p.UserID, nil
	}
}

// Create starts a subscription, cancelling the subscriber's current one.
func (s *subscriptionService) Create(ctx context.Context, req *models.CreateSubscriptionRequest) (*models.Subscription, error) {
	if err := req.Validate(s.loc); err != nil {
		return nil, err
	}

	plan, err := s.subscriptionRepo.GetPlan(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}
	if plan.TargetType != req.SubscribableType {
		return nil, pkg.ValidationErrors{"plan_id": "is not available for " + req.SubscribableType + " subscribers"}
	}
	userID, err := s.subscriberUser(ctx, req.SubscribableType, req.SubscribableID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sub := &models.Subscription{
		PlanID:           plan.ID,
		SubscribableType: req.SubscribableType,
		SubscribableID:   req.SubscribableID,
		Status:           models.SubscriptionActive,
		StartDate:        now,
		EndDate:          req.End(),
	}
	if sub.EndDate == nil {
		end := now.AddDate(0, plan.DurationMonths, 0)
		sub.EndDate = &end
	}
	if !sub.EndDate.After(now) {
		return nil, pkg.ValidationErrors{"end_date": "must be in the future"}
	}
	if req.AutoRenew != nil {
		sub.AutoRenew = *req.AutoRenew
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txSubs := repository.NewSQLiteSubscriptionRepo(tx)

		current, err := txSubs.Current(ctx, req.SubscribableType, req.SubscribableID)
		if err != nil {
			return err
		}
		if current != nil {
			reason := replacedByAdmin
			if err := txSubs.Cancel(ctx, current.ID, &reason, now); err != nil {
				return err
			}
		}
		return txSubs.Create(ctx, sub)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, Notice{
		UserID: userID,
		Type:   models.NotificationSubscriptionCreated,
		Key:    "subscription.created",
		Params: map[string]string{"plan": plan.Name},
		Data:   models.JSONMap{"subscription_id": sub.ID, "plan_id": plan.ID},
		Event:  s.event(sub.ID, sub.Status),
	})
	return s.subscriptionRepo.GetByID(ctx, sub.ID)
}

func (s *subscriptionService) Update(ctx context.Context, id int64, req *models.UpdateSubscriptionRequest) (*models.Subscription, error) {
	if err := req.Validate(s.loc); err != nil {
		return nil, err
	}

	sub, err := s.subscriptionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != nil {
		sub.Status = *req.Status
	}
	if req.EndDate.Set {
		sub.EndDate = req.End()
	}
	if req.AutoRenew != nil {
		sub.AutoRenew = *req.AutoRenew
	}
	if sub.EndDate != nil && !sub.EndDate.After(sub.StartDate) {
		return nil, pkg.ValidationErrors{"end_date": "must be after start_date"}
	}

	if err := s.subscriptionRepo.Update(ctx, sub); err != nil {
		return nil, err
	}
	return s.subscriptionRepo.GetByID(ctx, id)
}

func (s *subscriptionService) Cancel(ctx context.Context, id int64, req *models.CancelSubscriptionRequest) (*models.Subscription, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.subscriptionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status == models.SubscriptionCancelled {
		return nil, fmt.Errorf("%w: subscription is already cancelled", pkg.ErrUnprocessable)
	}

	if err := s.subscriptionRepo.Cancel(ctx, id, req.CancellationReason, s.now()); err != nil {
		return nil, err
	}

	var reason string
	if req.CancellationReason != nil {
		reason = *req.CancellationReason
	}
	planName := ""
	if sub.Plan != nil {
		planName = sub.Plan.Name
	}
	if userID, err := s.subscriberUser(ctx, sub.SubscribableType, sub.SubscribableID); err == nil {
		s.notifier.Notify(ctx, Notice{
			UserID: userID,
			Type:   models.NotificationSubscriptionCancelled,
			Key:    "subscription.cancelled",
			Params: map[string]string{"plan": planName, "reason": reason},
			Data:   models.JSONMap{"subscription_id": id, "reason": reason},
			Event:  s.event(id, models.SubscriptionCancelled),
		})
	}

	return s.subscriptionRepo.GetByID(ctx, id)
}

func (s *subscriptionService) Stats(ctx context.Context) (models.SubscriptionStats, error) {
	return s.subscriptionRepo.Stats(ctx)
}

func (s *subscriptionService) ExpireDue(ctx context.Context) (int64, error) {
	return s.subscriptionRepo.ExpireDue(ctx, s.now())
}

func (s *subscriptionService) event(id int64, status string) *ws.Event {
	return &ws.Event{Op: ws.OpSubscriptionChange, Data: ws.EntityData{ID: id, Status: status}}
}
