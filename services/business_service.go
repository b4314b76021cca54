package services

import (
	"context"
	"time"

	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/repository"
	"github.com/dixis/dixis/ws"
)

const businessStatsOrders = 5

type BusinessService interface {
	List(ctx context.Context, f models.BusinessFilter) (pkg.Page[models.Business], error)
	Pending(ctx context.Context, f models.BusinessFilter) (pkg.Page[models.Business], error)
	Get(ctx context.Context, id int64) (*models.BusinessDetail, error)
	Update(ctx context.Context, id int64, req *models.UpdateBusinessRequest) (*models.Business, error)
	Verify(ctx context.Context, id int64) (*models.Business, error)
	Reject(ctx context.Context, id int64, req *models.RejectRequest) (*models.Business, error)
	Stats(ctx context.Context, id int64) (*models.BusinessStats, error)
}

type businessService struct {
	businessRepo     repository.BusinessRepository
	subscriptionRepo repository.SubscriptionRepository
	notifier         NotificationService
	now              func() time.Time
}

func NewBusinessService(
	businessRepo repository.BusinessRepository,
	subscriptionRepo repository.SubscriptionRepository,
	notifier NotificationService,
) BusinessService {
	return &businessService{
		businessRepo:     businessRepo,
		subscriptionRepo: subscriptionRepo,
		notifier:         notifier,
		now:              time.Now,
	}
}

func (s *businessService) List(ctx context.Context, f models.BusinessFilter) (pkg.Page[models.Business], error) {
	businesses, total, err := s.businessRepo.List(ctx, f)
	if err != nil {
		return pkg.Page[models.Business]{}, err
	}
	return pkg.NewPage(businesses, total, f.Page), nil
}

func (s *businessService) Pending(ctx context.Context, f models.BusinessFilter) (pkg.Page[models.Business], error) {
	f.Status = "pending"
	return s.List(ctx, f)
}

func (s *businessService) Get(ctx context.Context, id int64) (*models.BusinessDetail, error) {
	business, err := s.businessRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sub, err := s.subscriptionRepo.Current(ctx, models.SubscriberBusiness, id)
	if err != nil {
		return nil, err
	}
	return &models.BusinessDetail{Business: *business, Subscription: sub}, nil
}

func (s *businessService) Update(ctx context.Context, id int64, req *models.UpdateBusinessRequest) (*models.Business, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	business, err := s.businessRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	v := pkg.ValidationErrors{}
	if req.TaxID != nil {
		taken, err := s.businessRepo.TaxIDExists(ctx, *req.TaxID, id)
		if err != nil {
			return nil, err
		}
		if taken {
			v.Add("tax_id", "has already been taken")
		}
		business.TaxID = req.TaxID
	}
	if req.Email != nil {
		taken, err := s.businessRepo.EmailExists(ctx, *req.Email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			v.Add("email", "has already been taken")
		}
		business.Email = req.Email
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if req.Name != nil {
		business.Name = *req.Name
	}
	if req.BusinessType != nil {
		business.BusinessType = *req.BusinessType
	}
	for dst, src := range map[**string]*string{
		&business.TaxOffice:  req.TaxOffice,
		&business.Address:    req.Address,
		&business.City:       req.City,
		&business.PostalCode: req.PostalCode,
		&business.Phone:      req.Phone,
	} {
		if src != nil {
			*dst = src
		}
	}
	applyOptional(&business.Website, req.Website)
	applyOptional(&business.Description, req.Description)
	applyOptional(&business.ContactPerson, req.ContactPerson)
	if req.Verified != nil {
		business.Verified = *req.Verified
	}

	if err := s.businessRepo.Update(ctx, business); err != nil {
		return nil, err
	}
	return s.businessRepo.GetByID(ctx, id)
}

func (s *businessService) Verify(ctx context.Context, id int64) (*models.Business, error) {
	business, err := s.businessRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.businessRepo.MarkVerified(ctx, id, s.now()); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, Notice{
		UserID: business.UserID,
		Type:   models.NotificationAccountVerified,
		Key:    "business.verified",
		Params: map[string]string{"name": business.Name},
		Data:   models.JSONMap{"business_id": business.ID},
		Event: &ws.Event{
			Op:   ws.OpBusinessVerified,
			Data: ws.EntityData{ID: business.ID, Name: business.Name},
		},
	})

	return s.businessRepo.GetByID(ctx, id)
}

func (s *businessService) Reject(ctx context.Context, id int64, req *models.RejectRequest) (*models.Business, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	business, err := s.businessRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.businessRepo.MarkRejected(ctx, id, req.Reason, s.now()); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, Notice{
		UserID: business.UserID,
		Type:   models.NotificationAccountRejected,
		Key:    "business.rejected",
		Params: map[string]string{"name": business.Name, "reason": req.Reason},
		Data:   models.JSONMap{"business_id": business.ID, "reason": req.Reason},
		Event: &ws.Event{
			Op:   ws.OpBusinessRejected,
			Data: ws.EntityData{ID: business.ID, Name: business.Name, Reason: req.Reason},
		},
	})

	return s.businessRepo.GetByID(ctx, id)
}

func (s *businessService) Stats(ctx context.Context, id int64) (*models.BusinessStats, error) {
	if _, err := s.businessRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	orders, total, err := s.businessRepo.PurchaseStats(ctx, id)
	if err != nil {
		return nil, err
	}
	recent, err := s.businessRepo.RecentOrders(ctx, id, businessStatsOrders)
	if err != nil {
		return nil, err
	}
	sub, err := s.subscriptionRepo.Current(ctx, models.SubscriberBusiness, id)
	if err != nil {
		return nil, err
	}

	return &models.BusinessStats{
		OrderCount:     orders,
		TotalPurchases: total,
		RecentOrders:   nonNil(recent),
		Subscription:   sub,
	}, nil
}
