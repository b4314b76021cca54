package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/repository"
	"github.com/dixis/dixis/ws"
)

const (
	producerDetailOrders = 10
	producerStatsOrders  = 5
)

type ProducerService interface {
	List(ctx context.Context, f models.ProducerFilter) (*models.ProducerPage, error)
	Pending(ctx context.Context, f models.ProducerFilter) (pkg.Page[models.PendingProducer], error)
	Get(ctx context.Context, id int64) (*models.ProducerDetail, error)
	Update(ctx context.Context, id int64, req *models.UpdateProducerRequest) (*models.Producer, error)
	Verify(ctx context.Context, id int64) (*models.Producer, error)
	Reject(ctx context.Context, id int64, req *models.RejectRequest) (*models.Producer, error)
	Stats(ctx context.Context, id int64) (*models.ProducerStats, error)
}

type producerService struct {
	producerRepo repository.ProducerRepository
	notifier     NotificationService
	now          func() time.Time
}

func NewProducerService(producerRepo repository.ProducerRepository, notifier NotificationService) ProducerService {
	return &producerService{
		producerRepo: producerRepo,
		notifier:     notifier,
		now:          time.Now,
	}
}

func (s *producerService) List(ctx context.Context, f models.ProducerFilter) (*models.ProducerPage, error) {
	producers, total, err := s.producerRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	regions, err := s.producerRepo.Regions(ctx)
	if err != nil {
		return nil, err
	}
	return &models.ProducerPage{
		Page:    pkg.NewPage(producers, total, f.Page),
		Regions: nonNil(regions),
	}, nil
}

func (s *producerService) Pending(ctx context.Context, f models.ProducerFilter) (pkg.Page[models.PendingProducer], error) {
	f.Status = "pending"
	producers, total, err := s.producerRepo.List(ctx, f)
	if err != nil {
		return pkg.Page[models.PendingProducer]{}, err
	}

	now := s.now()
	pending := make([]models.PendingProducer, len(producers))
	for i, p := range producers {
		pending[i] = models.PendingProducer{
			Producer:        p,
			HasAllDocuments: p.HasAllDocuments(),
			DaysPending:     int(now.Sub(p.CreatedAt).Hours() / 24),
		}
	}
	return pkg.NewPage(pending, total, f.Page), nil
}

func (s *producerService) Get(ctx context.Context, id int64) (*models.ProducerDetail, error) {
	producer, err := s.producerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	active, inactive, err := s.producerRepo.ProductCounts(ctx, id)
	if err != nil {
		return nil, err
	}
	sales, err := s.producerRepo.SalesStats(ctx, id)
	if err != nil {
		return nil, err
	}
	orders, err := s.producerRepo.RecentOrders(ctx, id, producerDetailOrders)
	if err != nil {
		return nil, err
	}

	producer.ProductsCount = active + inactive
	return &models.ProducerDetail{
		Producer:              *producer,
		ActiveProductsCount:   active,
		InactiveProductsCount: inactive,
		SalesStats:            sales,
		RecentOrders:          nonNil(orders),
	}, nil
}

func (s *producerService) Update(ctx context.Context, id int64, req *models.UpdateProducerRequest) (*models.Producer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	producer, err := s.producerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.TaxID != nil && (producer.TaxID == nil || *producer.TaxID != *req.TaxID) {
		taken, err := s.producerRepo.TaxIDExists(ctx, *req.TaxID, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, pkg.ValidationErrors{"tax_id": "has already been taken"}
		}
		producer.TaxID = req.TaxID
	}

	if req.BusinessName != nil {
		producer.BusinessName = *req.BusinessName
	}
	if req.TaxOffice != nil {
		producer.TaxOffice = req.TaxOffice
	}
	applyOptional(&producer.Description, req.Description)
	applyOptional(&producer.Address, req.Address)
	applyOptional(&producer.City, req.City)
	applyOptional(&producer.PostalCode, req.PostalCode)
	applyOptional(&producer.Region, req.Region)
	applyOptional(&producer.Website, req.Website)
	applyOptional(&producer.Bio, req.Bio)
	if req.SocialMedia.Set {
		producer.SocialMedia = models.JSONMap{}
		if req.SocialMedia.Value != nil {
			producer.SocialMedia = *req.SocialMedia.Value
		}
	}
	if req.Verified != nil {
		producer.Verified = *req.Verified
	}
	if req.IsFeatured != nil {
		producer.IsFeatured = *req.IsFeatured
	}

	if err := s.producerRepo.Update(ctx, producer); err != nil {
		return nil, err
	}
	return s.producerRepo.GetByID(ctx, id)
}

func (s *producerService) Verify(ctx context.Context, id int64) (*models.Producer, error) {
	producer, err := s.producerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.producerRepo.MarkVerified(ctx, id, s.now()); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, Notice{
		UserID: producer.UserID,
		Type:   models.NotificationAccountVerified,
		Key:    "producer.verified",
		Params: map[string]string{"name": producer.BusinessName},
		Data:   models.JSONMap{"producer_id": producer.ID},
		Event: &ws.Event{
			Op:   ws.OpProducerVerified,
			Data: ws.EntityData{ID: producer.ID, Name: producer.BusinessName},
		},
	})

	return s.producerRepo.GetByID(ctx, id)
}

func (s *producerService) Reject(ctx context.Context, id int64, req *models.RejectRequest) (*models.Producer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	producer, err := s.producerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.producerRepo.MarkRejected(ctx, id, req.Reason, s.now()); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, Notice{
		UserID: producer.UserID,
		Type:   models.NotificationAccountRejected,
		Key:    "producer.rejected",
		Params: map[string]string{"name": producer.BusinessName, "reason": req.Reason},
		Data:   models.JSONMap{"producer_id": producer.ID, "reason": req.Reason},
		Event: &ws.Event{
			Op:   ws.OpProducerRejected,
			Data: ws.EntityData{ID: producer.ID, Name: producer.BusinessName, Reason: req.Reason},
		},
	})

	return s.producerRepo.GetByID(ctx, id)
}

func (s *producerService) Stats(ctx context.Context, id int64) (*models.ProducerStats, error) {
	if ok, err := s.producerRepo.Exists(ctx, id); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("%w: producer", pkg.ErrNotFound)
	}

	active, inactive, err := s.producerRepo.ProductCounts(ctx, id)
	if err != nil {
		return nil, err
	}
	sales, err := s.producerRepo.SalesStats(ctx, id)
	if err != nil {
		return nil, err
	}
	orders, err := s.producerRepo.RecentOrders(ctx, id, producerStatsOrders)
	if err != nil {
		return nil, err
	}

	return &models.ProducerStats{
		ProductCount:       active + inactive,
		ActiveProductCount: active,
		OrderCount:         sales.TotalOrders,
		TotalSales:         sales.TotalSales,
		RecentOrders:       nonNil(orders),
	}, nil
}

// applyOptional copies a present Optional into dst; an explicit null clears it.
func applyOptional[T any](dst **T, o models.Optional[T]) {
	if o.Set {
		*dst = o.Value
	}
}
