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

const adoptionStatsMonths = 6

type AdoptionService interface {
	List(ctx context.Context, f models.AdoptionFilter) (pkg.Page[models.Adoption], error)
	Get(ctx context.Context, id int64) (*models.Adoption, error)
	Update(ctx context.Context, id int64, req *models.UpdateAdoptionRequest) (*models.Adoption, error)
	Delete(ctx context.Context, id int64) error
	Cancel(ctx context.Context, id int64) (*models.Adoption, error)
	Renew(ctx context.Context, id int64, req *models.RenewAdoptionRequest) (*models.Adoption, error)
	Stats(ctx context.Context) (*models.AdoptionStats, error)
	// ExpireDue expires finished adoptions and frees their items.
	ExpireDue(ctx context.Context) (expired int, released int64, err error)
}

type adoptionService struct {
	db           *sql.DB
	adoptionRepo repository.AdoptionRepository
	hub          ws.EventPublisher
	loc          *time.Location
	now          func() time.Time
}

// NewAdoptionService needs the raw *sql.DB because Cancel, Renew and
// ExpireDue touch adoptions and items in one transaction.
func NewAdoptionService(
	db *sql.DB,
	adoptionRepo repository.AdoptionRepository,
	hub ws.EventPublisher,
	loc *time.Location,
) AdoptionService {
	return &adoptionService{
		db:           db,
		adoptionRepo: adoptionRepo,
		hub:          hub,
		loc:          loc,
		now:          time.Now,
	}
}

func (s *adoptionService) List(ctx context.Context, f models.AdoptionFilter) (pkg.Page[models.Adoption], error) {
	adoptions, total, err := s.adoptionRepo.List(ctx, f)
	if err != nil {
		return pkg.Page[models.Adoption]{}, err
	}
	return pkg.NewPage(adoptions, total, f.Page), nil
}

func (s *adoptionService) Get(ctx context.Context, id int64) (*models.Adoption, error) {
	return s.adoptionRepo.GetByID(ctx, id)
}

func (s *adoptionService) Update(ctx context.Context, id int64, req *models.UpdateAdoptionRequest) (*models.Adoption, error) {
	if err := req.Validate(s.loc); err != nil {
		return nil, err
	}

	adoption, err := s.adoptionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	start, end := req.Dates()
	if start != nil {
		adoption.StartDate = *start
	}
	if end != nil {
		adoption.EndDate = *end
	}
	if !adoption.EndDate.After(adoption.StartDate) {
		return nil, pkg.ValidationErrors{"end_date": "must be after start_date"}
	}
	if req.Status != nil {
		adoption.Status = *req.Status
	}
	if req.PaymentStatus != nil {
		adoption.PaymentStatus = *req.PaymentStatus
	}
	if req.PricePaid != nil {
		adoption.PricePaid = *req.PricePaid
	}
	applyOptional(&adoption.Notes, req.Notes)

	if err := s.adoptionRepo.Update(ctx, adoption); err != nil {
		return nil, err
	}
	s.publish(adoption.ID, adoption.Status)
	return s.adoptionRepo.GetByID(ctx, id)
}

func (s *adoptionService) Delete(ctx context.Context, id int64) error {
	return s.adoptionRepo.Delete(ctx, id)
}

// Cancel marks the adoption cancelled and, if its item is adopted, makes
// the item available again.
func (s *adoptionService) Cancel(ctx context.Context, id int64) (*models.Adoption, error) {
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txAdoptions := repository.NewSQLiteAdoptionRepo(tx)
		txItems := repository.NewSQLiteAdoptableItemRepo(tx)

		adoption, err := txAdoptions.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if adoption.Status == models.AdoptionStatusCancelled {
			return fmt.Errorf("%w: adoption is already cancelled", pkg.ErrUnprocessable)
		}

		if err := txAdoptions.SetStatus(ctx, id, models.AdoptionStatusCancelled); err != nil {
			return err
		}

		item, err := txItems.GetByID(ctx, adoption.AdoptableItemID)
		if err != nil {
			return err
		}
		if item.Status == models.ItemStatusAdopted {
			return txItems.SetStatus(ctx, item.ID, models.ItemStatusAvailable)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(id, models.AdoptionStatusCancelled)
	return s.adoptionRepo.GetByID(ctx, id)
}

// Renew restarts the adoption today for DurationMonths and marks the item adopted.
func (s *adoptionService) Renew(ctx context.Context, id int64, req *models.RenewAdoptionRequest) (*models.Adoption, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := s.now()
	end := start.AddDate(0, req.DurationMonths, 0)

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txAdoptions := repository.NewSQLiteAdoptionRepo(tx)
		txItems := repository.NewSQLiteAdoptableItemRepo(tx)

		adoption, err := txAdoptions.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := txAdoptions.Renew(ctx, id, start, end, req.PricePaid); err != nil {
			return err
		}
		return txItems.SetStatus(ctx, adoption.AdoptableItemID, models.ItemStatusAdopted)
	})
	if err != nil {
		return nil, err
	}

	s.publish(id, models.AdoptionStatusActive)
	return s.adoptionRepo.GetByID(ctx, id)
}

func (s *adoptionService) Stats(ctx context.Context) (*models.AdoptionStats, error) {
	stats, err := s.adoptionRepo.Totals(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)

	stats.MonthlyCounts = make([]models.Labeled, 0, adoptionStatsMonths)
	stats.MonthlyRevenue = make([]models.Labeled, 0, adoptionStatsMonths)
	for i := range adoptionStatsMonths {
		from := monthStart.AddDate(0, -i, 0)
		to := from.AddDate(0, 1, 0)

		n, revenue, err := s.adoptionRepo.PeriodTotals(ctx, from, to)
		if err != nil {
			return nil, err
		}
		label := from.Format("Jan 2006")
		stats.MonthlyCounts = append(stats.MonthlyCounts, models.Labeled{Label: label, Value: float64(n)})
		stats.MonthlyRevenue = append(stats.MonthlyRevenue, models.Labeled{Label: label, Value: revenue})
	}

	stats.TopItems = nonNil(stats.TopItems)
	stats.TopUsers = nonNil(stats.TopUsers)
	return &stats, nil
}

func (s *adoptionService) ExpireDue(ctx context.Context) (int, int64, error) {
	var expired int
	var released int64

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txAdoptions := repository.NewSQLiteAdoptionRepo(tx)

		itemIDs, err := txAdoptions.ExpireDue(ctx, s.now())
		if err != nil {
			return err
		}
		expired = len(itemIDs)
		if expired == 0 {
			return nil
		}
		released, err = txAdoptions.ReleaseIdleItems(ctx, itemIDs)
		return err
	})
	if err != nil {
		return 0, 0, err
	}
	return expired, released, nil
}

func (s *adoptionService) publish(id int64, status string) {
	s.hub.BroadcastToAll(ws.Event{
		Op:   ws.OpAdoptionUpdated,
		Data: ws.EntityData{ID: id, Status: status},
	})
}
