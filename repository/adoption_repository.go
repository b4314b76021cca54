package repository

import (
	"context"
	"time"

	"github.com/dixis/dixis/models"
)

type AdoptableItemRepository interface {
	List(ctx context.Context, f models.AdoptableItemFilter) ([]models.AdoptableItem, int, error)
	GetByID(ctx context.Context, id int64) (*models.AdoptableItem, error)
	Create(ctx context.Context, item *models.AdoptableItem) error
	Update(ctx context.Context, item *models.AdoptableItem) error
	Delete(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, id int64, status string) error
	SlugExists(ctx context.Context, slug string, exceptID int64) (bool, error)
	HasActiveAdoptions(ctx context.Context, id int64) (bool, error)
}

type AdoptionRepository interface {
	List(ctx context.Context, f models.AdoptionFilter) ([]models.Adoption, int, error)
	GetByID(ctx context.Context, id int64) (*models.Adoption, error)
	Update(ctx context.Context, a *models.Adoption) error
	Delete(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, id int64, status string) error
	Renew(ctx context.Context, id int64, start, end time.Time, pricePaid float64) error

	// Totals fills counts, revenue and top lists; monthly series are left empty.
	Totals(ctx context.Context) (models.AdoptionStats, error)
	// PeriodTotals counts adoptions created in [from, to) and their paid revenue.
	PeriodTotals(ctx context.Context, from, to time.Time) (int, float64, error)
	// ExpireDue marks active adoptions ending before now as expired and
	// returns the affected item ids.
	ExpireDue(ctx context.Context, now time.Time) ([]int64, error)
	// ReleaseIdleItems returns adopted items without an active adoption to available.
	ReleaseIdleItems(ctx context.Context, itemIDs []int64) (int64, error)
}
