package repository

import (
	"context"

	"github.com/dixis/dixis/models"
)

// ShippingRepository covers zones, postal prefixes, weight tiers, delivery
// methods and rates. They are only meaningful together, so one repository
// serves all five tables.
type ShippingRepository interface {
	ListZones(ctx context.Context, isActive *bool) ([]models.ShippingZone, error)
	GetZone(ctx context.Context, id int64) (*models.ShippingZone, error)
	CreateZone(ctx context.Context, z *models.ShippingZone) error
	UpdateZone(ctx context.Context, z *models.ShippingZone) error
	DeleteZone(ctx context.Context, id int64) error
	ZoneInUse(ctx context.Context, id int64) (bool, error)

	ListPostalCodes(ctx context.Context, f models.PostalCodeFilter) ([]models.PostalCodeZone, int, error)
	GetPostalCode(ctx context.Context, id int64) (*models.PostalCodeZone, error)
	CreatePostalCode(ctx context.Context, pc *models.PostalCodeZone) error
	UpdatePostalCode(ctx context.Context, pc *models.PostalCodeZone) error
	DeletePostalCode(ctx context.Context, id int64) error
	// UpsertPostalCode reports whether a new row was inserted.
	UpsertPostalCode(ctx context.Context, prefix string, zoneID int64) (bool, error)
	PostalPrefixes(ctx context.Context) (map[string]int64, error)

	ListTiers(ctx context.Context) ([]models.WeightTier, error)
	GetTier(ctx context.Context, id int64) (*models.WeightTier, error)
	CreateTier(ctx context.Context, t *models.WeightTier) error
	UpdateTier(ctx context.Context, t *models.WeightTier) error
	DeleteTier(ctx context.Context, id int64) error

	ListMethods(ctx context.Context, activeOnly bool) ([]models.DeliveryMethod, error)
	GetMethod(ctx context.Context, id int64) (*models.DeliveryMethod, error)
	CreateMethod(ctx context.Context, m *models.DeliveryMethod) error
	UpdateMethod(ctx context.Context, m *models.DeliveryMethod) error
	DeleteMethod(ctx context.Context, id int64) error
	MethodCodeExists(ctx context.Context, code string, exceptID int64) (bool, error)

	ListRates(ctx context.Context, f models.ShippingRateFilter) ([]models.ShippingRate, int, error)
	GetRate(ctx context.Context, id int64) (*models.ShippingRate, error)
	CreateRate(ctx context.Context, rate *models.ShippingRate) error
	UpdateRate(ctx context.Context, rate *models.ShippingRate) error
	DeleteRate(ctx context.Context, id int64) error
	// RateExists checks the (zone, tier, method, producer) key ignoring exceptID.
	RateExists(ctx context.Context, rate *models.ShippingRate, exceptID int64) (bool, error)
	UpsertRate(ctx context.Context, rate *models.ShippingRate) (bool, error)
	RatesForZone(ctx context.Context, zoneID int64) ([]models.ShippingRate, error)
}
