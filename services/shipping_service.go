package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dixis/dixis/database"
	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/pkg/cache"
	"github.com/dixis/dixis/repository"
	"go.uber.org/zap"
)

const (
	shippingCacheTTL   = 10 * time.Minute
	extraKgThresholdG  = 10000
	shippingTablesKey  = "tables"
	shippingCacheSweep = time.Minute
)

// ShippingOptions carries the quote constants read from config.
type ShippingOptions struct {
	DefaultZoneID     int64
	VolumetricDivisor float64
	ExtraKgRate       float64
	CODFee            float64
}

type ShippingService interface {
	ListZones(ctx context.Context, isActive *bool) ([]models.ShippingZone, error)
	GetZone(ctx context.Context, id int64) (*models.ShippingZone, error)
	CreateZone(ctx context.Context, req *models.ShippingZoneInput) (*models.ShippingZone, error)
	UpdateZone(ctx context.Context, id int64, req *models.ShippingZoneInput) (*models.ShippingZone, error)
	DeleteZone(ctx context.Context, id int64) error

	ListPostalCodes(ctx context.Context, f models.PostalCodeFilter) (pkg.Page[models.PostalCodeZone], error)
	CreatePostalCode(ctx context.Context, req *models.PostalCodeInput) (*models.PostalCodeZone, error)
	UpdatePostalCode(ctx context.Context, id int64, req *models.PostalCodeInput) (*models.PostalCodeZone, error)
	DeletePostalCode(ctx context.Context, id int64) error
	ImportPostalCodes(ctx context.Context, req *models.BulkPostalCodesRequest) (*models.BulkResult, error)

	ListTiers(ctx context.Context) ([]models.WeightTier, error)
	GetTier(ctx context.Context, id int64) (*models.WeightTier, error)
	CreateTier(ctx context.Context, req *models.WeightTierInput) (*models.WeightTier, error)
	UpdateTier(ctx context.Context, id int64, req *models.WeightTierInput) (*models.WeightTier, error)
	DeleteTier(ctx context.Context, id int64) error

	ListMethods(ctx context.Context) ([]models.DeliveryMethod, error)
	GetMethod(ctx context.Context, id int64) (*models.DeliveryMethod, error)
	CreateMethod(ctx context.Context, req *models.DeliveryMethodInput) (*models.DeliveryMethod, error)
	UpdateMethod(ctx context.Context, id int64, req *models.DeliveryMethodInput) (*models.DeliveryMethod, error)
	DeleteMethod(ctx context.Context, id int64) error

	ListRates(ctx context.Context, f models.ShippingRateFilter) (pkg.Page[models.ShippingRate], error)
	GetRate(ctx context.Context, id int64) (*models.ShippingRate, error)
	CreateRate(ctx context.Context, req *models.ShippingRateInput) (*models.ShippingRate, error)
	UpdateRate(ctx context.Context, id int64, req *models.ShippingRateInput) (*models.ShippingRate, error)
	DeleteRate(ctx context.Context, id int64) error
	ImportRates(ctx context.Context, req *models.BulkRatesRequest) (*models.BulkResult, error)

	// Quote prices a cart per producer for every usable delivery method.
	Quote(ctx context.Context, req *models.QuoteRequest) (*models.Quote, error)
	// Close stops the lookup caches.
	Close()
}

// shippingTables is the lookup data a quote needs besides the zone rates.
type shippingTables struct {
	prefixes []prefixZone // longest prefix first
	tiers    []models.WeightTier
	methods  []models.DeliveryMethod
}

type prefixZone struct {
	prefix string
	zoneID int64
}

type shippingService struct {
	db           *sql.DB
	shippingRepo repository.ShippingRepository
	opts         ShippingOptions
	tables       *cache.TTLCache[string, *shippingTables]
	rates        *cache.TTLCache[int64, []models.ShippingRate]
	log          *zap.Logger
}

func NewShippingService(
	db *sql.DB,
	shippingRepo repository.ShippingRepository,
	opts ShippingOptions,
	log *zap.Logger,
) ShippingService {
	return &shippingService{
		db:           db,
		shippingRepo: shippingRepo,
		opts:         opts,
		tables:       cache.New[string, *shippingTables](shippingCacheTTL, shippingCacheSweep),
		rates:        cache.New[int64, []models.ShippingRate](shippingCacheTTL, shippingCacheSweep),
		log:          log,
	}
}

func (s *shippingService) Close() {
	s.tables.Close()
	s.rates.Close()
}

// invalidate drops cached lookups after any shipping write.
func (s *shippingService) invalidate() {
	s.tables.Clear()
	s.rates.Clear()
}

// ─── Zones ───

func (s *shippingService) ListZones(ctx context.Context, isActive *bool) ([]models.ShippingZone, error) {
	zones, err := s.shippingRepo.ListZones(ctx, isActive)
	return nonNil(zones), err
}

func (s *shippingService) GetZone(ctx context.Context, id int64) (*models.ShippingZone, error) {
	return s.shippingRepo.GetZone(ctx, id)
}

func (s *shippingService) CreateZone(ctx context.Context, req *models.ShippingZoneInput) (*models.ShippingZone, error) {
	if err := req.Validate(false); err != nil {
		return nil, err
	}
	z := &models.ShippingZone{Name: *req.Name, Description: req.Description.Value, IsActive: true}
	if req.IsActive != nil {
		z.IsActive = *req.IsActive
	}
	if err := s.shippingRepo.CreateZone(ctx, z); err != nil {
		return nil, err
	}
	s.invalidate()
	return z, nil
}

func (s *shippingService) UpdateZone(ctx context.Context, id int64, req *models.ShippingZoneInput) (*models.ShippingZone, error) {
	if err := req.Validate(true); err != nil {
		return nil, err
	}
	z, err := s.shippingRepo.GetZone(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		z.Name = *req.Name
	}
	applyOptional(&z.Description, req.Description)
	if req.IsActive != nil {
		z.IsActive = *req.IsActive
	}
	if err := s.shippingRepo.UpdateZone(ctx, z); err != nil {
		return nil, err
	}
	s.invalidate()
	return s.shippingRepo.GetZone(ctx, id)
}

func (s *shippingService) DeleteZone(ctx context.Context, id int64) error {
	if _, err := s.shippingRepo.GetZone(ctx, id); err != nil {
		return err
	}
	inUse, err := s.shippingRepo.ZoneInUse(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return fmt.Errorf("%w: zone is used by shipping rates or postal codes", pkg.ErrUnprocessable)
	}
	if err := s.shippingRepo.DeleteZone(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// ─── Postal codes ───

func (s *shippingService) ListPostalCodes(ctx context.Context, f models.PostalCodeFilter) (pkg.Page[models.PostalCodeZone], error) {
	codes, total, err := s.shippingRepo.ListPostalCodes(ctx, f)
	if err != nil {
		return pkg.Page[models.PostalCodeZone]{}, err
	}
	return pkg.NewPage(codes, total, f.Page), nil
}

func (s *shippingService) CreatePostalCode(ctx context.Context, req *models.PostalCodeInput) (*models.PostalCodeZone, error) {
	if err := req.Validate(false); err != nil {
		return nil, err
	}
	pc := &models.PostalCodeZone{PostalCodePrefix: *req.PostalCodePrefix, ZoneID: *req.ZoneID}
	if err := s.shippingRepo.CreatePostalCode(ctx, pc); err != nil {
		return nil, err
	}
	s.invalidate()
	return s.shippingRepo.GetPostalCode(ctx, pc.ID)
}

func (s *shippingService) UpdatePostalCode(ctx context.Context, id int64, req *models.PostalCodeInput) (*models.PostalCodeZone, error) {
	if err := req.Validate(true); err != nil {
		return nil, err
	}
	pc, err := s.shippingRepo.GetPostalCode(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.PostalCodePrefix != nil {
		pc.PostalCodePrefix = *req.PostalCodePrefix
	}
	if req.ZoneID != nil {
		pc.ZoneID = *req.ZoneID
	}
	if err := s.shippingRepo.UpdatePostalCode(ctx, pc); err != nil {
		return nil, err
	}
	s.invalidate()
	return s.shippingRepo.GetPostalCode(ctx, id)
}

func (s *shippingService) DeletePostalCode(ctx context.Context, id int64) error {
	if err := s.shippingRepo.DeletePostalCode(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// ImportPostalCodes upserts every prefix or none.
func (s *shippingService) ImportPostalCodes(ctx context.Context, req *models.BulkPostalCodesRequest) (*models.BulkResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result := &models.BulkResult{}
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		txRepo := repository.NewSQLiteShippingRepo(tx)
		for _, pc := range req.PostalCodes {
			inserted, err := txRepo.UpsertPostalCode(ctx, *pc.PostalCodePrefix, *pc.ZoneID)
			if err != nil {
				return err
			}
			if inserted {
				result.Imported++
			} else {
				result.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return result, nil
}

// ─── Weight tiers ───

func (s *shippingService) ListTiers(ctx context.Context) ([]models.WeightTier, error) {
	tiers, err := s.shippingRepo.ListTiers(ctx)
	return nonNil(tiers), err
}

func (s *shippingService) GetTier(ctx context.Context, id int64) (*models.WeightTier, error) {
	return s.shippingRepo.GetTier(ctx, id)
}

func (s *shippingService) CreateTier(ctx context.Context, req *models.WeightTierInput) (*models.WeightTier, error) {
	if err := req.Validate(false); err != nil {
		return nil, err
	}
	t := &models.WeightTier{
		MinWeightGrams: *req.MinWeightGrams,
		MaxWeightGrams: *req.MaxWeightGrams,
		Description:    req.Description.Value,
	}
	if err := s.shippingRepo.CreateTier(ctx, t); err != nil {
		return nil, err
	}
	s.invalidate()
	return t, nil
}

func (s *shippingService) UpdateTier(ctx context.Context, id int64, req *models.WeightTierInput) (*models.WeightTier, error) {
	if err := req.Validate(true); err != nil {
		return nil, err
	}
	t, err := s.shippingRepo.GetTier(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.MinWeightGrams != nil {
		t.MinWeightGrams = *req.MinWeightGrams
	}
	if req.MaxWeightGrams != nil {
		t.MaxWeightGrams = *req.MaxWeightGrams
	}
	applyOptional(&t.Description, req.Description)
	if t.MaxWeightGrams <= t.MinWeightGrams {
		return nil, pkg.ValidationErrors{"max_weight_grams": "must be greater than min_weight_grams"}
	}
	if err := s.shippingRepo.UpdateTier(ctx, t); err != nil {
		return nil, err
	}
	s.invalidate()
	return s.shippingRepo.GetTier(ctx, id)
}

func (s *shippingService) DeleteTier(ctx context.Context, id int64) error {
	if err := s.shippingRepo.DeleteTier(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// ─── Delivery methods ───

func (s *shippingService) ListMethods(ctx context.Context) ([]models.DeliveryMethod, error) {
	methods, err := s.shippingRepo.ListMethods(ctx, false)
	return nonNil(methods), err
}

func (s *shippingService) GetMethod(ctx context.Context, id int64) (*models.DeliveryMethod, error) {
	return s.shippingRepo.GetMethod(ctx, id)
}

func (s *shippingService) checkMethodCode(ctx context.Context, code string, exceptID int64) error {
	taken, err := s.shippingRepo.MethodCodeExists(ctx, code, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return pkg.ValidationErrors{"method_code": "has already been taken"}
	}
	return nil
}

func (s *shippingService) CreateMethod(ctx context.Context, req *models.DeliveryMethodInput) (*models.DeliveryMethod, error) {
	if err := req.Validate(false); err != nil {
		return nil, err
	}
	if err := s.checkMethodCode(ctx, *req.Code, 0); err != nil {
		return nil, err
	}

	m := &models.DeliveryMethod{
		Name:           *req.Name,
		Code:           *req.Code,
		Description:    req.Description.Value,
		IsActive:       true,
		MaxWeightGrams: req.MaxWeightGrams.Value,
	}
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}
	if req.SupportsCOD != nil {
		m.SupportsCOD = *req.SupportsCOD
	}
	if err := s.shippingRepo.CreateMethod(ctx, m); err != nil {
		return nil, err
	}
	s.invalidate()
	return m, nil
}

func (s *shippingService) UpdateMethod(ctx context.Context, id int64, req *models.DeliveryMethodInput) (*models.DeliveryMethod, error) {
	if err := req.Validate(true); err != nil {
		return nil, err
	}
	m, err := s.shippingRepo.GetMethod(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Code != nil && *req.Code != m.Code {
		if err := s.checkMethodCode(ctx, *req.Code, id); err != nil {
			return nil, err
		}
		m.Code = *req.Code
	}
	if req.Name != nil {
		m.Name = *req.Name
	}
	applyOptional(&m.Description, req.Description)
	applyOptional(&m.MaxWeightGrams, req.MaxWeightGrams)
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}
	if req.SupportsCOD != nil {
		m.SupportsCOD = *req.SupportsCOD
	}
	if err := s.shippingRepo.UpdateMethod(ctx, m); err != nil {
		return nil, err
	}
	s.invalidate()
	return s.shippingRepo.GetMethod(ctx, id)
}

func (s *shippingService) DeleteMethod(ctx context.Context, id int64) error {
	if err := s.shippingRepo.DeleteMethod(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// ─── Rates ───

func (s *shippingService) ListRates(ctx context.Context, f models.ShippingRateFilter) (pkg.Page[models.ShippingRate], error) {
	rates, total, err := s.shippingRepo.ListRates(ctx, f)
	if err != nil {
		return pkg.Page[models.ShippingRate]{}, err
	}
	return pkg.NewPage(rates, total, f.Page), nil
}

func (s *shippingService) GetRate(ctx context.Context, id int64) (*models.ShippingRate, error) {
	return s.shippingRepo.GetRate(ctx, id)
}

func newRate(req *models.ShippingRateInput) *models.ShippingRate {
	rate := &models.ShippingRate{
		ZoneID:                  *req.ZoneID,
		WeightTierID:            *req.WeightTierID,
		DeliveryMethodID:        *req.DeliveryMethodID,
		ProducerID:              req.ProducerID.Value,
		Price:                   *req.Price,
		MinProducersForDiscount: 2,
	}
	if req.MultiProducerDiscount != nil {
		rate.MultiProducerDiscount = *req.MultiProducerDiscount
	}
	if req.MinProducersForDiscount != nil {
		rate.MinProducersForDiscount = *req.MinProducersForDiscount
	}
	return rate
}

func (s *shippingService) checkRateUnique(ctx context.Context, rate *models.ShippingRate, exceptID int64) error {
	dup, err := s.shippingRepo.RateExists(ctx, rate, exceptID)
	if err != nil {
		return err
	}
	if dup {
		return fmt.Errorf("%w: a rate for this zone, weight tier and delivery method already exists", pkg.ErrUnprocessable)
	}
	return nil
}

func (s *shippingService) CreateRate(ctx context.Context, req *models.ShippingRateInput) (*models.ShippingRate, error) {
	if err := req.Validate(false); err != nil {
		return nil, err
	}
	rate := newRate(req)
	if err := s.checkRateUnique(ctx, rate, 0); err != nil {
		return nil, err
	}
	if err := s.shippingRepo.CreateRate(ctx, rate); err != nil {
		return nil, err
	}
	s.invalidate()
	return s.shippingRepo.GetRate(ctx, rate.ID)
}

func (s *shippingService) UpdateRate(ctx context.Context, id int64, req *models.ShippingRateInput) (*models.ShippingRate, error) {
	if err := req.Validate(true); err != nil {
		return nil, err
	}
	rate, err := s.shippingRepo.GetRate(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.ZoneID != nil {
		rate.ZoneID = *req.ZoneID
	}
	if req.WeightTierID != nil {
		rate.WeightTierID = *req.WeightTierID
	}
	if req.DeliveryMethodID != nil {
		rate.DeliveryMethodID = *req.DeliveryMethodID
	}
	applyOptional(&rate.ProducerID, req.ProducerID)
	if req.Price != nil {
		rate.Price = *req.Price
	}
	if req.MultiProducerDiscount != nil {
		rate.MultiProducerDiscount = *req.MultiProducerDiscount
	}
	if req.MinProducersForDiscount != nil {
		rate.MinProducersForDiscount = *req.MinProducersForDiscount
	}
	if err := s.checkRateUnique(ctx, rate, id); err != nil {
		return nil, err
	}
	if err := s.shippingRepo.UpdateRate(ctx, rate); err != nil {
		return nil, err
	}
	s.invalidate()
	return s.shippingRepo.GetRate(ctx, id)
}

func (s *shippingService) DeleteRate(ctx context.Context, id int64) error {
	if err := s.shippingRepo.DeleteRate(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *shippingService) ImportRates(ctx context.Context, req *models.BulkRatesRequest) (*models.BulkResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result, err := database.InTx(ctx, s.db, func(tx *sql.Tx) (*models.BulkResult, error) {
		txRepo := repository.NewSQLiteShippingRepo(tx)
		res := &models.BulkResult{}
		for i := range req.Rates {
			inserted, err := txRepo.UpsertRate(ctx, newRate(&req.Rates[i]))
			if err != nil {
				return nil, err
			}
			if inserted {
				res.Imported++
			} else {
				res.Updated++
			}
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return result, nil
}

// ─── Quote ───

func (s *shippingService) loadTables(ctx context.Context) (*shippingTables, error) {
	return s.tables.GetOrLoad(shippingTablesKey, func() (*shippingTables, error) {
		prefixes, err := s.shippingRepo.PostalPrefixes(ctx)
		if err != nil {
			return nil, err
		}
		tiers, err := s.shippingRepo.ListTiers(ctx)
		if err != nil {
			return nil, err
		}
		methods, err := s.shippingRepo.ListMethods(ctx, true)
		if err != nil {
			return nil, err
		}

		t := &shippingTables{tiers: tiers, methods: methods}
		for prefix, zone := range prefixes {
			t.prefixes = append(t.prefixes, prefixZone{prefix: prefix, zoneID: zone})
		}
		sort.Slice(t.prefixes, func(i, j int) bool {
			if len(t.prefixes[i].prefix) != len(t.prefixes[j].prefix) {
				return len(t.prefixes[i].prefix) > len(t.prefixes[j].prefix)
			}
			return t.prefixes[i].prefix < t.prefixes[j].prefix
		})
		sort.Slice(t.tiers, func(i, j int) bool { return t.tiers[i].MinWeightGrams < t.tiers[j].MinWeightGrams })
		return t, nil
	})
}

func (s *shippingService) zoneRates(ctx context.Context, zoneID int64) ([]models.ShippingRate, error) {
	return s.rates.GetOrLoad(zoneID, func() ([]models.ShippingRate, error) {
		return s.shippingRepo.RatesForZone(ctx, zoneID)
	})
}

func (s *shippingService) Quote(ctx context.Context, req *models.QuoteRequest) (*models.Quote, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tables, err := s.loadTables(ctx)
	if err != nil {
		return nil, err
	}
	if len(tables.tiers) == 0 {
		return nil, fmt.Errorf("%w: no weight tiers configured", pkg.ErrUnprocessable)
	}

	methods := tables.methods
	if req.MethodCode != "" {
		methods = nil
		for _, m := range tables.methods {
			if m.Code == req.MethodCode {
				methods = append(methods, m)
			}
		}
		if len(methods) == 0 {
			return nil, pkg.ValidationErrors{"delivery_method": "is invalid"}
		}
	}

	zoneID := s.zoneFor(tables, req.PostalCode)
	rates, err := s.zoneRates(ctx, zoneID)
	if err != nil {
		return nil, err
	}

	parcels := s.parcels(req.Items)
	quote := &models.Quote{ZoneID: zoneID, Producers: make([]models.ProducerQuote, 0, len(parcels))}
	for _, p := range parcels {
		tier := tierFor(tables.tiers, p.ChargeableWeightGrams)
		p.Options = []models.QuoteOption{}
		for _, m := range methods {
			if req.CashOnDelivery && !m.SupportsCOD {
				continue
			}
			if !m.Accepts(p.ChargeableWeightGrams) {
				continue
			}
			rate := pickRate(rates, tier.ID, m.ID, p.ProducerID)
			if rate == nil {
				s.log.Debug("no shipping rate",
					zap.Int64("zone_id", zoneID),
					zap.Int64("tier_id", tier.ID),
					zap.String("method", m.Code),
					zap.Int64("producer_id", p.ProducerID),
				)
				continue
			}
			p.Options = append(p.Options, s.option(m, rate, p.ChargeableWeightGrams, len(parcels)))
		}
		quote.Producers = append(quote.Producers, p)
	}

	if req.CashOnDelivery {
		quote.CODCost = s.opts.CODFee
	}
	return quote, nil
}

// zoneFor returns the zone of the longest matching prefix.
func (s *shippingService) zoneFor(t *shippingTables, postalCode string) int64 {
	if postalCode == "" {
		return s.opts.DefaultZoneID
	}
	for _, pz := range t.prefixes {
		if strings.HasPrefix(postalCode, pz.prefix) {
			return pz.zoneID
		}
	}
	return s.opts.DefaultZoneID
}

// parcels groups cart lines by producer, preserving first-seen order.
func (s *shippingService) parcels(items []models.QuoteItem) []models.ProducerQuote {
	var order []int64
	byProducer := make(map[int64]*models.ProducerQuote)
	for _, it := range items {
		p, ok := byProducer[it.ProducerID]
		if !ok {
			p = &models.ProducerQuote{ProducerID: it.ProducerID}
			byProducer[it.ProducerID] = p
			order = append(order, it.ProducerID)
		}
		p.ActualWeightGrams += it.WeightGrams * it.Quantity
		p.VolumetricWeightGrams += VolumetricGrams(it.LengthCM, it.WidthCM, it.HeightCM, s.opts.VolumetricDivisor) * it.Quantity
	}

	out := make([]models.ProducerQuote, 0, len(order))
	for _, id := range order {
		p := byProducer[id]
		p.ChargeableWeightGrams = max(p.ActualWeightGrams, p.VolumetricWeightGrams)
		out = append(out, *p)
	}
	return out
}

func (s *shippingService) option(m models.DeliveryMethod, rate *models.ShippingRate, grams, producers int) models.QuoteOption {
	cost := rate.Price
	if grams > extraKgThresholdG {
		extraKg := math.Ceil(float64(grams-extraKgThresholdG) / 1000)
		cost += extraKg * s.opts.ExtraKgRate
	}

	opt := models.QuoteOption{
		MethodID:    m.ID,
		MethodCode:  m.Code,
		Name:        m.Name,
		SupportsCOD: m.SupportsCOD,
	}
	if rate.MultiProducerDiscount > 0 && producers >= rate.MinProducersForDiscount {
		amount := roundCents(cost * rate.MultiProducerDiscount / 100)
		cost -= amount
		opt.DiscountApplied = &models.DiscountApplied{Percentage: rate.MultiProducerDiscount, Amount: amount}
	}
	opt.Cost = roundCents(cost)
	return opt
}

// VolumetricGrams converts parcel dimensions to a weight using divisor cm³
// per kg. Missing dimensions yield 0.
func VolumetricGrams(lengthCM, widthCM, heightCM, divisor float64) int {
	if lengthCM <= 0 || widthCM <= 0 || heightCM <= 0 || divisor <= 0 {
		return 0
	}
	return int(math.Round(lengthCM * widthCM * heightCM / divisor * 1000))
}

// tierFor picks the tier containing grams. Weights outside every tier use
// the first or last tier. tiers must be sorted by minimum weight.
func tierFor(tiers []models.WeightTier, grams int) models.WeightTier {
	for _, t := range tiers {
		if t.Contains(grams) {
			return t
		}
	}
	if grams < tiers[0].MinWeightGrams {
		return tiers[0]
	}
	return tiers[len(tiers)-1]
}

// pickRate prefers the producer's own rate over the default one.
func pickRate(rates []models.ShippingRate, tierID, methodID, producerID int64) *models.ShippingRate {
	var fallback *models.ShippingRate
	for i := range rates {
		r := &rates[i]
		if r.WeightTierID != tierID || r.DeliveryMethodID != methodID {
			continue
		}
		if r.ProducerID == nil {
			fallback = r
		} else if *r.ProducerID == producerID {
			return r
		}
	}
	return fallback
}

func roundCents(f float64) float64 {
	return math.Round(f*100) / 100
}
