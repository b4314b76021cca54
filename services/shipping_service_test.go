package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dixis/dixis/database/dbtest"
	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/repository"
)

// Seeded by the shipping migration.
const (
	zoneAttica   = 1
	zoneMainland = 3
	tierUpTo2kg  = 1
	tierUpTo5kg  = 2
	tierUpTo10kg = 3
	methodHome   = 1
	methodPickup = 2
)

type shippingFixture struct {
	svc       ShippingService
	producerA int64
	producerB int64
}

func newShippingFixture(t *testing.T) shippingFixture {
	t.Helper()
	db := dbtest.New(t)
	svc := NewShippingService(db.Conn, repository.NewSQLiteShippingRepo(db.Conn), ShippingOptions{
		DefaultZoneID:     zoneMainland,
		VolumetricDivisor: 5000,
		ExtraKgRate:       1.5,
		CODFee:            2,
	}, zap.NewNop())
	t.Cleanup(svc.Close)

	f := shippingFixture{
		svc:       svc,
		producerA: insertProducer(t, db.Conn, "Producer A"),
		producerB: insertProducer(t, db.Conn, "Producer B"),
	}

	ctx := context.Background()
	_, err := svc.CreatePostalCode(ctx, &models.PostalCodeInput{PostalCodePrefix: ptr("10"), ZoneID: ptr(int64(zoneAttica))})
	require.NoError(t, err)

	rates := []models.ShippingRateInput{
		{ZoneID: ptr(int64(zoneAttica)), WeightTierID: ptr(int64(tierUpTo2kg)), DeliveryMethodID: ptr(int64(methodHome)), Price: ptr(5.0)},
		{ZoneID: ptr(int64(zoneAttica)), WeightTierID: ptr(int64(tierUpTo2kg)), DeliveryMethodID: ptr(int64(methodHome)), Price: ptr(4.0), ProducerID: models.Some(f.producerA)},
		{ZoneID: ptr(int64(zoneAttica)), WeightTierID: ptr(int64(tierUpTo2kg)), DeliveryMethodID: ptr(int64(methodPickup)), Price: ptr(3.0), MultiProducerDiscount: ptr(10.0)},
		{ZoneID: ptr(int64(zoneAttica)), WeightTierID: ptr(int64(tierUpTo5kg)), DeliveryMethodID: ptr(int64(methodHome)), Price: ptr(7.0)},
		{ZoneID: ptr(int64(zoneAttica)), WeightTierID: ptr(int64(tierUpTo10kg)), DeliveryMethodID: ptr(int64(methodHome)), Price: ptr(12.0)},
	}
	res, err := svc.ImportRates(ctx, &models.BulkRatesRequest{Rates: rates})
	require.NoError(t, err)
	require.Equal(t, len(rates), res.Imported)
	return f
}

func optionCodes(opts []models.QuoteOption) []string {
	codes := make([]string, len(opts))
	for i, o := range opts {
		codes[i] = o.MethodCode
	}
	return codes
}

func TestQuotePerProducer(t *testing.T) {
	f := newShippingFixture(t)

	quote, err := f.svc.Quote(context.Background(), &models.QuoteRequest{
		PostalCode: "104 31",
		Items: []models.QuoteItem{
			{ProducerID: f.producerA, WeightGrams: 1500, Quantity: 1},
			{ProducerID: f.producerB, WeightGrams: 800, Quantity: 2, LengthCM: 30, WidthCM: 20, HeightCM: 10},
		},
	})
	require.NoError(t, err)
	assert.EqualValues(t, zoneAttica, quote.ZoneID)
	assert.Zero(t, quote.CODCost)
	require.Len(t, quote.Producers, 2)

	a := quote.Producers[0]
	assert.Equal(t, f.producerA, a.ProducerID)
	assert.Equal(t, 1500, a.ChargeableWeightGrams)
	require.Equal(t, []string{"HOME", "PICKUP"}, optionCodes(a.Options))
	assert.InDelta(t, 4.0, a.Options[0].Cost, 0.001, "producer rate wins over the default")
	assert.Nil(t, a.Options[0].DiscountApplied)
	assert.InDelta(t, 2.7, a.Options[1].Cost, 0.001)
	require.NotNil(t, a.Options[1].DiscountApplied)
	assert.InDelta(t, 0.3, a.Options[1].DiscountApplied.Amount, 0.001)

	b := quote.Producers[1]
	assert.Equal(t, 1600, b.ActualWeightGrams)
	assert.Equal(t, 2400, b.VolumetricWeightGrams)
	assert.Equal(t, 2400, b.ChargeableWeightGrams)
	require.Equal(t, []string{"HOME"}, optionCodes(b.Options))
	assert.InDelta(t, 7.0, b.Options[0].Cost, 0.001)
}

func TestQuoteHeavyParcelUsesLastTierAndExtraKg(t *testing.T) {
	f := newShippingFixture(t)

	quote, err := f.svc.Quote(context.Background(), &models.QuoteRequest{
		PostalCode: "10558",
		Items:      []models.QuoteItem{{ProducerID: f.producerB, WeightGrams: 12000, Quantity: 1}},
	})
	require.NoError(t, err)
	opts := quote.Producers[0].Options
	require.Equal(t, []string{"HOME"}, optionCodes(opts))
	assert.InDelta(t, 15.0, opts[0].Cost, 0.001)
}

func TestQuoteFiltersAndFallbacks(t *testing.T) {
	f := newShippingFixture(t)
	ctx := context.Background()
	items := []models.QuoteItem{{ProducerID: f.producerB, WeightGrams: 500, Quantity: 1}}

	quote, err := f.svc.Quote(ctx, &models.QuoteRequest{PostalCode: "99999", Items: items})
	require.NoError(t, err)
	assert.EqualValues(t, zoneMainland, quote.ZoneID)
	assert.Empty(t, quote.Producers[0].Options)
	assert.NotNil(t, quote.Producers[0].Options)

	quote, err = f.svc.Quote(ctx, &models.QuoteRequest{PostalCode: "10431", MethodCode: "locker", CashOnDelivery: true, Items: items})
	require.NoError(t, err)
	assert.Empty(t, quote.Producers[0].Options)
	assert.InDelta(t, 2.0, quote.CODCost, 0.001)

	_, err = f.svc.Quote(ctx, &models.QuoteRequest{MethodCode: "DRONE", Items: items})
	assert.Contains(t, validationFields(t, err), "delivery_method")

	_, err = f.svc.Quote(ctx, &models.QuoteRequest{})
	assert.Contains(t, validationFields(t, err), "items")
}

func TestQuoteRejectsOversizedItems(t *testing.T) {
	f := newShippingFixture(t)
	ctx := context.Background()

	_, err := f.svc.Quote(ctx, &models.QuoteRequest{Items: []models.QuoteItem{
		{ProducerID: f.producerB, WeightGrams: 1 << 62, Quantity: 4},
		{ProducerID: f.producerB, WeightGrams: 500, Quantity: models.MaxQuoteQuantity + 1},
		{ProducerID: f.producerB, WeightGrams: 500, Quantity: 1, LengthCM: 1e300, WidthCM: 1e300, HeightCM: 10},
	}})
	fields := validationFields(t, err)
	assert.Contains(t, fields, "items.0.weight_grams")
	assert.Contains(t, fields, "items.1.quantity")
	assert.Contains(t, fields, "items.2.dimensions")

	// The largest accepted line still yields a chargeable weight above the last tier.
	quote, err := f.svc.Quote(ctx, &models.QuoteRequest{PostalCode: "10431", Items: []models.QuoteItem{{
		ProducerID: f.producerB, WeightGrams: models.MaxQuoteItemGrams, Quantity: models.MaxQuoteQuantity,
		LengthCM: models.MaxQuoteDimensionCM, WidthCM: models.MaxQuoteDimensionCM, HeightCM: models.MaxQuoteDimensionCM,
	}}})
	require.NoError(t, err)
	assert.Greater(t, quote.Producers[0].ChargeableWeightGrams, models.MaxQuoteItemGrams)
}

func TestQuoteSeesNewRatesAfterWrite(t *testing.T) {
	f := newShippingFixture(t)
	ctx := context.Background()
	req := func() *models.QuoteRequest {
		return &models.QuoteRequest{PostalCode: "10431", Items: []models.QuoteItem{{ProducerID: f.producerB, WeightGrams: 3000, Quantity: 1}}}
	}

	quote, err := f.svc.Quote(ctx, req())
	require.NoError(t, err)
	require.Equal(t, []string{"HOME"}, optionCodes(quote.Producers[0].Options))

	_, err = f.svc.CreateRate(ctx, &models.ShippingRateInput{
		ZoneID: ptr(int64(zoneAttica)), WeightTierID: ptr(int64(tierUpTo5kg)), DeliveryMethodID: ptr(int64(methodPickup)), Price: ptr(4.5),
	})
	require.NoError(t, err)

	quote, err = f.svc.Quote(ctx, req())
	require.NoError(t, err)
	assert.Equal(t, []string{"HOME", "PICKUP"}, optionCodes(quote.Producers[0].Options))
}

func TestCreateRateRejectsDuplicate(t *testing.T) {
	f := newShippingFixture(t)

	_, err := f.svc.CreateRate(context.Background(), &models.ShippingRateInput{
		ZoneID: ptr(int64(zoneAttica)), WeightTierID: ptr(int64(tierUpTo2kg)), DeliveryMethodID: ptr(int64(methodHome)), Price: ptr(9.0),
	})
	assert.ErrorIs(t, err, pkg.ErrUnprocessable)
}

func TestVolumetricGrams(t *testing.T) {
	assert.Equal(t, 1200, VolumetricGrams(30, 20, 10, 5000))
	assert.Zero(t, VolumetricGrams(0, 20, 10, 5000))
	assert.Zero(t, VolumetricGrams(30, 20, 10, 0))
}

func TestTierFor(t *testing.T) {
	tiers := []models.WeightTier{
		{ID: 1, MinWeightGrams: 100, MaxWeightGrams: 2000},
		{ID: 2, MinWeightGrams: 2001, MaxWeightGrams: 5000},
	}
	assert.EqualValues(t, 1, tierFor(tiers, 50).ID)
	assert.EqualValues(t, 1, tierFor(tiers, 2000).ID)
	assert.EqualValues(t, 2, tierFor(tiers, 2001).ID)
	assert.EqualValues(t, 2, tierFor(tiers, 9000).ID)
}
