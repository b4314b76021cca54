package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dixis/dixis/pkg"
)

type ShippingZone struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ShippingZoneInput struct {
	Name        *string          `json:"name"`
	Description Optional[string] `json:"description"`
	IsActive    *bool            `json:"is_active"`
}

func (r *ShippingZoneInput) Validate(partial bool) error {
	trimPtr(r.Name)
	v := pkg.ValidationErrors{}
	if r.Name == nil {
		if !partial {
			v.Add("name", "is required")
		}
	} else if required(v, "name", *r.Name) {
		maxLen(v, "name", *r.Name, 255)
	}
	return v.Err()
}

type PostalCodeZone struct {
	ID               int64     `json:"id"`
	PostalCodePrefix string    `json:"postal_code_prefix"`
	ZoneID           int64     `json:"zone_id"`
	ZoneName         string    `json:"zone_name"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type PostalCodeFilter struct {
	ZoneID *int64
	Search string
	Page   pkg.PageParams
}

type PostalCodeInput struct {
	PostalCodePrefix *string `json:"postal_code_prefix"`
	ZoneID           *int64  `json:"zone_id"`
}

func (r *PostalCodeInput) Validate(partial bool) error {
	trimPtr(r.PostalCodePrefix)
	v := pkg.ValidationErrors{}
	if r.PostalCodePrefix == nil {
		if !partial {
			v.Add("postal_code_prefix", "is required")
		}
	} else if required(v, "postal_code_prefix", *r.PostalCodePrefix) {
		maxLen(v, "postal_code_prefix", *r.PostalCodePrefix, 10)
	}
	if r.ZoneID == nil {
		if !partial {
			v.Add("zone_id", "is required")
		}
	} else if *r.ZoneID <= 0 {
		v.Add("zone_id", "is invalid")
	}
	return v.Err()
}

type BulkPostalCodesRequest struct {
	PostalCodes []PostalCodeInput `json:"postal_codes"`
}

func (r *BulkPostalCodesRequest) Validate() error {
	v := pkg.ValidationErrors{}
	if len(r.PostalCodes) == 0 {
		v.Add("postal_codes", "is required")
	}
	for i := range r.PostalCodes {
		if err := r.PostalCodes[i].Validate(false); err != nil {
			for k, msg := range err.(pkg.ValidationErrors) {
				v.Add(indexed("postal_codes", i, k), msg)
			}
		}
	}
	return v.Err()
}

type WeightTier struct {
	ID             int64     `json:"id"`
	MinWeightGrams int       `json:"min_weight_grams"`
	MaxWeightGrams int       `json:"max_weight_grams"`
	Description    *string   `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Contains reports whether grams falls inside the tier, bounds inclusive.
func (t WeightTier) Contains(grams int) bool {
	return grams >= t.MinWeightGrams && grams <= t.MaxWeightGrams
}

type WeightTierInput struct {
	MinWeightGrams *int             `json:"min_weight_grams"`
	MaxWeightGrams *int             `json:"max_weight_grams"`
	Description    Optional[string] `json:"description"`
}

func (r *WeightTierInput) Validate(partial bool) error {
	v := pkg.ValidationErrors{}
	if r.MinWeightGrams == nil {
		if !partial {
			v.Add("min_weight_grams", "is required")
		}
	} else if *r.MinWeightGrams < 0 {
		v.Add("min_weight_grams", "must be at least 0")
	}
	if r.MaxWeightGrams == nil {
		if !partial {
			v.Add("max_weight_grams", "is required")
		}
	} else if r.MinWeightGrams != nil && *r.MaxWeightGrams <= *r.MinWeightGrams {
		v.Add("max_weight_grams", "must be greater than min_weight_grams")
	}
	return v.Err()
}

type DeliveryMethod struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Code           string    `json:"method_code"`
	Description    *string   `json:"description"`
	IsActive       bool      `json:"is_active"`
	SupportsCOD    bool      `json:"supports_cod"`
	MaxWeightGrams *int      `json:"max_weight_grams"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Accepts reports whether the method can carry grams.
func (m DeliveryMethod) Accepts(grams int) bool {
	return m.MaxWeightGrams == nil || grams <= *m.MaxWeightGrams
}

type DeliveryMethodInput struct {
	Name           *string          `json:"name"`
	Code           *string          `json:"method_code"`
	Description    Optional[string] `json:"description"`
	IsActive       *bool            `json:"is_active"`
	SupportsCOD    *bool            `json:"supports_cod"`
	MaxWeightGrams Optional[int]    `json:"max_weight_grams"`
}

func (r *DeliveryMethodInput) Validate(partial bool) error {
	trimPtr(r.Name)
	if r.Code != nil {
		*r.Code = strings.ToUpper(strings.TrimSpace(*r.Code))
	}

	v := pkg.ValidationErrors{}
	if r.Name == nil {
		if !partial {
			v.Add("name", "is required")
		}
	} else if required(v, "name", *r.Name) {
		maxLen(v, "name", *r.Name, 255)
	}
	if r.Code == nil {
		if !partial {
			v.Add("method_code", "is required")
		}
	} else if required(v, "method_code", *r.Code) {
		maxLen(v, "method_code", *r.Code, 50)
	}
	if r.MaxWeightGrams.Value != nil && *r.MaxWeightGrams.Value <= 0 {
		v.Add("max_weight_grams", "must be greater than 0")
	}
	return v.Err()
}

type ShippingRate struct {
	ID                      int64     `json:"id"`
	ZoneID                  int64     `json:"zone_id"`
	WeightTierID            int64     `json:"weight_tier_id"`
	DeliveryMethodID        int64     `json:"delivery_method_id"`
	ProducerID              *int64    `json:"producer_id"`
	Price                   float64   `json:"price"`
	MultiProducerDiscount   float64   `json:"multi_producer_discount"`
	MinProducersForDiscount int       `json:"min_producers_for_discount"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`

	ZoneName   string `json:"zone_name,omitempty"`
	MethodCode string `json:"method_code,omitempty"`
}

type ShippingRateFilter struct {
	ZoneID           *int64
	WeightTierID     *int64
	DeliveryMethodID *int64
	Page             pkg.PageParams
}

type ShippingRateInput struct {
	ZoneID                  *int64          `json:"zone_id"`
	WeightTierID            *int64          `json:"weight_tier_id"`
	DeliveryMethodID        *int64          `json:"delivery_method_id"`
	ProducerID              Optional[int64] `json:"producer_id"`
	Price                   *float64        `json:"price"`
	MultiProducerDiscount   *float64        `json:"multi_producer_discount"`
	MinProducersForDiscount *int            `json:"min_producers_for_discount"`
}

func (r *ShippingRateInput) Validate(partial bool) error {
	v := pkg.ValidationErrors{}
	ids := []struct {
		field string
		p     *int64
	}{
		{"zone_id", r.ZoneID},
		{"weight_tier_id", r.WeightTierID},
		{"delivery_method_id", r.DeliveryMethodID},
	}
	for _, id := range ids {
		if id.p == nil {
			if !partial {
				v.Add(id.field, "is required")
			}
		} else if *id.p <= 0 {
			v.Add(id.field, "is invalid")
		}
	}
	if r.Price == nil {
		if !partial {
			v.Add("price", "is required")
		}
	} else {
		nonNegative(v, "price", *r.Price)
	}
	if r.MultiProducerDiscount != nil {
		between(v, "multi_producer_discount", *r.MultiProducerDiscount, 0, 100)
	}
	if r.MinProducersForDiscount != nil && *r.MinProducersForDiscount < 2 {
		v.Add("min_producers_for_discount", "must be at least 2")
	}
	return v.Err()
}

type BulkRatesRequest struct {
	Rates []ShippingRateInput `json:"rates"`
}

func (r *BulkRatesRequest) Validate() error {
	v := pkg.ValidationErrors{}
	if len(r.Rates) == 0 {
		v.Add("rates", "is required")
	}
	for i := range r.Rates {
		if err := r.Rates[i].Validate(false); err != nil {
			for k, msg := range err.(pkg.ValidationErrors) {
				v.Add(indexed("rates", i, k), msg)
			}
		}
	}
	return v.Err()
}

// BulkResult counts inserted and updated rows of a bulk import.
type BulkResult struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
}

// QuoteItem is one cart line for a shipping quote.
type QuoteItem struct {
	ProducerID  int64   `json:"producer_id"`
	WeightGrams int     `json:"weight_grams"`
	LengthCM    float64 `json:"length_cm"`
	WidthCM     float64 `json:"width_cm"`
	HeightCM    float64 `json:"height_cm"`
	Quantity    int     `json:"quantity"`
}

// Quote input limits keep weight arithmetic inside int range.
const (
	MaxQuoteItems       = 200
	MaxQuoteItemGrams   = 1_000_000
	MaxQuoteQuantity    = 10_000
	MaxQuoteDimensionCM = 1_000
)

type QuoteRequest struct {
	PostalCode     string      `json:"postal_code"`
	MethodCode     string      `json:"delivery_method"`
	CashOnDelivery bool        `json:"cash_on_delivery"`
	Items          []QuoteItem `json:"items"`
}

func (r *QuoteRequest) Validate() error {
	r.PostalCode = strings.ReplaceAll(strings.TrimSpace(r.PostalCode), " ", "")
	r.MethodCode = strings.ToUpper(strings.TrimSpace(r.MethodCode))

	v := pkg.ValidationErrors{}
	maxLen(v, "postal_code", r.PostalCode, 10)
	switch {
	case len(r.Items) == 0:
		v.Add("items", "is required")
	case len(r.Items) > MaxQuoteItems:
		v.Add("items", fmt.Sprintf("may not have more than %d items", MaxQuoteItems))
	}
	for i, it := range r.Items {
		if it.ProducerID <= 0 {
			v.Add(indexed("items", i, "producer_id"), "is required")
		}
		if it.Quantity < 1 || it.Quantity > MaxQuoteQuantity {
			v.Add(indexed("items", i, "quantity"), fmt.Sprintf("must be between 1 and %d", MaxQuoteQuantity))
		}
		if it.WeightGrams < 0 || it.WeightGrams > MaxQuoteItemGrams {
			v.Add(indexed("items", i, "weight_grams"), fmt.Sprintf("must be between 0 and %d", MaxQuoteItemGrams))
		}
		for _, d := range []float64{it.LengthCM, it.WidthCM, it.HeightCM} {
			if !(d >= 0 && d <= MaxQuoteDimensionCM) {
				v.Add(indexed("items", i, "dimensions"), fmt.Sprintf("must be between 0 and %d cm", MaxQuoteDimensionCM))
				break
			}
		}
	}
	return v.Err()
}

type DiscountApplied struct {
	Percentage float64 `json:"percentage"`
	Amount     float64 `json:"amount"`
}

type QuoteOption struct {
	MethodID        int64            `json:"method_id"`
	MethodCode      string           `json:"method_code"`
	Name            string           `json:"name"`
	Cost            float64          `json:"cost"`
	SupportsCOD     bool             `json:"supports_cod"`
	DiscountApplied *DiscountApplied `json:"discount_applied,omitempty"`
}

type ProducerQuote struct {
	ProducerID            int64         `json:"producer_id"`
	ActualWeightGrams     int           `json:"actual_weight_grams"`
	VolumetricWeightGrams int           `json:"volumetric_weight_grams"`
	ChargeableWeightGrams int           `json:"chargeable_weight_grams"`
	Options               []QuoteOption `json:"options"`
}

type Quote struct {
	ZoneID    int64           `json:"zone_id"`
	Producers []ProducerQuote `json:"producers"`
	CODCost   float64         `json:"cod_cost"`
}
