package handlers

import (
	"net/http"

	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/services"
)

// ShippingHandler serves zones, postal code prefixes, weight tiers,
// delivery methods and rates, plus the public quote endpoint.
type ShippingHandler struct {
	shippingService services.ShippingService
}

func NewShippingHandler(shippingService services.ShippingService) *ShippingHandler {
	return &ShippingHandler{shippingService: shippingService}
}

// GET /api/admin/shipping/zones
func (h *ShippingHandler) ListZones(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r, nil)
	isActive := q.boolPtr("is_active")
	if err := q.err(); err != nil {
		pkg.Error(w, err)
		return
	}

	zones, err := h.shippingService.ListZones(r.Context(), isActive)
	respond(w, http.StatusOK, zones, err)
}

// GET /api/admin/shipping/zones/{id}
func (h *ShippingHandler) GetZone(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}
	zone, err := h.shippingService.GetZone(r.Context(), id)
	respond(w, http.StatusOK, zone, err)
}

// POST /api/admin/shipping/zones
func (h *ShippingHandler) CreateZone(w http.ResponseWriter, r *http.Request) {
	var req models.ShippingZoneInput
	if !decodeJSON(w, r, &req) {
		return
	}
	zone, err := h.shippingService.CreateZone(r.Context(), &req)
	respond(w, http.StatusCreated, zone, err)
}

// PUT /api/admin/shipping/zones/{id}
func (h *ShippingHandler) UpdateZone(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}
	var req models.ShippingZoneInput
	if !decodeJSON(w, r, &req) {
		return
	}
	zone, err := h.shippingService.UpdateZone(r.Context(), id, &req)
	respond(w, http.StatusOK, zone, err)
}

// DELETE /api/admin/shipping/zones/{id}
func (h *ShippingHandler) DeleteZone(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}
	deleted(w, "shipping zone", h.shippingService.DeleteZone(r.Context(), id))
}

// GET /api/admin/shipping/postal-codes
func (h *ShippingHandler) ListPostalCodes(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r, nil)
	f := models.PostalCodeFilter{
		ZoneID: q.int64Ptr("zone_id"),
		Search: q.str("search"),
		Page:   q.page(50),
	}
	if err := q.err(); err != nil {
		pkg.Error(w, err)
		return
	}

	page, err := h.shippingService.ListPostalCodes(r.Context(), f)
	respond(w, http.StatusOK, page, err)
}

// POST /api/admin/shipping/postal-codes
func (h *ShippingHandler) CreatePostalCode(w http.ResponseWriter, r *http.Request) {
	var req models.PostalCodeInput
	if !decodeJSON(w, r, &req) {
		return
	}
	pc, err := h.shippingService.CreatePostalCode(r.Context(), &req)
	respond(w, http.StatusCreated, pc, err)
}

// PUT /api/admin/shipping/postal-codes/{id}
func (h *ShippingHandler) UpdatePostalCode(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}
	var req models.PostalCodeInput
	if !decodeJSON(w, r, &req) {
		return
	}
	pc, err := h.shippingService.UpdatePostalCode(r.Context(), id, &req)
	respond(w, http.StatusOK, pc, err)
}

// DELETE /api/admin/shipping/postal-codes/{id}
func (h *ShippingHandler) DeletePostalCode(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}
	deleted(w, "postal code", h.shippingService.DeletePostalCode(r.Context(), id))
}

// POST /api/admin/shipping/postal-codes/import
func (h *ShippingHandler) ImportPostalCodes(w http.ResponseWriter, r *http.Request) {
	var req models.BulkPostalCodesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.shippingService.ImportPostalCodes(r.Context(), &req)
	respond(w, http.StatusOK, res, err)
}

// GET /api/admin/shipping/weight-tiers
func (h *ShippingHandler) ListTiers(w http.ResponseWriter, r *http.Request) {
	tiers, err := h.shippingService.ListTiers(r.Context())
	respond(w, http.StatusOK, tiers, err)
}

// GET /api/admin/shipping/weight-tiers/{id}
func (h *ShippingHandler) GetTier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}
	tier, err := h.shippingService.GetTier(r.Context(), id)
	respond(w, http.StatusOK, tier, err)
}

// POST /api/admin/shipping/weight-tiers
func (h *ShippingHandler) CreateTier(w http.ResponseWriter, r *http.Request) {
	var req models.WeightTierInput
	if !decodeJSON(w, r, &req) {
		return
	}
	tier, err := h.shippingService.CreateTier(r.Context(), &req)
	respond(w, http.StatusCreated, tier, err)
}

// PUT /api/admin/shipping/weight-tiers/{id}
func (h *ShippingHandler) UpdateTier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}
	var req models.WeightTierInput
	if !decodeJSON(w, r, &req) {
		return
	}
	tier, err := h.shippingService.UpdateTier(r.Context(), id, &req)
	respond(w, http.StatusOK, tier, err)
}

// DELETE /api/admin/shipping/weight-tiers/{id}
func (h *ShippingHandler) DeleteTier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}
	deleted(w, "weight tier", h.shippingService.DeleteTier(r.Context(), id))
}

// GET /api/admin/shipping/delivery-methods
func (h *ShippingHandler) ListMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.shippingService.ListMethods(r.Context())
	respond(w, http.StatusOK, methods, err)
}

// GET /api/admin/shipping/delivery-methods/{id}
func (h *ShippingHandler) GetMethod(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}
	method, err := h.shippingService.GetMethod(r.Context(), id)
	respond(w, http.StatusOK, method, err)
}

// POST /api/admin/shipping/delivery-methods
func (h *ShippingHandler) CreateMethod(w http.ResponseWriter, r *http.Request) {
	var req models.DeliveryMethodInput
	if !decodeJSON(w, r, &req) {
		return
	}
	method, err := h.shippingService.CreateMethod(r.Context(), &req)
	respond(w, http.StatusCreated, method, err)
}

// PUT /api/admin/shipping/delivery-methods/{id}
func (h *ShippingHandler) UpdateMethod(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}
	var req models.DeliveryMethodInput
	if !decodeJSON(w, r, &req) {
		return
	}
	method, err := h.shippingService.UpdateMethod(r.Context(), id, &req)
	respond(w, http.StatusOK, method, err)
}

// DELETE /api/admin/shipping/delivery-methods/{id}
func (h *ShippingHandler) DeleteMethod(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}
	deleted(w, "delivery method", h.shippingService.DeleteMethod(r.Context(), id))
}

// GET /api/admin/shipping/rates
func (h *ShippingHandler) ListRates(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r, nil)
	f := models.ShippingRateFilter{
		ZoneID:           q.int64Ptr("zone_id"),
		WeightTierID:     q.int64Ptr("weight_tier_id"),
		DeliveryMethodID: q.int64Ptr("delivery_method_id"),
		Page:             q.page(50),
	}
	if err := q.err(); err != nil {
		pkg.Error(w, err)
		return
	}

	page, err := h.shippingService.ListRates(r.Context(), f)
	respond(w, http.StatusOK, page, err)
}

// GET /api/admin/shipping/rates/{id}
func (h *ShippingHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}
	rate, err := h.shippingService.GetRate(r.Context(), id)
	respond(w, http.StatusOK, rate, err)
}

// POST /api/admin/shipping/rates
func (h *ShippingHandler) CreateRate(w http.ResponseWriter, r *http.Request) {
	var req models.ShippingRateInput
	if !decodeJSON(w, r, &req) {
		return
	}
	rate, err := h.shippingService.CreateRate(r.Context(), &req)
	respond(w, http.StatusCreated, rate, err)
}

// PUT /api/admin/shipping/rates/{id}
func (h *ShippingHandler) UpdateRate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}
	var req models.ShippingRateInput
	if !decodeJSON(w, r, &req) {
		return
	}
	rate, err := h.shippingService.UpdateRate(r.Context(), id, &req)
	respond(w, http.StatusOK, rate, err)
}

// DELETE /api/admin/shipping/rates/{id}
func (h *ShippingHandler) DeleteRate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}
	deleted(w, "shipping rate", h.shippingService.DeleteRate(r.Context(), id))
}

// POST /api/admin/shipping/rates/import
func (h *ShippingHandler) ImportRates(w http.ResponseWriter, r *http.Request) {
	var req models.BulkRatesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.shippingService.ImportRates(r.Context(), &req)
	respond(w, http.StatusOK, res, err)
}

// Quote godoc
// POST /api/shipping/quote
func (h *ShippingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req models.QuoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	quote, err := h.shippingService.Quote(r.Context(), &req)
	respond(w, http.StatusOK, quote, err)
}
