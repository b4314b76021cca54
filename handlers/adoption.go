package handlers

import (
	"net/http"
	"time"

	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/services"
)

type AdoptionHandler struct {
	adoptionService services.AdoptionService
	loc             *time.Location
}

func NewAdoptionHandler(adoptionService services.AdoptionService, loc *time.Location) *AdoptionHandler {
	return &AdoptionHandler{adoptionService: adoptionService, loc: loc}
}

// List godoc
// GET /api/admin/adoptions
func (h *AdoptionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r, h.loc)
	f := models.AdoptionFilter{
		UserID:          q.int64Ptr("user_id"),
		AdoptableItemID: q.int64Ptr("adoptable_item_id"),
		ProducerID:      q.int64Ptr("producer_id"),
		Status:          q.oneOf("status", models.AdoptionStatuses...),
		PaymentStatus:   q.oneOf("payment_status", models.PaymentStatuses...),
		StartFrom:       q.date("start_date"),
		StartTo:         q.dateEnd("end_date"),
		Page:            q.page(pkg.DefaultPerPage),
	}
	if err := q.err(); err != nil {
		pkg.Error(w, err)
		return
	}

	page, err := h.adoptionService.List(r.Context(), f)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, page)
}

// Get godoc
// GET /api/admin/adoptions/{id}
func (h *AdoptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	adoption, err := h.adoptionService.Get(r.Context(), id)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, adoption)
}

// Update godoc
// PUT /api/admin/adoptions/{id}
func (h *AdoptionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	var req models.UpdateAdoptionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	adoption, err := h.adoptionService.Update(r.Context(), id, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, adoption)
}

// Delete godoc
// DELETE /api/admin/adoptions/{id}
func (h *AdoptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	if err := h.adoptionService.Delete(r.Context(), id); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "adoption deleted"})
}

// Cancel godoc
// POST /api/admin/adoptions/{id}/cancel
func (h *AdoptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	adoption, err := h.adoptionService.Cancel(r.Context(), id)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, adoption)
}

// Renew godoc
// POST /api/admin/adoptions/{id}/renew
func (h *AdoptionHandler) Renew(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	var req models.RenewAdoptionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	adoption, err := h.adoptionService.Renew(r.Context(), id, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, adoption)
}

// Stats godoc
// GET /api/admin/adoptions/stats
func (h *AdoptionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adoptionService.Stats(r.Context())
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, stats)
}
