package handlers

import (
	"net/http"

	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/services"
)

type BusinessHandler struct {
	businessService services.BusinessService
}

func NewBusinessHandler(businessService services.BusinessService) *BusinessHandler {
	return &BusinessHandler{businessService: businessService}
}

// List godoc
// GET /api/admin/businesses
func (h *BusinessHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r, nil)
	f := models.BusinessFilter{
		Search:       q.str("search"),
		Status:       q.oneOf("status", models.VerificationStatuses...),
		BusinessType: q.oneOf("business_type", models.BusinessTypes...),
		Sort:         q.sort("sort_by", sortDirParams, models.BusinessSortFields, "created_at", true),
		Page:         q.page(pkg.DefaultPerPage),
	}
	if err := q.err(); err != nil {
		pkg.Error(w, err)
		return
	}

	page, err := h.businessService.List(r.Context(), f)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, page)
}

// Pending godoc
// GET /api/admin/businesses/pending
func (h *BusinessHandler) Pending(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r, nil)
	f := models.BusinessFilter{
		Search: q.str("search"),
		Sort:   models.SortSpec{Column: models.BusinessSortFields["created_at"]},
		Page:   q.page(pkg.DefaultPerPage),
	}
	if err := q.err(); err != nil {
		pkg.Error(w, err)
		return
	}

	page, err := h.businessService.Pending(r.Context(), f)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, page)
}

// Get godoc
// GET /api/admin/businesses/{id}
func (h *BusinessHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	business, err := h.businessService.Get(r.Context(), id)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, business)
}

// Update godoc
// PUT /api/admin/businesses/{id}
func (h *BusinessHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	var req models.UpdateBusinessRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	business, err := h.businessService.Update(r.Context(), id, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, business)
}

// Verify godoc
// POST /api/admin/businesses/{id}/verify
func (h *BusinessHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	business, err := h.businessService.Verify(r.Context(), id)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, business)
}

// Reject godoc
// POST /api/admin/businesses/{id}/reject
func (h *BusinessHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	var req models.RejectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	business, err := h.businessService.Reject(r.Context(), id, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, business)
}

// Stats godoc
// GET /api/admin/businesses/{id}/stats
func (h *BusinessHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	stats, err := h.businessService.Stats(r.Context(), id)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, stats)
}
