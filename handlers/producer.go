package handlers

import (
	"net/http"
	"time"

	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/services"
)

type ProducerHandler struct {
	producerService services.ProducerService
	loc             *time.Location
}

func NewProducerHandler(producerService services.ProducerService, loc *time.Location) *ProducerHandler {
	return &ProducerHandler{producerService: producerService, loc: loc}
}

// List godoc
// GET /api/admin/producers
func (h *ProducerHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r, h.loc)
	f := models.ProducerFilter{
		Search:      q.str("search"),
		Status:      q.oneOf("status", models.VerificationStatuses...),
		Region:      q.str("region"),
		IsFeatured:  q.boolPtr("is_featured"),
		DateFrom:    q.date("date_from"),
		DateTo:      q.dateEnd("date_to"),
		HasProducts: q.boolPtr("has_products"),
		Sort:        q.sort("sort_by", sortDirParams, models.ProducerSortFields, "created_at", true),
		Page:        q.page(pkg.DefaultPerPage),
	}
	if err := q.err(); err != nil {
		pkg.Error(w, err)
		return
	}

	page, err := h.producerService.List(r.Context(), f)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, page)
}

// Pending godoc
// GET /api/admin/producers/pending
func (h *ProducerHandler) Pending(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r, h.loc)
	f := models.ProducerFilter{
		Search: q.str("search"),
		Sort:   models.SortSpec{Column: models.ProducerSortFields["created_at"]},
		Page:   q.page(pkg.DefaultPerPage),
	}
	if err := q.err(); err != nil {
		pkg.Error(w, err)
		return
	}

	page, err := h.producerService.Pending(r.Context(), f)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, page)
}

// Get godoc
// GET /api/admin/producers/{id}
func (h *ProducerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	detail, err := h.producerService.Get(r.Context(), id)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, detail)
}

// Update godoc
// PUT /api/admin/producers/{id}
func (h *ProducerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	var req models.UpdateProducerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	producer, err := h.producerService.Update(r.Context(), id, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, producer)
}

// Verify godoc
// POST /api/admin/producers/{id}/verify
func (h *ProducerHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	producer, err := h.producerService.Verify(r.Context(), id)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, producer)
}

// Reject godoc
// POST /api/admin/producers/{id}/reject
func (h *ProducerHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	var req models.RejectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	producer, err := h.producerService.Reject(r.Context(), id, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, producer)
}

// Stats godoc
// GET /api/admin/producers/{id}/stats
func (h *ProducerHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	stats, err := h.producerService.Stats(r.Context(), id)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, stats)
}
