package handlers

import (
	"net/http"
	"time"

	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/services"
)

// ReviewHandler serves product and producer reviews. The optional "type"
// query parameter narrows every action to one subject kind.
type ReviewHandler struct {
	reviewService services.ReviewService
	loc           *time.Location
}

func NewReviewHandler(reviewService services.ReviewService, loc *time.Location) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, loc: loc}
}

type pendingList[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

// List godoc
// GET /api/admin/reviews
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r, h.loc)
	f := models.ReviewFilter{
		Type:     q.oneOf("type", models.SubjectTypes...),
		Status:   q.oneOf("status", models.ReviewStatuses...),
		Rating:   q.intPtr("rating"),
		Search:   q.str("search"),
		DateFrom: q.date("date_from"),
		DateTo:   q.dateEnd("date_to"),
		Page:     q.page(pkg.DefaultPerPage),
	}
	if f.Rating != nil && (*f.Rating < 1 || *f.Rating > 5) {
		q.errs.Add("rating", "must be between 1 and 5")
	}
	if err := q.err(); err != nil {
		pkg.Error(w, err)
		return
	}

	page, err := h.reviewService.List(r.Context(), f)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, page)
}

// Pending godoc
// GET /api/admin/reviews/pending
func (h *ReviewHandler) Pending(w http.ResponseWriter, r *http.Request) {
	reviews, total, err := h.reviewService.Pending(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	if reviews == nil {
		reviews = []models.Review{}
	}
	pkg.JSON(w, http.StatusOK, pendingList[models.Review]{Data: reviews, Total: total})
}

// Get godoc
// GET /api/admin/reviews/{id}
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	review, err := h.reviewService.Get(r.Context(), r.URL.Query().Get("type"), id)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, review)
}

// Update godoc
// PUT /api/admin/reviews/{id}
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	var req models.UpdateReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	review, err := h.reviewService.Update(r.Context(), r.URL.Query().Get("type"), id, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, review)
}

// Approve godoc
// POST /api/admin/reviews/{id}/approve
func (h *ReviewHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	review, err := h.reviewService.Approve(r.Context(), r.URL.Query().Get("type"), id)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, review)
}

// Reject godoc
// POST /api/admin/reviews/{id}/reject
func (h *ReviewHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	var req models.RejectReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	review, err := h.reviewService.Reject(r.Context(), r.URL.Query().Get("type"), id, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, review)
}

// Delete godoc
// DELETE /api/admin/reviews/{id}
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	if err := h.reviewService.Delete(r.Context(), r.URL.Query().Get("type"), id); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "review deleted"})
}
