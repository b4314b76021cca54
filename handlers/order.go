package handlers

import (
	"net/http"
	"time"

	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/services"
)

type OrderHandler struct {
	orderService services.OrderService
	loc          *time.Location
}

func NewOrderHandler(orderService services.OrderService, loc *time.Location) *OrderHandler {
	return &OrderHandler{orderService: orderService, loc: loc}
}

// List godoc
// GET /api/admin/orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r, h.loc)
	f := models.OrderFilter{
		Status:        q.oneOf("status", models.OrderStatuses...),
		PaymentStatus: q.oneOf("payment_status", models.PaymentStatuses...),
		UserID:        q.int64Ptr("user_id"),
		DateFrom:      q.date("date_from"),
		DateTo:        q.dateEnd("date_to"),
		Page:          q.page(pkg.DefaultPerPage),
	}
	if err := q.err(); err != nil {
		pkg.Error(w, err)
		return
	}

	page, err := h.orderService.List(r.Context(), f)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, page)
}

// Get godoc
// GET /api/admin/orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	order, err := h.orderService.Get(r.Context(), id)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, order)
}

// UpdateStatus godoc
// PUT /api/admin/orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	var req models.UpdateOrderStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), id, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, order)
}
