package handlers

import (
	"net/http"

	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/services"
)

type SubscriptionHandler struct {
	subscriptionService services.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// GET /api/admin/subscriptions/plans
func (h *SubscriptionHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r, nil)
	f := models.PlanFilter{
		TargetType: q.oneOf("target_type", models.SubscriberTypes...),
		IsActive:   q.boolPtr("is_active"),
	}
	if err := q.err(); err != nil {
		pkg.Error(w, err)
		return
	}

	plans, err := h.subscriptionService.ListPlans(r.Context(), f)
	respond(w, http.StatusOK, plans, err)
}

// GET /api/admin/subscriptions/plans/{id}
func (h *SubscriptionHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}
	plan, err := h.subscriptionService.GetPlan(r.Context(), id)
	respond(w, http.StatusOK, plan, err)
}

// POST /api/admin/subscriptions/plans
func (h *SubscriptionHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req models.PlanInput
	if !decodeJSON(w, r, &req) {
		return
	}
	plan, err := h.subscriptionService.CreatePlan(r.Context(), &req)
	respond(w, http.StatusCreated, plan, err)
}

// PUT /api/admin/subscriptions/plans/{id}
func (h *SubscriptionHandler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}
	var req models.PlanInput
	if !decodeJSON(w, r, &req) {
		return
	}
	plan, err := h.subscriptionService.UpdatePlan(r.Context(), id, &req)
	respond(w, http.StatusOK, plan, err)
}

// DELETE /api/admin/subscriptions/plans/{id}
func (h *SubscriptionHandler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}
	deleted(w, "subscription plan", h.subscriptionService.DeletePlan(r.Context(), id))
}

// List godoc
// GET /api/admin/subscriptions
func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r, nil)
	f := models.SubscriptionFilter{
		Type:   q.oneOf("type", models.SubscriberTypes...),
		Status: q.oneOf("status", models.SubscriptionStatuses...),
		PlanID: q.int64Ptr("plan_id"),
		Page:   q.page(pkg.DefaultPerPage),
	}
	if err := q.err(); err != nil {
		pkg.Error(w, err)
		return
	}

	page, err := h.subscriptionService.List(r.Context(), f)
	respond(w, http.StatusOK, page, err)
}

// GET /api/admin/subscriptions/{id}
func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}
	sub, err := h.subscriptionService.Get(r.Context(), id)
	respond(w, http.StatusOK, sub, err)
}

// POST /api/admin/subscriptions
func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSubscriptionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sub, err := h.subscriptionService.Create(r.Context(), &req)
	respond(w, http.StatusCreated, sub, err)
}

// PUT /api/admin/subscriptions/{id}
func (h *SubscriptionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}
	var req models.UpdateSubscriptionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sub, err := h.subscriptionService.Update(r.Context(), id, &req)
	respond(w, http.StatusOK, sub, err)
}

// POST /api/admin/subscriptions/{id}/cancel
func (h *SubscriptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}
	var req models.CancelSubscriptionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sub, err := h.subscriptionService.Cancel(r.Context(), id, &req)
	respond(w, http.StatusOK, sub, err)
}

// GET /api/admin/subscriptions/stats
func (h *SubscriptionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.subscriptionService.Stats(r.Context())
	respond(w, http.StatusOK, stats, err)
}
