package handlers

import (
	"net/http"
	"time"

	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/services"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
	loc              *time.Location
}

func NewDashboardHandler(dashboardService services.DashboardService, loc *time.Location) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, loc: loc}
}

// Stats godoc
// GET /api/admin/dashboard/stats?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r, h.loc)
	start, end := q.dateRange("start_date", "end_date")
	if err := q.err(); err != nil {
		pkg.Error(w, err)
		return
	}

	stats, err := h.dashboardService.Stats(r.Context(), start, end)
	respond(w, http.StatusOK, stats, err)
}

// Pending godoc
// GET /api/admin/dashboard/pending
func (h *DashboardHandler) Pending(w http.ResponseWriter, r *http.Request) {
	counts, err := h.dashboardService.PendingCounts(r.Context())
	respond(w, http.StatusOK, counts, err)
}
