package handlers

import (
	"net/http"

	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/services"
)

type SettingHandler struct {
	settingService services.SettingService
}

func NewSettingHandler(settingService services.SettingService) *SettingHandler {
	return &SettingHandler{settingService: settingService}
}

// Get godoc
// GET /api/admin/settings
func (h *SettingHandler) Get(w http.ResponseWriter, r *http.Request) {
	grouped, err := h.settingService.Grouped(r.Context())
	respond(w, http.StatusOK, grouped, err)
}

// Update godoc
// PUT /api/admin/settings
func (h *SettingHandler) Update(w http.ResponseWriter, r *http.Request) {
	admin, ok := currentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.UpdateSettingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	grouped, err := h.settingService.Update(r.Context(), admin.ID, &req)
	respond(w, http.StatusOK, grouped, err)
}
