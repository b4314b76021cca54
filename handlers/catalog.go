package handlers

import (
	"net/http"

	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/services"
)

// CatalogHandler serves the public storefront listing.
type CatalogHandler struct {
	catalogService services.CatalogService
}

func NewCatalogHandler(catalogService services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// List godoc
// GET /api/products
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r, nil)
	cq := models.CatalogQuery{
		Search:     q.str("search"),
		Category:   q.str("category"),
		ProducerID: q.int64Ptr("producer_id"),
		MinPrice:   q.floatPtr("min_price"),
		MaxPrice:   q.floatPtr("max_price"),
		InStock:    q.flag("in_stock"),
		Featured:   q.flag("featured"),
		Filter:     q.str("filter"),
		Sort:       q.str("sort"),
		Page:       q.page(12),
	}
	if err := q.err(); err != nil {
		pkg.Error(w, err)
		return
	}

	page, err := h.catalogService.List(r.Context(), cq)
	respond(w, http.StatusOK, page, err)
}

// Get godoc
// GET /api/products/{slug}
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalogService.GetBySlug(r.Context(), r.PathValue("slug"))
	respond(w, http.StatusOK, product, err)
}

// Suggestions godoc
// GET /api/search/suggestions?q=
func (h *CatalogHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.catalogService.Suggestions(r.Context(), r.URL.Query().Get("q"))
	if suggestions == nil {
		suggestions = []models.Suggestion{}
	}
	respond(w, http.StatusOK, suggestions, err)
}
