package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/services"
)

type ProductHandler struct {
	productService services.ProductService
	loc            *time.Location
}

func NewProductHandler(productService services.ProductService, loc *time.Location) *ProductHandler {
	return &ProductHandler{productService: productService, loc: loc}
}

// List godoc
// GET /api/admin/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r, h.loc)
	f := models.ProductFilter{
		ProducerID: q.int64Ptr("producer_id"),
		CategoryID: q.int64Ptr("category_id"),
		IsActive:   q.boolPtr("is_active"),
		IsFeatured: q.boolPtr("is_featured"),
		HasStock:   q.boolPtr("has_stock"),
		PriceMin:   q.floatPtr("price_min"),
		PriceMax:   q.floatPtr("price_max"),
		DateFrom:   q.date("date_from"),
		DateTo:     q.dateEnd("date_to"),
		Search:     q.str("search"),
		Sort:       q.sort("sort_by", sortDirParams, models.ProductSortFields, "created_at", true),
		Page:       q.page(pkg.DefaultPerPage),
	}
	if err := q.err(); err != nil {
		pkg.Error(w, err)
		return
	}

	page, err := h.productService.List(r.Context(), f)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, page)
}

// Get godoc
// GET /api/admin/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, product)
}

// Create godoc
// POST /api/admin/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.productService.Create(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, product)
}

// Update godoc
// PUT /api/admin/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	var req models.UpdateProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.productService.Update(r.Context(), id, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, product)
}

// Delete godoc
// DELETE /api/admin/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// Approve godoc
// POST /api/admin/products/{id}/approve
func (h *ProductHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, h.productService.Approve)
}

// Reject godoc
// POST /api/admin/products/{id}/reject
func (h *ProductHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, h.productService.Reject)
}

func (h *ProductHandler) moderate(
	w http.ResponseWriter,
	r *http.Request,
	apply func(context.Context, int64, *models.ModerateProductRequest) (*models.Product, error),
) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	var req models.ModerateProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := apply(r.Context(), id, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, product)
}
