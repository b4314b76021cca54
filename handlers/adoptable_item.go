package handlers

import (
	"encoding/json"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/services"
)

// multipartMemory is held in memory per request; larger parts spill to disk.
const multipartMemory = 8 << 20

type AdoptableItemHandler struct {
	itemService services.AdoptableItemService
}

func NewAdoptableItemHandler(itemService services.AdoptableItemService) *AdoptableItemHandler {
	return &AdoptableItemHandler{itemService: itemService}
}

// List godoc
// GET /api/admin/adoptable-items
func (h *AdoptableItemHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r, nil)
	f := models.AdoptableItemFilter{
		ProducerID: q.int64Ptr("producer_id"),
		Type:       q.str("type"),
		Status:     q.oneOf("status", models.ItemStatuses...),
		Search:     q.str("search"),
		Sort:       q.sort("sort_field", sortDirParams, models.AdoptableItemSortFields, "created_at", true),
		Page:       q.page(pkg.DefaultPerPage),
	}
	if err := q.err(); err != nil {
		pkg.Error(w, err)
		return
	}

	page, err := h.itemService.List(r.Context(), f)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, page)
}

// Get godoc
// GET /api/admin/adoptable-items/{id}
func (h *AdoptableItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	item, err := h.itemService.Get(r.Context(), id)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, item)
}

// Create godoc
// POST /api/admin/adoptable-items (JSON or multipart/form-data)
func (h *AdoptableItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, images, err := readItemInput(r)
	defer images.close()
	if err != nil {
		pkg.Error(w, err)
		return
	}

	item, err := h.itemService.Create(r.Context(), in, images.ItemImages)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, item)
}

// Update godoc
// PUT /api/admin/adoptable-items/{id} (JSON, or POST with multipart)
func (h *AdoptableItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	in, images, err := readItemInput(r)
	defer images.close()
	if err != nil {
		pkg.Error(w, err)
		return
	}

	item, err := h.itemService.Update(r.Context(), id, in, images.ItemImages)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, item)
}

// Delete godoc
// DELETE /api/admin/adoptable-items/{id}
func (h *AdoptableItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	if err := h.itemService.Delete(r.Context(), id); err != nil {
		pkg.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type openedImages struct {
	services.ItemImages
	files []multipart.File
}

func (o *openedImages) close() {
	for _, f := range o.files {
		f.Close()
	}
}

func (o *openedImages) open(field string, fh *multipart.FileHeader) (services.ImageFile, error) {
	f, err := fh.Open()
	if err != nil {
		return services.ImageFile{}, fmt.Errorf("%w: unreadable upload %s", pkg.ErrBadRequest, field)
	}
	o.files = append(o.files, f)
	return services.ImageFile{Field: field, File: f, Header: fh}, nil
}

// readItemInput decodes a JSON body or a multipart form into the item input.
func readItemInput(r *http.Request) (*models.AdoptableItemInput, *openedImages, error) {
	images := &openedImages{}
	in := &models.AdoptableItemInput{}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(in); err != nil {
				return nil, images, fmt.Errorf("%w: invalid request body", pkg.ErrBadRequest)
			}
		}
		return in, images, nil
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, images, fmt.Errorf("%w: failed to parse multipart form", pkg.ErrBadRequest)
	}
	form := r.MultipartForm

	field := func(key string) *string {
		vals, ok := form.Value[key]
		if !ok || len(vals) == 0 {
			return nil
		}
		v := vals[0]
		return &v
	}

	verrs := pkg.ValidationErrors{}
	in.Name = field("name")
	in.Description = field("description")
	in.Type = field("type")
	in.Location = field("location")
	in.Status = field("status")
	if v := field("producer_id"); v != nil {
		id, err := strconv.ParseInt(strings.TrimSpace(*v), 10, 64)
		if err != nil {
			verrs.Add("producer_id", "must be an integer")
		} else {
			in.ProducerID = &id
		}
	}
	if v := field("attributes"); v != nil && strings.TrimSpace(*v) != "" {
		attrs := models.JSONMap{}
		if err := json.Unmarshal([]byte(*v), &attrs); err != nil {
			verrs.Add("attributes", "must be a JSON object")
		} else {
			in.Attributes = &attrs
		}
	}
	if v := field("featured"); v != nil {
		b, err := strconv.ParseBool(strings.TrimSpace(*v))
		if err != nil {
			verrs.Add("featured", "must be a boolean")
		} else {
			in.Featured = &b
		}
	}
	if err := verrs.Err(); err != nil {
		return nil, images, err
	}

	if fhs := form.File["main_image"]; len(fhs) > 0 {
		img, err := images.open("main_image", fhs[0])
		if err != nil {
			return nil, images, err
		}
		images.Main = &img
	}
	gallery := form.File["gallery_images[]"]
	if len(gallery) == 0 {
		gallery = form.File["gallery_images"]
	}
	for i, fh := range gallery {
		img, err := images.open(fmt.Sprintf("gallery_images.%d", i), fh)
		if err != nil {
			return nil, images, err
		}
		images.Gallery = append(images.Gallery, img)
	}

	return in, images, nil
}
