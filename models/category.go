package models

import (
	"strings"
	"time"

	"github.com/dixis/dixis/pkg"
)

const (
	CategoryTypeMain = "main"
	CategoryTypeSub  = "sub"
)

var CategoryTypes = []string{CategoryTypeMain, CategoryTypeSub}

type Category struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Description     *string   `json:"description"`
	Type            string    `json:"type"`
	ParentID        *int64    `json:"parent_id"`
	Order           int       `json:"order"`
	MetaTitle       *string   `json:"meta_title"`
	MetaDescription *string   `json:"meta_description"`
	MetaKeywords    *string   `json:"meta_keywords"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Parent       *CategorySummary  `json:"parent,omitempty"`
	Children     []CategorySummary `json:"children,omitempty"`
	ProductCount *int              `json:"product_count,omitempty"`
}

type CategorySummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CategoryNode is a storefront category tree node.
type CategoryNode struct {
	ID       int64          `json:"id"`
	Name     string         `json:"name"`
	Slug     string         `json:"slug"`
	Children []CategoryNode `json:"children"`
}

type CategoryFilter struct {
	Search   string
	Type     string
	ParentID *int64
	Sort     SortSpec
	Page     pkg.PageParams
}

// CategorySortFields maps sort_by values to columns.
var CategorySortFields = map[string]string{
	"order":      "c.sort_order",
	"name":       "c.name",
	"created_at": "c.created_at",
	"id":         "c.id",
}

type CreateCategoryRequest struct {
	Name            string  `json:"name"`
	Slug            *string `json:"slug"`
	Description     *string `json:"description"`
	Type            string  `json:"type"`
	ParentID        *int64  `json:"parent_id"`
	Order           *int    `json:"order"`
	MetaTitle       *string `json:"meta_title"`
	MetaDescription *string `json:"meta_description"`
	MetaKeywords    *string `json:"meta_keywords"`
}

func (r *CreateCategoryRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	trimPtr(r.Slug)

	v := pkg.ValidationErrors{}
	if required(v, "name", r.Name) {
		maxLen(v, "name", r.Name, 255)
	}
	if r.Slug != nil {
		maxLen(v, "slug", *r.Slug, 255)
	}
	oneOf(v, "type", r.Type, CategoryTypeMain, CategoryTypeSub)
	if r.Order != nil && *r.Order < 0 {
		v.Add("order", "must be at least 0")
	}
	validateCategoryMeta(v, r.MetaTitle, r.MetaDescription, r.MetaKeywords)
	return v.Err()
}

type UpdateCategoryRequest struct {
	Name            *string          `json:"name"`
	Slug            *string          `json:"slug"`
	Description     Optional[string] `json:"description"`
	Type            *string          `json:"type"`
	ParentID        Optional[int64]  `json:"parent_id"`
	Order           *int             `json:"order"`
	MetaTitle       Optional[string] `json:"meta_title"`
	MetaDescription Optional[string] `json:"meta_description"`
	MetaKeywords    Optional[string] `json:"meta_keywords"`
}

func (r *UpdateCategoryRequest) Validate() error {
	trimPtr(r.Name)
	trimPtr(r.Slug)

	v := pkg.ValidationErrors{}
	if r.Name != nil && required(v, "name", *r.Name) {
		maxLen(v, "name", *r.Name, 255)
	}
	if r.Slug != nil {
		maxLen(v, "slug", *r.Slug, 255)
	}
	if r.Type != nil {
		oneOf(v, "type", *r.Type, CategoryTypeMain, CategoryTypeSub)
	}
	if r.Order != nil && *r.Order < 0 {
		v.Add("order", "must be at least 0")
	}
	validateCategoryMeta(v, r.MetaTitle.Value, r.MetaDescription.Value, r.MetaKeywords.Value)
	return v.Err()
}

func validateCategoryMeta(v pkg.ValidationErrors, title, desc, keywords *string) {
	if title != nil {
		maxLen(v, "meta_title", *title, 255)
	}
	if desc != nil {
		maxLen(v, "meta_description", *desc, 500)
	}
	if keywords != nil {
		maxLen(v, "meta_keywords", *keywords, 255)
	}
}
