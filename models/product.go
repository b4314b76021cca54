package models

import (
	"time"

	"github.com/dixis/dixis/pkg"
)

type Product struct {
	ID               int64      `json:"id"`
	ProducerID       int64      `json:"producer_id"`
	Name             string     `json:"name"`
	Slug             string     `json:"slug"`
	SKU              *string    `json:"sku"`
	Description      string     `json:"description"`
	ShortDescription *string    `json:"short_description"`
	Price            float64    `json:"price"`
	DiscountPrice    *float64   `json:"discount_price"`
	Stock            int        `json:"stock"`
	WeightGrams      *int       `json:"weight_grams"`
	Dimensions       JSONMap    `json:"dimensions"`
	Attributes       JSONMap    `json:"attributes"`
	MainImage        *string    `json:"main_image"`
	IsActive         bool       `json:"is_active"`
	IsFeatured       bool       `json:"is_featured"`
	RejectionNote    *string    `json:"rejection_note"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	Producer   *ProducerSummary  `json:"producer,omitempty"`
	Categories []CategorySummary `json:"categories,omitempty"`
}

// FinalPrice is the discounted price when a discount is set.
func (p *Product) FinalPrice() float64 {
	if p.DiscountPrice != nil && *p.DiscountPrice > 0 && *p.DiscountPrice < p.Price {
		return *p.DiscountPrice
	}
	return p.Price
}

type ProductDetail struct {
	Product
	ReviewsCount   int `json:"reviews_count"`
	QuestionsCount int `json:"questions_count"`
}

type ProductFilter struct {
	ProducerID *int64
	CategoryID *int64
	IsActive   *bool
	IsFeatured *bool
	HasStock   *bool
	PriceMin   *float64
	PriceMax   *float64
	DateFrom   *time.Time
	DateTo     *time.Time // exclusive
	Search     string
	Sort       SortSpec
	Page       pkg.PageParams
}

var ProductSortFields = map[string]string{
	"id":             "p.id",
	"name":           "p.name",
	"price":          "p.price",
	"stock_quantity": "p.stock",
	"created_at":     "p.created_at",
}

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

type ProductListStats struct {
	Total      int        `json:"total"`
	Active     int        `json:"active"`
	Featured   int        `json:"featured"`
	OutOfStock int        `json:"out_of_stock"`
	PriceRange PriceRange `json:"price_range"`
}

type ProductPage struct {
	pkg.Page[Product]
	Stats ProductListStats `json:"stats"`
}

type CreateProductRequest struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	ShortDescription *string  `json:"short_description"`
	Price            float64  `json:"price"`
	DiscountPrice    *float64 `json:"discount_price"`
	Stock            *int     `json:"stock"`
	SKU              *string  `json:"sku"`
	WeightGrams      *int     `json:"weight_grams"`
	Dimensions       JSONMap  `json:"dimensions"`
	Attributes       JSONMap  `json:"attributes"`
	IsActive         *bool    `json:"is_active"`
	IsFeatured       bool     `json:"is_featured"`
	CategoryID       int64    `json:"category_id"`
	ProducerID       int64    `json:"producer_id"`
}

func (r *CreateProductRequest) Validate() error {
	v := pkg.ValidationErrors{}
	if required(v, "name", r.Name) {
		maxLen(v, "name", r.Name, 255)
	}
	required(v, "description", r.Description)
	if r.ShortDescription != nil {
		maxLen(v, "short_description", *r.ShortDescription, 500)
	}
	nonNegative(v, "price", r.Price)
	validateDiscount(v, r.DiscountPrice, r.Price)
	if r.Stock == nil {
		v.Add("stock", "is required")
	} else if *r.Stock < 0 {
		v.Add("stock", "must be at least 0")
	}
	if r.SKU != nil {
		maxLen(v, "sku", *r.SKU, 100)
	}
	if r.WeightGrams != nil && *r.WeightGrams < 0 {
		v.Add("weight_grams", "must be at least 0")
	}
	validateDimensions(v, r.Dimensions)
	if r.CategoryID <= 0 {
		v.Add("category_id", "is required")
	}
	if r.ProducerID <= 0 {
		v.Add("producer_id", "is required")
	}
	return v.Err()
}

type UpdateProductRequest struct {
	Name             *string           `json:"name"`
	Description      *string           `json:"description"`
	ShortDescription Optional[string]  `json:"short_description"`
	Price            *float64          `json:"price"`
	DiscountPrice    Optional[float64] `json:"discount_price"`
	Stock            *int              `json:"stock"`
	SKU              *string           `json:"sku"`
	WeightGrams      Optional[int]     `json:"weight_grams"`
	Dimensions       *JSONMap          `json:"dimensions"`
	Attributes       *JSONMap          `json:"attributes"`
	IsActive         *bool             `json:"is_active"`
	IsFeatured       *bool             `json:"is_featured"`
	CategoryID       *int64            `json:"category_id"`
	ProducerID       *int64            `json:"producer_id"`
}

func (r *UpdateProductRequest) Validate() error {
	trimPtr(r.Name)
	trimPtr(r.SKU)

	v := pkg.ValidationErrors{}
	if r.Name != nil && required(v, "name", *r.Name) {
		maxLen(v, "name", *r.Name, 255)
	}
	if r.Description != nil {
		required(v, "description", *r.Description)
	}
	if r.ShortDescription.Value != nil {
		maxLen(v, "short_description", *r.ShortDescription.Value, 500)
	}
	if r.Price != nil {
		nonNegative(v, "price", *r.Price)
	}
	if r.DiscountPrice.Value != nil {
		nonNegative(v, "discount_price", *r.DiscountPrice.Value)
	}
	if r.Stock != nil && *r.Stock < 0 {
		v.Add("stock", "must be at least 0")
	}
	if r.SKU != nil && required(v, "sku", *r.SKU) {
		maxLen(v, "sku", *r.SKU, 100)
	}
	if r.WeightGrams.Value != nil && *r.WeightGrams.Value < 0 {
		v.Add("weight_grams", "must be at least 0")
	}
	if r.Dimensions != nil {
		validateDimensions(v, *r.Dimensions)
	}
	return v.Err()
}

// ModerateProductRequest carries an optional note for approve/reject.
type ModerateProductRequest struct {
	Note *string `json:"note"`
}

func validateDiscount(v pkg.ValidationErrors, discount *float64, price float64) {
	if discount == nil {
		return
	}
	if *discount < 0 {
		v.Add("discount_price", "must be at least 0")
	} else if *discount >= price && *discount > 0 {
		v.Add("discount_price", "must be lower than price")
	}
}

func validateDimensions(v pkg.ValidationErrors, dims JSONMap) {
	for k, val := range dims {
		switch k {
		case "length_cm", "width_cm", "height_cm":
			f, ok := val.(float64)
			if !ok || f < 0 {
				v.Add("dimensions."+k, "must be a non-negative number")
			}
		default:
			v.Add("dimensions."+k, "is not a known dimension")
		}
	}
}
