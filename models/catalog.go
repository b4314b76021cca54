package models

import (
	"time"

	"github.com/dixis/dixis/pkg"
)

var CatalogSorts = []string{"relevance", "price_asc", "price_desc", "name", "name_asc", "name_desc", "newest", "popular"}

// PopularSearches are offered when the suggestion query is empty.
var PopularSearches = []string{
	"ελαιόλαδο",
	"μέλι",
	"τυρί",
	"κρασί",
	"φέτα",
	"βιολογικά προϊόντα",
	"κρητικά προϊόντα",
	"θυμαρίσιο μέλι",
}

// CatalogProduct is the storefront view of an active product.
type CatalogProduct struct {
	ID            int64             `json:"id"`
	Name          string            `json:"name"`
	Slug          string            `json:"slug"`
	Description   string            `json:"description"`
	ShortDesc     *string           `json:"short_description"`
	Price         float64           `json:"price"`
	DiscountPrice *float64          `json:"discount_price"`
	FinalPrice    float64           `json:"final_price"`
	Stock         int               `json:"stock"`
	Featured      bool              `json:"is_featured"`
	MainImage     *string           `json:"main_image"`
	WeightGrams   *int              `json:"weight_grams"`
	Producer      ProducerSummary   `json:"producer"`
	Region        *string           `json:"region"`
	Categories    []CategorySummary `json:"categories"`
	Sold          int               `json:"-"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

type CatalogQuery struct {
	Search     string
	Category   string
	ProducerID *int64
	MinPrice   *float64
	MaxPrice   *float64
	InStock    bool
	Featured   bool
	Filter     string
	Sort       string
	Page       pkg.PageParams
}

func (q *CatalogQuery) Validate() error {
	v := pkg.ValidationErrors{}
	maxLen(v, "search", q.Search, 100)
	if q.Sort == "" {
		q.Sort = "relevance"
	}
	oneOf(v, "sort", q.Sort, CatalogSorts...)
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		v.Add("max_price", "must be greater than or equal to min_price")
	}
	return v.Err()
}

type Suggestion struct {
	Text string `json:"text"`
	Kind string `json:"type"` // product | category | producer | popular
	Slug string `json:"slug,omitempty"`
}
