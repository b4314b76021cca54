package models

import (
	"time"

	"github.com/dixis/dixis/pkg"
)

type Producer struct {
	ID               int64      `json:"id"`
	UserID           int64      `json:"user_id"`
	BusinessName     string     `json:"business_name"`
	TaxID            *string    `json:"tax_id"`
	TaxOffice        *string    `json:"tax_office"`
	Description      *string    `json:"description"`
	Address          *string    `json:"address"`
	City             *string    `json:"city"`
	PostalCode       *string    `json:"postal_code"`
	Region           *string    `json:"region"`
	Website          *string    `json:"website"`
	SocialMedia      JSONMap    `json:"social_media"`
	Bio              *string    `json:"bio"`
	Verified         bool       `json:"verified"`
	IsFeatured       bool       `json:"is_featured"`
	IdentityDocument *string    `json:"identity_document"`
	TaxDocument      *string    `json:"tax_document"`
	BankDocument     *string    `json:"bank_document"`
	VerificationDate *time.Time `json:"verification_date"`
	RejectionReason  *string    `json:"rejection_reason"`
	RejectionDate    *time.Time `json:"rejection_date"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	User          *UserSummary `json:"user,omitempty"`
	ProductsCount int          `json:"products_count"`
}

// HasAllDocuments reports whether identity, tax and bank documents were submitted.
func (p *Producer) HasAllDocuments() bool {
	return p.IdentityDocument != nil && p.TaxDocument != nil && p.BankDocument != nil
}

// PendingProducer adds review metadata to an unverified producer.
type PendingProducer struct {
	Producer
	HasAllDocuments bool `json:"has_all_documents"`
	DaysPending     int  `json:"days_pending"`
}

type ProducerSummary struct {
	ID           int64  `json:"id"`
	BusinessName string `json:"business_name"`
}

// VerificationStatuses are the accepted status filters for sellers.
var VerificationStatuses = []string{"verified", "pending", "all"}

type ProducerFilter struct {
	Search      string
	Status      string // verified | pending | all
	Region      string
	IsFeatured  *bool
	DateFrom    *time.Time
	DateTo      *time.Time // exclusive upper bound
	HasProducts *bool
	Sort        SortSpec
	Page        pkg.PageParams
}

var ProducerSortFields = map[string]string{
	"id":             "p.id",
	"business_name":  "p.business_name",
	"created_at":     "p.created_at",
	"products_count": "products_count",
}

// SalesStats summarises non-cancelled orders containing a seller's products.
type SalesStats struct {
	TotalOrders       int     `json:"total_orders"`
	TotalItemsSold    int     `json:"total_items_sold"`
	TotalSales        float64 `json:"total_sales"`
	AverageOrderValue float64 `json:"average_order_value"`
}

// SellerOrder is an order seen from one producer's side.
type SellerOrder struct {
	ID          int64        `json:"id"`
	OrderNumber string       `json:"order_number"`
	Status      string       `json:"status"`
	Total       float64      `json:"total"`
	CreatedAt   time.Time    `json:"created_at"`
	User        *UserSummary `json:"user,omitempty"`
}

type ProducerDetail struct {
	Producer
	ActiveProductsCount   int           `json:"active_products_count"`
	InactiveProductsCount int           `json:"inactive_products_count"`
	SalesStats            SalesStats    `json:"sales_stats"`
	RecentOrders          []SellerOrder `json:"recent_orders"`
}

type ProducerStats struct {
	ProductCount       int           `json:"product_count"`
	ActiveProductCount int           `json:"active_product_count"`
	OrderCount         int           `json:"order_count"`
	TotalSales         float64       `json:"total_sales"`
	RecentOrders       []SellerOrder `json:"recent_orders"`
}

type ProducerPage struct {
	pkg.Page[Producer]
	Regions []string `json:"regions"`
}

type UpdateProducerRequest struct {
	BusinessName *string           `json:"business_name"`
	TaxID        *string           `json:"tax_id"`
	TaxOffice    *string           `json:"tax_office"`
	Description  Optional[string]  `json:"description"`
	Address      Optional[string]  `json:"address"`
	City         Optional[string]  `json:"city"`
	PostalCode   Optional[string]  `json:"postal_code"`
	Region       Optional[string]  `json:"region"`
	Website      Optional[string]  `json:"website"`
	SocialMedia  Optional[JSONMap] `json:"social_media"`
	Bio          Optional[string]  `json:"bio"`
	Verified     *bool             `json:"verified"`
	IsFeatured   *bool             `json:"is_featured"`
}

func (r *UpdateProducerRequest) Validate() error {
	trimPtr(r.BusinessName)
	trimPtr(r.TaxID)
	trimOpt(&r.Website)

	v := pkg.ValidationErrors{}
	if r.BusinessName != nil && required(v, "business_name", *r.BusinessName) {
		maxLen(v, "business_name", *r.BusinessName, 255)
	}
	if r.TaxID != nil && required(v, "tax_id", *r.TaxID) {
		maxLen(v, "tax_id", *r.TaxID, 20)
	}
	if r.TaxOffice != nil {
		maxLen(v, "tax_office", *r.TaxOffice, 255)
	}
	if r.Address.Value != nil {
		maxLen(v, "address", *r.Address.Value, 255)
	}
	if r.City.Value != nil {
		maxLen(v, "city", *r.City.Value, 100)
	}
	if r.PostalCode.Value != nil {
		maxLen(v, "postal_code", *r.PostalCode.Value, 20)
	}
	if r.Region.Value != nil {
		maxLen(v, "region", *r.Region.Value, 100)
	}
	if r.Website.Value != nil && *r.Website.Value != "" {
		validURL(v, "website", *r.Website.Value)
		maxLen(v, "website", *r.Website.Value, 255)
	}
	return v.Err()
}

// RejectRequest carries a mandatory rejection reason.
type RejectRequest struct {
	Reason string `json:"reason"`
}

func (r *RejectRequest) Validate() error {
	v := pkg.ValidationErrors{}
	required(v, "reason", r.Reason)
	maxLen(v, "reason", r.Reason, 1000)
	return v.Err()
}
