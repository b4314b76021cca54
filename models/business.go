package models

import (
	"time"

	"github.com/dixis/dixis/pkg"
)

var BusinessTypes = []string{"restaurant", "hotel", "catering", "retail", "other"}

type Business struct {
	ID               int64      `json:"id"`
	UserID           int64      `json:"user_id"`
	Name             string     `json:"name"`
	BusinessType     string     `json:"business_type"`
	TaxID            *string    `json:"tax_id"`
	TaxOffice        *string    `json:"tax_office"`
	Address          *string    `json:"address"`
	City             *string    `json:"city"`
	PostalCode       *string    `json:"postal_code"`
	Phone            *string    `json:"phone"`
	Email            *string    `json:"email"`
	Website          *string    `json:"website"`
	Description      *string    `json:"description"`
	ContactPerson    *string    `json:"contact_person"`
	Verified         bool       `json:"verified"`
	VerificationDate *time.Time `json:"verification_date"`
	RejectionReason  *string    `json:"rejection_reason"`
	RejectionDate    *time.Time `json:"rejection_date"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	User *UserSummary `json:"user,omitempty"`
}

type BusinessDetail struct {
	Business
	Subscription *Subscription `json:"subscription"`
}

type BusinessStats struct {
	OrderCount     int           `json:"order_count"`
	TotalPurchases float64       `json:"total_purchases"`
	RecentOrders   []OrderRow    `json:"recent_orders"`
	Subscription   *Subscription `json:"subscription"`
}

type BusinessFilter struct {
	Search       string
	Status       string
	BusinessType string
	Sort         SortSpec
	Page         pkg.PageParams
}

var BusinessSortFields = map[string]string{
	"id":         "b.id",
	"name":       "b.name",
	"created_at": "b.created_at",
}

type UpdateBusinessRequest struct {
	Name          *string          `json:"name"`
	BusinessType  *string          `json:"business_type"`
	TaxID         *string          `json:"tax_id"`
	TaxOffice     *string          `json:"tax_office"`
	Address       *string          `json:"address"`
	City          *string          `json:"city"`
	PostalCode    *string          `json:"postal_code"`
	Phone         *string          `json:"phone"`
	Email         *string          `json:"email"`
	Website       Optional[string] `json:"website"`
	Description   Optional[string] `json:"description"`
	ContactPerson Optional[string] `json:"contact_person"`
	Verified      *bool            `json:"verified"`
}

func (r *UpdateBusinessRequest) Validate() error {
	trimPtr(r.Name)
	trimPtr(r.TaxID)
	trimPtr(r.Email)
	trimOpt(&r.Website)

	v := pkg.ValidationErrors{}
	if r.Name != nil && required(v, "name", *r.Name) {
		maxLen(v, "name", *r.Name, 255)
	}
	if r.BusinessType != nil {
		oneOf(v, "business_type", *r.BusinessType, BusinessTypes...)
	}
	if r.TaxID != nil && required(v, "tax_id", *r.TaxID) {
		maxLen(v, "tax_id", *r.TaxID, 20)
	}
	for field, p := range map[string]*string{"tax_office": r.TaxOffice, "address": r.Address} {
		if p != nil {
			maxLen(v, field, *p, 255)
		}
	}
	if r.City != nil {
		maxLen(v, "city", *r.City, 100)
	}
	if r.PostalCode != nil {
		maxLen(v, "postal_code", *r.PostalCode, 20)
	}
	if r.Phone != nil {
		maxLen(v, "phone", *r.Phone, 20)
	}
	if r.Email != nil {
		validEmail(v, "email", *r.Email)
	}
	if r.Website.Value != nil && *r.Website.Value != "" {
		validURL(v, "website", *r.Website.Value)
		maxLen(v, "website", *r.Website.Value, 255)
	}
	if r.ContactPerson.Value != nil {
		maxLen(v, "contact_person", *r.ContactPerson.Value, 255)
	}
	return v.Err()
}
