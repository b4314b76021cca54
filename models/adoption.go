package models

import (
	"strings"
	"time"

	"github.com/dixis/dixis/pkg"
)

const (
	ItemStatusAvailable   = "available"
	ItemStatusAdopted     = "adopted"
	ItemStatusUnavailable = "unavailable"

	AdoptionStatusActive    = "active"
	AdoptionStatusExpired   = "expired"
	AdoptionStatusCancelled = "cancelled"
)

var ItemStatuses = []string{ItemStatusAvailable, ItemStatusAdopted, ItemStatusUnavailable}

var AdoptionStatuses = []string{AdoptionStatusActive, AdoptionStatusExpired, AdoptionStatusCancelled}

// AdoptableItem is something a customer can adopt: an olive tree, a beehive, an animal.
type AdoptableItem struct {
	ID            int64      `json:"id"`
	ProducerID    int64      `json:"producer_id"`
	Name          string     `json:"name"`
	Slug          string     `json:"slug"`
	Description   string     `json:"description"`
	Type          string     `json:"type"`
	Location      string     `json:"location"`
	Status        string     `json:"status"`
	Attributes    JSONMap    `json:"attributes"`
	Featured      bool       `json:"featured"`
	MainImage     *string    `json:"main_image"`
	GalleryImages StringList `json:"gallery_images"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Producer       *ProducerSummary `json:"producer,omitempty"`
	AdoptionsCount int              `json:"adoptions_count"`
}

type AdoptableItemSummary struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

type AdoptableItemFilter struct {
	ProducerID *int64
	Type       string
	Status     string
	Search     string
	Sort       SortSpec
	Page       pkg.PageParams
}

var AdoptableItemSortFields = map[string]string{
	"created_at": "i.created_at",
	"name":       "i.name",
	"status":     "i.status",
	"type":       "i.type",
}

// AdoptableItemInput is the decoded create/update payload. Images arrive
// separately as multipart files and are stored before persisting.
type AdoptableItemInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Type        *string  `json:"type"`
	Location    *string  `json:"location"`
	Status      *string  `json:"status"`
	ProducerID  *int64   `json:"producer_id"`
	Attributes  *JSONMap `json:"attributes"`
	Featured    *bool    `json:"featured"`
}

// Validate checks the input. With partial false every required field must be present.
func (r *AdoptableItemInput) Validate(partial bool) error {
	trimPtr(r.Name)
	trimPtr(r.Type)
	trimPtr(r.Location)

	v := pkg.ValidationErrors{}
	check := func(field string, p *string, n int) {
		if p == nil {
			if !partial {
				v.Add(field, "is required")
			}
			return
		}
		if required(v, field, *p) && n > 0 {
			maxLen(v, field, *p, n)
		}
	}
	check("name", r.Name, 255)
	check("description", r.Description, 0)
	check("type", r.Type, 50)
	check("location", r.Location, 255)

	if r.Status != nil {
		oneOf(v, "status", *r.Status, ItemStatuses...)
	} else if !partial {
		v.Add("status", "is required")
	}
	if r.ProducerID == nil {
		if !partial {
			v.Add("producer_id", "is required")
		}
	} else if *r.ProducerID <= 0 {
		v.Add("producer_id", "is invalid")
	}
	return v.Err()
}

type Adoption struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	AdoptableItemID int64     `json:"adoptable_item_id"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"payment_status"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	PricePaid       float64   `json:"price_paid"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	User *UserSummary          `json:"user,omitempty"`
	Item *AdoptableItemSummary `json:"adoptable_item,omitempty"`
}

type AdoptionFilter struct {
	UserID          *int64
	AdoptableItemID *int64
	ProducerID      *int64
	Status          string
	PaymentStatus   string
	StartFrom       *time.Time
	StartTo         *time.Time // exclusive
	Page            pkg.PageParams
}

type UpdateAdoptionRequest struct {
	Status        *string          `json:"status"`
	PaymentStatus *string          `json:"payment_status"`
	StartDate     *string          `json:"start_date"`
	EndDate       *string          `json:"end_date"`
	PricePaid     *float64         `json:"price_paid"`
	Notes         Optional[string] `json:"notes"`

	start, end *time.Time
}

// Validate checks the payload and parses dates in loc.
func (r *UpdateAdoptionRequest) Validate(loc *time.Location) error {
	v := pkg.ValidationErrors{}
	if r.Status != nil {
		oneOf(v, "status", *r.Status, AdoptionStatuses...)
	}
	if r.PaymentStatus != nil {
		oneOf(v, "payment_status", *r.PaymentStatus, PaymentStatuses...)
	}
	if r.StartDate != nil {
		t, err := ParseDate(strings.TrimSpace(*r.StartDate), loc)
		if err != nil {
			v.Add("start_date", "must be a date (YYYY-MM-DD)")
		} else {
			r.start = &t
		}
	}
	if r.EndDate != nil {
		t, err := ParseDate(strings.TrimSpace(*r.EndDate), loc)
		if err != nil {
			v.Add("end_date", "must be a date (YYYY-MM-DD)")
		} else {
			r.end = &t
		}
	}
	if r.start != nil && r.end != nil && !r.end.After(*r.start) {
		v.Add("end_date", "must be after start_date")
	}
	if r.PricePaid != nil {
		nonNegative(v, "price_paid", *r.PricePaid)
	}
	return v.Err()
}

// Dates returns the parsed start and end dates after Validate.
func (r *UpdateAdoptionRequest) Dates() (start, end *time.Time) { return r.start, r.end }

type RenewAdoptionRequest struct {
	DurationMonths int     `json:"duration_months"`
	PricePaid      float64 `json:"price_paid"`
}

func (r *RenewAdoptionRequest) Validate() error {
	v := pkg.ValidationErrors{}
	if r.DurationMonths < 1 {
		v.Add("duration_months", "must be at least 1")
	}
	nonNegative(v, "price_paid", r.PricePaid)
	return v.Err()
}

type ItemAdoptionCount struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"adoptions_count"`
}

type UserAdoptionCount struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Count int    `json:"adoptions_count"`
}

type AdoptionStats struct {
	Total          int                 `json:"total"`
	Active         int                 `json:"active"`
	Expired        int                 `json:"expired"`
	Cancelled      int                 `json:"cancelled"`
	TotalRevenue   float64             `json:"total_revenue"`
	MonthlyCounts  []Labeled           `json:"monthly_adoptions"`
	MonthlyRevenue []Labeled           `json:"monthly_revenue"`
	TopItems       []ItemAdoptionCount `json:"top_items"`
	TopUsers       []UserAdoptionCount `json:"top_users"`
}
