package models

import (
	"strings"
	"time"

	"github.com/dixis/dixis/pkg"
)

const (
	SubscriberBusiness = "business"
	SubscriberProducer = "producer"

	SubscriptionActive    = "active"
	SubscriptionPending   = "pending"
	SubscriptionCancelled = "cancelled"
	SubscriptionExpired   = "expired"
)

var SubscriberTypes = []string{SubscriberBusiness, SubscriberProducer}

var SubscriptionStatuses = []string{SubscriptionActive, SubscriptionPending, SubscriptionCancelled, SubscriptionExpired}

var BillingCycles = []string{"monthly", "annually"}

type SubscriptionPlan struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Description    *string    `json:"description"`
	TargetType     string     `json:"target_type"`
	Price          float64    `json:"price"`
	BillingCycle   string     `json:"billing_cycle"`
	DurationMonths int        `json:"duration_months"`
	CommissionRate float64    `json:"commission_rate"`
	Features       StringList `json:"features"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	ActiveSubscriptions int `json:"active_subscriptions_count"`
}

type PlanFilter struct {
	TargetType string
	IsActive   *bool
}

type PlanInput struct {
	Name           *string          `json:"name"`
	Description    Optional[string] `json:"description"`
	TargetType     *string          `json:"target_type"`
	Price          *float64         `json:"price"`
	BillingCycle   *string          `json:"billing_cycle"`
	DurationMonths *int             `json:"duration_months"`
	CommissionRate *float64         `json:"commission_rate"`
	Features       *StringList      `json:"features"`
	IsActive       *bool            `json:"is_active"`
}

func (r *PlanInput) Validate(partial bool) error {
	trimPtr(r.Name)

	v := pkg.ValidationErrors{}
	need := func(field string, present bool) bool {
		if !present && !partial {
			v.Add(field, "is required")
		}
		return present
	}
	if need("name", r.Name != nil) && required(v, "name", *r.Name) {
		maxLen(v, "name", *r.Name, 255)
	}
	if need("target_type", r.TargetType != nil) {
		oneOf(v, "target_type", *r.TargetType, SubscriberTypes...)
	}
	if need("price", r.Price != nil) {
		nonNegative(v, "price", *r.Price)
	}
	if need("billing_cycle", r.BillingCycle != nil) {
		oneOf(v, "billing_cycle", *r.BillingCycle, BillingCycles...)
	}
	if need("duration_months", r.DurationMonths != nil) && *r.DurationMonths < 1 {
		v.Add("duration_months", "must be at least 1")
	}
	if r.CommissionRate != nil {
		between(v, "commission_rate", *r.CommissionRate, 0, 100)
	}
	if r.Features != nil {
		for i, f := range *r.Features {
			if strings.TrimSpace(f) == "" {
				v.Add(indexed("features", i, ""), "must not be empty")
			}
		}
	}
	return v.Err()
}

type Subscription struct {
	ID                 int64      `json:"id"`
	PlanID             int64      `json:"plan_id"`
	SubscribableType   string     `json:"subscribable_type"`
	SubscribableID     int64      `json:"subscribable_id"`
	SubscriberName     string     `json:"subscriber_name"`
	Status             string     `json:"status"`
	StartDate          time.Time  `json:"start_date"`
	EndDate            *time.Time `json:"end_date"`
	AutoRenew          bool       `json:"auto_renew"`
	CancellationReason *string    `json:"cancellation_reason"`
	CancelledAt        *time.Time `json:"cancelled_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	Plan *SubscriptionPlan `json:"plan,omitempty"`
}

type SubscriptionFilter struct {
	Type   string
	Status string
	PlanID *int64
	Page   pkg.PageParams
}

type CreateSubscriptionRequest struct {
	SubscribableType string  `json:"subscribable_type"`
	SubscribableID   int64   `json:"subscribable_id"`
	PlanID           int64   `json:"plan_id"`
	AutoRenew        *bool   `json:"auto_renew"`
	EndDate          *string `json:"end_date"`

	end *time.Time
}

func (r *CreateSubscriptionRequest) Validate(loc *time.Location) error {
	v := pkg.ValidationErrors{}
	oneOf(v, "subscribable_type", r.SubscribableType, SubscriberTypes...)
	if r.SubscribableID <= 0 {
		v.Add("subscribable_id", "is required")
	}
	if r.PlanID <= 0 {
		v.Add("plan_id", "is required")
	}
	if r.EndDate != nil {
		t, err := ParseDate(strings.TrimSpace(*r.EndDate), loc)
		if err != nil {
			v.Add("end_date", "must be a date (YYYY-MM-DD)")
		} else {
			r.end = &t
		}
	}
	return v.Err()
}

// End returns the parsed end date after Validate.
func (r *CreateSubscriptionRequest) End() *time.Time { return r.end }

type UpdateSubscriptionRequest struct {
	Status    *string          `json:"status"`
	EndDate   Optional[string] `json:"end_date"`
	AutoRenew *bool            `json:"auto_renew"`

	end *time.Time
}

func (r *UpdateSubscriptionRequest) Validate(loc *time.Location) error {
	v := pkg.ValidationErrors{}
	if r.Status != nil {
		oneOf(v, "status", *r.Status, SubscriptionStatuses...)
	}
	if r.EndDate.Value != nil {
		t, err := ParseDate(strings.TrimSpace(*r.EndDate.Value), loc)
		if err != nil {
			v.Add("end_date", "must be a date (YYYY-MM-DD)")
		} else {
			r.end = &t
		}
	}
	return v.Err()
}

// End returns the parsed end date after Validate; nil with EndDate.Set clears it.
func (r *UpdateSubscriptionRequest) End() *time.Time { return r.end }

type CancelSubscriptionRequest struct {
	CancellationReason *string `json:"cancellation_reason"`
}

func (r *CancelSubscriptionRequest) Validate() error {
	v := pkg.ValidationErrors{}
	if r.CancellationReason != nil {
		maxLen(v, "cancellation_reason", *r.CancellationReason, 1000)
	}
	return v.Err()
}

type SubscriptionStats struct {
	StatusCounts []Counted `json:"status_counts"`
	TypeCounts   []Counted `json:"type_counts"`
	PlanCounts   []Counted `json:"plan_counts"`
	TotalRevenue float64   `json:"total_revenue"`
}
