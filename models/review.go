package models

import (
	"time"

	"github.com/dixis/dixis/pkg"
)

const (
	SubjectProduct  = "product"
	SubjectProducer = "producer"

	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
)

var SubjectTypes = []string{SubjectProduct, SubjectProducer}

var ReviewStatuses = []string{ReviewStatusPending, ReviewStatusApproved, ReviewStatusRejected}

// Review is a rating left on a product or a producer.
type Review struct {
	ID          int64      `json:"id"`
	Type        string     `json:"type"`
	SubjectID   int64      `json:"subject_id"`
	SubjectName string     `json:"subject_name"`
	UserID      int64      `json:"user_id"`
	Rating      int        `json:"rating"`
	Title       *string    `json:"title"`
	Comment     string     `json:"comment"`
	Status      string     `json:"status"`
	AdminNotes  *string    `json:"admin_notes"`
	ApprovedAt  *time.Time `json:"approved_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	User *UserSummary `json:"user,omitempty"`
}

type ReviewFilter struct {
	Type     string
	Status   string
	Rating   *int
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time // exclusive
	Page     pkg.PageParams
}

type UpdateReviewRequest struct {
	Status     *string          `json:"status"`
	AdminNotes Optional[string] `json:"admin_notes"`
}

func (r *UpdateReviewRequest) Validate() error {
	v := pkg.ValidationErrors{}
	if r.Status != nil {
		oneOf(v, "status", *r.Status, ReviewStatuses...)
	}
	if r.AdminNotes.Value != nil {
		maxLen(v, "admin_notes", *r.AdminNotes.Value, 1000)
	}
	return v.Err()
}

type RejectReviewRequest struct {
	RejectionReason string `json:"rejection_reason"`
}

func (r *RejectReviewRequest) Validate() error {
	v := pkg.ValidationErrors{}
	if required(v, "rejection_reason", r.RejectionReason) {
		maxLen(v, "rejection_reason", r.RejectionReason, 1000)
	}
	return v.Err()
}

// ValidateSubjectType accepts an empty type or product/producer.
func ValidateSubjectType(t string) error {
	if t == "" {
		return nil
	}
	v := pkg.ValidationErrors{}
	oneOf(v, "type", t, SubjectTypes...)
	return v.Err()
}
