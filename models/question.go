package models

import (
	"time"

	"github.com/dixis/dixis/pkg"
)

type Question struct {
	ID          int64      `json:"id"`
	Type        string     `json:"type"`
	SubjectID   int64      `json:"subject_id"`
	SubjectName string     `json:"subject_name"`
	UserID      int64      `json:"user_id"`
	Question    string     `json:"question"`
	Answer      *string    `json:"answer"`
	AnsweredAt  *time.Time `json:"answered_at"`
	AnsweredBy  *int64     `json:"answered_by"`
	IsVisible   bool       `json:"is_visible"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	User *UserSummary `json:"user,omitempty"`
}

type QuestionFilter struct {
	Type   string
	Status string // answered | unanswered
	Search string
	Page   pkg.PageParams
}

type UpdateQuestionRequest struct {
	Answer    Optional[string] `json:"answer"`
	IsVisible *bool            `json:"is_visible"`
}

func (r *UpdateQuestionRequest) Validate() error {
	trimOpt(&r.Answer)
	v := pkg.ValidationErrors{}
	if r.Answer.Value != nil {
		maxLen(v, "answer", *r.Answer.Value, 2000)
	}
	return v.Err()
}

// Clears reports whether the update removes an existing answer.
func (r *UpdateQuestionRequest) Clears() bool {
	return r.Answer.Set && (r.Answer.Value == nil || *r.Answer.Value == "")
}
