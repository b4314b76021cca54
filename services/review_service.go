package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/repository"
	"github.com/dixis/dixis/ws"
)

// ReviewService moderates product and producer reviews. Methods taking a
// subjectType accept "" for any type; a mismatching type is reported as not found.
type ReviewService interface {
	List(ctx context.Context, f models.ReviewFilter) (pkg.Page[models.Review], error)
	Pending(ctx context.Context, subjectType string) ([]models.Review, int, error)
	Get(ctx context.Context, subjectType string, id int64) (*models.Review, error)
	Update(ctx context.Context, subjectType string, id int64, req *models.UpdateReviewRequest) (*models.Review, error)
	Approve(ctx context.Context, subjectType string, id int64) (*models.Review, error)
	Reject(ctx context.Context, subjectType string, id int64, req *models.RejectReviewRequest) (*models.Review, error)
	Delete(ctx context.Context, subjectType string, id int64) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	hub        ws.EventPublisher
	now        func() time.Time
}

func NewReviewService(reviewRepo repository.ReviewRepository, hub ws.EventPublisher) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, hub: hub, now: time.Now}
}

func (s *reviewService) List(ctx context.Context, f models.ReviewFilter) (pkg.Page[models.Review], error) {
	if err := models.ValidateSubjectType(f.Type); err != nil {
		return pkg.Page[models.Review]{}, err
	}
	reviews, total, err := s.reviewRepo.List(ctx, f)
	if err != nil {
		return pkg.Page[models.Review]{}, err
	}
	return pkg.NewPage(reviews, total, f.Page), nil
}

func (s *reviewService) Pending(ctx context.Context, subjectType string) ([]models.Review, int, error) {
	if err := models.ValidateSubjectType(subjectType); err != nil {
		return nil, 0, err
	}
	reviews, total, err := s.reviewRepo.List(ctx, models.ReviewFilter{
		Type:   subjectType,
		Status: models.ReviewStatusPending,
	})
	if err != nil {
		return nil, 0, err
	}
	return nonNil(reviews), total, nil
}

func (s *reviewService) Get(ctx context.Context, subjectType string, id int64) (*models.Review, error) {
	if err := models.ValidateSubjectType(subjectType); err != nil {
		return nil, err
	}
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if subjectType != "" && review.Type != subjectType {
		return nil, fmt.Errorf("%w: review", pkg.ErrNotFound)
	}
	return review, nil
}

func (s *reviewService) Update(ctx context.Context, subjectType string, id int64, req *models.UpdateReviewRequest) (*models.Review, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	review, err := s.Get(ctx, subjectType, id)
	if err != nil {
		return nil, err
	}

	status := review.Status
	if req.Status != nil {
		status = *req.Status
	}
	notes := review.AdminNotes
	applyOptional(&notes, req.AdminNotes)

	return s.moderate(ctx, review, status, notes)
}

func (s *reviewService) Approve(ctx context.Context, subjectType string, id int64) (*models.Review, error) {
	review, err := s.Get(ctx, subjectType, id)
	if err != nil {
		return nil, err
	}
	return s.moderate(ctx, review, models.ReviewStatusApproved, review.AdminNotes)
}

func (s *reviewService) Reject(ctx context.Context, subjectType string, id int64, req *models.RejectReviewRequest) (*models.Review, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	review, err := s.Get(ctx, subjectType, id)
	if err != nil {
		return nil, err
	}
	reason := req.RejectionReason
	return s.moderate(ctx, review, models.ReviewStatusRejected, &reason)
}

func (s *reviewService) Delete(ctx context.Context, subjectType string, id int64) error {
	if _, err := s.Get(ctx, subjectType, id); err != nil {
		return err
	}
	return s.reviewRepo.Delete(ctx, id)
}

// moderate writes status and notes. approved_at is stamped when a review
// becomes approved and cleared when it leaves that state.
func (s *reviewService) moderate(ctx context.Context, review *models.Review, status string, notes *string) (*models.Review, error) {
	approvedAt := review.ApprovedAt
	switch {
	case status != models.ReviewStatusApproved:
		approvedAt = nil
	case review.Status != models.ReviewStatusApproved || approvedAt == nil:
		now := s.now()
		approvedAt = &now
	}

	if err := s.reviewRepo.Moderate(ctx, review.ID, status, notes, approvedAt); err != nil {
		return nil, err
	}

	s.hub.BroadcastToAll(ws.Event{
		Op:   ws.OpReviewModerated,
		Data: ws.EntityData{ID: review.ID, Name: review.SubjectName, Status: status},
	})
	return s.reviewRepo.GetByID(ctx, review.ID)
}
