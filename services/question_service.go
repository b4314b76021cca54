package services

import (
	"context"
	"time"

	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/repository"
	"github.com/dixis/dixis/ws"
)

type QuestionService interface {
	List(ctx context.Context, f models.QuestionFilter) (pkg.Page[models.Question], error)
	Unanswered(ctx context.Context, subjectType string) ([]models.Question, int, error)
	Get(ctx context.Context, id int64) (*models.Question, error)
	// Update answers or hides a question on behalf of adminID.
	Update(ctx context.Context, id, adminID int64, req *models.UpdateQuestionRequest) (*models.Question, error)
	Delete(ctx context.Context, id int64) error
}

type questionService struct {
	questionRepo repository.QuestionRepository
	hub          ws.EventPublisher
	now          func() time.Time
}

func NewQuestionService(questionRepo repository.QuestionRepository, hub ws.EventPublisher) QuestionService {
	return &questionService{questionRepo: questionRepo, hub: hub, now: time.Now}
}

func (s *questionService) List(ctx context.Context, f models.QuestionFilter) (pkg.Page[models.Question], error) {
	if err := models.ValidateSubjectType(f.Type); err != nil {
		return pkg.Page[models.Question]{}, err
	}
	questions, total, err := s.questionRepo.List(ctx, f)
	if err != nil {
		return pkg.Page[models.Question]{}, err
	}
	return pkg.NewPage(questions, total, f.Page), nil
}

func (s *questionService) Unanswered(ctx context.Context, subjectType string) ([]models.Question, int, error) {
	if err := models.ValidateSubjectType(subjectType); err != nil {
		return nil, 0, err
	}
	questions, total, err := s.questionRepo.List(ctx, models.QuestionFilter{Type: subjectType, Status: "unanswered"})
	if err != nil {
		return nil, 0, err
	}
	return nonNil(questions), total, nil
}

func (s *questionService) Get(ctx context.Context, id int64) (*models.Question, error) {
	return s.questionRepo.GetByID(ctx, id)
}

func (s *questionService) Update(ctx context.Context, id, adminID int64, req *models.UpdateQuestionRequest) (*models.Question, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	q, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	answered := false
	switch {
	case req.Clears():
		q.Answer, q.AnsweredAt, q.AnsweredBy = nil, nil, nil
	case req.Answer.Set:
		now := s.now()
		q.Answer = req.Answer.Value
		q.AnsweredAt = &now
		q.AnsweredBy = &adminID
		answered = true
	}
	if req.IsVisible != nil {
		q.IsVisible = *req.IsVisible
	}

	if err := s.questionRepo.Update(ctx, q); err != nil {
		return nil, err
	}

	if answered {
		s.hub.BroadcastToAll(ws.Event{
			Op:   ws.OpQuestionAnswered,
			Data: ws.EntityData{ID: q.ID, Name: q.SubjectName},
		})
	}
	return s.questionRepo.GetByID(ctx, id)
}

func (s *questionService) Delete(ctx context.Context, id int64) error {
	return s.questionRepo.Delete(ctx, id)
}
