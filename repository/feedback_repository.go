package repository

import (
	"context"
	"time"

	"github.com/dixis/dixis/models"
)

// ReviewRepository reads and moderates product and producer reviews.
type ReviewRepository interface {
	List(ctx context.Context, f models.ReviewFilter) ([]models.Review, int, error)
	GetByID(ctx context.Context, id int64) (*models.Review, error)
	Moderate(ctx context.Context, id int64, status string, notes *string, approvedAt *time.Time) error
	Delete(ctx context.Context, id int64) error
	CountPending(ctx context.Context) (int, error)
}

// QuestionRepository reads and answers customer questions.
type QuestionRepository interface {
	List(ctx context.Context, f models.QuestionFilter) ([]models.Question, int, error)
	GetByID(ctx context.Context, id int64) (*models.Question, error)
	Update(ctx context.Context, q *models.Question) error
	Delete(ctx context.Context, id int64) error
	CountUnanswered(ctx context.Context) (int, error)
}
