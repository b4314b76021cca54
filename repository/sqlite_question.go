package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dixis/dixis/database"
	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
)

type sqliteQuestionRepo struct {
	db database.TxQuerier
}

func NewSQLiteQuestionRepo(db database.TxQuerier) QuestionRepository {
	return &sqliteQuestionRepo{db: db}
}

var questionFrom = ` FROM questions q` + subjectJoins("q")

const questionColumns = `
	SELECT q.id, q.type, q.subject_id, COALESCE(sp.name, sd.business_name, ''), q.user_id, q.question,
	       q.answer, q.answered_at, q.answered_by, q.is_visible, q.created_at, q.updated_at,
	       u.name, u.email`

func scanQuestion(row interface{ Scan(...any) error }, q *models.Question) error {
	u := &models.UserSummary{}
	err := row.Scan(&q.ID, &q.Type, &q.SubjectID, &q.SubjectName, &q.UserID, &q.Question,
		&q.Answer, &q.AnsweredAt, &q.AnsweredBy, &q.IsVisible, &q.CreatedAt, &q.UpdatedAt,
		&u.Name, &u.Email)
	if err != nil {
		return err
	}
	u.ID = q.UserID
	q.User = u
	return nil
}

func (r *sqliteQuestionRepo) List(ctx context.Context, f models.QuestionFilter) ([]models.Question, int, error) {
	var w where
	if f.Type != "" {
		w.add("q.type = ?", f.Type)
	}
	switch f.Status {
	case "answered":
		w.add("q.answer IS NOT NULL AND q.answer != ''")
	case "unanswered":
		w.add("(q.answer IS NULL OR q.answer = '')")
	}
	w.search(f.Search, "q.question", "q.answer", "u.name", "sp.name", "sd.business_name")

	total, err := count(ctx, r.db, `SELECT COUNT(*)`+questionFrom+w.String(), w.args...)
	if err != nil {
		return nil, 0, err
	}

	query := questionColumns + questionFrom + w.String() + " ORDER BY q.created_at DESC, q.id DESC"
	if f.Page.PerPage > 0 {
		query += pageClause(f.Page)
	}
	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}
	list, err := collect(rows, func(rs *sql.Rows, q *models.Question) error { return scanQuestion(rs, q) })
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *sqliteQuestionRepo) GetByID(ctx context.Context, id int64) (*models.Question, error) {
	q := &models.Question{}
	err := scanQuestion(r.db.QueryRowContext(ctx, questionColumns+questionFrom+` WHERE q.id = ?`, id), q)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: question", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return q, nil
}

func (r *sqliteQuestionRepo) Update(ctx context.Context, q *models.Question) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE questions SET answer = ?, answered_at = ?, answered_by = ?, is_visible = ?,
		       updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, q.Answer, database.FormatTimePtr(q.AnsweredAt), q.AnsweredBy, q.IsVisible, q.ID)
	if err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteQuestionRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteQuestionRepo) CountUnanswered(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM questions WHERE answer IS NULL OR answer = ''`)
}
