package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dixis/dixis/database"
	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
)

type sqliteReviewRepo struct {
	db database.TxQuerier
}

func NewSQLiteReviewRepo(db database.TxQuerier) ReviewRepository {
	return &sqliteReviewRepo{db: db}
}

// subjectJoins resolves the reviewed product or producer of alias t.
func subjectJoins(t string) string {
	return `
	LEFT JOIN products sp ON ` + t + `.type = 'product' AND sp.id = ` + t + `.subject_id
	LEFT JOIN producers sd ON ` + t + `.type = 'producer' AND sd.id = ` + t + `.subject_id
	JOIN users u ON u.id = ` + t + `.user_id`
}

var reviewFrom = ` FROM reviews r` + subjectJoins("r")

const reviewColumns = `
	SELECT r.id, r.type, r.subject_id, COALESCE(sp.name, sd.business_name, ''), r.user_id, r.rating,
	       r.title, r.comment, r.status, r.admin_notes, r.approved_at, r.created_at, r.updated_at,
	       u.name, u.email`

func scanReview(row interface{ Scan(...any) error }, rv *models.Review) error {
	u := &models.UserSummary{}
	err := row.Scan(&rv.ID, &rv.Type, &rv.SubjectID, &rv.SubjectName, &rv.UserID, &rv.Rating,
		&rv.Title, &rv.Comment, &rv.Status, &rv.AdminNotes, &rv.ApprovedAt, &rv.CreatedAt, &rv.UpdatedAt,
		&u.Name, &u.Email)
	if err != nil {
		return err
	}
	u.ID = rv.UserID
	rv.User = u
	return nil
}

func (r *sqliteReviewRepo) List(ctx context.Context, f models.ReviewFilter) ([]models.Review, int, error) {
	var w where
	if f.Type != "" {
		w.add("r.type = ?", f.Type)
	}
	if f.Status != "" {
		w.add("r.status = ?", f.Status)
	}
	if f.Rating != nil {
		w.add("r.rating = ?", *f.Rating)
	}
	if f.DateFrom != nil {
		w.add("r.created_at >= ?", database.FormatTime(*f.DateFrom))
	}
	if f.DateTo != nil {
		w.add("r.created_at < ?", database.FormatTime(*f.DateTo))
	}
	w.search(f.Search, "r.comment", "u.name", "sp.name", "sd.business_name")

	total, err := count(ctx, r.db, `SELECT COUNT(*)`+reviewFrom+w.String(), w.args...)
	if err != nil {
		return nil, 0, err
	}

	query := reviewColumns + reviewFrom + w.String() + " ORDER BY r.created_at DESC, r.id DESC"
	if f.Page.PerPage > 0 {
		query += pageClause(f.Page)
	}
	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	list, err := collect(rows, func(rs *sql.Rows, rv *models.Review) error { return scanReview(rs, rv) })
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *sqliteReviewRepo) GetByID(ctx context.Context, id int64) (*models.Review, error) {
	rv := &models.Review{}
	err := scanReview(r.db.QueryRowContext(ctx, reviewColumns+reviewFrom+` WHERE r.id = ?`, id), rv)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: review", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return rv, nil
}

func (r *sqliteReviewRepo) Moderate(ctx context.Context, id int64, status string, notes *string, approvedAt *time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE reviews SET status = ?, admin_notes = ?, approved_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, status, notes, database.FormatTimePtr(approvedAt), id)
	if err != nil {
		return fmt.Errorf("failed to moderate review: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteReviewRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return affectedOne(result)
}

func (r *sqliteReviewRepo) CountPending(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM reviews WHERE status = 'pending'`)
}
