package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dixis/dixis/database"
	"github.com/dixis/dixis/models"
)

type sqliteNotificationRepo struct {
	db database.TxQuerier
}

func NewSQLiteNotificationRepo(db database.TxQuerier) NotificationRepository {
	return &sqliteNotificationRepo{db: db}
}

func (r *sqliteNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO notifications (user_id, type, title, message, data)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, created_at`,
		n.UserID, n.Type, n.Title, n.Message, n.Data).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *sqliteNotificationRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]models.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, type, title, message, data, read_at, created_at
		FROM notifications WHERE user_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return collect(rows, func(rs *sql.Rows, n *models.Notification) error {
		return rs.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Data, &n.ReadAt, &n.CreatedAt)
	})
}
