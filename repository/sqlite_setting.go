package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dixis/dixis/database"
	"github.com/dixis/dixis/models"
)

type sqliteSettingRepo struct {
	db database.TxQuerier
}

func NewSQLiteSettingRepo(db database.TxQuerier) SettingRepository {
	return &sqliteSettingRepo{db: db}
}

const settingColumns = `SELECT key, value, group_name, is_secret, updated_by, updated_at FROM settings`

func scanSetting(row interface{ Scan(...any) error }, s *models.Setting) error {
	return row.Scan(&s.Key, &s.Value, &s.Group, &s.IsSecret, &s.UpdatedBy, &s.UpdatedAt)
}

func (r *sqliteSettingRepo) All(ctx context.Context) ([]models.Setting, error) {
	rows, err := r.db.QueryContext(ctx, settingColumns+` ORDER BY group_name, key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return collect(rows, func(rs *sql.Rows, s *models.Setting) error { return scanSetting(rs, s) })
}

func (r *sqliteSettingRepo) Get(ctx context.Context, key string) (*models.Setting, error) {
	s := &models.Setting{}
	if err := scanSetting(r.db.QueryRowContext(ctx, settingColumns+` WHERE key = ?`, key), s); err != nil {
		return nil, notFound(err, "setting")
	}
	return s, nil
}

func (r *sqliteSettingRepo) Upsert(ctx context.Context, s *models.Setting) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO settings (key, value, group_name, is_secret, updated_by, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			group_name = excluded.group_name,
			is_secret = excluded.is_secret,
			updated_by = excluded.updated_by,
			updated_at = excluded.updated_at
		RETURNING updated_at`,
		s.Key, s.Value, s.Group, s.IsSecret, s.UpdatedBy).Scan(&s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert setting: %w", err)
	}
	return nil
}
