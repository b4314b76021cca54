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

type sqliteUserRepo struct {
	db database.TxQuerier
}

func NewSQLiteUserRepo(db database.TxQuerier) UserRepository {
	return &sqliteUserRepo{db: db}
}

const userColumns = `id, name, email, phone, password_hash, role, language, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }, u *models.User) error {
	return row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.Language, &u.CreatedAt, &u.UpdatedAt)
}

func (r *sqliteUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.Language == "" {
		user.Language = "el"
	}
	query := `
		INSERT INTO users (name, email, phone, password_hash, role, language)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Name, user.Email, user.Phone, user.PasswordHash, user.Role, user.Language,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email already in use", pkg.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *sqliteUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id), user)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

func (r *sqliteUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email), user)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user", pkg.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (r *sqliteUserRepo) PromoteToAdmin(ctx context.Context, id int64, name, passwordHash string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET role = 'admin', name = ?, password_hash = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, name, passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to promote user: %w", err)
	}
	return affectedOne(result)
}
