// Package repository is the SQLite data access layer. Each entity has an
// interface consumed by services and a sqliteXRepo implementation built on
// database.TxQuerier, so the same code runs inside or outside a transaction.
package repository

import (
	"context"

	"github.com/dixis/dixis/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// PromoteToAdmin sets role admin and replaces the password hash.
	PromoteToAdmin(ctx context.Context, id int64, name, passwordHash string) error
}
