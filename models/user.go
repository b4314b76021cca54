package models

import (
	"strings"
	"time"

	"github.com/dixis/dixis/pkg"
)

type Role string

const (
	RoleConsumer     Role = "consumer"
	RoleProducer     Role = "producer"
	RoleBusinessUser Role = "business_user"
	RoleAdmin        Role = "admin"
)

// User is an account. PasswordHash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        *string   `json:"phone"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Language     string    `json:"language"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user may use the admin API.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// UserSummary is the embedded form of a user in other resources.
type UserSummary struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
	Role  Role    `json:"role,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	v := pkg.ValidationErrors{}
	required(v, "email", r.Email)
	required(v, "password", r.Password)
	return v.Err()
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// CreateAdminRequest is used by the ops CLI to bootstrap administrators.
type CreateAdminRequest struct {
	Name     string
	Email    string
	Password string
}

func (r *CreateAdminRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))

	v := pkg.ValidationErrors{}
	if required(v, "name", r.Name) {
		maxLen(v, "name", r.Name, 255)
	}
	if required(v, "email", r.Email) {
		validEmail(v, "email", r.Email)
	}
	if len(r.Password) < 8 {
		v.Add("password", "must be at least 8 characters")
	}
	return v.Err()
}
