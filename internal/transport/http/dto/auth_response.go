package dto

import (
	"time"

	"github.com/caseflow/auth-service/internal/domain"
)

// UserView is the standard user payload for auth-service responses.
// The password hash is deliberately absent.
type UserView struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstname"`
	LastName  string     `json:"lastname"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

func NewUserView(u domain.User) UserView {
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		LastLogin: u.LastLogin,
	}
}

// TokenView is the standard session token payload.
type TokenView struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"` // "Bearer"
	ExpiresIn int64  `json:"expires_in"` // seconds
}

// SessionData is returned by signup and signin.
type SessionData struct {
	User  UserView `json:"user"`
	Token string   `json:"token"`
	// Kept alongside the flat token for clients that want expiry metadata.
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

// MeData is returned by /auth/me.
type MeData struct {
	User UserView `json:"user"`
}

// MessageData is the generic {message} payload.
type MessageData struct {
	Message string `json:"message"`
}

// ForgotPasswordData echoes the raw reset token in development mode only.
type ForgotPasswordData struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

// Admin action payloads.

type SetUserRoleData struct {
	Status string `json:"status"`
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type SetUserActiveData struct {
	Status string `json:"status"`
	UserID string `json:"user_id"`
}

type RevokeSessionsData struct {
	Status string `json:"status"`
	UserID string `json:"user_id"`
}
