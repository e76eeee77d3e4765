package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenLoginRequest signs in with a Firebase ID token minted on the device.
type TokenLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// ManualLoginRequest signs in an office or parent account registered outside
// the identity provider.
type ManualLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued session token and resolved identity.
type LoginResponse struct {
	AccessToken string     `json:"access_token"`
	ExpiresIn   int64      `json:"expires_in"`
	IssuedAt    time.Time  `json:"issued_at"`
	User        UserInfo   `json:"user"`
	RoleSource  RoleSource `json:"role_source"`
}

// RegisterRequest provisions a profile for a fresh identity-provider account.
type RegisterRequest struct {
	IDToken  string `json:"id_token" validate:"required"`
	FullName string `json:"full_name" validate:"required"`
}

// ChangePasswordRequest updates the identity-provider password. The current
// credential must be presented again; for Firebase accounts that is a fresh
// ID token, for manual accounts the current password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	IDToken         string `json:"id_token"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	UID      string   `json:"uid"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
}

// Session is the snapshot persisted in the local tier after login.
type Session struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Role      UserRole  `json:"role"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// JWTClaims represents the session token payload.
type JWTClaims struct {
	UID   string   `json:"uid"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
	jwt.RegisteredClaims
}
