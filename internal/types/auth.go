package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest is the credential triple the portal login form submits. The
// requested role must match the stored role or authentication fails.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// LoginResponse mirrors the portal API's login payload.
type LoginResponse struct {
	Success bool   `json:"success"`
	User    *User  `json:"user,omitempty"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
}

// ResetPasswordResponse confirms a password-reset request. The message is
// intentionally the same whether or not the email matched an account.
type ResetPasswordResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Claims are the custom claims carried by issued access tokens.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"eml"`
	Role   Role   `json:"rol"`
	jwt.RegisteredClaims
}
