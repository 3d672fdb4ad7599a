package auth

import (
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/types"
)

// LoginResponse is the JSON payload returned by POST /auth/login.
type LoginResponse struct {
	Success bool        `json:"success"`
	User    *types.User `json:"user,omitempty"`
	Token   string      `json:"token,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ResetPasswordRequest is the JSON body for POST /auth/reset-password.
type ResetPasswordRequest struct {
	Email string `json:"email"`
}

// Response is a generic success/error payload.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
