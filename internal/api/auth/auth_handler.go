package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/api"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/types"
)

type AuthHandler struct {
	service AuthService
	logger  *slog.Logger
}

func NewAuthHandler(service AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		logger:  logger,
		service: service,
	}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Email == "" || req.Password == "" || !req.Role.Valid() {
		api.ErrorResponse(w, r, http.StatusBadRequest, "email, password and role are required")
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, api.ErrUnauthenticated) {
			// The portal login form renders this message verbatim.
			api.WriteJSONResponse(w, r, http.StatusUnauthorized, LoginResponse{
				Success: false,
				Message: "Invalid credentials",
			})
			return
		}
		h.logger.ErrorContext(r.Context(), "Login failed", slog.Any("error", err))
		api.ErrorResponse(w, r, api.StatusFromError(err), "login failed")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, LoginResponse{
		Success: true,
		User:    user,
		Token:   token,
	})
}

// Logout handles POST /auth/logout (bearer).
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	if err := h.service.Logout(r.Context(), userID); err != nil {
		h.logger.ErrorContext(r.Context(), "Logout failed", slog.Any("error", err))
		api.ErrorResponse(w, r, api.StatusFromError(err), "logout failed")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, Response{Success: true})
}

// ResetPassword handles POST /auth/reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Email == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "email is required")
		return
	}

	message, err := h.service.ResetPassword(r.Context(), req.Email)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Password reset failed", slog.Any("error", err))
		api.ErrorResponse(w, r, api.StatusFromError(err), "password reset failed")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.ResetPasswordResponse{
		Success: true,
		Message: message,
	})
}
