package user

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/api"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/api/auth"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/types"
)

// Onboarding id-proof upload limits, enforced server-side as well as in the
// portal form.
const maxIDProofSize = 10 << 20 // 10MB

var allowedIDProofTypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/png":       {},
}

type UserHandler struct {
	service UserService
	logger  *slog.Logger
}

func NewUserHandler(service UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		logger:  logger,
		service: service,
	}
}

func parseUserID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

// ListUsers handles GET /users.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list users", slog.Any("error", err))
		api.ErrorResponse(w, r, api.StatusFromError(err), "failed to list users")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{"users": users})
}

// CreateUser handles POST /users.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var params types.CreateUserParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.CreateUser(r.Context(), params)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to create user", slog.Any("error", err))
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, map[string]interface{}{"user": user})
}

// UpdateUser handles PATCH /users/{id}. HR may edit anyone; employees may
// only edit themselves.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid user id")
		return
	}
	if !h.callerMayAct(r, userID) {
		api.ErrorResponse(w, r, http.StatusForbidden, "you may only edit your own profile")
		return
	}

	var params types.UpdateUserParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.UpdateUser(r.Context(), userID, params)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to update user", slog.Any("error", err))
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{"user": user})
}

// DeleteUser handles DELETE /users/{id}.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.service.DeleteUser(r.Context(), userID); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to delete user", slog.Any("error", err))
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// CompleteProfile handles PATCH /users/{id}/complete-profile (multipart).
func (h *UserHandler) CompleteProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid user id")
		return
	}
	if !h.callerMayAct(r, userID) {
		api.ErrorResponse(w, r, http.StatusForbidden, "you may only complete your own profile")
		return
	}

	if err := r.ParseMultipartForm(maxIDProofSize); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}

	data := types.FirstLoginData{
		Name:    r.FormValue("name"),
		Phone:   r.FormValue("phone"),
		Address: r.FormValue("address"),
	}

	var idProofURL string
	file, header, err := r.FormFile("idProof")
	if err == nil {
		defer file.Close()
		contentType := header.Header.Get("Content-Type")
		if _, ok := allowedIDProofTypes[contentType]; !ok {
			api.ErrorResponse(w, r, http.StatusBadRequest, "id proof must be PDF, JPG or PNG")
			return
		}
		if header.Size > maxIDProofSize {
			api.ErrorResponse(w, r, http.StatusBadRequest, "id proof must be 10MB or smaller")
			return
		}
		// Storage is external; keep an opaque reference to the upload.
		idProofURL = fmt.Sprintf("/files/id-proofs/%s-%s", uuid.New(), header.Filename)
	}

	user, err := h.service.CompleteFirstLogin(r.Context(), userID, data, idProofURL)
	if err != nil {
		if errors.Is(err, api.ErrValidation) {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "Failed to complete first login", slog.Any("error", err))
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{"user": user})
}

// callerMayAct reports whether the authenticated caller is HR or the target
// account itself.
func (h *UserHandler) callerMayAct(r *http.Request, target uuid.UUID) bool {
	role, _ := auth.GetUserRoleFromContext(r.Context())
	if role == types.RoleHR {
		return true
	}
	callerID, ok := auth.GetUserIDFromContext(r.Context())
	return ok && callerID == target.String()
}
