package signing

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/api"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/api/auth"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/types"
)

const maxCreateFormSize = 32 << 20

type SigningHandler struct {
	service SigningService
	logger  *slog.Logger
}

func NewSigningHandler(service SigningService, logger *slog.Logger) *SigningHandler {
	return &SigningHandler{
		logger:  logger,
		service: service,
	}
}

func actorFromContext(r *http.Request) (Actor, bool) {
	idStr, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		return Actor{}, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return Actor{}, false
	}
	role, ok := auth.GetUserRoleFromContext(r.Context())
	if !ok {
		return Actor{}, false
	}
	return Actor{ID: id, Role: role}, true
}

// ListRequests handles GET /signing-requests. HR may narrow with ?userId=;
// employees always get their own requests.
func (h *SigningHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var filter *uuid.UUID
	if raw := r.URL.Query().Get("userId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, "invalid userId filter")
			return
		}
		filter = &id
	}

	requests, err := h.service.ListRequests(r.Context(), actor, filter)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list signing requests", slog.Any("error", err))
		api.ErrorResponse(w, r, api.StatusFromError(err), "failed to list requests")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{"requests": requests})
}

// GetRequest handles GET /signing-requests/{id}.
func (h *SigningHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid request id")
		return
	}

	req, err := h.service.GetRequest(r.Context(), actor, requestID)
	if err != nil {
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{"request": req})
}

// CreateRequest handles POST /signing-requests (multipart).
func (h *SigningHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := r.ParseMultipartForm(maxCreateFormSize); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}

	params := types.CreateRequestParams{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}
	if raw := r.FormValue("employeeId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, "invalid employeeId")
			return
		}
		params.EmployeeID = id
	}
	if raw := r.FormValue("expiresAt"); raw != "" {
		expiresAt, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, "expiresAt must be RFC 3339")
			return
		}
		params.ExpiresAt = expiresAt
	}

	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["documents"] {
			file, err := header.Open()
			if err != nil {
				api.ErrorResponse(w, r, http.StatusBadRequest, "could not read uploaded document")
				return
			}
			defer file.Close()
			params.Documents = append(params.Documents, types.FileUpload{
				Name:        header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Size:        header.Size,
				Reader:      file,
			})
		}
	}

	created, err := h.service.CreateRequest(r.Context(), actor, params)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to create signing request", slog.Any("error", err))
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, map[string]interface{}{"request": created})
}

// DeleteRequest handles DELETE /signing-requests/{id}.
func (h *SigningHandler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid request id")
		return
	}

	if err := h.service.DeleteRequest(r.Context(), actor, requestID); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to delete signing request", slog.Any("error", err))
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// SignRequest handles POST /signing-requests/{id}/sign.
func (h *SigningHandler) SignRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invalid request id")
		return
	}

	signed, err := h.service.SignRequest(r.Context(), actor, requestID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to sign request", slog.Any("error", err))
		api.ErrorResponse(w, r, api.StatusFromError(err), err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{"request": signed})
}
