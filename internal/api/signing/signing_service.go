package signing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/vanshjaggi/PIXs-Onboarding-Platform/app/observability/metrics"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/api"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/api/user"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/types"
)

// Attached documents are limited to common contract formats.
const maxDocumentSize = 25 << 20 // 25MB

var allowedDocumentTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
}

const defaultExpiryDays = 30

var _ SigningService = (*SigningServiceImpl)(nil)

// Actor identifies the authenticated caller for authorization decisions.
type Actor struct {
	ID   uuid.UUID
	Role types.Role
}

// SigningService defines the interface for signing request operations.
// Employees only ever see their own requests; HR sees everything.
type SigningService interface {
	// ListRequests returns requests visible to the actor. An employee's
	// list is always scoped to their own requests regardless of filter.
	ListRequests(ctx context.Context, actor Actor, employeeID *uuid.UUID) ([]types.SigningRequest, error)

	// GetRequest returns one request. Employees get api.ErrForbidden for
	// requests addressed to someone else.
	GetRequest(ctx context.Context, actor Actor, requestID uuid.UUID) (*types.SigningRequest, error)

	// CreateRequest validates the submission, resolves the target
	// employee and persists the request with a denormalized employee
	// snapshot. HR only.
	CreateRequest(ctx context.Context, actor Actor, params types.CreateRequestParams) (*types.SigningRequest, error)

	// DeleteRequest removes a pending request. HR only.
	DeleteRequest(ctx context.Context, actor Actor, requestID uuid.UUID) error

	// SignRequest transitions the actor's own pending request to signed.
	// Only the recipient employee may sign; HR cannot sign on anyone's
	// behalf.
	SignRequest(ctx context.Context, actor Actor, requestID uuid.UUID) (*types.SigningRequest, error)
}

// SigningServiceImpl implements the SigningService interface.
type SigningServiceImpl struct {
	logger   *slog.Logger
	repo     SigningRepo
	userRepo user.UserRepo
	metrics  *metrics.AppMetrics
}

func NewSigningService(repo SigningRepo, userRepo user.UserRepo, m *metrics.AppMetrics, logger *slog.Logger) *SigningServiceImpl {
	return &SigningServiceImpl{
		logger:   logger,
		repo:     repo,
		userRepo: userRepo,
		metrics:  m,
	}
}

func (s *SigningServiceImpl) ListRequests(ctx context.Context, actor Actor, employeeID *uuid.UUID) ([]types.SigningRequest, error) {
	if actor.Role != types.RoleHR {
		// Employees are always scoped to themselves.
		employeeID = &actor.ID
	}
	return s.repo.ListRequests(ctx, employeeID)
}

func (s *SigningServiceImpl) GetRequest(ctx context.Context, actor Actor, requestID uuid.UUID) (*types.SigningRequest, error) {
	req, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if actor.Role != types.RoleHR && req.EmployeeID != actor.ID {
		s.logger.WarnContext(ctx, "Blocked access to another employee's request",
			slog.String("actorID", actor.ID.String()), slog.String("requestID", requestID.String()))
		return nil, fmt.Errorf("request %s is not addressed to you: %w", requestID, api.ErrForbidden)
	}
	return req, nil
}

func (s *SigningServiceImpl) CreateRequest(ctx context.Context, actor Actor, params types.CreateRequestParams) (*types.SigningRequest, error) {
	if actor.Role != types.RoleHR {
		return nil, fmt.Errorf("only hr may create signing requests: %w", api.ErrForbidden)
	}
	if strings.TrimSpace(params.Title) == "" || strings.TrimSpace(params.Description) == "" {
		return nil, fmt.Errorf("title and description are required: %w", api.ErrValidation)
	}
	if params.EmployeeID == uuid.Nil {
		return nil, fmt.Errorf("employeeId is required: %w", api.ErrValidation)
	}
	if len(params.Documents) == 0 {
		return nil, fmt.Errorf("at least one document is required: %w", api.ErrValidation)
	}
	for _, doc := range params.Documents {
		if _, ok := allowedDocumentTypes[doc.ContentType]; !ok {
			return nil, fmt.Errorf("document %q: type %q not allowed, use PDF, DOC or DOCX: %w",
				doc.Name, doc.ContentType, api.ErrValidation)
		}
		if doc.Size > maxDocumentSize {
			return nil, fmt.Errorf("document %q exceeds the 25MB limit: %w", doc.Name, api.ErrValidation)
		}
	}

	employee, err := s.userRepo.GetUser(ctx, params.EmployeeID)
	if err != nil {
		return nil, err
	}

	expiresAt := params.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = time.Now().AddDate(0, 0, defaultExpiryDays)
	}

	req := &types.SigningRequest{
		Title:         params.Title,
		Description:   params.Description,
		EmployeeID:    employee.ID,
		EmployeeName:  employee.Name,
		EmployeeEmail: employee.Email,
		CreatedBy:     actor.ID,
		ExpiresAt:     expiresAt,
	}
	for _, upload := range params.Documents {
		// Storage is external; keep an opaque reference per document.
		req.Documents = append(req.Documents, types.Document{
			Name: upload.Name,
			URL:  fmt.Sprintf("/files/documents/%s-%s", uuid.New(), upload.Name),
			Type: upload.ContentType,
			Size: upload.Size,
		})
	}

	created, err := s.repo.CreateRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Signing request created",
		slog.String("requestID", created.ID.String()),
		slog.String("employeeID", created.EmployeeID.String()))
	return created, nil
}

func (s *SigningServiceImpl) DeleteRequest(ctx context.Context, actor Actor, requestID uuid.UUID) error {
	if actor.Role != types.RoleHR {
		return fmt.Errorf("only hr may delete signing requests: %w", api.ErrForbidden)
	}
	return s.repo.DeleteRequest(ctx, requestID)
}

func (s *SigningServiceImpl) SignRequest(ctx context.Context, actor Actor, requestID uuid.UUID) (*types.SigningRequest, error) {
	req, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	// The signature is the recipient's alone; nobody signs for them.
	if req.EmployeeID != actor.ID {
		return nil, fmt.Errorf("request %s is not addressed to you: %w", requestID, api.ErrForbidden)
	}

	signed, err := s.repo.SignRequest(ctx, requestID, time.Now())
	if err != nil {
		return nil, err
	}
	s.countSign(ctx)
	s.logger.InfoContext(ctx, "Signing request signed",
		slog.String("requestID", requestID.String()), slog.String("actorID", actor.ID.String()))
	return signed, nil
}

func (s *SigningServiceImpl) countSign(ctx context.Context) {
	if s.metrics == nil || s.metrics.SignRequestsTotal == nil {
		return
	}
	s.metrics.SignRequestsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("outcome", "signed")))
}
