package portal

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/vanshjaggi/PIXs-Onboarding-Platform/app/observability/metrics"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/types"
)

var _ Repository = (*FallbackRepository)(nil)

// FallbackRepository tries the remote API first and silently degrades to
// the mock dataset on any remote failure, so the portal keeps answering
// when the backend is down. List reads additionally keep a short-lived
// last-known-good copy; a remote outage then serves the data the caller
// saw moments ago instead of jumping straight to the mock seed.
type FallbackRepository struct {
	remote  Repository
	mock    Repository
	cache   *cache.Cache
	logger  *slog.Logger
	metrics *metrics.AppMetrics
}

func NewFallbackRepository(remote, mock Repository, cacheTTL time.Duration, m *metrics.AppMetrics, logger *slog.Logger) *FallbackRepository {
	return &FallbackRepository{
		remote:  remote,
		mock:    mock,
		cache:   cache.New(cacheTTL, 2*cacheTTL),
		logger:  logger,
		metrics: m,
	}
}

func (f *FallbackRepository) fellBack(ctx context.Context, op string, err error) {
	f.logger.WarnContext(ctx, "Remote repository failed, answering from mock",
		slog.String("operation", op), slog.Any("error", err))
	if f.metrics == nil || f.metrics.FallbacksTotal == nil {
		return
	}
	f.metrics.FallbacksTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("operation", op)))
}

func (f *FallbackRepository) Login(ctx context.Context, email, password string, role types.Role) (*types.LoginResponse, error) {
	resp, err := f.remote.Login(ctx, email, password, role)
	if err == nil {
		return resp, nil
	}
	f.fellBack(ctx, "login", err)
	return f.mock.Login(ctx, email, password, role)
}

func (f *FallbackRepository) Logout(ctx context.Context) error {
	if err := f.remote.Logout(ctx); err != nil {
		// Logout never fails from the caller's view; the local session
		// is cleared regardless of what the server said.
		f.fellBack(ctx, "logout", err)
	}
	return nil
}

func (f *FallbackRepository) ResetPassword(ctx context.Context, email string) (*types.ResetPasswordResponse, error) {
	resp, err := f.remote.ResetPassword(ctx, email)
	if err == nil {
		return resp, nil
	}
	f.fellBack(ctx, "reset-password", err)
	return f.mock.ResetPassword(ctx, email)
}

const usersCacheKey = "users"

func requestsCacheKey(employeeID *uuid.UUID) string {
	if employeeID == nil {
		return "requests"
	}
	return "requests:" + employeeID.String()
}

func (f *FallbackRepository) ListUsers(ctx context.Context) ([]types.User, error) {
	users, err := f.remote.ListUsers(ctx)
	if err == nil {
		f.cache.SetDefault(usersCacheKey, users)
		return users, nil
	}
	f.fellBack(ctx, "list-users", err)
	if cached, ok := f.cache.Get(usersCacheKey); ok {
		return cached.([]types.User), nil
	}
	return f.mock.ListUsers(ctx)
}

func (f *FallbackRepository) CreateUser(ctx context.Context, params types.CreateUserParams) (*types.User, error) {
	user, err := f.remote.CreateUser(ctx, params)
	if err == nil {
		f.cache.Delete(usersCacheKey)
		return user, nil
	}
	f.fellBack(ctx, "create-user", err)
	return f.mock.CreateUser(ctx, params)
}

func (f *FallbackRepository) UpdateUser(ctx context.Context, userID uuid.UUID, params types.UpdateUserParams) (*types.User, error) {
	user, err := f.remote.UpdateUser(ctx, userID, params)
	if err == nil {
		f.cache.Delete(usersCacheKey)
		return user, nil
	}
	f.fellBack(ctx, "update-user", err)
	return f.mock.UpdateUser(ctx, userID, params)
}

func (f *FallbackRepository) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	err := f.remote.DeleteUser(ctx, userID)
	if err == nil {
		f.cache.Delete(usersCacheKey)
		return nil
	}
	f.fellBack(ctx, "delete-user", err)
	return f.mock.DeleteUser(ctx, userID)
}

func (f *FallbackRepository) CompleteFirstLogin(ctx context.Context, userID uuid.UUID, data types.FirstLoginData) (*types.User, error) {
	user, err := f.remote.CompleteFirstLogin(ctx, userID, data)
	if err == nil {
		f.cache.Delete(usersCacheKey)
		return user, nil
	}
	f.fellBack(ctx, "complete-first-login", err)
	return f.mock.CompleteFirstLogin(ctx, userID, data)
}

func (f *FallbackRepository) ListRequests(ctx context.Context, employeeID *uuid.UUID) ([]types.SigningRequest, error) {
	key := requestsCacheKey(employeeID)
	requests, err := f.remote.ListRequests(ctx, employeeID)
	if err == nil {
		f.cache.SetDefault(key, requests)
		return requests, nil
	}
	f.fellBack(ctx, "list-requests", err)
	if cached, ok := f.cache.Get(key); ok {
		return cached.([]types.SigningRequest), nil
	}
	return f.mock.ListRequests(ctx, employeeID)
}

func (f *FallbackRepository) GetRequest(ctx context.Context, requestID uuid.UUID) (*types.SigningRequest, error) {
	req, err := f.remote.GetRequest(ctx, requestID)
	if err == nil {
		return req, nil
	}
	f.fellBack(ctx, "get-request", err)
	return f.mock.GetRequest(ctx, requestID)
}

func (f *FallbackRepository) CreateRequest(ctx context.Context, params types.CreateRequestParams) (*types.SigningRequest, error) {
	req, err := f.remote.CreateRequest(ctx, params)
	if err == nil {
		f.cache.Flush()
		return req, nil
	}
	f.fellBack(ctx, "create-request", err)
	return f.mock.CreateRequest(ctx, params)
}

func (f *FallbackRepository) DeleteRequest(ctx context.Context, requestID uuid.UUID) error {
	err := f.remote.DeleteRequest(ctx, requestID)
	if err == nil {
		f.cache.Flush()
		return nil
	}
	f.fellBack(ctx, "delete-request", err)
	return f.mock.DeleteRequest(ctx, requestID)
}

func (f *FallbackRepository) SignRequest(ctx context.Context, requestID uuid.UUID) (*types.SigningRequest, error) {
	req, err := f.remote.SignRequest(ctx, requestID)
	if err == nil {
		f.cache.Flush()
		return req, nil
	}
	f.fellBack(ctx, "sign-request", err)
	return f.mock.SignRequest(ctx, requestID)
}
