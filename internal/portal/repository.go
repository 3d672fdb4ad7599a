// Package portal is the client-side data layer: a remote HTTP repository
// backed by the portal API, a deterministic in-memory mock, and a fallback
// decorator that silently degrades from remote to mock so the portal keeps
// working when the backend is unreachable.
package portal

import (
	"context"

	"github.com/google/uuid"

	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/types"
)

// Repository is the portal's full data surface. Implementations map
// failures onto the shared api sentinel errors so callers can branch on
// errors.Is without knowing which backend answered.
type Repository interface {
	// Login authenticates the credential triple. A wrong email, password
	// or role all produce the same failed response.
	Login(ctx context.Context, email, password string, role types.Role) (*types.LoginResponse, error)
	Logout(ctx context.Context) error
	ResetPassword(ctx context.Context, email string) (*types.ResetPasswordResponse, error)

	ListUsers(ctx context.Context) ([]types.User, error)
	CreateUser(ctx context.Context, params types.CreateUserParams) (*types.User, error)
	UpdateUser(ctx context.Context, userID uuid.UUID, params types.UpdateUserParams) (*types.User, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error
	CompleteFirstLogin(ctx context.Context, userID uuid.UUID, data types.FirstLoginData) (*types.User, error)

	ListRequests(ctx context.Context, employeeID *uuid.UUID) ([]types.SigningRequest, error)
	GetRequest(ctx context.Context, requestID uuid.UUID) (*types.SigningRequest, error)
	CreateRequest(ctx context.Context, params types.CreateRequestParams) (*types.SigningRequest, error)
	DeleteRequest(ctx context.Context, requestID uuid.UUID) error
	SignRequest(ctx context.Context, requestID uuid.UUID) (*types.SigningRequest, error)
}
