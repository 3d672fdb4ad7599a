package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/api"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/types"
)

var _ UserService = (*UserServiceImpl)(nil)

// UserService defines the interface for user account operations.
type UserService interface {
	ListUsers(ctx context.Context) ([]types.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error)

	// CreateUser provisions an account; a missing password falls back to
	// the onboarding default so HR can hand out initial credentials.
	CreateUser(ctx context.Context, params types.CreateUserParams) (*types.User, error)

	UpdateUser(ctx context.Context, userID uuid.UUID, params types.UpdateUserParams) (*types.User, error)

	// DeleteUser removes an account. hr identities can never be deleted;
	// the attempt fails with api.ErrForbidden before any repository call.
	DeleteUser(ctx context.Context, userID uuid.UUID) error

	// CompleteFirstLogin finishes the mandatory onboarding flow. All four
	// fields are validated before any repository call.
	CompleteFirstLogin(ctx context.Context, userID uuid.UUID, data types.FirstLoginData, idProofURL string) (*types.User, error)
}

// UserServiceImpl implements the UserService interface.
type UserServiceImpl struct {
	logger *slog.Logger
	repo   UserRepo
}

func NewUserService(repo UserRepo, logger *slog.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]types.User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	return s.repo.GetUser(ctx, userID)
}

func (s *UserServiceImpl) CreateUser(ctx context.Context, params types.CreateUserParams) (*types.User, error) {
	if strings.TrimSpace(params.Email) == "" || strings.TrimSpace(params.Name) == "" {
		return nil, fmt.Errorf("email and name are required: %w", api.ErrValidation)
	}
	if !params.Role.Valid() {
		return nil, fmt.Errorf("role must be employee or hr: %w", api.ErrValidation)
	}

	password := params.Password
	if password == "" {
		password = "password123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, params, string(hash))
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "User created",
		slog.String("userID", user.ID.String()), slog.String("role", string(user.Role)))
	return user, nil
}

func (s *UserServiceImpl) UpdateUser(ctx context.Context, userID uuid.UUID, params types.UpdateUserParams) (*types.User, error) {
	return s.repo.UpdateUser(ctx, userID, params)
}

func (s *UserServiceImpl) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	target, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if target.Role == types.RoleHR {
		s.logger.WarnContext(ctx, "Refusing to delete hr account", slog.String("userID", userID.String()))
		return fmt.Errorf("hr accounts cannot be deleted: %w", api.ErrForbidden)
	}
	return s.repo.DeleteUser(ctx, userID)
}

func (s *UserServiceImpl) CompleteFirstLogin(ctx context.Context, userID uuid.UUID, data types.FirstLoginData, idProofURL string) (*types.User, error) {
	if strings.TrimSpace(data.Name) == "" ||
		strings.TrimSpace(data.Phone) == "" ||
		strings.TrimSpace(data.Address) == "" ||
		idProofURL == "" {
		return nil, fmt.Errorf("name, phone, address and id proof are required: %w", api.ErrValidation)
	}

	user, err := s.repo.CompleteFirstLogin(ctx, userID, data.Name, data.Phone, data.Address, idProofURL)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "First login completed", slog.String("userID", userID.String()))
	return user, nil
}
