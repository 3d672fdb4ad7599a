package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/crypto/bcrypt"

	"github.com/vanshjaggi/PIXs-Onboarding-Platform/app/observability/metrics"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/config"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/api"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/types"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService defines the interface for authentication operations.
type AuthService interface {
	// Login verifies the credential triple and returns the authenticated
	// user plus a signed access token. The requested role must match the
	// stored role; any mismatch is answered with api.ErrUnauthenticated so
	// callers cannot probe which part of the triple was wrong.
	Login(ctx context.Context, email, password string, role types.Role) (*types.User, string, error)

	// Logout invalidates the caller's session. Tokens are stateless, so
	// this only exists to give the client a place to report logout; the
	// client clears its local session regardless of the outcome.
	Logout(ctx context.Context, userID string) error

	// ResetPassword acknowledges a reset request. The response message is
	// identical whether or not the email matches an account.
	ResetPassword(ctx context.Context, email string) (string, error)
}

// AuthServiceImpl implements the AuthService interface.
type AuthServiceImpl struct {
	logger  *slog.Logger
	repo    AuthRepo
	jwtCfg  config.JWTConfig
	metrics *metrics.AppMetrics
}

func NewAuthService(repo AuthRepo, jwtCfg config.JWTConfig, logger *slog.Logger, m *metrics.AppMetrics) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger:  logger,
		repo:    repo,
		jwtCfg:  jwtCfg,
		metrics: m,
	}
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string, role types.Role) (*types.User, string, error) {
	l := s.logger.With(slog.String("method", "Login"), slog.String("email", email))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			s.countLogin(ctx, "failure")
			return nil, "", fmt.Errorf("invalid credentials: %w", api.ErrUnauthenticated)
		}
		return nil, "", fmt.Errorf("login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.countLogin(ctx, "failure")
		return nil, "", fmt.Errorf("invalid credentials: %w", api.ErrUnauthenticated)
	}

	// A valid employee credential presented under the hr role (or vice
	// versa) must fail exactly like a bad password.
	if user.Role != role {
		l.WarnContext(ctx, "Login role mismatch", slog.String("requested_role", string(role)))
		s.countLogin(ctx, "failure")
		return nil, "", fmt.Errorf("invalid credentials: %w", api.ErrUnauthenticated)
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate access token: %w", err)
	}

	l.InfoContext(ctx, "Login successful", slog.String("userID", user.ID.String()), slog.String("role", string(user.Role)))
	s.countLogin(ctx, "success")
	return user, token, nil
}

func (s *AuthServiceImpl) Logout(ctx context.Context, userID string) error {
	s.logger.InfoContext(ctx, "Logout", slog.String("userID", userID))
	return nil
}

func (s *AuthServiceImpl) ResetPassword(ctx context.Context, email string) (string, error) {
	// Deliberately do not reveal whether the account exists.
	if _, err := s.repo.GetUserByEmail(ctx, email); err != nil && !errors.Is(err, api.ErrNotFound) {
		return "", fmt.Errorf("reset password: %w", err)
	}
	return "Password reset instructions sent to your email.", nil
}

func (s *AuthServiceImpl) generateAccessToken(user *types.User) (string, error) {
	now := time.Now()
	claims := types.Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.jwtCfg.Issuer,
			Audience:  jwt.ClaimStrings{s.jwtCfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.AccessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtCfg.SecretKey))
}

func (s *AuthServiceImpl) countLogin(ctx context.Context, outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.LoginAttemptsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
