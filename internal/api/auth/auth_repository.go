package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/api"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/types"
)

var _ AuthRepo = (*PostgresAuthRepo)(nil)

// AuthRepo defines the contract for credential lookup.
type AuthRepo interface {
	// GetUserByEmail retrieves a user including the password hash.
	// Returns api.ErrNotFound if no account matches.
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
}

type PostgresAuthRepo struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
}

func NewPostgresAuthRepo(pgpool *pgxpool.Pool, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	var user types.User
	query := `
		SELECT id, email, role, name, phone, address, id_proof_url,
		       has_completed_first_login, password_hash, created_at, updated_at
		FROM users WHERE email = $1
	`
	err := r.pgpool.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.Role,
		&user.Name,
		&user.Phone,
		&user.Address,
		&user.IDProofURL,
		&user.HasCompletedFirstLogin,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", email, api.ErrNotFound)
		}
		return nil, fmt.Errorf("get user by email: query failed: %w", err)
	}

	return &user, nil
}
