package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/api"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/types"
)

const uniqueViolationCode = "23505"

var _ UserRepo = (*PostgresUserRepo)(nil)

// UserRepo defines the contract for user account persistence.
type UserRepo interface {
	// ListUsers returns all accounts ordered by creation time.
	ListUsers(ctx context.Context) ([]types.User, error)

	// GetUser retrieves one account. Returns api.ErrNotFound if absent.
	GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error)

	// CreateUser inserts a new account; the database assigns id and
	// timestamps. Returns api.ErrConflict on a duplicate email.
	CreateUser(ctx context.Context, params types.CreateUserParams, passwordHash string) (*types.User, error)

	// UpdateUser applies a partial update; unspecified fields retain
	// their prior values.
	UpdateUser(ctx context.Context, userID uuid.UUID, params types.UpdateUserParams) (*types.User, error)

	// DeleteUser removes an account. Returns api.ErrNotFound if absent.
	// Role protection lives in the service layer.
	DeleteUser(ctx context.Context, userID uuid.UUID) error

	// CompleteFirstLogin sets the onboarding fields and flips
	// has_completed_first_login in a single statement.
	CompleteFirstLogin(ctx context.Context, userID uuid.UUID, name, phone, address, idProofURL string) (*types.User, error)
}

type PostgresUserRepo struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
}

func NewPostgresUserRepo(pgpool *pgxpool.Pool, logger *slog.Logger) *PostgresUserRepo {
	return &PostgresUserRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

const userColumns = `id, email, role, name, phone, address, id_proof_url,
       has_completed_first_login, password_hash, created_at, updated_at`

func scanUser(row pgx.Row) (*types.User, error) {
	var user types.User
	err := row.Scan(
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
		return nil, err
	}
	return &user, nil
}

func (r *PostgresUserRepo) ListUsers(ctx context.Context) ([]types.User, error) {
	rows, err := r.pgpool.Query(ctx,
		fmt.Sprintf("SELECT %s FROM users ORDER BY created_at", userColumns))
	if err != nil {
		return nil, fmt.Errorf("list users: query failed: %w", err)
	}
	defer rows.Close()

	var users []types.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list users: scan failed: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: rows error: %w", err)
	}
	return users, nil
}

func (r *PostgresUserRepo) GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	user, err := scanUser(r.pgpool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns), userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", userID, api.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: query failed: %w", err)
	}
	return user, nil
}

func (r *PostgresUserRepo) CreateUser(ctx context.Context, params types.CreateUserParams, passwordHash string) (*types.User, error) {
	query := fmt.Sprintf(`
		INSERT INTO users (email, role, name, phone, address, password_hash, has_completed_first_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s`, userColumns)

	// HR-created accounts start as completed only for the hr role itself;
	// employees go through onboarding on first login.
	completed := params.Role == types.RoleHR

	user, err := scanUser(r.pgpool.QueryRow(ctx, query,
		params.Email, params.Role, params.Name, params.Phone, params.Address, passwordHash, completed))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, fmt.Errorf("email %s already registered: %w", params.Email, api.ErrConflict)
		}
		return nil, fmt.Errorf("create user: insert failed: %w", err)
	}
	return user, nil
}

func (r *PostgresUserRepo) UpdateUser(ctx context.Context, userID uuid.UUID, params types.UpdateUserParams) (*types.User, error) {
	ctx, span := otel.Tracer("UserRepo").Start(ctx, "UpdateUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "UpdateUser"), slog.String("userID", userID.String()))

	var setClauses []string
	var args []interface{}
	argID := 1

	if params.Email != nil {
		setClauses = append(setClauses, fmt.Sprintf("email = $%d", argID))
		args = append(args, *params.Email)
		argID++
	}
	if params.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argID))
		args = append(args, *params.Name)
		argID++
	}
	if params.Phone != nil {
		setClauses = append(setClauses, fmt.Sprintf("phone = $%d", argID))
		args = append(args, *params.Phone)
		argID++
	}
	if params.Address != nil {
		setClauses = append(setClauses, fmt.Sprintf("address = $%d", argID))
		args = append(args, *params.Address)
		argID++
	}
	if params.HasCompletedFirstLogin != nil {
		setClauses = append(setClauses, fmt.Sprintf("has_completed_first_login = $%d", argID))
		args = append(args, *params.HasCompletedFirstLogin)
		argID++
	}

	if len(setClauses) == 0 {
		l.WarnContext(ctx, "UpdateUser called with no fields to update")
		return r.GetUser(ctx, userID)
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argID))
	args = append(args, time.Now())
	argID++
	args = append(args, userID)

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), argID, userColumns)

	user, err := scanUser(r.pgpool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", userID, api.ErrNotFound)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, fmt.Errorf("email already registered: %w", api.ErrConflict)
		}
		return nil, fmt.Errorf("update user: update failed: %w", err)
	}
	return user, nil
}

func (r *PostgresUserRepo) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, "DELETE FROM users WHERE id = $1", userID)
	if err != nil {
		return fmt.Errorf("delete user: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", userID, api.ErrNotFound)
	}
	return nil
}

func (r *PostgresUserRepo) CompleteFirstLogin(ctx context.Context, userID uuid.UUID, name, phone, address, idProofURL string) (*types.User, error) {
	query := fmt.Sprintf(`
		UPDATE users
		SET name = $1, phone = $2, address = $3, id_proof_url = $4,
		    has_completed_first_login = TRUE, updated_at = $5
		WHERE id = $6
		RETURNING %s`, userColumns)

	user, err := scanUser(r.pgpool.QueryRow(ctx, query, name, phone, address, idProofURL, time.Now(), userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", userID, api.ErrNotFound)
		}
		return nil, fmt.Errorf("complete first login: update failed: %w", err)
	}
	return user, nil
}
