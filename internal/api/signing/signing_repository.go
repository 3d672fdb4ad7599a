package signing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/api"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/types"
)

var _ SigningRepo = (*PostgresSigningRepo)(nil)

// PGX is the subset of pgxpool.Pool the repository needs. pgxmock satisfies
// it too, which keeps the repository testable without a live database.
type PGX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// SigningRepo defines the contract for signing request persistence.
type SigningRepo interface {
	// ListRequests returns requests newest first, optionally filtered to
	// one employee. Documents are loaded for every returned request.
	ListRequests(ctx context.Context, employeeID *uuid.UUID) ([]types.SigningRequest, error)

	// GetRequest retrieves one request with its documents. Returns
	// api.ErrNotFound if absent.
	GetRequest(ctx context.Context, requestID uuid.UUID) (*types.SigningRequest, error)

	// CreateRequest inserts the request and its documents in one
	// transaction.
	CreateRequest(ctx context.Context, req *types.SigningRequest) (*types.SigningRequest, error)

	// DeleteRequest removes a pending request. Returns api.ErrNotFound if
	// the request is absent, api.ErrInvalidTransition if it is signed.
	DeleteRequest(ctx context.Context, requestID uuid.UUID) error

	// SignRequest transitions pending -> signed, stamping signed_at.
	// Returns api.ErrNotFound if absent, api.ErrInvalidTransition if the
	// request is already signed.
	SignRequest(ctx context.Context, requestID uuid.UUID, signedAt time.Time) (*types.SigningRequest, error)
}

type PostgresSigningRepo struct {
	logger *slog.Logger
	db     PGX
}

func NewPostgresSigningRepo(db PGX, logger *slog.Logger) *PostgresSigningRepo {
	return &PostgresSigningRepo{
		logger: logger,
		db:     db,
	}
}

const requestColumns = `id, title, description, status, created_at, updated_at,
       employee_id, employee_name, employee_email, created_by, signed_at, expires_at`

func scanRequest(row pgx.Row) (*types.SigningRequest, error) {
	var req types.SigningRequest
	err := row.Scan(
		&req.ID,
		&req.Title,
		&req.Description,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
		&req.EmployeeID,
		&req.EmployeeName,
		&req.EmployeeEmail,
		&req.CreatedBy,
		&req.SignedAt,
		&req.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *PostgresSigningRepo) ListRequests(ctx context.Context, employeeID *uuid.UUID) ([]types.SigningRequest, error) {
	ctx, span := otel.Tracer("SigningRepo").Start(ctx, "ListRequests", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "signing_requests"),
	))
	defer span.End()

	query := fmt.Sprintf("SELECT %s FROM signing_requests", requestColumns)
	var args []interface{}
	if employeeID != nil {
		query += " WHERE employee_id = $1"
		args = append(args, *employeeID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: query failed: %w", err)
	}
	defer rows.Close()

	var requests []types.SigningRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("list requests: scan failed: %w", err)
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list requests: rows error: %w", err)
	}

	for i := range requests {
		docs, err := r.listDocuments(ctx, requests[i].ID)
		if err != nil {
			return nil, err
		}
		requests[i].Documents = docs
	}
	return requests, nil
}

func (r *PostgresSigningRepo) GetRequest(ctx context.Context, requestID uuid.UUID) (*types.SigningRequest, error) {
	req, err := scanRequest(r.db.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM signing_requests WHERE id = $1", requestColumns), requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("signing request %s: %w", requestID, api.ErrNotFound)
		}
		return nil, fmt.Errorf("get request: query failed: %w", err)
	}

	docs, err := r.listDocuments(ctx, requestID)
	if err != nil {
		return nil, err
	}
	req.Documents = docs
	return req, nil
}

func (r *PostgresSigningRepo) listDocuments(ctx context.Context, requestID uuid.UUID) ([]types.Document, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, url, type, size, uploaded_at
		FROM documents WHERE request_id = $1 ORDER BY uploaded_at`, requestID)
	if err != nil {
		return nil, fmt.Errorf("list documents: query failed: %w", err)
	}
	defer rows.Close()

	var docs []types.Document
	for rows.Next() {
		var doc types.Document
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.URL, &doc.Type, &doc.Size, &doc.UploadedAt); err != nil {
			return nil, fmt.Errorf("list documents: scan failed: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: rows error: %w", err)
	}
	return docs, nil
}

func (r *PostgresSigningRepo) CreateRequest(ctx context.Context, req *types.SigningRequest) (*types.SigningRequest, error) {
	ctx, span := otel.Tracer("SigningRepo").Start(ctx, "CreateRequest", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "signing_requests"),
	))
	defer span.End()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("create request: begin failed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := fmt.Sprintf(`
		INSERT INTO signing_requests
			(title, description, status, employee_id, employee_name, employee_email, created_by, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s`, requestColumns)

	created, err := scanRequest(tx.QueryRow(ctx, query,
		req.Title, req.Description, types.StatusPending,
		req.EmployeeID, req.EmployeeName, req.EmployeeEmail,
		req.CreatedBy, req.ExpiresAt))
	if err != nil {
		return nil, fmt.Errorf("create request: insert failed: %w", err)
	}

	created.Documents = make([]types.Document, 0, len(req.Documents))
	for _, doc := range req.Documents {
		var inserted types.Document
		err := tx.QueryRow(ctx, `
			INSERT INTO documents (request_id, name, url, type, size)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, name, url, type, size, uploaded_at`,
			created.ID, doc.Name, doc.URL, doc.Type, doc.Size,
		).Scan(&inserted.ID, &inserted.Name, &inserted.URL, &inserted.Type, &inserted.Size, &inserted.UploadedAt)
		if err != nil {
			return nil, fmt.Errorf("create request: document insert failed: %w", err)
		}
		created.Documents = append(created.Documents, inserted)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("create request: commit failed: %w", err)
	}
	return created, nil
}

func (r *PostgresSigningRepo) DeleteRequest(ctx context.Context, requestID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		"DELETE FROM signing_requests WHERE id = $1 AND status = $2", requestID, types.StatusPending)
	if err != nil {
		return fmt.Errorf("delete request: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.resolveNoOp(ctx, requestID, "delete")
	}
	return nil
}

func (r *PostgresSigningRepo) SignRequest(ctx context.Context, requestID uuid.UUID, signedAt time.Time) (*types.SigningRequest, error) {
	ctx, span := otel.Tracer("SigningRepo").Start(ctx, "SignRequest", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "signing_requests"),
	))
	defer span.End()

	// The status guard makes the transition atomic; concurrent signs race
	// on the same row and exactly one wins.
	tag, err := r.db.Exec(ctx, `
		UPDATE signing_requests
		SET status = $1, signed_at = $2, updated_at = $2
		WHERE id = $3 AND status = $4`,
		types.StatusSigned, signedAt, requestID, types.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("sign request: update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, r.resolveNoOp(ctx, requestID, "sign")
	}
	return r.GetRequest(ctx, requestID)
}

// resolveNoOp disambiguates a zero-row status-guarded write: either the
// request does not exist, or it is already signed.
func (r *PostgresSigningRepo) resolveNoOp(ctx context.Context, requestID uuid.UUID, op string) error {
	var status types.RequestStatus
	err := r.db.QueryRow(ctx,
		"SELECT status FROM signing_requests WHERE id = $1", requestID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("signing request %s: %w", requestID, api.ErrNotFound)
		}
		return fmt.Errorf("%s request: status lookup failed: %w", op, err)
	}
	return fmt.Errorf("cannot %s request in status %q: %w", op, status, api.ErrInvalidTransition)
}
