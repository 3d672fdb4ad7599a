package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/api"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/types"
)

var _ Repository = (*RemoteRepository)(nil)

// TokenSource supplies the current bearer token, empty when logged out.
type TokenSource func() string

// RemoteRepository talks to the portal API over HTTP. Every call is bounded
// by the configured timeout and failures are mapped onto the shared
// sentinel errors.
type RemoteRepository struct {
	client  *http.Client
	baseURL string
	token   TokenSource
	logger  *slog.Logger
}

func NewRemoteRepository(baseURL string, timeout time.Duration, token TokenSource, logger *slog.Logger) *RemoteRepository {
	return &RemoteRepository{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		logger:  logger,
	}
}

func (r *RemoteRepository) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token := r.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// do executes the request and decodes a successful JSON body into out.
// out may be nil for empty responses.
func (r *RemoteRepository) do(req *http.Request, out interface{}) error {
	resp, err := r.client.Do(req)
	if err != nil {
		return mapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return statusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w: %w", err, api.ErrTransport)
	}
	return nil
}

func mapTransportError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return fmt.Errorf("request timed out: %w", api.ErrTimeout)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", api.ErrTimeout)
	}
	return fmt.Errorf("request failed: %w: %w", err, api.ErrTransport)
}

func statusError(resp *http.Response) error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	msg := payload.Error
	if msg == "" {
		msg = payload.Message
	}
	if msg == "" {
		msg = resp.Status
	}

	var sentinel error
	switch resp.StatusCode {
	case http.StatusNotFound:
		sentinel = api.ErrNotFound
	case http.StatusUnauthorized:
		sentinel = api.ErrUnauthenticated
	case http.StatusForbidden:
		sentinel = api.ErrForbidden
	case http.StatusBadRequest:
		sentinel = api.ErrValidation
	case http.StatusConflict:
		sentinel = api.ErrInvalidTransition
	case http.StatusGatewayTimeout:
		sentinel = api.ErrTimeout
	default:
		sentinel = api.ErrTransport
	}
	return fmt.Errorf("%s: %w", msg, sentinel)
}

func (r *RemoteRepository) postJSON(ctx context.Context, path string, in, out interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := r.newRequest(ctx, http.MethodPost, path, bytes.NewReader(data), "application/json")
	if err != nil {
		return err
	}
	return r.do(req, out)
}

func (r *RemoteRepository) Login(ctx context.Context, email, password string, role types.Role) (*types.LoginResponse, error) {
	data, err := json.Marshal(types.LoginRequest{Email: email, Password: password, Role: role})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := r.newRequest(ctx, http.MethodPost, "/auth/login", bytes.NewReader(data), "application/json")
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, mapTransportError(err)
	}
	defer resp.Body.Close()

	// A 401 still carries a well-formed login payload; rejection is an
	// answer, not a transport failure.
	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusUnauthorized {
		var login types.LoginResponse
		if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
			return nil, fmt.Errorf("decode login response: %w: %w", err, api.ErrTransport)
		}
		return &login, nil
	}
	return nil, statusError(resp)
}

func (r *RemoteRepository) Logout(ctx context.Context) error {
	req, err := r.newRequest(ctx, http.MethodPost, "/auth/logout", nil, "")
	if err != nil {
		return err
	}
	return r.do(req, nil)
}

func (r *RemoteRepository) ResetPassword(ctx context.Context, email string) (*types.ResetPasswordResponse, error) {
	var out types.ResetPasswordResponse
	if err := r.postJSON(ctx, "/auth/reset-password", map[string]string{"email": email}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *RemoteRepository) ListUsers(ctx context.Context) ([]types.User, error) {
	req, err := r.newRequest(ctx, http.MethodGet, "/users", nil, "")
	if err != nil {
		return nil, err
	}
	var out struct {
		Users []types.User `json:"users"`
	}
	if err := r.do(req, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (r *RemoteRepository) CreateUser(ctx context.Context, params types.CreateUserParams) (*types.User, error) {
	var out struct {
		User *types.User `json:"user"`
	}
	if err := r.postJSON(ctx, "/users", params, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (r *RemoteRepository) UpdateUser(ctx context.Context, userID uuid.UUID, params types.UpdateUserParams) (*types.User, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := r.newRequest(ctx, http.MethodPatch, "/users/"+userID.String(), bytes.NewReader(data), "application/json")
	if err != nil {
		return nil, err
	}
	var out struct {
		User *types.User `json:"user"`
	}
	if err := r.do(req, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (r *RemoteRepository) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	req, err := r.newRequest(ctx, http.MethodDelete, "/users/"+userID.String(), nil, "")
	if err != nil {
		return err
	}
	return r.do(req, nil)
}

func (r *RemoteRepository) CompleteFirstLogin(ctx context.Context, userID uuid.UUID, data types.FirstLoginData) (*types.User, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	_ = writer.WriteField("name", data.Name)
	_ = writer.WriteField("phone", data.Phone)
	_ = writer.WriteField("address", data.Address)
	if data.IDProof != nil {
		part, err := createFilePart(writer, "idProof", data.IDProof.Name, data.IDProof.ContentType)
		if err != nil {
			return nil, fmt.Errorf("build upload: %w", err)
		}
		if _, err := io.Copy(part, data.IDProof.Reader); err != nil {
			return nil, fmt.Errorf("read id proof: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}

	req, err := r.newRequest(ctx, http.MethodPatch,
		"/users/"+userID.String()+"/complete-profile", &buf, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}
	var out struct {
		User *types.User `json:"user"`
	}
	if err := r.do(req, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (r *RemoteRepository) ListRequests(ctx context.Context, employeeID *uuid.UUID) ([]types.SigningRequest, error) {
	path := "/signing-requests"
	if employeeID != nil {
		path += "?userId=" + url.QueryEscape(employeeID.String())
	}
	req, err := r.newRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}
	var out struct {
		Requests []types.SigningRequest `json:"requests"`
	}
	if err := r.do(req, &out); err != nil {
		return nil, err
	}
	return out.Requests, nil
}

func (r *RemoteRepository) GetRequest(ctx context.Context, requestID uuid.UUID) (*types.SigningRequest, error) {
	req, err := r.newRequest(ctx, http.MethodGet, "/signing-requests/"+requestID.String(), nil, "")
	if err != nil {
		return nil, err
	}
	var out struct {
		Request *types.SigningRequest `json:"request"`
	}
	if err := r.do(req, &out); err != nil {
		return nil, err
	}
	return out.Request, nil
}

func (r *RemoteRepository) CreateRequest(ctx context.Context, params types.CreateRequestParams) (*types.SigningRequest, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	_ = writer.WriteField("title", params.Title)
	_ = writer.WriteField("description", params.Description)
	_ = writer.WriteField("employeeId", params.EmployeeID.String())
	if !params.ExpiresAt.IsZero() {
		_ = writer.WriteField("expiresAt", params.ExpiresAt.Format(time.RFC3339))
	}
	for _, doc := range params.Documents {
		part, err := createFilePart(writer, "documents", doc.Name, doc.ContentType)
		if err != nil {
			return nil, fmt.Errorf("build upload: %w", err)
		}
		if _, err := io.Copy(part, doc.Reader); err != nil {
			return nil, fmt.Errorf("read document %q: %w", doc.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}

	req, err := r.newRequest(ctx, http.MethodPost, "/signing-requests", &buf, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}
	var out struct {
		Request *types.SigningRequest `json:"request"`
	}
	if err := r.do(req, &out); err != nil {
		return nil, err
	}
	return out.Request, nil
}

func (r *RemoteRepository) DeleteRequest(ctx context.Context, requestID uuid.UUID) error {
	req, err := r.newRequest(ctx, http.MethodDelete, "/signing-requests/"+requestID.String(), nil, "")
	if err != nil {
		return err
	}
	return r.do(req, nil)
}

func (r *RemoteRepository) SignRequest(ctx context.Context, requestID uuid.UUID) (*types.SigningRequest, error) {
	req, err := r.newRequest(ctx, http.MethodPost, "/signing-requests/"+requestID.String()+"/sign", nil, "")
	if err != nil {
		return nil, err
	}
	var out struct {
		Request *types.SigningRequest `json:"request"`
	}
	if err := r.do(req, &out); err != nil {
		return nil, err
	}
	return out.Request, nil
}

// createFilePart adds a file part carrying the upload's own content type
// instead of the default application/octet-stream.
func createFilePart(w *multipart.Writer, field, filename, contentType string) (io.Writer, error) {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	return w.CreatePart(h)
}
