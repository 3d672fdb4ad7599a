package portal

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/api"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/types"
)

var _ Repository = (*MockRepository)(nil)

const mockPassword = "password123"

// Password reset always answers the same message so the response never
// reveals whether an account exists.
const resetMessage = "Password reset instructions sent to your email."

// MockRepository answers every operation from a deterministic in-memory
// dataset. It backs offline and demo mode and is the fallback target when
// the remote API is unreachable. The seed matches the development database
// seed, so both backends answer identically.
type MockRepository struct {
	mu       sync.Mutex
	users    map[uuid.UUID]types.User
	requests map[uuid.UUID]types.SigningRequest
	now      func() time.Time
}

func mustUUID(s string) uuid.UUID {
	return uuid.MustParse(s)
}

func strPtr(s string) *string { return &s }

func NewMockRepository() *MockRepository {
	seedTime := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	newUserTime := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	signedAt := time.Date(2024, 1, 12, 9, 15, 0, 0, time.UTC)

	johnID := mustUUID("00000000-0000-0000-0000-000000000001")
	janeID := mustUUID("00000000-0000-0000-0000-000000000002")
	newID := mustUUID("00000000-0000-0000-0000-000000000003")

	m := &MockRepository{
		users:    make(map[uuid.UUID]types.User),
		requests: make(map[uuid.UUID]types.SigningRequest),
		now:      time.Now,
	}

	m.users[johnID] = types.User{
		ID: johnID, Email: "employee@company.com", Role: types.RoleEmployee,
		Name: "John Doe", Phone: strPtr("+1234567890"),
		Address:                strPtr("123 Main St, City, State"),
		HasCompletedFirstLogin: true,
		CreatedAt:              seedTime, UpdatedAt: seedTime,
	}
	m.users[janeID] = types.User{
		ID: janeID, Email: "hr@company.com", Role: types.RoleHR,
		Name: "Jane Smith", Phone: strPtr("+1987654321"),
		Address:                strPtr("456 Admin Ave, City, State"),
		HasCompletedFirstLogin: true,
		CreatedAt:              seedTime, UpdatedAt: seedTime,
	}
	m.users[newID] = types.User{
		ID: newID, Email: "newuser@company.com", Role: types.RoleEmployee,
		Name:                   "New Employee",
		HasCompletedFirstLogin: false,
		CreatedAt:              newUserTime, UpdatedAt: newUserTime,
	}

	contractID := mustUUID("10000000-0000-0000-0000-000000000001")
	ndaID := mustUUID("10000000-0000-0000-0000-000000000002")
	handbookID := mustUUID("10000000-0000-0000-0000-000000000003")

	m.requests[contractID] = types.SigningRequest{
		ID: contractID, Title: "Employment Contract",
		Description: "Please review and sign your employment contract",
		Status:      types.StatusPending,
		EmployeeID:  johnID, EmployeeName: "John Doe", EmployeeEmail: "employee@company.com",
		CreatedBy: janeID,
		CreatedAt: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		ExpiresAt: time.Date(2024, 2, 14, 10, 0, 0, 0, time.UTC),
		Documents: []types.Document{{
			ID:   mustUUID("20000000-0000-0000-0000-000000000001"),
			Name: "employment-contract.pdf", URL: "/files/requests/employment-contract.pdf",
			Type: "application/pdf", Size: 1024000,
			UploadedAt: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		}},
	}
	m.requests[ndaID] = types.SigningRequest{
		ID: ndaID, Title: "NDA Agreement",
		Description: "Non-disclosure agreement for sensitive information",
		Status:      types.StatusSigned,
		EmployeeID:  johnID, EmployeeName: "John Doe", EmployeeEmail: "employee@company.com",
		CreatedBy: janeID,
		CreatedAt: time.Date(2024, 1, 10, 14, 30, 0, 0, time.UTC),
		UpdatedAt: signedAt,
		SignedAt:  &signedAt,
		ExpiresAt: time.Date(2024, 2, 9, 14, 30, 0, 0, time.UTC),
		Documents: []types.Document{{
			ID:   mustUUID("20000000-0000-0000-0000-000000000002"),
			Name: "nda-agreement.pdf", URL: "/files/requests/nda-agreement.pdf",
			Type: "application/pdf", Size: 512000,
			UploadedAt: time.Date(2024, 1, 10, 14, 30, 0, 0, time.UTC),
		}},
	}
	m.requests[handbookID] = types.SigningRequest{
		ID: handbookID, Title: "Employee Handbook Acknowledgment",
		Description: "Please acknowledge that you have received and will comply with the employee handbook",
		Status:      types.StatusPending,
		EmployeeID:  newID, EmployeeName: "New Employee", EmployeeEmail: "newuser@company.com",
		CreatedBy: janeID,
		CreatedAt: time.Date(2024, 1, 20, 11, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 20, 11, 0, 0, 0, time.UTC),
		ExpiresAt: time.Date(2024, 2, 19, 11, 0, 0, 0, time.UTC),
		Documents: []types.Document{{
			ID:   mustUUID("20000000-0000-0000-0000-000000000003"),
			Name: "employee-handbook.pdf", URL: "/files/requests/employee-handbook.pdf",
			Type: "application/pdf", Size: 2048000,
			UploadedAt: time.Date(2024, 1, 20, 11, 0, 0, 0, time.UTC),
		}},
	}

	return m
}

func (m *MockRepository) Login(_ context.Context, email, password string, role types.Role) (*types.LoginResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) && password == mockPassword && u.Role == role {
			user := u
			return &types.LoginResponse{
				Success: true,
				User:    &user,
				Token:   "mock-token-" + uuid.NewString(),
			}, nil
		}
	}
	return &types.LoginResponse{Success: false, Message: "Invalid credentials"}, nil
}

func (m *MockRepository) Logout(_ context.Context) error {
	return nil
}

func (m *MockRepository) ResetPassword(_ context.Context, _ string) (*types.ResetPasswordResponse, error) {
	return &types.ResetPasswordResponse{Success: true, Message: resetMessage}, nil
}

func (m *MockRepository) ListUsers(_ context.Context) ([]types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := make([]types.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID.String() < users[j].ID.String()
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (m *MockRepository) CreateUser(_ context.Context, params types.CreateUserParams) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, params.Email) {
			return nil, fmt.Errorf("email %s already registered: %w", params.Email, api.ErrConflict)
		}
	}

	now := m.now()
	user := types.User{
		ID:                     uuid.New(),
		Email:                  params.Email,
		Role:                   params.Role,
		Name:                   params.Name,
		Phone:                  params.Phone,
		Address:                params.Address,
		HasCompletedFirstLogin: params.Role == types.RoleHR,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	m.users[user.ID] = user
	return &user, nil
}

func (m *MockRepository) UpdateUser(_ context.Context, userID uuid.UUID, params types.UpdateUserParams) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, api.ErrNotFound)
	}
	if params.Email != nil {
		user.Email = *params.Email
	}
	if params.Name != nil {
		user.Name = *params.Name
	}
	if params.Phone != nil {
		user.Phone = params.Phone
	}
	if params.Address != nil {
		user.Address = params.Address
	}
	if params.HasCompletedFirstLogin != nil {
		user.HasCompletedFirstLogin = *params.HasCompletedFirstLogin
	}
	user.UpdatedAt = m.now()
	m.users[userID] = user
	return &user, nil
}

func (m *MockRepository) DeleteUser(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, api.ErrNotFound)
	}
	if user.Role == types.RoleHR {
		return fmt.Errorf("hr accounts cannot be deleted: %w", api.ErrForbidden)
	}
	delete(m.users, userID)
	return nil
}

func (m *MockRepository) CompleteFirstLogin(_ context.Context, userID uuid.UUID, data types.FirstLoginData) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, api.ErrNotFound)
	}

	user.Name = data.Name
	user.Phone = strPtr(data.Phone)
	user.Address = strPtr(data.Address)
	if data.IDProof != nil {
		user.IDProofURL = strPtr(fmt.Sprintf("/files/id-proofs/%s-%s", uuid.New(), data.IDProof.Name))
	}
	user.HasCompletedFirstLogin = true
	user.UpdatedAt = m.now()
	m.users[userID] = user
	return &user, nil
}

func (m *MockRepository) ListRequests(_ context.Context, employeeID *uuid.UUID) ([]types.SigningRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var requests []types.SigningRequest
	for _, req := range m.requests {
		if employeeID != nil && req.EmployeeID != *employeeID {
			continue
		}
		requests = append(requests, req)
	}
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].CreatedAt.After(requests[j].CreatedAt)
	})
	return requests, nil
}

func (m *MockRepository) GetRequest(_ context.Context, requestID uuid.UUID) (*types.SigningRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.requests[requestID]
	if !ok {
		return nil, fmt.Errorf("signing request %s: %w", requestID, api.ErrNotFound)
	}
	return &req, nil
}

func (m *MockRepository) CreateRequest(_ context.Context, params types.CreateRequestParams) (*types.SigningRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	employee, ok := m.users[params.EmployeeID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", params.EmployeeID, api.ErrNotFound)
	}

	now := m.now()
	expiresAt := params.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = now.AddDate(0, 0, 30)
	}

	req := types.SigningRequest{
		ID:            uuid.New(),
		Title:         params.Title,
		Description:   params.Description,
		Status:        types.StatusPending,
		EmployeeID:    employee.ID,
		EmployeeName:  employee.Name,
		EmployeeEmail: employee.Email,
		CreatedAt:     now,
		UpdatedAt:     now,
		ExpiresAt:     expiresAt,
	}
	for _, upload := range params.Documents {
		req.Documents = append(req.Documents, types.Document{
			ID:         uuid.New(),
			Name:       upload.Name,
			URL:        fmt.Sprintf("/files/documents/%s-%s", uuid.New(), upload.Name),
			Type:       upload.ContentType,
			Size:       upload.Size,
			UploadedAt: now,
		})
	}
	m.requests[req.ID] = req
	return &req, nil
}

func (m *MockRepository) DeleteRequest(_ context.Context, requestID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.requests[requestID]
	if !ok {
		return fmt.Errorf("signing request %s: %w", requestID, api.ErrNotFound)
	}
	if req.Status != types.StatusPending {
		return fmt.Errorf("cannot delete request in status %q: %w", req.Status, api.ErrInvalidTransition)
	}
	delete(m.requests, requestID)
	return nil
}

func (m *MockRepository) SignRequest(_ context.Context, requestID uuid.UUID) (*types.SigningRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.requests[requestID]
	if !ok {
		return nil, fmt.Errorf("signing request %s: %w", requestID, api.ErrNotFound)
	}
	if req.Status != types.StatusPending {
		return nil, fmt.Errorf("cannot sign request in status %q: %w", req.Status, api.ErrInvalidTransition)
	}

	now := m.now()
	req.Status = types.StatusSigned
	req.SignedAt = &now
	req.UpdatedAt = now
	m.requests[requestID] = req
	return &req, nil
}
