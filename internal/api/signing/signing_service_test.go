package signing

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/api"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/types"
)

// MockSigningRepo is a mock implementation of the SigningRepo interface.
type MockSigningRepo struct {
	mock.Mock
}

func (m *MockSigningRepo) ListRequests(ctx context.Context, employeeID *uuid.UUID) ([]types.SigningRequest, error) {
	args := m.Called(ctx, employeeID)
	requests, _ := args.Get(0).([]types.SigningRequest)
	return requests, args.Error(1)
}

func (m *MockSigningRepo) GetRequest(ctx context.Context, requestID uuid.UUID) (*types.SigningRequest, error) {
	args := m.Called(ctx, requestID)
	req, _ := args.Get(0).(*types.SigningRequest)
	return req, args.Error(1)
}

func (m *MockSigningRepo) CreateRequest(ctx context.Context, req *types.SigningRequest) (*types.SigningRequest, error) {
	args := m.Called(ctx, req)
	created, _ := args.Get(0).(*types.SigningRequest)
	return created, args.Error(1)
}

func (m *MockSigningRepo) DeleteRequest(ctx context.Context, requestID uuid.UUID) error {
	args := m.Called(ctx, requestID)
	return args.Error(0)
}

func (m *MockSigningRepo) SignRequest(ctx context.Context, requestID uuid.UUID, signedAt time.Time) (*types.SigningRequest, error) {
	args := m.Called(ctx, requestID, signedAt)
	req, _ := args.Get(0).(*types.SigningRequest)
	return req, args.Error(1)
}

// mockUserRepo stubs the single lookup the signing service needs.
type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) ListUsers(ctx context.Context) ([]types.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]types.User)
	return users, args.Error(1)
}

func (m *mockUserRepo) GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*types.User)
	return user, args.Error(1)
}

func (m *mockUserRepo) CreateUser(ctx context.Context, params types.CreateUserParams, passwordHash string) (*types.User, error) {
	args := m.Called(ctx, params, passwordHash)
	user, _ := args.Get(0).(*types.User)
	return user, args.Error(1)
}

func (m *mockUserRepo) UpdateUser(ctx context.Context, userID uuid.UUID, params types.UpdateUserParams) (*types.User, error) {
	args := m.Called(ctx, userID, params)
	user, _ := args.Get(0).(*types.User)
	return user, args.Error(1)
}

func (m *mockUserRepo) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockUserRepo) CompleteFirstLogin(ctx context.Context, userID uuid.UUID, name, phone, address, idProofURL string) (*types.User, error) {
	args := m.Called(ctx, userID, name, phone, address, idProofURL)
	user, _ := args.Get(0).(*types.User)
	return user, args.Error(1)
}

var (
	hrActor       = Actor{ID: uuid.New(), Role: types.RoleHR}
	employeeActor = Actor{ID: uuid.New(), Role: types.RoleEmployee}
)

func pdfUpload(name string) types.FileUpload {
	return types.FileUpload{
		Name:        name,
		ContentType: "application/pdf",
		Size:        1024,
		Reader:      strings.NewReader("%PDF-"),
	}
}

func validParams(employeeID uuid.UUID) types.CreateRequestParams {
	return types.CreateRequestParams{
		Title:       "Employment Contract",
		Description: "Please review and sign",
		EmployeeID:  employeeID,
		Documents:   []types.FileUpload{pdfUpload("contract.pdf")},
	}
}

func TestCreateRequest_DenormalizesEmployeeSnapshot(t *testing.T) {
	repo := new(MockSigningRepo)
	users := new(mockUserRepo)
	service := NewSigningService(repo, users, nil, slog.Default())

	employeeID := uuid.New()
	users.On("GetUser", mock.Anything, employeeID).Return(&types.User{
		ID: employeeID, Name: "John Doe", Email: "employee@company.com",
	}, nil).Once()

	repo.On("CreateRequest", mock.Anything, mock.MatchedBy(func(req *types.SigningRequest) bool {
		return req.EmployeeName == "John Doe" &&
			req.EmployeeEmail == "employee@company.com" &&
			req.CreatedBy == hrActor.ID &&
			// Unset deadline defaults to roughly thirty days out.
			time.Until(req.ExpiresAt) > 29*24*time.Hour
	})).Return(&types.SigningRequest{ID: uuid.New()}, nil).Once()

	_, err := service.CreateRequest(context.Background(), hrActor, validParams(employeeID))

	require.NoError(t, err)
	repo.AssertExpectations(t)
	users.AssertExpectations(t)
}

func TestCreateRequest_UnknownEmployee(t *testing.T) {
	repo := new(MockSigningRepo)
	users := new(mockUserRepo)
	service := NewSigningService(repo, users, nil, slog.Default())

	employeeID := uuid.New()
	users.On("GetUser", mock.Anything, employeeID).Return(nil, api.ErrNotFound).Once()

	_, err := service.CreateRequest(context.Background(), hrActor, validParams(employeeID))

	assert.ErrorIs(t, err, api.ErrNotFound)
	repo.AssertNotCalled(t, "CreateRequest")
}

func TestCreateRequest_EmployeeForbidden(t *testing.T) {
	service := NewSigningService(new(MockSigningRepo), new(mockUserRepo), nil, slog.Default())

	_, err := service.CreateRequest(context.Background(), employeeActor, validParams(uuid.New()))

	assert.ErrorIs(t, err, api.ErrForbidden)
}

func TestCreateRequest_DocumentValidation(t *testing.T) {
	service := NewSigningService(new(MockSigningRepo), new(mockUserRepo), nil, slog.Default())
	employeeID := uuid.New()

	t.Run("no documents", func(t *testing.T) {
		params := validParams(employeeID)
		params.Documents = nil
		_, err := service.CreateRequest(context.Background(), hrActor, params)
		assert.ErrorIs(t, err, api.ErrValidation)
	})

	t.Run("disallowed type", func(t *testing.T) {
		params := validParams(employeeID)
		params.Documents[0].ContentType = "application/zip"
		_, err := service.CreateRequest(context.Background(), hrActor, params)
		assert.ErrorIs(t, err, api.ErrValidation)
	})

	t.Run("oversize", func(t *testing.T) {
		params := validParams(employeeID)
		params.Documents[0].Size = maxDocumentSize + 1
		_, err := service.CreateRequest(context.Background(), hrActor, params)
		assert.ErrorIs(t, err, api.ErrValidation)
	})
}

func TestListRequests_EmployeeAlwaysScopedToSelf(t *testing.T) {
	repo := new(MockSigningRepo)
	service := NewSigningService(repo, new(mockUserRepo), nil, slog.Default())

	// An employee asking for someone else's requests still gets their own.
	other := uuid.New()
	repo.On("ListRequests", mock.Anything, &employeeActor.ID).
		Return([]types.SigningRequest{}, nil).Once()

	_, err := service.ListRequests(context.Background(), employeeActor, &other)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestGetRequest_OtherEmployeeForbidden(t *testing.T) {
	repo := new(MockSigningRepo)
	service := NewSigningService(repo, new(mockUserRepo), nil, slog.Default())

	requestID := uuid.New()
	repo.On("GetRequest", mock.Anything, requestID).Return(&types.SigningRequest{
		ID: requestID, EmployeeID: uuid.New(), Status: types.StatusPending,
	}, nil).Once()

	_, err := service.GetRequest(context.Background(), employeeActor, requestID)

	assert.ErrorIs(t, err, api.ErrForbidden)
}

func TestSignRequest_OwnRequest(t *testing.T) {
	repo := new(MockSigningRepo)
	service := NewSigningService(repo, new(mockUserRepo), nil, slog.Default())

	requestID := uuid.New()
	repo.On("GetRequest", mock.Anything, requestID).Return(&types.SigningRequest{
		ID: requestID, EmployeeID: employeeActor.ID, Status: types.StatusPending,
	}, nil).Once()
	repo.On("SignRequest", mock.Anything, requestID, mock.AnythingOfType("time.Time")).
		Return(&types.SigningRequest{ID: requestID, Status: types.StatusSigned}, nil).Once()

	signed, err := service.SignRequest(context.Background(), employeeActor, requestID)

	require.NoError(t, err)
	assert.Equal(t, types.StatusSigned, signed.Status)
	repo.AssertExpectations(t)
}

func TestSignRequest_OtherEmployeeForbidden(t *testing.T) {
	repo := new(MockSigningRepo)
	service := NewSigningService(repo, new(mockUserRepo), nil, slog.Default())

	requestID := uuid.New()
	repo.On("GetRequest", mock.Anything, requestID).Return(&types.SigningRequest{
		ID: requestID, EmployeeID: uuid.New(), Status: types.StatusPending,
	}, nil).Once()

	_, err := service.SignRequest(context.Background(), employeeActor, requestID)

	assert.ErrorIs(t, err, api.ErrForbidden)
	repo.AssertNotCalled(t, "SignRequest")
}

func TestSignRequest_HRCannotSignForEmployee(t *testing.T) {
	repo := new(MockSigningRepo)
	service := NewSigningService(repo, new(mockUserRepo), nil, slog.Default())

	// HR sees every request but the signature is the recipient's alone.
	requestID := uuid.New()
	repo.On("GetRequest", mock.Anything, requestID).Return(&types.SigningRequest{
		ID: requestID, EmployeeID: uuid.New(), Status: types.StatusPending,
	}, nil).Once()

	_, err := service.SignRequest(context.Background(), hrActor, requestID)

	assert.ErrorIs(t, err, api.ErrForbidden)
	repo.AssertNotCalled(t, "SignRequest")
}

func TestDeleteRequest_EmployeeForbidden(t *testing.T) {
	repo := new(MockSigningRepo)
	service := NewSigningService(repo, new(mockUserRepo), nil, slog.Default())

	err := service.DeleteRequest(context.Background(), employeeActor, uuid.New())

	assert.ErrorIs(t, err, api.ErrForbidden)
	repo.AssertNotCalled(t, "DeleteRequest")
}
