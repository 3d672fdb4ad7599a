package user

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/api"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/types"
)

// MockUserRepo is a mock implementation of the UserRepo interface.
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) ListUsers(ctx context.Context) ([]types.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]types.User)
	return users, args.Error(1)
}

func (m *MockUserRepo) GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*types.User)
	return user, args.Error(1)
}

func (m *MockUserRepo) CreateUser(ctx context.Context, params types.CreateUserParams, passwordHash string) (*types.User, error) {
	args := m.Called(ctx, params, passwordHash)
	user, _ := args.Get(0).(*types.User)
	return user, args.Error(1)
}

func (m *MockUserRepo) UpdateUser(ctx context.Context, userID uuid.UUID, params types.UpdateUserParams) (*types.User, error) {
	args := m.Called(ctx, userID, params)
	user, _ := args.Get(0).(*types.User)
	return user, args.Error(1)
}

func (m *MockUserRepo) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepo) CompleteFirstLogin(ctx context.Context, userID uuid.UUID, name, phone, address, idProofURL string) (*types.User, error) {
	args := m.Called(ctx, userID, name, phone, address, idProofURL)
	user, _ := args.Get(0).(*types.User)
	return user, args.Error(1)
}

func TestCreateUser_HashesPassword(t *testing.T) {
	mockRepo := new(MockUserRepo)
	service := NewUserService(mockRepo, slog.Default())

	params := types.CreateUserParams{
		Email: "new@company.com",
		Name:  "New Hire",
		Role:  types.RoleEmployee,
	}
	mockRepo.On("CreateUser", mock.Anything, params, mock.MatchedBy(func(hash string) bool {
		// No password supplied, so the onboarding default gets hashed.
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("password123")) == nil
	})).Return(&types.User{ID: uuid.New(), Email: params.Email}, nil).Once()

	_, err := service.CreateUser(context.Background(), params)

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestCreateUser_RejectsInvalidRole(t *testing.T) {
	mockRepo := new(MockUserRepo)
	service := NewUserService(mockRepo, slog.Default())

	_, err := service.CreateUser(context.Background(), types.CreateUserParams{
		Email: "new@company.com",
		Name:  "New Hire",
		Role:  "admin",
	})

	assert.ErrorIs(t, err, api.ErrValidation)
	mockRepo.AssertNotCalled(t, "CreateUser")
}

func TestDeleteUser_RefusesHRAccounts(t *testing.T) {
	mockRepo := new(MockUserRepo)
	service := NewUserService(mockRepo, slog.Default())
	hrID := uuid.New()

	mockRepo.On("GetUser", mock.Anything, hrID).
		Return(&types.User{ID: hrID, Role: types.RoleHR}, nil).Once()

	err := service.DeleteUser(context.Background(), hrID)

	assert.ErrorIs(t, err, api.ErrForbidden)
	mockRepo.AssertNotCalled(t, "DeleteUser")
}

func TestDeleteUser_Employee(t *testing.T) {
	mockRepo := new(MockUserRepo)
	service := NewUserService(mockRepo, slog.Default())
	empID := uuid.New()

	mockRepo.On("GetUser", mock.Anything, empID).
		Return(&types.User{ID: empID, Role: types.RoleEmployee}, nil).Once()
	mockRepo.On("DeleteUser", mock.Anything, empID).Return(nil).Once()

	err := service.DeleteUser(context.Background(), empID)

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestCompleteFirstLogin_AllFieldsRequired(t *testing.T) {
	mockRepo := new(MockUserRepo)
	service := NewUserService(mockRepo, slog.Default())
	userID := uuid.New()

	cases := []struct {
		name       string
		data       types.FirstLoginData
		idProofURL string
	}{
		{"missing name", types.FirstLoginData{Phone: "+1", Address: "a"}, "/files/x"},
		{"missing phone", types.FirstLoginData{Name: "n", Address: "a"}, "/files/x"},
		{"missing address", types.FirstLoginData{Name: "n", Phone: "+1"}, "/files/x"},
		{"missing id proof", types.FirstLoginData{Name: "n", Phone: "+1", Address: "a"}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.CompleteFirstLogin(context.Background(), userID, tc.data, tc.idProofURL)
			assert.ErrorIs(t, err, api.ErrValidation)
		})
	}
	mockRepo.AssertNotCalled(t, "CompleteFirstLogin")
}

func TestCompleteFirstLogin_Success(t *testing.T) {
	mockRepo := new(MockUserRepo)
	service := NewUserService(mockRepo, slog.Default())
	userID := uuid.New()

	mockRepo.On("CompleteFirstLogin", mock.Anything, userID,
		"New Employee", "+1555000111", "789 Oak Lane", "/files/id-proofs/x.pdf").
		Return(&types.User{ID: userID, HasCompletedFirstLogin: true}, nil).Once()

	user, err := service.CompleteFirstLogin(context.Background(), userID, types.FirstLoginData{
		Name:    "New Employee",
		Phone:   "+1555000111",
		Address: "789 Oak Lane",
	}, "/files/id-proofs/x.pdf")

	require.NoError(t, err)
	assert.True(t, user.HasCompletedFirstLogin)
	mockRepo.AssertExpectations(t)
}
