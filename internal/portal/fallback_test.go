package portal

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/api"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/types"
)

// stubRemote answers from canned data until err is set, then fails every
// call the way an unreachable backend would.
type stubRemote struct {
	err      error
	user     *types.User
	users    []types.User
	requests []types.SigningRequest
	login    *types.LoginResponse
	calls    int
}

func (s *stubRemote) Login(context.Context, string, string, types.Role) (*types.LoginResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.login, nil
}

func (s *stubRemote) Logout(context.Context) error { s.calls++; return s.err }

func (s *stubRemote) ResetPassword(context.Context, string) (*types.ResetPasswordResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &types.ResetPasswordResponse{Success: true, Message: resetMessage}, nil
}

func (s *stubRemote) ListUsers(context.Context) ([]types.User, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.users, nil
}

func (s *stubRemote) CreateUser(context.Context, types.CreateUserParams) (*types.User, error) {
	s.calls++
	return nil, s.err
}

func (s *stubRemote) UpdateUser(context.Context, uuid.UUID, types.UpdateUserParams) (*types.User, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func (s *stubRemote) DeleteUser(context.Context, uuid.UUID) error { s.calls++; return s.err }

func (s *stubRemote) CompleteFirstLogin(context.Context, uuid.UUID, types.FirstLoginData) (*types.User, error) {
	s.calls++
	return nil, s.err
}

func (s *stubRemote) ListRequests(context.Context, *uuid.UUID) ([]types.SigningRequest, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.requests, nil
}

func (s *stubRemote) GetRequest(context.Context, uuid.UUID) (*types.SigningRequest, error) {
	s.calls++
	return nil, s.err
}

func (s *stubRemote) CreateRequest(context.Context, types.CreateRequestParams) (*types.SigningRequest, error) {
	s.calls++
	return nil, s.err
}

func (s *stubRemote) DeleteRequest(context.Context, uuid.UUID) error { s.calls++; return s.err }

func (s *stubRemote) SignRequest(context.Context, uuid.UUID) (*types.SigningRequest, error) {
	s.calls++
	return nil, s.err
}

func newFallback(remote Repository) *FallbackRepository {
	return NewFallbackRepository(remote, NewMockRepository(), time.Minute, nil, slog.Default())
}

func transportErr() error {
	return api.ErrTransport
}

func TestFallback_RemoteAnswersWhenHealthy(t *testing.T) {
	remote := &stubRemote{users: []types.User{{ID: uuid.New(), Email: "remote@company.com"}}}
	repo := newFallback(remote)

	users, err := repo.ListUsers(context.Background())

	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "remote@company.com", users[0].Email)
}

func TestFallback_MockAnswersOnRemoteFailure(t *testing.T) {
	remote := &stubRemote{err: transportErr()}
	repo := newFallback(remote)

	// The mock seed answers instead of the failure surfacing.
	users, err := repo.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 3)

	resp, err := repo.Login(context.Background(), "employee@company.com", "password123", types.RoleEmployee)
	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestFallback_ListsServeLastKnownGood(t *testing.T) {
	remote := &stubRemote{users: []types.User{{ID: uuid.New(), Email: "remote@company.com"}}}
	repo := newFallback(remote)

	_, err := repo.ListUsers(context.Background())
	require.NoError(t, err)

	// Backend goes down; the caller still sees the remote data from a
	// moment ago, not the mock seed.
	remote.err = transportErr()
	users, err := repo.ListUsers(context.Background())

	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "remote@company.com", users[0].Email)
}

func TestFallback_MockErrorsStillSurface(t *testing.T) {
	remote := &stubRemote{err: transportErr()}
	repo := newFallback(remote)

	// Neither backend knows this request, so the caller gets not-found.
	_, err := repo.GetRequest(context.Background(), uuid.New())
	assert.ErrorIs(t, err, api.ErrNotFound)

	// The mock enforces lifecycle rules even in degraded mode.
	_, err = repo.SignRequest(context.Background(), uuid.MustParse("10000000-0000-0000-0000-000000000002"))
	assert.ErrorIs(t, err, api.ErrInvalidTransition)
}

func TestFallback_LogoutNeverFails(t *testing.T) {
	remote := &stubRemote{err: transportErr()}
	repo := newFallback(remote)

	assert.NoError(t, repo.Logout(context.Background()))
}
