package portal

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/api"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/session"
	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/types"
)

func committedStore(t *testing.T, user types.User) *session.Store {
	t.Helper()
	store := session.NewStore(filepath.Join(t.TempDir(), "session.json"), slog.Default())
	require.NoError(t, store.Commit(session.Session{AuthToken: "token-1", User: &user}))
	return store
}

func TestUpdateProfile_ServerCopyWinsOnSuccess(t *testing.T) {
	current := types.User{ID: uuid.New(), Name: "John Doe", Email: "employee@company.com"}
	server := current
	server.Name = "John A. Doe"
	server.Phone = strPtr("+1555000222")

	remote := &stubRemote{user: &server}
	store := committedStore(t, current)

	updated, err := UpdateProfile(context.Background(), remote, store, current,
		types.UpdateUserParams{Name: strPtr("John A. Doe"), Phone: strPtr("+1555000222")})

	require.NoError(t, err)
	assert.Equal(t, "John A. Doe", updated.Name)

	sess, err := store.Restore()
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "token-1", sess.AuthToken)
	assert.Equal(t, "John A. Doe", sess.User.Name)
	require.NotNil(t, sess.User.Phone)
	assert.Equal(t, "+1555000222", *sess.User.Phone)
}

func TestUpdateProfile_EditsSurviveBackendFailure(t *testing.T) {
	current := types.User{ID: uuid.New(), Name: "John Doe", Email: "employee@company.com"}
	remote := &stubRemote{err: api.ErrTransport}
	store := committedStore(t, current)

	// The authoritative update fails, but the edits still land in the
	// stored snapshot so the user does not lose what they typed.
	updated, err := UpdateProfile(context.Background(), remote, store, current,
		types.UpdateUserParams{Phone: strPtr("+1555000333"), Address: strPtr("12 Elm St")})

	assert.ErrorIs(t, err, api.ErrTransport)
	require.NotNil(t, updated)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, "+1555000333", *updated.Phone)
	// Untouched fields keep their prior values.
	assert.Equal(t, "John Doe", updated.Name)

	sess, restoreErr := store.Restore()
	require.NoError(t, restoreErr)
	require.NotNil(t, sess)
	assert.Equal(t, "token-1", sess.AuthToken)
	require.NotNil(t, sess.User.Phone)
	assert.Equal(t, "+1555000333", *sess.User.Phone)
	require.NotNil(t, sess.User.Address)
	assert.Equal(t, "12 Elm St", *sess.User.Address)
}
