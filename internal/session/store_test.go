package session

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshjaggi/PIXs-Onboarding-Platform/internal/types"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.json")
	return NewStore(path, slog.Default()), path
}

func testUser() *types.User {
	return &types.User{
		ID:                     uuid.New(),
		Email:                  "employee@company.com",
		Role:                   types.RoleEmployee,
		Name:                   "John Doe",
		HasCompletedFirstLogin: true,
	}
}

func TestRestore_NoFileMeansLoggedOut(t *testing.T) {
	store, _ := newTestStore(t)

	sess, err := store.Restore()

	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestCommitThenRestore(t *testing.T) {
	store, _ := newTestStore(t)
	user := testUser()

	require.NoError(t, store.Commit(Session{AuthToken: "token-1", User: user}))

	sess, err := store.Restore()
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "token-1", sess.AuthToken)
	assert.Equal(t, user.ID, sess.User.ID)
}

func TestRestore_CorruptRecordDiscarded(t *testing.T) {
	store, path := newTestStore(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	sess, err := store.Restore()

	require.NoError(t, err)
	assert.Nil(t, sess)
	// The bad file is gone, so the next restore starts clean too.
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRestore_PartialRecordDiscarded(t *testing.T) {
	store, path := newTestStore(t)
	// Valid JSON but no token; half a session is no session.
	require.NoError(t, os.WriteFile(path, []byte(`{"user":{"name":"x"}}`), 0o600))

	sess, err := store.Restore()

	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestPatch_UpdatesUserKeepsToken(t *testing.T) {
	store, _ := newTestStore(t)
	user := testUser()
	user.HasCompletedFirstLogin = false
	require.NoError(t, store.Commit(Session{AuthToken: "token-1", User: user}))

	updated := *user
	updated.HasCompletedFirstLogin = true
	store.Patch(updated)

	sess, err := store.Restore()
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "token-1", sess.AuthToken)
	assert.True(t, sess.User.HasCompletedFirstLogin)
}

func TestPatch_NoSessionIsNoOp(t *testing.T) {
	store, path := newTestStore(t)

	store.Patch(*testUser())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestClear(t *testing.T) {
	store, path := newTestStore(t)
	require.NoError(t, store.Commit(Session{AuthToken: "token-1", User: testUser()}))

	require.NoError(t, store.Clear())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	// Clearing an already-clear store succeeds.
	require.NoError(t, store.Clear())
}
