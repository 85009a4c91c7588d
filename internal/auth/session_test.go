package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_LoginPersistsAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.json")

	session, err := NewSession(path)
	require.NoError(t, err)
	assert.False(t, session.IsAuthenticated())

	user := User{ID: 42, Email: "buyer@example.com", DisplayName: "Buyer"}
	require.NoError(t, session.Login("tok_123", user))
	assert.True(t, session.IsAuthenticated())
	assert.Equal(t, "tok_123", session.Token())

	// stored under the same fixed keys the web client used
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"authToken":"tok_123"`)
	assert.Contains(t, string(data), `"user":`)

	reloaded, err := NewSession(path)
	require.NoError(t, err)
	assert.True(t, reloaded.IsAuthenticated())
	assert.Equal(t, "tok_123", reloaded.Token())
	current, ok := reloaded.Current()
	require.True(t, ok)
	assert.Equal(t, user, current)
}

func TestSession_LogoutClearsStoreAndNotifies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.json")

	session, err := NewSession(path)
	require.NoError(t, err)
	require.NoError(t, session.Login("tok_123", User{ID: 1, Email: "buyer@example.com"}))

	notified := 0
	session.OnLogout(func() { notified++ })

	require.NoError(t, session.Logout())

	assert.False(t, session.IsAuthenticated())
	assert.Empty(t, session.Token())
	_, ok := session.Current()
	assert.False(t, ok)
	assert.Equal(t, 1, notified)
	assert.NoFileExists(t, path)
}

func TestSession_TokenWithoutUserIsNotAuthenticated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"authToken":"tok_123"}`), 0o600))

	session, err := NewSession(path)
	require.NoError(t, err)

	assert.Equal(t, "tok_123", session.Token())
	assert.False(t, session.IsAuthenticated())
}

func TestNewSession_CorruptStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, err := NewSession(path)
	assert.Error(t, err)
}
