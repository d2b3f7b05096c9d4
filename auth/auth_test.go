package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pliniou/Project-Ausencias/auth"
	"github.com/pliniou/Project-Ausencias/store/sqlite"
)

func newTestService(t *testing.T) (*auth.Service, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return auth.NewService(store, "test-secret", time.Hour), store
}

func TestBootstrapAndLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Bootstrap(ctx, "admin123"))
	// Running twice must not fail or reset the password.
	require.NoError(t, svc.Bootstrap(ctx, "something-else"))

	sess, err := svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "admin", sess.Username)
	assert.Equal(t, "admin", sess.Role)
	assert.True(t, sess.ExpiresAt.After(time.Now()))
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Bootstrap(ctx, "admin123"))

	_, err := svc.Login(ctx, "admin", "nope")
	assert.True(t, errors.Is(err, auth.ErrInvalidCredentials))

	// Unknown users fail with the same error as bad passwords.
	_, err = svc.Login(ctx, "ghost", "nope")
	assert.True(t, errors.Is(err, auth.ErrInvalidCredentials))
}

func TestRegister(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "maria", "segredo1", "viewer", nil)
	require.NoError(t, err)
	assert.Equal(t, "viewer", u.Role)

	stored, err := store.GetUserByUsername(ctx, "maria")
	require.NoError(t, err)
	assert.NotEqual(t, "segredo1", stored.PasswordHash, "password must be hashed at rest")

	_, err = svc.Register(ctx, "maria", "segredo1", "viewer", nil)
	assert.True(t, errors.Is(err, sqlite.ErrUsernameTaken))

	_, err = svc.Register(ctx, "joao", "segredo1", "superuser", nil)
	assert.True(t, errors.Is(err, auth.ErrInvalidRole))

	_, err = svc.Register(ctx, "joao", "abc", "user", nil)
	assert.True(t, errors.Is(err, auth.ErrWeakPassword))
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Bootstrap(ctx, "admin123"))

	err := svc.ChangePassword(ctx, "admin", "wrong", "novasenha")
	assert.True(t, errors.Is(err, auth.ErrInvalidCredentials))

	require.NoError(t, svc.ChangePassword(ctx, "admin", "admin123", "novasenha"))

	_, err = svc.Login(ctx, "admin", "admin123")
	assert.True(t, errors.Is(err, auth.ErrInvalidCredentials))
	_, err = svc.Login(ctx, "admin", "novasenha")
	assert.NoError(t, err)
}
