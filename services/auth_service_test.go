package services

import (
	"context"
	"storefront_server/database"
	"storefront_server/lib"
	"storefront_server/structs"
	"storefront_server/structs/tables"
	"sync/atomic"
	"testing"

	"github.com/MonkyMars/gecho"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerRequest(email string) *structs.RegisterRequest {
	return &structs.RegisterRequest{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           email,
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.sm.AuthService.Register(ctx, registerRequest("ada@example.com"))
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	_, err = env.sm.AuthService.Register(ctx, registerRequest("ada@example.com"))
	assert.ErrorIs(t, err, lib.ErrConflict)
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.sm.AuthService.Register(ctx, registerRequest("ada@example.com"))
	require.NoError(t, err)

	_, _, wrongPassword := env.sm.AuthService.Authenticate(ctx, "ada@example.com", "nope")
	_, _, unknownEmail := env.sm.AuthService.Authenticate(ctx, "nobody@example.com", "secret123")

	assert.ErrorIs(t, wrongPassword, lib.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, lib.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestSessionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	user, session := env.signIn(t, "ada@example.com")

	resolved, err := env.sm.AuthService.ResolveSession(session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.UserID)
	assert.Equal(t, session.ID, resolved.ID)

	require.NoError(t, env.sm.AuthService.Logout(resolved))

	_, err = env.sm.AuthService.ResolveSession(session.Token)
	assert.ErrorIs(t, err, lib.ErrRevokedToken)
}

func TestResolveSessionRejectsForeignToken(t *testing.T) {
	env := newTestEnv(t)

	other, err := lib.GenerateSessionToken(1, env.cfg.Auth.SessionExpiry, "another-secret")
	require.NoError(t, err)

	_, err = env.sm.AuthService.ResolveSession(other.Token)
	assert.ErrorIs(t, err, lib.ErrInvalidToken)
}

func updateRequest(oldPassword, email string) *structs.AccountUpdateRequest {
	return &structs.AccountUpdateRequest{
		FirstName:   "Grace",
		LastName:    "Hopper",
		Email:       email,
		OldPassword: oldPassword,
	}
}

func TestUpdateProfileRequiresCurrentPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, session := env.signIn(t, "ada@example.com")

	_, err := env.sm.AuthService.UpdateProfile(ctx, session, updateRequest("wrong", "grace@example.com"))
	assert.ErrorIs(t, err, lib.ErrRejected)

	stored, err := env.store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", stored.Email)
	assert.Equal(t, user.FirstName, stored.FirstName)
	assert.Equal(t, user.PasswordHash, stored.PasswordHash)
}

func TestUpdateProfileRejectsTakenEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signIn(t, "taken@example.com")
	user, session := env.signIn(t, "ada@example.com")

	_, err := env.sm.AuthService.UpdateProfile(ctx, session, updateRequest("secret123", "taken@example.com"))
	assert.ErrorIs(t, err, lib.ErrConflict)

	stored, err := env.store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", stored.Email)
	assert.Equal(t, "Test", stored.FirstName)
}

func TestUpdateProfileChangesDetailsAndPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, session := env.signIn(t, "ada@example.com")

	req := updateRequest("secret123", "grace@example.com")
	req.NewPassword = "correct horse"
	req.ConfirmNewPassword = "correct horse"

	updated, err := env.sm.AuthService.UpdateProfile(ctx, session, req)
	require.NoError(t, err)
	assert.Equal(t, user.ID, updated.ID)
	assert.Equal(t, "Grace", updated.FirstName)
	assert.Equal(t, "grace@example.com", updated.Email)

	_, _, err = env.sm.AuthService.Authenticate(ctx, "grace@example.com", "secret123")
	assert.ErrorIs(t, err, lib.ErrInvalidCredentials)

	_, _, err = env.sm.AuthService.Authenticate(ctx, "grace@example.com", "correct horse")
	assert.NoError(t, err)

	cached, err := env.sm.AuthService.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", cached.Email)
}

func TestUpdateProfileKeepsPasswordWhenNoneGiven(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, session := env.signIn(t, "ada@example.com")

	_, err := env.sm.AuthService.UpdateProfile(ctx, session, updateRequest("secret123", "ada@example.com"))
	require.NoError(t, err)

	_, _, err = env.sm.AuthService.Authenticate(ctx, "ada@example.com", "secret123")
	assert.NoError(t, err)
}

// gatedUsers holds the first user read open until release is closed.
type gatedUsers struct {
	database.UserStore
	held    atomic.Bool
	loaded  chan struct{}
	release chan struct{}
}

func (g *gatedUsers) GetUserByID(ctx context.Context, id int64) (*tables.User, error) {
	user, err := g.UserStore.GetUserByID(ctx, id)
	if g.held.CompareAndSwap(false, true) {
		close(g.loaded)
		<-g.release
	}
	return user, err
}

func TestProfileUpdateDuringUserReadDoesNotRestoreOldName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, session := env.signIn(t, "ada@example.com")
	require.NoError(t, env.cache.Delete(userKey(user.ID)))

	store := &gatedUsers{UserStore: env.store, loaded: make(chan struct{}), release: make(chan struct{})}
	as := NewAuthService(env.cfg, gecho.NewDefaultLogger(), store, env.cache)
	as.params = testArgonParams

	done := make(chan *tables.User, 1)
	go func() {
		u, err := as.GetUserByID(ctx, user.ID)
		assert.NoError(t, err)
		done <- u
	}()
	<-store.loaded

	_, err := as.UpdateProfile(ctx, session, updateRequest("secret123", "ada@example.com"))
	require.NoError(t, err)

	close(store.release)
	inFlight := <-done
	require.NotNil(t, inFlight)
	assert.Equal(t, "Test", inFlight.FirstName)

	got, err := as.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.FirstName)
}
