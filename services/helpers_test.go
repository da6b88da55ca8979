package services

import (
	"context"
	"storefront_server/config"
	"storefront_server/database/memstore"
	"storefront_server/structs"
	"storefront_server/structs/tables"
	"testing"

	"github.com/MonkyMars/gecho"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testArgonParams = &structs.ArgonParams{
	Memory:  1024,
	Time:    1,
	Threads: 1,
	KeyLen:  32,
	SaltLen: 16,
}

type testEnv struct {
	cfg   *structs.Config
	store *memstore.Store
	cache *MemoryCache
	sm    *ServiceManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.Load()
	cfg.Cache.Enabled = false
	cfg.Auth.SessionTokenSecret = "test-secret"

	store := memstore.New()
	cache := NewMemoryCache()
	sm := NewServiceManager(gecho.NewDefaultLogger(), cfg, store, cache)
	sm.AuthService.params = testArgonParams

	return &testEnv{cfg: cfg, store: store, cache: cache, sm: sm}
}

func (e *testEnv) addProduct(name, price string, stock int) tables.Product {
	return e.store.AddProduct(tables.Product{
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
	})
}

// signIn registers an account and opens a session for it.
func (e *testEnv) signIn(t *testing.T, email string) (*tables.User, *structs.Session) {
	t.Helper()
	ctx := context.Background()

	_, err := e.sm.AuthService.Register(ctx, &structs.RegisterRequest{
		FirstName:       "Test",
		LastName:        "Shopper",
		Email:           email,
		Password:        "secret123",
		ConfirmPassword: "secret123",
	})
	require.NoError(t, err)

	user, session, err := e.sm.AuthService.Authenticate(ctx, email, "secret123")
	require.NoError(t, err)
	return user, session
}

func (e *testEnv) stockOf(t *testing.T, id int64) int {
	t.Helper()
	p, err := e.store.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}
