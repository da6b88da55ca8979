package services

import (
	"context"
	"storefront_server/lib"
	"storefront_server/structs/tables"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderHistoryNewestFirstWithTotals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tulip := env.addProduct("Tulip", "2.50", 10)
	rose := env.addProduct("Rose", "4.00", 10)
	user, session := env.signIn(t, "ada@example.com")

	first, err := env.sm.CheckoutService.Confirm(ctx, session, lib.Basket{lib.BasketKey(tulip.ID): 2}, "First Street")
	require.NoError(t, err)
	second, err := env.sm.CheckoutService.Confirm(ctx, session, lib.Basket{lib.BasketKey(tulip.ID): 1, lib.BasketKey(rose.ID): 3}, "Second Street")
	require.NoError(t, err)

	history, err := env.sm.OrderService.ListOrdersForAccount(ctx, user.Email)
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)
	assert.Equal(t, "14.5", history[0].TotalValue.String())
	assert.Equal(t, "5", history[1].TotalValue.String())
	require.Len(t, history[0].Items, 2)
	assert.Equal(t, "Rose", history[0].Items[1].Name)
	assert.Equal(t, "12", history[0].Items[1].TotalPrice.String())
}

func TestOrderHistoryUsesOrderTimePrices(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tulip := env.addProduct("Tulip", "2.50", 10)
	user, session := env.signIn(t, "ada@example.com")

	_, err := env.sm.CheckoutService.Confirm(ctx, session, lib.Basket{lib.BasketKey(tulip.ID): 2}, "Street")
	require.NoError(t, err)

	repriced, err := env.store.GetProduct(ctx, tulip.ID)
	require.NoError(t, err)
	env.store.AddProduct(tables.Product{
		ID:    repriced.ID,
		Name:  "Tulip Deluxe",
		Price: decimal.RequireFromString("9.99"),
		Stock: repriced.Stock,
	})

	history, err := env.sm.OrderService.ListOrdersForAccount(ctx, user.Email)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Tulip", history[0].Items[0].Name)
	assert.Equal(t, "2.5", history[0].Items[0].Price.String())
	assert.Equal(t, "5", history[0].TotalValue.String())
}

func TestOrderHistoryOnlyShowsOwnOrders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tulip := env.addProduct("Tulip", "1.00", 10)
	_, mine := env.signIn(t, "ada@example.com")
	_, theirs := env.signIn(t, "bob@example.com")

	_, err := env.sm.CheckoutService.Confirm(ctx, theirs, lib.Basket{lib.BasketKey(tulip.ID): 1}, "Elsewhere")
	require.NoError(t, err)

	history, err := env.sm.OrderService.ListOrdersForSession(ctx, mine)
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}
