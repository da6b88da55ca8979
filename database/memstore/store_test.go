package memstore

import (
	"context"
	"errors"
	"storefront_server/database"
	"storefront_server/lib"
	"storefront_server/structs/tables"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProduct(s *Store, name string, stock int) tables.Product {
	return s.AddProduct(tables.Product{Name: name, Price: decimal.NewFromInt(1), Stock: stock})
}

func TestWithinTxDiscardsWritesOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := seedProduct(s, "Tulip", 5)

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context, uow database.UnitOfWork) error {
		order := &tables.Order{UserEmail: "a@example.com", Address: "x"}
		require.NoError(t, uow.InsertOrder(ctx, order))
		require.NoError(t, uow.DecrementStock(ctx, p.ID, 2))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)

	orders, err := s.ListOrdersByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestWithinTxPublishesOnSuccess(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := seedProduct(s, "Tulip", 5)

	var orderID int64
	err := s.WithinTx(ctx, func(ctx context.Context, uow database.UnitOfWork) error {
		order := &tables.Order{UserEmail: "a@example.com", Address: "x"}
		if err := uow.InsertOrder(ctx, order); err != nil {
			return err
		}
		orderID = order.ID
		if err := uow.InsertOrderItems(ctx, []tables.OrderItem{{OrderID: order.ID, ProductID: p.ID, Quantity: 2}}); err != nil {
			return err
		}
		return uow.DecrementStock(ctx, p.ID, 2)
	})
	require.NoError(t, err)

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)

	items, err := s.ListOrderItems(ctx, []int64{orderID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestDecrementStockIsGuarded(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := seedProduct(s, "Tulip", 1)

	err := s.WithinTx(ctx, func(ctx context.Context, uow database.UnitOfWork) error {
		return uow.DecrementStock(ctx, p.ID, 2)
	})
	assert.ErrorIs(t, err, lib.ErrInsufficientStock)
}

func TestLockProductsOrderedAndDeduplicated(t *testing.T) {
	s := New()
	a := seedProduct(s, "A", 1)
	b := seedProduct(s, "B", 1)

	err := s.WithinTx(context.Background(), func(ctx context.Context, uow database.UnitOfWork) error {
		products, err := uow.LockProducts(ctx, []int64{b.ID, a.ID, b.ID, 999})
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, a.ID, products[0].ID)
		assert.Equal(t, b.ID, products[1].ID)
		return nil
	})
	require.NoError(t, err)
}

func TestUserEmailIsUnique(t *testing.T) {
	s := New()
	ctx := context.Background()

	first := &tables.User{FirstName: "A", LastName: "B", Email: "a@example.com"}
	require.NoError(t, s.InsertUser(ctx, first))

	err := s.InsertUser(ctx, &tables.User{Email: "a@example.com"})
	assert.ErrorIs(t, err, lib.ErrConflict)

	second := &tables.User{Email: "b@example.com"}
	require.NoError(t, s.InsertUser(ctx, second))
	second.Email = "a@example.com"
	assert.ErrorIs(t, s.UpdateUser(ctx, second), lib.ErrConflict)

	_, err = s.GetUserByEmail(ctx, "A@example.com")
	assert.ErrorIs(t, err, lib.ErrNotFound)
}

func TestListReviewsNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := seedProduct(s, "Tulip", 1)
	u := &tables.User{FirstName: "Ada", LastName: "L", Email: "ada@example.com"}
	require.NoError(t, s.InsertUser(ctx, u))

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, comment := range []string{"old", "new", "middle"} {
		offset := []time.Duration{0, 2 * time.Hour, time.Hour}[i]
		require.NoError(t, s.InsertReview(ctx, &tables.Review{
			ProductID: p.ID, UserID: u.ID, Rating: 5, Comment: comment, CreatedAt: base.Add(offset),
		}))
	}

	reviews, err := s.ListReviews(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 3)
	assert.Equal(t, "new", reviews[0].Comment)
	assert.Equal(t, "middle", reviews[1].Comment)
	assert.Equal(t, "old", reviews[2].Comment)
	require.NotNil(t, reviews[0].User)
	assert.Equal(t, "Ada", reviews[0].User.FirstName)

	err = s.InsertReview(ctx, &tables.Review{ProductID: 999, UserID: u.ID, Rating: 1, Comment: "x"})
	assert.ErrorIs(t, err, lib.ErrNotFound)
}
