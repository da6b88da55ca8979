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

func productNames(products []tables.Product) []string {
	names := make([]string, len(products))
	for i, p := range products {
		names[i] = p.Name
	}
	return names
}

func TestListProductsSorting(t *testing.T) {
	env := newTestEnv(t)
	env.addProduct("tulip", "2.00", 1)
	env.addProduct("Aster", "9.00", 1)
	env.addProduct("Mum", "5.00", 1)
	ctx := context.Background()

	list, err := env.sm.ProductService.ListProducts(ctx, structs.ProductListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Aster", "Mum", "tulip"}, productNames(list.Products))
	assert.Equal(t, structs.SortNameAsc, list.Options.Sort)
	assert.Equal(t, 3, list.Total)

	list, err = env.sm.ProductService.ListProducts(ctx, structs.ProductListOptions{Sort: structs.SortPriceAsc})
	require.NoError(t, err)
	assert.Equal(t, []string{"tulip", "Mum", "Aster"}, productNames(list.Products))

	list, err = env.sm.ProductService.ListProducts(ctx, structs.ProductListOptions{Sort: structs.SortPriceDesc})
	require.NoError(t, err)
	assert.Equal(t, []string{"Aster", "Mum", "tulip"}, productNames(list.Products))
}

func TestListProductsPaging(t *testing.T) {
	env := newTestEnv(t)
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		env.addProduct(name, "1.00", 1)
	}
	ctx := context.Background()

	list, err := env.sm.ProductService.ListProducts(ctx, structs.ProductListOptions{Page: 2, PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "D"}, productNames(list.Products))
	assert.Equal(t, 5, list.Total)

	list, err = env.sm.ProductService.ListProducts(ctx, structs.ProductListOptions{Page: 9, PerPage: 2})
	require.NoError(t, err)
	assert.Empty(t, list.Products)
}

func TestGetFeaturedProductsKeepsConfiguredOrder(t *testing.T) {
	env := newTestEnv(t)
	first := env.addProduct("First", "1.00", 1)
	second := env.addProduct("Second", "1.00", 1)
	env.cfg.Catalog.FeaturedProductIDs = []int64{second.ID, 404, first.ID}

	featured, err := env.sm.ProductService.GetFeaturedProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Second", "First"}, productNames(featured))
}

func TestGetProductNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.sm.ProductService.GetProduct(context.Background(), 42)
	assert.ErrorIs(t, err, lib.ErrNotFound)

	_, err = env.sm.ProductService.GetProductDetail(context.Background(), 42)
	assert.ErrorIs(t, err, lib.ErrNotFound)
}

func TestReviewsAreNewestFirstWithAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	product := env.addProduct("Tulip", "1.00", 1)
	_, session := env.signIn(t, "ada@example.com")

	first, err := env.sm.ProductService.AddReview(ctx, session, &structs.AddReviewRequest{ProductID: product.ID, Rating: 4, Comment: "Lovely"})
	require.NoError(t, err)
	assert.Equal(t, "Test", first.FirstName)
	assert.Equal(t, "Shopper", first.LastName)
	assert.Len(t, first.CreatedAt, len(structs.DisplayTimeFormat))

	_, err = env.sm.ProductService.AddReview(ctx, session, &structs.AddReviewRequest{ProductID: product.ID, Rating: 2, Comment: "  Wilted fast  "})
	require.NoError(t, err)

	detail, err := env.sm.ProductService.GetProductDetail(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, detail.Reviews, 2)
	assert.Equal(t, "Wilted fast", detail.Reviews[0].Comment)
	assert.Equal(t, "Lovely", detail.Reviews[1].Comment)
	assert.Equal(t, "Test", detail.Reviews[1].FirstName)
}

func TestAddReviewRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	product := env.addProduct("Tulip", "1.00", 1)
	_, session := env.signIn(t, "ada@example.com")

	_, err := env.sm.ProductService.AddReview(ctx, nil, &structs.AddReviewRequest{ProductID: product.ID, Rating: 5, Comment: "Great"})
	assert.ErrorIs(t, err, lib.ErrUnauthenticated)

	_, err = env.sm.ProductService.AddReview(ctx, session, &structs.AddReviewRequest{ProductID: 999, Rating: 5, Comment: "Great"})
	assert.ErrorIs(t, err, lib.ErrNotFound)

	_, err = env.sm.ProductService.AddReview(ctx, session, &structs.AddReviewRequest{ProductID: product.ID, Rating: 5, Comment: "   "})
	var ve *lib.ValidationError
	assert.ErrorAs(t, err, &ve)

	reviews, err := env.sm.ProductService.GetReviewsForProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestCheckoutInvalidatesCachedProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	product := env.addProduct("Tulip", "1.00", 5)
	_, session := env.signIn(t, "ada@example.com")

	require.NoError(t, setJSON(env.cache, productKey(product.ID), product, 0))
	_, err := env.sm.ProductService.ListProducts(ctx, structs.ProductListOptions{})
	require.NoError(t, err)

	_, err = env.sm.CheckoutService.Confirm(ctx, session, lib.Basket{lib.BasketKey(product.ID): 2}, "Street 1")
	require.NoError(t, err)

	got, err := env.sm.ProductService.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)

	list, err := env.sm.ProductService.ListProducts(ctx, structs.ProductListOptions{})
	require.NoError(t, err)
	require.Len(t, list.Products, 1)
	assert.Equal(t, 3, list.Products[0].Stock)
}

// gatedStore holds the first catalog read open until release is closed, so a
// test can commit a change while that read is in flight.
type gatedStore struct {
	database.Store
	held    atomic.Bool
	loaded  chan struct{}
	release chan struct{}
}

func newGatedStore(store database.Store) *gatedStore {
	return &gatedStore{Store: store, loaded: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedStore) hold() {
	if g.held.CompareAndSwap(false, true) {
		close(g.loaded)
		<-g.release
	}
}

func (g *gatedStore) GetProduct(ctx context.Context, id int64) (*tables.Product, error) {
	p, err := g.Store.GetProduct(ctx, id)
	g.hold()
	return p, err
}

func (g *gatedStore) ListProducts(ctx context.Context) ([]tables.Product, error) {
	products, err := g.Store.ListProducts(ctx)
	g.hold()
	return products, err
}

func TestCheckoutDuringProductReadDoesNotRestoreOldStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	product := env.addProduct("Tulip", "1.00", 5)
	_, session := env.signIn(t, "ada@example.com")

	store := newGatedStore(env.store)
	ps := NewProductService(gecho.NewDefaultLogger(), env.cfg, store, env.cache)
	checkout := NewCheckoutService(gecho.NewDefaultLogger(), env.store, ps)

	done := make(chan *tables.Product, 1)
	go func() {
		p, err := ps.GetProduct(ctx, product.ID)
		assert.NoError(t, err)
		done <- p
	}()
	<-store.loaded

	_, err := checkout.Confirm(ctx, session, lib.Basket{lib.BasketKey(product.ID): 2}, "Street 1")
	require.NoError(t, err)

	close(store.release)
	inFlight := <-done
	require.NotNil(t, inFlight)
	assert.Equal(t, 5, inFlight.Stock)

	cached, err := getJSON[tables.Product](env.cache, productKey(product.ID))
	require.NoError(t, err)
	assert.Nil(t, cached)

	got, err := ps.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)
}

func TestCheckoutDuringListReadDoesNotRestoreOldStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	product := env.addProduct("Tulip", "1.00", 5)
	_, session := env.signIn(t, "ada@example.com")

	store := newGatedStore(env.store)
	ps := NewProductService(gecho.NewDefaultLogger(), env.cfg, store, env.cache)
	checkout := NewCheckoutService(gecho.NewDefaultLogger(), env.store, ps)

	done := make(chan error, 1)
	go func() {
		_, err := ps.ListProducts(ctx, structs.ProductListOptions{})
		done <- err
	}()
	<-store.loaded

	_, err := checkout.Confirm(ctx, session, lib.Basket{lib.BasketKey(product.ID): 2}, "Street 1")
	require.NoError(t, err)

	close(store.release)
	require.NoError(t, <-done)

	list, err := ps.ListProducts(ctx, structs.ProductListOptions{})
	require.NoError(t, err)
	require.Len(t, list.Products, 1)
	assert.Equal(t, 3, list.Products[0].Stock)
}
