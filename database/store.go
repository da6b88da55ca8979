package database

import (
	"context"
	"storefront_server/structs/tables"
)

// CatalogStore reads products and reads/writes reviews.
type CatalogStore interface {
	ListProducts(ctx context.Context) ([]tables.Product, error)
	// GetProduct returns lib.ErrNotFound for an unknown id.
	GetProduct(ctx context.Context, id int64) (*tables.Product, error)
	GetProductsByIDs(ctx context.Context, ids []int64) ([]tables.Product, error)
	// ListReviews returns the reviews of a product newest first, with the
	// reviewing user loaded.
	ListReviews(ctx context.Context, productID int64) ([]tables.Review, error)
	InsertReview(ctx context.Context, review *tables.Review) error
}

type UserStore interface {
	GetUserByID(ctx context.Context, id int64) (*tables.User, error)
	GetUserByEmail(ctx context.Context, email string) (*tables.User, error)
	// InsertUser and UpdateUser return lib.ErrConflict when the email is taken.
	InsertUser(ctx context.Context, user *tables.User) error
	UpdateUser(ctx context.Context, user *tables.User) error
}

type OrderStore interface {
	// ListOrdersByEmail returns orders newest first.
	ListOrdersByEmail(ctx context.Context, email string) ([]tables.Order, error)
	ListOrderItems(ctx context.Context, orderIDs []int64) ([]tables.OrderItem, error)
}

// UnitOfWork is the set of writes a checkout performs. Everything done
// through one UnitOfWork commits or rolls back together.
type UnitOfWork interface {
	// LockProducts returns the products with the given ids, ordered by id,
	// and holds them against concurrent stock changes until the unit ends.
	LockProducts(ctx context.Context, ids []int64) ([]tables.Product, error)
	InsertOrder(ctx context.Context, order *tables.Order) error
	InsertOrderItems(ctx context.Context, items []tables.OrderItem) error
	// DecrementStock returns lib.ErrInsufficientStock when stock < qty.
	DecrementStock(ctx context.Context, productID int64, qty int) error
}

type Store interface {
	CatalogStore
	UserStore
	OrderStore

	// WithinTx runs fn in a single unit of work: committed when fn returns
	// nil, rolled back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error
	Ping(ctx context.Context) error
	Close() error
}
