package database

import (
	"context"
	"fmt"
	"storefront_server/lib"
	"storefront_server/structs/tables"
	"time"

	"github.com/uptrace/bun"
)

// PgStore is the Postgres implementation of Store. Every statement is
// bounded by timeout when it is positive.
type PgStore struct {
	db      *DB
	timeout time.Duration
}

func NewPgStore(db *DB, timeout time.Duration) *PgStore {
	return &PgStore{db: db, timeout: timeout}
}

func timed[T any](s *PgStore) *QueryBuilder[T] {
	return Query[T](s.db.DB).Timeout(s.timeout)
}

func (s *PgStore) ListProducts(ctx context.Context) ([]tables.Product, error) {
	return timed[tables.Product](s).OrderBy("p.id", ASC).All(ctx)
}

func (s *PgStore) GetProduct(ctx context.Context, id int64) (*tables.Product, error) {
	product, err := timed[tables.Product](s).Where("id", id).First(ctx)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, lib.ErrNotFound
	}
	return product, nil
}

func (s *PgStore) GetProductsByIDs(ctx context.Context, ids []int64) ([]tables.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return timed[tables.Product](s).WhereIn("p.id", ids).OrderBy("p.id", ASC).All(ctx)
}

func (s *PgStore) ListReviews(ctx context.Context, productID int64) ([]tables.Review, error) {
	return timed[tables.Review](s).
		Relation("User").
		Where("r.product_id", productID).
		OrderBy("r.created_at", DESC).
		OrderBy("r.id", DESC).
		All(ctx)
}

func (s *PgStore) InsertReview(ctx context.Context, review *tables.Review) error {
	if err := timed[tables.Review](s).Insert(ctx, review); err != nil {
		return lib.MapPgError(err)
	}
	return nil
}

func (s *PgStore) GetUserByID(ctx context.Context, id int64) (*tables.User, error) {
	user, err := timed[tables.User](s).Where("id", id).First(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, lib.ErrNotFound
	}
	return user, nil
}

func (s *PgStore) GetUserByEmail(ctx context.Context, email string) (*tables.User, error) {
	user, err := timed[tables.User](s).Where("email", email).First(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, lib.ErrNotFound
	}
	return user, nil
}

func (s *PgStore) InsertUser(ctx context.Context, user *tables.User) error {
	if err := timed[tables.User](s).Insert(ctx, user); err != nil {
		return lib.MapPgError(err)
	}
	return nil
}

func (s *PgStore) UpdateUser(ctx context.Context, user *tables.User) error {
	affected, err := timed[tables.User](s).
		Where("id", user.ID).
		Update(ctx, map[string]any{
			"first_name":    user.FirstName,
			"last_name":     user.LastName,
			"email":         user.Email,
			"password_hash": user.PasswordHash,
		})
	if err != nil {
		return lib.MapPgError(err)
	}
	if affected == 0 {
		return lib.ErrNotFound
	}
	return nil
}

func (s *PgStore) ListOrdersByEmail(ctx context.Context, email string) ([]tables.Order, error) {
	return timed[tables.Order](s).
		Where("user_email", email).
		OrderBy("o.date_ordered", DESC).
		OrderBy("o.id", DESC).
		All(ctx)
}

func (s *PgStore) ListOrderItems(ctx context.Context, orderIDs []int64) ([]tables.OrderItem, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	return timed[tables.OrderItem](s).
		WhereIn("order_id", orderIDs).
		OrderBy("oi.id", ASC).
		All(ctx)
}

func (s *PgStore) WithinTx(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error {
	return Transaction(ctx, s.db.DB, func(tx bun.Tx) error {
		return fn(ctx, &pgUnitOfWork{tx: tx, timeout: s.timeout})
	})
}

func (s *PgStore) Ping(ctx context.Context) error {
	return s.db.Health(ctx)
}

func (s *PgStore) Close() error {
	return s.db.Close()
}

type pgUnitOfWork struct {
	tx      bun.Tx
	timeout time.Duration
}

func (u *pgUnitOfWork) LockProducts(ctx context.Context, ids []int64) ([]tables.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	// id order keeps concurrent checkouts from deadlocking on each other
	return Query[tables.Product](u.tx).Timeout(u.timeout).
		WhereIn("p.id", ids).
		OrderBy("p.id", ASC).
		ForUpdate().
		All(ctx)
}

func (u *pgUnitOfWork) InsertOrder(ctx context.Context, order *tables.Order) error {
	return Query[tables.Order](u.tx).Timeout(u.timeout).Insert(ctx, order)
}

func (u *pgUnitOfWork) InsertOrderItems(ctx context.Context, items []tables.OrderItem) error {
	return Query[tables.OrderItem](u.tx).Timeout(u.timeout).InsertMany(ctx, items)
}

func (u *pgUnitOfWork) DecrementStock(ctx context.Context, productID int64, qty int) error {
	res, err := u.tx.NewUpdate().
		Model((*tables.Product)(nil)).
		Set("stock = stock - ?", qty).
		Where("id = ?", productID).
		Where("stock >= ?", qty).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to decrement stock for product %d: %w", productID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("product %d: %w", productID, lib.ErrInsufficientStock)
	}
	return nil
}
