// Package memstore keeps the storefront data in process memory. It backs
// DB_DRIVER=memory for local runs and the service tests.
package memstore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"storefront_server/database"
	"storefront_server/lib"
	"storefront_server/structs/tables"
	"sync"
	"time"
)

type data struct {
	users    map[int64]tables.User
	products map[int64]tables.Product
	orders   map[int64]tables.Order
	items    map[int64]tables.OrderItem
	reviews  map[int64]tables.Review
	seq      map[string]int64
}

func (d *data) clone() *data {
	return &data{
		users:    maps.Clone(d.users),
		products: maps.Clone(d.products),
		orders:   maps.Clone(d.orders),
		items:    maps.Clone(d.items),
		reviews:  maps.Clone(d.reviews),
		seq:      maps.Clone(d.seq),
	}
}

func (d *data) next(table string) int64 {
	d.seq[table]++
	return d.seq[table]
}

// Store implements database.Store. Units of work run one at a time against
// a private copy of the data which replaces the shared copy on commit.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data *data
}

var _ database.Store = (*Store)(nil)

func New() *Store {
	return &Store{data: &data{
		users:    map[int64]tables.User{},
		products: map[int64]tables.Product{},
		orders:   map[int64]tables.Order{},
		items:    map[int64]tables.OrderItem{},
		reviews:  map[int64]tables.Review{},
		seq:      map[string]int64{},
	}}
}

// AddProduct seeds a product, assigning an id when it has none.
func (s *Store) AddProduct(p tables.Product) tables.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == 0 {
		p.ID = s.data.next("products")
	} else if p.ID > s.data.seq["products"] {
		s.data.seq["products"] = p.ID
	}
	s.data.products[p.ID] = p
	return p
}

func (s *Store) ListProducts(_ context.Context) ([]tables.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedByID(slices.Collect(maps.Values(s.data.products)), func(p tables.Product) int64 { return p.ID }), nil
}

func (s *Store) GetProduct(_ context.Context, id int64) (*tables.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.data.products[id]
	if !ok {
		return nil, lib.ErrNotFound
	}
	return &p, nil
}

func (s *Store) GetProductsByIDs(_ context.Context, ids []int64) ([]tables.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return productsByIDs(s.data, ids), nil
}

func (s *Store) ListReviews(_ context.Context, productID int64) ([]tables.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var reviews []tables.Review
	for _, r := range s.data.reviews {
		if r.ProductID != productID {
			continue
		}
		if u, ok := s.data.users[r.UserID]; ok {
			r.User = &u
		}
		reviews = append(reviews, r)
	}
	sort.Slice(reviews, func(i, j int) bool {
		if !reviews[i].CreatedAt.Equal(reviews[j].CreatedAt) {
			return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
		}
		return reviews[i].ID > reviews[j].ID
	})
	return reviews, nil
}

func (s *Store) InsertReview(_ context.Context, review *tables.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.products[review.ProductID]; !ok {
		return fmt.Errorf("review product %d: %w", review.ProductID, lib.ErrNotFound)
	}
	if _, ok := s.data.users[review.UserID]; !ok {
		return fmt.Errorf("review user %d: %w", review.UserID, lib.ErrNotFound)
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now()
	}
	review.ID = s.data.next("reviews")
	stored := *review
	stored.User = nil
	s.data.reviews[review.ID] = stored
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id int64) (*tables.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.data.users[id]
	if !ok {
		return nil, lib.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*tables.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.data.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, lib.ErrNotFound
}

func (s *Store) InsertUser(_ context.Context, user *tables.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if emailTaken(s.data, user.Email, 0) {
		return fmt.Errorf("users_email_key: %w", lib.ErrConflict)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.ID = s.data.next("users")
	s.data.users[user.ID] = *user
	return nil
}

func (s *Store) UpdateUser(_ context.Context, user *tables.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.users[user.ID]; !ok {
		return lib.ErrNotFound
	}
	if emailTaken(s.data, user.Email, user.ID) {
		return fmt.Errorf("users_email_key: %w", lib.ErrConflict)
	}
	s.data.users[user.ID] = *user
	return nil
}

func (s *Store) ListOrdersByEmail(_ context.Context, email string) ([]tables.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orders []tables.Order
	for _, o := range s.data.orders {
		if o.UserEmail == email {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].DateOrdered.Equal(orders[j].DateOrdered) {
			return orders[i].DateOrdered.After(orders[j].DateOrdered)
		}
		return orders[i].ID > orders[j].ID
	})
	return orders, nil
}

func (s *Store) ListOrderItems(_ context.Context, orderIDs []int64) ([]tables.OrderItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []tables.OrderItem
	for _, item := range s.data.items {
		if slices.Contains(orderIDs, item.OrderID) {
			items = append(items, item)
		}
	}
	return sortedByID(items, func(i tables.OrderItem) int64 { return i.ID }), nil
}

// WithinTx serializes units of work; fn sees and writes a private copy that
// is published only when fn succeeds.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, uow database.UnitOfWork) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	staged := s.data.clone()
	s.mu.RUnlock()

	if err := fn(ctx, &unitOfWork{data: staged}); err != nil {
		return err
	}

	s.mu.Lock()
	// reviews and users are written outside units of work
	staged.users = s.data.users
	staged.reviews = s.data.reviews
	staged.seq["users"] = s.data.seq["users"]
	staged.seq["reviews"] = s.data.seq["reviews"]
	s.data = staged
	s.mu.Unlock()
	return nil
}

func (s *Store) Ping(_ context.Context) error {
	return nil
}

func (s *Store) Close() error {
	return nil
}

type unitOfWork struct {
	data *data
}

func (u *unitOfWork) LockProducts(_ context.Context, ids []int64) ([]tables.Product, error) {
	return productsByIDs(u.data, ids), nil
}

func (u *unitOfWork) InsertOrder(_ context.Context, order *tables.Order) error {
	if order.DateOrdered.IsZero() {
		order.DateOrdered = time.Now()
	}
	order.ID = u.data.next("orders")
	u.data.orders[order.ID] = *order
	return nil
}

func (u *unitOfWork) InsertOrderItems(_ context.Context, items []tables.OrderItem) error {
	for i := range items {
		if _, ok := u.data.orders[items[i].OrderID]; !ok {
			return fmt.Errorf("order item order %d: %w", items[i].OrderID, lib.ErrNotFound)
		}
		if _, ok := u.data.products[items[i].ProductID]; !ok {
			return fmt.Errorf("order item product %d: %w", items[i].ProductID, lib.ErrNotFound)
		}
		items[i].ID = u.data.next("order_items")
		u.data.items[items[i].ID] = items[i]
	}
	return nil
}

func (u *unitOfWork) DecrementStock(_ context.Context, productID int64, qty int) error {
	p, ok := u.data.products[productID]
	if !ok || p.Stock < qty {
		return fmt.Errorf("product %d: %w", productID, lib.ErrInsufficientStock)
	}
	p.Stock -= qty
	u.data.products[productID] = p
	return nil
}

func productsByIDs(d *data, ids []int64) []tables.Product {
	var products []tables.Product
	for _, id := range ids {
		if p, ok := d.products[id]; ok && !slices.ContainsFunc(products, func(x tables.Product) bool { return x.ID == id }) {
			products = append(products, p)
		}
	}
	return sortedByID(products, func(p tables.Product) int64 { return p.ID })
}

func emailTaken(d *data, email string, exceptID int64) bool {
	for _, u := range d.users {
		if u.Email == email && u.ID != exceptID {
			return true
		}
	}
	return false
}

func sortedByID[T any](items []T, id func(T) int64) []T {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
	return items
}
