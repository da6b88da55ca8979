package services

import (
	"context"
	"errors"
	"fmt"
	"storefront_server/database"
	"storefront_server/lib"
	"storefront_server/structs"
	"storefront_server/structs/tables"
	"strings"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/shopspring/decimal"
)

// CheckoutService prices baskets and turns them into orders. A basket moves
// from review to a single unit of work that either commits the order with
// its stock decrements or leaves every table untouched.
type CheckoutService struct {
	logger   *gecho.Logger
	store    database.Store
	products *ProductService
}

func NewCheckoutService(logger *gecho.Logger, store database.Store, products *ProductService) *CheckoutService {
	return &CheckoutService{
		logger:   logger,
		store:    store,
		products: products,
	}
}

// View prices the basket against current products. Lines whose product no
// longer exists are left out. An empty basket gives an empty view.
func (cs *CheckoutService) View(ctx context.Context, basket lib.Basket) (*structs.BasketView, error) {
	view := &structs.BasketView{Lines: []structs.BasketLine{}, TotalCost: decimal.Zero}

	entries, _ := basket.Entries()
	if len(entries) == 0 {
		return view, nil
	}

	products, err := cs.products.GetProductsByIDs(ctx, entryIDs(entries))
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]tables.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, e := range entries {
		p, ok := byID[e.ProductID]
		if !ok {
			continue
		}
		line := structs.BasketLine{
			ProductID:  p.ID,
			Name:       p.Name,
			Image:      p.Image,
			Quantity:   e.Quantity,
			Price:      p.Price,
			Stock:      p.Stock,
			TotalPrice: p.Price.Mul(decimal.NewFromInt(int64(e.Quantity))),
		}
		view.Lines = append(view.Lines, line)
		view.TotalCost = view.TotalCost.Add(line.TotalPrice)
		view.ItemCount += line.Quantity
	}
	return view, nil
}

// Review is the checkout page projection; it refuses an empty basket with
// lib.ErrEmptyBasket.
func (cs *CheckoutService) Review(ctx context.Context, basket lib.Basket) (*structs.BasketView, error) {
	if basket.IsEmpty() {
		return nil, lib.ErrEmptyBasket
	}
	return cs.View(ctx, basket)
}

// Confirm places the order. The basket's products are locked in id order,
// every line is checked against stock, and the order, its items and the
// stock decrements are written in one unit of work. The first line that
// cannot be covered aborts with *lib.InsufficientStockError.
func (cs *CheckoutService) Confirm(ctx context.Context, session *structs.Session, basket lib.Basket, address string) (summary *structs.OrderSummary, err error) {
	startTime := time.Now()
	defer func() {
		if err != nil {
			CheckoutRejectedTotal.WithLabelValues(rejectReason(err)).Inc()
		}
	}()

	if session == nil {
		return nil, lib.ErrUnauthenticated
	}

	entries, invalid := basket.Entries()
	if len(entries) == 0 && len(invalid) == 0 {
		return nil, lib.ErrEmptyBasket
	}
	if len(invalid) > 0 {
		cs.logger.Warn("Checkout rejected - malformed basket entries", gecho.Field("entries", invalid))
		return nil, fmt.Errorf("basket entry %q: %w", invalid[0], lib.ErrNotFound)
	}

	address = strings.TrimSpace(address)
	if address == "" {
		return nil, &lib.ValidationError{Errors: []lib.FieldError{{Field: "address", Message: "is required"}}}
	}

	user, err := cs.store.GetUserByID(ctx, session.UserID)
	if err != nil {
		cs.logger.Error("Failed to load user for checkout", gecho.Field("error", err), gecho.Field("user_id", session.UserID))
		return nil, err
	}

	var (
		order tables.Order
		items []tables.OrderItem
	)
	err = cs.store.WithinTx(ctx, func(ctx context.Context, uow database.UnitOfWork) error {
		products, err := uow.LockProducts(ctx, entryIDs(entries))
		if err != nil {
			return fmt.Errorf("failed to lock products: %w", err)
		}
		byID := make(map[int64]tables.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		for _, e := range entries {
			p, ok := byID[e.ProductID]
			if !ok {
				return fmt.Errorf("product %d: %w", e.ProductID, lib.ErrNotFound)
			}
			if e.Quantity > p.Stock {
				return &lib.InsufficientStockError{
					ProductID:   p.ID,
					ProductName: p.Name,
					Requested:   e.Quantity,
					Available:   p.Stock,
				}
			}
		}

		order = tables.Order{
			UserEmail:   user.Email,
			Address:     address,
			DateOrdered: time.Now(),
		}
		if err := uow.InsertOrder(ctx, &order); err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		items = make([]tables.OrderItem, 0, len(entries))
		for _, e := range entries {
			p := byID[e.ProductID]
			items = append(items, tables.OrderItem{
				OrderID:     order.ID,
				ProductID:   p.ID,
				Quantity:    e.Quantity,
				UnitPrice:   p.Price,
				ProductName: p.Name,
			})
		}
		if err := uow.InsertOrderItems(ctx, items); err != nil {
			return fmt.Errorf("failed to insert order items: %w", err)
		}

		for _, e := range entries {
			if err := uow.DecrementStock(ctx, e.ProductID, e.Quantity); err != nil {
				if errors.Is(err, lib.ErrInsufficientStock) {
					p := byID[e.ProductID]
					return &lib.InsufficientStockError{ProductID: p.ID, ProductName: p.Name, Requested: e.Quantity, Available: p.Stock}
				}
				return fmt.Errorf("failed to decrement stock: %w", err)
			}
		}
		return nil
	})
	CheckoutLatency.Observe(time.Since(startTime).Seconds())

	if err != nil {
		var stockErr *lib.InsufficientStockError
		switch {
		case errors.As(err, &stockErr):
			cs.logger.Info("Checkout rejected - insufficient stock",
				gecho.Field("user_id", user.ID),
				gecho.Field("product_id", stockErr.ProductID),
				gecho.Field("requested", stockErr.Requested),
				gecho.Field("available", stockErr.Available),
			)
		case errors.Is(err, lib.ErrNotFound):
			cs.logger.Warn("Checkout rejected - unknown product", gecho.Field("user_id", user.ID), gecho.Field("error", err))
		default:
			cs.logger.Error("Checkout failed", gecho.Field("user_id", user.ID), gecho.Field("error", lib.GetDetailForLogging(err)))
		}
		return nil, err
	}

	ids := entryIDs(entries)
	cs.products.InvalidateProducts(ids...)

	OrdersCreatedTotal.Inc()
	for _, item := range items {
		OrderItemsSoldTotal.Add(float64(item.Quantity))
	}

	result := summarizeOrder(order, items)
	cs.logger.Info("Order placed",
		gecho.Field("order_id", order.ID),
		gecho.Field("user_id", user.ID),
		gecho.Field("lines", len(items)),
		gecho.Field("total", result.TotalValue.StringFixed(2)),
		gecho.Field("duration", time.Since(startTime)),
	)
	return &result, nil
}

func entryIDs(entries []lib.BasketEntry) []int64 {
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.ProductID
	}
	return ids
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, lib.ErrEmptyBasket):
		return "empty_basket"
	case errors.Is(err, lib.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, lib.ErrNotFound):
		return "not_found"
	case errors.Is(err, lib.ErrUnauthenticated):
		return "unauthenticated"
	}
	var ve *lib.ValidationError
	if errors.As(err, &ve) {
		return "invalid"
	}
	return "error"
}
