package services

import (
	"context"
	"fmt"
	"storefront_server/database"
	"storefront_server/lib"
	"storefront_server/structs"
	"storefront_server/structs/tables"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/shopspring/decimal"
)

type OrderService struct {
	logger *gecho.Logger
	store  database.Store
}

func NewOrderService(logger *gecho.Logger, store database.Store) *OrderService {
	return &OrderService{
		logger: logger,
		store:  store,
	}
}

// ListOrdersForAccount returns the orders placed under email, newest first,
// priced with the prices captured when each order was placed.
func (os *OrderService) ListOrdersForAccount(ctx context.Context, email string) ([]structs.OrderSummary, error) {
	startTime := time.Now()

	orders, err := os.store.ListOrdersByEmail(ctx, email)
	if err != nil {
		os.logger.Error("Failed to fetch orders", gecho.Field("error", lib.GetDetailForLogging(err)))
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	if len(orders) == 0 {
		return []structs.OrderSummary{}, nil
	}

	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	items, err := os.store.ListOrderItems(ctx, ids)
	if err != nil {
		os.logger.Error("Failed to fetch order items", gecho.Field("error", lib.GetDetailForLogging(err)))
		return nil, fmt.Errorf("failed to fetch order items: %w", err)
	}

	byOrder := make(map[int64][]tables.OrderItem, len(orders))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}

	summaries := make([]structs.OrderSummary, 0, len(orders))
	for _, o := range orders {
		summaries = append(summaries, summarizeOrder(o, byOrder[o.ID]))
	}

	os.logger.Debug("Order history fetched",
		gecho.Field("orders", len(summaries)),
		gecho.Field("duration", time.Since(startTime)),
	)
	return summaries, nil
}

// ListOrdersForSession resolves the session's current email first.
func (os *OrderService) ListOrdersForSession(ctx context.Context, session *structs.Session) ([]structs.OrderSummary, error) {
	if session == nil {
		return nil, lib.ErrUnauthenticated
	}
	user, err := os.store.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	return os.ListOrdersForAccount(ctx, user.Email)
}

func summarizeOrder(order tables.Order, items []tables.OrderItem) structs.OrderSummary {
	summary := structs.OrderSummary{
		ID:          order.ID,
		Address:     order.Address,
		DateOrdered: order.DateOrdered.Format(structs.DisplayTimeFormat),
		Items:       make([]structs.OrderSummaryLine, 0, len(items)),
		TotalValue:  decimal.Zero,
	}
	for i := range items {
		line := structs.OrderSummaryLine{
			ProductID:  items[i].ProductID,
			Name:       items[i].ProductName,
			Quantity:   items[i].Quantity,
			Price:      items[i].UnitPrice,
			TotalPrice: items[i].LineTotal(),
		}
		summary.Items = append(summary.Items, line)
		summary.TotalValue = summary.TotalValue.Add(line.TotalPrice)
	}
	return summary
}
