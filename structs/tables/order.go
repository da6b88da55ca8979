package tables

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	UserEmail     string    `bun:"user_email,notnull" json:"user_email"` // owner, denormalized
	Address       string    `bun:"address,notnull" json:"address"`
	DateOrdered   time.Time `bun:"date_ordered,notnull,default:current_timestamp" json:"date_ordered"`
}

type OrderItem struct {
	bun.BaseModel `bun:"table:order_items,alias:oi"`
	ID            int64 `bun:"id,pk,autoincrement" json:"id"`
	OrderID       int64 `bun:"order_id,notnull" json:"order_id"`
	ProductID     int64 `bun:"product_id,notnull" json:"product_id"`
	Quantity      int   `bun:"quantity,notnull" json:"quantity"`

	// Snapshot of the product when ordered
	UnitPrice   decimal.Decimal `bun:"unit_price,type:numeric(10,2),notnull" json:"unit_price"`
	ProductName string          `bun:"product_name,notnull" json:"product_name"`
}

// LineTotal is UnitPrice * Quantity.
func (oi *OrderItem) LineTotal() decimal.Decimal {
	return oi.UnitPrice.Mul(decimal.NewFromInt(int64(oi.Quantity)))
}
