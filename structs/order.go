package structs

import "github.com/shopspring/decimal"

type OrderSummaryLine struct {
	ProductID  int64           `json:"product_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type OrderSummary struct {
	ID          int64              `json:"id"`
	Address     string             `json:"address"`
	DateOrdered string             `json:"date_ordered"`
	Items       []OrderSummaryLine `json:"items"`
	TotalValue  decimal.Decimal    `json:"total_value"`
}
