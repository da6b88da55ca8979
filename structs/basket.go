package structs

import "github.com/shopspring/decimal"

type AddToBasketRequest struct {
	ProductID int64 `form:"product_id" validate:"required,gt=0"`
	Quantity  int   `form:"quantity" validate:"required,gt=0"`
}

// UpdateBasketRequest sets the quantity of a line; zero or less removes it.
type UpdateBasketRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"`
}

type DeleteFromBasketRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

type BasketLine struct {
	ProductID  int64           `json:"id"`
	Name       string          `json:"name"`
	Image      string          `json:"img,omitempty"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// BasketView is the priced projection of a basket, shared by the basket
// page and the checkout review step.
type BasketView struct {
	Lines     []BasketLine    `json:"items"`
	TotalCost decimal.Decimal `json:"total_cost"`
	ItemCount int             `json:"item_count"`
}

type CheckoutRequest struct {
	Address string `form:"address" validate:"required,max=500"`
}
