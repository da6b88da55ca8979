package structs

import "storefront_server/structs/tables"

// DisplayTimeFormat is used for every timestamp rendered to shoppers.
const DisplayTimeFormat = "2006-01-02 15:04:05"

type ProductSort string

const (
	SortNameAsc   ProductSort = "a-to-z"
	SortPriceAsc  ProductSort = "low-to-high"
	SortPriceDesc ProductSort = "high-to-low"
)

type ProductListOptions struct {
	Sort    ProductSort `json:"sort"`
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"` // 0 returns the whole catalog
}

type ProductList struct {
	Products []tables.Product   `json:"products"`
	Options  ProductListOptions `json:"options"`
	Total    int                `json:"total"`
}

type AddReviewRequest struct {
	ProductID int64  `form:"product_id" validate:"required,gt=0"`
	Rating    int    `form:"rating" validate:"required,min=1,max=5"`
	Comment   string `form:"comment" validate:"required,max=2000"`
}

type ReviewView struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"created_at"`
}

type ProductDetail struct {
	Product *tables.Product `json:"product"`
	Reviews []ReviewView    `json:"reviews"`
}
