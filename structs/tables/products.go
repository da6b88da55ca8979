package tables

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`
	ID            int64           `bun:"id,pk,autoincrement" json:"id"`
	Name          string          `bun:"name,notnull" json:"name"`
	Image         string          `bun:"image,nullzero" json:"img,omitempty"`
	Description   string          `bun:"description,notnull" json:"description"`
	Price         decimal.Decimal `bun:"price,type:numeric(10,2),notnull" json:"price"`
	Stock         int             `bun:"stock,notnull,default:0" json:"stock"`
}

type Review struct {
	bun.BaseModel `bun:"table:reviews,alias:r"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	ProductID     int64     `bun:"product_id,notnull" json:"product_id"`
	UserID        int64     `bun:"user_id,notnull" json:"user_id"`
	Rating        int       `bun:"rating,notnull" json:"rating"`
	Comment       string    `bun:"comment,notnull" json:"comment"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`

	User *User `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
}
