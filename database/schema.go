package database

import (
	"context"
	"fmt"
	"storefront_server/structs/tables"

	"github.com/uptrace/bun"
)

// CreateSchema creates the storefront tables and indexes when missing.
// Tables are created in dependency order so foreign keys resolve.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	creates := []*bun.CreateTableQuery{
		db.NewCreateTable().Model((*tables.User)(nil)).IfNotExists(),
		db.NewCreateTable().Model((*tables.Product)(nil)).IfNotExists(),
		db.NewCreateTable().Model((*tables.Order)(nil)).IfNotExists(),
		db.NewCreateTable().Model((*tables.OrderItem)(nil)).IfNotExists().
			ForeignKey(`("order_id") REFERENCES "orders" ("id") ON DELETE CASCADE`).
			ForeignKey(`("product_id") REFERENCES "products" ("id")`),
		db.NewCreateTable().Model((*tables.Review)(nil)).IfNotExists().
			ForeignKey(`("product_id") REFERENCES "products" ("id")`).
			ForeignKey(`("user_id") REFERENCES "users" ("id")`),
	}

	for _, q := range creates {
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	indexes := []*bun.CreateIndexQuery{
		db.NewCreateIndex().Model((*tables.Order)(nil)).Index("orders_user_email_idx").Column("user_email").IfNotExists(),
		db.NewCreateIndex().Model((*tables.OrderItem)(nil)).Index("order_items_order_id_idx").Column("order_id").IfNotExists(),
		db.NewCreateIndex().Model((*tables.Review)(nil)).Index("reviews_product_id_idx").Column("product_id", "created_at").IfNotExists(),
	}

	for _, q := range indexes {
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	constraints := []string{
		`ALTER TABLE products DROP CONSTRAINT IF EXISTS products_stock_check`,
		`ALTER TABLE products ADD CONSTRAINT products_stock_check CHECK (stock >= 0)`,
		`ALTER TABLE order_items DROP CONSTRAINT IF EXISTS order_items_quantity_check`,
		`ALTER TABLE order_items ADD CONSTRAINT order_items_quantity_check CHECK (quantity > 0)`,
	}
	for _, stmt := range constraints {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply constraint: %w", err)
		}
	}

	return nil
}
