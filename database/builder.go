package database

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// OrderDirection represents sort direction
type OrderDirection string

const (
	ASC  OrderDirection = "ASC"
	DESC OrderDirection = "DESC"
)

var allowedOperators = map[string]bool{
	"=": true, "!=": true, "<>": true, "<": true, "<=": true, ">": true, ">=": true,
	"LIKE": true, "ILIKE": true,
}

type whereClause struct {
	query string
	args  []any
}

// QueryBuilder provides a fluent, type-safe API over bun for a single model.
// It works against the pool or a transaction; inside a transaction the
// executors never retry, since a failed statement aborts the transaction.
type QueryBuilder[T any] struct {
	db        bun.IDB
	inTx      bool
	wheres    []whereClause
	orders    []string
	relations []string
	forUpdate bool
	timeout   time.Duration
}

// Query creates a new QueryBuilder instance
func Query[T any](db bun.IDB) *QueryBuilder[T] {
	_, inTx := db.(bun.Tx)
	return &QueryBuilder[T]{db: db, inTx: inTx}
}

// Where adds "column = value".
func (q *QueryBuilder[T]) Where(column string, value any) *QueryBuilder[T] {
	return q.WhereOp(column, "=", value)
}

// WhereOp adds a comparison; unknown operators panic since they are always
// a programming error.
func (q *QueryBuilder[T]) WhereOp(column, operator string, value any) *QueryBuilder[T] {
	if !allowedOperators[operator] {
		panic(fmt.Sprintf("database: unsupported operator %q", operator))
	}
	q.wheres = append(q.wheres, whereClause{
		query: "? " + operator + " ?",
		args:  []any{bun.Ident(column), value},
	})
	return q
}

// WhereIn adds "column IN (values...)". values must be a slice.
func (q *QueryBuilder[T]) WhereIn(column string, values any) *QueryBuilder[T] {
	q.wheres = append(q.wheres, whereClause{
		query: "? IN (?)",
		args:  []any{bun.Ident(column), bun.In(values)},
	})
	return q
}

func (q *QueryBuilder[T]) OrderBy(column string, direction OrderDirection) *QueryBuilder[T] {
	if direction != DESC {
		direction = ASC
	}
	q.orders = append(q.orders, column+" "+string(direction))
	return q
}

// Relation preloads a bun relation declared on T.
func (q *QueryBuilder[T]) Relation(name string) *QueryBuilder[T] {
	q.relations = append(q.relations, name)
	return q
}

// ForUpdate locks the selected rows until the surrounding transaction ends.
func (q *QueryBuilder[T]) ForUpdate() *QueryBuilder[T] {
	q.forUpdate = true
	return q
}

func (q *QueryBuilder[T]) Timeout(duration time.Duration) *QueryBuilder[T] {
	q.timeout = duration
	return q
}

func (q *QueryBuilder[T]) retry(ctx context.Context, fn func() error) error {
	if q.inTx {
		return fn()
	}
	return WithRetry(ctx, fn)
}

func (q *QueryBuilder[T]) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if q.timeout > 0 {
		return context.WithTimeout(ctx, q.timeout)
	}
	return ctx, func() {}
}

func (q *QueryBuilder[T]) buildSelect(model any) *bun.SelectQuery {
	query := q.db.NewSelect().Model(model)
	for _, rel := range q.relations {
		query = query.Relation(rel)
	}
	for _, w := range q.wheres {
		query = query.Where(w.query, w.args...)
	}
	for _, o := range q.orders {
		query = query.OrderExpr(o)
	}
	if q.forUpdate {
		query = query.For("UPDATE")
	}
	return query
}
