package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// All executes the query and returns all matching records
func (q *QueryBuilder[T]) All(ctx context.Context) ([]T, error) {
	start := time.Now()
	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	var data []T
	err := q.retry(ctx, func() error {
		data = nil
		return q.buildSelect(&data).Scan(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute select query: %w (took %v)", err, time.Since(start))
	}

	return data, nil
}

// First returns the first matching record, or nil, nil when there is none.
func (q *QueryBuilder[T]) First(ctx context.Context) (*T, error) {
	start := time.Now()
	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	var data T
	err := q.retry(ctx, func() error {
		return q.buildSelect(&data).Limit(1).Scan(ctx)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to execute first query: %w (took %v)", err, time.Since(start))
	}

	return &data, nil
}

// Insert inserts one record; generated columns are scanned back into data.
func (q *QueryBuilder[T]) Insert(ctx context.Context, data *T) error {
	start := time.Now()
	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	err := q.retry(ctx, func() error {
		_, err := q.db.NewInsert().Model(data).Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to insert record: %w (took %v)", err, time.Since(start))
	}
	return nil
}

// InsertMany bulk-inserts records in one statement.
func (q *QueryBuilder[T]) InsertMany(ctx context.Context, data []T) error {
	if len(data) == 0 {
		return nil
	}
	start := time.Now()
	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	err := q.retry(ctx, func() error {
		_, err := q.db.NewInsert().Model(&data).Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to insert records: %w (took %v)", err, time.Since(start))
	}
	return nil
}

// Update sets columns on every matching row and returns the number of rows
// affected. Values may be bun expressions (bun.Safe / bun.Ident) for
// column arithmetic.
func (q *QueryBuilder[T]) Update(ctx context.Context, data map[string]any) (int, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("no columns to update")
	}
	if len(q.wheres) == 0 {
		return 0, fmt.Errorf("refusing to update without a where clause")
	}
	start := time.Now()
	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	var affected int64
	err := q.retry(ctx, func() error {
		query := q.db.NewUpdate().Model((*T)(nil))
		for column, value := range data {
			query = query.Set("? = ?", bun.Ident(column), value)
		}
		for _, w := range q.wheres {
			query = query.Where(w.query, w.args...)
		}

		res, err := query.Exec(ctx)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to update records: %w (took %v)", err, time.Since(start))
	}
	return int(affected), nil
}
