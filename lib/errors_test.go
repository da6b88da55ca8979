package lib

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestInsufficientStockErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("checkout: %w", &InsufficientStockError{ProductID: 3, ProductName: "Pen", Requested: 10, Available: 5})

	assert.ErrorIs(t, err, ErrInsufficientStock)

	var stockErr *InsufficientStockError
	assert.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "Pen", stockErr.ProductName)
}

func TestMapPgError(t *testing.T) {
	assert.ErrorIs(t, MapPgError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}), ErrConflict)
	assert.ErrorIs(t, MapPgError(&pgconn.PgError{Code: "23503"}), ErrNotFound)
	assert.ErrorIs(t, MapPgError(sql.ErrNoRows), ErrNotFound)

	other := errors.New("boom")
	assert.Equal(t, other, MapPgError(other))
	assert.NoError(t, MapPgError(nil))

	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsNotFound(other))
}
