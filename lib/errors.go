package lib

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Database errors
var (
	ErrConflict = errors.New("conflict")
	ErrNotFound = errors.New("not found")
)

// Auth errors
var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("expired token")
	ErrRevokedToken       = errors.New("revoked token")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrRejected           = errors.New("rejected")
)

// Checkout errors
var (
	ErrEmptyBasket       = errors.New("basket is empty")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError names the first basket line that could not be
// covered by stock. It matches ErrInsufficientStock with errors.Is.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// MapPgError translates driver errors into the package sentinels, leaving
// anything it does not recognise untouched.
func MapPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %s", ErrNotFound, pgErr.ConstraintName)
		case "P0002": // no_data_found
			return ErrNotFound
		}
	}
	return err
}

func IsUniqueViolation(err error) bool {
	return errors.Is(MapPgError(err), ErrConflict)
}

func IsNotFound(err error) bool {
	return errors.Is(MapPgError(err), ErrNotFound)
}

// GetDetailForLogging returns the server-side detail of a pg error, which
// must never reach a shopper.
func GetDetailForLogging(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Sprintf("%s (%s): %s", pgErr.Message, pgErr.Code, pgErr.Detail)
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
