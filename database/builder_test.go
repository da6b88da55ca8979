package database

import (
	"context"
	"storefront_server/structs/tables"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgStoreQueriesCarryTimeout(t *testing.T) {
	store := NewPgStore(&DB{}, 2*time.Second)

	ctx, cancel := timed[tables.Product](store).withTimeout(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(2*time.Second), deadline, time.Second)
}

func TestZeroTimeoutLeavesContextUnbounded(t *testing.T) {
	store := NewPgStore(&DB{}, 0)

	ctx, cancel := timed[tables.Product](store).withTimeout(context.Background())
	defer cancel()

	_, ok := ctx.Deadline()
	assert.False(t, ok)
}

func TestWhereOpRejectsUnknownOperator(t *testing.T) {
	assert.Panics(t, func() {
		Query[tables.Product](nil).WhereOp("name", "; DROP", "x")
	})
}
