package matching

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryOrderStoreCreateAssignsID(t *testing.T) {
	store := NewMemoryOrderStore()
	ctx := context.Background()

	order := limitOrder("c-1", Buy, 10, "50.00")
	require.NoError(t, store.Create(ctx, order))
	assert.NotEmpty(t, order.ID)

	err := store.Create(ctx, limitOrder("c-1", Sell, 5, "51.00"))
	assert.ErrorIs(t, err, ErrDuplicateClientOrderID)
}

func TestMemoryOrderStoreIsolatesAggregates(t *testing.T) {
	store := NewMemoryOrderStore()
	ctx := context.Background()

	order := limitOrder("c-1", Buy, 10, "50.00")
	require.NoError(t, store.Create(ctx, order))

	// Mutating the caller's aggregate does not leak into the store until
	// Update writes it back.
	require.True(t, order.Accept())
	stored, err := store.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPendingNew, stored.Status)

	require.NoError(t, store.Update(ctx, order))
	stored, err = store.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusNew, stored.Status)

	// Mutating a read result does not leak either.
	_, ok := stored.Execute(time.Now().UTC(), decimal.NewFromInt(10), usd("50.00"))
	require.True(t, ok)
	again, err := store.FindByClientOrderID(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, StatusNew, again.Status)
	assert.Empty(t, again.Executions)

	active, err := store.ActiveOrders(ctx, "AAPL")
	require.NoError(t, err)
	require.Len(t, active, 1)
	active[0].Status = StatusCanceled
	again, err = store.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusNew, again.Status)
}

func TestMemoryOrderStoreUpdateWritesBackExecutions(t *testing.T) {
	store := NewMemoryOrderStore()
	ctx := context.Background()

	buy := limitOrder("c-buy", Buy, 10, "50.00")
	sell := limitOrder("c-sell", Sell, 10, "50.00")
	require.NoError(t, store.Create(ctx, buy))
	require.NoError(t, store.Create(ctx, sell))
	require.True(t, buy.Accept())
	require.True(t, sell.Accept())
	require.NoError(t, store.Update(ctx, buy, sell))

	now := time.Now().UTC()
	_, ok := buy.Execute(now, decimal.NewFromInt(10), usd("50.00"))
	require.True(t, ok)
	_, ok = sell.Execute(now, decimal.NewFromInt(10), usd("50.00"))
	require.True(t, ok)
	require.NoError(t, store.Update(ctx, buy, sell))

	for _, clientID := range []string{"c-buy", "c-sell"} {
		stored, err := store.FindByClientOrderID(ctx, clientID)
		require.NoError(t, err)
		assert.Equal(t, StatusFilled, stored.Status)
		require.Len(t, stored.Executions, 1)
		assert.True(t, stored.CumQty().Equal(decimal.NewFromInt(10)))
	}
}

func TestMemoryOrderStoreUpdateUnknownOrder(t *testing.T) {
	store := NewMemoryOrderStore()

	order := limitOrder("c-1", Buy, 10, "50.00")
	order.ID = "never-created"
	err := store.Update(context.Background(), order)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestMemoryOrderStoreActiveSymbols(t *testing.T) {
	store := NewMemoryOrderStore()
	ctx := context.Background()

	aapl := limitOrder("c-1", Buy, 10, "50.00")
	msft := limitOrder("c-2", Buy, 10, "50.00")
	msft.Symbol = "MSFT"
	for _, order := range []*Order{aapl, msft} {
		require.NoError(t, store.Create(ctx, order))
		require.True(t, order.Accept())
		require.NoError(t, store.Update(ctx, order))
	}

	symbols, err := store.ActiveSymbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, symbols)
}
