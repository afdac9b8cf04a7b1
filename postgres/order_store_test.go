package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	matching "github.com/archfirst/bullsfirst-exchange"
)

func newOrderStoreMock(t *testing.T) (*OrderStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewOrderStore(db), mock
}

func sampleOrder() *matching.Order {
	price := matching.NewMoney(decimal.NewFromInt(50), "USD")
	order := matching.NewOrder("c-1", matching.Buy, "AAPL",
		decimal.NewFromInt(100), matching.Limit, &price, matching.GoodForDay, false)
	order.Accept()
	return order
}

func orderRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "creation_time", "client_order_id", "side", "symbol", "quantity",
		"type", "limit_price", "currency", "term", "all_or_none", "status",
	})
}

func execRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "creation_time", "quantity", "price", "currency",
	})
}

func TestOrderStoreCreate(t *testing.T) {
	store, mock := newOrderStoreMock(t)
	order := sampleOrder()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Create(context.Background(), order))
	assert.NotEmpty(t, order.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderStoreCreateDuplicate(t *testing.T) {
	store, mock := newOrderStoreMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := store.Create(context.Background(), sampleOrder())
	assert.ErrorIs(t, err, matching.ErrDuplicateClientOrderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderStoreUpdateCommitsBothSides(t *testing.T) {
	store, mock := newOrderStoreMock(t)

	buy := sampleOrder()
	buy.ID = "order-buy"
	sell := sampleOrder()
	sell.ID = "order-sell"
	sell.Side = matching.Sell

	price := matching.NewMoney(decimal.NewFromInt(50), "USD")
	_, ok := buy.Execute(time.Now().UTC(), decimal.NewFromInt(100), price)
	require.True(t, ok)
	_, ok = sell.Execute(time.Now().UTC(), decimal.NewFromInt(100), price)
	require.True(t, ok)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status")).
		WithArgs("filled", "order-buy").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO executions")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status")).
		WithArgs("filled", "order-sell").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO executions")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.Update(context.Background(), buy, sell))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderStoreUpdateUnknownOrderRollsBack(t *testing.T) {
	store, mock := newOrderStoreMock(t)

	order := sampleOrder()
	order.ID = "missing"

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.Update(context.Background(), order)
	assert.ErrorIs(t, err, matching.ErrOrderNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderStoreFindByID(t *testing.T) {
	store, mock := newOrderStoreMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = $1")).
		WithArgs("order-1").
		WillReturnRows(orderRows().AddRow(
			"order-1", now, "c-1", "buy", "AAPL", "100",
			"limit", "50.00", "USD", "good_for_day", false, "partially_filled"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM executions")).
		WithArgs("order-1").
		WillReturnRows(execRows().AddRow("exec-1", now, "40", "50.00", "USD"))

	order, err := store.FindByID(context.Background(), "order-1")
	require.NoError(t, err)

	assert.Equal(t, "order-1", order.ID)
	assert.Equal(t, matching.Buy, order.Side)
	assert.Equal(t, matching.StatusPartiallyFilled, order.Status)
	require.NotNil(t, order.LimitPrice)
	assert.Equal(t, "USD", order.LimitPrice.Currency)
	require.Len(t, order.Executions, 1)
	assert.True(t, order.CumQty().Equal(decimal.NewFromInt(40)))
	assert.True(t, order.LeavesQty().Equal(decimal.NewFromInt(60)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderStoreFindByIDNotFound(t *testing.T) {
	store, mock := newOrderStoreMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(orderRows())

	_, err := store.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, matching.ErrOrderNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderStoreFindByClientOrderID(t *testing.T) {
	store, mock := newOrderStoreMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE client_order_id = $1")).
		WithArgs("c-1").
		WillReturnRows(orderRows().AddRow(
			"order-1", now, "c-1", "sell", "AAPL", "10",
			"market", nil, nil, "good_til_canceled", true, "new"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM executions")).
		WithArgs("order-1").
		WillReturnRows(execRows())

	order, err := store.FindByClientOrderID(context.Background(), "c-1")
	require.NoError(t, err)

	assert.Equal(t, matching.Sell, order.Side)
	assert.Equal(t, matching.Market, order.Type)
	assert.Nil(t, order.LimitPrice)
	assert.True(t, order.AllOrNone)
	assert.Equal(t, matching.GoodTilCanceled, order.Term)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderStoreActiveOrders(t *testing.T) {
	store, mock := newOrderStoreMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE symbol = $1 AND status IN ($2, $3)")).
		WithArgs("AAPL", "new", "partially_filled").
		WillReturnRows(orderRows().
			AddRow("order-1", now, "c-1", "buy", "AAPL", "100",
				"limit", "50.00", "USD", "good_for_day", false, "new").
			AddRow("order-2", now, "c-2", "sell", "AAPL", "30",
				"limit", "51.00", "USD", "good_for_day", false, "partially_filled"))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE order_id = ANY($1)")).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "order_id", "creation_time", "quantity", "price", "currency",
		}).AddRow("exec-1", "order-2", now, "10", "51.00", "USD"))

	orders, err := store.ActiveOrders(context.Background(), "AAPL")
	require.NoError(t, err)

	require.Len(t, orders, 2)
	assert.Empty(t, orders[0].Executions)
	require.Len(t, orders[1].Executions, 1)
	assert.True(t, orders[1].LeavesQty().Equal(decimal.NewFromInt(20)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderStoreActiveOrdersEmpty(t *testing.T) {
	store, mock := newOrderStoreMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE symbol = $1 AND status IN ($2, $3)")).
		WillReturnRows(orderRows())

	orders, err := store.ActiveOrders(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderStoreActiveSymbols(t *testing.T) {
	store, mock := newOrderStoreMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT symbol")).
		WithArgs("new", "partially_filled").
		WillReturnRows(sqlmock.NewRows([]string{"symbol"}).
			AddRow("AAPL").AddRow("MSFT"))

	symbols, err := store.ActiveSymbols(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, symbols)
	assert.NoError(t, mock.ExpectationsWereMet())
}
