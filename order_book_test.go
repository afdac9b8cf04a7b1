package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func bookOrder(id string, side Side, orderType OrderType, price string, at time.Time) *Order {
	order := limitOrder(id, side, 10, price)
	order.ID = id
	order.Type = orderType
	if orderType == Market {
		order.LimitPrice = nil
	}
	order.CreationTime = at
	return order
}

func orderIDs(orders []*Order) []string {
	ids := make([]string, 0, len(orders))
	for _, order := range orders {
		ids = append(ids, order.ID)
	}
	return ids
}

func TestOrderBookBuyPriority(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	book := NewOrderBook("AAPL")

	book.Add(bookOrder("b-low", Buy, Limit, "90", base))
	book.Add(bookOrder("b-high", Buy, Limit, "110", base.Add(time.Second)))
	book.Add(bookOrder("b-market", Buy, Market, "", base.Add(2*time.Second)))
	book.Add(bookOrder("b-mid", Buy, Limit, "100", base.Add(3*time.Second)))

	assert.Equal(t, []string{"b-market", "b-high", "b-mid", "b-low"}, orderIDs(book.Buys()))
	assert.Equal(t, 4, book.BuyCount())
	assert.Equal(t, 0, book.SellCount())
}

func TestOrderBookSellPriority(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	book := NewOrderBook("AAPL")

	book.Add(bookOrder("s-high", Sell, Limit, "110", base))
	book.Add(bookOrder("s-low", Sell, Limit, "90", base.Add(time.Second)))
	book.Add(bookOrder("s-market", Sell, Market, "", base.Add(2*time.Second)))

	assert.Equal(t, []string{"s-market", "s-low", "s-high"}, orderIDs(book.Sells()))
}

func TestOrderBookTimePriorityAtSamePrice(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	book := NewOrderBook("AAPL")

	book.Add(bookOrder("b-later", Buy, Limit, "100", base.Add(time.Minute)))
	book.Add(bookOrder("b-earlier", Buy, Limit, "100", base))

	assert.Equal(t, []string{"b-earlier", "b-later"}, orderIDs(book.Buys()))
}

func TestOrderBookIDBreaksExactTies(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	book := NewOrderBook("AAPL")

	book.Add(bookOrder("b", Buy, Limit, "100", at))
	book.Add(bookOrder("a", Buy, Limit, "100", at))

	assert.Equal(t, []string{"a", "b"}, orderIDs(book.Buys()))
}

func TestOrderBookMarketOrdersByArrival(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	book := NewOrderBook("AAPL")

	book.Add(bookOrder("m-second", Sell, Market, "", base.Add(time.Second)))
	book.Add(bookOrder("m-first", Sell, Market, "", base))

	assert.Equal(t, []string{"m-first", "m-second"}, orderIDs(book.Sells()))
}

func TestOrderBookSymbol(t *testing.T) {
	book := NewOrderBook("MSFT")
	assert.Equal(t, "MSFT", book.Symbol())
}
