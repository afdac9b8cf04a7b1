package matching

import (
	"strings"

	"github.com/huandu/skiplist"
)

// OrderBook is a single-use, per-symbol projection of the currently active
// orders, split into priority-ordered buy and sell collections. A book is built
// fresh from the order store immediately before each matching pass and
// discarded afterwards; there is no remove operation.
type OrderBook struct {
	symbol string
	buys   *bookSide
	sells  *bookSide
}

// NewOrderBook creates an empty book for one symbol.
func NewOrderBook(symbol string) *OrderBook {
	return &OrderBook{
		symbol: symbol,
		buys:   newBuySide(),
		sells:  newSellSide(),
	}
}

// Symbol returns the symbol this book projects.
func (b *OrderBook) Symbol() string {
	return b.symbol
}

// Add classifies the order into its side's collection.
func (b *OrderBook) Add(order *Order) {
	if order.Side == Buy {
		b.buys.insert(order)
	} else {
		b.sells.insert(order)
	}
}

// Buys returns the buy orders in matching-priority order.
func (b *OrderBook) Buys() []*Order {
	return b.buys.ordered()
}

// Sells returns the sell orders in matching-priority order.
func (b *OrderBook) Sells() []*Order {
	return b.sells.ordered()
}

// BuyCount returns the number of buy orders in the book.
func (b *OrderBook) BuyCount() int {
	return b.buys.list.Len()
}

// SellCount returns the number of sell orders in the book.
func (b *OrderBook) SellCount() int {
	return b.sells.list.Len()
}

// bookSide keeps one side's orders sorted by the full matching priority so the
// ordering is total, not merely weak.
type bookSide struct {
	side Side
	list *skiplist.SkipList
}

// newBuySide creates the collection for buy orders (bids).
// Market orders come first, then limits by descending price.
func newBuySide() *bookSide {
	return &bookSide{
		side: Buy,
		list: skiplist.New(skiplist.GreaterThanFunc(func(lhs, rhs any) int {
			o1, _ := lhs.(*Order)
			o2, _ := rhs.(*Order)
			return compareBuyPriority(o1, o2)
		})),
	}
}

// newSellSide creates the collection for sell orders (asks).
// Market orders come first, then limits by ascending price.
func newSellSide() *bookSide {
	return &bookSide{
		side: Sell,
		list: skiplist.New(skiplist.GreaterThanFunc(func(lhs, rhs any) int {
			o1, _ := lhs.(*Order)
			o2, _ := rhs.(*Order)
			return compareSellPriority(o1, o2)
		})),
	}
}

func (s *bookSide) insert(order *Order) {
	s.list.Set(order, order)
}

func (s *bookSide) ordered() []*Order {
	result := make([]*Order, 0, s.list.Len())
	for el := s.list.Front(); el != nil; el = el.Next() {
		order, _ := el.Value.(*Order)
		result = append(result, order)
	}
	return result
}

// compareBuyPriority returns -1 when a outranks b on the buy side:
// market orders before limits, higher limit prices before lower, earlier
// creation wins ties, and the order id breaks any remaining tie.
func compareBuyPriority(a, b *Order) int {
	if c := compareMarketFirst(a, b); c != 0 {
		return c
	}
	if a.Type == Limit && b.Type == Limit {
		if a.LimitPrice.Amount.GreaterThan(b.LimitPrice.Amount) {
			return -1
		}
		if a.LimitPrice.Amount.LessThan(b.LimitPrice.Amount) {
			return 1
		}
	}
	return compareArrival(a, b)
}

// compareSellPriority returns -1 when a outranks b on the sell side:
// market orders before limits, lower limit prices before higher, then the same
// time and id tie-breaks as the buy side.
func compareSellPriority(a, b *Order) int {
	if c := compareMarketFirst(a, b); c != 0 {
		return c
	}
	if a.Type == Limit && b.Type == Limit {
		if a.LimitPrice.Amount.LessThan(b.LimitPrice.Amount) {
			return -1
		}
		if a.LimitPrice.Amount.GreaterThan(b.LimitPrice.Amount) {
			return 1
		}
	}
	return compareArrival(a, b)
}

func compareMarketFirst(a, b *Order) int {
	if a.Type == Market && b.Type != Market {
		return -1
	}
	if a.Type != Market && b.Type == Market {
		return 1
	}
	return 0
}

func compareArrival(a, b *Order) int {
	if a.CreationTime.Before(b.CreationTime) {
		return -1
	}
	if a.CreationTime.After(b.CreationTime) {
		return 1
	}
	return strings.Compare(a.ID, b.ID)
}
