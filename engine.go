package matching

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

// noMatchReason distinguishes the ordinary "no match this round" outcomes.
// The scan-termination rules depend on telling a true price mismatch apart from
// a size restriction: a price mismatch ends the scan (the book is price-ordered)
// while an all-or-none rejection only skips the counterparty.
type noMatchReason int8

const (
	reasonNone noMatchReason = iota
	reasonPriceMismatch
	reasonAllOrNone
	reasonNoReferencePrice
	reasonCurrencyMismatch
)

// BookStats contains statistics about a symbol's active orders.
type BookStats struct {
	BuyOrders  int
	SellOrders int
}

// MatchingEngine builds per-symbol books from the order store, runs the
// matching pass and emits order and market-data events.
//
// All state transitions for a symbol - acceptance, matching, cancellation and
// the end-of-day sweep - are serialized behind one mutex per symbol, so the
// book snapshot used by a pass is never invalidated mid-pass. Different
// symbols proceed concurrently with no cross-symbol coordination.
type MatchingEngine struct {
	seqID       atomic.Uint64
	symbolLocks sync.Map
	orders      OrderStore
	prices      ReferencePriceStore
	orderSink   OrderEventSink
	marketSink  MarketDataSink
}

// NewMatchingEngine creates a new matching engine instance.
func NewMatchingEngine(orders OrderStore, prices ReferencePriceStore,
	orderSink OrderEventSink, marketSink MarketDataSink) *MatchingEngine {
	return &MatchingEngine{
		orders:     orders,
		prices:     prices,
		orderSink:  orderSink,
		marketSink: marketSink,
	}
}

func (e *MatchingEngine) symbolLock(symbol string) *sync.Mutex {
	mu, _ := e.symbolLocks.LoadOrStore(symbol, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// PlaceOrder validates the order, persists and accepts it, emits OrderAccepted
// and runs a matching pass for its symbol. Contract violations (non-positive
// quantity, missing limit price, mismatched currency) fail fast before the
// order enters the book.
func (e *MatchingEngine) PlaceOrder(ctx context.Context, order *Order) error {
	if err := order.Validate(); err != nil {
		return err
	}

	mu := e.symbolLock(order.Symbol)
	mu.Lock()
	defer mu.Unlock()

	if order.Type == Limit {
		if err := e.checkCurrency(ctx, order); err != nil {
			return err
		}
	}

	if err := e.orders.Create(ctx, order); err != nil {
		return err
	}
	if !order.Accept() {
		return ErrInternal
	}
	if err := e.orders.Update(ctx, order); err != nil {
		return err
	}
	e.publishOrderEvent(EventOrderAccepted, order, nil)

	if err := e.performMatching(ctx, order.Symbol); err != nil {
		return err
	}

	// The pass works on store-loaded aggregates; reflect its outcome in the
	// caller's order before returning.
	refreshed, err := e.orders.FindByID(ctx, order.ID)
	if err != nil {
		return err
	}
	*order = *refreshed
	return nil
}

// checkCurrency rejects a limit order whose currency disagrees with the
// symbol's pricing: the reference price when one exists, the resting limit
// orders otherwise. Runs under the symbol lock before Create, so a mismatched
// order never enters the book.
func (e *MatchingEngine) checkCurrency(ctx context.Context, order *Order) error {
	ref, err := e.prices.ReferencePrice(ctx, order.Symbol)
	if err == nil {
		if !ref.SameCurrency(*order.LimitPrice) {
			return ErrCurrencyMismatch
		}
		return nil
	}
	if !errors.Is(err, ErrNoReferencePrice) {
		return err
	}

	active, err := e.orders.ActiveOrders(ctx, order.Symbol)
	if err != nil {
		return err
	}
	for _, resting := range active {
		if resting.LimitPrice != nil && !resting.LimitPrice.SameCurrency(*order.LimitPrice) {
			return ErrCurrencyMismatch
		}
	}
	return nil
}

// Cancel attempts to cancel the order with the given store-assigned id.
// The persisted state is authoritative: a cancel that loses the race against an
// in-flight fill yields an OrderCancelRejected event, a normal outcome rather
// than an error.
func (e *MatchingEngine) Cancel(ctx context.Context, orderID string) error {
	order, err := e.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	mu := e.symbolLock(order.Symbol)
	mu.Lock()
	defer mu.Unlock()

	// Re-read under the lock; the order may have been filled meanwhile.
	order, err = e.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	if !order.Cancel() {
		e.publishOrderEvent(EventOrderCancelRejected, order, nil)
		return nil
	}
	if err := e.orders.Update(ctx, order); err != nil {
		return err
	}
	e.publishOrderEvent(EventOrderCanceled, order, nil)
	return nil
}

// HandleEndOfDay force-expires every active good-for-day order and emits one
// OrderDoneForDay per expired order. Good-til-canceled orders are untouched.
// Each symbol is swept under the same lock as ordinary matching.
func (e *MatchingEngine) HandleEndOfDay(ctx context.Context) error {
	symbols, err := e.orders.ActiveSymbols(ctx)
	if err != nil {
		return err
	}
	for _, symbol := range symbols {
		if err := e.sweepSymbol(ctx, symbol); err != nil {
			return err
		}
	}
	return nil
}

func (e *MatchingEngine) sweepSymbol(ctx context.Context, symbol string) error {
	mu := e.symbolLock(symbol)
	mu.Lock()
	defer mu.Unlock()

	active, err := e.orders.ActiveOrders(ctx, symbol)
	if err != nil {
		return err
	}
	for _, order := range active {
		if order.Term != GoodForDay {
			continue
		}
		if !order.DoneForDay() {
			continue
		}
		if err := e.orders.Update(ctx, order); err != nil {
			return err
		}
		e.publishOrderEvent(EventOrderDoneForDay, order, nil)
	}
	return nil
}

// Stats returns the number of active orders per side for the symbol.
func (e *MatchingEngine) Stats(ctx context.Context, symbol string) (*BookStats, error) {
	active, err := e.orders.ActiveOrders(ctx, symbol)
	if err != nil {
		return nil, err
	}

	stats := &BookStats{}
	for _, order := range active {
		if order.Side == Buy {
			stats.BuyOrders++
		} else {
			stats.SellOrders++
		}
	}
	return stats, nil
}

// performMatching runs one scan-and-match pass over the symbol's book.
//
// The reference price is read once at pass start and carried locally; the store
// is written back - and a single MarketPriceChanged event published - only when
// the final price differs from the pre-matching snapshot, never once per trade.
func (e *MatchingEngine) performMatching(ctx context.Context, symbol string) error {
	preMatchingPrice, err := e.prices.ReferencePrice(ctx, symbol)
	preKnown := true
	if err != nil {
		if !errors.Is(err, ErrNoReferencePrice) {
			return err
		}
		preKnown = false
	}

	active, err := e.orders.ActiveOrders(ctx, symbol)
	if err != nil {
		return err
	}
	book := NewOrderBook(symbol)
	for _, order := range active {
		book.Add(order)
	}

	current := preMatchingPrice
	refKnown := preKnown
	sells := book.Sells()

	for _, buy := range book.Buys() {
		if buy.Status.Terminal() {
			continue
		}

		matched := false
		skipped := false
		priceBlocked := false

		for _, sell := range sells {
			if sell.Status.Terminal() {
				// filled earlier in this pass
				continue
			}

			price, reason, err := e.matchOrder(ctx, buy, sell, current, refKnown)
			if err != nil {
				return err
			}

			switch reason {
			case reasonNone:
				matched = true
				current = price
				refKnown = true
			case reasonAllOrNone, reasonNoReferencePrice, reasonCurrencyMismatch:
				// A different sell may satisfy the restriction; keep scanning.
				skipped = true
			case reasonPriceMismatch:
				// The book is price-ordered; no later sell can match either.
				priceBlocked = true
			}

			if priceBlocked || buy.Status == StatusFilled {
				break
			}
		}

		// A buy blocked purely on price means no later, worse-priced buy can
		// cross either. Skipped counterparties void the shortcut: a smaller
		// buy deeper in the book may still satisfy an all-or-none sell.
		if priceBlocked && !matched && !skipped {
			break
		}
	}

	if refKnown && (!preKnown || !current.Equal(preMatchingPrice)) {
		if err := e.prices.SetReferencePrice(ctx, symbol, current); err != nil {
			return err
		}
		e.marketSink.PublishPrice(&MarketPriceEvent{
			SequenceID: e.seqID.Add(1),
			Symbol:     symbol,
			Price:      current,
			CreatedAt:  time.Now().UTC(),
		})
	}
	return nil
}

// matchOrder resolves price and quantity for one buy/sell pair and, on a match,
// fills both sides as one atomic unit and publishes one OrderExecuted per side.
// The returned Money is the reference price after the trade.
//
// Resolution precedence: the all-or-none size check first, then market/market
// at the reference price, market/limit at the limit side's price, and
// limit/limit at the rounded midpoint when the prices cross.
func (e *MatchingEngine) matchOrder(ctx context.Context, buy, sell *Order,
	refPrice Money, refKnown bool) (Money, noMatchReason, error) {
	buyLeaves := buy.LeavesQty()
	sellLeaves := sell.LeavesQty()

	if (buy.AllOrNone && buyLeaves.GreaterThan(sellLeaves)) ||
		(sell.AllOrNone && sellLeaves.GreaterThan(buyLeaves)) {
		return refPrice, reasonAllOrNone, nil
	}

	var price Money
	switch {
	case buy.Type == Market && sell.Type == Market:
		if !refKnown {
			// Nothing to price two market orders against; a limit order deeper
			// in the book may still price this one, so keep scanning.
			return refPrice, reasonNoReferencePrice, nil
		}
		price = refPrice
	case buy.Type == Market:
		price = *sell.LimitPrice
	case sell.Type == Market:
		price = *buy.LimitPrice
	default:
		if !buy.LimitPrice.SameCurrency(*sell.LimitPrice) {
			// Placement rejects mismatched currencies, but an already resting
			// pair must not abort the pass.
			return refPrice, reasonCurrencyMismatch, nil
		}
		if buy.LimitPrice.Amount.LessThan(sell.LimitPrice.Amount) {
			return refPrice, reasonPriceMismatch, nil
		}
		mid, err := buy.LimitPrice.Midpoint(*sell.LimitPrice)
		if err != nil {
			return refPrice, reasonNone, err
		}
		price = mid
	}

	quantity := decimal.Min(buyLeaves, sellLeaves)
	now := time.Now().UTC()

	buyExec, ok := buy.Execute(now, quantity, price)
	if !ok {
		return refPrice, reasonNone, ErrInternal
	}
	sellExec, ok := sell.Execute(now, quantity, price)
	if !ok {
		return refPrice, reasonNone, ErrInternal
	}

	// One Update call: both sides of the trade persist atomically.
	if err := e.orders.Update(ctx, buy, sell); err != nil {
		return refPrice, reasonNone, err
	}

	e.publishOrderEvent(EventOrderExecuted, buy, buyExec)
	e.publishOrderEvent(EventOrderExecuted, sell, sellExec)

	return price, reasonNone, nil
}

func (e *MatchingEngine) publishOrderEvent(eventType EventType, order *Order, exec *Execution) {
	ev := acquireOrderEvent()
	ev.SequenceID = e.seqID.Add(1)
	ev.Type = eventType
	ev.OrderID = order.ID
	ev.ClientOrderID = order.ClientOrderID
	ev.Symbol = order.Symbol
	ev.Side = order.Side
	ev.Status = order.Status
	ev.LeavesQty = order.LeavesQty()
	if exec != nil {
		ev.ExecutionID = exec.ID
		ev.Quantity = exec.Quantity
		price := exec.Price
		ev.Price = &price
		ev.CreatedAt = exec.CreationTime
	} else {
		ev.Quantity = order.Quantity
		if order.LimitPrice != nil {
			price := *order.LimitPrice
			ev.Price = &price
		}
		ev.CreatedAt = time.Now().UTC()
	}

	e.orderSink.Publish(ev)
	releaseOrderEvent(ev)
}
