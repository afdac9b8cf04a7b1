package matching

import (
	"time"

	"github.com/rs/xid"
	"github.com/shopspring/decimal"

	"github.com/archfirst/bullsfirst-exchange/protocol"
)

type Side = protocol.Side

const (
	Buy  Side = protocol.SideBuy
	Sell Side = protocol.SideSell
)

type OrderType = protocol.OrderType

const (
	Market OrderType = protocol.OrderTypeMarket
	Limit  OrderType = protocol.OrderTypeLimit
)

type OrderTerm = protocol.OrderTerm

const (
	GoodForDay      OrderTerm = protocol.OrderTermGoodForDay
	GoodTilCanceled OrderTerm = protocol.OrderTermGoodTilCanceled
)

type OrderStatus = protocol.OrderStatus

const (
	StatusPendingNew      OrderStatus = protocol.OrderStatusPendingNew
	StatusNew             OrderStatus = protocol.OrderStatusNew
	StatusPartiallyFilled OrderStatus = protocol.OrderStatusPartiallyFilled
	StatusFilled          OrderStatus = protocol.OrderStatusFilled
	StatusPendingCancel   OrderStatus = protocol.OrderStatusPendingCancel
	StatusCanceled        OrderStatus = protocol.OrderStatusCanceled
	StatusDoneForDay      OrderStatus = protocol.OrderStatusDoneForDay
)

// Execution records a single fill on an order. It is immutable once created and
// belongs to exactly one order for its entire lifetime.
type Execution struct {
	ID           string          `json:"id"`
	CreationTime time.Time       `json:"creation_time"`
	Quantity     decimal.Decimal `json:"quantity"`
	Price        Money           `json:"price"`
}

// Order is the aggregate for a single order: identity, terms, lifecycle status
// and fill bookkeeping. The ID is store-assigned and immutable once set.
type Order struct {
	ID            string          `json:"id"`
	CreationTime  time.Time       `json:"creation_time"`
	ClientOrderID string          `json:"client_order_id"`
	Side          Side            `json:"side"`
	Symbol        string          `json:"symbol"`
	Quantity      decimal.Decimal `json:"quantity"`
	Type          OrderType       `json:"type"`
	LimitPrice    *Money          `json:"limit_price,omitempty"` // required iff Type == Limit
	Term          OrderTerm       `json:"term"`
	AllOrNone     bool            `json:"all_or_none"`
	Status        OrderStatus     `json:"status"`
	Executions    []*Execution    `json:"executions,omitempty"`
}

// NewOrder creates an order in the PendingNew state.
// A limit price supplied for a market order is ignored.
func NewOrder(clientOrderID string, side Side, symbol string, quantity decimal.Decimal,
	orderType OrderType, limitPrice *Money, term OrderTerm, allOrNone bool) *Order {
	if orderType == Market {
		limitPrice = nil
	}
	return &Order{
		CreationTime:  time.Now().UTC(),
		ClientOrderID: clientOrderID,
		Side:          side,
		Symbol:        symbol,
		Quantity:      quantity,
		Type:          orderType,
		LimitPrice:    limitPrice,
		Term:          term,
		AllOrNone:     allOrNone,
		Status:        StatusPendingNew,
	}
}

// Validate checks the placement contract before the order may enter the book.
func (o *Order) Validate() error {
	if o.ClientOrderID == "" {
		return ErrMissingClientOrderID
	}
	if o.Symbol == "" {
		return ErrInvalidParam
	}
	if o.Side != Buy && o.Side != Sell {
		return ErrInvalidParam
	}
	if !o.Quantity.IsPositive() {
		return ErrInvalidQuantity
	}
	if o.Type != Market && o.Type != Limit {
		return ErrInvalidParam
	}
	if o.Type == Limit {
		if o.LimitPrice == nil || o.LimitPrice.Currency == "" || !o.LimitPrice.Amount.IsPositive() {
			return ErrMissingLimitPrice
		}
	}
	if o.Term != GoodForDay && o.Term != GoodTilCanceled {
		return ErrInvalidParam
	}
	return nil
}

// CumQty is the total executed quantity, the sum over all executions.
func (o *Order) CumQty() decimal.Decimal {
	cum := decimal.Zero
	for _, exec := range o.Executions {
		cum = cum.Add(exec.Quantity)
	}
	return cum
}

// LeavesQty is the portion of the order's quantity not yet executed.
func (o *Order) LeavesQty() decimal.Decimal {
	return o.Quantity.Sub(o.CumQty())
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPendingNew:      {StatusNew},
	StatusNew:             {StatusPartiallyFilled, StatusFilled, StatusPendingCancel, StatusDoneForDay},
	StatusPartiallyFilled: {StatusPartiallyFilled, StatusFilled, StatusPendingCancel, StatusDoneForDay},
	StatusPendingCancel:   {StatusCanceled},
}

// transitionTo applies a forward transition. An invalid request is a no-op, not
// a failure: the order keeps its state and the caller observes false.
func (o *Order) transitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[o.Status] {
		if allowed == next {
			o.Status = next
			return true
		}
	}
	return false
}

// Accept moves a newly placed order into the book-eligible New state.
func (o *Order) Accept() bool {
	return o.transitionTo(StatusNew)
}

// Execute records a fill of qty at price and advances the status to Filled when
// nothing is left, PartiallyFilled otherwise. Fills are only accepted while the
// order is active and never beyond the leaves quantity.
func (o *Order) Execute(t time.Time, qty decimal.Decimal, price Money) (*Execution, bool) {
	if !o.Status.Active() {
		return nil, false
	}
	if !qty.IsPositive() || qty.GreaterThan(o.LeavesQty()) {
		return nil, false
	}

	exec := &Execution{
		ID:           xid.New().String(),
		CreationTime: t,
		Quantity:     qty,
		Price:        price,
	}
	o.Executions = append(o.Executions, exec)

	if o.LeavesQty().IsZero() {
		o.transitionTo(StatusFilled)
	} else {
		o.transitionTo(StatusPartiallyFilled)
	}
	return exec, true
}

// Cancel walks the order through PendingCancel to Canceled. Orders that are not
// cancellable (already filled, canceled or expired) are left untouched.
func (o *Order) Cancel() bool {
	if !o.transitionTo(StatusPendingCancel) {
		return false
	}
	return o.transitionTo(StatusCanceled)
}

// DoneForDay force-expires the order at the trading-day boundary.
// Used only by the end-of-day sweep.
func (o *Order) DoneForDay() bool {
	return o.transitionTo(StatusDoneForDay)
}
