package matching

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/archfirst/bullsfirst-exchange/protocol"
)

type EventType = protocol.EventType

const (
	EventOrderAccepted       EventType = protocol.EventOrderAccepted
	EventOrderExecuted       EventType = protocol.EventOrderExecuted
	EventOrderCanceled       EventType = protocol.EventOrderCanceled
	EventOrderCancelRejected EventType = protocol.EventOrderCancelRejected
	EventOrderDoneForDay     EventType = protocol.EventOrderDoneForDay
)

// OrderEvent is the outbound record for one order lifecycle change.
// SequenceID is a monotonically increasing ID across all events emitted by an
// engine instance, used for ordering and deduplication downstream.
// ExecutionID and Price are only set for Executed events.
type OrderEvent struct {
	SequenceID    uint64          `json:"seq_id"`
	Type          EventType       `json:"type"`
	OrderID       string          `json:"order_id"`
	ClientOrderID string          `json:"client_order_id"`
	Symbol        string          `json:"symbol"`
	Side          Side            `json:"side"`
	Status        OrderStatus     `json:"status"`
	ExecutionID   string          `json:"execution_id,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	LeavesQty     decimal.Decimal `json:"leaves_qty"`
	Price         *Money          `json:"price,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

var orderEventPool = sync.Pool{
	New: func() interface{} {
		return new(OrderEvent)
	},
}

func acquireOrderEvent() *OrderEvent {
	return orderEventPool.Get().(*OrderEvent)
}

func releaseOrderEvent(ev *OrderEvent) {
	// Reset structure to zero values.
	// For decimal.Decimal, the zero value (nil internal pointer) represents 0, which is valid.
	*ev = OrderEvent{}
	orderEventPool.Put(ev)
}

// MarketPriceEvent reports that an instrument was repriced by a trade.
// The engine publishes at most one per matching pass, carrying the final price.
type MarketPriceEvent struct {
	SequenceID uint64    `json:"seq_id"`
	Symbol     string    `json:"symbol"`
	Price      Money     `json:"price"`
	CreatedAt  time.Time `json:"created_at"`
}
