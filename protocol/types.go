package protocol

import "fmt"

// Side represents the order side (Buy/Sell).
type Side int8

const (
	SideBuy  Side = 1
	SideSell Side = 2
)

// String returns the storage/wire identifier for the side.
func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	}
	return "unknown"
}

// ParseSide decodes a storage/wire identifier into a Side.
func ParseSide(s string) (Side, error) {
	switch s {
	case "buy":
		return SideBuy, nil
	case "sell":
		return SideSell, nil
	}
	return 0, fmt.Errorf("protocol: unknown side %q", s)
}

// OrderType represents the type of order.
type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
)

// ParseOrderType decodes a storage/wire identifier into an OrderType.
func ParseOrderType(s string) (OrderType, error) {
	switch OrderType(s) {
	case OrderTypeMarket, OrderTypeLimit:
		return OrderType(s), nil
	}
	return "", fmt.Errorf("protocol: unknown order type %q", s)
}

// OrderTerm represents how long an order stays in force.
type OrderTerm string

const (
	// OrderTermGoodForDay expires at the end-of-day sweep if unfilled.
	OrderTermGoodForDay OrderTerm = "good_for_day"
	// OrderTermGoodTilCanceled persists across days until filled or canceled.
	OrderTermGoodTilCanceled OrderTerm = "good_til_canceled"
)

// ParseOrderTerm decodes a storage/wire identifier into an OrderTerm.
func ParseOrderTerm(s string) (OrderTerm, error) {
	switch OrderTerm(s) {
	case OrderTermGoodForDay, OrderTermGoodTilCanceled:
		return OrderTerm(s), nil
	}
	return "", fmt.Errorf("protocol: unknown order term %q", s)
}

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPendingNew      OrderStatus = "pending_new"
	OrderStatusNew             OrderStatus = "new"
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	OrderStatusFilled          OrderStatus = "filled"
	OrderStatusPendingCancel   OrderStatus = "pending_cancel"
	OrderStatusCanceled        OrderStatus = "canceled"
	OrderStatusDoneForDay      OrderStatus = "done_for_day"
)

// ParseOrderStatus decodes a storage/wire identifier into an OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderStatusPendingNew, OrderStatusNew, OrderStatusPartiallyFilled,
		OrderStatusFilled, OrderStatusPendingCancel, OrderStatusCanceled,
		OrderStatusDoneForDay:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("protocol: unknown order status %q", s)
}

// Active reports whether an order in this status can still receive fills.
func (s OrderStatus) Active() bool {
	return s == OrderStatusNew || s == OrderStatusPartiallyFilled
}

// Terminal reports whether the status is final; a terminal order is immutable.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusFilled, OrderStatusCanceled, OrderStatusDoneForDay:
		return true
	}
	return false
}

// EventType identifies an outbound order event.
type EventType string

const (
	EventOrderAccepted       EventType = "order_accepted"
	EventOrderExecuted       EventType = "order_executed"
	EventOrderCanceled       EventType = "order_canceled"
	EventOrderCancelRejected EventType = "order_cancel_rejected"
	EventOrderDoneForDay     EventType = "order_done_for_day"
)
