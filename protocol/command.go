package protocol

// PlaceOrderRequest is the inbound payload for placing a new order.
// Decimal fields use strings to prevent precision loss in JSON.
type PlaceOrderRequest struct {
	ClientOrderID string `json:"client_order_id"`
	Side          string `json:"side"`
	Symbol        string `json:"symbol"`
	Quantity      string `json:"quantity"`
	Type          string `json:"type"`
	LimitPrice    string `json:"limit_price,omitempty"`
	Currency      string `json:"currency,omitempty"`
	Term          string `json:"term"`
	AllOrNone     bool   `json:"all_or_none,omitempty"`
}

// CancelOrderRequest is the inbound payload for cancelling an existing order.
type CancelOrderRequest struct {
	ClientOrderID string `json:"client_order_id"`
}
