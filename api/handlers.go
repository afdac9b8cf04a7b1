package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"

	matching "github.com/archfirst/bullsfirst-exchange"
	"github.com/archfirst/bullsfirst-exchange/protocol"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Dependencies carries everything the HTTP layer needs.
type Dependencies struct {
	Trading *matching.TradingService
	Engine  *matching.MatchingEngine
	Orders  matching.OrderStore
	Prices  matching.ReferencePriceStore
	Feed    *Feed
	Metrics *Metrics
}

// ErrorResponse is the standard error body for all API endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler bundles the HTTP handlers for the trading API.
type Handler struct {
	deps *Dependencies
}

// NewHandler creates a new Handler.
func NewHandler(deps *Dependencies) *Handler {
	return &Handler{deps: deps}
}

// PlaceOrder accepts a new order and returns its state after the matching pass.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req protocol.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.deps.Trading.PlaceOrder(r.Context(), &req)
	if err != nil {
		writeError(w, placeOrderStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// CancelOrder requests cancellation of the caller's order by client order id.
// The request is accepted even when the id is unknown; the outcome surfaces as
// an OrderCanceled or OrderCancelRejected event.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	clientOrderID := mux.Vars(r)["clientOrderId"]

	if err := h.deps.Trading.CancelOrder(r.Context(), clientOrderID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// EndOfDay triggers the end-of-day sweep.
func (h *Handler) EndOfDay(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Trading.EndOfDay(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetReferencePrice returns the current reference price for a symbol.
func (h *Handler) GetReferencePrice(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	price, err := h.deps.Prices.ReferencePrice(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, matching.ErrNoReferencePrice) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"symbol": symbol,
		"price":  price,
	})
}

// ListActiveOrders returns the orders for a symbol that can still receive fills.
func (h *Handler) ListActiveOrders(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	orders, err := h.deps.Orders.ActiveOrders(r.Context(), symbol)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if orders == nil {
		orders = []*matching.Order{}
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetStats returns the active order counts for a symbol.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	stats, err := h.deps.Engine.Stats(r.Context(), symbol)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"symbol":      symbol,
		"buy_orders":  stats.BuyOrders,
		"sell_orders": stats.SellOrders,
	})
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": matching.EngineVersion,
	})
}

func placeOrderStatus(err error) int {
	switch {
	case errors.Is(err, matching.ErrDuplicateClientOrderID):
		return http.StatusConflict
	case errors.Is(err, matching.ErrInvalidParam),
		errors.Is(err, matching.ErrInvalidQuantity),
		errors.Is(err, matching.ErrMissingLimitPrice),
		errors.Is(err, matching.ErrMissingClientOrderID),
		errors.Is(err, matching.ErrCurrencyMismatch):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
