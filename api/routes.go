package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes builds the HTTP router for the trading API.
func SetupRoutes(deps *Dependencies) *mux.Router {
	h := NewHandler(deps)

	r := mux.NewRouter()

	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
		r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/orders", h.PlaceOrder).Methods(http.MethodPost)
	v1.HandleFunc("/orders/{clientOrderId}", h.CancelOrder).Methods(http.MethodDelete)
	v1.HandleFunc("/end-of-day", h.EndOfDay).Methods(http.MethodPost)
	v1.HandleFunc("/symbols/{symbol}/orders", h.ListActiveOrders).Methods(http.MethodGet)
	v1.HandleFunc("/symbols/{symbol}/price", h.GetReferencePrice).Methods(http.MethodGet)
	v1.HandleFunc("/symbols/{symbol}/stats", h.GetStats).Methods(http.MethodGet)

	if deps.Feed != nil {
		r.HandleFunc("/ws", deps.Feed.HandleWS)
	}
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	return r
}
