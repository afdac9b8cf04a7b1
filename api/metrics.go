package api

import (
	"bufio"
	"net"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	matching "github.com/archfirst/bullsfirst-exchange"
)

// Metrics exposes Prometheus counters for the trading core. It implements
// OrderEventSink and MarketDataSink so it can be fanned out next to the
// other sinks.
type Metrics struct {
	orderEvents  *prometheus.CounterVec
	priceChanges prometheus.Counter
	httpRequests *prometheus.CounterVec
}

// NewMetrics registers the exchange counters with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		orderEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "exchange",
			Name:      "order_events_total",
			Help:      "Order lifecycle events published by the matching engine.",
		}, []string{"type"}),
		priceChanges: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "exchange",
			Name:      "market_price_changes_total",
			Help:      "Reference price updates published by the matching engine.",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "exchange",
			Name:      "http_requests_total",
			Help:      "HTTP requests served by the trading API.",
		}, []string{"method", "path", "status"}),
	}
}

// Publish counts order events by type.
func (m *Metrics) Publish(events ...*matching.OrderEvent) {
	for _, ev := range events {
		m.orderEvents.WithLabelValues(string(ev.Type)).Inc()
	}
}

// PublishPrice counts reference price changes.
func (m *Metrics) PublishPrice(events ...*matching.MarketPriceEvent) {
	m.priceChanges.Add(float64(len(events)))
}

// Middleware counts requests by method, route template and status code.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		m.httpRequests.WithLabelValues(
			r.Method, routeTemplate(r), strconv.Itoa(recorder.status)).Inc()
	})
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return r.URL.Path
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack lets the websocket upgrade pass through the middleware.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return hj.Hijack()
}
