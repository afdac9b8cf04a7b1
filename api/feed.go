package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	matching "github.com/archfirst/bullsfirst-exchange"
)

// FeedMessage is the envelope every websocket frame carries.
type FeedMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Feed streams order and market-data events to websocket subscribers. It
// implements OrderEventSink and MarketDataSink; slow clients are skipped
// rather than allowed to back up the matching path.
type Feed struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[chan []byte]struct{}
}

// NewFeed creates a Feed with no subscribers.
func NewFeed(logger *slog.Logger) *Feed {
	return &Feed{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[chan []byte]struct{}),
	}
}

// HandleWS upgrades the connection and streams events until the client
// disconnects.
func (f *Feed) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	send := make(chan []byte, 64)

	f.mu.Lock()
	f.clients[send] = struct{}{}
	f.mu.Unlock()

	go func() {
		for msg := range send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				break
			}
		}
		conn.Close()
	}()

	// The read loop only detects disconnects; inbound frames are ignored.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	f.mu.Lock()
	delete(f.clients, send)
	f.mu.Unlock()
	close(send)
}

// SubscriberCount returns the number of connected clients.
func (f *Feed) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// Publish broadcasts order events to all subscribers. The events are
// serialized before Publish returns, so the pooled structs stay safe.
func (f *Feed) Publish(events ...*matching.OrderEvent) {
	for _, ev := range events {
		f.broadcast(FeedMessage{Type: "order_event", Data: ev})
	}
}

// PublishPrice broadcasts reference price changes to all subscribers.
func (f *Feed) PublishPrice(events ...*matching.MarketPriceEvent) {
	for _, ev := range events {
		f.broadcast(FeedMessage{Type: "market_price", Data: ev})
	}
}

func (f *Feed) broadcast(msg FeedMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		f.logger.Error("marshal feed message failed", "error", err)
		return
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	for send := range f.clients {
		select {
		case send <- data:
		default:
		}
	}
}
