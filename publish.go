package matching

import "sync"

// OrderEventSink is an interface for publishing order lifecycle events.
//
// IMPORTANT: Implementations must either:
//  1. Process events synchronously before returning, OR
//  2. Clone the OrderEvent data before returning
//
// The engine recycles OrderEvent objects to a sync.Pool after Publish returns,
// so any asynchronous processing must work with cloned data.
type OrderEventSink interface {
	Publish(...*OrderEvent)
}

// MarketDataSink is an interface for publishing market price changes.
type MarketDataSink interface {
	PublishPrice(...*MarketPriceEvent)
}

// MemoryOrderEventSink stores events in memory, useful for testing.
type MemoryOrderEventSink struct {
	mu     sync.RWMutex
	events []*OrderEvent
}

// NewMemoryOrderEventSink creates a new MemoryOrderEventSink.
func NewMemoryOrderEventSink() *MemoryOrderEventSink {
	return &MemoryOrderEventSink{
		events: make([]*OrderEvent, 0),
	}
}

// Publish appends copies of the events to the in-memory slice.
func (m *MemoryOrderEventSink) Publish(events ...*OrderEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ev := range events {
		cpy := new(OrderEvent)
		*cpy = *ev
		m.events = append(m.events, cpy)
	}
}

// Count returns the number of events stored.
func (m *MemoryOrderEventSink) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}

// Get returns the event at the specified index.
func (m *MemoryOrderEventSink) Get(index int) *OrderEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.events[index]
}

// Events returns a copy of all events stored.
func (m *MemoryOrderEventSink) Events() []*OrderEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]*OrderEvent, len(m.events))
	copy(events, m.events)
	return events
}

// OfType returns the stored events matching the given type, in publish order.
func (m *MemoryOrderEventSink) OfType(eventType EventType) []*OrderEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*OrderEvent
	for _, ev := range m.events {
		if ev.Type == eventType {
			result = append(result, ev)
		}
	}
	return result
}

// DiscardOrderEventSink discards all events, useful for benchmarking.
type DiscardOrderEventSink struct {
}

// NewDiscardOrderEventSink creates a new DiscardOrderEventSink.
func NewDiscardOrderEventSink() *DiscardOrderEventSink {
	return &DiscardOrderEventSink{}
}

// Publish does nothing.
func (s *DiscardOrderEventSink) Publish(events ...*OrderEvent) {
}

// MemoryMarketDataSink stores price events in memory, useful for testing.
type MemoryMarketDataSink struct {
	mu     sync.RWMutex
	prices []*MarketPriceEvent
}

// NewMemoryMarketDataSink creates a new MemoryMarketDataSink.
func NewMemoryMarketDataSink() *MemoryMarketDataSink {
	return &MemoryMarketDataSink{
		prices: make([]*MarketPriceEvent, 0),
	}
}

// PublishPrice appends copies of the price events to the in-memory slice.
func (m *MemoryMarketDataSink) PublishPrice(events ...*MarketPriceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ev := range events {
		cpy := new(MarketPriceEvent)
		*cpy = *ev
		m.prices = append(m.prices, cpy)
	}
}

// Count returns the number of price events stored.
func (m *MemoryMarketDataSink) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.prices)
}

// Get returns the price event at the specified index.
func (m *MemoryMarketDataSink) Get(index int) *MarketPriceEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.prices[index]
}

// DiscardMarketDataSink discards all price events.
type DiscardMarketDataSink struct {
}

// NewDiscardMarketDataSink creates a new DiscardMarketDataSink.
func NewDiscardMarketDataSink() *DiscardMarketDataSink {
	return &DiscardMarketDataSink{}
}

// PublishPrice does nothing.
func (s *DiscardMarketDataSink) PublishPrice(events ...*MarketPriceEvent) {
}

// FanoutOrderEventSink forwards every event to each wrapped sink in order.
type FanoutOrderEventSink struct {
	sinks []OrderEventSink
}

// NewFanoutOrderEventSink creates a sink that dispatches to all given sinks.
func NewFanoutOrderEventSink(sinks ...OrderEventSink) *FanoutOrderEventSink {
	return &FanoutOrderEventSink{sinks: sinks}
}

// Publish forwards the events to every wrapped sink.
func (f *FanoutOrderEventSink) Publish(events ...*OrderEvent) {
	for _, s := range f.sinks {
		s.Publish(events...)
	}
}

// FanoutMarketDataSink forwards every price event to each wrapped sink in order.
type FanoutMarketDataSink struct {
	sinks []MarketDataSink
}

// NewFanoutMarketDataSink creates a sink that dispatches to all given sinks.
func NewFanoutMarketDataSink(sinks ...MarketDataSink) *FanoutMarketDataSink {
	return &FanoutMarketDataSink{sinks: sinks}
}

// PublishPrice forwards the price events to every wrapped sink.
func (f *FanoutMarketDataSink) PublishPrice(events ...*MarketPriceEvent) {
	for _, s := range f.sinks {
		s.PublishPrice(events...)
	}
}
