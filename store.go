package matching

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/xid"
)

// OrderStore is the persistence port for order aggregates.
//
// Create assigns the order's id and persists the aggregate. Update persists
// every given order - including any executions created since the last write -
// as one atomic unit; matchOrder hands both sides of a trade to a single call
// so that a trade can never be recorded with only one side.
type OrderStore interface {
	Create(ctx context.Context, order *Order) error
	Update(ctx context.Context, orders ...*Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	FindByClientOrderID(ctx context.Context, clientOrderID string) (*Order, error)

	// ActiveOrders returns the orders for the symbol whose status still admits
	// fills (New, PartiallyFilled). Ordering is unspecified; the order book
	// imposes matching priority itself.
	ActiveOrders(ctx context.Context, symbol string) ([]*Order, error)

	// ActiveSymbols returns every symbol that currently has active orders.
	ActiveSymbols(ctx context.Context) ([]string, error)
}

// ReferencePriceStore is the persistence port for per-symbol reference prices.
// ReferencePrice returns ErrNoReferencePrice for a symbol that has never traded
// and was never seeded.
type ReferencePriceStore interface {
	ReferencePrice(ctx context.Context, symbol string) (Money, error)
	SetReferencePrice(ctx context.Context, symbol string, price Money) error
}

// cloneOrder returns an independent copy of the aggregate. Executions are
// immutable once created, so the copies share them.
func cloneOrder(order *Order) *Order {
	cpy := *order
	if order.LimitPrice != nil {
		price := *order.LimitPrice
		cpy.LimitPrice = &price
	}
	if len(order.Executions) > 0 {
		cpy.Executions = make([]*Execution, len(order.Executions))
		copy(cpy.Executions, order.Executions)
	}
	return &cpy
}

// MemoryOrderStore keeps order aggregates in memory. Useful for tests and
// standalone runs. Reads return copies and Update writes the given state back,
// so callers never share mutable aggregates with the matching pass.
type MemoryOrderStore struct {
	mu       sync.RWMutex
	orders   map[string]*Order
	byClient map[string]*Order
}

// NewMemoryOrderStore creates an empty MemoryOrderStore.
func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{
		orders:   make(map[string]*Order),
		byClient: make(map[string]*Order),
	}
}

// Create assigns a fresh id and registers the order.
func (s *MemoryOrderStore) Create(ctx context.Context, order *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byClient[order.ClientOrderID]; exists {
		return ErrDuplicateClientOrderID
	}
	if order.ID == "" {
		order.ID = xid.New().String()
	}
	cpy := cloneOrder(order)
	s.orders[cpy.ID] = cpy
	s.byClient[cpy.ClientOrderID] = cpy
	return nil
}

// Update writes the given state of every order back to the store; all of them
// under one lock, so a trade's two sides become visible together.
func (s *MemoryOrderStore) Update(ctx context.Context, orders ...*Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, order := range orders {
		if _, ok := s.orders[order.ID]; !ok {
			return ErrOrderNotFound
		}
	}
	for _, order := range orders {
		cpy := cloneOrder(order)
		s.orders[cpy.ID] = cpy
		s.byClient[cpy.ClientOrderID] = cpy
	}
	return nil
}

// FindByID returns a copy of the order with the given store-assigned id.
func (s *MemoryOrderStore) FindByID(ctx context.Context, id string) (*Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

// FindByClientOrderID returns a copy of the order with the given
// caller-supplied id.
func (s *MemoryOrderStore) FindByClientOrderID(ctx context.Context, clientOrderID string) (*Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.byClient[clientOrderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

// ActiveOrders returns copies of the active orders for the symbol.
func (s *MemoryOrderStore) ActiveOrders(ctx context.Context, symbol string) ([]*Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*Order
	for _, order := range s.orders {
		if order.Symbol == symbol && order.Status.Active() {
			result = append(result, cloneOrder(order))
		}
	}
	return result, nil
}

// ActiveSymbols returns the symbols with at least one active order, sorted for
// deterministic sweeps.
func (s *MemoryOrderStore) ActiveSymbols(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, order := range s.orders {
		if order.Status.Active() {
			seen[order.Symbol] = struct{}{}
		}
	}

	symbols := make([]string, 0, len(seen))
	for symbol := range seen {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols, nil
}

// MemoryReferencePriceStore keeps reference prices in memory.
type MemoryReferencePriceStore struct {
	mu     sync.RWMutex
	prices map[string]Money
}

// NewMemoryReferencePriceStore creates an empty MemoryReferencePriceStore.
func NewMemoryReferencePriceStore() *MemoryReferencePriceStore {
	return &MemoryReferencePriceStore{
		prices: make(map[string]Money),
	}
}

// ReferencePrice returns the last recorded price for the symbol.
func (s *MemoryReferencePriceStore) ReferencePrice(ctx context.Context, symbol string) (Money, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	price, ok := s.prices[symbol]
	if !ok {
		return Money{}, ErrNoReferencePrice
	}
	return price, nil
}

// SetReferencePrice records the price for the symbol.
func (s *MemoryReferencePriceStore) SetReferencePrice(ctx context.Context, symbol string, price Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prices[symbol] = price
	return nil
}
