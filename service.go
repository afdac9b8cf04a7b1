package matching

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/archfirst/bullsfirst-exchange/protocol"
)

// TradingService translates caller-facing requests into engine operations.
// It holds no matching logic; its job is turning caller identifiers
// (clientOrderId, wire strings) into engine inputs.
type TradingService struct {
	engine *MatchingEngine
	orders OrderStore
}

// NewTradingService creates a new TradingService.
func NewTradingService(engine *MatchingEngine, orders OrderStore) *TradingService {
	return &TradingService{
		engine: engine,
		orders: orders,
	}
}

// PlaceOrder parses the request into an order aggregate and hands it to the
// engine. The returned order carries its store-assigned id and final status
// after the matching pass triggered by acceptance.
func (s *TradingService) PlaceOrder(ctx context.Context, req *protocol.PlaceOrderRequest) (*Order, error) {
	side, err := protocol.ParseSide(req.Side)
	if err != nil {
		return nil, ErrInvalidParam
	}
	orderType, err := protocol.ParseOrderType(req.Type)
	if err != nil {
		return nil, ErrInvalidParam
	}

	term := GoodForDay
	if req.Term != "" {
		term, err = protocol.ParseOrderTerm(req.Term)
		if err != nil {
			return nil, ErrInvalidParam
		}
	}

	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		return nil, ErrInvalidQuantity
	}

	var limitPrice *Money
	if orderType == Limit {
		if req.LimitPrice == "" {
			return nil, ErrMissingLimitPrice
		}
		price, err := MoneyFromString(req.LimitPrice, req.Currency)
		if err != nil {
			return nil, ErrMissingLimitPrice
		}
		limitPrice = &price
	}

	order := NewOrder(req.ClientOrderID, side, req.Symbol, quantity, orderType, limitPrice, term, req.AllOrNone)
	if err := s.engine.PlaceOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// CancelOrder looks up the caller's order by client order id and asks the
// engine to cancel it. An unknown id is logged and dropped: no event, no error.
func (s *TradingService) CancelOrder(ctx context.Context, clientOrderID string) error {
	order, err := s.orders.FindByClientOrderID(ctx, clientOrderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			logger.Warn("cancel requested for unknown client order id",
				"client_order_id", clientOrderID)
			return nil
		}
		return err
	}
	return s.engine.Cancel(ctx, order.ID)
}

// EndOfDay triggers the end-of-day sweep across all symbols.
func (s *TradingService) EndOfDay(ctx context.Context) error {
	return s.engine.HandleEndOfDay(ctx)
}
