package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/rs/xid"
	"github.com/shopspring/decimal"

	matching "github.com/archfirst/bullsfirst-exchange"
	"github.com/archfirst/bullsfirst-exchange/protocol"
)

const orderColumns = `id, creation_time, client_order_id, side, symbol, quantity, type, limit_price, currency, term, all_or_none, status`

// OrderStore persists order aggregates and their executions in PostgreSQL.
type OrderStore struct {
	db *sql.DB
}

// NewOrderStore creates a new OrderStore.
func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

// Create assigns a fresh id and inserts the order row.
func (s *OrderStore) Create(ctx context.Context, order *matching.Order) error {
	if order.ID == "" {
		order.ID = xid.New().String()
	}

	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	var limitPrice decimal.NullDecimal
	var currency sql.NullString
	if order.LimitPrice != nil {
		limitPrice = decimal.NullDecimal{Decimal: order.LimitPrice.Amount, Valid: true}
		currency = sql.NullString{String: order.LimitPrice.Currency, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		order.ID,
		order.CreationTime,
		order.ClientOrderID,
		order.Side.String(),
		order.Symbol,
		order.Quantity,
		string(order.Type),
		limitPrice,
		currency,
		string(order.Term),
		order.AllOrNone,
		string(order.Status),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return matching.ErrDuplicateClientOrderID
		}
		return err
	}
	return nil
}

// Update persists the status of every given order and any executions created
// since the last write, all within a single transaction. A trade's two sides
// are handed to one call, so a half-recorded trade cannot be observed.
func (s *OrderStore) Update(ctx context.Context, orders ...*matching.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, order := range orders {
		result, err := tx.ExecContext(ctx,
			`UPDATE orders SET status = $1 WHERE id = $2`,
			string(order.Status), order.ID)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return matching.ErrOrderNotFound
		}

		for _, exec := range order.Executions {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO executions (id, order_id, creation_time, quantity, price, currency)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (id) DO NOTHING`,
				exec.ID,
				order.ID,
				exec.CreationTime,
				exec.Quantity,
				exec.Price.Amount,
				exec.Price.Currency,
			)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// FindByID returns the order with the given store-assigned id.
func (s *OrderStore) FindByID(ctx context.Context, id string) (*matching.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := s.scanOrder(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := s.loadExecutions(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// FindByClientOrderID returns the order with the given caller-supplied id.
func (s *OrderStore) FindByClientOrderID(ctx context.Context, clientOrderID string) (*matching.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE client_order_id = $1`
	order, err := s.scanOrder(s.db.QueryRowContext(ctx, query, clientOrderID))
	if err != nil {
		return nil, err
	}
	if err := s.loadExecutions(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ActiveOrders returns the orders for the symbol that can still receive fills.
func (s *OrderStore) ActiveOrders(ctx context.Context, symbol string) ([]*matching.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE symbol = $1 AND status IN ($2, $3)`

	rows, err := s.db.QueryContext(ctx, query, symbol,
		string(matching.StatusNew), string(matching.StatusPartiallyFilled))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*matching.Order
	byID := make(map[string]*matching.Order)
	for rows.Next() {
		order, err := s.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
		byID[order.ID] = order
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(orders))
	for _, order := range orders {
		ids = append(ids, order.ID)
	}

	execRows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, creation_time, quantity, price, currency
		FROM executions
		WHERE order_id = ANY($1)
		ORDER BY creation_time, id`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer execRows.Close()

	for execRows.Next() {
		var orderID string
		exec := &matching.Execution{}
		var amount decimal.Decimal
		var currency string
		if err := execRows.Scan(&exec.ID, &orderID, &exec.CreationTime,
			&exec.Quantity, &amount, &currency); err != nil {
			return nil, err
		}
		exec.Price = matching.NewMoney(amount, currency)
		if order, ok := byID[orderID]; ok {
			order.Executions = append(order.Executions, exec)
		}
	}
	if err := execRows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

// ActiveSymbols returns every symbol that currently has active orders.
func (s *OrderStore) ActiveSymbols(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT symbol
		FROM orders
		WHERE status IN ($1, $2)
		ORDER BY symbol`,
		string(matching.StatusNew), string(matching.StatusPartiallyFilled))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, err
		}
		symbols = append(symbols, symbol)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return symbols, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *OrderStore) scanOrder(row rowScanner) (*matching.Order, error) {
	order := &matching.Order{}
	var side, orderType, term, status string
	var limitPrice decimal.NullDecimal
	var currency sql.NullString

	err := row.Scan(
		&order.ID,
		&order.CreationTime,
		&order.ClientOrderID,
		&side,
		&order.Symbol,
		&order.Quantity,
		&orderType,
		&limitPrice,
		&currency,
		&term,
		&order.AllOrNone,
		&status,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, matching.ErrOrderNotFound
		}
		return nil, err
	}

	if order.Side, err = protocol.ParseSide(side); err != nil {
		return nil, err
	}
	if order.Type, err = protocol.ParseOrderType(orderType); err != nil {
		return nil, err
	}
	if order.Term, err = protocol.ParseOrderTerm(term); err != nil {
		return nil, err
	}
	if order.Status, err = protocol.ParseOrderStatus(status); err != nil {
		return nil, err
	}
	if limitPrice.Valid && currency.Valid {
		price := matching.NewMoney(limitPrice.Decimal, currency.String)
		order.LimitPrice = &price
	}
	return order, nil
}

func (s *OrderStore) loadExecutions(ctx context.Context, order *matching.Order) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, creation_time, quantity, price, currency
		FROM executions
		WHERE order_id = $1
		ORDER BY creation_time, id`, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		exec := &matching.Execution{}
		var amount decimal.Decimal
		var currency string
		if err := rows.Scan(&exec.ID, &exec.CreationTime, &exec.Quantity,
			&amount, &currency); err != nil {
			return err
		}
		exec.Price = matching.NewMoney(amount, currency)
		order.Executions = append(order.Executions, exec)
	}
	return rows.Err()
}
