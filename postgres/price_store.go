package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	matching "github.com/archfirst/bullsfirst-exchange"
)

// ReferencePriceStore persists per-symbol reference prices in PostgreSQL.
type ReferencePriceStore struct {
	db *sql.DB
}

// NewReferencePriceStore creates a new ReferencePriceStore.
func NewReferencePriceStore(db *sql.DB) *ReferencePriceStore {
	return &ReferencePriceStore{db: db}
}

// ReferencePrice returns the last recorded price for the symbol.
func (s *ReferencePriceStore) ReferencePrice(ctx context.Context, symbol string) (matching.Money, error) {
	var amount decimal.Decimal
	var currency string

	err := s.db.QueryRowContext(ctx,
		`SELECT price, currency FROM reference_prices WHERE symbol = $1`,
		symbol).Scan(&amount, &currency)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return matching.Money{}, matching.ErrNoReferencePrice
		}
		return matching.Money{}, err
	}
	return matching.NewMoney(amount, currency), nil
}

// SetReferencePrice records the price for the symbol.
func (s *ReferencePriceStore) SetReferencePrice(ctx context.Context, symbol string, price matching.Money) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reference_prices (symbol, price, currency, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (symbol) DO UPDATE
		SET price = EXCLUDED.price, currency = EXCLUDED.currency, updated_at = EXCLUDED.updated_at`,
		symbol, price.Amount, price.Currency, time.Now().UTC())
	return err
}
