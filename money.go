package matching

import (
	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// Money is a currency-tagged decimal amount. Arithmetic across different
// currencies is a programming error and is reported as ErrCurrencyMismatch.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// NewMoney creates a Money value.
func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

// MoneyFromString parses a decimal string into a Money value.
// An empty currency falls back to DefaultCurrency.
func MoneyFromString(amount string, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, ErrInvalidParam
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{Amount: d, Currency: currency}, nil
}

// SameCurrency reports whether both values carry the same currency tag.
func (m Money) SameCurrency(o Money) bool {
	return m.Currency == o.Currency
}

// Equal reports whether both currency and amount match.
func (m Money) Equal(o Money) bool {
	return m.SameCurrency(o) && m.Amount.Equal(o.Amount)
}

// Cmp compares two amounts of the same currency.
// Returns -1, 0 or 1; ErrCurrencyMismatch when the tags differ.
func (m Money) Cmp(o Money) (int, error) {
	if !m.SameCurrency(o) {
		return 0, ErrCurrencyMismatch
	}
	return m.Amount.Cmp(o.Amount), nil
}

// Midpoint returns (m+o)/2 rounded half-up to PriceScale.
func (m Money) Midpoint(o Money) (Money, error) {
	if !m.SameCurrency(o) {
		return Money{}, ErrCurrencyMismatch
	}
	// DivRound rounds half away from zero, which is half-up for positive prices.
	mid := m.Amount.Add(o.Amount).DivRound(two, PriceScale)
	return Money{Amount: mid, Currency: m.Currency}, nil
}

// String renders the amount followed by its currency tag, e.g. "99.50 USD".
func (m Money) String() string {
	return m.Amount.String() + " " + m.Currency
}
