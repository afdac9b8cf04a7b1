package matching

import "errors"

var (
	ErrInvalidParam           = errors.New("the param is invalid")
	ErrInvalidQuantity        = errors.New("order quantity must be positive")
	ErrMissingLimitPrice      = errors.New("limit order requires a positive limit price")
	ErrMissingClientOrderID   = errors.New("client order id is required")
	ErrDuplicateClientOrderID = errors.New("client order id already in use")
	ErrCurrencyMismatch       = errors.New("money currency mismatch")
	ErrOrderNotFound          = errors.New("order not found")
	ErrNoReferencePrice       = errors.New("no reference price recorded for symbol")
	ErrInternal               = errors.New("internal error")
)
