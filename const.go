package matching

const (
	// EngineVersion is the current version of the matching engine
	EngineVersion = "v1.0.0"

	// PriceScale is the number of decimal places for instrument prices.
	// Execution prices (including midpoints) are rounded to this scale.
	PriceScale = 2

	// DefaultCurrency is assumed when an inbound request omits the currency.
	DefaultCurrency = "USD"
)
