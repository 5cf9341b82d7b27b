package trade

import "errors"

// Sentinel errors mapped to HTTP statuses at the API boundary.
var (
	ErrTradeNotFound    = errors.New("trade not found")
	ErrTradeAlreadySold = errors.New("trade already sold")
	ErrNoTrades         = errors.New("no trades found for this user")
)
