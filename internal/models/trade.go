package models

import "gorm.io/gorm"

// Trade sides.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Trade is a single executed swap in the ledger. Rows are append-only:
// nothing in the service layer updates or deletes a trade once created.
//
// On a sell row, InputMintDecimals and OutputMintDecimals are copied verbatim
// from the buy it closes. They keep the base-asset/token meaning of the
// originating buy for the whole pair, not literally the sell row's own
// input/output mints.
type Trade struct {
	gorm.Model
	UserID uint `gorm:"index;not null" json:"user_id"`
	// BuyID is set only on sell rows and points at the buy being closed.
	// The unique index guarantees a buy can be closed at most once.
	BuyID              *uint  `gorm:"uniqueIndex" json:"buy_id,omitempty"`
	InputMint          string `gorm:"not null" json:"input_mint"`
	OutputMint         string `gorm:"not null" json:"output_mint"`
	Side               string `gorm:"not null" json:"side"`
	InputAmount        string `gorm:"not null" json:"input_amount"`  // base units
	OutputAmount       string `gorm:"not null" json:"output_amount"` // base units
	Price              string `gorm:"not null" json:"price"`
	TxHash             string `gorm:"uniqueIndex;not null" json:"tx_hash"`
	Timestamp          int64  `gorm:"not null" json:"timestamp"`
	InputMintDecimals  int32  `json:"input_mint_decimals"`
	OutputMintDecimals int32  `json:"output_mint_decimals"`
	TokenName          string `json:"token_name,omitempty"`
	TokenSymbol        string `json:"token_symbol,omitempty"`
}
