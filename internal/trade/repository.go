package trade

import (
	"errors"
	"fmt"

	"solana-trade-bot-go/internal/models"

	"gorm.io/gorm"
)

// TradeWithStatus is a ledger row annotated with the derived sold flag.
// The flag is never stored; it is computed per read.
type TradeWithStatus struct {
	models.Trade
	IsSold bool `json:"is_sold"`
}

// Repository is the append-only store of trade rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository over an already migrated database.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create appends a buy row.
func (r *Repository) Create(trade *models.Trade) error {
	if err := r.db.Create(trade).Error; err != nil {
		return fmt.Errorf("failed to create trade: %w", err)
	}
	return nil
}

// CreateSell appends a sell row, but only if no other sell references the
// same buy. The check and the insert run in one transaction so two
// concurrent sells for the same buy cannot both commit; the unique index on
// buy_id backs this up at the schema level.
func (r *Repository) CreateSell(trade *models.Trade) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Trade{}).Where("buy_id = ?", trade.BuyID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check for existing sell: %w", err)
		}
		if count > 0 {
			return ErrTradeAlreadySold
		}
		if err := tx.Create(trade).Error; err != nil {
			return fmt.Errorf("failed to create sell trade: %w", err)
		}
		return nil
	})
}

// Get looks up a single trade owned by the user.
func (r *Repository) Get(userID, tradeID uint) (*models.Trade, error) {
	var trade models.Trade
	err := r.db.Where("id = ? AND user_id = ?", tradeID, userID).First(&trade).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTradeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}
	return &trade, nil
}

// IsSold reports whether a sell row already references the given buy.
func (r *Repository) IsSold(userID, tradeID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Trade{}).
		Where("buy_id = ? AND user_id = ?", tradeID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check sold status: %w", err)
	}
	return count > 0, nil
}

// ListByUser returns all of the user's trades, newest first, each annotated
// with whether a later sell closed it.
func (r *Repository) ListByUser(userID uint) ([]TradeWithStatus, error) {
	var trades []TradeWithStatus
	err := r.db.Raw(`
		SELECT
			t.*,
			EXISTS (
				SELECT 1
				FROM trades s
				WHERE s.buy_id = t.id
			) AS is_sold
		FROM trades t
		WHERE t.user_id = ?
		ORDER BY t.id DESC
	`, userID).Scan(&trades).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	return trades, nil
}
