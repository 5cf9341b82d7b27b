package trade

import (
	"testing"

	"solana-trade-bot-go/internal/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupRepo creates a repository over a fresh in-memory database.
func setupRepo(t *testing.T) *Repository {
	// Use a new, non-shared in-memory database for each test to ensure isolation.
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)

	err = db.AutoMigrate(&models.Trade{})
	assert.NoError(t, err)

	return NewRepository(db)
}

func buyRow(userID uint, txHash string) *models.Trade {
	return &models.Trade{
		UserID:             userID,
		InputMint:          "BaseMint",
		OutputMint:         "TokenMint",
		Side:               models.SideBuy,
		InputAmount:        "10000000000",
		OutputAmount:       "40000000",
		Price:              "2.5",
		TxHash:             txHash,
		Timestamp:          1700000000,
		InputMintDecimals:  8,
		OutputMintDecimals: 6,
		TokenName:          "Test Token",
		TokenSymbol:        "TT",
	}
}

func sellRow(userID, buyID uint, txHash string) *models.Trade {
	return &models.Trade{
		UserID:             userID,
		BuyID:              &buyID,
		InputMint:          "TokenMint",
		OutputMint:         "BaseMint",
		Side:               models.SideSell,
		InputAmount:        "40000000",
		OutputAmount:       "11000000000",
		Price:              "0.004",
		TxHash:             txHash,
		Timestamp:          1700000100,
		InputMintDecimals:  8,
		OutputMintDecimals: 6,
	}
}

func TestCreateAndGet(t *testing.T) {
	repo := setupRepo(t)

	buy := buyRow(1, "sig-1")
	assert.NoError(t, repo.Create(buy))
	assert.NotZero(t, buy.ID)

	got, err := repo.Get(1, buy.ID)
	assert.NoError(t, err)
	assert.Equal(t, "TokenMint", got.OutputMint)
	assert.Equal(t, int32(8), got.InputMintDecimals)
}

func TestGetNotFound(t *testing.T) {
	repo := setupRepo(t)

	_, err := repo.Get(1, 42)
	assert.ErrorIs(t, err, ErrTradeNotFound)
}

func TestGetWrongUser(t *testing.T) {
	repo := setupRepo(t)

	buy := buyRow(1, "sig-1")
	assert.NoError(t, repo.Create(buy))

	_, err := repo.Get(2, buy.ID)
	assert.ErrorIs(t, err, ErrTradeNotFound)
}

func TestTxHashUnique(t *testing.T) {
	repo := setupRepo(t)

	assert.NoError(t, repo.Create(buyRow(1, "sig-1")))
	assert.Error(t, repo.Create(buyRow(1, "sig-1")))
}

func TestCreateSellOnlyOnce(t *testing.T) {
	repo := setupRepo(t)

	buy := buyRow(1, "sig-1")
	assert.NoError(t, repo.Create(buy))

	assert.NoError(t, repo.CreateSell(sellRow(1, buy.ID, "sig-2")))

	// A second sell for the same buy must be rejected.
	err := repo.CreateSell(sellRow(1, buy.ID, "sig-3"))
	assert.ErrorIs(t, err, ErrTradeAlreadySold)

	var count int64
	assert.NoError(t, repo.db.Model(&models.Trade{}).Where("buy_id = ?", buy.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestIsSold(t *testing.T) {
	repo := setupRepo(t)

	buy := buyRow(1, "sig-1")
	assert.NoError(t, repo.Create(buy))

	sold, err := repo.IsSold(1, buy.ID)
	assert.NoError(t, err)
	assert.False(t, sold)

	assert.NoError(t, repo.CreateSell(sellRow(1, buy.ID, "sig-2")))

	sold, err = repo.IsSold(1, buy.ID)
	assert.NoError(t, err)
	assert.True(t, sold)
}

func TestListByUser(t *testing.T) {
	repo := setupRepo(t)

	first := buyRow(1, "sig-1")
	assert.NoError(t, repo.Create(first))
	second := buyRow(1, "sig-2")
	assert.NoError(t, repo.Create(second))
	other := buyRow(2, "sig-3")
	assert.NoError(t, repo.Create(other))

	assert.NoError(t, repo.CreateSell(sellRow(1, first.ID, "sig-4")))

	trades, err := repo.ListByUser(1)
	assert.NoError(t, err)
	assert.Len(t, trades, 3)

	// Newest first.
	assert.Equal(t, models.SideSell, trades[0].Side)
	assert.Equal(t, second.ID, trades[1].ID)
	assert.Equal(t, first.ID, trades[2].ID)

	// isSold is derived: only the closed buy carries it.
	assert.False(t, trades[0].IsSold)
	assert.False(t, trades[1].IsSold)
	assert.True(t, trades[2].IsSold)
}

func TestListByUserEmpty(t *testing.T) {
	repo := setupRepo(t)

	trades, err := repo.ListByUser(7)
	assert.NoError(t, err)
	assert.Empty(t, trades)
}
