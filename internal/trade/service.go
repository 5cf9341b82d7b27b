package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"solana-trade-bot-go/internal/config"
	"solana-trade-bot-go/internal/models"
	"solana-trade-bot-go/internal/swap"

	"go.uber.org/zap"
)

// Receipt is returned by Buy and Sell: the raw swap result plus the ledger id
// the caller uses for later operations. For a sell this is the closed buy's
// id, not the new sell row's.
type Receipt struct {
	SwapResult *swap.Result `json:"swap_result"`
	TradeID    uint         `json:"trade_id"`
}

// Service orchestrates buys and sells against the swap gateway and enforces
// the ledger invariants.
type Service struct {
	gateway  swap.GatewayInterface
	repo     *Repository
	baseMint string
	logger   *zap.Logger
}

// NewService creates a new trade service.
func NewService(gateway swap.GatewayInterface, repo *Repository, cfg *config.Trading, logger *zap.Logger) *Service {
	return &Service{
		gateway:  gateway,
		repo:     repo,
		baseMint: cfg.BaseMint,
		logger:   logger.Named("trade"),
	}
}

// Buy swaps amount base units of the configured base asset into tokenMint and
// appends the resulting buy row.
func (s *Service) Buy(ctx context.Context, userID uint, tokenMint, amount string) (*Receipt, error) {
	inputMint := s.baseMint
	outputMint := tokenMint

	swapResult, err := s.gateway.Swap(ctx, inputMint, outputMint, amount)
	if err != nil {
		return nil, err
	}

	inputInfo, err := s.gateway.GetTokenInfo(ctx, inputMint)
	if err != nil {
		return nil, err
	}
	outputInfo, err := s.gateway.GetTokenInfo(ctx, outputMint)
	if err != nil {
		return nil, err
	}

	inputAmount, err := swap.FromBaseUnits(swapResult.ExecuteResponse.InputAmountResult, inputInfo.Decimals)
	if err != nil {
		return nil, err
	}
	outputAmount, err := swap.FromBaseUnits(swapResult.ExecuteResponse.OutputAmountResult, outputInfo.Decimals)
	if err != nil {
		return nil, err
	}
	if outputAmount.IsZero() {
		return nil, fmt.Errorf("swap %s settled with zero output amount", swapResult.ExecuteResponse.Signature)
	}

	// Base asset spent per unit of token received.
	price := inputAmount.Div(outputAmount)

	row := &models.Trade{
		UserID:             userID,
		InputMint:          inputMint,
		OutputMint:         outputMint,
		Side:               models.SideBuy,
		InputAmount:        swapResult.ExecuteResponse.InputAmountResult,
		OutputAmount:       swapResult.ExecuteResponse.OutputAmountResult,
		Price:              price.String(),
		TxHash:             swapResult.ExecuteResponse.Signature,
		Timestamp:          time.Now().Unix(),
		InputMintDecimals:  inputInfo.Decimals,
		OutputMintDecimals: outputInfo.Decimals,
		TokenName:          outputInfo.Name,
		TokenSymbol:        outputInfo.Symbol,
	}

	if err := s.repo.Create(row); err != nil {
		// The swap already settled on-chain; a persistence failure here
		// leaves the ledger behind reality and there is no compensation
		// path. Surface loudly instead of fixing silently.
		s.logger.Error("Swap executed but trade row was not persisted",
			zap.Uint("user_id", userID),
			zap.String("tx_hash", swapResult.ExecuteResponse.Signature),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("Buy recorded",
		zap.Uint("user_id", userID),
		zap.Uint("trade_id", row.ID),
		zap.String("token_mint", tokenMint),
		zap.String("price", row.Price),
	)

	return &Receipt{SwapResult: swapResult, TradeID: row.ID}, nil
}

// Sell closes a previously recorded buy by swapping its full realized output
// back into the base asset. The returned trade id is the buy's id.
func (s *Service) Sell(ctx context.Context, userID, tradeID uint) (*Receipt, error) {
	buy, err := s.repo.Get(userID, tradeID)
	if err != nil {
		return nil, err
	}

	sold, err := s.repo.IsSold(userID, tradeID)
	if err != nil {
		return nil, err
	}
	if sold {
		return nil, ErrTradeAlreadySold
	}

	inputMint := buy.OutputMint
	outputMint := buy.InputMint

	swapResult, err := s.gateway.Swap(ctx, inputMint, outputMint, buy.OutputAmount)
	if err != nil {
		return nil, err
	}

	// Decimals come from the buy row, not a fresh lookup: they keep their
	// base-asset/token meaning for the whole pair.
	inputAmount, err := swap.FromBaseUnits(swapResult.ExecuteResponse.InputAmountResult, buy.InputMintDecimals)
	if err != nil {
		return nil, err
	}
	outputAmount, err := swap.FromBaseUnits(swapResult.ExecuteResponse.OutputAmountResult, buy.OutputMintDecimals)
	if err != nil {
		return nil, err
	}
	if outputAmount.IsZero() {
		return nil, fmt.Errorf("swap %s settled with zero output amount", swapResult.ExecuteResponse.Signature)
	}

	price := inputAmount.Div(outputAmount)

	buyID := buy.ID
	row := &models.Trade{
		UserID:             userID,
		BuyID:              &buyID,
		InputMint:          inputMint,
		OutputMint:         outputMint,
		Side:               models.SideSell,
		InputAmount:        swapResult.ExecuteResponse.InputAmountResult,
		OutputAmount:       swapResult.ExecuteResponse.OutputAmountResult,
		Price:              price.String(),
		TxHash:             swapResult.ExecuteResponse.Signature,
		Timestamp:          time.Now().Unix(),
		InputMintDecimals:  buy.InputMintDecimals,
		OutputMintDecimals: buy.OutputMintDecimals,
		TokenName:          buy.TokenName,
		TokenSymbol:        buy.TokenSymbol,
	}

	if err := s.repo.CreateSell(row); err != nil {
		if errors.Is(err, ErrTradeAlreadySold) {
			// Lost the race with a concurrent sell after our swap already
			// settled; the ledger keeps the first one.
			s.logger.Error("Concurrent sell detected after swap execution",
				zap.Uint("user_id", userID),
				zap.Uint("buy_id", buy.ID),
				zap.String("tx_hash", swapResult.ExecuteResponse.Signature),
			)
		} else {
			s.logger.Error("Swap executed but sell row was not persisted",
				zap.Uint("user_id", userID),
				zap.String("tx_hash", swapResult.ExecuteResponse.Signature),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.logger.Info("Sell recorded",
		zap.Uint("user_id", userID),
		zap.Uint("buy_id", buy.ID),
		zap.Uint("sell_id", row.ID),
		zap.String("price", row.Price),
	)

	return &Receipt{SwapResult: swapResult, TradeID: buy.ID}, nil
}
