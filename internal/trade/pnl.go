package trade

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"solana-trade-bot-go/internal/models"
	"solana-trade-bot-go/internal/swap"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// markToMarketConcurrency caps the number of live quotes fetched in parallel
// for open positions within a single report.
const markToMarketConcurrency = 4

// reportScale is the number of fractional digits in report values.
const reportScale = 9

// TokenPNL aggregates one token's accounting. All values are denominated in
// the base asset, never in token-native units.
type TokenPNL struct {
	Token  string `json:"token"`
	Bought string `json:"bought"`
	Sold   string `json:"sold"`
	Pnl    string `json:"pnl"`
	Name   string `json:"name,omitempty"`
	Symbol string `json:"symbol,omitempty"`
}

// PNLReport is the per-token report plus the total across tokens. Keys are
// token mints, lowercased.
type PNLReport struct {
	Tokens   map[string]*TokenPNL `json:"tokens"`
	TotalPnl string               `json:"total_pnl"`
}

type pnlBucket struct {
	token  string
	bought decimal.Decimal
	sold   decimal.Decimal
	name   string
	symbol string
}

// PNL builds the profit-and-loss report for a user. Realized legs come from
// the ledger; each open buy is valued at a live quote for selling its full
// output back into the base asset (mark-to-market, not a completed trade).
func (s *Service) PNL(ctx context.Context, userID uint) (*PNLReport, error) {
	trades, err := s.repo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(trades) == 0 {
		return nil, ErrNoTrades
	}

	buckets := make(map[string]*pnlBucket)
	var openBuys []struct {
		bucket *pnlBucket
		trade  TradeWithStatus
	}

	for _, t := range trades {
		// For a buy the traded token is the output mint; for a sell it is
		// the input mint.
		tokenMint := t.InputMint
		if t.Side == models.SideBuy {
			tokenMint = t.OutputMint
		}
		key := strings.ToLower(tokenMint)

		b, ok := buckets[key]
		if !ok {
			b = &pnlBucket{token: tokenMint}
			buckets[key] = b
		}

		if t.Side == models.SideBuy {
			bought, err := swap.FromBaseUnits(t.InputAmount, t.InputMintDecimals)
			if err != nil {
				return nil, err
			}
			b.bought = b.bought.Add(bought)
			b.name = t.TokenName
			b.symbol = t.TokenSymbol

			if !t.IsSold {
				openBuys = append(openBuys, struct {
					bucket *pnlBucket
					trade  TradeWithStatus
				}{b, t})
			}
		} else {
			sold, err := swap.FromBaseUnits(t.OutputAmount, t.InputMintDecimals)
			if err != nil {
				return nil, err
			}
			b.sold = b.sold.Add(sold)
		}
	}

	// Value open positions at a fresh quote. Aggregation is
	// order-independent, so the quotes can run concurrently.
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(markToMarketConcurrency)

	for _, open := range openBuys {
		open := open
		g.Go(func() error {
			order, err := s.gateway.GetOrder(gctx, open.trade.OutputMint, open.trade.InputMint, open.trade.OutputAmount)
			if err != nil {
				return fmt.Errorf("mark-to-market quote for trade %d failed: %w", open.trade.ID, err)
			}
			value, err := swap.FromBaseUnits(order.OutAmount, open.trade.InputMintDecimals)
			if err != nil {
				return err
			}
			mu.Lock()
			open.bucket.sold = open.bucket.sold.Add(value)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &PNLReport{Tokens: make(map[string]*TokenPNL, len(buckets))}
	total := decimal.Zero
	for key, b := range buckets {
		pnl := b.sold.Sub(b.bought).Round(reportScale)
		report.Tokens[key] = &TokenPNL{
			Token:  b.token,
			Bought: b.bought.StringFixed(reportScale),
			Sold:   b.sold.StringFixed(reportScale),
			Pnl:    pnl.StringFixed(reportScale),
			Name:   b.name,
			Symbol: b.symbol,
		}
		// The total sums the rounded per-token values, matching the
		// formatted report exactly.
		total = total.Add(pnl)
	}
	report.TotalPnl = total.StringFixed(reportScale)

	return report, nil
}
