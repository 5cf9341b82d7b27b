package jupiter

import (
	"context"
	"fmt"
	"time"

	"solana-trade-bot-go/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ClientInterface defines the interface for the Jupiter Ultra API client.
type ClientInterface interface {
	GetOrder(ctx context.Context, inputMint, outputMint, amount, taker string) (*OrderResponse, error)
	ExecuteOrder(ctx context.Context, requestID, signedTransaction string) (*ExecuteResponse, error)
	SearchToken(ctx context.Context, mint string) (*TokenInfo, error)
}

// OrderResponse is the quote returned by the order endpoint. Transaction is
// the unsigned swap transaction, base64-encoded.
type OrderResponse struct {
	RequestID   string `json:"requestId"`
	Transaction string `json:"transaction"`
	InputMint   string `json:"inputMint"`
	OutputMint  string `json:"outputMint"`
	InAmount    string `json:"inAmount"`
	OutAmount   string `json:"outAmount"`
	Error       string `json:"error,omitempty"`
}

// ExecuteResponse is the settlement result returned by the execute endpoint.
// The realized amounts are integer strings in base units.
type ExecuteResponse struct {
	Signature          string `json:"signature"`
	Status             string `json:"status"`
	InputAmountResult  string `json:"inputAmountResult"`
	OutputAmountResult string `json:"outputAmountResult"`
	Error              string `json:"error,omitempty"`
	Code               int    `json:"code,omitempty"`
}

// TokenInfo is one entry of the token search response.
type TokenInfo struct {
	Mint     string `json:"id"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int32  `json:"decimals"`
}

// Client is a client for the Jupiter Ultra API.
// It implements the ClientInterface.
type Client struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

// ensure Client implements the interface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a new Jupiter Ultra API client.
func NewClient(cfg *config.Jupiter, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)

	// Client-side rate limiting; the lite endpoints throttle aggressively.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &Client{
		client:  client,
		logger:  logger.Named("jupiter"),
		limiter: limiter,
	}
}

// GetOrder requests a quote for exchanging amount base units of inputMint for
// outputMint. taker is optional; when set, the returned transaction is built
// for that wallet. A non-2xx response or an error field in the payload both
// fail the quote.
func (c *Client) GetOrder(ctx context.Context, inputMint, outputMint, amount, taker string) (*OrderResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	var order OrderResponse
	req := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"inputMint":  inputMint,
			"outputMint": outputMint,
			"amount":     amount,
		}).
		SetResult(&order)
	if taker != "" {
		req.SetQueryParam("taker", taker)
	}

	resp, err := req.Get("/order")
	if err != nil {
		return nil, fmt.Errorf("order request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("order request failed with status %s: %s", resp.Status(), resp.String())
	}
	if order.Error != "" {
		return nil, fmt.Errorf("order rejected: %s", order.Error)
	}

	c.logger.Debug("Quote received",
		zap.String("input_mint", inputMint),
		zap.String("output_mint", outputMint),
		zap.String("amount", amount),
		zap.String("request_id", order.RequestID),
	)
	return &order, nil
}

// ExecuteOrder submits a signed transaction for execution against a
// previously obtained quote.
func (c *Client) ExecuteOrder(ctx context.Context, requestID, signedTransaction string) (*ExecuteResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	var result ExecuteResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{
			"requestId":         requestID,
			"signedTransaction": signedTransaction,
		}).
		SetResult(&result).
		Post("/execute")
	if err != nil {
		return nil, fmt.Errorf("execute request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("execute request failed with status %s: %s", resp.Status(), resp.String())
	}

	c.logger.Info("Order executed",
		zap.String("request_id", requestID),
		zap.String("signature", result.Signature),
		zap.String("status", result.Status),
	)
	return &result, nil
}

// SearchToken looks up display metadata and precision for a mint. The search
// endpoint returns an array; the first match is used.
func (c *Client) SearchToken(ctx context.Context, mint string) (*TokenInfo, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	var tokens []TokenInfo
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("query", mint).
		SetResult(&tokens).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("token search failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("token search failed with status %s: %s", resp.Status(), resp.String())
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("no token info found for mint %s", mint)
	}

	return &tokens[0], nil
}
