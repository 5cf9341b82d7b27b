package swap

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"solana-trade-bot-go/internal/jupiter"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

const (
	// defaultDecimals is the fallback precision when a mint account cannot
	// be parsed. Native SOL and most wrapped assets use 9.
	defaultDecimals = 9

	// mintDecimalsOffset is the byte offset of the decimals field in the
	// SPL mint account layout.
	mintDecimalsOffset = 44
)

// GatewayInterface defines the interface for the swap gateway.
type GatewayInterface interface {
	Swap(ctx context.Context, inputMint, outputMint, amount string) (*Result, error)
	GetOrder(ctx context.Context, inputMint, outputMint, amount string) (*jupiter.OrderResponse, error)
	GetTokenInfo(ctx context.Context, mint string) (*jupiter.TokenInfo, error)
	GetTokenDecimals(ctx context.Context, mint string) (int32, error)
}

// Result bundles the raw execution result with the quote that produced it.
type Result struct {
	ExecuteResponse *jupiter.ExecuteResponse `json:"execute_response"`
	OrderResponse   *jupiter.OrderResponse   `json:"order_response"`
}

// mintReader fetches raw SPL mint account data. nil data means the account
// does not exist; an error means the read itself failed.
type mintReader interface {
	GetMintAccountData(ctx context.Context, mint solana.PublicKey) ([]byte, error)
}

// rpcMintReader reads mint accounts over Solana RPC.
type rpcMintReader struct {
	client *solanarpc.Client
}

func (r *rpcMintReader) GetMintAccountData(ctx context.Context, mint solana.PublicKey) ([]byte, error) {
	acc, err := r.client.GetAccountInfoWithOpts(ctx, mint, &solanarpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: solanarpc.CommitmentConfirmed,
	})
	if err != nil {
		return nil, err
	}
	if acc == nil || acc.Value == nil {
		return nil, nil
	}
	return acc.Value.Data.GetBinary(), nil
}

// Gateway turns a trade intent into an executed swap: quote, sign, execute.
// It also exposes token metadata and decimal precision for unit conversion.
type Gateway struct {
	jup    jupiter.ClientInterface
	mints  mintReader
	signer solana.PrivateKey
	logger *zap.Logger

	mu            sync.RWMutex
	decimalsCache map[string]int32
}

// ensure Gateway implements the interface
var _ GatewayInterface = (*Gateway)(nil)

// NewGateway creates a gateway around the Jupiter client and a Solana RPC
// endpoint. signerKey is the base58-encoded private key that signs every
// outgoing swap transaction.
func NewGateway(jup jupiter.ClientInterface, rpcURL, signerKey string, logger *zap.Logger) (*Gateway, error) {
	signer, err := solana.PrivateKeyFromBase58(signerKey)
	if err != nil {
		return nil, fmt.Errorf("invalid signer key: %w", err)
	}

	return &Gateway{
		jup:           jup,
		mints:         &rpcMintReader{client: solanarpc.New(rpcURL)},
		signer:        signer,
		logger:        logger.Named("swap"),
		decimalsCache: make(map[string]int32),
	}, nil
}

// Swap obtains a quote for amount base units of inputMint, signs the returned
// transaction with the gateway key and submits it for execution. On-chain
// confirmation is not tracked here.
func (g *Gateway) Swap(ctx context.Context, inputMint, outputMint, amount string) (*Result, error) {
	order, err := g.jup.GetOrder(ctx, inputMint, outputMint, amount, g.signer.PublicKey().String())
	if err != nil {
		return nil, err
	}

	signedTx, err := g.signTransaction(order.Transaction)
	if err != nil {
		return nil, err
	}

	execute, err := g.jup.ExecuteOrder(ctx, order.RequestID, signedTx)
	if err != nil {
		return nil, err
	}

	g.logger.Info("Swap executed",
		zap.String("input_mint", inputMint),
		zap.String("output_mint", outputMint),
		zap.String("signature", execute.Signature),
	)

	return &Result{ExecuteResponse: execute, OrderResponse: order}, nil
}

// signTransaction deserializes a base64 unsigned transaction, signs it with
// the gateway key and re-serializes it to base64.
func (g *Gateway) signTransaction(txBase64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(txBase64)
	if err != nil {
		return "", fmt.Errorf("failed to decode transaction: %w", err)
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return "", fmt.Errorf("failed to deserialize transaction: %w", err)
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(g.signer.PublicKey()) {
			return &g.signer
		}
		return nil
	}); err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	raw, err = tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}

	return base64.StdEncoding.EncodeToString(raw), nil
}

// GetOrder fetches a quote without a taker wallet. Used for mark-to-market
// valuation of open positions.
func (g *Gateway) GetOrder(ctx context.Context, inputMint, outputMint, amount string) (*jupiter.OrderResponse, error) {
	return g.jup.GetOrder(ctx, inputMint, outputMint, amount, "")
}

// GetTokenInfo looks up display metadata and precision for a mint.
func (g *Gateway) GetTokenInfo(ctx context.Context, mint string) (*jupiter.TokenInfo, error) {
	return g.jup.SearchToken(ctx, mint)
}

// GetTokenDecimals returns the decimal precision for a mint, reading the SPL
// mint account on a cache miss. A missing or malformed account yields the
// default of 9 without populating the cache, so a later successful read can
// still fill it.
func (g *Gateway) GetTokenDecimals(ctx context.Context, mint string) (int32, error) {
	g.mu.RLock()
	if d, ok := g.decimalsCache[mint]; ok {
		g.mu.RUnlock()
		return d, nil
	}
	g.mu.RUnlock()

	pubkey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return 0, fmt.Errorf("invalid mint address %s: %w", mint, err)
	}

	data, err := g.mints.GetMintAccountData(ctx, pubkey)
	if err != nil {
		return 0, fmt.Errorf("failed to get mint account %s: %w", mint, err)
	}
	if len(data) <= mintDecimalsOffset {
		g.logger.Warn("Mint account missing or malformed, using default decimals",
			zap.String("mint", mint),
			zap.Int("data_len", len(data)),
		)
		return defaultDecimals, nil
	}

	decimals := int32(data[mintDecimalsOffset])

	// Concurrent misses may both reach here; the write is idempotent since
	// token decimals are immutable once minted.
	g.mu.Lock()
	g.decimalsCache[mint] = decimals
	g.mu.Unlock()

	return decimals, nil
}
